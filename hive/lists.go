package hive

import (
	"fmt"

	"github.com/joshuapare/hivexml/internal/format"
)

// maxRIDepth bounds RI nesting so a corrupt hive with a reference loop in
// its indirect lists cannot recurse without limit.
const maxRIDepth = 16

// subkeyListRefs resolves the subkey list at listRel and returns the NK cell
// references it holds, in list order. RI (indirect) lists are flattened.
func subkeyListRefs(data []byte, listRel uint32, depth int) ([]uint32, error) {
	if depth > maxRIDepth {
		return nil, fmt.Errorf("hive: subkey list nesting exceeds %d", maxRIDepth)
	}
	payload, err := resolveRelCellPayload(data, listRel)
	if err != nil {
		return nil, fmt.Errorf("hive: subkey list: %w", err)
	}
	if len(payload) < format.IdxListOffset {
		return nil, fmt.Errorf("hive: subkey list too small: %d bytes", len(payload))
	}

	sig0, sig1 := payload[0], payload[1]
	count := int(format.ReadU16(payload, format.IdxCountOffset))

	switch {
	case sig0 == 'l' && (sig1 == 'f' || sig1 == 'h'):
		// lf/lh: [sig(2)][count(2)][{offset(4), hash(4)}...]
		need := format.IdxListOffset + count*format.LFFHEntrySize
		if len(payload) < need {
			return nil, fmt.Errorf("hive: %c%c list truncated: have=%d need=%d", sig0, sig1, len(payload), need)
		}
		refs := make([]uint32, count)
		for i := range refs {
			refs[i] = format.ReadU32(payload, format.IdxListOffset+i*format.LFFHEntrySize)
		}
		return refs, nil

	case sig0 == 'l' && sig1 == 'i':
		// li: [sig(2)][count(2)][offset(4)...]
		need := format.IdxListOffset + count*format.LIEntrySize
		if len(payload) < need {
			return nil, fmt.Errorf("hive: li list truncated: have=%d need=%d", len(payload), need)
		}
		refs := make([]uint32, count)
		for i := range refs {
			refs[i] = format.ReadU32(payload, format.IdxListOffset+i*format.LIEntrySize)
		}
		return refs, nil

	case sig0 == 'r' && sig1 == 'i':
		// ri: [sig(2)][count(2)][sublist_offset(4)...], each sublist lf/lh/li.
		need := format.IdxListOffset + count*format.LIEntrySize
		if len(payload) < need {
			return nil, fmt.Errorf("hive: ri list truncated: have=%d need=%d", len(payload), need)
		}
		var refs []uint32
		for i := 0; i < count; i++ {
			sub := format.ReadU32(payload, format.IdxListOffset+i*format.LIEntrySize)
			if sub == 0 || sub == format.InvalidOffset {
				continue
			}
			subRefs, err := subkeyListRefs(data, sub, depth+1)
			if err != nil {
				return nil, err
			}
			refs = append(refs, subRefs...)
		}
		return refs, nil

	default:
		return nil, fmt.Errorf("hive: unknown subkey list signature: %c%c", sig0, sig1)
	}
}

// parseValueList parses a value list payload: a flat array of HCELL_INDEX
// (uint32) references to VK cells. Zero and invalid entries are dropped.
func parseValueList(payload []byte, count uint32) ([]uint32, error) {
	need := int(count) * format.DWORDSize
	if len(payload) < need {
		return nil, fmt.Errorf("hive: value list truncated: have=%d need=%d", len(payload), need)
	}
	refs := make([]uint32, 0, count)
	for i := 0; i < int(count); i++ {
		ref := format.ReadU32(payload, i*format.DWORDSize)
		if ref != 0 && ref != format.InvalidOffset {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}
