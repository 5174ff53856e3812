package xmlexport

import (
	"strconv"

	"github.com/shabbyrobe/xmlwriter"

	"github.com/joshuapare/hivexml/pkg/types"
)

// Byte-run provenance. Offsets are the absolute file offsets the handles
// encode; lengths come from the engine's struct-length and data-cell
// queries.
//
// Engine validity failures (a handle that does not resolve to an NK/VK) are
// logged and the runs are skipped, so one corrupt record does not abort the
// whole document. XML write failures still propagate; a broken stream cannot
// be salvaged.

func (e *Exporter) byteRun(offset uint32, length int) error {
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "byte_run"}); err != nil {
		return err
	}
	if err := e.xw.WriteAttr(
		xmlwriter.Attr{Name: "file_offset", Value: strconv.FormatUint(uint64(offset), 10)},
		xmlwriter.Attr{Name: "len", Value: strconv.Itoa(length)},
	); err != nil {
		return err
	}
	return e.xw.EndElem("byte_run")
}

// nodeByteRuns emits the single run covering a node's own descriptor.
func (e *Exporter) nodeByteRuns(node types.NodeID) error {
	structLen, err := e.h.NodeStructLength(node)
	if err != nil {
		e.warnf("node 0x%X: struct length: %v", uint32(node), err)
		return nil
	}
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "byte_runs"}); err != nil {
		return err
	}
	if err := e.byteRun(uint32(node), structLen); err != nil {
		return err
	}
	return e.xw.EndElem("byte_runs")
}

// valueByteRuns emits the run for a value's descriptor and, when the payload
// lives in a data cell longer than 4 bytes, a second run for that cell.
func (e *Exporter) valueByteRuns(value types.ValueID) error {
	structLen, err := e.h.ValueStructLength(value)
	if err != nil {
		e.warnf("value 0x%X: struct length: %v", uint32(value), err)
		return nil
	}
	cellOff, cellLen, err := e.h.ValueDataCellOffset(value)
	if err != nil {
		e.warnf("value 0x%X: data cell: %v", uint32(value), err)
		return nil
	}
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "byte_runs"}); err != nil {
		return err
	}
	if err := e.byteRun(uint32(value), structLen); err != nil {
		return err
	}
	if cellLen > 4 {
		if err := e.byteRun(cellOff, cellLen); err != nil {
			return err
		}
	}
	return e.xw.EndElem("byte_runs")
}
