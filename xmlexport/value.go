package xmlexport

import (
	"encoding/base64"
	"strconv"

	"github.com/shabbyrobe/xmlwriter"

	"github.com/joshuapare/hivexml/pkg/types"
)

// startValue opens a <value> element: type label first, value_encoding when
// the payload is pre-encoded, then either a safely-encoded key attribute or
// default="1" for the node's default value (empty key).
func (e *Exporter) startValue(key, typeLabel, encoding string) error {
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "value"}); err != nil {
		return err
	}
	if err := e.xw.WriteAttr(xmlwriter.Attr{Name: "type", Value: typeLabel}); err != nil {
		return err
	}
	if encoding != "" {
		if err := e.xw.WriteAttr(xmlwriter.Attr{Name: "value_encoding", Value: encoding}); err != nil {
			return err
		}
	}
	if key == "" {
		return e.xw.WriteAttr(xmlwriter.Attr{Name: "default", Value: "1"})
	}
	return e.safeStringAttr("key", "key_encoding", key)
}

func (e *Exporter) endValue() error {
	return e.xw.EndElem("value")
}

// Type labels per shape. A tag that belongs to a different shape means the
// traversal's dispatch contract was broken; that surfaces as InvariantError
// and aborts the export. Tags beyond the known range degrade to "unknown".

func stringTypeLabel(t types.RegType) (string, error) {
	switch t {
	case types.REG_SZ:
		return "string", nil
	case types.REG_EXPAND_SZ:
		return "expand", nil
	case types.REG_LINK:
		return "link", nil
	case types.REG_NONE, types.REG_BINARY, types.REG_DWORD, types.REG_DWORD_BE,
		types.REG_MULTI_SZ, types.REG_RESOURCE_LIST, types.REG_FULL_RESOURCE_DESCRIPTOR,
		types.REG_RESOURCE_REQUIREMENTS_LIST, types.REG_QWORD:
		return "", &InvariantError{Shape: "string", Type: t}
	default:
		return "unknown", nil
	}
}

func invalidStringTypeLabel(t types.RegType) (string, error) {
	switch t {
	case types.REG_SZ:
		return "bad-string", nil
	case types.REG_EXPAND_SZ:
		return "bad-expand", nil
	case types.REG_LINK:
		return "bad-link", nil
	case types.REG_MULTI_SZ:
		return "bad-string-list", nil
	case types.REG_NONE, types.REG_BINARY, types.REG_DWORD, types.REG_DWORD_BE,
		types.REG_RESOURCE_LIST, types.REG_FULL_RESOURCE_DESCRIPTOR,
		types.REG_RESOURCE_REQUIREMENTS_LIST, types.REG_QWORD:
		return "", &InvariantError{Shape: "invalid-string", Type: t}
	default:
		return "unknown", nil
	}
}

func otherTypeLabel(t types.RegType) (string, error) {
	switch t {
	case types.REG_RESOURCE_LIST:
		return "resource-list", nil
	case types.REG_FULL_RESOURCE_DESCRIPTOR:
		return "resource-description", nil
	case types.REG_RESOURCE_REQUIREMENTS_LIST:
		return "resource-requirements", nil
	case types.REG_NONE, types.REG_SZ, types.REG_EXPAND_SZ, types.REG_LINK,
		types.REG_BINARY, types.REG_DWORD, types.REG_DWORD_BE,
		types.REG_MULTI_SZ, types.REG_QWORD:
		return "", &InvariantError{Shape: "other", Type: t}
	default:
		return "unknown", nil
	}
}

func (e *Exporter) base64ValueAttr(raw []byte) error {
	return e.xw.WriteAttr(xmlwriter.Attr{
		Name:  "value",
		Value: base64.StdEncoding.EncodeToString(raw),
	})
}

func (e *Exporter) valueString(_ types.NodeID, value types.ValueID, typ types.RegType, _ int, key, s string) error {
	label, err := stringTypeLabel(typ)
	if err != nil {
		return err
	}
	if err := e.startValue(key, label, ""); err != nil {
		return err
	}
	if err := e.safeStringAttr("value", "value_encoding", s); err != nil {
		return err
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}

func (e *Exporter) valueMultipleStrings(_ types.NodeID, value types.ValueID, _ types.RegType, _ int, key string, strs []string) error {
	if err := e.startValue(key, "string-list", ""); err != nil {
		return err
	}
	for _, s := range strs {
		if err := e.xw.StartElem(xmlwriter.Elem{Name: "string"}); err != nil {
			return err
		}
		if err := e.safeStringAttr("value", "value_encoding", s); err != nil {
			return err
		}
		if err := e.xw.EndElem("string"); err != nil {
			return err
		}
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}

func (e *Exporter) valueStringInvalid(_ types.NodeID, value types.ValueID, typ types.RegType, _ int, key string, raw []byte) error {
	label, err := invalidStringTypeLabel(typ)
	if err != nil {
		return err
	}
	if err := e.startValue(key, label, "base64"); err != nil {
		return err
	}
	if err := e.base64ValueAttr(raw); err != nil {
		return err
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}

func (e *Exporter) valueDWORD(_ types.NodeID, value types.ValueID, _ types.RegType, _ int, key string, v int32) error {
	if err := e.startValue(key, "int32", ""); err != nil {
		return err
	}
	if err := e.xw.WriteAttr(xmlwriter.Attr{Name: "value", Value: strconv.FormatInt(int64(v), 10)}); err != nil {
		return err
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}

func (e *Exporter) valueQWORD(_ types.NodeID, value types.ValueID, _ types.RegType, _ int, key string, v int64) error {
	if err := e.startValue(key, "int64", ""); err != nil {
		return err
	}
	if err := e.xw.WriteAttr(xmlwriter.Attr{Name: "value", Value: strconv.FormatInt(v, 10)}); err != nil {
		return err
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}

func (e *Exporter) valueBinary(_ types.NodeID, value types.ValueID, _ types.RegType, _ int, key string, raw []byte) error {
	if err := e.startValue(key, "binary", "base64"); err != nil {
		return err
	}
	if err := e.base64ValueAttr(raw); err != nil {
		return err
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}

// valueNone and valueOther omit the payload attribute (and its encoding
// marker) entirely for zero-length data; descriptor byte runs are still
// emitted so the value's location in the file stays recorded.

func (e *Exporter) valueNone(_ types.NodeID, value types.ValueID, _ types.RegType, length int, key string, raw []byte) error {
	return e.blobValue(value, "none", length, key, raw)
}

func (e *Exporter) valueOther(_ types.NodeID, value types.ValueID, typ types.RegType, length int, key string, raw []byte) error {
	label, err := otherTypeLabel(typ)
	if err != nil {
		return err
	}
	return e.blobValue(value, label, length, key, raw)
}

func (e *Exporter) blobValue(value types.ValueID, label string, length int, key string, raw []byte) error {
	encoding := ""
	if length > 0 {
		encoding = "base64"
	}
	if err := e.startValue(key, label, encoding); err != nil {
		return err
	}
	if length > 0 {
		if err := e.base64ValueAttr(raw); err != nil {
			return err
		}
	}
	if err := e.valueByteRuns(value); err != nil {
		return err
	}
	return e.endValue()
}
