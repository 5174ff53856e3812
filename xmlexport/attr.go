package xmlexport

import (
	"encoding/base64"

	"github.com/shabbyrobe/xmlwriter"
)

// safeStringAttr writes name=data verbatim when the data is printable ASCII.
// Otherwise it writes encName="base64" first and then name holding the
// base64-encoded bytes, so the original bytes survive the document
// losslessly. The degradation is reported on the diag stream.
func (e *Exporter) safeStringAttr(name, encName, data string) error {
	idx := firstNonPrintable(data)
	if idx < 0 {
		return e.xw.WriteAttr(xmlwriter.Attr{Name: name, Value: data})
	}
	e.warnf("attribute %s: non-printable byte 0x%02X at index %d, using base64", name, data[idx], idx)
	if err := e.xw.WriteAttr(xmlwriter.Attr{Name: encName, Value: "base64"}); err != nil {
		return err
	}
	return e.xw.WriteAttr(xmlwriter.Attr{
		Name:  name,
		Value: base64.StdEncoding.EncodeToString([]byte(data)),
	})
}
