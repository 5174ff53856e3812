package xmlexport

import (
	"fmt"
	"io"
	"os"

	"github.com/shabbyrobe/xmlwriter"

	"github.com/joshuapare/hivexml/hive"
	"github.com/joshuapare/hivexml/pkg/types"
)

// Options configure an export run.
type Options struct {
	// Indent pretty-prints the document.
	Indent bool

	// Diag receives one-line warnings for degraded output (base64 fallbacks,
	// skipped byte runs). Defaults to os.Stderr.
	Diag io.Writer

	// VisitFlags are passed through to hive.Visit. Use hive.VisitSkipBad to
	// skip malformed entries instead of aborting.
	VisitFlags hive.VisitFlag
}

// Exporter drives one document. The XML writer is an explicit field, so the
// value handlers never reach through an untyped context.
type Exporter struct {
	xw   *xmlwriter.Writer
	h    *hive.Hive
	diag io.Writer
}

// Export serializes the whole hive as one XML document to out. The document
// root is closed exactly once, after the traversal completes; a traversal or
// write failure leaves a truncated document on out and returns the error.
func Export(out io.Writer, h *hive.Hive, opts Options) error {
	diag := opts.Diag
	if diag == nil {
		diag = os.Stderr
	}
	var xwOpts []xmlwriter.Option
	if opts.Indent {
		xwOpts = append(xwOpts, xmlwriter.WithIndent())
	}
	e := &Exporter{
		xw:   xmlwriter.Open(out, xwOpts...),
		h:    h,
		diag: diag,
	}
	return e.run(opts.VisitFlags)
}

func (e *Exporter) run(flags hive.VisitFlag) error {
	if err := e.xw.StartDoc(xmlwriter.Doc{}); err != nil {
		return fmt.Errorf("xmlexport: start document: %w", err)
	}
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "hive"}); err != nil {
		return fmt.Errorf("xmlexport: %w", err)
	}
	if ts, ok := filetimeToISO8601(e.h.LastModified()); ok {
		if err := e.writeMtime(ts); err != nil {
			return fmt.Errorf("xmlexport: %w", err)
		}
	}
	if err := hive.Visit(e.h, e.visitor(), flags); err != nil {
		return err
	}
	if err := e.xw.EndElem("hive"); err != nil {
		return fmt.Errorf("xmlexport: %w", err)
	}
	if err := e.xw.EndDoc(); err != nil {
		return fmt.Errorf("xmlexport: end document: %w", err)
	}
	if err := e.xw.Flush(); err != nil {
		return fmt.Errorf("xmlexport: flush: %w", err)
	}
	return nil
}

func (e *Exporter) visitor() *hive.Visitor {
	return &hive.Visitor{
		NodeStart:            e.nodeStart,
		NodeEnd:              e.nodeEnd,
		ValueString:          e.valueString,
		ValueMultipleStrings: e.valueMultipleStrings,
		ValueStringInvalid:   e.valueStringInvalid,
		ValueDWORD:           e.valueDWORD,
		ValueQWORD:           e.valueQWORD,
		ValueBinary:          e.valueBinary,
		ValueNone:            e.valueNone,
		ValueOther:           e.valueOther,
	}
}

func (e *Exporter) nodeStart(node types.NodeID, name string) error {
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "node"}); err != nil {
		return err
	}
	if err := e.safeStringAttr("name", "name_encoding", name); err != nil {
		return err
	}
	if node == e.h.Root() {
		if err := e.xw.WriteAttr(xmlwriter.Attr{Name: "root", Value: "1"}); err != nil {
			return err
		}
	}
	if ts, ok := filetimeToISO8601(e.h.NodeTimestamp(node)); ok {
		if err := e.writeMtime(ts); err != nil {
			return err
		}
	}
	// Even when the provenance queries fail the node element stays open and
	// is closed by nodeEnd, keeping the stream well-formed as far as it goes.
	return e.nodeByteRuns(node)
}

func (e *Exporter) nodeEnd(types.NodeID, string) error {
	return e.xw.EndElem("node")
}

func (e *Exporter) writeMtime(ts string) error {
	if err := e.xw.StartElem(xmlwriter.Elem{Name: "mtime"}); err != nil {
		return err
	}
	if err := e.xw.WriteText(ts); err != nil {
		return err
	}
	return e.xw.EndElem("mtime")
}

func (e *Exporter) warnf(format string, args ...any) {
	fmt.Fprintf(e.diag, "hivexml: "+format+"\n", args...)
}
