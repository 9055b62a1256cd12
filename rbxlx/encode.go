package rbxlx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// Encode writes roots and their descendants to w as an XML document.
// Properties that cannot be written are listed in the returned report.
func Encode(w io.Writer, roots []*rbxfile.Instance, opts ...Option) (*rbxfile.Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	doc := etree.NewDocument()
	root := newRoot(doc)

	write := append([]rbxfile.WriteOption{rbxfile.WithLogger(o.logger)}, o.write...)
	rep, err := rbxfile.Serialize[*etree.Element](newCodec(), root, roots, write...)
	if err != nil {
		return nil, err
	}

	if o.indent < 0 {
		doc.IndentTabs()
	} else {
		doc.Indent(o.indent)
	}
	if _, err := doc.WriteTo(w); err != nil {
		return rep, fmt.Errorf("writing document: %w", err)
	}
	return rep, nil
}

// EncodeToBytes is Encode into a byte slice.
func EncodeToBytes(roots []*rbxfile.Instance, opts ...Option) ([]byte, *rbxfile.Report, error) {
	var buf bytes.Buffer
	rep, err := Encode(&buf, roots, opts...)
	if err != nil {
		return nil, rep, err
	}
	return buf.Bytes(), rep, nil
}
