package rbxlx

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// ErrNotRoblox is returned when the document root is not <roblox>.
var ErrNotRoblox = errors.New("not a roblox XML document")

// pendingRef is a Ref property waiting for its target to be read.
type pendingRef struct {
	prop     *rbxfile.Property
	referent string
}

type decoder struct {
	registry  *rbxfile.Registry
	logger    *slog.Logger
	shared    *rbxfile.SharedStringTable
	referents map[string]*rbxfile.Instance
	refs      []pendingRef
}

// Decode reads an XML document and returns its top-level instances.
// Properties that cannot be read are logged and skipped; malformed
// structure is an error.
func Decode(r io.Reader, opts ...Option) ([]*rbxfile.Instance, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	root := doc.SelectElement("roblox")
	if root == nil {
		return nil, ErrNotRoblox
	}

	d := &decoder{
		registry:  o.registry,
		logger:    o.logger,
		shared:    rbxfile.NewSharedStringTable(),
		referents: make(map[string]*rbxfile.Instance),
	}
	if err := d.readSharedStrings(root); err != nil {
		return nil, err
	}

	var roots []*rbxfile.Instance
	for _, item := range root.SelectElements("Item") {
		inst, err := d.readItem(item)
		if err != nil {
			return nil, err
		}
		roots = append(roots, inst)
	}
	d.resolveRefs()
	return roots, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte, opts ...Option) ([]*rbxfile.Instance, error) {
	return Decode(bytes.NewReader(data), opts...)
}

func (d *decoder) readSharedStrings(root *etree.Element) error {
	section := root.SelectElement("SharedStrings")
	if section == nil {
		return nil
	}
	for _, el := range section.SelectElements("SharedString") {
		key := el.SelectAttrValue("md5", "")
		if key == "" {
			return errors.New("<SharedString> without md5 attribute")
		}
		text := strings.Join(strings.Fields(el.Text()), "")
		data, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return fmt.Errorf("shared string %s: %w", key, err)
		}
		d.shared.Put(key, data)
	}
	return nil
}

func (d *decoder) readItem(item *etree.Element) (*rbxfile.Instance, error) {
	class := item.SelectAttrValue("class", "")
	if class == "" {
		return nil, errors.New("<Item> without class attribute")
	}
	inst := d.registry.New(class, "")
	// Keep the file's property order; Name comes back with the rest.
	inst.RemoveProperty("Name")

	if ref := item.SelectAttrValue("referent", ""); ref != "" {
		if _, dup := d.referents[ref]; dup {
			return nil, fmt.Errorf("referent %s used twice", ref)
		}
		d.referents[ref] = inst
	}

	if props := item.SelectElement("Properties"); props != nil {
		for _, el := range props.ChildElements() {
			d.readProperty(inst, el)
		}
	}

	for _, child := range item.SelectElements("Item") {
		c, err := d.readItem(child)
		if err != nil {
			return nil, err
		}
		if err := c.SetParent(inst); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (d *decoder) readProperty(inst *rbxfile.Instance, el *etree.Element) {
	name := el.SelectAttrValue("name", "")
	tok, ok := tokens[el.Tag]
	if !ok {
		d.logger.Warn("skipping property with unknown type",
			"instance", inst.FullName(), "property", name, "wire_type", el.Tag, "err", rbxfile.ErrMissingHandler)
		return
	}
	v, err := tok.read(el, d)
	if err != nil {
		d.logger.Warn("skipping unreadable property",
			"instance", inst.FullName(), "property", name, "wire_type", el.Tag, "err", err)
		return
	}

	p := rbxfile.NewProperty(name, tok.typ)
	inst.AddProperty(p)
	if err := p.SetValue(v); err != nil {
		d.logger.Warn("skipping property", "instance", inst.FullName(), "property", name, "err", err)
		inst.RemoveProperty(name)
		return
	}
	if p.WireTypeName() != el.Tag {
		p.WireName = el.Tag
	}
	if tok.typ == rbxfile.TypeRef {
		d.refs = append(d.refs, pendingRef{prop: p, referent: strings.TrimSpace(el.Text())})
	}
}

func (d *decoder) resolveRefs() {
	for _, r := range d.refs {
		if r.referent == "" || r.referent == "null" {
			continue
		}
		target, ok := d.referents[r.referent]
		if !ok {
			d.logger.Warn("unresolved referent", "property", r.prop.FullName(), "referent", r.referent)
			continue
		}
		// The record was created as a Ref, so this cannot mismatch.
		_ = r.prop.SetValue(rbxfile.Ref{Target: target})
	}
}
