// Package rbxlx reads and writes the XML place and model format.
package rbxlx

import (
	"encoding/base64"

	"github.com/beevik/etree"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// Document root attributes.
const (
	xmimeNamespace = "http://www.w3.org/2005/05/xmlmime"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.roblox.com/roblox.xsd"
	formatVersion  = "4"
)

// codec adapts the token table to rbxfile.Codec.
type codec struct {
	handlers map[string]rbxfile.PropertyHandler[*etree.Element]
}

func newCodec() *codec {
	c := &codec{handlers: make(map[string]rbxfile.PropertyHandler[*etree.Element], len(tokens))}
	for name, tok := range tokens {
		c.handlers[name] = rbxfile.HandlerFunc[*etree.Element](tok.write)
	}
	return c
}

func (c *codec) Handler(wireName string) (rbxfile.PropertyHandler[*etree.Element], bool) {
	h, ok := c.handlers[wireName]
	return h, ok
}

func (c *codec) NewItem(parent *etree.Element, inst *rbxfile.Instance, ctx *rbxfile.Context) *etree.Element {
	ref, _ := ctx.Referent(inst)
	item := parent.CreateElement("Item")
	item.CreateAttr("class", inst.ClassName())
	item.CreateAttr("referent", ref)
	item.CreateElement("Properties")
	return item
}

func (c *codec) NewProperty(wireName, name string) *etree.Element {
	el := etree.NewElement(wireName)
	el.CreateAttr("name", name)
	return el
}

func (c *codec) AppendProperty(item, prop *etree.Element) {
	item.SelectElement("Properties").AddChild(prop)
}

func (c *codec) WriteSharedStrings(root *etree.Element, table *rbxfile.SharedStringTable) error {
	if table.Len() == 0 {
		return nil
	}
	section := root.CreateElement("SharedStrings")
	for _, e := range table.Entries() {
		el := section.CreateElement("SharedString")
		el.CreateAttr("md5", e.Key)
		el.SetText(base64.StdEncoding.EncodeToString(e.Data))
	}
	return nil
}

func newRoot(doc *etree.Document) *etree.Element {
	root := doc.CreateElement("roblox")
	root.CreateAttr("xmlns:xmime", xmimeNamespace)
	root.CreateAttr("xmlns:xsi", xsiNamespace)
	root.CreateAttr("xsi:noNamespaceSchemaLocation", schemaLocation)
	root.CreateAttr("version", formatVersion)
	root.CreateElement("External").SetText("null")
	root.CreateElement("External").SetText("nil")
	return root
}
