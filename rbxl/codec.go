package rbxl

import (
	binpkg "github.com/robert-malhotra/go-rbxfile/internal/binary"
	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// node is the tree Serialize builds before it is flattened into chunks.
// Item nodes carry an instance and its property nodes; property nodes
// carry one encoded value.
type node struct {
	inst     *rbxfile.Instance
	index    int32
	props    []*node
	children []*node

	name string
	wire string
	buf  *binpkg.Buffer
	w    *binpkg.Writer
}

func newRootNode() *node {
	return &node{index: -1}
}

// bytes returns the encoded value of a property node.
func (n *node) bytes() []byte {
	return n.buf.Bytes()
}

// codec adapts the value codec table to rbxfile.Codec.
type codec struct {
	handlers map[string]rbxfile.PropertyHandler[*node]
	shared   []rbxfile.SharedStringEntry
}

func newCodec() *codec {
	c := &codec{handlers: make(map[string]rbxfile.PropertyHandler[*node], len(valueCodecs))}
	for name, vc := range valueCodecs {
		encode := vc.encode
		c.handlers[name] = rbxfile.HandlerFunc[*node](func(p *rbxfile.Property, out *node, ctx *rbxfile.Context) error {
			return encode(p, out.w, ctx)
		})
	}
	return c
}

func (c *codec) Handler(wireName string) (rbxfile.PropertyHandler[*node], bool) {
	h, ok := c.handlers[wireName]
	return h, ok
}

func (c *codec) NewItem(parent *node, inst *rbxfile.Instance, ctx *rbxfile.Context) *node {
	idx, _ := ctx.Index(inst)
	item := &node{inst: inst, index: int32(idx)}
	parent.children = append(parent.children, item)
	return item
}

func (c *codec) NewProperty(wireName, name string) *node {
	buf := binpkg.NewBuffer(16)
	return &node{
		index: -1,
		name:  name,
		wire:  wireName,
		buf:   buf,
		w:     binpkg.NewWriter(buf, binpkg.DefaultConfig()),
	}
}

func (c *codec) AppendProperty(item, prop *node) {
	item.props = append(item.props, prop)
}

func (c *codec) WriteSharedStrings(_ *node, table *rbxfile.SharedStringTable) error {
	c.shared = table.Entries()
	return nil
}
