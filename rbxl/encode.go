package rbxl

import (
	"fmt"
	"io"
	"sort"

	binpkg "github.com/robert-malhotra/go-rbxfile/internal/binary"
	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

// propKey identifies one PROP chunk within a class.
type propKey struct {
	name string
	wire string
}

// classGroup is the INST chunk of one class and the PROP chunks of its
// instances.
type classGroup struct {
	index     uint32
	name      string
	items     []*node
	propOrder []propKey
	props     map[propKey][]propEntry
}

type propEntry struct {
	ref     int32
	ordinal uint32
	data    []byte
}

// Encode writes roots and their descendants to w in the binary format.
// Properties that cannot be written are listed in the returned report.
func Encode(w io.Writer, roots []*rbxfile.Instance, opts ...Option) (*rbxfile.Report, error) {
	data, rep, err := EncodeToBytes(roots, opts...)
	if err != nil {
		return rep, err
	}
	if _, err := w.Write(data); err != nil {
		return rep, fmt.Errorf("writing file: %w", err)
	}
	return rep, nil
}

// EncodeToBytes is Encode into a byte slice.
func EncodeToBytes(roots []*rbxfile.Instance, opts ...Option) ([]byte, *rbxfile.Report, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := newCodec()
	root := newRootNode()
	write := append([]rbxfile.WriteOption{rbxfile.WithLogger(o.logger)}, o.write...)
	rep, err := rbxfile.Serialize[*node](c, root, roots, write...)
	if err != nil {
		return nil, nil, err
	}

	comp, err := newCompressor(o.compression)
	if err != nil {
		return nil, rep, err
	}
	if comp != nil {
		defer comp.Close()
	}

	data, err := layout(root, c.shared, comp)
	if err != nil {
		return nil, rep, err
	}
	return data, rep, nil
}

// layout flattens the node tree into a header and chunks: SSTR when there
// are shared strings, one INST per class in order of first appearance, the
// PROP chunks of each class, PRNT, then END.
func layout(root *node, shared []rbxfile.SharedStringEntry, comp compressor) ([]byte, error) {
	items := flatten(root)
	groups := groupClasses(items)

	buf := binpkg.NewBuffer(headerSize + 64*len(items))
	w := binpkg.NewWriter(buf, binpkg.DefaultConfig())

	h := &Header{Version: Version, ClassCount: uint32(len(groups)), InstanceCount: uint32(len(items))}
	if err := h.write(w); err != nil {
		return nil, err
	}

	if len(shared) > 0 {
		payload, err := sharedStringsPayload(shared)
		if err != nil {
			return nil, err
		}
		if err := writeChunk(w, chunkSharedStrings, payload, comp); err != nil {
			return nil, err
		}
	}

	for _, g := range groups {
		payload, err := instancesPayload(g)
		if err != nil {
			return nil, err
		}
		if err := writeChunk(w, chunkInstances, payload, comp); err != nil {
			return nil, err
		}
	}
	for _, g := range groups {
		for _, key := range g.propOrder {
			payload, err := propertyPayload(g, key)
			if err != nil {
				return nil, err
			}
			if err := writeChunk(w, chunkProperties, payload, comp); err != nil {
				return nil, err
			}
		}
	}

	payload, err := parentsPayload(root)
	if err != nil {
		return nil, err
	}
	if err := writeChunk(w, chunkParents, payload, comp); err != nil {
		return nil, err
	}
	if err := writeChunk(w, chunkEnd, []byte(endMarker), nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flatten returns the item nodes under root ordered by referent index.
func flatten(root *node) []*node {
	var items []*node
	var walk func(n *node)
	walk = func(n *node) {
		for _, c := range n.children {
			items = append(items, c)
			walk(c)
		}
	}
	walk(root)
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })
	return items
}

func groupClasses(items []*node) []*classGroup {
	var groups []*classGroup
	byName := make(map[string]*classGroup)
	for _, item := range items {
		class := item.inst.ClassName()
		g, ok := byName[class]
		if !ok {
			g = &classGroup{
				index: uint32(len(groups)),
				name:  class,
				props: make(map[propKey][]propEntry),
			}
			byName[class] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, item)
		for i, p := range item.props {
			key := propKey{name: p.name, wire: p.wire}
			if _, seen := g.props[key]; !seen {
				g.propOrder = append(g.propOrder, key)
			}
			g.props[key] = append(g.props[key], propEntry{ref: item.index, ordinal: uint32(i), data: p.bytes()})
		}
	}
	return groups
}

func newPayload() (*binpkg.Buffer, *binpkg.Writer) {
	buf := binpkg.NewBuffer(256)
	return buf, binpkg.NewWriter(buf, binpkg.DefaultConfig())
}

// sharedStringsPayload is Version(4) Count(4) then Key and Data blobs.
func sharedStringsPayload(entries []rbxfile.SharedStringEntry) ([]byte, error) {
	buf, w := newPayload()
	if err := w.WriteUint32(0); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(len(entries))); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.WriteString(e.Key); err != nil {
			return nil, err
		}
		if err := w.WriteBlob(e.Data); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// instancesPayload is ClassIndex(4) ClassName Count(4) then one referent
// index per instance.
func instancesPayload(g *classGroup) ([]byte, error) {
	buf, w := newPayload()
	if err := w.WriteUint32(g.index); err != nil {
		return nil, err
	}
	if err := w.WriteString(g.name); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(len(g.items))); err != nil {
		return nil, err
	}
	for _, item := range g.items {
		if err := w.WriteInt32(item.index); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// propertyPayload is ClassIndex(4) Name WireType TypeID(1) Count(4) then
// Referent(4) Ordinal(4) and a value blob per instance.
func propertyPayload(g *classGroup, key propKey) ([]byte, error) {
	vc, ok := valueCodecs[key.wire]
	if !ok {
		return nil, fmt.Errorf("no value codec for %s", key.wire)
	}
	entries := g.props[key]

	buf, w := newPayload()
	if err := w.WriteUint32(g.index); err != nil {
		return nil, err
	}
	if err := w.WriteString(key.name); err != nil {
		return nil, err
	}
	if err := w.WriteString(key.wire); err != nil {
		return nil, err
	}
	if err := w.WriteUint8(uint8(vc.typ)); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(len(entries))); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.WriteInt32(e.ref); err != nil {
			return nil, err
		}
		if err := w.WriteUint32(e.ordinal); err != nil {
			return nil, err
		}
		if err := w.WriteBlob(e.data); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// parentsPayload is Version(1) Count(4) then (child, parent) referent
// pairs in document order. Top-level instances have parent -1.
func parentsPayload(root *node) ([]byte, error) {
	type link struct{ child, parent int32 }
	var links []link
	var walk func(n *node)
	walk = func(n *node) {
		for _, c := range n.children {
			links = append(links, link{child: c.index, parent: n.index})
			walk(c)
		}
	}
	walk(root)

	buf, w := newPayload()
	if err := w.WriteUint8(0); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(len(links))); err != nil {
		return nil, err
	}
	for _, l := range links {
		if err := w.WriteInt32(l.child); err != nil {
			return nil, err
		}
		if err := w.WriteInt32(l.parent); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
