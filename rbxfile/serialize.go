package rbxfile

import (
	"fmt"
)

// PropertyHandler renders one property value into a codec node.
type PropertyHandler[C any] interface {
	WriteProperty(p *Property, out C, ctx *Context) error
}

// HandlerFunc adapts a function to a PropertyHandler.
type HandlerFunc[C any] func(p *Property, out C, ctx *Context) error

// WriteProperty calls f.
func (f HandlerFunc[C]) WriteProperty(p *Property, out C, ctx *Context) error {
	return f(p, out, ctx)
}

// Codec is a document format as seen by Serialize. C is the format's node
// type: an XML element, a chunk builder node, and so on.
type Codec[C any] interface {
	// Handler returns the handler for a wire type name.
	Handler(wireName string) (PropertyHandler[C], bool)

	// NewItem creates the node for inst under parent.
	NewItem(parent C, inst *Instance, ctx *Context) C

	// NewProperty creates an empty property node for a handler to fill.
	NewProperty(wireName, name string) C

	// AppendProperty attaches a filled property node to its item.
	AppendProperty(item, prop C)

	// WriteSharedStrings emits the shared string section after the tree.
	WriteSharedStrings(root C, table *SharedStringTable) error
}

// DroppedProperty is a property left out of the output.
type DroppedProperty struct {
	Instance *Instance
	Property *Property
	WireName string
	Err      error
}

// Report summarizes a serialization pass.
type Report struct {
	// Instances is the number of instances written.
	Instances int

	// Dropped lists properties that were skipped because no handler
	// exists for their wire type or their handler failed.
	Dropped []DroppedProperty
}

// Partial reports whether any property was dropped.
func (r *Report) Partial() bool {
	return len(r.Dropped) > 0
}

// Serialize writes roots and their descendants into root through codec.
// Referents are assigned to the whole forest first, in post-order. Every
// instance is then emitted pre-order: its properties, then its children.
// Shared string contents are collected while walking and handed to the
// codec once at the end.
//
// A property whose wire type has no handler, or whose handler fails, is
// logged and recorded in the report; the pass continues. Integrity
// problems that would make the document unreadable abort the pass with an
// *IntegrityError.
func Serialize[C any](codec Codec[C], root C, roots []*Instance, opts ...WriteOption) (*Report, error) {
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(o)
	}

	ctx := newContext(o)
	for _, inst := range roots {
		if err := ctx.assign(inst, nil); err != nil {
			return nil, err
		}
	}
	if err := ctx.checkRefs(); err != nil {
		return nil, err
	}

	rep := &Report{Instances: len(ctx.order)}
	for _, inst := range roots {
		writeInstance(codec, root, inst, ctx, rep)
	}

	if err := codec.WriteSharedStrings(root, ctx.shared); err != nil {
		return rep, fmt.Errorf("writing shared strings: %w", err)
	}
	return rep, nil
}

func writeInstance[C any](codec Codec[C], parent C, inst *Instance, ctx *Context, rep *Report) {
	item := codec.NewItem(parent, inst, ctx)

	for _, p := range inst.Properties() {
		wire := p.WireTypeName()
		h, ok := codec.Handler(wire)
		if !ok {
			drop(ctx, rep, inst, p, wire, &MissingHandlerError{Property: p.FullName(), WireName: wire})
			continue
		}

		out := codec.NewProperty(wire, p.Name())
		if err := h.WriteProperty(p, out, ctx); err != nil {
			drop(ctx, rep, inst, p, wire, fmt.Errorf("property %s: %w", p.FullName(), err))
			continue
		}
		if p.typ == TypeSharedString {
			if s, ok := p.Value().(SharedString); ok {
				ctx.shared.Add(s)
			}
		}
		codec.AppendProperty(item, out)
	}

	for _, child := range inst.children {
		writeInstance(codec, item, child, ctx, rep)
	}
}

func drop(ctx *Context, rep *Report, inst *Instance, p *Property, wire string, err error) {
	ctx.logger.Warn("dropping property",
		"instance", inst.FullName(),
		"property", p.Name(),
		"wire_type", wire,
		"err", err)
	rep.Dropped = append(rep.Dropped, DroppedProperty{
		Instance: inst,
		Property: p,
		WireName: wire,
		Err:      err,
	})
}
