package rbxfile

import (
	"fmt"
	"log/slog"
)

// Context is the per-pass state of a serialization: the referent and
// post-order index of every instance, and the shared string table.
type Context struct {
	referents map[*Instance]string
	indices   map[*Instance]int
	used      map[string]bool
	order     []*Instance
	shared    *SharedStringTable
	next      ReferentFunc
	logger    *slog.Logger
}

func newContext(o *writeOptions) *Context {
	return &Context{
		referents: make(map[*Instance]string),
		indices:   make(map[*Instance]int),
		used:      make(map[string]bool),
		shared:    NewSharedStringTable(),
		next:      o.referents(),
		logger:    o.logger,
	}
}

// Referent returns the referent assigned to inst in this pass.
func (c *Context) Referent(inst *Instance) (string, bool) {
	ref, ok := c.referents[inst]
	return ref, ok
}

// Index returns inst's position in referent assignment order.
func (c *Context) Index(inst *Instance) (int, bool) {
	idx, ok := c.indices[inst]
	return idx, ok
}

// Instances returns every instance of the pass in referent assignment
// order.
func (c *Context) Instances() []*Instance {
	return c.order
}

// SharedStrings returns the pass's shared string table.
func (c *Context) SharedStrings() *SharedStringTable {
	return c.shared
}

// Logger returns the pass's logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// assign gives inst and its subtree referents in post-order: every child,
// in child order, before the instance itself.
func (c *Context) assign(inst *Instance, parent *Instance) error {
	if _, seen := c.indices[inst]; seen {
		return &IntegrityError{Instance: inst, Reason: "instance reached twice"}
	}
	if parent != nil && inst.parent != parent {
		return &IntegrityError{Instance: inst, Reason: "child does not point back at its parent"}
	}
	// Mark before recursing so a malformed child list cannot loop.
	c.indices[inst] = -1
	for _, child := range inst.children {
		if err := c.assign(child, inst); err != nil {
			return err
		}
	}
	ref := c.next()
	if c.used[ref] {
		return &IntegrityError{Instance: inst, Reason: fmt.Sprintf("referent %s generated twice", ref)}
	}
	c.used[ref] = true
	c.referents[inst] = ref
	c.indices[inst] = len(c.order)
	c.order = append(c.order, inst)
	return nil
}

// checkRefs fails when a Ref property points outside the document.
func (c *Context) checkRefs() error {
	for _, inst := range c.order {
		for _, p := range inst.props {
			if p.typ != TypeRef {
				continue
			}
			ref, ok := p.Value().(Ref)
			if !ok || ref.Target == nil {
				continue
			}
			if _, ok := c.referents[ref.Target]; !ok {
				return &IntegrityError{
					Instance: inst,
					Reason:   fmt.Sprintf("property %s refers to %s outside the document", p.name, ref.Target.FullName()),
				}
			}
		}
	}
	return nil
}
