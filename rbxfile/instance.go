package rbxfile

import (
	"log/slog"
	"slices"
	"strings"
)

// Instance is a node in a DataModel tree. It has a class name, an ordered
// list of property records, and an ordered list of children.
type Instance struct {
	className string
	props     []*Property
	parent    *Instance
	children  []*Instance
	tags      []byte

	class  *Class
	object any
	logger *slog.Logger
}

// NewInstance creates a detached instance with a Name property. An empty
// name defaults to the class name.
func NewInstance(className, name string) *Instance {
	return newInstance(className, name, nil)
}

func newInstance(className, name string, logger *slog.Logger) *Instance {
	if name == "" {
		name = className
	}
	inst := &Instance{className: className, logger: logger}
	inst.AddProperty(&Property{name: "Name", typ: TypeString, value: String(name)})
	return inst
}

func (i *Instance) log() *slog.Logger {
	if i.logger != nil {
		return i.logger
	}
	return slog.Default()
}

// ClassName returns the class name.
func (i *Instance) ClassName() string {
	return i.className
}

// Name returns the Name property, or the class name when it is unset.
func (i *Instance) Name() string {
	switch v := i.Get("Name").(type) {
	case String:
		return string(v)
	case BinaryString:
		return string(v)
	}
	return i.className
}

// SetName sets the Name property.
func (i *Instance) SetName(name string) {
	// Name is always a String record, so this cannot mismatch.
	_ = i.Set("Name", String(name))
}

// Object returns the native object behind a bound instance, or nil.
func (i *Instance) Object() any {
	return i.object
}

// Class returns the class table the instance was created from, or nil.
func (i *Instance) Class() *Class {
	return i.class
}

// Parent returns the parent instance, or nil.
func (i *Instance) Parent() *Instance {
	return i.parent
}

// SetParent moves the instance under parent, appending it to the end of
// parent's children. A nil parent detaches the instance. Parenting to the
// instance itself or to one of its descendants fails with a *CycleError
// and leaves the tree unchanged.
func (i *Instance) SetParent(parent *Instance) error {
	if parent != nil && i.IsAncestorOf(parent) {
		return &CycleError{Instance: i, Parent: parent}
	}
	if i.parent != nil {
		i.parent.removeChild(i)
	}
	i.parent = parent
	if parent != nil {
		parent.children = append(parent.children, i)
	}
	return nil
}

func (i *Instance) removeChild(child *Instance) {
	if idx := slices.Index(i.children, child); idx >= 0 {
		i.children = slices.Delete(i.children, idx, idx+1)
	}
}

// IsAncestorOf reports whether i is desc or one of desc's ancestors.
func (i *Instance) IsAncestorOf(desc *Instance) bool {
	for n := desc; n != nil; n = n.parent {
		if n == i {
			return true
		}
	}
	return false
}

// IsDescendantOf reports whether i is anc or one of anc's descendants.
func (i *Instance) IsDescendantOf(anc *Instance) bool {
	return anc.IsAncestorOf(i)
}

// Children returns a snapshot of the direct children in order.
func (i *Instance) Children() []*Instance {
	return slices.Clone(i.children)
}

// Descendants returns every descendant: all direct children first, then
// each child's descendants in child order.
func (i *Instance) Descendants() []*Instance {
	var out []*Instance
	out = append(out, i.children...)
	for _, child := range i.children {
		out = append(out, child.Descendants()...)
	}
	return out
}

// FindFirstChild returns the first child whose Name equals name exactly.
// With recursive set, it searches Descendants instead.
func (i *Instance) FindFirstChild(name string, recursive bool) *Instance {
	candidates := i.children
	if recursive {
		candidates = i.Descendants()
	}
	for _, c := range candidates {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// FindFirstChildOfClass returns the first direct child with the given
// class name.
func (i *Instance) FindFirstChildOfClass(className string) *Instance {
	for _, c := range i.children {
		if c.className == className {
			return c
		}
	}
	return nil
}

// FullName returns the dot-joined names from the root ancestor down to i.
func (i *Instance) FullName() string {
	var names []string
	for n := i; n != nil; n = n.parent {
		names = append(names, n.Name())
	}
	slices.Reverse(names)
	return JoinPath(names...)
}

// FindPath resolves a dot-separated path of child names below i. An empty
// path resolves to i itself.
func (i *Instance) FindPath(path string) (*Instance, error) {
	cur := i
	for _, seg := range SplitPath(path) {
		next := cur.FindFirstChild(seg, false)
		if next == nil {
			return nil, &PathNotFoundError{Segment: seg, Parent: cur}
		}
		cur = next
	}
	return cur, nil
}

// Property returns the record with the given name, compared without
// regard to case, or nil.
func (i *Instance) Property(name string) *Property {
	for _, p := range i.props {
		if strings.EqualFold(p.name, name) {
			return p
		}
	}
	return nil
}

// Properties returns a snapshot of the records in order.
func (i *Instance) Properties() []*Property {
	return slices.Clone(i.props)
}

// AddProperty attaches p to the instance. A record with the same name is
// replaced in place; otherwise p is appended. A record owned by another
// instance is moved.
func (i *Instance) AddProperty(p *Property) {
	if p.instance != nil && p.instance != i {
		p.instance.RemoveProperty(p.name)
	}
	p.instance = i
	for idx, existing := range i.props {
		if strings.EqualFold(existing.name, p.name) {
			if existing != p {
				existing.instance = nil
				i.props[idx] = p
			}
			return
		}
	}
	i.props = append(i.props, p)
}

// RemoveProperty detaches the named record and reports whether it existed.
func (i *Instance) RemoveProperty(name string) bool {
	for idx, p := range i.props {
		if strings.EqualFold(p.name, name) {
			p.instance = nil
			i.props = slices.Delete(i.props, idx, idx+1)
			if p.isTags() {
				i.tags = nil
			}
			return true
		}
	}
	return false
}

// Get returns the current value of the named property, or nil. The
// reserved name "Tags" yields the tag blob as a BinaryString.
func (i *Instance) Get(name string) Value {
	if p := i.Property(name); p != nil {
		return p.Value()
	}
	if isTagsName(name) && i.tags != nil {
		return BinaryString(i.tags)
	}
	return nil
}

// Set converts v with ValueOf and assigns it to the named property,
// creating the record if needed. Tags only accepts String kinds.
func (i *Instance) Set(name string, v any) error {
	val, err := ValueOf(v)
	if err != nil {
		return err
	}
	if isTagsName(name) && val.Type() != TypeString {
		return &TypeMismatchError{Property: name, Want: TypeString, Got: val.Type()}
	}
	p := i.Property(name)
	if p == nil {
		p = NewProperty(name, val.Type())
		i.AddProperty(p)
	}
	return p.SetValue(val)
}

// field returns the native accessor backing p, if the instance's class
// declares one of the same type.
func (i *Instance) field(p *Property) (Field, bool) {
	if i.class == nil {
		return Field{}, false
	}
	f, ok := i.class.Field(p.name)
	if !ok || f.typ != p.typ {
		return Field{}, false
	}
	return f, true
}

// mirror copies v into the native side of the instance: the tag blob for
// the Tags property, or the class-declared field of the same name.
func (i *Instance) mirror(p *Property, v Value) {
	if p.isTags() {
		switch x := v.(type) {
		case BinaryString:
			i.tags = append([]byte{}, x...)
		case String:
			i.tags = []byte(x)
		case nil:
			i.tags = nil
		}
		return
	}
	if i.class == nil {
		return
	}
	f, declared := i.class.Field(p.name)
	if !declared {
		return
	}
	if f.typ != p.typ {
		i.log().Warn("property type differs from native field",
			"property", p.FullName(), "type", p.typ, "field_type", f.typ, "err", ErrFieldMirror)
		return
	}
	if v == nil {
		return
	}
	if !f.set(i.object, v) {
		i.log().Warn("failed to mirror property",
			"property", p.FullName(), "type", p.typ, "err", ErrFieldMirror)
	}
}
