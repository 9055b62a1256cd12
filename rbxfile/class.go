package rbxfile

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Field is a typed accessor pair binding a property name to a field of a
// native Go object. Build one with NewField.
type Field struct {
	typ PropertyType
	get func(obj any) (Value, bool)
	set func(obj any, v Value) bool
}

// Type returns the property type the field holds.
func (f Field) Type() PropertyType {
	return f.typ
}

// NewField binds get and set to objects of type *O holding a V. A nil set
// makes the field read-only; writes to it are reported as mirror failures.
func NewField[O any, V Value](get func(*O) V, set func(*O, V)) Field {
	var zero V
	return Field{
		typ: zero.Type(),
		get: func(obj any) (Value, bool) {
			o, ok := obj.(*O)
			if !ok || o == nil || get == nil {
				return nil, false
			}
			return get(o), true
		},
		set: func(obj any, v Value) bool {
			o, ok := obj.(*O)
			if !ok || o == nil || set == nil {
				return false
			}
			tv, ok := v.(V)
			if !ok {
				return false
			}
			set(o, tv)
			return true
		},
	}
}

// Class describes a native Go type that backs instances of one class name.
type Class struct {
	name   string
	new    func() any
	fields map[string]Field
}

// NewClass declares a class whose instances are backed by a new(O). Field
// names are matched against property names without regard to case.
func NewClass[O any](name string, fields map[string]Field) *Class {
	c := &Class{
		name:   name,
		new:    func() any { return new(O) },
		fields: make(map[string]Field, len(fields)),
	}
	for fieldName, f := range fields {
		c.fields[strings.ToLower(fieldName)] = f
	}
	return c
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Field returns the accessor declared for a property name.
func (c *Class) Field(name string) (Field, bool) {
	f, ok := c.fields[strings.ToLower(name)]
	return f, ok
}

// FieldNames returns the declared field names, lower-cased and sorted.
func (c *Class) FieldNames() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger *slog.Logger
}

// WithRegistryLogger sets the logger handed to instances the registry
// creates.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// Registry maps class names to class tables. It is built once and is safe
// for concurrent reads.
type Registry struct {
	classes map[string]*Class
	logger  *slog.Logger
}

// NewRegistry builds a registry from classes. Declaring a class name twice
// is an error.
func NewRegistry(classes []*Class, opts ...RegistryOption) (*Registry, error) {
	o := &registryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	r := &Registry{
		classes: make(map[string]*Class, len(classes)),
		logger:  o.logger,
	}
	for _, c := range classes {
		if _, dup := r.classes[c.name]; dup {
			return nil, fmt.Errorf("class %q declared twice", c.name)
		}
		r.classes[c.name] = c
	}
	return r, nil
}

// Class returns the class table for className.
func (r *Registry) Class(className string) (*Class, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.classes[className]
	return c, ok
}

// New creates an instance of className. When the class is registered the
// instance is bound to a fresh native object, and the Name property is
// mirrored into it. A nil registry behaves like NewInstance.
func (r *Registry) New(className, name string) *Instance {
	if r == nil {
		return NewInstance(className, name)
	}
	inst := newInstance(className, name, r.logger)
	c, ok := r.classes[className]
	if !ok {
		return inst
	}
	inst.class = c
	inst.object = c.new()
	if p := inst.Property("Name"); p != nil {
		inst.mirror(p, p.value)
	}
	return inst
}
