package rbxfile

import (
	"fmt"
	"strings"
)

const tagsProperty = "Tags"

// Property is a named, typed value record attached to an Instance.
type Property struct {
	// WireName overrides the wire type name derived from the property's
	// type. Loaders set it when a file uses a token that maps onto another
	// kind, such as "ProtectedString" for String.
	WireName string

	name     string
	typ      PropertyType
	value    Value
	raw      []byte
	instance *Instance
}

// NewProperty returns a free-standing property record of the given type.
// A TypeUnknown record adopts the type of the first value assigned to it.
func NewProperty(name string, typ PropertyType) *Property {
	return &Property{name: name, typ: typ}
}

// Name returns the property name.
func (p *Property) Name() string {
	return p.name
}

// Type returns the property type.
func (p *Property) Type() PropertyType {
	return p.typ
}

// Instance returns the owning instance, or nil for a free-standing record.
func (p *Property) Instance() *Instance {
	return p.instance
}

// FullName returns the owning instance's full name followed by the
// property name.
func (p *Property) FullName() string {
	if p.instance == nil {
		return p.name
	}
	return p.instance.FullName() + PathSeparator + p.name
}

// isTags reports whether p is the String record backed by the tag blob.
func (p *Property) isTags() bool {
	return p.typ == TypeString && isTagsName(p.name)
}

func isTagsName(name string) bool {
	return strings.EqualFold(name, tagsProperty)
}

// Value returns the current value. Properties backed by a native field of
// a bound class read through the field; a field that cannot be read yields
// nil rather than a stale value.
func (p *Property) Value() Value {
	inst := p.instance
	if inst == nil {
		return p.value
	}
	if p.isTags() {
		return BinaryString(inst.tags)
	}
	if f, ok := inst.field(p); ok {
		v, ok := f.get(inst.object)
		if !ok {
			return nil
		}
		return v
	}
	return p.value
}

// SetValue stores v and mirrors it into the owning instance's native
// field, if one is declared. A nil v clears the value. Assigning a value
// of another kind fails with a *TypeMismatchError, as does any non-String
// value for the reserved Tags property.
func (p *Property) SetValue(v Value) error {
	if v != nil {
		if isTagsName(p.name) && v.Type() != TypeString {
			return &TypeMismatchError{Property: p.name, Want: TypeString, Got: v.Type()}
		}
		if p.typ == TypeUnknown {
			p.typ = v.Type()
		} else if v.Type() != p.typ {
			return &TypeMismatchError{Property: p.name, Want: p.typ, Got: v.Type()}
		}
	}
	p.value = v
	p.raw = nil
	if p.instance != nil {
		p.instance.mirror(p, v)
	}
	return nil
}

// RawBuffer returns the canonical byte image of the value: an explicitly
// supplied buffer, the bytes of a BinaryString, the digest of a
// SharedString, or the little-endian encoding of a scalar. Other kinds
// return nil.
func (p *Property) RawBuffer() []byte {
	if p.raw != nil {
		return p.raw
	}
	return rawImage(p.Value())
}

// HasRawBuffer reports whether RawBuffer would return data.
func (p *Property) HasRawBuffer() bool {
	return p.RawBuffer() != nil
}

// SetRawBuffer supplies the byte image explicitly. It is cleared by the
// next SetValue.
func (p *Property) SetRawBuffer(data []byte) {
	p.raw = append([]byte{}, data...)
}

// WireTypeName returns the type name codecs use for this property.
func (p *Property) WireTypeName() string {
	if p.WireName != "" {
		return p.WireName
	}
	if p.typ == TypeString && p.HasRawBuffer() {
		return "BinaryString"
	}
	return p.typ.WireName()
}

func (p *Property) String() string {
	v := p.Value()
	if v == nil {
		return fmt.Sprintf("[%s] %s", p.typ, p.name)
	}
	return fmt.Sprintf("[%s] %s = %v", p.typ, p.name, v)
}
