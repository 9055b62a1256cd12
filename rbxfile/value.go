package rbxfile

import (
	"math"
)

// Value is a property value. The set of implementations is closed; every
// Value maps to exactly one PropertyType.
type Value interface {
	Type() PropertyType
	isValue()
}

// String is a text property value.
type String string

// BinaryString is a String-kind value whose content is arbitrary bytes.
// Properties holding one carry a raw buffer and serialize as BinaryString.
type BinaryString []byte

// Bool is a boolean property value.
type Bool bool

// Int is a 32-bit integer property value.
type Int int32

// Int64 is a 64-bit integer property value.
type Int64 int64

// Float is a single precision property value.
type Float float32

// Double is a double precision property value.
type Double float64

// Enum is an enumeration item stored by its numeric value.
type Enum uint32

// BrickColor is a legacy palette color stored by its palette number.
type BrickColor uint32

// Ref points at another instance in the same document. A zero Ref is nil.
type Ref struct {
	Target *Instance
}

func (String) Type() PropertyType             { return TypeString }
func (BinaryString) Type() PropertyType       { return TypeString }
func (Bool) Type() PropertyType               { return TypeBool }
func (Int) Type() PropertyType                { return TypeInt }
func (Int64) Type() PropertyType              { return TypeInt64 }
func (Float) Type() PropertyType              { return TypeFloat }
func (Double) Type() PropertyType             { return TypeDouble }
func (Enum) Type() PropertyType               { return TypeEnum }
func (BrickColor) Type() PropertyType         { return TypeBrickColor }
func (Ref) Type() PropertyType                { return TypeRef }
func (UDim) Type() PropertyType               { return TypeUDim }
func (UDim2) Type() PropertyType              { return TypeUDim2 }
func (Ray) Type() PropertyType                { return TypeRay }
func (Faces) Type() PropertyType              { return TypeFaces }
func (Axes) Type() PropertyType               { return TypeAxes }
func (Color3) Type() PropertyType             { return TypeColor3 }
func (Color3uint8) Type() PropertyType        { return TypeColor3uint8 }
func (Vector2) Type() PropertyType            { return TypeVector2 }
func (Vector3) Type() PropertyType            { return TypeVector3 }
func (Vector3int16) Type() PropertyType       { return TypeVector3int16 }
func (CFrame) Type() PropertyType             { return TypeCFrame }
func (Quaternion) Type() PropertyType         { return TypeQuaternion }
func (NumberSequence) Type() PropertyType     { return TypeNumberSequence }
func (ColorSequence) Type() PropertyType      { return TypeColorSequence }
func (NumberRange) Type() PropertyType        { return TypeNumberRange }
func (Rect) Type() PropertyType               { return TypeRect }
func (PhysicalProperties) Type() PropertyType { return TypePhysicalProperties }
func (SharedString) Type() PropertyType       { return TypeSharedString }

func (String) isValue()             {}
func (BinaryString) isValue()       {}
func (Bool) isValue()               {}
func (Int) isValue()                {}
func (Int64) isValue()              {}
func (Float) isValue()              {}
func (Double) isValue()             {}
func (Enum) isValue()               {}
func (BrickColor) isValue()         {}
func (Ref) isValue()                {}
func (UDim) isValue()               {}
func (UDim2) isValue()              {}
func (Ray) isValue()                {}
func (Faces) isValue()              {}
func (Axes) isValue()               {}
func (Color3) isValue()             {}
func (Color3uint8) isValue()        {}
func (Vector2) isValue()            {}
func (Vector3) isValue()            {}
func (Vector3int16) isValue()       {}
func (CFrame) isValue()             {}
func (Quaternion) isValue()         {}
func (NumberSequence) isValue()     {}
func (ColorSequence) isValue()      {}
func (NumberRange) isValue()        {}
func (Rect) isValue()               {}
func (PhysicalProperties) isValue() {}
func (SharedString) isValue()       {}

// ValueOf converts a Go value to a property Value. Values pass through
// unchanged; native Go scalars map to their property kind:
//
//	string    String
//	[]byte    BinaryString
//	bool      Bool
//	int32     Int
//	int       Int (must fit in 32 bits)
//	int64     Int64
//	float32   Float
//	float64   Double
//	*Instance Ref
//
// Anything else fails with an *UnsupportedTypeError.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return BinaryString(x), nil
	case bool:
		return Bool(x), nil
	case int32:
		return Int(x), nil
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, &UnsupportedTypeError{Value: v, Reason: "int overflows 32 bits, use int64"}
		}
		return Int(x), nil
	case int64:
		return Int64(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Double(x), nil
	case *Instance:
		return Ref{Target: x}, nil
	}
	return nil, &UnsupportedTypeError{Value: v}
}

// TypeOf returns the property kind ValueOf would assign to v, or
// TypeUnknown.
func TypeOf(v any) PropertyType {
	val, err := ValueOf(v)
	if err != nil || val == nil {
		return TypeUnknown
	}
	return val.Type()
}

// nativeOf returns the Go scalar behind a primitive value, or v itself.
func nativeOf(v Value) any {
	switch x := v.(type) {
	case String:
		return string(x)
	case BinaryString:
		return []byte(x)
	case Bool:
		return bool(x)
	case Int:
		return int32(x)
	case Int64:
		return int64(x)
	case Float:
		return float32(x)
	case Double:
		return float64(x)
	case Enum:
		return uint32(x)
	case Ref:
		return x.Target
	}
	return v
}

// widen converts integer and float values to the wider native shapes
// callers commonly ask for.
func widen[T any](v Value) (T, bool) {
	var out T
	switch p := any(&out).(type) {
	case *int:
		switch x := v.(type) {
		case Int:
			*p = int(x)
			return out, true
		case Int64:
			*p = int(x)
			return out, true
		}
	case *int64:
		if x, ok := v.(Int); ok {
			*p = int64(x)
			return out, true
		}
	case *float64:
		if x, ok := v.(Float); ok {
			*p = float64(x)
			return out, true
		}
	case *string:
		if x, ok := v.(BinaryString); ok {
			*p = string(x)
			return out, true
		}
	}
	return out, false
}

// ReadProperty returns the value of inst's property name viewed as T, or
// fallback when the property is absent or holds a different shape. T may
// be a Value type, the Value interface itself, or a native Go scalar such
// as string or float32.
func ReadProperty[T any](inst *Instance, name string, fallback T) T {
	if v, ok := TryReadProperty[T](inst, name); ok {
		return v
	}
	return fallback
}

// TryReadProperty is like ReadProperty but reports whether the property
// was present with a compatible shape.
func TryReadProperty[T any](inst *Instance, name string) (T, bool) {
	var zero T
	if inst == nil {
		return zero, false
	}
	v := inst.Get(name)
	if v == nil {
		return zero, false
	}
	if t, ok := any(v).(T); ok {
		return t, true
	}
	if t, ok := nativeOf(v).(T); ok {
		return t, true
	}
	return widen[T](v)
}
