package rbxfile

import "strings"

// PropertyType is the closed set of property value kinds. The numbering is
// part of the binary format and must not change.
type PropertyType uint8

const (
	TypeUnknown PropertyType = iota
	TypeString
	TypeBool
	TypeInt
	TypeFloat
	TypeDouble
	TypeUDim
	TypeUDim2
	TypeRay
	TypeFaces
	TypeAxes
	TypeBrickColor
	TypeColor3
	TypeVector2
	TypeVector3
	TypeCFrame PropertyType = iota + 1 // 15 is unassigned
	TypeQuaternion
	TypeEnum
	TypeRef
	TypeVector3int16
	TypeNumberSequence
	TypeColorSequence
	TypeNumberRange
	TypeRect
	TypePhysicalProperties
	TypeColor3uint8
	TypeInt64
	TypeSharedString
)

var typeNames = map[PropertyType]string{
	TypeUnknown:            "Unknown",
	TypeString:             "String",
	TypeBool:               "Bool",
	TypeInt:                "Int",
	TypeFloat:              "Float",
	TypeDouble:             "Double",
	TypeUDim:               "UDim",
	TypeUDim2:              "UDim2",
	TypeRay:                "Ray",
	TypeFaces:              "Faces",
	TypeAxes:               "Axes",
	TypeBrickColor:         "BrickColor",
	TypeColor3:             "Color3",
	TypeVector2:            "Vector2",
	TypeVector3:            "Vector3",
	TypeCFrame:             "CFrame",
	TypeQuaternion:         "Quaternion",
	TypeEnum:               "Enum",
	TypeRef:                "Ref",
	TypeVector3int16:       "Vector3int16",
	TypeNumberSequence:     "NumberSequence",
	TypeColorSequence:      "ColorSequence",
	TypeNumberRange:        "NumberRange",
	TypeRect:               "Rect",
	TypePhysicalProperties: "PhysicalProperties",
	TypeColor3uint8:        "Color3uint8",
	TypeInt64:              "Int64",
	TypeSharedString:       "SharedString",
}

// String returns the type's tag name, e.g. "CFrame".
func (t PropertyType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether t is a known, non-Unknown type.
func (t PropertyType) Valid() bool {
	_, ok := typeNames[t]
	return ok && t != TypeUnknown
}

// WireName returns the format-facing type name for t. String maps to
// "string"; a property holding a raw buffer uses "BinaryString" instead,
// see Property.WireTypeName.
func (t PropertyType) WireName() string {
	switch t {
	case TypeCFrame, TypeQuaternion:
		return "CoordinateFrame"
	case TypeEnum:
		return "token"
	case TypeRect:
		return "Rect2D"
	case TypeInt, TypeBool, TypeFloat, TypeInt64, TypeDouble, TypeString:
		return strings.ToLower(t.String())
	default:
		return t.String()
	}
}

// ParsePropertyType returns the type whose tag name is name.
func ParsePropertyType(name string) (PropertyType, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeUnknown, false
}
