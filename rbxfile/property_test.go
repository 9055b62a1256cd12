package rbxfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyTypeNumbering(t *testing.T) {
	tests := []struct {
		typ  PropertyType
		want uint8
		name string
	}{
		{TypeUnknown, 0, "Unknown"},
		{TypeString, 1, "String"},
		{TypeVector3, 14, "Vector3"},
		{TypeCFrame, 16, "CFrame"},
		{TypeQuaternion, 17, "Quaternion"},
		{TypeRef, 19, "Ref"},
		{TypeSharedString, 28, "SharedString"},
	}
	for _, tt := range tests {
		if uint8(tt.typ) != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.typ, tt.want)
		}
		if tt.typ.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.typ.String(), tt.name)
		}
	}
	assert.False(t, PropertyType(15).Valid())
	assert.False(t, TypeUnknown.Valid())
	assert.True(t, TypeColor3uint8.Valid())

	typ, ok := ParsePropertyType("NumberSequence")
	assert.True(t, ok)
	assert.Equal(t, TypeNumberSequence, typ)
}

func TestWireTypeName(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{String("x"), "string"},
		{BinaryString("x"), "BinaryString"},
		{Bool(true), "bool"},
		{Int(1), "int"},
		{Int64(1), "int64"},
		{Float(1), "float"},
		{Double(1), "double"},
		{CFrame{}, "CoordinateFrame"},
		{Quaternion{}, "CoordinateFrame"},
		{Enum(3), "token"},
		{Rect{}, "Rect2D"},
		{Vector3{}, "Vector3"},
		{Ref{}, "Ref"},
		{NewSharedString(nil), "SharedString"},
		{PhysicalProperties{}, "PhysicalProperties"},
	}
	for _, tt := range tests {
		p := NewProperty("P", TypeUnknown)
		require.NoError(t, p.SetValue(tt.value))
		if got := p.WireTypeName(); got != tt.want {
			t.Errorf("WireTypeName() for %T = %q, want %q", tt.value, got, tt.want)
		}
	}

	p := NewProperty("Source", TypeString)
	p.WireName = "ProtectedString"
	assert.Equal(t, "ProtectedString", p.WireTypeName())
}

func TestRawBuffer(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  []byte
	}{
		{"int", Int(-2), []byte{0xFE, 0xFF, 0xFF, 0xFF}},
		{"int64", Int64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{"bool", Bool(true), []byte{1}},
		{"float", Float(1), []byte{0x00, 0x00, 0x80, 0x3F}},
		{"double", Double(1), []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
		{"binary", BinaryString("abc"), []byte("abc")},
		{"empty binary", BinaryString(nil), []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProperty("P", TypeUnknown)
			require.NoError(t, p.SetValue(tt.value))
			assert.True(t, p.HasRawBuffer())
			assert.Equal(t, tt.want, p.RawBuffer())
		})
	}
}

func TestRawBufferSharedStringIsDigest(t *testing.T) {
	s := NewSharedString([]byte("hello"))
	p := NewProperty("P", TypeSharedString)
	require.NoError(t, p.SetValue(s))

	h := s.Hash()
	assert.Equal(t, h[:], p.RawBuffer())
	assert.Equal(t, "XUFAKrxLKna5cZ2REBfFkg==", s.Key())
}

func TestRawBufferStructuredKinds(t *testing.T) {
	for _, v := range []Value{String("text"), Vector3{1, 2, 3}, CFrame{}, NumberSequence{}} {
		p := NewProperty("P", TypeUnknown)
		require.NoError(t, p.SetValue(v))
		if p.HasRawBuffer() {
			t.Errorf("%T should not derive a raw buffer", v)
		}
	}
}

func TestSetRawBuffer(t *testing.T) {
	p := NewProperty("P", TypeString)
	require.NoError(t, p.SetValue(String("text")))
	p.SetRawBuffer([]byte{1, 2})
	assert.Equal(t, []byte{1, 2}, p.RawBuffer())
	assert.Equal(t, "BinaryString", p.WireTypeName())

	// The next write invalidates it.
	require.NoError(t, p.SetValue(String("other")))
	assert.False(t, p.HasRawBuffer())
}

func TestPropertyUnknownAdoptsType(t *testing.T) {
	p := NewProperty("P", TypeUnknown)
	require.NoError(t, p.SetValue(Color3{1, 1, 1}))
	assert.Equal(t, TypeColor3, p.Type())

	err := p.SetValue(Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Equal(t, Color3{1, 1, 1}, p.Value())

	require.NoError(t, p.SetValue(nil))
	assert.Nil(t, p.Value())
	assert.Equal(t, TypeColor3, p.Type())
}

func TestPropertyString(t *testing.T) {
	inst := NewInstance("Part", "Door")
	require.NoError(t, inst.Set("Size", Vector3{4, 1.5, 2}))
	p := inst.Property("Size")

	assert.Equal(t, "Door.Size", p.FullName())
	assert.Equal(t, "[Vector3] Size = 4, 1.5, 2", p.String())
	assert.Equal(t, "[Float] Empty", NewProperty("Empty", TypeFloat).String())
}

func TestValueOf(t *testing.T) {
	inst := NewInstance("Part", "")
	tests := []struct {
		in   any
		want Value
	}{
		{"s", String("s")},
		{[]byte("b"), BinaryString("b")},
		{true, Bool(true)},
		{int32(3), Int(3)},
		{3, Int(3)},
		{int64(3), Int64(3)},
		{float32(1.5), Float(1.5)},
		{1.5, Double(1.5)},
		{inst, Ref{Target: inst}},
		{UDim2{X: UDim{0.5, 10}}, UDim2{X: UDim{0.5, 10}}},
	}
	for _, tt := range tests {
		got, err := ValueOf(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want.Type(), TypeOf(tt.in))
	}
	assert.Equal(t, TypeUnknown, TypeOf(uint16(1)))
}

func TestQuaternionCFrame(t *testing.T) {
	identity := Quaternion{0, 0, 0, 1}.CFrame()
	assert.Equal(t, NewCFrame(Vector3{}), identity)

	// 180 degrees about Y.
	cf := Quaternion{0, 1, 0, 0}.CFrame()
	assert.Equal(t, [9]float32{-1, 0, 0, 0, 1, 0, 0, 0, -1}, cf.Rotation)
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Faces(FaceTop | FaceFront), "Top, Front"},
		{Axes(AxisX | AxisZ), "X, Z"},
		{UDim2{UDim{0.5, 10}, UDim{1, -4}}, "{0.5, 10}, {1, -4}"},
		{NumberRange{0, 10}, "0 10"},
		{NumberSequence{Keypoints: []NumberSequenceKeypoint{{0, 1, 0}, {1, 0, 0}}}, "0 1 0 1 0 0"},
		{PhysicalProperties{}, "nil"},
		{Ref{}, "nil"},
	}
	for _, tt := range tests {
		if got := tt.v.(interface{ String() string }).String(); got != tt.want {
			t.Errorf("%T.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSharedStringTable(t *testing.T) {
	table := NewSharedStringTable()
	a := NewSharedString([]byte("a"))

	key, added := table.Add(a)
	assert.True(t, added)
	_, added = table.Add(NewSharedString([]byte("a")))
	assert.False(t, added)
	table.Put("custom", []byte("b"))
	table.Put("custom", []byte("ignored"))

	assert.Equal(t, 2, table.Len())
	data, ok := table.Get(key)
	require.True(t, ok)
	assert.True(t, bytes.Equal([]byte("a"), data))

	s, ok := table.Lookup("custom")
	require.True(t, ok)
	assert.Equal(t, []byte("b"), s.Bytes())

	entries := table.Entries()
	assert.Equal(t, []string{key, "custom"}, []string{entries[0].Key, entries[1].Key})
}
