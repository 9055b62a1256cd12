package rbxfile

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UDim is a one-dimensional scale and pixel offset.
type UDim struct {
	Scale  float32
	Offset int32
}

// UDim2 is a two-dimensional UDim.
type UDim2 struct {
	X, Y UDim
}

// Vector2 is a 2D vector.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a 3D vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vector3int16 is a 3D vector of 16-bit integers.
type Vector3int16 struct {
	X, Y, Z int16
}

// Ray is an origin and a direction.
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// Rect is an axis-aligned 2D rectangle.
type Rect struct {
	Min, Max Vector2
}

// CFrame is a position and a row-major 3x3 rotation matrix
// R00 R01 R02 R10 R11 R12 R20 R21 R22.
type CFrame struct {
	Position Vector3
	Rotation [9]float32
}

// Identity rotation matrix.
var identityRotation = [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}

// NewCFrame returns an unrotated CFrame at pos.
func NewCFrame(pos Vector3) CFrame {
	return CFrame{Position: pos, Rotation: identityRotation}
}

// Quaternion is a rotation stored as X, Y, Z, W components.
type Quaternion struct {
	X, Y, Z, W float32
}

// CFrame returns the rotation as an unpositioned CFrame.
func (q Quaternion) CFrame() CFrame {
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)
	n := x*x + y*y + z*z + w*w
	if n == 0 {
		return NewCFrame(Vector3{})
	}
	s := 2 / n
	return CFrame{Rotation: [9]float32{
		float32(1 - s*(y*y+z*z)), float32(s * (x*y - w*z)), float32(s * (x*z + w*y)),
		float32(s * (x*y + w*z)), float32(1 - s*(x*x+z*z)), float32(s * (y*z - w*x)),
		float32(s * (x*z - w*y)), float32(s * (y*z + w*x)), float32(1 - s*(x*x+y*y)),
	}}
}

// Color3 is an RGB color with components in [0, 1].
type Color3 struct {
	R, G, B float32
}

// Color3uint8 is an RGB color with byte components.
type Color3uint8 struct {
	R, G, B uint8
}

// Faces is a bit set of the six faces of a part.
type Faces uint8

const (
	FaceRight Faces = 1 << iota
	FaceTop
	FaceBack
	FaceLeft
	FaceBottom
	FaceFront
)

// Axes is a bit set of the X, Y and Z axes.
type Axes uint8

const (
	AxisX Axes = 1 << iota
	AxisY
	AxisZ
)

// NumberRange is a closed numeric interval.
type NumberRange struct {
	Min, Max float32
}

// NumberSequenceKeypoint is one keypoint of a NumberSequence.
type NumberSequenceKeypoint struct {
	Time     float32
	Value    float32
	Envelope float32
}

// NumberSequence is a piecewise-linear numeric curve over [0, 1].
type NumberSequence struct {
	Keypoints []NumberSequenceKeypoint
}

// ColorSequenceKeypoint is one keypoint of a ColorSequence.
type ColorSequenceKeypoint struct {
	Time     float32
	Value    Color3
	Envelope float32
}

// ColorSequence is a piecewise-linear color gradient over [0, 1].
type ColorSequence struct {
	Keypoints []ColorSequenceKeypoint
}

// PhysicalProperties overrides a part's material physics. When
// CustomPhysics is false the remaining fields are ignored.
type PhysicalProperties struct {
	CustomPhysics    bool
	Density          float32
	Friction         float32
	Elasticity       float32
	FrictionWeight   float32
	ElasticityWeight float32
}

// SharedString is a blob stored once per document and referenced by
// content hash from every property that holds it.
type SharedString struct {
	data []byte
}

// NewSharedString returns a SharedString holding a copy of data.
func NewSharedString(data []byte) SharedString {
	return SharedString{data: append([]byte(nil), data...)}
}

// Bytes returns the blob contents.
func (s SharedString) Bytes() []byte {
	return s.data
}

// Hash returns the MD5 digest of the contents.
func (s SharedString) Hash() [md5.Size]byte {
	return md5.Sum(s.data)
}

// Key returns the base64 encoded MD5 digest identifying the blob.
func (s SharedString) Key() string {
	h := s.Hash()
	return base64.StdEncoding.EncodeToString(h[:])
}

func formatFloat(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	case math.IsNaN(float64(f)):
		return "nan"
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func joinFloats(fs ...float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, ", ")
}

func (v String) String() string       { return string(v) }
func (v BinaryString) String() string { return string(v) }
func (v Bool) String() string         { return strconv.FormatBool(bool(v)) }
func (v Int) String() string          { return strconv.FormatInt(int64(v), 10) }
func (v Int64) String() string        { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string        { return formatFloat(float32(v)) }
func (v Double) String() string       { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Enum) String() string         { return strconv.FormatUint(uint64(v), 10) }
func (v BrickColor) String() string   { return strconv.FormatUint(uint64(v), 10) }

func (v Ref) String() string {
	if v.Target == nil {
		return "nil"
	}
	return v.Target.FullName()
}

func (v UDim) String() string {
	return fmt.Sprintf("%s, %d", formatFloat(v.Scale), v.Offset)
}

func (v UDim2) String() string {
	return fmt.Sprintf("{%s}, {%s}", v.X, v.Y)
}

func (v Vector2) String() string { return joinFloats(v.X, v.Y) }
func (v Vector3) String() string { return joinFloats(v.X, v.Y, v.Z) }

func (v Vector3int16) String() string {
	return fmt.Sprintf("%d, %d, %d", v.X, v.Y, v.Z)
}

func (v Ray) String() string {
	return fmt.Sprintf("{%s}, {%s}", v.Origin, v.Direction)
}

func (v Rect) String() string {
	return fmt.Sprintf("%s, %s", v.Min, v.Max)
}

func (v CFrame) String() string {
	fs := make([]float32, 0, 12)
	fs = append(fs, v.Position.X, v.Position.Y, v.Position.Z)
	fs = append(fs, v.Rotation[:]...)
	return joinFloats(fs...)
}

func (v Quaternion) String() string { return joinFloats(v.X, v.Y, v.Z, v.W) }
func (v Color3) String() string     { return joinFloats(v.R, v.G, v.B) }

func (v Color3uint8) String() string {
	return fmt.Sprintf("%d, %d, %d", v.R, v.G, v.B)
}

var faceNames = []string{"Right", "Top", "Back", "Left", "Bottom", "Front"}

func (v Faces) String() string {
	var names []string
	for i, name := range faceNames {
		if v&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

var axisNames = []string{"X", "Y", "Z"}

func (v Axes) String() string {
	var names []string
	for i, name := range axisNames {
		if v&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func (v NumberRange) String() string {
	return formatFloat(v.Min) + " " + formatFloat(v.Max)
}

func (v NumberSequence) String() string {
	var sb strings.Builder
	for i, k := range v.Keypoints {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s %s %s", formatFloat(k.Time), formatFloat(k.Value), formatFloat(k.Envelope))
	}
	return sb.String()
}

func (v ColorSequence) String() string {
	var sb strings.Builder
	for i, k := range v.Keypoints {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s %s %s %s %s", formatFloat(k.Time),
			formatFloat(k.Value.R), formatFloat(k.Value.G), formatFloat(k.Value.B),
			formatFloat(k.Envelope))
	}
	return sb.String()
}

func (v PhysicalProperties) String() string {
	if !v.CustomPhysics {
		return "nil"
	}
	return joinFloats(v.Density, v.Friction, v.Elasticity, v.FrictionWeight, v.ElasticityWeight)
}

func (v SharedString) String() string {
	return v.Key()
}
