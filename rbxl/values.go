package rbxl

import (
	"fmt"

	binpkg "github.com/robert-malhotra/go-rbxfile/internal/binary"
	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

type encodeFunc func(p *rbxfile.Property, w *binpkg.Writer, ctx *rbxfile.Context) error

type decodeFunc func(r *binpkg.Reader, d *decoder) (rbxfile.Value, error)

// valueCodec is the binary form of one wire type.
type valueCodec struct {
	typ    rbxfile.PropertyType
	encode encodeFunc
	decode decodeFunc
}

var valueCodecs = map[string]valueCodec{
	"string":             {rbxfile.TypeString, encodeString, decodeString},
	"ProtectedString":    {rbxfile.TypeString, encodeString, decodeString},
	"Content":            {rbxfile.TypeString, encodeString, decodeString},
	"BinaryString":       {rbxfile.TypeString, encodeBinaryString, decodeBinaryString},
	"bool":               {rbxfile.TypeBool, encoder(func(v rbxfile.Bool, w *binpkg.Writer) error { return w.WriteBool(bool(v)) }), decodeBool},
	"int":                {rbxfile.TypeInt, encoder(func(v rbxfile.Int, w *binpkg.Writer) error { return w.WriteInt32(int32(v)) }), decodeInt},
	"int64":              {rbxfile.TypeInt64, encoder(func(v rbxfile.Int64, w *binpkg.Writer) error { return w.WriteInt64(int64(v)) }), decodeInt64},
	"float":              {rbxfile.TypeFloat, encoder(func(v rbxfile.Float, w *binpkg.Writer) error { return w.WriteFloat32(float32(v)) }), decodeFloat},
	"double":             {rbxfile.TypeDouble, encoder(func(v rbxfile.Double, w *binpkg.Writer) error { return w.WriteFloat64(float64(v)) }), decodeDouble},
	"token":              {rbxfile.TypeEnum, encoder(func(v rbxfile.Enum, w *binpkg.Writer) error { return w.WriteUint32(uint32(v)) }), decodeEnum},
	"BrickColor":         {rbxfile.TypeBrickColor, encoder(func(v rbxfile.BrickColor, w *binpkg.Writer) error { return w.WriteUint32(uint32(v)) }), decodeBrickColor},
	"UDim":               {rbxfile.TypeUDim, encoder(writeUDim), decodeUDim},
	"UDim2":              {rbxfile.TypeUDim2, encoder(writeUDim2), decodeUDim2},
	"Ray":                {rbxfile.TypeRay, encoder(writeRay), decodeRay},
	"Faces":              {rbxfile.TypeFaces, encoder(func(v rbxfile.Faces, w *binpkg.Writer) error { return w.WriteUint8(uint8(v)) }), decodeFaces},
	"Axes":               {rbxfile.TypeAxes, encoder(func(v rbxfile.Axes, w *binpkg.Writer) error { return w.WriteUint8(uint8(v)) }), decodeAxes},
	"Color3":             {rbxfile.TypeColor3, encoder(writeColor3), decodeColor3},
	"Color3uint8":        {rbxfile.TypeColor3uint8, encoder(writeColor3uint8), decodeColor3uint8},
	"Vector2":            {rbxfile.TypeVector2, encoder(writeVector2), decodeVector2},
	"Vector3":            {rbxfile.TypeVector3, encoder(writeVector3), decodeVector3},
	"Vector3int16":       {rbxfile.TypeVector3int16, encoder(writeVector3int16), decodeVector3int16},
	"CoordinateFrame":    {rbxfile.TypeCFrame, encodeCFrame, decodeCFrame},
	"Ref":                {rbxfile.TypeRef, encodeRef, decodeRef},
	"NumberSequence":     {rbxfile.TypeNumberSequence, encoder(writeNumberSequence), decodeNumberSequence},
	"ColorSequence":      {rbxfile.TypeColorSequence, encoder(writeColorSequence), decodeColorSequence},
	"NumberRange":        {rbxfile.TypeNumberRange, encoder(writeNumberRange), decodeNumberRange},
	"Rect2D":             {rbxfile.TypeRect, encoder(writeRect), decodeRect},
	"PhysicalProperties": {rbxfile.TypePhysicalProperties, encoder(writePhysicalProperties), decodePhysicalProperties},
	"SharedString":       {rbxfile.TypeSharedString, encoder(func(v rbxfile.SharedString, w *binpkg.Writer) error { return w.WriteString(v.Key()) }), decodeSharedString},
}

// encoder adapts a function of one concrete value type to an encodeFunc.
func encoder[T rbxfile.Value](fn func(v T, w *binpkg.Writer) error) encodeFunc {
	return func(p *rbxfile.Property, w *binpkg.Writer, _ *rbxfile.Context) error {
		v, ok := p.Value().(T)
		if !ok {
			return fmt.Errorf("cannot encode %T as %s", p.Value(), p.WireTypeName())
		}
		return fn(v, w)
	}
}

// floats writes each value as a float32.
func floats(w *binpkg.Writer, fs ...float32) error {
	for _, f := range fs {
		if err := w.WriteFloat32(f); err != nil {
			return err
		}
	}
	return nil
}

// readFloats reads n float32 values.
func readFloats(r *binpkg.Reader, n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		f, err := r.ReadFloat32()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func encodeString(p *rbxfile.Property, w *binpkg.Writer, _ *rbxfile.Context) error {
	switch v := p.Value().(type) {
	case rbxfile.String:
		return w.WriteString(string(v))
	case rbxfile.BinaryString:
		return w.WriteBlob(v)
	case nil:
		return w.WriteString("")
	default:
		return fmt.Errorf("cannot encode %T as %s", v, p.WireTypeName())
	}
}

func encodeBinaryString(p *rbxfile.Property, w *binpkg.Writer, _ *rbxfile.Context) error {
	return w.WriteBlob(p.RawBuffer())
}

func writeUDim(v rbxfile.UDim, w *binpkg.Writer) error {
	if err := w.WriteFloat32(v.Scale); err != nil {
		return err
	}
	return w.WriteInt32(v.Offset)
}

func writeUDim2(v rbxfile.UDim2, w *binpkg.Writer) error {
	if err := writeUDim(v.X, w); err != nil {
		return err
	}
	return writeUDim(v.Y, w)
}

func writeVector2(v rbxfile.Vector2, w *binpkg.Writer) error {
	return floats(w, v.X, v.Y)
}

func writeVector3(v rbxfile.Vector3, w *binpkg.Writer) error {
	return floats(w, v.X, v.Y, v.Z)
}

func writeVector3int16(v rbxfile.Vector3int16, w *binpkg.Writer) error {
	for _, n := range []int16{v.X, v.Y, v.Z} {
		if err := w.WriteInt16(n); err != nil {
			return err
		}
	}
	return nil
}

func writeRay(v rbxfile.Ray, w *binpkg.Writer) error {
	return floats(w, v.Origin.X, v.Origin.Y, v.Origin.Z, v.Direction.X, v.Direction.Y, v.Direction.Z)
}

func writeRect(v rbxfile.Rect, w *binpkg.Writer) error {
	return floats(w, v.Min.X, v.Min.Y, v.Max.X, v.Max.Y)
}

func writeColor3(v rbxfile.Color3, w *binpkg.Writer) error {
	return floats(w, v.R, v.G, v.B)
}

func writeColor3uint8(v rbxfile.Color3uint8, w *binpkg.Writer) error {
	return w.WriteBytes([]byte{v.R, v.G, v.B})
}

func writeNumberRange(v rbxfile.NumberRange, w *binpkg.Writer) error {
	return floats(w, v.Min, v.Max)
}

func writeNumberSequence(v rbxfile.NumberSequence, w *binpkg.Writer) error {
	if err := w.WriteUint32(uint32(len(v.Keypoints))); err != nil {
		return err
	}
	for _, k := range v.Keypoints {
		if err := floats(w, k.Time, k.Value, k.Envelope); err != nil {
			return err
		}
	}
	return nil
}

func writeColorSequence(v rbxfile.ColorSequence, w *binpkg.Writer) error {
	if err := w.WriteUint32(uint32(len(v.Keypoints))); err != nil {
		return err
	}
	for _, k := range v.Keypoints {
		if err := floats(w, k.Time, k.Value.R, k.Value.G, k.Value.B, k.Envelope); err != nil {
			return err
		}
	}
	return nil
}

func writePhysicalProperties(v rbxfile.PhysicalProperties, w *binpkg.Writer) error {
	if err := w.WriteBool(v.CustomPhysics); err != nil {
		return err
	}
	if !v.CustomPhysics {
		return nil
	}
	return floats(w, v.Density, v.Friction, v.Elasticity, v.FrictionWeight, v.ElasticityWeight)
}

func encodeCFrame(p *rbxfile.Property, w *binpkg.Writer, _ *rbxfile.Context) error {
	var cf rbxfile.CFrame
	switch v := p.Value().(type) {
	case rbxfile.CFrame:
		cf = v
	case rbxfile.Quaternion:
		cf = v.CFrame()
	default:
		return fmt.Errorf("cannot encode %T as %s", v, p.WireTypeName())
	}
	if err := writeVector3(cf.Position, w); err != nil {
		return err
	}
	return floats(w, cf.Rotation[:]...)
}

// encodeRef writes the target's index in referent order, or -1 for nil.
func encodeRef(p *rbxfile.Property, w *binpkg.Writer, ctx *rbxfile.Context) error {
	ref, ok := p.Value().(rbxfile.Ref)
	if !ok && p.Value() != nil {
		return fmt.Errorf("cannot encode %T as Ref", p.Value())
	}
	if ref.Target == nil {
		return w.WriteInt32(-1)
	}
	idx, ok := ctx.Index(ref.Target)
	if !ok {
		return fmt.Errorf("no referent for %s", ref.Target.FullName())
	}
	return w.WriteInt32(int32(idx))
}

func decodeString(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	s, err := r.ReadString()
	return rbxfile.String(s), err
}

func decodeBinaryString(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	b, err := r.ReadBlob()
	return rbxfile.BinaryString(b), err
}

func decodeBool(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadBool()
	return rbxfile.Bool(v), err
}

func decodeInt(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadInt32()
	return rbxfile.Int(v), err
}

func decodeInt64(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadInt64()
	return rbxfile.Int64(v), err
}

func decodeFloat(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadFloat32()
	return rbxfile.Float(v), err
}

func decodeDouble(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadFloat64()
	return rbxfile.Double(v), err
}

func decodeEnum(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadUint32()
	return rbxfile.Enum(v), err
}

func decodeBrickColor(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadUint32()
	return rbxfile.BrickColor(v), err
}

func readUDim(r *binpkg.Reader) (rbxfile.UDim, error) {
	scale, err := r.ReadFloat32()
	if err != nil {
		return rbxfile.UDim{}, err
	}
	offset, err := r.ReadInt32()
	return rbxfile.UDim{Scale: scale, Offset: offset}, err
}

func decodeUDim(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	return readUDim(r)
}

func decodeUDim2(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	x, err := readUDim(r)
	if err != nil {
		return nil, err
	}
	y, err := readUDim(r)
	return rbxfile.UDim2{X: x, Y: y}, err
}

func decodeRay(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 6)
	if err != nil {
		return nil, err
	}
	return rbxfile.Ray{
		Origin:    rbxfile.Vector3{X: f[0], Y: f[1], Z: f[2]},
		Direction: rbxfile.Vector3{X: f[3], Y: f[4], Z: f[5]},
	}, nil
}

func decodeFaces(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadUint8()
	return rbxfile.Faces(v), err
}

func decodeAxes(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	v, err := r.ReadUint8()
	return rbxfile.Axes(v), err
}

func decodeColor3(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 3)
	if err != nil {
		return nil, err
	}
	return rbxfile.Color3{R: f[0], G: f[1], B: f[2]}, nil
}

func decodeColor3uint8(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	b, err := r.ReadBytes(3)
	if err != nil {
		return nil, err
	}
	return rbxfile.Color3uint8{R: b[0], G: b[1], B: b[2]}, nil
}

func decodeVector2(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 2)
	if err != nil {
		return nil, err
	}
	return rbxfile.Vector2{X: f[0], Y: f[1]}, nil
}

func decodeVector3(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 3)
	if err != nil {
		return nil, err
	}
	return rbxfile.Vector3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func decodeVector3int16(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	var n [3]int16
	for i := range n {
		v, err := r.ReadInt16()
		if err != nil {
			return nil, err
		}
		n[i] = v
	}
	return rbxfile.Vector3int16{X: n[0], Y: n[1], Z: n[2]}, nil
}

func decodeCFrame(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 12)
	if err != nil {
		return nil, err
	}
	cf := rbxfile.CFrame{Position: rbxfile.Vector3{X: f[0], Y: f[1], Z: f[2]}}
	copy(cf.Rotation[:], f[3:])
	return cf, nil
}

// decodeRef reads the target index; the decoder resolves it once every
// instance exists.
func decodeRef(r *binpkg.Reader, d *decoder) (rbxfile.Value, error) {
	idx, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	d.lastRef = idx
	return rbxfile.Ref{}, nil
}

func decodeNumberSequence(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(n)*12 > r.Remaining() {
		return nil, binpkg.ErrTruncated
	}
	seq := rbxfile.NumberSequence{Keypoints: make([]rbxfile.NumberSequenceKeypoint, n)}
	for i := range seq.Keypoints {
		f, err := readFloats(r, 3)
		if err != nil {
			return nil, err
		}
		seq.Keypoints[i] = rbxfile.NumberSequenceKeypoint{Time: f[0], Value: f[1], Envelope: f[2]}
	}
	return seq, nil
}

func decodeColorSequence(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(n)*20 > r.Remaining() {
		return nil, binpkg.ErrTruncated
	}
	seq := rbxfile.ColorSequence{Keypoints: make([]rbxfile.ColorSequenceKeypoint, n)}
	for i := range seq.Keypoints {
		f, err := readFloats(r, 5)
		if err != nil {
			return nil, err
		}
		seq.Keypoints[i] = rbxfile.ColorSequenceKeypoint{
			Time:     f[0],
			Value:    rbxfile.Color3{R: f[1], G: f[2], B: f[3]},
			Envelope: f[4],
		}
	}
	return seq, nil
}

func decodeNumberRange(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 2)
	if err != nil {
		return nil, err
	}
	return rbxfile.NumberRange{Min: f[0], Max: f[1]}, nil
}

func decodeRect(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	f, err := readFloats(r, 4)
	if err != nil {
		return nil, err
	}
	return rbxfile.Rect{Min: rbxfile.Vector2{X: f[0], Y: f[1]}, Max: rbxfile.Vector2{X: f[2], Y: f[3]}}, nil
}

func decodePhysicalProperties(r *binpkg.Reader, _ *decoder) (rbxfile.Value, error) {
	custom, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !custom {
		return rbxfile.PhysicalProperties{}, nil
	}
	f, err := readFloats(r, 5)
	if err != nil {
		return nil, err
	}
	return rbxfile.PhysicalProperties{
		CustomPhysics:    true,
		Density:          f[0],
		Friction:         f[1],
		Elasticity:       f[2],
		FrictionWeight:   f[3],
		ElasticityWeight: f[4],
	}, nil
}

func decodeSharedString(r *binpkg.Reader, d *decoder) (rbxfile.Value, error) {
	key, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	s, ok := d.shared.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unknown shared string %q", key)
	}
	return s, nil
}
