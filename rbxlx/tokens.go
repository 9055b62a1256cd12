package rbxlx

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

type writeFunc func(p *rbxfile.Property, el *etree.Element, ctx *rbxfile.Context) error

type readFunc func(el *etree.Element, d *decoder) (rbxfile.Value, error)

// token is the XML element form of one wire type.
type token struct {
	typ   rbxfile.PropertyType
	write writeFunc
	read  readFunc
}

var tokens = map[string]token{
	"string":             {rbxfile.TypeString, writeString, readString},
	"ProtectedString":    {rbxfile.TypeString, writeProtectedString, readString},
	"Content":            {rbxfile.TypeString, writeContent, readContent},
	"BinaryString":       {rbxfile.TypeString, writeBinaryString, readBinaryString},
	"bool":               {rbxfile.TypeBool, writer(func(v rbxfile.Bool, el *etree.Element) { el.SetText(strconv.FormatBool(bool(v))) }), readBool},
	"int":                {rbxfile.TypeInt, writer(func(v rbxfile.Int, el *etree.Element) { el.SetText(strconv.FormatInt(int64(v), 10)) }), readInt},
	"int64":              {rbxfile.TypeInt64, writer(func(v rbxfile.Int64, el *etree.Element) { el.SetText(strconv.FormatInt(int64(v), 10)) }), readInt64},
	"float":              {rbxfile.TypeFloat, writer(func(v rbxfile.Float, el *etree.Element) { el.SetText(formatFloat(float32(v))) }), readFloat},
	"double":             {rbxfile.TypeDouble, writer(func(v rbxfile.Double, el *etree.Element) { el.SetText(formatDouble(float64(v))) }), readDouble},
	"token":              {rbxfile.TypeEnum, writer(func(v rbxfile.Enum, el *etree.Element) { el.SetText(strconv.FormatUint(uint64(v), 10)) }), readEnum},
	"BrickColor":         {rbxfile.TypeBrickColor, writer(func(v rbxfile.BrickColor, el *etree.Element) { el.SetText(strconv.FormatUint(uint64(v), 10)) }), readBrickColor},
	"UDim":               {rbxfile.TypeUDim, writer(writeUDim), readUDim},
	"UDim2":              {rbxfile.TypeUDim2, writer(writeUDim2), readUDim2},
	"Ray":                {rbxfile.TypeRay, writer(writeRay), readRay},
	"Faces":              {rbxfile.TypeFaces, writer(func(v rbxfile.Faces, el *etree.Element) { addChild(el, "faces", strconv.Itoa(int(v))) }), readFaces},
	"Axes":               {rbxfile.TypeAxes, writer(func(v rbxfile.Axes, el *etree.Element) { addChild(el, "axes", strconv.Itoa(int(v))) }), readAxes},
	"Color3":             {rbxfile.TypeColor3, writer(writeColor3), readColor3},
	"Color3uint8":        {rbxfile.TypeColor3uint8, writer(writeColor3uint8), readColor3uint8},
	"Vector2":            {rbxfile.TypeVector2, writer(writeVector2), readVector2},
	"Vector3":            {rbxfile.TypeVector3, writer(writeVector3), readVector3},
	"Vector3int16":       {rbxfile.TypeVector3int16, writer(writeVector3int16), readVector3int16},
	"CoordinateFrame":    {rbxfile.TypeCFrame, writeCFrame, readCFrame},
	"Ref":                {rbxfile.TypeRef, writeRef, readRef},
	"NumberSequence":     {rbxfile.TypeNumberSequence, writer(func(v rbxfile.NumberSequence, el *etree.Element) { el.SetText(v.String()) }), readNumberSequence},
	"ColorSequence":      {rbxfile.TypeColorSequence, writer(func(v rbxfile.ColorSequence, el *etree.Element) { el.SetText(v.String()) }), readColorSequence},
	"NumberRange":        {rbxfile.TypeNumberRange, writer(func(v rbxfile.NumberRange, el *etree.Element) { el.SetText(v.String()) }), readNumberRange},
	"Rect2D":             {rbxfile.TypeRect, writer(writeRect), readRect},
	"PhysicalProperties": {rbxfile.TypePhysicalProperties, writer(writePhysicalProperties), readPhysicalProperties},
	"SharedString":       {rbxfile.TypeSharedString, writer(func(v rbxfile.SharedString, el *etree.Element) { el.SetText(v.Key()) }), readSharedString},
}

// writer adapts a function of one concrete value type to a writeFunc.
func writer[T rbxfile.Value](fn func(v T, el *etree.Element)) writeFunc {
	return func(p *rbxfile.Property, el *etree.Element, _ *rbxfile.Context) error {
		v, ok := p.Value().(T)
		if !ok {
			return fmt.Errorf("cannot write %T as %s", p.Value(), p.WireTypeName())
		}
		fn(v, el)
		return nil
	}
}

func addChild(el *etree.Element, tag, text string) {
	el.CreateElement(tag).SetText(text)
}

func childText(el *etree.Element, tag string) (string, error) {
	c := el.SelectElement(tag)
	if c == nil {
		return "", fmt.Errorf("missing <%s> in <%s>", tag, el.Tag)
	}
	return strings.TrimSpace(c.Text()), nil
}

func formatFloat(f float32) string {
	switch {
	case math.IsInf(float64(f), 1):
		return "INF"
	case math.IsInf(float64(f), -1):
		return "-INF"
	case math.IsNaN(float64(f)):
		return "NAN"
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NAN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func parseFloat(s string, bits int) (float64, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NAN", "-NAN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), bits)
}

func childFloats(el *etree.Element, tags ...string) ([]float32, error) {
	out := make([]float32, len(tags))
	for i, tag := range tags {
		text, err := childText(el, tag)
		if err != nil {
			return nil, err
		}
		f, err := parseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("<%s>: %w", tag, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func textFloats(el *etree.Element, group int) ([]float32, error) {
	fields := strings.Fields(el.Text())
	if len(fields)%group != 0 {
		return nil, fmt.Errorf("<%s>: %d values is not a multiple of %d", el.Tag, len(fields), group)
	}
	out := make([]float32, len(fields))
	for i, s := range fields {
		f, err := parseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("<%s>: %w", el.Tag, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func stringValue(p *rbxfile.Property) (string, error) {
	switch v := p.Value().(type) {
	case rbxfile.String:
		return string(v), nil
	case rbxfile.BinaryString:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("cannot write %T as %s", v, p.WireTypeName())
	}
}

func writeString(p *rbxfile.Property, el *etree.Element, _ *rbxfile.Context) error {
	s, err := stringValue(p)
	if err != nil {
		return err
	}
	el.SetText(s)
	return nil
}

func writeProtectedString(p *rbxfile.Property, el *etree.Element, _ *rbxfile.Context) error {
	s, err := stringValue(p)
	if err != nil {
		return err
	}
	el.CreateCData(s)
	return nil
}

func writeContent(p *rbxfile.Property, el *etree.Element, _ *rbxfile.Context) error {
	s, err := stringValue(p)
	if err != nil {
		return err
	}
	if s == "" {
		el.CreateElement("null")
		return nil
	}
	addChild(el, "url", s)
	return nil
}

func writeBinaryString(p *rbxfile.Property, el *etree.Element, _ *rbxfile.Context) error {
	el.SetText(base64.StdEncoding.EncodeToString(p.RawBuffer()))
	return nil
}

func writeUDim(v rbxfile.UDim, el *etree.Element) {
	addChild(el, "S", formatFloat(v.Scale))
	addChild(el, "O", strconv.FormatInt(int64(v.Offset), 10))
}

func writeUDim2(v rbxfile.UDim2, el *etree.Element) {
	addChild(el, "XS", formatFloat(v.X.Scale))
	addChild(el, "XO", strconv.FormatInt(int64(v.X.Offset), 10))
	addChild(el, "YS", formatFloat(v.Y.Scale))
	addChild(el, "YO", strconv.FormatInt(int64(v.Y.Offset), 10))
}

func writeVector3(v rbxfile.Vector3, el *etree.Element) {
	addChild(el, "X", formatFloat(v.X))
	addChild(el, "Y", formatFloat(v.Y))
	addChild(el, "Z", formatFloat(v.Z))
}

func writeVector2(v rbxfile.Vector2, el *etree.Element) {
	addChild(el, "X", formatFloat(v.X))
	addChild(el, "Y", formatFloat(v.Y))
}

func writeVector3int16(v rbxfile.Vector3int16, el *etree.Element) {
	addChild(el, "X", strconv.Itoa(int(v.X)))
	addChild(el, "Y", strconv.Itoa(int(v.Y)))
	addChild(el, "Z", strconv.Itoa(int(v.Z)))
}

func writeRay(v rbxfile.Ray, el *etree.Element) {
	writeVector3(v.Origin, el.CreateElement("origin"))
	writeVector3(v.Direction, el.CreateElement("direction"))
}

func writeRect(v rbxfile.Rect, el *etree.Element) {
	writeVector2(v.Min, el.CreateElement("min"))
	writeVector2(v.Max, el.CreateElement("max"))
}

func writeColor3(v rbxfile.Color3, el *etree.Element) {
	addChild(el, "R", formatFloat(v.R))
	addChild(el, "G", formatFloat(v.G))
	addChild(el, "B", formatFloat(v.B))
}

func writeColor3uint8(v rbxfile.Color3uint8, el *etree.Element) {
	packed := uint32(0xFF)<<24 | uint32(v.R)<<16 | uint32(v.G)<<8 | uint32(v.B)
	el.SetText(strconv.FormatUint(uint64(packed), 10))
}

var rotationTags = []string{"R00", "R01", "R02", "R10", "R11", "R12", "R20", "R21", "R22"}

func writeCFrame(p *rbxfile.Property, el *etree.Element, _ *rbxfile.Context) error {
	var cf rbxfile.CFrame
	switch v := p.Value().(type) {
	case rbxfile.CFrame:
		cf = v
	case rbxfile.Quaternion:
		cf = v.CFrame()
	default:
		return fmt.Errorf("cannot write %T as %s", v, p.WireTypeName())
	}
	writeVector3(cf.Position, el)
	for i, tag := range rotationTags {
		addChild(el, tag, formatFloat(cf.Rotation[i]))
	}
	return nil
}

func writeRef(p *rbxfile.Property, el *etree.Element, ctx *rbxfile.Context) error {
	ref, ok := p.Value().(rbxfile.Ref)
	if !ok && p.Value() != nil {
		return fmt.Errorf("cannot write %T as Ref", p.Value())
	}
	if ref.Target == nil {
		el.SetText("null")
		return nil
	}
	referent, ok := ctx.Referent(ref.Target)
	if !ok {
		return fmt.Errorf("no referent for %s", ref.Target.FullName())
	}
	el.SetText(referent)
	return nil
}

func writePhysicalProperties(v rbxfile.PhysicalProperties, el *etree.Element) {
	addChild(el, "CustomPhysics", strconv.FormatBool(v.CustomPhysics))
	if !v.CustomPhysics {
		return
	}
	addChild(el, "Density", formatFloat(v.Density))
	addChild(el, "Friction", formatFloat(v.Friction))
	addChild(el, "Elasticity", formatFloat(v.Elasticity))
	addChild(el, "FrictionWeight", formatFloat(v.FrictionWeight))
	addChild(el, "ElasticityWeight", formatFloat(v.ElasticityWeight))
}

func readString(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	return rbxfile.String(el.Text()), nil
}

func readContent(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	if url := el.SelectElement("url"); url != nil {
		return rbxfile.String(strings.TrimSpace(url.Text())), nil
	}
	return rbxfile.String(""), nil
}

func readBinaryString(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	text := strings.Join(strings.Fields(el.Text()), "")
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, err
	}
	return rbxfile.BinaryString(data), nil
}

func readBool(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	return rbxfile.Bool(strings.EqualFold(strings.TrimSpace(el.Text()), "true")), nil
}

func readInt(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 32)
	return rbxfile.Int(n), err
}

func readInt64(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 64)
	return rbxfile.Int64(n), err
}

func readFloat(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	f, err := parseFloat(el.Text(), 32)
	return rbxfile.Float(f), err
}

func readDouble(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	f, err := parseFloat(el.Text(), 64)
	return rbxfile.Double(f), err
}

func readEnum(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(el.Text()), 10, 32)
	return rbxfile.Enum(n), err
}

func readBrickColor(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(el.Text()), 10, 32)
	return rbxfile.BrickColor(n), err
}

func readUDim(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	s, err := childFloats(el, "S")
	if err != nil {
		return nil, err
	}
	o, err := childInt32(el, "O")
	if err != nil {
		return nil, err
	}
	return rbxfile.UDim{Scale: s[0], Offset: o}, nil
}

func readUDim2(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	s, err := childFloats(el, "XS", "YS")
	if err != nil {
		return nil, err
	}
	xo, err := childInt32(el, "XO")
	if err != nil {
		return nil, err
	}
	yo, err := childInt32(el, "YO")
	if err != nil {
		return nil, err
	}
	return rbxfile.UDim2{
		X: rbxfile.UDim{Scale: s[0], Offset: xo},
		Y: rbxfile.UDim{Scale: s[1], Offset: yo},
	}, nil
}

func childInt32(el *etree.Element, tag string) (int32, error) {
	text, err := childText(el, tag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", tag, err)
	}
	return int32(n), nil
}

func vector3(el *etree.Element) (rbxfile.Vector3, error) {
	f, err := childFloats(el, "X", "Y", "Z")
	if err != nil {
		return rbxfile.Vector3{}, err
	}
	return rbxfile.Vector3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func vector2(el *etree.Element) (rbxfile.Vector2, error) {
	f, err := childFloats(el, "X", "Y")
	if err != nil {
		return rbxfile.Vector2{}, err
	}
	return rbxfile.Vector2{X: f[0], Y: f[1]}, nil
}

func readVector3(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	return vector3(el)
}

func readVector2(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	return vector2(el)
}

func readVector3int16(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	var out [3]int16
	for i, tag := range []string{"X", "Y", "Z"} {
		text, err := childText(el, tag)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("<%s>: %w", tag, err)
		}
		out[i] = int16(n)
	}
	return rbxfile.Vector3int16{X: out[0], Y: out[1], Z: out[2]}, nil
}

func readRay(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	var ray rbxfile.Ray
	var err error
	origin, direction := el.SelectElement("origin"), el.SelectElement("direction")
	if origin == nil || direction == nil {
		return nil, fmt.Errorf("<Ray> needs <origin> and <direction>")
	}
	if ray.Origin, err = vector3(origin); err != nil {
		return nil, err
	}
	if ray.Direction, err = vector3(direction); err != nil {
		return nil, err
	}
	return ray, nil
}

func readRect(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	var rect rbxfile.Rect
	var err error
	lo, hi := el.SelectElement("min"), el.SelectElement("max")
	if lo == nil || hi == nil {
		return nil, fmt.Errorf("<Rect2D> needs <min> and <max>")
	}
	if rect.Min, err = vector2(lo); err != nil {
		return nil, err
	}
	if rect.Max, err = vector2(hi); err != nil {
		return nil, err
	}
	return rect, nil
}

func readFaces(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	text, err := childText(el, "faces")
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseUint(text, 10, 8)
	return rbxfile.Faces(n), err
}

func readAxes(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	text, err := childText(el, "axes")
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseUint(text, 10, 8)
	return rbxfile.Axes(n), err
}

func readColor3(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	if el.SelectElement("R") == nil {
		// Packed 0xAARRGGBB form.
		n, err := strconv.ParseUint(strings.TrimSpace(el.Text()), 10, 32)
		if err != nil {
			return nil, err
		}
		return rbxfile.Color3{
			R: float32(n>>16&0xFF) / 255,
			G: float32(n>>8&0xFF) / 255,
			B: float32(n&0xFF) / 255,
		}, nil
	}
	f, err := childFloats(el, "R", "G", "B")
	if err != nil {
		return nil, err
	}
	return rbxfile.Color3{R: f[0], G: f[1], B: f[2]}, nil
}

func readColor3uint8(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(el.Text()), 10, 32)
	if err != nil {
		return nil, err
	}
	return rbxfile.Color3uint8{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func readCFrame(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	pos, err := vector3(el)
	if err != nil {
		return nil, err
	}
	rot, err := childFloats(el, rotationTags...)
	if err != nil {
		return nil, err
	}
	cf := rbxfile.CFrame{Position: pos}
	copy(cf.Rotation[:], rot)
	return cf, nil
}

// readRef returns a nil Ref; the decoder resolves referents once every
// item has been read.
func readRef(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	return rbxfile.Ref{}, nil
}

func readNumberSequence(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	f, err := textFloats(el, 3)
	if err != nil {
		return nil, err
	}
	seq := rbxfile.NumberSequence{}
	for i := 0; i < len(f); i += 3 {
		seq.Keypoints = append(seq.Keypoints, rbxfile.NumberSequenceKeypoint{Time: f[i], Value: f[i+1], Envelope: f[i+2]})
	}
	return seq, nil
}

func readColorSequence(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	f, err := textFloats(el, 5)
	if err != nil {
		return nil, err
	}
	seq := rbxfile.ColorSequence{}
	for i := 0; i < len(f); i += 5 {
		seq.Keypoints = append(seq.Keypoints, rbxfile.ColorSequenceKeypoint{
			Time:     f[i],
			Value:    rbxfile.Color3{R: f[i+1], G: f[i+2], B: f[i+3]},
			Envelope: f[i+4],
		})
	}
	return seq, nil
}

func readNumberRange(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	f, err := textFloats(el, 2)
	if err != nil {
		return nil, err
	}
	if len(f) != 2 {
		return nil, fmt.Errorf("<NumberRange> needs 2 values, got %d", len(f))
	}
	return rbxfile.NumberRange{Min: f[0], Max: f[1]}, nil
}

func readPhysicalProperties(el *etree.Element, _ *decoder) (rbxfile.Value, error) {
	custom, err := childText(el, "CustomPhysics")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(custom, "true") {
		return rbxfile.PhysicalProperties{}, nil
	}
	f, err := childFloats(el, "Density", "Friction", "Elasticity", "FrictionWeight", "ElasticityWeight")
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

func readSharedString(el *etree.Element, d *decoder) (rbxfile.Value, error) {
	key := strings.TrimSpace(el.Text())
	s, ok := d.shared.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("unknown shared string %q", key)
	}
	return s, nil
}
