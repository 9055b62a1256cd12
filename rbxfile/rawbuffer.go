package rbxfile

import (
	"github.com/robert-malhotra/go-rbxfile/internal/binary"
)

// rawImage derives the canonical little-endian byte image of v, or nil
// when v's kind has no byte image.
func rawImage(v Value) []byte {
	switch x := v.(type) {
	case BinaryString:
		return append([]byte{}, x...)
	case SharedString:
		h := x.Hash()
		return h[:]
	}

	buf := binary.NewBuffer(8)
	w := binary.NewWriter(buf, binary.DefaultConfig())
	var err error
	switch x := v.(type) {
	case Int:
		err = w.WriteInt32(int32(x))
	case Int64:
		err = w.WriteInt64(int64(x))
	case Bool:
		err = w.WriteBool(bool(x))
	case Float:
		err = w.WriteFloat32(float32(x))
	case Double:
		err = w.WriteFloat64(float64(x))
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return buf.Bytes()
}
