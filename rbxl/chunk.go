package rbxl

import (
	"fmt"

	binpkg "github.com/robert-malhotra/go-rbxfile/internal/binary"
)

// Chunk names.
const (
	chunkSharedStrings = "SSTR"
	chunkInstances     = "INST"
	chunkProperties    = "PROP"
	chunkParents       = "PRNT"
	chunkEnd           = "END\x00"
)

// endMarker is the payload of the END chunk.
const endMarker = "</roblox>"

// chunkHeaderSize is Name(4) + CompressedLength(4) + Length(4) + Checksum(4).
const chunkHeaderSize = 16

// chunk is one decoded chunk.
type chunk struct {
	name string
	data []byte
}

// writeChunk writes a chunk header and payload. A nil comp, or a payload
// that does not shrink, stores the payload raw with a compressed length of
// zero.
func writeChunk(w *binpkg.Writer, name string, payload []byte, comp compressor) error {
	stored := payload
	compressedLen := uint32(0)
	if comp != nil && len(payload) > 0 {
		packed, err := comp.Encode(payload)
		if err != nil {
			return fmt.Errorf("compressing %s chunk: %w", name, err)
		}
		if len(packed) < len(payload) {
			stored = packed
			compressedLen = uint32(len(packed))
		}
	}

	if err := w.WriteBytes([]byte(name)); err != nil {
		return err
	}
	if err := w.WriteUint32(compressedLen); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(payload))); err != nil {
		return err
	}
	if err := w.WriteUint32(binpkg.Lookup3Checksum(stored)); err != nil {
		return err
	}
	return w.WriteBytes(stored)
}

// readChunk reads the chunk at the reader position. newComp is called the
// first time a compressed payload is met.
func readChunk(r *binpkg.Reader, newComp func() (compressor, error)) (chunk, error) {
	name, err := r.ReadBytes(4)
	if err != nil {
		return chunk{}, fmt.Errorf("%w: reading chunk name: %v", ErrCorrupt, err)
	}
	compressedLen, err := r.ReadUint32()
	if err != nil {
		return chunk{}, fmt.Errorf("%w: reading %s chunk header: %v", ErrCorrupt, name, err)
	}
	length, err := r.ReadUint32()
	if err != nil {
		return chunk{}, fmt.Errorf("%w: reading %s chunk header: %v", ErrCorrupt, name, err)
	}
	checksum, err := r.ReadUint32()
	if err != nil {
		return chunk{}, fmt.Errorf("%w: reading %s chunk header: %v", ErrCorrupt, name, err)
	}

	if length > maxChunkSize {
		return chunk{}, fmt.Errorf("%w: %s chunk claims %d bytes, limit is %d", ErrCorrupt, name, length, maxChunkSize)
	}

	storedLen := length
	if compressedLen != 0 {
		storedLen = compressedLen
	}
	stored, err := r.ReadBytes(int(storedLen))
	if err != nil {
		return chunk{}, fmt.Errorf("%w: %s chunk payload: %v", ErrCorrupt, name, err)
	}
	if !binpkg.VerifyLookup3(stored, checksum) {
		return chunk{}, fmt.Errorf("%w: %s chunk", ErrChecksum, name)
	}

	if compressedLen == 0 {
		return chunk{name: string(name), data: stored}, nil
	}
	comp, err := newComp()
	if err != nil {
		return chunk{}, err
	}
	data, err := comp.Decode(stored, int(length))
	if err != nil {
		return chunk{}, fmt.Errorf("%s chunk (%s): %w", name, comp.ID(), err)
	}
	return chunk{name: string(name), data: data}, nil
}
