package rbxl

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression selects how chunk payloads are stored.
type Compression uint8

const (
	// CompressionNone stores payloads raw.
	CompressionNone Compression = iota

	// CompressionZstd stores payloads as zstd frames.
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// maxChunkSize bounds the decompressed length of a single chunk.
const maxChunkSize = 256 << 20

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// compressor encodes and decodes chunk payloads.
type compressor interface {
	// ID returns the compression identifier.
	ID() Compression

	// Encode compresses a payload.
	Encode(input []byte) ([]byte, error)

	// Decode restores a payload of the given raw size.
	Decode(input []byte, size int) ([]byte, error)

	Close()
}

func newCompressor(c Compression) (compressor, error) {
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionZstd:
		return newZstd()
	}
	return nil, fmt.Errorf("unsupported compression %s", c)
}

// zstdCompressor wraps one encoder and one decoder for the life of an
// Encode or Decode call.
type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstd() (*zstdCompressor, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxChunkSize),
		zstd.WithDecoderMaxWindow(maxChunkSize),
	)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &zstdCompressor{enc: enc, dec: dec}, nil
}

func (z *zstdCompressor) ID() Compression {
	return CompressionZstd
}

func (z *zstdCompressor) Encode(input []byte) ([]byte, error) {
	return z.enc.EncodeAll(input, make([]byte, 0, len(input)/2+16)), nil
}

func (z *zstdCompressor) Decode(input []byte, size int) ([]byte, error) {
	if !bytes.HasPrefix(input, zstdMagic) {
		return nil, fmt.Errorf("%w: compressed chunk is not a zstd frame", ErrCorrupt)
	}
	// The header length is checked after decoding, not trusted for sizing.
	out, err := z.dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCorrupt, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: chunk decompressed to %d bytes, header says %d", ErrCorrupt, len(out), size)
	}
	return out, nil
}

func (z *zstdCompressor) Close() {
	z.enc.Close()
	z.dec.Close()
}
