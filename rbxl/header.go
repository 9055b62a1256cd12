// Package rbxl reads and writes the chunked binary place and model format.
//
// A file is a fixed header followed by chunks. Each chunk carries a
// four-byte name, its stored and raw lengths, a lookup3 checksum of the
// stored bytes, and a payload that is either raw or zstd compressed.
package rbxl

import (
	"bytes"
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-rbxfile/internal/binary"
)

// Signature starts every binary file: "<roblox!" followed by a byte
// sequence that breaks on newline translation.
var Signature = []byte{'<', 'r', 'o', 'b', 'l', 'o', 'x', '!', 0x89, 0xff, '\r', '\n', 0x1a, '\n'}

// Version is the only format version written and accepted.
const Version = 0

// headerSize is Signature(14) + Version(2) + ClassCount(4) + InstanceCount(4) + Reserved(8).
const headerSize = 32

// Errors
var (
	ErrNotRBXL            = errors.New("not a binary roblox file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported binary format version")
	ErrChecksum           = errors.New("chunk checksum mismatch")
	ErrCorrupt            = errors.New("corrupt binary file")
)

// Header holds the counts stored at the start of a file.
type Header struct {
	Version       uint16
	ClassCount    uint32
	InstanceCount uint32
}

// IsBinary reports whether data starts with the binary signature.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, Signature)
}

func readHeader(r *binpkg.Reader) (*Header, error) {
	sig, err := r.ReadBytes(len(Signature))
	if err != nil || !bytes.Equal(sig, Signature) {
		return nil, ErrNotRBXL
	}

	h := &Header{}
	if h.Version, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.ClassCount, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading class count: %w", err)
	}
	if h.InstanceCount, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("reading instance count: %w", err)
	}

	// Reserved
	if _, err := r.ReadBytes(8); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	return h, nil
}

// write writes the header at the current writer position.
func (h *Header) write(w *binpkg.Writer) error {
	if err := w.WriteBytes(Signature); err != nil {
		return err
	}
	if err := w.WriteUint16(h.Version); err != nil {
		return err
	}
	if err := w.WriteUint32(h.ClassCount); err != nil {
		return err
	}
	if err := w.WriteUint32(h.InstanceCount); err != nil {
		return err
	}
	return w.WriteZeros(8)
}
