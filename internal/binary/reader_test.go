package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderReadUint8(t *testing.T) {
	r := NewBytesReader([]byte{0x42, 0xFF, 0x00}, DefaultConfig())

	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x42 {
		t.Errorf("expected 0x42, got 0x%02x", v)
	}

	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0xFF {
		t.Errorf("expected 0xFF, got 0x%02x", v)
	}
}

func TestReaderReadUint16(t *testing.T) {
	// Little-endian: 0x0102 stored as [0x02, 0x01]
	r := NewBytesReader([]byte{0x02, 0x01, 0xFF, 0xFF}, DefaultConfig())

	v, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04x", v)
	}

	v, err = r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0xFFFF {
		t.Errorf("expected 0xFFFF, got 0x%04x", v)
	}
}

func TestReaderReadSigned(t *testing.T) {
	r := NewBytesReader([]byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, DefaultConfig())

	v16, err := r.ReadInt16()
	if err != nil {
		t.Fatalf("ReadInt16 failed: %v", err)
	}
	if v16 != -2 {
		t.Errorf("expected -2, got %d", v16)
	}

	v32, err := r.ReadInt32()
	if err != nil {
		t.Fatalf("ReadInt32 failed: %v", err)
	}
	if v32 != -1 {
		t.Errorf("expected -1, got %d", v32)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewBytesReader([]byte{0x01, 0x02}, DefaultConfig())

	if _, err := r.ReadUint32(); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
	// A failed read leaves the position untouched.
	if r.Pos() != 0 {
		t.Errorf("expected position 0, got %d", r.Pos())
	}
}

func TestReaderBlobLengthBeyondInput(t *testing.T) {
	// Length prefix claims 255 bytes but only one follows.
	r := NewBytesReader([]byte{0xFF, 0x00, 0x00, 0x00, 0x01}, DefaultConfig())

	if _, err := r.ReadBlob(); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestReaderAt(t *testing.T) {
	r := NewBytesReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, DefaultConfig())

	// Read from offset 3
	r2 := r.At(3)
	v, err := r2.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", v)
	}

	// Original reader should be unaffected
	v, err = r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x00 {
		t.Errorf("expected 0x00, got 0x%02x", v)
	}
}

func TestReaderSkip(t *testing.T) {
	r := NewBytesReader([]byte{0x00, 0x01, 0x02, 0x03, 0x04}, DefaultConfig())

	r.Skip(2)
	v, err := r.ReadUint8()
	if err != nil {
		t.Fatalf("ReadUint8 failed: %v", err)
	}
	if v != 0x02 {
		t.Errorf("expected 0x02, got 0x%02x", v)
	}
	if r.Remaining() != 2 {
		t.Errorf("expected 2 remaining, got %d", r.Remaining())
	}
}

func TestReaderPeek(t *testing.T) {
	r := NewBytesReader([]byte{0x00, 0x01, 0x02, 0x03}, DefaultConfig())

	// Peek should not advance position
	peeked, err := r.Peek(2)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if !bytes.Equal(peeked, []byte{0x00, 0x01}) {
		t.Errorf("expected [0x00, 0x01], got %v", peeked)
	}

	if r.Pos() != 0 {
		t.Errorf("Peek should not advance position, got %d", r.Pos())
	}

	// Read should still get the same data
	read, err := r.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if !bytes.Equal(read, peeked) {
		t.Errorf("Read after Peek mismatch: %v vs %v", read, peeked)
	}
}
