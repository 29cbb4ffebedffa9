package wire

import (
	"errors"
	"testing"
)

func TestRoundTripPrimitives(t *testing.T) {
	w := NewWriter(64)
	w.PutU8(7)
	w.PutI16(-1200)
	w.PutU16(50000)
	w.PutI32(-70000)
	w.PutU32(4000000000)
	w.PutF32(3.5)
	w.PutF64(12.25)
	w.PutString("tank")

	r := NewReader(w.Bytes())

	if v, err := r.GetU8(); err != nil || v != 7 {
		t.Fatalf("GetU8 = %d, %v", v, err)
	}
	if v, err := r.GetI16(); err != nil || v != -1200 {
		t.Fatalf("GetI16 = %d, %v", v, err)
	}
	if v, err := r.GetU16(); err != nil || v != 50000 {
		t.Fatalf("GetU16 = %d, %v", v, err)
	}
	if v, err := r.GetI32(); err != nil || v != -70000 {
		t.Fatalf("GetI32 = %d, %v", v, err)
	}
	if v, err := r.GetU32(); err != nil || v != 4000000000 {
		t.Fatalf("GetU32 = %d, %v", v, err)
	}
	if v, err := r.GetF32(); err != nil || v != 3.5 {
		t.Fatalf("GetF32 = %v, %v", v, err)
	}
	if v, err := r.GetF64(); err != nil || v != 12.25 {
		t.Fatalf("GetF64 = %v, %v", v, err)
	}
	if v, err := r.GetString(); err != nil || v != "tank" {
		t.Fatalf("GetString = %q, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected buffer fully consumed, %d bytes left", r.Remaining())
	}
}

func TestGetStringMalformed(t *testing.T) {
	w := NewWriter(8)
	w.PutU16(10) // claims 10 bytes follow
	w.buf = append(w.buf, []byte("ab")...)

	r := NewReader(w.Bytes())
	_, err := r.GetString()
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestShortReadIsMalformed(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.GetU32(); !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 14, false); got != "short" {
		t.Fatalf("unexpected truncation of short string: %q", got)
	}
	if got := Truncate("a very long tank name indeed", 14, false); len(got) != 14 {
		t.Fatalf("expected 14 bytes, got %d (%q)", len(got), got)
	}
	got := Truncate("a very long chat message that exceeds the limit", 20, true)
	if len(got) > 20 {
		t.Fatalf("truncated-with-ellipsis string exceeds width: %q", got)
	}
}
