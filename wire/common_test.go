// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

func TestCompactIntRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 252, 253, 0xffff, 0x10000, 0xffffffff, 0x100000000, ^uint64(0)}
	for _, v := range cases {
		var buf bytes.Buffer
		if err := WriteCompactInt(&buf, v); err != nil {
			t.Fatalf("v=%d: unexpected error: %v", v, err)
		}
		if got := buf.Len(); got != CompactIntSerializeSize(v) {
			t.Fatalf("v=%d: wrote %d bytes, CompactIntSerializeSize says %d", v, got, CompactIntSerializeSize(v))
		}
		decoded, err := ReadCompactInt(&buf)
		if err != nil {
			t.Fatalf("v=%d: unexpected decode error: %v", v, err)
		}
		if decoded != v {
			t.Fatalf("v=%d: round trip produced %d", v, decoded)
		}
	}
}

func TestCompactIntRejectsNonCanonicalEncoding(t *testing.T) {
	// 0xfd marker followed by a 16-bit value of 252, which fits in the
	// single-byte form and so is non-canonical.
	buf := bytes.NewReader([]byte{0xfd, 0xfc, 0x00})
	if _, err := ReadCompactInt(buf); err == nil {
		t.Fatalf("expected non-canonical encoding to be rejected")
	}
}

func TestCompactIntBoundarySizes(t *testing.T) {
	sizes := map[uint64]int{
		0:          1,
		252:        1,
		253:        3,
		0xffff:     3,
		0x10000:    5,
		0xffffffff: 5,
		0x100000000: 9,
	}
	for v, want := range sizes {
		if got := CompactIntSerializeSize(v); got != want {
			t.Fatalf("v=%d: expected size %d, got %d", v, want, got)
		}
	}
}

func TestVarBytesRoundTripAndMaxAllowed(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("the quick brown fox")
	if err := WriteVarBytes(&buf, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ReadVarBytes(&buf, uint64(len(payload)), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("round trip mismatch: got %q want %q", got, payload)
	}

	var buf2 bytes.Buffer
	if err := WriteVarBytes(&buf2, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ReadVarBytes(&buf2, uint64(len(payload)-1), "test"); err == nil {
		t.Fatalf("expected oversized var bytes to be rejected")
	}
}

// TestCompactIntRoundTripProperty checks WriteCompactInt/ReadCompactInt
// round-trip for every uint64, not just the boundary cases above.
func TestCompactIntRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint64().Draw(t, "v")

		var buf bytes.Buffer
		if err := WriteCompactInt(&buf, v); err != nil {
			t.Fatalf("v=%d: unexpected write error: %v", v, err)
		}
		if got := buf.Len(); got != CompactIntSerializeSize(v) {
			t.Fatalf("v=%d: wrote %d bytes, CompactIntSerializeSize says %d", v, got, CompactIntSerializeSize(v))
		}

		decoded, err := ReadCompactInt(&buf)
		if err != nil {
			t.Fatalf("v=%d: unexpected decode error: %v", v, err)
		}
		if decoded != v {
			t.Fatalf("v=%d: round trip produced %d", v, decoded)
		}
	})
}
