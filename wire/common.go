// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxMessagePayload is the maximum bytes a message payload can be.
const MaxMessagePayload = 32 * 1024 * 1024

// errNonCanonicalVarInt is returned by ReadCompactInt when the decoded marker
// byte indicates a wider encoding than the minimal one the value requires.
// Canonicality of CompactInt is a consensus rule, not a style choice: a
// byte-identical value encoded non-minimally must be rejected.
var errNonCanonicalVarInt = messageErr(ErrMalformed, "non-canonical compactint encoding")

// binaryFreeList houses a free list of byte slices used to efficiently
// read and write integer values to and from io.Reader/io.Writer. It is
// stream-bound, so a list of buffer sizes covering the range used in this
// package (1, 2, 4, and 8 bytes) is sufficient.
type binaryFreeList chan []byte

// Borrow returns a byte slice of the requested size from the free list. A
// new buffer is allocated if there are none available.
func (l binaryFreeList) Borrow(size uint8) []byte {
	var buf []byte
	select {
	case buf = <-l:
	default:
		buf = make([]byte, 8)
	}
	return buf[:size]
}

// Return puts the provided byte slice back on the free list. The buffer is
// silently dropped if the free list is full, as it will be garbage
// collected in that case.
func (l binaryFreeList) Return(buf []byte) {
	select {
	case l <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

// binarySerializer provides a free list of buffers to use for serializing
// and deserializing primitive integer values to and from io.Reader and
// io.Writer.
var binarySerializer binaryFreeList = make(chan []byte, 24)

// readElement reads the next little-endian encoded value from r into the
// passed destination.
func readElement(r io.Reader, element any) error {
	switch e := element.(type) {
	case *int32:
		buf := binarySerializer.Borrow(4)
		defer binarySerializer.Return(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		*e = int32(binary.LittleEndian.Uint32(buf))
		return nil

	case *uint32:
		buf := binarySerializer.Borrow(4)
		defer binarySerializer.Return(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint32(buf)
		return nil

	case *int64:
		buf := binarySerializer.Borrow(8)
		defer binarySerializer.Return(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		*e = int64(binary.LittleEndian.Uint64(buf))
		return nil

	case *uint64:
		buf := binarySerializer.Borrow(8)
		defer binarySerializer.Return(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		*e = binary.LittleEndian.Uint64(buf)
		return nil

	case *bool:
		buf := binarySerializer.Borrow(1)
		defer binarySerializer.Return(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return err
		}
		*e = buf[0] != 0
		return nil
	}

	return fmt.Errorf("readElement: unsupported type %T", element)
}

// writeElement writes the little-endian encoding of element to w.
func writeElement(w io.Writer, element any) error {
	switch e := element.(type) {
	case int32:
		buf := binarySerializer.Borrow(4)
		defer binarySerializer.Return(buf)
		binary.LittleEndian.PutUint32(buf, uint32(e))
		_, err := w.Write(buf)
		return err

	case uint32:
		buf := binarySerializer.Borrow(4)
		defer binarySerializer.Return(buf)
		binary.LittleEndian.PutUint32(buf, e)
		_, err := w.Write(buf)
		return err

	case int64:
		buf := binarySerializer.Borrow(8)
		defer binarySerializer.Return(buf)
		binary.LittleEndian.PutUint64(buf, uint64(e))
		_, err := w.Write(buf)
		return err

	case uint64:
		buf := binarySerializer.Borrow(8)
		defer binarySerializer.Return(buf)
		binary.LittleEndian.PutUint64(buf, e)
		_, err := w.Write(buf)
		return err

	case bool:
		buf := binarySerializer.Borrow(1)
		defer binarySerializer.Return(buf)
		if e {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
		_, err := w.Write(buf)
		return err
	}

	return fmt.Errorf("writeElement: unsupported type %T", element)
}

// ReadCompactInt reads a variable length integer from r and returns it as a
// uint64, implementing the canonical 1/3/5/9 byte varint encoding: the
// decoded byte width must be the minimum needed for the value, or the read
// fails with a non-canonical error. This is the wire format that underpins
// every length prefix in the protocol.
func ReadCompactInt(r io.Reader) (uint64, error) {
	buf := binarySerializer.Borrow(1)
	if _, err := io.ReadFull(r, buf); err != nil {
		binarySerializer.Return(buf)
		return 0, err
	}
	discriminant := buf[0]
	binarySerializer.Return(buf)

	var rv uint64
	switch discriminant {
	case 0xff:
		var v uint64
		if err := readElement(r, &v); err != nil {
			return 0, err
		}
		rv = v

		if rv <= 0xffffffff {
			return 0, errNonCanonicalVarInt
		}

	case 0xfe:
		var v uint32
		if err := readElement(r, &v); err != nil {
			return 0, err
		}
		rv = uint64(v)

		if rv <= 0xffff {
			return 0, errNonCanonicalVarInt
		}

	case 0xfd:
		var v uint16
		buf := binarySerializer.Borrow(2)
		defer binarySerializer.Return(buf)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, err
		}
		v = binary.LittleEndian.Uint16(buf)
		rv = uint64(v)

		if rv <= 252 {
			return 0, errNonCanonicalVarInt
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// WriteCompactInt writes val to w using the canonical minimal-width varint
// encoding (1 byte for <= 252, else a marker byte followed by a 2/4/8-byte
// little-endian width).
func WriteCompactInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		buf := binarySerializer.Borrow(1)
		defer binarySerializer.Return(buf)
		buf[0] = uint8(val)
		_, err := w.Write(buf)
		return err
	}

	if val <= 0xffff {
		buf := binarySerializer.Borrow(1)
		buf[0] = 0xfd
		if _, err := w.Write(buf); err != nil {
			binarySerializer.Return(buf)
			return err
		}
		binarySerializer.Return(buf)

		buf2 := binarySerializer.Borrow(2)
		defer binarySerializer.Return(buf2)
		binary.LittleEndian.PutUint16(buf2, uint16(val))
		_, err := w.Write(buf2)
		return err
	}

	if val <= 0xffffffff {
		buf := binarySerializer.Borrow(1)
		buf[0] = 0xfe
		if _, err := w.Write(buf); err != nil {
			binarySerializer.Return(buf)
			return err
		}
		binarySerializer.Return(buf)

		return writeElement(w, uint32(val))
	}

	buf := binarySerializer.Borrow(1)
	buf[0] = 0xff
	if _, err := w.Write(buf); err != nil {
		binarySerializer.Return(buf)
		return err
	}
	binarySerializer.Return(buf)

	return writeElement(w, val)
}

// CompactIntSerializeSize returns the number of bytes WriteCompactInt would
// use to encode val — 1, 3, 5, or 9.
func CompactIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= 0xffff {
		return 3
	}
	if val <= 0xffffffff {
		return 5
	}
	return 9
}

// ReadVarBytes reads a CompactInt-prefixed byte slice from r, rejecting any
// length that exceeds maxAllowed so a malicious length prefix cannot force
// an oversized allocation before the data itself is even checked.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadCompactInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, messageErr(ErrMalformed, "%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes serializes b preceded by its CompactInt-encoded length.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteCompactInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
