// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "fmt"

// ErrorKind identifies the class of failure behind a MessageError. The
// wire layer only ever produces the three kinds that are purely about
// byte-stream shape; consensus, policy, and timeout failures belong to
// higher layers.
type ErrorKind int

const (
	// ErrEndOfStream indicates the reader was exhausted before a complete
	// value could be decoded.
	ErrEndOfStream ErrorKind = iota

	// ErrMalformed indicates a length prefix or CompactInt encoding
	// failed validation independent of any network context.
	ErrMalformed

	// ErrProtocol indicates a value was well-formed on the wire but
	// violates an envelope-level protocol expectation — bad magic, an
	// unexpected command, an oversized declared length, a checksum mismatch.
	ErrProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case ErrEndOfStream:
		return "EndOfStream"
	case ErrMalformed:
		return "Malformed"
	case ErrProtocol:
		return "Protocol"
	default:
		return "Unknown"
	}
}

// MessageError pairs a wire-level ErrorKind with a human-readable
// description, so callers can dispatch on Kind() without parsing strings.
type MessageError struct {
	Kind        ErrorKind
	Description string
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// messageErr is the constructor every wire-level failure should funnel
// through so Kind is never left at its zero value by accident.
func messageErr(kind ErrorKind, desc string, args ...any) *MessageError {
	return &MessageError{Kind: kind, Description: fmt.Sprintf(desc, args...)}
}

// IsErrorKind reports whether err is a *MessageError carrying the given
// kind — the dispatch helper peer actors use to decide between a Medium
// and a Big violation.
func IsErrorKind(err error, kind ErrorKind) bool {
	me, ok := err.(*MessageError)
	return ok && me.Kind == kind
}
