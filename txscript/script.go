// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "fmt"

// MaxScriptSize is the maximum allowed length of a raw script, in bytes.
const MaxScriptSize = 10000

// OpKind identifies which variant of Operation a parsed instruction is.
type OpKind int

const (
	// OpKindPush is a data push: a literal byte-string payload, however
	// it was encoded (direct byte count, OP_PUSHDATA1/2/4, or one of the
	// OP_1NEGATE/OP_1..OP_16 small-int opcodes).
	OpKindPush OpKind = iota

	// OpKindSimple is any opcode with no payload and no special parser
	// handling: stack manipulation, bitwise, arithmetic, crypto, and
	// plain NOP-family opcodes.
	OpKindSimple

	// OpKindDisabled marks an opcode from the disabled family (bitwise
	// logic, splice, certain arithmetic) that fails the script the
	// instant it's observed, executed or not.
	OpKindDisabled

	// OpKindReturn marks OP_RETURN: non-runnable, aborts the script the
	// instant it executes.
	OpKindReturn

	// OpKindConditional is OP_IF/OP_NOTIF together with its parsed main
	// and (optional) else branches, already balanced against a matching
	// OP_ENDIF.
	OpKindConditional
)

// Operation is one parsed instruction in a Script. Exactly the fields
// relevant to its Kind are populated; this mirrors the closed variant set
// the data model calls for, expressed the idiomatic Go way (struct plus
// discriminant) rather than an interface per variant, since every consumer
// (executor, serializer) needs to switch on the full set anyway.
type Operation struct {
	Kind OpKind

	// Opcode is the raw opcode byte for every kind.
	Opcode byte

	// Data is the literal payload for OpKindPush.
	Data []byte

	// MinimalPush records whether Data was pushed with the shortest
	// opcode sequence for its length, consulted under minimal-push
	// rules.
	MinimalPush bool

	// Main/Else hold the nested operation sequences for OpKindConditional.
	Main    []Operation
	Else    []Operation
	IsNotIf bool
}

// Script is an ordered sequence of parsed operations.
type Script struct {
	Ops []Operation
}

// ParseScript parses a flat opcode byte stream into a Script, producing a
// balanced conditional tree. Parsing is a single forward pass: IF/NOTIF open
// a frame, ELSE attaches the else branch, ENDIF closes it. Failure modes:
// dangling IF (EOF with an open frame), duplicate ELSE, ELSE without IF,
// ENDIF without IF, and a push whose declared length runs past the end of
// the script.
func ParseScript(script []byte) (Script, error) {
	if len(script) > MaxScriptSize {
		return Script{}, scriptError(ErrScriptTooBig,
			fmt.Sprintf("script size %d exceeds max allowed %d", len(script), MaxScriptSize))
	}

	var stack []parserFrame
	stack = append(stack, parserFrame{})

	i := 0
	for i < len(script) {
		op := script[i]
		i++

		if alwaysIllegalOpcodes[op] {
			return Script{}, scriptError(ErrReservedOpcode,
				fmt.Sprintf("opcode %s is always illegal", opcodeNameFor(op)))
		}

		switch {
		case op == OP_IF || op == OP_NOTIF:
			stack = append(stack, parserFrame{isNotIf: op == OP_NOTIF, op: op})
			continue

		case op == OP_ELSE:
			top := len(stack) - 1
			if top == 0 {
				return Script{}, scriptError(ErrUnbalancedConditional, "OP_ELSE without OP_IF")
			}
			if stack[top].inElse {
				return Script{}, scriptError(ErrUnbalancedConditional, "duplicate OP_ELSE")
			}
			stack[top].inElse = true
			continue

		case op == OP_ENDIF:
			top := len(stack) - 1
			if top == 0 {
				return Script{}, scriptError(ErrUnbalancedConditional, "OP_ENDIF without OP_IF")
			}
			f := stack[top]
			stack = stack[:top]
			cond := Operation{
				Kind:    OpKindConditional,
				Opcode:  f.op,
				Main:    f.main,
				Else:    f.else_,
				IsNotIf: f.isNotIf,
			}
			appendOp(&stack[len(stack)-1], f.inElse, cond)
			continue
		}

		var parsed Operation
		switch {
		case op == OP_0:
			parsed = Operation{Kind: OpKindPush, Opcode: op, Data: nil, MinimalPush: true}

		case op >= OP_DATA_1 && op <= OP_DATA_75:
			n := int(op)
			if i+n > len(script) {
				return Script{}, scriptError(ErrMalformedPush, "data push exceeds script length")
			}
			parsed = Operation{Kind: OpKindPush, Opcode: op, Data: script[i : i+n], MinimalPush: true}
			i += n

		case op == OP_PUSHDATA1 || op == OP_PUSHDATA2 || op == OP_PUSHDATA4:
			lenBytes := map[byte]int{OP_PUSHDATA1: 1, OP_PUSHDATA2: 2, OP_PUSHDATA4: 4}[op]
			if i+lenBytes > len(script) {
				return Script{}, scriptError(ErrMalformedPush, "push length prefix exceeds script length")
			}
			var n int
			for j := 0; j < lenBytes; j++ {
				n |= int(script[i+j]) << uint(8*j)
			}
			i += lenBytes
			if i+n > len(script) {
				return Script{}, scriptError(ErrMalformedPush, "data push exceeds script length")
			}
			parsed = Operation{Kind: OpKindPush, Opcode: op, Data: script[i : i+n], MinimalPush: isMinimalPushLen(op, n)}
			i += n

		case op == OP_1NEGATE:
			parsed = Operation{Kind: OpKindPush, Opcode: op, Data: ScriptNum(-1).Bytes(), MinimalPush: true}

		case isSmallInt(op):
			parsed = Operation{Kind: OpKindPush, Opcode: op, Data: ScriptNum(asSmallInt(op)).Bytes(), MinimalPush: true}

		case isDisabled(op):
			parsed = Operation{Kind: OpKindDisabled, Opcode: op}

		case op == OP_RETURN:
			parsed = Operation{Kind: OpKindReturn, Opcode: op}

		default:
			parsed = Operation{Kind: OpKindSimple, Opcode: op}
		}

		appendOp(&stack[len(stack)-1], stack[len(stack)-1].inElse, parsed)
	}

	if len(stack) != 1 {
		return Script{}, scriptError(ErrUnbalancedConditional, "dangling OP_IF/OP_NOTIF at end of script")
	}

	return Script{Ops: stack[0].main}, nil
}

// parserFrame is one open OP_IF/OP_NOTIF frame during parsing, accumulating
// the main and (once OP_ELSE is seen) else branches until a matching
// OP_ENDIF closes it. The bottom-of-stack frame (op == 0) represents the
// top-level script body itself.
type parserFrame struct {
	main    []Operation
	else_   []Operation
	inElse  bool
	isNotIf bool
	op      byte
}

func appendOp(f *parserFrame, inElse bool, op Operation) {
	if inElse {
		f.else_ = append(f.else_, op)
	} else {
		f.main = append(f.main, op)
	}
}

// isMinimalPushLen reports whether using the given OP_PUSHDATAn opcode to
// push n bytes is the shortest possible encoding for that length.
func isMinimalPushLen(op byte, n int) bool {
	switch op {
	case OP_PUSHDATA1:
		return n > 75
	case OP_PUSHDATA2:
		return n > 255
	case OP_PUSHDATA4:
		return n > 65535
	}
	return true
}

// Serialize re-emits the flat opcode byte stream for a parsed Script. For
// any script produced by ParseScript, Serialize(Parse(Serialize(s))) equals
// Serialize(s) — parse idempotence after normalization, the push encoding
// chosen during parsing is preserved verbatim via each Operation's Opcode
// field rather than re-minimized.
func (s Script) Serialize() []byte {
	var buf []byte
	for _, op := range s.Ops {
		buf = appendOperation(buf, op)
	}
	return buf
}

func appendOperation(buf []byte, op Operation) []byte {
	switch op.Kind {
	case OpKindConditional:
		buf = append(buf, op.Opcode)
		for _, sub := range op.Main {
			buf = appendOperation(buf, sub)
		}
		if op.Else != nil {
			buf = append(buf, OP_ELSE)
			for _, sub := range op.Else {
				buf = appendOperation(buf, sub)
			}
		}
		buf = append(buf, OP_ENDIF)

	case OpKindPush:
		switch {
		case op.Opcode >= OP_DATA_1 && op.Opcode <= OP_DATA_75, op.Opcode == OP_0,
			op.Opcode == OP_1NEGATE, isSmallInt(op.Opcode):
			buf = append(buf, op.Opcode)
			if op.Opcode >= OP_DATA_1 && op.Opcode <= OP_DATA_75 {
				buf = append(buf, op.Data...)
			}

		case op.Opcode == OP_PUSHDATA1:
			buf = append(buf, op.Opcode, byte(len(op.Data)))
			buf = append(buf, op.Data...)

		case op.Opcode == OP_PUSHDATA2:
			n := len(op.Data)
			buf = append(buf, op.Opcode, byte(n), byte(n>>8))
			buf = append(buf, op.Data...)

		case op.Opcode == OP_PUSHDATA4:
			n := len(op.Data)
			buf = append(buf, op.Opcode, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
			buf = append(buf, op.Data...)
		}

	default:
		buf = append(buf, op.Opcode)
	}
	return buf
}
