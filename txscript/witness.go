// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// WitnessProgram classifies a parsed scriptPubKey as a segregated witness
// program: a version byte (OP_0/OP_1..OP_16) followed by a single 2-to-40
// byte push, per BIP141/BIP341.
type WitnessProgram struct {
	Version int
	Program []byte
}

// ExtractWitnessProgram reports whether script is a valid witness program
// and, if so, returns its classification.
func ExtractWitnessProgram(script Script) (WitnessProgram, bool) {
	if len(script.Ops) != 2 {
		return WitnessProgram{}, false
	}
	verOp, dataOp := script.Ops[0], script.Ops[1]
	if verOp.Kind != OpKindPush || !isSmallInt(verOp.Opcode) {
		return WitnessProgram{}, false
	}
	if dataOp.Kind != OpKindPush || len(dataOp.Data) < 2 || len(dataOp.Data) > 40 {
		return WitnessProgram{}, false
	}
	return WitnessProgram{Version: asSmallInt(verOp.Opcode), Program: dataOp.Data}, true
}

// IsPayToWitnessPubKeyHash reports whether wp is a v0 P2WPKH program: a
// 20-byte hash.
func (wp WitnessProgram) IsPayToWitnessPubKeyHash() bool {
	return wp.Version == 0 && len(wp.Program) == 20
}

// IsPayToWitnessScriptHash reports whether wp is a v0 P2WSH program: a
// 32-byte hash.
func (wp WitnessProgram) IsPayToWitnessScriptHash() bool {
	return wp.Version == 0 && len(wp.Program) == 32
}

// IsPayToTaproot reports whether wp is a v1 witness program of the right
// length to be a Taproot output key, per BIP341.
func (wp WitnessProgram) IsPayToTaproot() bool {
	return wp.Version == 1 && len(wp.Program) == 32
}

// synthesizePayToPubKeyHash builds the classic P2PKH script
// `OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG` the v0 P2WPKH
// program is executed as, against the witness stack standing in for
// scriptSig.
func synthesizePayToPubKeyHash(hash []byte) Script {
	return Script{Ops: []Operation{
		{Kind: OpKindSimple, Opcode: OP_DUP},
		{Kind: OpKindSimple, Opcode: OP_HASH160},
		{Kind: OpKindPush, Opcode: byte(len(hash)), Data: hash, MinimalPush: true},
		{Kind: OpKindSimple, Opcode: OP_EQUALVERIFY},
		{Kind: OpKindSimple, Opcode: OP_CHECKSIG},
	}}
}

// isScriptHash reports whether script matches the standard P2SH template
// `OP_HASH160 <20> OP_EQUAL`.
func isScriptHash(script Script) bool {
	return len(script.Ops) == 3 &&
		script.Ops[0].Opcode == OP_HASH160 &&
		script.Ops[1].Kind == OpKindPush && len(script.Ops[1].Data) == 20 &&
		script.Ops[2].Opcode == OP_EQUAL
}
