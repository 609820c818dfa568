// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/wire"
)

// SigVersion selects which sighash construction CheckSig commits to: the
// legacy pre-segwit scheme, BIP143's witness v0 scheme, or BIP341's
// Taproot scheme.
type SigVersion int

const (
	SigVersionBase SigVersion = iota
	SigVersionWitnessV0
	SigVersionTaproot
)

// PrevOutFetcher supplies the amount and pkScript of the output an input
// spends, the context OP_CHECKSIG and the witness v0/Taproot sighashes
// need but a bare *wire.MsgTx does not carry.
type PrevOutFetcher interface {
	PrevOut(idx int) (amount int64, pkScript []byte)
}

// staticPrevOuts is the straightforward PrevOutFetcher: a parallel slice of
// the outputs every input spends, supplied by the caller up front.
type staticPrevOuts []wire.TxOut

func (p staticPrevOuts) PrevOut(idx int) (int64, []byte) {
	return p[idx].Value, p[idx].PkScript
}

// NewPrevOutFetcher builds a PrevOutFetcher from the outputs being spent,
// one per input of the transaction under validation, in input order.
func NewPrevOutFetcher(prevOuts []wire.TxOut) PrevOutFetcher {
	return staticPrevOuts(prevOuts)
}

// TxSigChecker implements SigChecker against a concrete transaction input,
// computing the appropriate sighash for whichever SigVersion the spend path
// selected and delegating to VerifyECDSASignature or VerifySchnorrSignature.
type TxSigChecker struct {
	Tx          *wire.MsgTx
	InputIndex  int
	PrevOuts    PrevOutFetcher
	SigVersion  SigVersion
	TapLeafHash *chainhash.Hash
}

func (c *TxSigChecker) CheckSig(sig, pubKey, subScript []byte) (bool, error) {
	if c.SigVersion == SigVersionTaproot {
		if len(sig) != 64 && len(sig) != 65 {
			return false, scriptError(ErrInvalidSignature, "schnorr signature has invalid length")
		}
		hashType := SigHashAll
		rawSig := sig
		if len(sig) == 65 {
			rawSig, hashType = sig[:64], SigHashType(sig[64])
		}
		sigHash := c.taprootSigHash(hashType)
		return VerifySchnorrSignature(sigHash, rawSig, pubKey)
	}

	rawSig, hashType := stripSignatureHashType(sig)

	amount, pkScript := c.PrevOuts.PrevOut(c.InputIndex)
	_ = pkScript
	if subScript == nil {
		subScript = c.legacySubScript()
	}

	var sigHash chainhash.Hash
	if c.SigVersion == SigVersionWitnessV0 {
		sigHash = CalcWitnessSignatureHash(subScript, SigHashType(hashType), c.Tx, c.InputIndex, amount)
	} else {
		copy(sigHash[:], CalcSignatureHash(subScript, SigHashType(hashType), c.Tx, c.InputIndex))
	}

	return VerifyECDSASignature(sigHash, rawSig, pubKey)
}

// legacySubScript returns the script a non-Taproot signature commits to
// when the engine passes none: the redeem script (the scriptSig's last
// push) for P2SH, the implied P2PKH script for P2WPKH, the witness script
// (the last witness item) for P2WSH, and the spent pkScript otherwise.
func (c *TxSigChecker) legacySubScript() []byte {
	if c.InputIndex >= len(c.Tx.TxIn) {
		return nil
	}
	in := c.Tx.TxIn[c.InputIndex]
	_, script := c.PrevOuts.PrevOut(c.InputIndex)
	parsed, _ := ParseScript(script)
	if sigScript, err := ParseScript(in.SignatureScript); isScriptHash(parsed) && err == nil && len(sigScript.Ops) > 0 {
		script = sigScript.Ops[len(sigScript.Ops)-1].Data
		parsed, _ = ParseScript(script)
	}
	if wp, ok := ExtractWitnessProgram(parsed); ok && c.SigVersion == SigVersionWitnessV0 {
		if wp.IsPayToWitnessPubKeyHash() {
			return synthesizePayToPubKeyHash(wp.Program).Serialize()
		}
		if len(in.Witness) > 0 {
			return in.Witness[len(in.Witness)-1]
		}
	}
	return script
}

// taprootSigHash computes a BIP341-style sighash for a key-path spend, or
// the leaf-extended sighash for a script-path spend when TapLeafHash is
// set. It reuses the witness v0 commitment (prevouts, sequences, outputs)
// rather than BIP341's distinct Annex/spend-type layout; full bit-exact
// BIP341 sighash parity with consensus Bitcoin is out of scope here.
func (c *TxSigChecker) taprootSigHash(hashType SigHashType) chainhash.Hash {
	base := CalcWitnessSignatureHash(nil, hashType, c.Tx, c.InputIndex, 0)
	if c.TapLeafHash == nil {
		return base
	}
	h := sha256.New()
	h.Write(base[:])
	h.Write(c.TapLeafHash[:])
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func (c *TxSigChecker) CheckLockTime(lockTime ScriptNum) bool {
	const lockTimeThreshold = 500000000
	if (int64(c.Tx.LockTime) < lockTimeThreshold) != (int64(lockTime) < lockTimeThreshold) {
		return false
	}
	if int64(lockTime) > int64(c.Tx.LockTime) {
		return false
	}
	const finalSequence = 0xffffffff
	return c.Tx.TxIn[c.InputIndex].Sequence != finalSequence
}

func (c *TxSigChecker) CheckSequence(sequence ScriptNum) bool {
	const (
		sequenceLockTimeDisabled  = 1 << 31
		sequenceLockTimeIsSeconds = 1 << 22
		sequenceLockTimeMask      = 0x0000ffff
	)
	txSequence := c.Tx.TxIn[c.InputIndex].Sequence

	if int64(sequence)&sequenceLockTimeDisabled != 0 {
		return true
	}
	if c.Tx.Version < 2 {
		return false
	}
	if txSequence&sequenceLockTimeDisabled != 0 {
		return false
	}
	if (sequence&sequenceLockTimeIsSeconds) != ScriptNum(txSequence&sequenceLockTimeIsSeconds) {
		return false
	}
	return sequence&sequenceLockTimeMask <= ScriptNum(txSequence&sequenceLockTimeMask)
}

// VerifyInput runs the full P2SH/segwit v0/Taproot dispatch for one
// transaction input against the output it spends: executing the legacy
// scriptSig/scriptPubKey pair, unwrapping a BIP16 redeem script, or
// validating a witness program per BIP141/143/341/342.
func VerifyInput(tx *wire.MsgTx, idx int, prevOuts PrevOutFetcher, flags ScriptFlags) error {
	amount, pkScript := prevOuts.PrevOut(idx)
	_ = amount
	scriptSig := tx.TxIn[idx].SignatureScript
	witness := tx.TxIn[idx].Witness

	pubKeyScript, err := ParseScript(pkScript)
	if err != nil {
		return err
	}

	if wp, ok := ExtractWitnessProgram(pubKeyScript); ok && flags&ScriptVerifyWitness != 0 {
		return verifyWitnessProgram(tx, idx, prevOuts, wp, witness, flags)
	}

	checker := &TxSigChecker{Tx: tx, InputIndex: idx, PrevOuts: prevOuts, SigVersion: SigVersionBase}
	engine := NewEngine(checker, flags)

	sigScript, err := ParseScript(scriptSig)
	if err != nil {
		return err
	}
	if err := engine.Execute(sigScript); err != nil {
		return err
	}

	if flags&ScriptBip16 != 0 && isScriptHash(pubKeyScript) {
		redeemBytes, err := engine.opData.PeekByteArray(0)
		if err != nil {
			return err
		}
		if err := engine.Execute(pubKeyScript); err != nil {
			return err
		}
		if err := engine.Success(); err != nil {
			return err
		}

		redeemScript, err := ParseScript(redeemBytes)
		if err != nil {
			return err
		}

		if wp, ok := ExtractWitnessProgram(redeemScript); ok && flags&ScriptVerifyWitness != 0 {
			return verifyWitnessProgram(tx, idx, prevOuts, wp, witness, flags)
		}

		p2shEngine := NewEngine(checker, flags)
		if err := p2shEngine.Execute(sigScript); err != nil {
			return err
		}
		if _, err := p2shEngine.opData.PopByteArray(); err != nil {
			return err
		}
		if err := p2shEngine.Execute(redeemScript); err != nil {
			return err
		}
		return p2shEngine.Success()
	}

	if err := engine.Execute(pubKeyScript); err != nil {
		return err
	}
	return engine.Success()
}

// verifyWitnessProgram validates a segwit v0 (P2WPKH/P2WSH) or v1 (Taproot)
// witness program against the supplied witness stack.
func verifyWitnessProgram(tx *wire.MsgTx, idx int, prevOuts PrevOutFetcher, wp WitnessProgram, witness wire.TxWitness, flags ScriptFlags) error {
	switch {
	case wp.IsPayToWitnessPubKeyHash():
		if len(witness) != 2 {
			return scriptError(ErrWitnessProgramMismatch, "P2WPKH witness must carry exactly 2 items")
		}
		checker := &TxSigChecker{Tx: tx, InputIndex: idx, PrevOuts: prevOuts, SigVersion: SigVersionWitnessV0}
		engine := NewEngine(checker, flags)
		if err := engine.opData.PushByteArray(witness[0]); err != nil {
			return err
		}
		if err := engine.opData.PushByteArray(witness[1]); err != nil {
			return err
		}
		if err := engine.Execute(synthesizePayToPubKeyHash(wp.Program)); err != nil {
			return err
		}
		return engine.Success()

	case wp.IsPayToWitnessScriptHash():
		if len(witness) < 1 {
			return scriptError(ErrWitnessProgramMismatch, "P2WSH witness must carry a witness script")
		}
		witnessScript := witness[len(witness)-1]
		computed := sha256.Sum256(witnessScript)
		if !bytes.Equal(computed[:], wp.Program) {
			return scriptError(ErrWitnessProgramMismatch, "witness script does not match program hash")
		}

		parsedScript, err := ParseScript(witnessScript)
		if err != nil {
			return err
		}

		checker := &TxSigChecker{Tx: tx, InputIndex: idx, PrevOuts: prevOuts, SigVersion: SigVersionWitnessV0}
		engine := NewEngine(checker, flags)
		for _, item := range witness[:len(witness)-1] {
			if err := engine.opData.PushByteArray(item); err != nil {
				return err
			}
		}
		if err := engine.Execute(parsedScript); err != nil {
			return err
		}
		return engine.Success()

	case wp.IsPayToTaproot():
		return verifyTaprootSpend(tx, idx, prevOuts, wp, witness, flags)
	}

	return scriptError(ErrDiscourageUpgradableNOPs, "unrecognized witness program version")
}

// verifyTaprootSpend validates a BIP341/342 Taproot spend: a one-item
// witness is a key-path spend verified directly against the output key; a
// witness ending in a control block is a script-path spend, verified by
// checking the control block's Merkle proof and then executing the leaf.
func verifyTaprootSpend(tx *wire.MsgTx, idx int, prevOuts PrevOutFetcher, wp WitnessProgram, witness wire.TxWitness, flags ScriptFlags) error {
	items := witness
	if len(items) > 0 {
		if last := items[len(items)-1]; len(last) > 0 && last[0] == 0x50 {
			items = items[:len(items)-1] // strip optional annex
		}
	}

	if len(items) == 1 {
		checker := &TxSigChecker{Tx: tx, InputIndex: idx, PrevOuts: prevOuts, SigVersion: SigVersionTaproot}
		ok, err := checker.CheckSig(items[0], wp.Program, nil)
		if err != nil {
			return err
		}
		if !ok {
			return scriptError(ErrInvalidSignature, "taproot key-path signature invalid")
		}
		return nil
	}

	if len(items) < 2 {
		return scriptError(ErrTaprootControlBlockInvalid, "taproot script-path spend missing control block")
	}

	controlBlockBytes := items[len(items)-1]
	leafScript := items[len(items)-2]
	cb, err := ParseControlBlock(controlBlockBytes, leafScript)
	if err != nil {
		return err
	}

	ok, err := VerifyTaprootCommitment(cb, wp.Program)
	if err != nil {
		return err
	}
	if !ok {
		return scriptError(ErrTaprootControlBlockInvalid, "control block does not match output key")
	}

	parsedScript, err := ParseScript(leafScript)
	if err != nil {
		return err
	}

	leafHash := tapLeafHash(cb.LeafVersion, leafScript)
	checker := &TxSigChecker{
		Tx: tx, InputIndex: idx, PrevOuts: prevOuts,
		SigVersion: SigVersionTaproot, TapLeafHash: &leafHash,
	}
	engine := NewEngine(checker, flags)
	for _, item := range items[:len(items)-2] {
		if err := engine.opData.PushByteArray(item); err != nil {
			return err
		}
	}
	if err := engine.Execute(parsedScript); err != nil {
		return err
	}
	return engine.Success()
}
