// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcweave/corevm/wire"
	"golang.org/x/crypto/ripemd160"
)

func hash160(b []byte) []byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

// pushData encodes b as a single direct data push, matching how every
// signature and public key below ends up in a scriptSig or witness item.
func pushData(b []byte) []byte {
	return append([]byte{byte(len(b))}, b...)
}

func payToPubKeyHashScript(hash []byte) []byte {
	return append(append([]byte{OP_DUP, OP_HASH160, OP_DATA_20}, hash...), OP_EQUALVERIFY, OP_CHECKSIG)
}

func payToScriptHashScript(hash []byte) []byte {
	return append(append([]byte{OP_HASH160, OP_DATA_20}, hash...), OP_EQUAL)
}

func payToWitnessPubKeyHashScript(hash []byte) []byte {
	return append([]byte{OP_0, OP_DATA_20}, hash...)
}

// buildSpendingTx returns a one-input, one-output transaction spending a
// single output so CalcSignatureHash/CalcWitnessSignatureHash have a
// concrete transaction to commit to.
func buildSpendingTx() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	var prevHash chainhash.Hash
	prevHash[0] = 0xaa
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(4_900_000_000, []byte{OP_1}))
	return tx
}

func signLegacy(t *testing.T, priv *btcec.PrivateKey, pkScript []byte, tx *wire.MsgTx, idx int) []byte {
	t.Helper()
	sigHash := CalcSignatureHash(pkScript, SigHashAll, tx, idx)
	sig := ecdsa.Sign(priv, sigHash)
	return append(sig.Serialize(), byte(SigHashAll))
}

func signWitnessV0(t *testing.T, priv *btcec.PrivateKey, subScript []byte, tx *wire.MsgTx, idx int, amount int64) []byte {
	t.Helper()
	sigHash := CalcWitnessSignatureHash(subScript, SigHashAll, tx, idx, amount)
	sig := ecdsa.Sign(priv, sigHash[:])
	return append(sig.Serialize(), byte(SigHashAll))
}

func TestVerifyInputLegacyP2PKH(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	pkScript := payToPubKeyHashScript(hash160(pubKey))

	tx := buildSpendingTx()
	sig := signLegacy(t, priv, pkScript, tx, 0)
	tx.TxIn[0].SignatureScript = append(pushData(sig), pushData(pubKey)...)

	prevOuts := NewPrevOutFetcher([]wire.TxOut{{Value: 5_000_000_000, PkScript: pkScript}})
	if err := VerifyInput(tx, 0, prevOuts, 0); err != nil {
		t.Fatalf("expected a valid P2PKH spend to verify, got: %v", err)
	}
}

func TestVerifyInputLegacyP2PKHRejectsWrongKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	wrongPubKey := other.PubKey().SerializeCompressed()
	pkScript := payToPubKeyHashScript(hash160(pubKey))

	tx := buildSpendingTx()
	sig := signLegacy(t, priv, pkScript, tx, 0)
	tx.TxIn[0].SignatureScript = append(pushData(sig), pushData(wrongPubKey)...)

	prevOuts := NewPrevOutFetcher([]wire.TxOut{{Value: 5_000_000_000, PkScript: pkScript}})
	if err := VerifyInput(tx, 0, prevOuts, 0); err == nil {
		t.Fatalf("expected a P2PKH spend with a mismatched pubkey to fail")
	}
}

func TestVerifyInputP2SHWrappedP2PKH(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	redeemScript := payToPubKeyHashScript(hash160(pubKey))
	pkScript := payToScriptHashScript(hash160(redeemScript))

	tx := buildSpendingTx()
	sig := signLegacy(t, priv, redeemScript, tx, 0)
	scriptSig := append(pushData(sig), pushData(pubKey)...)
	scriptSig = append(scriptSig, pushData(redeemScript)...)
	tx.TxIn[0].SignatureScript = scriptSig

	prevOuts := NewPrevOutFetcher([]wire.TxOut{{Value: 5_000_000_000, PkScript: pkScript}})
	if err := VerifyInput(tx, 0, prevOuts, ScriptBip16); err != nil {
		t.Fatalf("expected a valid P2SH-wrapped P2PKH spend to verify, got: %v", err)
	}
}

func TestVerifyInputNativeP2WPKH(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	pubKeyHash := hash160(pubKey)
	pkScript := payToWitnessPubKeyHashScript(pubKeyHash)
	subScript := payToPubKeyHashScript(pubKeyHash)

	const amount = 5_000_000_000
	tx := buildSpendingTx()
	sig := signWitnessV0(t, priv, subScript, tx, 0, amount)
	tx.TxIn[0].Witness = wire.TxWitness{sig, pubKey}

	prevOuts := NewPrevOutFetcher([]wire.TxOut{{Value: amount, PkScript: pkScript}})
	if err := VerifyInput(tx, 0, prevOuts, ScriptVerifyWitness); err != nil {
		t.Fatalf("expected a valid P2WPKH spend to verify, got: %v", err)
	}
}

func TestVerifyInputNativeP2WPKHRejectsTamperedWitness(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pubKey := priv.PubKey().SerializeCompressed()
	pubKeyHash := hash160(pubKey)
	pkScript := payToWitnessPubKeyHashScript(pubKeyHash)
	subScript := payToPubKeyHashScript(pubKeyHash)

	const amount = 5_000_000_000
	tx := buildSpendingTx()
	sig := signWitnessV0(t, priv, subScript, tx, 0, amount)
	// Flipping the committed amount invalidates the BIP143 sighash without
	// touching the signature bytes themselves.
	tx.TxIn[0].Witness = wire.TxWitness{sig, pubKey}

	prevOuts := NewPrevOutFetcher([]wire.TxOut{{Value: amount + 1, PkScript: pkScript}})
	if err := VerifyInput(tx, 0, prevOuts, ScriptVerifyWitness); err == nil {
		t.Fatalf("expected a P2WPKH spend signed over a different amount to fail")
	}
}
