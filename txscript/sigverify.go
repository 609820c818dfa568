// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// VerifyECDSASignature checks a DER-encoded ECDSA signature over sigHash
// against a compressed/uncompressed secp256k1 public key, the verification
// step OP_CHECKSIG/OP_CHECKMULTISIG delegate to under legacy and segwit v0
// sighash rules.
func VerifyECDSASignature(sigHash chainhash.Hash, sig, pubKey []byte) (bool, error) {
	pk, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false, scriptError(ErrInvalidSignature, "invalid public key encoding: "+err.Error())
	}

	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, scriptError(ErrInvalidSignature, "invalid DER signature encoding: "+err.Error())
	}

	return parsedSig.Verify(sigHash[:], pk), nil
}

// VerifySchnorrSignature checks a BIP340 Schnorr signature over sigHash
// against an x-only public key, the verification step OP_CHECKSIG and
// OP_CHECKSIGADD use under Taproot (BIP341/342).
func VerifySchnorrSignature(sigHash chainhash.Hash, sig, pubKey []byte) (bool, error) {
	pk, err := schnorr.ParsePubKey(pubKey)
	if err != nil {
		return false, scriptError(ErrInvalidSignature, "invalid x-only public key encoding: "+err.Error())
	}

	parsedSig, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false, scriptError(ErrInvalidSignature, "invalid schnorr signature encoding: "+err.Error())
	}

	return parsedSig.Verify(sigHash[:], pk), nil
}

// stripSignatureHashType removes the trailing sighash-type byte DER
// signatures carry so the remainder can be handed to VerifyECDSASignature,
// returning the hash type byte separately.
func stripSignatureHashType(sig []byte) (rawSig []byte, hashType byte) {
	if len(sig) == 0 {
		return sig, 0
	}
	return sig[:len(sig)-1], sig[len(sig)-1]
}
