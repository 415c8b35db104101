// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// RawTxInSignature returns the serialized Schnorr signature for the input idx
// of the given transaction, with hashType appended to it.
func RawTxInSignature(tx *externalapi.DomainTransaction, idx int, script *externalapi.ScriptPublicKey,
	hashType consensushashing.SigHashType, key *secp256k1.SchnorrKeyPair) ([]byte, error) {

	hash, err := consensushashing.CalcSignatureHash(script, hashType, tx, idx)
	if err != nil {
		return nil, err
	}
	secpHash := secp256k1.Hash(*hash.ByteArray())
	signature, err := key.SchnorrSign(&secpHash)
	if err != nil {
		return nil, errors.Errorf("cannot sign tx input: %s", err)
	}

	return append(signature.Serialize()[:], byte(hashType)), nil
}

// SignatureScript creates an input signature script for tx to spend COB sent
// from a previous output to the owner of privKey. tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be filled
// or empty. The returned script is calculated to be used as the idx'th txin
// sigscript for tx. script is the ScriptPublicKey of the previous output being
// used as the idx'th input.
func SignatureScript(tx *externalapi.DomainTransaction, idx int, script *externalapi.ScriptPublicKey,
	hashType consensushashing.SigHashType, privKey *secp256k1.SchnorrKeyPair) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, script, hashType, privKey)
	if err != nil {
		return nil, err
	}

	return NewScriptBuilder().AddData(sig).Script()
}
