// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"testing"

	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
)

func checkScripts(msg string, tx *externalapi.DomainTransaction, idx int, sigScript []byte,
	scriptPublicKey *externalapi.ScriptPublicKey) error {

	tx.Inputs[idx].SignatureScript = sigScript
	var flags ScriptFlags
	vm, err := NewEngine(scriptPublicKey, tx, idx,
		flags, nil)
	if err != nil {
		return errors.Errorf("failed to make script engine for %s: %v",
			msg, err)
	}

	err = vm.Execute()
	if err != nil {
		return errors.Errorf("invalid script signature for %s: %v", msg,
			err)
	}

	return nil
}

func signAndCheck(msg string, tx *externalapi.DomainTransaction, idx int,
	scriptPublicKey *externalapi.ScriptPublicKey, hashType consensushashing.SigHashType,
	key *secp256k1.SchnorrKeyPair) error {

	sigScript, err := SignatureScript(tx, idx, scriptPublicKey, hashType, key)
	if err != nil {
		return errors.Errorf("failed to sign output %s: %v", msg, err)
	}

	return checkScripts(msg, tx, idx, sigScript, scriptPublicKey)
}

func TestSignatureScript(t *testing.T) {
	t.Parallel()

	// make key
	// make script based on key.
	// sign with magic pixie dust.
	hashTypes := []consensushashing.SigHashType{
		consensushashing.SigHashAll,
		consensushashing.SigHashNone,
		consensushashing.SigHashSingle,
		consensushashing.SigHashAll | consensushashing.SigHashAnyOneCanPay,
		consensushashing.SigHashNone | consensushashing.SigHashAnyOneCanPay,
		consensushashing.SigHashSingle | consensushashing.SigHashAnyOneCanPay,
	}
	inputs := []*externalapi.DomainTransactionInput{
		{
			PreviousOutpoint: externalapi.DomainOutpoint{
				TransactionID: externalapi.DomainTransactionID{},
				Index:         0,
			},
			Sequence: constants.MaxTxInSequenceNum,
		},
		{
			PreviousOutpoint: externalapi.DomainOutpoint{
				TransactionID: externalapi.DomainTransactionID{},
				Index:         1,
			},
			Sequence: constants.MaxTxInSequenceNum,
		},
		{
			PreviousOutpoint: externalapi.DomainOutpoint{
				TransactionID: externalapi.DomainTransactionID{},
				Index:         2,
			},
			Sequence: constants.MaxTxInSequenceNum,
		},
	}
	outputs := []*externalapi.DomainTransactionOutput{
		{
			Value:           1,
			ScriptPublicKey: &externalapi.ScriptPublicKey{},
		},
		{
			Value:           2,
			ScriptPublicKey: &externalapi.ScriptPublicKey{},
		},
		{
			Value:           3,
			ScriptPublicKey: &externalapi.ScriptPublicKey{},
		},
	}
	tx := &externalapi.DomainTransaction{
		Version: 0,
		Inputs:  inputs,
		Outputs: outputs,
	}

	for _, hashType := range hashTypes {
		for i := range tx.Inputs {
			msg := fmt.Sprintf("%d:%d", hashType, i)
			key, err := secp256k1.GenerateSchnorrKeyPair()
			if err != nil {
				t.Errorf("failed to make key pair for %s: %s",
					msg, err)
				break
			}

			pubKey, err := key.SchnorrPublicKey()
			if err != nil {
				t.Errorf("failed to make a publickey for %s: %s",
					msg, err)
				break
			}

			serializedPubKey, err := pubKey.Serialize()
			if err != nil {
				t.Errorf("failed to serialize a pubkey for %s: %s",
					msg, err)
				break
			}

			scriptPublicKey, err := PayToPublicKeyScript(serializedPubKey[:])
			if err != nil {
				t.Errorf("failed to make scriptPublicKey "+
					"for %s: %v", msg, err)
			}

			if err := signAndCheck(msg, tx, i, scriptPublicKey, hashType,
				key); err != nil {
				t.Error(err)
				break
			}
		}
	}
}

func TestRawTxInSignatureHashTypeEncoding(t *testing.T) {
	t.Parallel()

	key, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		t.Fatalf("failed to make key pair: %s", err)
	}

	pubKey, err := key.SchnorrPublicKey()
	if err != nil {
		t.Fatalf("failed to make a publickey: %s", err)
	}

	serializedPubKey, err := pubKey.Serialize()
	if err != nil {
		t.Fatalf("failed to serialize a pubkey: %s", err)
	}

	scriptPublicKey, err := PayToPublicKeyScript(serializedPubKey[:])
	if err != nil {
		t.Fatalf("failed to make scriptPublicKey: %v", err)
	}

	tx := &externalapi.DomainTransaction{
		Version: 0,
		Inputs: []*externalapi.DomainTransactionInput{
			{
				PreviousOutpoint: externalapi.DomainOutpoint{
					TransactionID: externalapi.DomainTransactionID{},
					Index:         0,
				},
				Sequence: constants.MaxTxInSequenceNum,
			},
		},
		Outputs: []*externalapi.DomainTransactionOutput{
			{
				Value:           1,
				ScriptPublicKey: &externalapi.ScriptPublicKey{},
			},
		},
	}

	signature, err := RawTxInSignature(tx, 0, scriptPublicKey, consensushashing.SigHashAll, key)
	if err != nil {
		t.Fatalf("failed to make raw signature: %s", err)
	}

	if len(signature) != 65 {
		t.Fatalf("expected 64 signature bytes plus a hash type byte, got %d bytes", len(signature))
	}
	if signature[len(signature)-1] != byte(consensushashing.SigHashAll) {
		t.Fatalf("expected hash type byte %x, got %x",
			byte(consensushashing.SigHashAll), signature[len(signature)-1])
	}
}
