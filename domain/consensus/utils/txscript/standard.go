// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockDAG.
const (
	NonStandardTy ScriptClass = iota // None of the recognized forms.
	PubKeyTy                         // Pay to pubkey.
	ScriptHashTy                     // Pay to script hash.
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	PubKeyTy:      "pubkey",
	ScriptHashTy:  "scripthash",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) > len(scriptClassToName) || int(t) < 0 {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// isPayToPubKey returns true if the script passed is a pay-to-pubkey
// transaction, false otherwise.
func isPayToPubKey(pops []parsedOpcode) bool {
	return len(pops) == 2 &&
		pops[0].opcode.value == OpData32 &&
		pops[1].opcode.value == OpCheckSig
}

// isScriptHash returns true if the script passed is a pay-to-script-hash
// transaction, false otherwise.
func isScriptHash(pops []parsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].opcode.value == OpBlake2b &&
		pops[1].opcode.value == OpData32 &&
		pops[2].opcode.value == OpEqual
}

// IsPayToScriptHash returns true if the script is in the standard
// pay-to-script-hash (P2SH) format, false otherwise.
func IsPayToScriptHash(scriptPublicKey *externalapi.ScriptPublicKey) bool {
	if scriptPublicKey.Version > constants.MaxScriptPublicKeyVersion {
		return false
	}
	pops, err := parseScript(scriptPublicKey.Script)
	if err != nil {
		return false
	}
	return isScriptHash(pops)
}

// typeOfScript returns the type of the script being inspected from the known
// standard types.
func typeOfScript(pops []parsedOpcode) ScriptClass {
	if isPayToPubKey(pops) {
		return PubKeyTy
	} else if isScriptHash(pops) {
		return ScriptHashTy
	}
	return NonStandardTy
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	pops, err := parseScript(script)
	if err != nil {
		return NonStandardTy
	}
	return typeOfScript(pops)
}

// payToPubKeyScript creates a new script to pay a transaction output to a
// public key. It is expected that the input is a valid pubkey.
func payToPubKeyScript(pubKey []byte) ([]byte, error) {
	return NewScriptBuilder().
		AddData(pubKey).
		AddOp(OpCheckSig).
		Script()
}

// PayToPublicKeyScript creates a new script public key that pays a transaction
// output to a 32-byte Schnorr public key.
func PayToPublicKeyScript(pubKey []byte) (*externalapi.ScriptPublicKey, error) {
	if len(pubKey) != 32 {
		return nil, errors.Errorf("invalid public key length %d", len(pubKey))
	}
	script, err := payToPubKeyScript(pubKey)
	if err != nil {
		return nil, err
	}
	return &externalapi.ScriptPublicKey{
		Script:  script,
		Version: constants.MaxScriptPublicKeyVersion,
	}, nil
}

// PayToScriptHashScript takes a script and returns an equivalent
// pay-to-script-hash script.
func PayToScriptHashScript(redeemScript []byte) ([]byte, error) {
	redeemScriptHash := blake2b.Sum256(redeemScript)
	return NewScriptBuilder().
		AddOp(OpBlake2b).
		AddData(redeemScriptHash[:]).
		AddOp(OpEqual).
		Script()
}

// PayToScriptHashSignatureScript generates a signature script that fits a
// pay-to-script-hash script.
func PayToScriptHashSignatureScript(redeemScript []byte, signature []byte) ([]byte, error) {
	redeemScriptAsData, err := NewScriptBuilder().AddData(redeemScript).Script()
	if err != nil {
		return nil, err
	}
	signatureScript := append(signature, redeemScriptAsData...)
	return signatureScript, nil
}

// IsUnspendable returns whether the passed public key script is unspendable,
// or guaranteed to fail at execution. This allows inputs to be pruned
// instantly when entering the UTXO set.
func IsUnspendable(scriptPublicKey []byte) bool {
	pops, err := parseScript(scriptPublicKey)
	if err != nil {
		return true
	}

	return len(pops) > 0 && pops[0].opcode.value == OpReturn
}
