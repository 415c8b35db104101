// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
)

// mustParseShortForm parses the passed short form script and returns the
// resulting bytes. It panics if an error occurs. This is only used in the
// tests as a helper since the only way it can fail is if there is an error in
// the test source code.
func mustParseShortForm(script string) []byte {
	s, err := parseShortForm(script)
	if err != nil {
		panic("invalid short form script in test source: err " +
			err.Error() + ", script: " + script)
	}

	return s
}

// hexToBytes converts the passed hex string into bytes and will panic if there
// is an error. This is only provided for the hard-coded constants so errors in
// the source code can be detected. It will only (and must only) be called with
// hard-coded values.
func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// scriptClassTests houses several test scripts used to ensure various class
// determination is working as expected.
var scriptClassTests = []struct {
	name   string
	script string
	class  ScriptClass
}{
	{
		name: "Pay Pubkey",
		script: "DATA_32 0x79be667ef9dcbbac55a06295ce870b07029bfcdb2dce2" +
			"8d959f2815b16f81798 CHECKSIG",
		class: PubKeyTy,
	},
	{
		// 33-byte compressed ECDSA pubkeys are not a standard form.
		name: "Pay Pubkey with a compressed pubkey",
		script: "DATA_33 0x0232abdc893e7f0631364d7fd01cb33d24da45329a003" +
			"57b3a7886211ab414d55a CHECKSIG",
		class: NonStandardTy,
	},
	{
		name: "Pay Pubkey with an uncompressed pubkey",
		script: "DATA_65 0x0411db93e1dcdb8a016b49840f8c53bc1eb68a382e" +
			"97b1482ecad7b148a6909a5cb2e0eaddfb84ccf9744464f82e16" +
			"0bfa9b8b64f9d4c03f999b8643f656b412a3 CHECKSIG",
		class: NonStandardTy,
	},
	{
		// Hash based pay-to-pubkey forms are not recognized.
		name: "Pay PubkeyHash",
		script: "DUP BLAKE2B DATA_32 0x660d4ef3a743e3e696ad990364e555c27" +
			"1ad504b633ec2ac1ffa1b7b7d027f56 EQUALVERIFY CHECKSIG",
		class: NonStandardTy,
	},
	{
		name: "multisig",
		script: "1 DATA_32 0x79be667ef9dcbbac55a06295ce870b07029bfcdb2dc" +
			"e28d959f2815b16f81798 1 CHECKMULTISIG",
		class: NonStandardTy,
	},
	{
		name: "P2SH",
		script: "BLAKE2B DATA_32 0x433ec2ac1ffa1b7b7d027f564529c57197f9a" +
			"e88660d4ef3a743e3e696ad9903 EQUAL",
		class: ScriptHashTy,
	},
	{
		// Nulldata scripts are not considered standard here.
		name:   "nulldata",
		script: "RETURN 0",
		class:  NonStandardTy,
	},
	{
		name: "P2SH with a 20-byte hash",
		script: "BLAKE2B DATA_20 0x433ec2ac1ffa1b7b7d027f564529c57197f9a" +
			"e88 EQUAL",
		class: NonStandardTy,
	},
	{
		name: "P2SH missing EQUAL",
		script: "BLAKE2B DATA_32 0x433ec2ac1ffa1b7b7d027f564529c57197f9a" +
			"e88660d4ef3a743e3e696ad9903",
		class: NonStandardTy,
	},
	{
		name:   "almost multisig but wrong length",
		script: "1 CHECKMULTISIG",
		class:  NonStandardTy,
	},
	{
		name:   "doesn't parse",
		script: "DATA_5 0x01020304",
		class:  NonStandardTy,
	},
	{
		name:   "empty script",
		script: "",
		class:  NonStandardTy,
	},
}

// TestScriptClass ensures all the scripts in scriptClassTests have the expected
// class.
func TestScriptClass(t *testing.T) {
	t.Parallel()

	for _, test := range scriptClassTests {
		script := mustParseShortForm(test.script)
		class := GetScriptClass(script)
		if class != test.class {
			t.Errorf("%s: expected %s got %s (script %x)", test.name,
				test.class, class, script)
			continue
		}
	}
}

// TestStringifyClass ensures the script class string returns the expected
// string for each script class.
func TestStringifyClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		class    ScriptClass
		stringed string
	}{
		{
			name:     "nonstandardty",
			class:    NonStandardTy,
			stringed: "nonstandard",
		},
		{
			name:     "pubkey",
			class:    PubKeyTy,
			stringed: "pubkey",
		},
		{
			name:     "scripthash",
			class:    ScriptHashTy,
			stringed: "scripthash",
		},
		{
			name:     "broken",
			class:    ScriptClass(255),
			stringed: "Invalid",
		},
	}

	for _, test := range tests {
		typeString := test.class.String()
		if typeString != test.stringed {
			t.Errorf("%s: got %#q, want %#q", test.name,
				typeString, test.stringed)
		}
	}
}

// TestPayToPublicKeyScript ensures the PayToPublicKeyScript function generates
// the correct scripts for 32-byte Schnorr public keys and rejects keys of any
// other length.
func TestPayToPublicKeyScript(t *testing.T) {
	t.Parallel()

	validPubKey := hexToBytes("79be667ef9dcbbac55a06295ce870b07029bfcdb2dc" +
		"e28d959f2815b16f81798")
	expectedScript := mustParseShortForm("DATA_32 0x79be667ef9dcbbac55a06" +
		"295ce870b07029bfcdb2dce28d959f2815b16f81798 CHECKSIG")

	tests := []struct {
		name    string
		pubKey  []byte
		wantErr bool
	}{
		{name: "32-byte pubkey", pubKey: validPubKey},
		{name: "31-byte pubkey", pubKey: validPubKey[:31], wantErr: true},
		{name: "33-byte pubkey", pubKey: append([]byte{0x02}, validPubKey...), wantErr: true},
		{name: "empty pubkey", pubKey: nil, wantErr: true},
	}

	for _, test := range tests {
		scriptPublicKey, err := PayToPublicKeyScript(test.pubKey)
		if test.wantErr {
			if err == nil {
				t.Errorf("%s: expected an error", test.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}

		if !bytes.Equal(scriptPublicKey.Script, expectedScript) {
			t.Errorf("%s: got script %x, want %x", test.name,
				scriptPublicKey.Script, expectedScript)
		}
		if scriptPublicKey.Version != constants.MaxScriptPublicKeyVersion {
			t.Errorf("%s: got version %d, want %d", test.name,
				scriptPublicKey.Version, constants.MaxScriptPublicKeyVersion)
		}
	}
}

// TestPayToScriptHashScript ensures scripts built by PayToScriptHashScript
// commit to the blake2b hash of the redeem script and are recognized as
// pay-to-script-hash.
func TestPayToScriptHashScript(t *testing.T) {
	t.Parallel()

	redeemScript := []byte{OpTrue}
	script, err := PayToScriptHashScript(redeemScript)
	if err != nil {
		t.Fatalf("PayToScriptHashScript: unexpected error: %v", err)
	}

	if class := GetScriptClass(script); class != ScriptHashTy {
		t.Errorf("GetScriptClass: got %s, want %s", class, ScriptHashTy)
	}

	scriptPublicKey := &externalapi.ScriptPublicKey{
		Script:  script,
		Version: constants.MaxScriptPublicKeyVersion,
	}
	if !IsPayToScriptHash(scriptPublicKey) {
		t.Errorf("IsPayToScriptHash: expected true for %x", script)
	}

	expectedHash := blake2b.Sum256(redeemScript)
	if !bytes.Equal(script[2:34], expectedHash[:]) {
		t.Errorf("unexpected redeem script hash: got %x, want %x",
			script[2:34], expectedHash)
	}
}

// TestIsPayToScriptHash ensures the IsPayToScriptHash function returns the
// expected results for all the scripts in p2shTests.
func TestIsPayToScriptHash(t *testing.T) {
	t.Parallel()

	p2sh := mustParseShortForm("BLAKE2B DATA_32 0x433ec2ac1ffa1b7b7d027f5" +
		"64529c57197f9ae88660d4ef3a743e3e696ad9903 EQUAL")
	p2pk := mustParseShortForm("DATA_32 0x79be667ef9dcbbac55a06295ce870b0" +
		"7029bfcdb2dce28d959f2815b16f81798 CHECKSIG")

	tests := []struct {
		name            string
		scriptPublicKey *externalapi.ScriptPublicKey
		expected        bool
	}{
		{
			name: "standard p2sh",
			scriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  p2sh,
				Version: constants.MaxScriptPublicKeyVersion,
			},
			expected: true,
		},
		{
			name: "p2sh with an unknown version",
			scriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  p2sh,
				Version: constants.MaxScriptPublicKeyVersion + 1,
			},
			expected: false,
		},
		{
			name: "p2pk",
			scriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  p2pk,
				Version: constants.MaxScriptPublicKeyVersion,
			},
			expected: false,
		},
		{
			name: "script that does not parse",
			scriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  []byte{OpData45},
				Version: constants.MaxScriptPublicKeyVersion,
			},
			expected: false,
		},
		{
			name: "empty script",
			scriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  nil,
				Version: constants.MaxScriptPublicKeyVersion,
			},
			expected: false,
		},
	}

	for _, test := range tests {
		if got := IsPayToScriptHash(test.scriptPublicKey); got != test.expected {
			t.Errorf("%s: got %v, want %v", test.name, got, test.expected)
		}
	}
}

// TestPayToScriptHashSignatureScript ensures signature scripts built for
// pay-to-script-hash outputs consist of the signature followed by a data push
// of the redeem script.
func TestPayToScriptHashSignatureScript(t *testing.T) {
	t.Parallel()

	redeemScript := mustParseShortForm("2 3 ADD 5 NUMEQUAL")
	signature := hexToBytes("0102030405060708")

	signatureScript, err := PayToScriptHashSignatureScript(redeemScript, signature)
	if err != nil {
		t.Fatalf("PayToScriptHashSignatureScript: unexpected error: %v",
			err)
	}

	expected := append(hexToBytes("0102030405060708"), hexToBytes("05525393559c")...)
	if !bytes.Equal(signatureScript, expected) {
		t.Errorf("unexpected signature script: got %x, want %x",
			signatureScript, expected)
	}

	// An empty signature is used when the redeem script alone satisfies the
	// output.
	signatureScript, err = PayToScriptHashSignatureScript(redeemScript, nil)
	if err != nil {
		t.Fatalf("PayToScriptHashSignatureScript: unexpected error: %v",
			err)
	}
	if !bytes.Equal(signatureScript, hexToBytes("05525393559c")) {
		t.Errorf("unexpected signature script: got %x, want %x",
			signatureScript, hexToBytes("05525393559c"))
	}
}

// TestIsUnspendable ensures the IsUnspendable function returns the expected
// results.
func TestIsUnspendable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		scriptPubKey []byte
		expected     bool
	}{
		{
			name:         "nulldata",
			scriptPubKey: mustParseShortForm("RETURN DATA_4 0x74657374"),
			expected:     true,
		},
		{
			name: "pay-to-pubkey",
			scriptPubKey: mustParseShortForm("DATA_32 0x79be667ef9dcb" +
				"bac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798 " +
				"CHECKSIG"),
			expected: false,
		},
		{
			name:         "script that does not parse",
			scriptPubKey: []byte{OpData45},
			expected:     true,
		},
		{
			name:         "empty script",
			scriptPubKey: nil,
			expected:     false,
		},
	}

	for _, test := range tests {
		if got := IsUnspendable(test.scriptPubKey); got != test.expected {
			t.Errorf("%s: got %v, want %v", test.name, got,
				test.expected)
		}
	}
}
