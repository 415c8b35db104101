// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"testing"
)

// TestRegister ensures that registering a network with a magic that is
// already taken fails with ErrDuplicateNet.
func TestRegister(t *testing.T) {
	err := Register(&MainnetParams)
	if err != ErrDuplicateNet {
		t.Fatalf("TestRegister: expected ErrDuplicateNet, got %v", err)
	}

	customParams := SimnetParams
	customParams.Net = CobaltNet(0x12345678)
	err = Register(&customParams)
	if err != nil {
		t.Fatalf("TestRegister: registering a custom network unexpectedly failed: %v", err)
	}
	err = Register(&customParams)
	if err != ErrDuplicateNet {
		t.Fatalf("TestRegister: expected ErrDuplicateNet on re-registration, got %v", err)
	}
}

// TestPruningDepth makes sure the pruning depth is deep enough to contain
// the finality window of every block above it.
func TestPruningDepth(t *testing.T) {
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &SimnetParams, &DevnetParams} {
		if params.PruningDepth() <= 2*params.FinalityDepth() {
			t.Fatalf("TestPruningDepth: pruning depth of %s is not larger than twice its finality depth",
				params.Name)
		}
	}
}

// TestGenesisIdentity verifies that every network carries its own genesis
// block and that no two networks share one.
func TestGenesisIdentity(t *testing.T) {
	seen := make(map[string]string)
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &SimnetParams, &DevnetParams} {
		if other, ok := seen[params.GenesisHash.String()]; ok {
			t.Fatalf("TestGenesisIdentity: %s and %s share a genesis hash", params.Name, other)
		}
		seen[params.GenesisHash.String()] = params.Name
	}
}
