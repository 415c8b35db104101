package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"

	"github.com/cobaltnet/cobaltd/domain/dagconfig"
)

func TestResolveNetwork(t *testing.T) {
	tests := []struct {
		name           string
		networkFlags   NetworkFlags
		expectedParams *dagconfig.Params
		expectsError   bool
	}{
		{
			name:           "no network flag defaults to mainnet",
			networkFlags:   NetworkFlags{},
			expectedParams: &dagconfig.MainnetParams,
		},
		{
			name:           "testnet",
			networkFlags:   NetworkFlags{Testnet: true},
			expectedParams: &dagconfig.TestnetParams,
		},
		{
			name:           "simnet",
			networkFlags:   NetworkFlags{Simnet: true},
			expectedParams: &dagconfig.SimnetParams,
		},
		{
			name:           "devnet",
			networkFlags:   NetworkFlags{Devnet: true},
			expectedParams: &dagconfig.DevnetParams,
		},
		{
			name:         "multiple networks",
			networkFlags: NetworkFlags{Testnet: true, Simnet: true},
			expectsError: true,
		},
		{
			name:         "override file outside devnet",
			networkFlags: NetworkFlags{Simnet: true, OverrideDAGParamsFile: "override.json"},
			expectsError: true,
		},
	}

	for _, test := range tests {
		parser := flags.NewParser(&test.networkFlags, flags.None)
		err := test.networkFlags.ResolveNetwork(parser)
		if test.expectsError {
			if err == nil {
				t.Errorf("%s: expected an error but got none", test.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %+v", test.name, err)
			continue
		}
		if test.networkFlags.ActiveNetParams != test.expectedParams {
			t.Errorf("%s: resolved to %s instead of %s", test.name,
				test.networkFlags.ActiveNetParams.Name, test.expectedParams.Name)
		}
	}
}

func TestOverrideDAGParams(t *testing.T) {
	// The override mutates the shared devnet params, so restore them when
	// the test is done.
	savedDevnetParams := dagconfig.DevnetParams
	defer func() { dagconfig.DevnetParams = savedDevnetParams }()

	overrideFile := filepath.Join(t.TempDir(), "override.json")
	overrideJSON := `{"k": 5, "mergeSetSizeLimit": 50, "skipProofOfWork": true}`
	err := ioutil.WriteFile(overrideFile, []byte(overrideJSON), 0644)
	if err != nil {
		t.Fatalf("Failed writing the override file: %+v", err)
	}

	networkFlags := NetworkFlags{Devnet: true, OverrideDAGParamsFile: overrideFile}
	parser := flags.NewParser(&networkFlags, flags.None)
	err = networkFlags.ResolveNetwork(parser)
	if err != nil {
		t.Fatalf("ResolveNetwork: %+v", err)
	}

	if networkFlags.ActiveNetParams.K != 5 {
		t.Errorf("K was not overridden: got %d, want 5", networkFlags.ActiveNetParams.K)
	}
	if networkFlags.ActiveNetParams.MergeSetSizeLimit != 50 {
		t.Errorf("MergeSetSizeLimit was not overridden: got %d, want 50",
			networkFlags.ActiveNetParams.MergeSetSizeLimit)
	}
	if !networkFlags.ActiveNetParams.SkipProofOfWork {
		t.Errorf("SkipProofOfWork was not overridden")
	}
}
