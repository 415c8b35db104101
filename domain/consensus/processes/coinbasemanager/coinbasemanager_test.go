package coinbasemanager_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
	"github.com/pkg/errors"
)

func TestExtractCoinbaseDataAndBlueScore(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestExtractCoinbaseDataAndBlueScore")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		stagingArea := model.NewStagingArea()
		coinbaseData := &externalapi.DomainCoinbaseData{
			ScriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  []byte{1, 2, 3, 4, 5},
				Version: 5,
			},
			ExtraData: []byte("extra data"),
		}

		coinbaseTx, err := tc.CoinbaseManager().ExpectedCoinbaseTransaction(
			stagingArea, model.VirtualBlockHash, coinbaseData)
		if err != nil {
			t.Fatalf("ExpectedCoinbaseTransaction: %+v", err)
		}

		blueScore, extractedCoinbaseData, err := tc.CoinbaseManager().ExtractCoinbaseDataAndBlueScore(coinbaseTx)
		if err != nil {
			t.Fatalf("ExtractCoinbaseDataAndBlueScore: %+v", err)
		}

		virtualGHOSTDAGData, err := tc.GHOSTDAGDataStore().Get(tc.DatabaseContext(), stagingArea, model.VirtualBlockHash)
		if err != nil {
			t.Fatalf("Error getting virtual GHOSTDAG data: %+v", err)
		}

		if blueScore != virtualGHOSTDAGData.BlueScore() {
			t.Fatalf("Unexpected blue score. Want: %d, got: %d", virtualGHOSTDAGData.BlueScore(), blueScore)
		}

		if !extractedCoinbaseData.ScriptPublicKey.Equal(coinbaseData.ScriptPublicKey) {
			t.Fatalf("Unexpected script public key. Want: %s, got: %s",
				coinbaseData.ScriptPublicKey, extractedCoinbaseData.ScriptPublicKey)
		}

		if !bytes.Equal(extractedCoinbaseData.ExtraData, coinbaseData.ExtraData) {
			t.Fatalf("Unexpected extra data. Want: %x, got: %x", coinbaseData.ExtraData, extractedCoinbaseData.ExtraData)
		}
	})
}

func TestTooLongCoinbaseScriptPublicKey(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestTooLongCoinbaseScriptPublicKey")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		stagingArea := model.NewStagingArea()
		coinbaseData := &externalapi.DomainCoinbaseData{
			ScriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  bytes.Repeat([]byte{0}, int(consensusConfig.CoinbasePayloadScriptPublicKeyMaxLength)+1),
				Version: 0,
			},
			ExtraData: nil,
		}

		_, err = tc.CoinbaseManager().ExpectedCoinbaseTransaction(stagingArea, model.VirtualBlockHash, coinbaseData)
		if !errors.Is(err, ruleerrors.ErrBadCoinbasePayloadLen) {
			t.Fatalf("Expected ErrBadCoinbasePayloadLen, got: %+v", err)
		}
	})
}

func TestExtractCoinbaseDataErrors(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestExtractCoinbaseDataErrors")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		tests := []struct {
			name            string
			payload         []byte
			expectedErrText string
		}{
			{
				name:            "payload shorter than the fixed-size prefix",
				payload:         []byte{1, 2, 3},
				expectedErrText: "less than the minimum length",
			},
			{
				name: "script public key length above the maximum",
				payload: append(
					bytes.Repeat([]byte{0}, 10),
					consensusConfig.CoinbasePayloadScriptPublicKeyMaxLength+1),
				expectedErrText: "longer than the max allowed length",
			},
			{
				name: "script public key truncated",
				payload: append(
					bytes.Repeat([]byte{0}, 10),
					5, 1, 2),
				expectedErrText: "doesn't have enough bytes",
			},
		}

		for _, test := range tests {
			coinbaseTx := &externalapi.DomainTransaction{Payload: test.payload}
			_, _, err := tc.CoinbaseManager().ExtractCoinbaseDataAndBlueScore(coinbaseTx)
			if !errors.Is(err, ruleerrors.ErrBadCoinbasePayloadLen) {
				t.Fatalf("%s: expected ErrBadCoinbasePayloadLen, got: %+v", test.name, err)
			}
			if !strings.Contains(err.Error(), test.expectedErrText) {
				t.Fatalf("%s: expected error text to contain %q, got: %s", test.name, test.expectedErrText, err)
			}
		}
	})
}

func TestBlockSubsidy(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockSubsidy")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		stagingArea := model.NewStagingArea()
		subsidy, err := tc.CoinbaseManager().CalcBlockSubsidy(stagingArea, consensusConfig.GenesisHash)
		if err != nil {
			t.Fatalf("CalcBlockSubsidy: %+v", err)
		}
		if subsidy != consensusConfig.BaseSubsidy {
			t.Fatalf("Unexpected genesis subsidy. Want: %d, got: %d", consensusConfig.BaseSubsidy, subsidy)
		}

		tipHash, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}

		tipSubsidy, err := tc.CoinbaseManager().CalcBlockSubsidy(stagingArea, tipHash)
		if err != nil {
			t.Fatalf("CalcBlockSubsidy: %+v", err)
		}
		if tipSubsidy != consensusConfig.BaseSubsidy {
			t.Fatalf("The subsidy is expected to stay on %d, got: %d", consensusConfig.BaseSubsidy, tipSubsidy)
		}
	})
}
