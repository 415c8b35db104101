package consensus_test

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
	"github.com/cobaltnet/cobaltd/domain/prefixmanager/prefix"
	"github.com/cobaltnet/cobaltd/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

func TestConsensus_GetBlockInfo(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		consensus, teardown, err := factory.NewTestConsensus(consensusConfig, "TestConsensus_GetBlockInfo")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		invalidBlock, _, err := consensus.BuildBlockWithParents(
			[]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		newHeader := invalidBlock.Header.ToMutable()
		newHeader.SetTimeInMilliseconds(0)
		invalidBlock.Header = newHeader.ToImmutable()
		_, err = consensus.ValidateAndInsertBlock(invalidBlock, true)
		if !errors.Is(err, ruleerrors.ErrTimeTooOld) {
			t.Fatalf("Expected block to be invalid with err: %v, instead found: %v", ruleerrors.ErrTimeTooOld, err)
		}

		info, err := consensus.GetBlockInfo(consensushashing.BlockHash(invalidBlock))
		if err != nil {
			t.Fatalf("Failed to get block info: %v", err)
		}

		if !info.Exists {
			t.Fatal("The block is missing")
		}
		if info.BlockStatus != externalapi.StatusInvalid {
			t.Fatalf("Expected block status: %s, instead got: %s", externalapi.StatusInvalid, info.BlockStatus)
		}

		emptyCoinbase := externalapi.DomainCoinbaseData{
			ScriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  nil,
				Version: 0,
			},
		}
		validBlock, err := consensus.BuildBlock(&emptyCoinbase, nil)
		if err != nil {
			t.Fatalf("consensus.BuildBlock with an empty coinbase shouldn't fail: %v", err)
		}

		_, err = consensus.ValidateAndInsertBlock(validBlock, true)
		if err != nil {
			t.Fatalf("consensus.ValidateAndInsertBlock with a block straight from consensus.BuildBlock should not fail: %v", err)
		}

		info, err = consensus.GetBlockInfo(consensushashing.BlockHash(validBlock))
		if err != nil {
			t.Fatalf("Failed to get block info: %v", err)
		}

		if !info.Exists {
			t.Fatal("The block is missing")
		}
		if info.BlockStatus != externalapi.StatusUTXOValid {
			t.Fatalf("Expected block status: %s, instead got: %s", externalapi.StatusUTXOValid, info.BlockStatus)
		}
	})
}

// TestConsensus_VirtualChangeCallback verifies that the virtual change callback
// fires on every virtual-updating insertion, and that it is safe for the
// callback to query the consensus it was invoked from.
func TestConsensus_VirtualChangeCallback(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()

		tmpDir, err := ioutil.TempDir("", "TestConsensus_VirtualChangeCallback")
		if err != nil {
			t.Fatalf("Error creating a temporary directory: %+v", err)
		}
		defer os.RemoveAll(tmpDir)

		db, err := ldb.NewLevelDB(tmpDir, 8)
		if err != nil {
			t.Fatalf("Error creating a database: %+v", err)
		}
		defer db.Close()

		callbackCount := 0
		var lastChangeSet *externalapi.VirtualChangeSet
		var consensusRef externalapi.Consensus
		callback := func(virtualChangeSet *externalapi.VirtualChangeSet) {
			callbackCount++
			lastChangeSet = virtualChangeSet

			// Calling back into the consensus must not deadlock.
			_, err := consensusRef.GetVirtualSelectedParent()
			if err != nil {
				t.Errorf("GetVirtualSelectedParent inside the callback: %+v", err)
			}
		}

		consensusInstance, err := factory.NewConsensus(consensusConfig, db, &prefix.Prefix{}, callback)
		if err != nil {
			t.Fatalf("Error creating consensus: %+v", err)
		}
		consensusRef = consensusInstance
		err = consensusInstance.Init()
		if err != nil {
			t.Fatalf("Error initializing consensus: %+v", err)
		}
		defer consensusInstance.Shutdown()

		// Init inserts genesis without reporting a virtual change.
		if callbackCount != 0 {
			t.Fatalf("Expected no callback on Init, instead it fired %d times", callbackCount)
		}

		emptyCoinbase := externalapi.DomainCoinbaseData{
			ScriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  nil,
				Version: 0,
			},
		}
		block, err := consensusInstance.BuildBlock(&emptyCoinbase, nil)
		if err != nil {
			t.Fatalf("Error building block: %+v", err)
		}
		_, err = consensusInstance.ValidateAndInsertBlock(block, true)
		if err != nil {
			t.Fatalf("Error inserting block: %+v", err)
		}

		if callbackCount != 1 {
			t.Fatalf("Expected the callback to fire once, instead it fired %d times", callbackCount)
		}
		if lastChangeSet == nil {
			t.Fatal("Expected a non-nil virtual change set")
		}

		virtualSelectedParent, err := consensusInstance.GetVirtualSelectedParent()
		if err != nil {
			t.Fatalf("Error getting virtual selected parent: %+v", err)
		}
		if !virtualSelectedParent.Equal(consensushashing.BlockHash(block)) {
			t.Fatalf("Expected the virtual selected parent to be %s, got %s",
				consensushashing.BlockHash(block), virtualSelectedParent)
		}
	})
}
