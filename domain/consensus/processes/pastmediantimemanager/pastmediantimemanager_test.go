package pastmediantimemanager_test

import (
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
)

func TestPastMedianTime(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, tearDown, err := factory.NewTestConsensus(consensusConfig, "TestPastMedianTime")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer tearDown(false)

		numBlocks := uint32(300)
		blockHashes := make([]*externalapi.DomainHash, numBlocks)
		blockHashes[0] = consensusConfig.GenesisHash
		blockTime := consensusConfig.GenesisBlock.Header.TimeInMilliseconds()
		for i := uint32(1); i < numBlocks; i++ {
			blockTime += 1000
			block, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{blockHashes[i-1]}, nil, nil)
			if err != nil {
				t.Fatalf("BuildBlockWithParents: %+v", err)
			}

			newHeader := block.Header.ToMutable()
			newHeader.SetTimeInMilliseconds(blockTime)
			block.Header = newHeader.ToImmutable()

			_, err = tc.ValidateAndInsertBlock(block, true)
			if err != nil {
				t.Fatalf("ValidateAndInsertBlock: %+v", err)
			}
			blockHashes[i] = consensushashing.BlockHash(block)
		}

		tests := []struct {
			blockNumber                      uint32
			expectedMillisecondsSinceGenesis int64
		}{
			{
				blockNumber:                      263,
				expectedMillisecondsSinceGenesis: 132000,
			},
			{
				blockNumber:                      271,
				expectedMillisecondsSinceGenesis: 139000,
			},
			{
				blockNumber:                      241,
				expectedMillisecondsSinceGenesis: 121000,
			},
			{
				blockNumber:                      5,
				expectedMillisecondsSinceGenesis: 3000,
			},
			{
				blockNumber:                      1,
				expectedMillisecondsSinceGenesis: 0,
			},
		}

		stagingArea := model.NewStagingArea()
		for _, test := range tests {
			pastMedianTime, err := tc.PastMedianTimeManager().PastMedianTime(stagingArea, blockHashes[test.blockNumber])
			if err != nil {
				t.Fatalf("PastMedianTime: %+v", err)
			}

			millisecondsSinceGenesis := pastMedianTime -
				consensusConfig.GenesisBlock.Header.TimeInMilliseconds()

			if millisecondsSinceGenesis != test.expectedMillisecondsSinceGenesis {
				t.Errorf("expected past median time of block %d to be %d milliseconds after genesis but got %d",
					test.blockNumber, test.expectedMillisecondsSinceGenesis, millisecondsSinceGenesis)
			}
		}
	})
}
