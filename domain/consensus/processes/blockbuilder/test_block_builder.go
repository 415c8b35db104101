package blockbuilder

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/testapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/blockheader"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/cobaltnet/cobaltd/util/mstime"
)

type testBlockBuilder struct {
	*blockBuilder
}

var tempBlockHash = externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

// NewTestBlockBuilder creates an instance of a TestBlockBuilder
func NewTestBlockBuilder(baseBlockBuilder model.BlockBuilder) testapi.TestBlockBuilder {
	return &testBlockBuilder{blockBuilder: baseBlockBuilder.(*blockBuilder)}
}

// BuildBlockWithParents builds a block with the given parents instead of the
// current virtual parents. The block is built inside a throwaway staging area
// that is never committed, so nothing of the temporary block survives the call.
func (bb *testBlockBuilder) BuildBlockWithParents(parentHashes []*externalapi.DomainHash,
	coinbaseData *externalapi.DomainCoinbaseData, transactions []*externalapi.DomainTransaction) (
	*externalapi.DomainBlock, externalapi.UTXODiff, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildBlockWithParents")
	defer onEnd()

	stagingArea := model.NewStagingArea()

	block, diff, err := bb.buildBlockWithParents(stagingArea, parentHashes, coinbaseData, transactions)
	if err != nil {
		return nil, nil, err
	}

	// It's invalid to insert a block with prefilled fields to consensus,
	// so we clear them before returning the block.
	blockClone := block.Clone()
	for _, tx := range blockClone.Transactions {
		tx.Fee = 0
		tx.Mass = 0
		tx.ID = nil
		for _, input := range tx.Inputs {
			input.UTXOEntry = nil
		}
	}

	return blockClone, diff, nil
}

func (bb *testBlockBuilder) buildBlockWithParents(stagingArea *model.StagingArea,
	parentHashes []*externalapi.DomainHash, coinbaseData *externalapi.DomainCoinbaseData,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, externalapi.UTXODiff, error) {

	if coinbaseData == nil {
		// Pay to an anyone-can-spend address, so that tests can spend the
		// coinbase with testutils.OpTrueScript's redeem script.
		scriptPublicKeyScript, err := txscript.PayToScriptHashScript([]byte{txscript.OpTrue})
		if err != nil {
			return nil, nil, err
		}
		coinbaseData = &externalapi.DomainCoinbaseData{
			ScriptPublicKey: &externalapi.ScriptPublicKey{
				Script:  scriptPublicKeyScript,
				Version: constants.MaxScriptPublicKeyVersion,
			},
			ExtraData: []byte{},
		}
	}

	bb.blockRelationStore.StageBlockRelation(stagingArea, tempBlockHash, &model.BlockRelations{Parents: parentHashes})

	err := bb.ghostdagManager.GHOSTDAG(stagingArea, tempBlockHash)
	if err != nil {
		return nil, nil, err
	}

	// The DAA data of the temporary block has to be in place before its past
	// UTXO is restored, since restoration reads the block's DAA score.
	bits, err := bb.difficultyManager.StageDAADataAndReturnRequiredDifficulty(stagingArea, tempBlockHash)
	if err != nil {
		return nil, nil, err
	}

	pastUTXO, acceptanceData, multiset, err :=
		bb.consensusStateManager.CalculatePastUTXOAndAcceptanceData(stagingArea, tempBlockHash)
	if err != nil {
		return nil, nil, err
	}
	bb.acceptanceDataStore.Stage(stagingArea, tempBlockHash, acceptanceData)

	coinbase, err := bb.coinbaseManager.ExpectedCoinbaseTransaction(stagingArea, tempBlockHash, coinbaseData)
	if err != nil {
		return nil, nil, err
	}
	transactionsWithCoinbase := append([]*externalapi.DomainTransaction{coinbase}, transactions...)

	header, err := bb.buildHeaderWithParents(
		stagingArea, parentHashes, transactionsWithCoinbase, acceptanceData, multiset, bits)
	if err != nil {
		return nil, nil, err
	}

	return &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactionsWithCoinbase,
	}, pastUTXO, nil
}

func (bb *testBlockBuilder) buildHeaderWithParents(stagingArea *model.StagingArea,
	parentHashes []*externalapi.DomainHash, transactions []*externalapi.DomainTransaction,
	acceptanceData externalapi.AcceptanceData, multiset model.Multiset, bits uint32) (externalapi.BlockHeader, error) {

	ghostdagData, err := bb.ghostdagDataStore.Get(bb.databaseContext, stagingArea, tempBlockHash)
	if err != nil {
		return nil, err
	}
	daaScore, err := bb.daaBlocksStore.DAAScore(bb.databaseContext, stagingArea, tempBlockHash)
	if err != nil {
		return nil, err
	}
	timeInMilliseconds := mstime.Now().UnixMilliseconds()
	minTimestamp, err := bb.minBlockTime(stagingArea, tempBlockHash)
	if err != nil {
		return nil, err
	}
	if timeInMilliseconds < minTimestamp {
		timeInMilliseconds = minTimestamp
	}
	hashMerkleRoot := bb.newBlockHashMerkleRoot(transactions)
	acceptedIDMerkleRoot, err := bb.calculateAcceptedIDMerkleRoot(acceptanceData)
	if err != nil {
		return nil, err
	}
	utxoCommitment := multiset.Hash()
	pruningPoint, err := bb.pruningManager.ExpectedHeaderPruningPoint(stagingArea, tempBlockHash)
	if err != nil {
		return nil, err
	}

	return blockheader.NewImmutableBlockHeader(
		constants.BlockVersion,
		[]externalapi.BlockLevelParents{parentHashes},
		hashMerkleRoot,
		acceptedIDMerkleRoot,
		utxoCommitment,
		timeInMilliseconds,
		bits,
		0,
		daaScore,
		ghostdagData.BlueScore(),
		ghostdagData.BlueWork(),
		pruningPoint,
	), nil
}
