package consensusstatestore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

var tipsKeyName = []byte("tips")

func (css *consensusStateStore) Tips(stagingArea *model.StagingArea, dbContext model.DBReader) ([]*externalapi.DomainHash, error) {
	stagingShard := css.stagingShard(stagingArea)

	if stagingShard.tipsStaging != nil {
		return externalapi.CloneHashes(stagingShard.tipsStaging), nil
	}

	if css.tipsCache != nil {
		return externalapi.CloneHashes(css.tipsCache), nil
	}

	tipsBytes, err := dbContext.Get(css.tipsKey)
	if err != nil {
		return nil, err
	}

	tips, err := binaryserialization.DeserializeHashes(tipsBytes)
	if err != nil {
		return nil, err
	}
	css.tipsCache = tips
	return externalapi.CloneHashes(tips), nil
}

func (css *consensusStateStore) StageTips(stagingArea *model.StagingArea, tipHashes []*externalapi.DomainHash) {
	stagingShard := css.stagingShard(stagingArea)

	stagingShard.tipsStaging = externalapi.CloneHashes(tipHashes)
}

func (csss *consensusStateStagingShard) commitTips(dbTx model.DBTransaction) error {
	if csss.tipsStaging == nil {
		return nil
	}

	tipsBytes := binaryserialization.SerializeHashes(csss.tipsStaging)
	err := dbTx.Put(csss.store.tipsKey, tipsBytes)
	if err != nil {
		return err
	}

	csss.store.tipsCache = csss.tipsStaging
	return nil
}
