package staging

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
)

// CommitAllChanges creates a transaction in `databaseContext`, and commits all changes
// in `stagingArea` through it.
func CommitAllChanges(databaseContext model.DBManager, stagingArea *model.StagingArea) error {
	dbTx, err := databaseContext.Begin()
	if err != nil {
		return err
	}

	err = stagingArea.Commit(dbTx)
	if err != nil {
		return err
	}

	return dbTx.Commit()
}
