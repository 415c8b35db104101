package prefixmanager

import (
	"github.com/cobaltnet/cobaltd/domain/prefixmanager/prefix"
	"github.com/cobaltnet/cobaltd/infrastructure/db/database"
)

var activePrefixKey = database.MakeBucket(nil).Key([]byte("active-prefix"))
var inactivePrefixKey = database.MakeBucket(nil).Key([]byte("inactive-prefix"))

// ActivePrefix returns the current active database prefix, and whether it exists
func ActivePrefix(dataAccessor database.DataAccessor) (*prefix.Prefix, bool, error) {
	prefixBytes, err := dataAccessor.Get(activePrefixKey)
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	activePrefix, err := prefix.Deserialize(prefixBytes)
	if err != nil {
		return nil, false, err
	}

	return activePrefix, true, nil
}

// InactivePrefix returns the current inactive database prefix, and whether it exists
func InactivePrefix(dataAccessor database.DataAccessor) (*prefix.Prefix, bool, error) {
	prefixBytes, err := dataAccessor.Get(inactivePrefixKey)
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	inactivePrefix, err := prefix.Deserialize(prefixBytes)
	if err != nil {
		return nil, false, err
	}

	return inactivePrefix, true, nil
}

// SetPrefixAsActive sets the given prefix as the active prefix
func SetPrefixAsActive(dataAccessor database.DataAccessor, activePrefix *prefix.Prefix) error {
	return dataAccessor.Put(activePrefixKey, activePrefix.Serialize())
}

// SetPrefixAsInactive sets the given prefix as the inactive prefix
func SetPrefixAsInactive(dataAccessor database.DataAccessor, inactivePrefix *prefix.Prefix) error {
	return dataAccessor.Put(inactivePrefixKey, inactivePrefix.Serialize())
}

// DeleteInactivePrefix deletes all data associated with the inactive database
// prefix, including the inactive prefix key itself, and compacts the database
// to reclaim the space.
func DeleteInactivePrefix(db database.Database) error {
	prefixBytes, err := db.Get(inactivePrefixKey)
	if database.IsNotFoundError(err) {
		return nil
	}
	if err != nil {
		return err
	}

	inactivePrefix, err := prefix.Deserialize(prefixBytes)
	if err != nil {
		return err
	}

	err = deletePrefix(db, inactivePrefix)
	if err != nil {
		return err
	}

	err = db.Delete(inactivePrefixKey)
	if err != nil {
		return err
	}

	log.Infof("Compacting database after prefix delete")
	return db.Compact()
}

func deletePrefix(db database.Database, prefixToDelete *prefix.Prefix) error {
	log.Infof("Deleting database prefix %x", prefixToDelete.Serialize())
	prefixBucket := database.MakeBucket(prefixToDelete.Serialize())
	cursor, err := db.Cursor(prefixBucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}

		err = db.Delete(key)
		if err != nil {
			return err
		}
	}

	return nil
}
