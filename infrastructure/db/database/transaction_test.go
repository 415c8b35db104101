package database_test

import (
	"testing"

	"github.com/cobaltnet/cobaltd/infrastructure/db/database"
)

func TestTransactionCommit(t *testing.T) {
	testForAllDatabaseTypes(t, "TestTransactionCommit", testTransactionCommit)
}

func testTransactionCommit(t *testing.T, db database.Database, testName string) {
	// Begin a new transaction
	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin "+
			"unexpectedly failed: %s", testName, err)
	}
	defer func() {
		err := dbTx.RollbackUnlessClosed()
		if err != nil {
			t.Fatalf("%s: RollbackUnlessClosed "+
				"unexpectedly failed: %s", testName, err)
		}
	}()

	// Put a value into the transaction
	key := database.MakeBucket(nil).Key([]byte("key"))
	value := []byte("value")
	err = dbTx.Put(key, value)
	if err != nil {
		t.Fatalf("%s: Put "+
			"unexpectedly failed: %s", testName, err)
	}

	// Commit the transaction
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("%s: Commit "+
			"unexpectedly failed: %s", testName, err)
	}

	// Make sure that the returned value exists and is as expected
	returnedValue, err := db.Get(key)
	if err != nil {
		t.Fatalf("%s: Get "+
			"unexpectedly failed: %s", testName, err)
	}
	if string(returnedValue) != string(value) {
		t.Fatalf("%s: Get "+
			"returned wrong value. Want: %s, got: %s",
			testName, string(value), string(returnedValue))
	}
}

func TestTransactionRollback(t *testing.T) {
	testForAllDatabaseTypes(t, "TestTransactionRollback", testTransactionRollback)
}

func testTransactionRollback(t *testing.T, db database.Database, testName string) {
	// Begin a new transaction
	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin "+
			"unexpectedly failed: %s", testName, err)
	}

	// Put a value into the transaction
	key := database.MakeBucket(nil).Key([]byte("key"))
	value := []byte("value")
	err = dbTx.Put(key, value)
	if err != nil {
		t.Fatalf("%s: Put "+
			"unexpectedly failed: %s", testName, err)
	}

	// Rollback the transaction
	err = dbTx.Rollback()
	if err != nil {
		t.Fatalf("%s: Rollback "+
			"unexpectedly failed: %s", testName, err)
	}

	// Make sure that the key does not exist in the database
	exists, err := db.Has(key)
	if err != nil {
		t.Fatalf("%s: Has "+
			"unexpectedly failed: %s", testName, err)
	}
	if exists {
		t.Fatalf("%s: Has "+
			"unexpectedly returned that the value exists", testName)
	}
}

func TestTransactionCloseErrors(t *testing.T) {
	testForAllDatabaseTypes(t, "TestTransactionCloseErrors", testTransactionCloseErrors)
}

func testTransactionCloseErrors(t *testing.T, db database.Database, testName string) {
	// Begin a new transaction and immediately commit it
	dbTx, err := db.Begin()
	if err != nil {
		t.Fatalf("%s: Begin "+
			"unexpectedly failed: %s", testName, err)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("%s: Commit "+
			"unexpectedly failed: %s", testName, err)
	}

	// Make sure that further operations on the closed
	// transaction return errors
	key := database.MakeBucket(nil).Key([]byte("key"))
	err = dbTx.Put(key, []byte("value"))
	if err == nil {
		t.Fatalf("%s: Put "+
			"unexpectedly succeeded", testName)
	}
	_, err = dbTx.Get(key)
	if err == nil {
		t.Fatalf("%s: Get "+
			"unexpectedly succeeded", testName)
	}
	err = dbTx.Commit()
	if err == nil {
		t.Fatalf("%s: Commit "+
			"unexpectedly succeeded", testName)
	}
	err = dbTx.Rollback()
	if err == nil {
		t.Fatalf("%s: Rollback "+
			"unexpectedly succeeded", testName)
	}

	// RollbackUnlessClosed on a closed transaction should not error
	err = dbTx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("%s: RollbackUnlessClosed "+
			"unexpectedly failed: %s", testName, err)
	}
}
