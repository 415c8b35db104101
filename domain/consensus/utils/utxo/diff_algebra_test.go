package utxo

import (
	"reflect"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

func TestUTXODiffRules(t *testing.T) {
	txID0 := externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{})
	outpoint0 := *externalapi.NewDomainOutpoint(txID0, 0)

	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{}, Version: 0}
	utxoEntry1 := NewUTXOEntry(10, scriptPublicKey, false, 70)
	utxoEntry2 := NewUTXOEntry(10, scriptPublicKey, false, 100)

	// For each of the following test cases, we will:
	// this.diffFrom(other) and compare it to expectedDiffFromResult
	// withDiff(this, other) and compare it to expectedWithDiffResult
	// withDiffInPlace(this.clone(), other) and compare it to expectedWithDiffResult
	//
	// Note: an expected nil result means that we expect the respective operation to fail
	tests := []struct {
		name                   string
		this                   *mutableUTXODiff
		other                  *mutableUTXODiff
		expectedDiffFromResult *mutableUTXODiff
		expectedWithDiffResult *mutableUTXODiff
	}{
		{
			name: "empty this, empty other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
		},
		{
			name: "one toAdd in this, one toAdd in other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			expectedWithDiffResult: nil,
		},
		{
			name: "one toAdd in this, same toAdd in other with different DAA score",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry2},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry2},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			expectedWithDiffResult: nil,
		},
		{
			name: "one toAdd in this, one toRemove in other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			expectedDiffFromResult: nil,
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
		},
		{
			name: "one toAdd in this, one toRemove in other with different DAA score",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry2},
			},
			expectedDiffFromResult: nil,
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{outpoint0: utxoEntry2},
			},
		},
		{
			name: "one toAdd in this, empty other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
		},
		{
			name: "empty this, one toAdd in other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
		},
		{
			name: "one toRemove in this, empty other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
		},
		{
			name: "empty this, one toRemove in other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
		},
		{
			name: "one toRemove in this, one toRemove in other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			expectedDiffFromResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
			expectedWithDiffResult: nil,
		},
		{
			name: "one toRemove in this, one toAdd in other",
			this: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{outpoint0: utxoEntry1},
			},
			other: &mutableUTXODiff{
				toAdd:    utxoCollection{outpoint0: utxoEntry1},
				toRemove: utxoCollection{},
			},
			expectedDiffFromResult: nil,
			expectedWithDiffResult: &mutableUTXODiff{
				toAdd:    utxoCollection{},
				toRemove: utxoCollection{},
			},
		},
	}

	for _, test := range tests {
		expectedDiffFromOk := test.expectedDiffFromResult != nil
		diffFromResult, err := diffFrom(test.this, test.other)
		if (err == nil) != expectedDiffFromOk {
			t.Errorf("%s: unexpected diffFrom error: expected ok: %t, got error: %+v",
				test.name, expectedDiffFromOk, err)
		}
		if expectedDiffFromOk && !collectionsEqual(diffFromResult, test.expectedDiffFromResult) {
			t.Errorf("%s: unexpected diffFrom result. Want: %s, got: %s",
				test.name, test.expectedDiffFromResult, diffFromResult)
		}

		expectedWithDiffOk := test.expectedWithDiffResult != nil
		withDiffResult, err := withDiff(test.this, test.other)
		if (err == nil) != expectedWithDiffOk {
			t.Errorf("%s: unexpected withDiff error: expected ok: %t, got error: %+v",
				test.name, expectedWithDiffOk, err)
		}
		if expectedWithDiffOk && !collectionsEqual(withDiffResult, test.expectedWithDiffResult) {
			t.Errorf("%s: unexpected withDiff result. Want: %s, got: %s",
				test.name, test.expectedWithDiffResult, withDiffResult)
		}

		// withDiffInPlace should behave exactly like withDiff
		thisClone := test.this.clone()
		err = withDiffInPlace(thisClone, test.other)
		if (err == nil) != expectedWithDiffOk {
			t.Errorf("%s: unexpected withDiffInPlace error: expected ok: %t, got error: %+v",
				test.name, expectedWithDiffOk, err)
		}
		if expectedWithDiffOk && !collectionsEqual(thisClone, test.expectedWithDiffResult) {
			t.Errorf("%s: unexpected withDiffInPlace result. Want: %s, got: %s",
				test.name, test.expectedWithDiffResult, thisClone)
		}

		// diffFrom should be the reverse of withDiff: this.WithDiff(d).diffFrom(this) == d for
		// every case where both operations succeed
		if expectedDiffFromOk && expectedWithDiffOk {
			doubleWithDiffResult, err := withDiff(test.this, diffFromResult)
			if err != nil {
				t.Errorf("%s: unexpected error applying diffFrom result with withDiff: %+v", test.name, err)
			} else if !collectionsEqual(doubleWithDiffResult, test.other) {
				t.Errorf("%s: withDiff of diffFrom result is expected to produce other. Want: %s, got: %s",
					test.name, test.other, doubleWithDiffResult)
			}
		}
	}
}

func collectionsEqual(this, other *mutableUTXODiff) bool {
	return reflect.DeepEqual(this.toAdd, other.toAdd) &&
		reflect.DeepEqual(this.toRemove, other.toRemove)
}

func TestUTXODiffReversed(t *testing.T) {
	txID0 := externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{1})
	outpoint0 := *externalapi.NewDomainOutpoint(txID0, 0)
	txID1 := externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{2})
	outpoint1 := *externalapi.NewDomainOutpoint(txID1, 1)

	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{1, 2, 3}, Version: 0}
	addedEntry := NewUTXOEntry(10, scriptPublicKey, false, 70)
	removedEntry := NewUTXOEntry(20, scriptPublicKey, true, 100)

	diff := &immutableUTXODiff{
		mutableUTXODiff: &mutableUTXODiff{
			toAdd:    utxoCollection{outpoint0: addedEntry},
			toRemove: utxoCollection{outpoint1: removedEntry},
		},
	}

	reversed := diff.Reversed().(*immutableUTXODiff)
	if !reflect.DeepEqual(reversed.mutableUTXODiff.toAdd, diff.mutableUTXODiff.toRemove) ||
		!reflect.DeepEqual(reversed.mutableUTXODiff.toRemove, diff.mutableUTXODiff.toAdd) {
		t.Fatalf("reversed diff is expected to swap toAdd and toRemove. Got: %s", reversed)
	}

	doubleReversed := reversed.Reversed().(*immutableUTXODiff)
	if !collectionsEqual(doubleReversed.mutableUTXODiff, diff.mutableUTXODiff) {
		t.Fatalf("double-reversed diff is expected to equal the original diff. Got: %s", doubleReversed)
	}
}

func TestImmutableReferenceInvalidation(t *testing.T) {
	mutableDiff := newMutableUTXODiff()
	immutableReference := mutableDiff.ToImmutable()

	err := mutableDiff.WithDiffInPlace(NewUTXODiff())
	if err != nil {
		t.Fatalf("unexpected WithDiffInPlace error: %+v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic when reading an invalidated immutable UTXO-diff reference")
		}
	}()
	immutableReference.ToAdd()
}
