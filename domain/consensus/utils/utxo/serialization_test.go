package utxo

import (
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionid"
)

// TestUTXOSerialization checks that a serialized UTXO deserializes back to the
// same outpoint and entry. The serialized form feeds the pruning point UTXO
// commitment, so any drift here would change commitment hashes.
func TestUTXOSerialization(t *testing.T) {
	txID, err := transactionid.FromString("c926ed9759bc53e29a6100ce6a9e1d9b5c559fd365f2f28f4c2615c9bdce7957")
	if err != nil {
		t.Fatalf("FromString: %+v", err)
	}
	outpoint := &externalapi.DomainOutpoint{
		TransactionID: *txID,
		Index:         3,
	}
	entry := NewUTXOEntry(
		1000000000,
		&externalapi.ScriptPublicKey{
			Script:  []byte{0xaa, 0x14, 0x01, 0x02, 0x03, 0x87},
			Version: constants.MaxScriptPublicKeyVersion,
		},
		true,
		500,
	)

	serialized, err := SerializeUTXO(entry, outpoint)
	if err != nil {
		t.Fatalf("SerializeUTXO: %+v", err)
	}

	deserializedEntry, deserializedOutpoint, err := DeserializeUTXO(serialized)
	if err != nil {
		t.Fatalf("DeserializeUTXO: %+v", err)
	}

	if !deserializedOutpoint.Equal(outpoint) {
		t.Errorf("deserialized outpoint doesn't match the original.\ngot: %s\nwant: %s",
			spew.Sdump(deserializedOutpoint), spew.Sdump(outpoint))
	}
	if !deserializedEntry.Equal(entry) {
		t.Errorf("deserialized entry doesn't match the original.\ngot: %s\nwant: %s",
			spew.Sdump(deserializedEntry), spew.Sdump(entry))
	}

	// The serialized form must be deterministic for the commitment multiset
	// to be reproducible.
	reserialized, err := SerializeUTXO(deserializedEntry, deserializedOutpoint)
	if err != nil {
		t.Fatalf("SerializeUTXO: %+v", err)
	}
	if string(reserialized) != string(serialized) {
		t.Errorf("reserializing a deserialized UTXO produced different bytes.\ngot: %x\nwant: %x",
			reserialized, serialized)
	}
}

func TestDeserializeUTXOErrors(t *testing.T) {
	entry := NewUTXOEntry(100, &externalapi.ScriptPublicKey{Script: []byte{0x51}, Version: 0}, false, 0)
	serialized, err := SerializeUTXO(entry, &externalapi.DomainOutpoint{Index: 0})
	if err != nil {
		t.Fatalf("SerializeUTXO: %+v", err)
	}

	// Truncations at every length must error rather than return garbage.
	for length := 0; length < len(serialized); length++ {
		_, _, err := DeserializeUTXO(serialized[:length])
		if err == nil {
			t.Fatalf("DeserializeUTXO unexpectedly succeeded on a %d-byte prefix", length)
		}
	}
}
