package consensushashing_test

import (
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/subnetworks"
)

func testTransaction() *externalapi.DomainTransaction {
	previousTransactionID, err := externalapi.NewDomainTransactionIDFromString(
		"59b3d6dc6cdc660c389c3fdb5704c48c598d279cdf1bab54182db586a4c95dd5")
	if err != nil {
		panic(err)
	}

	return &externalapi.DomainTransaction{
		Version: 0,
		Inputs: []*externalapi.DomainTransactionInput{
			{
				PreviousOutpoint: *externalapi.NewDomainOutpoint(previousTransactionID, 2),
				SignatureScript:  []byte{1, 2},
				Sequence:         7,
			},
		},
		Outputs: []*externalapi.DomainTransactionOutput{
			{
				Value: 1564,
				ScriptPublicKey: &externalapi.ScriptPublicKey{
					Script:  []byte{1, 2, 3, 4, 5},
					Version: 0,
				},
			},
		},
		LockTime:     54,
		SubnetworkID: subnetworks.SubnetworkIDNative,
		Gas:          0,
		Payload:      []byte{},
	}
}

func TestTransactionIDIgnoresSignatureScript(t *testing.T) {
	transaction := testTransaction()
	transactionID := *consensushashing.TransactionID(transaction)

	malleated := testTransaction()
	malleated.Inputs[0].SignatureScript = []byte{0xde, 0xad, 0xbe, 0xef}
	malleatedID := *consensushashing.TransactionID(malleated)

	if !transactionID.Equal(&malleatedID) {
		t.Fatalf("expected the transaction ID to not cover the signature script, but "+
			"%s != %s", transactionID, malleatedID)
	}

	transactionHash := consensushashing.TransactionHash(transaction)
	malleatedHash := consensushashing.TransactionHash(malleated)
	if transactionHash.Equal(malleatedHash) {
		t.Fatalf("expected the transaction hash to cover the signature script")
	}
}

func TestTransactionIDCoversCoinbasePayload(t *testing.T) {
	coinbase := testTransaction()
	coinbase.Inputs = nil
	coinbase.SubnetworkID = subnetworks.SubnetworkIDCoinbase
	coinbase.Payload = []byte{1, 2, 3}
	coinbaseID := *consensushashing.TransactionID(coinbase)

	otherCoinbase := testTransaction()
	otherCoinbase.Inputs = nil
	otherCoinbase.SubnetworkID = subnetworks.SubnetworkIDCoinbase
	otherCoinbase.Payload = []byte{1, 2, 4}
	otherCoinbaseID := *consensushashing.TransactionID(otherCoinbase)

	if coinbaseID.Equal(&otherCoinbaseID) {
		t.Fatalf("expected coinbase transactions with different payloads to have different IDs")
	}
}

func TestTransactionIDIsCached(t *testing.T) {
	transaction := testTransaction()
	transactionID := consensushashing.TransactionID(transaction)

	if transaction.ID != transactionID {
		t.Fatalf("expected the transaction ID to be cached on the transaction")
	}

	cachedID := consensushashing.TransactionID(transaction)
	if cachedID != transactionID {
		t.Fatalf("expected repeated TransactionID calls to return the cached ID")
	}
}

func TestTransactionHashDomainSeparation(t *testing.T) {
	transaction := testTransaction()
	transactionHash := consensushashing.TransactionHash(transaction)
	transactionID := consensushashing.TransactionID(transaction)

	if transactionHash.Equal((*externalapi.DomainHash)(transactionID)) {
		t.Fatalf("expected the transaction hash and the transaction ID to use " +
			"separate hash domains")
	}
}
