package binaryserialization

import (
	"math/big"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/blockheader"
)

func TestSerializeGHOSTDAGData(t *testing.T) {
	selectedParent := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	blue := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	red := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})

	tests := []*model.BlockGHOSTDAGData{
		// Genesis-like data has no selected parent and an empty merge set
		model.NewBlockGHOSTDAGData(0, new(big.Int), nil, nil, nil,
			map[externalapi.DomainHash]model.KType{}),
		model.NewBlockGHOSTDAGData(100, big.NewInt(1234567890), selectedParent,
			[]*externalapi.DomainHash{selectedParent, blue},
			[]*externalapi.DomainHash{red},
			map[externalapi.DomainHash]model.KType{
				*selectedParent: 0,
				*blue:           1,
			}),
	}

	for i, ghostdagData := range tests {
		serialized, err := SerializeGHOSTDAGData(ghostdagData)
		if err != nil {
			t.Fatalf("SerializeGHOSTDAGData in test #%d unexpectedly failed: %s", i, err)
		}
		deserialized, err := DeserializeGHOSTDAGData(serialized)
		if err != nil {
			t.Fatalf("DeserializeGHOSTDAGData in test #%d unexpectedly failed: %s", i, err)
		}

		if deserialized.BlueScore() != ghostdagData.BlueScore() {
			t.Fatalf("test #%d: expected blue score %d but got %d",
				i, ghostdagData.BlueScore(), deserialized.BlueScore())
		}
		if deserialized.BlueWork().Cmp(ghostdagData.BlueWork()) != 0 {
			t.Fatalf("test #%d: expected blue work %s but got %s",
				i, ghostdagData.BlueWork(), deserialized.BlueWork())
		}
		if !deserialized.SelectedParent().Equal(ghostdagData.SelectedParent()) {
			t.Fatalf("test #%d: expected selected parent %s but got %s",
				i, ghostdagData.SelectedParent(), deserialized.SelectedParent())
		}
		if !externalapi.HashesEqual(deserialized.MergeSetBlues(), ghostdagData.MergeSetBlues()) {
			t.Fatalf("test #%d: merge set blues changed in serialization", i)
		}
		if !externalapi.HashesEqual(deserialized.MergeSetReds(), ghostdagData.MergeSetReds()) {
			t.Fatalf("test #%d: merge set reds changed in serialization", i)
		}
		if len(deserialized.BluesAnticoneSizes()) != len(ghostdagData.BluesAnticoneSizes()) {
			t.Fatalf("test #%d: blues anticone sizes changed in serialization", i)
		}
		for hash, anticoneSize := range ghostdagData.BluesAnticoneSizes() {
			if deserialized.BluesAnticoneSizes()[hash] != anticoneSize {
				t.Fatalf("test #%d: expected anticone size %d for %s but got %d",
					i, anticoneSize, hash, deserialized.BluesAnticoneSizes()[hash])
			}
		}
	}
}

func TestSerializeBlock(t *testing.T) {
	parentHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	merkleRoot := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	acceptedIDMerkleRoot := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})
	utxoCommitment := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{4})
	pruningPoint := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{5})
	txID := externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{6})

	header := blockheader.NewImmutableBlockHeader(
		1,
		[]externalapi.BlockLevelParents{{parentHash}},
		merkleRoot,
		acceptedIDMerkleRoot,
		utxoCommitment,
		1593528992000,
		0x207fffff,
		12345,
		100,
		200,
		big.NewInt(1000000),
		pruningPoint,
	)

	coinbase := &externalapi.DomainTransaction{
		Version:      0,
		Outputs:      []*externalapi.DomainTransactionOutput{},
		SubnetworkID: externalapi.DomainSubnetworkID{1},
		Payload:      []byte{0x01, 0x02, 0x03},
	}
	spendingTransaction := &externalapi.DomainTransaction{
		Version: 0,
		Inputs: []*externalapi.DomainTransactionInput{{
			PreviousOutpoint: *externalapi.NewDomainOutpoint(txID, 1),
			SignatureScript:  []byte{4, 5, 6},
			Sequence:         7,
		}},
		Outputs: []*externalapi.DomainTransactionOutput{{
			Value:           800,
			ScriptPublicKey: &externalapi.ScriptPublicKey{Script: []byte{9, 10}, Version: 0},
		}},
		LockTime:     11,
		SubnetworkID: externalapi.DomainSubnetworkID{},
		Payload:      []byte{},
	}
	block := &externalapi.DomainBlock{
		Header:       header,
		Transactions: []*externalapi.DomainTransaction{coinbase, spendingTransaction},
	}

	serialized, err := SerializeBlock(block)
	if err != nil {
		t.Fatalf("SerializeBlock unexpectedly failed: %s", err)
	}
	deserialized, err := DeserializeBlock(serialized)
	if err != nil {
		t.Fatalf("DeserializeBlock unexpectedly failed: %s", err)
	}

	if !deserialized.Equal(block) {
		t.Fatalf("the deserialized block is not equal to the original")
	}
}
