package binaryserialization

import (
	"bytes"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
)

// SerializeBlock serializes the given block, header included
func SerializeBlock(block *externalapi.DomainBlock) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serializeHeader(w, block.Header)
	if err != nil {
		return nil, err
	}

	err = serialization.WriteElement(w, uint64(len(block.Transactions)))
	if err != nil {
		return nil, err
	}
	for _, transaction := range block.Transactions {
		err := serializeTransaction(w, transaction)
		if err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// DeserializeBlock deserializes the given slice of bytes to a block
func DeserializeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	r := bytes.NewReader(blockBytes)

	header, err := deserializeHeader(r)
	if err != nil {
		return nil, err
	}

	var transactionCount uint64
	err = serialization.ReadElement(r, &transactionCount)
	if err != nil {
		return nil, err
	}
	transactions := make([]*externalapi.DomainTransaction, transactionCount)
	for i := uint64(0); i < transactionCount; i++ {
		transactions[i], err = deserializeTransaction(r)
		if err != nil {
			return nil, err
		}
	}

	return &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactions,
	}, nil
}
