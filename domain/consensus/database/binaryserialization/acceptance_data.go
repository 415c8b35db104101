package binaryserialization

import (
	"bytes"
	"io"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
)

// SerializeAcceptanceData serializes the given acceptance data
func SerializeAcceptanceData(acceptanceData externalapi.AcceptanceData) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serialization.WriteElement(w, uint64(len(acceptanceData)))
	if err != nil {
		return nil, err
	}
	for _, blockAcceptanceData := range acceptanceData {
		err := serializeBlockAcceptanceData(w, blockAcceptanceData)
		if err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// DeserializeAcceptanceData deserializes the given slice of bytes to acceptance data
func DeserializeAcceptanceData(acceptanceDataBytes []byte) (externalapi.AcceptanceData, error) {
	r := bytes.NewReader(acceptanceDataBytes)

	var blockCount uint64
	err := serialization.ReadElement(r, &blockCount)
	if err != nil {
		return nil, err
	}
	acceptanceData := make(externalapi.AcceptanceData, blockCount)
	for i := uint64(0); i < blockCount; i++ {
		acceptanceData[i], err = deserializeBlockAcceptanceData(r)
		if err != nil {
			return nil, err
		}
	}

	return acceptanceData, nil
}

func serializeBlockAcceptanceData(w io.Writer, blockAcceptanceData *externalapi.BlockAcceptanceData) error {
	err := serialization.WriteElements(w,
		blockAcceptanceData.BlockHash, uint64(len(blockAcceptanceData.TransactionAcceptanceData)))
	if err != nil {
		return err
	}
	for _, transactionAcceptanceData := range blockAcceptanceData.TransactionAcceptanceData {
		err := serializeTransactionAcceptanceData(w, transactionAcceptanceData)
		if err != nil {
			return err
		}
	}
	return nil
}

func deserializeBlockAcceptanceData(r io.Reader) (*externalapi.BlockAcceptanceData, error) {
	blockHash, err := readHash(r)
	if err != nil {
		return nil, err
	}

	var transactionCount uint64
	err = serialization.ReadElement(r, &transactionCount)
	if err != nil {
		return nil, err
	}
	transactionAcceptanceData := make([]*externalapi.TransactionAcceptanceData, transactionCount)
	for i := uint64(0); i < transactionCount; i++ {
		transactionAcceptanceData[i], err = deserializeTransactionAcceptanceData(r)
		if err != nil {
			return nil, err
		}
	}

	return &externalapi.BlockAcceptanceData{
		BlockHash:                 blockHash,
		TransactionAcceptanceData: transactionAcceptanceData,
	}, nil
}

func serializeTransactionAcceptanceData(w io.Writer,
	transactionAcceptanceData *externalapi.TransactionAcceptanceData) error {

	err := serializeTransaction(w, transactionAcceptanceData.Transaction)
	if err != nil {
		return err
	}

	err = serialization.WriteElements(w,
		transactionAcceptanceData.Fee,
		transactionAcceptanceData.IsAccepted,
		uint64(len(transactionAcceptanceData.TransactionInputUTXOEntries)))
	if err != nil {
		return err
	}
	for _, utxoEntry := range transactionAcceptanceData.TransactionInputUTXOEntries {
		serializedUTXOEntry, err := utxo.SerializeUTXOEntry(utxoEntry)
		if err != nil {
			return err
		}
		err = serialization.WriteElement(w, serializedUTXOEntry)
		if err != nil {
			return err
		}
	}
	return nil
}

func deserializeTransactionAcceptanceData(r io.Reader) (*externalapi.TransactionAcceptanceData, error) {
	transaction, err := deserializeTransaction(r)
	if err != nil {
		return nil, err
	}

	transactionAcceptanceData := &externalapi.TransactionAcceptanceData{Transaction: transaction}
	err = serialization.ReadElements(r, &transactionAcceptanceData.Fee, &transactionAcceptanceData.IsAccepted)
	if err != nil {
		return nil, err
	}
	// The fee is a runtime field that the storage codec strips from the
	// transaction itself, so restore it from the acceptance data.
	transaction.Fee = transactionAcceptanceData.Fee

	var utxoEntryCount uint64
	err = serialization.ReadElement(r, &utxoEntryCount)
	if err != nil {
		return nil, err
	}
	transactionAcceptanceData.TransactionInputUTXOEntries = make([]externalapi.UTXOEntry, utxoEntryCount)
	for i := uint64(0); i < utxoEntryCount; i++ {
		serializedUTXOEntry, err := readByteSlice(r)
		if err != nil {
			return nil, err
		}
		transactionAcceptanceData.TransactionInputUTXOEntries[i], err =
			utxo.DeserializeUTXOEntry(serializedUTXOEntry)
		if err != nil {
			return nil, err
		}
	}

	return transactionAcceptanceData, nil
}
