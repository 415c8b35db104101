package consensushashing

import (
	"io"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/hashes"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/subnetworks"
)

// txEncoding is a bitmask defining which transaction fields we
// want to encode and which to ignore.
type txEncoding uint8

const (
	txEncodingFull txEncoding = 0

	txEncodingExcludeSignatureScript = 1 << iota
)

// TransactionHash returns the transaction hash.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	// Encode the transaction and hash everything prior to the number of
	// transactions.
	writer := hashes.NewTransactionHashWriter()
	err := serializeTransaction(writer, tx, txEncodingFull)
	if err != nil {
		// this writer never returns errors (no allocations or possible failures) so errors can only
		// come from validity checks, and we assume we never construct malformed transactions.
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}

	return writer.Finalize()
}

// TransactionID generates the Hash for the transaction.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	// If transaction ID is already cached, return it
	if tx.ID != nil {
		return tx.ID
	}

	// Encode the transaction, replace signature script with zeroes, and hash the result.
	var encodingFlags txEncoding
	if tx.SubnetworkID != subnetworks.SubnetworkIDCoinbase {
		encodingFlags = txEncodingExcludeSignatureScript
	}
	writer := hashes.NewTransactionIDWriter()
	err := serializeTransaction(writer, tx, encodingFlags)
	if err != nil {
		// this writer never returns errors (no allocations or possible failures) so errors can only
		// come from validity checks, and we assume we never construct malformed transactions.
		panic(errors.Wrap(err, "TransactionID() failed. this should never fail for structurally-valid transactions"))
	}
	transactionID := externalapi.DomainTransactionID(*writer.Finalize())

	tx.ID = &transactionID

	return tx.ID
}

// TransactionIDs converts the provided slice of DomainTransactions to a corresponding slice of TransactionIDs
func TransactionIDs(txs []*externalapi.DomainTransaction) []*externalapi.DomainTransactionID {
	txIDs := make([]*externalapi.DomainTransactionID, len(txs))
	for i, tx := range txs {
		txIDs[i] = TransactionID(tx)
	}
	return txIDs
}

// TransactionHashForSigning hashes the transaction and the given hash type in a way that is intended for
// signatures.
func TransactionHashForSigning(tx *externalapi.DomainTransaction, hashType uint32) *externalapi.DomainHash {
	writer := hashes.NewTransactionSigningHashWriter()
	err := serializeTransaction(writer, tx, txEncodingFull)
	if err != nil {
		panic(errors.Wrap(err, "TransactionHashForSigning() failed. this should never fail for structurally-valid transactions"))
	}

	err = serialization.WriteElement(writer, hashType)
	if err != nil {
		panic(errors.Wrap(err, "TransactionHashForSigning() failed. this should never fail for structurally-valid transactions"))
	}

	return writer.Finalize()
}

func serializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, encodingFlags txEncoding) error {
	err := serialization.WriteElement(w, tx.Version)
	if err != nil {
		return err
	}

	count := uint64(len(tx.Inputs))
	err = serialization.WriteElement(w, count)
	if err != nil {
		return err
	}

	for _, input := range tx.Inputs {
		err = writeTransactionInput(w, input, encodingFlags)
		if err != nil {
			return err
		}
	}

	count = uint64(len(tx.Outputs))
	err = serialization.WriteElement(w, count)
	if err != nil {
		return err
	}

	for _, output := range tx.Outputs {
		err = writeTransactionOutput(w, output)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, tx.LockTime)
	if err != nil {
		return err
	}

	err = serialization.WriteElement(w, tx.SubnetworkID)
	if err != nil {
		return err
	}

	err = serialization.WriteElement(w, tx.Gas)
	if err != nil {
		return err
	}

	err = writeVarBytes(w, tx.Payload)
	if err != nil {
		return err
	}

	return nil
}

func writeTransactionInput(w io.Writer, input *externalapi.DomainTransactionInput, encodingFlags txEncoding) error {
	err := writeOutpoint(w, &input.PreviousOutpoint)
	if err != nil {
		return err
	}

	if encodingFlags&txEncodingExcludeSignatureScript != txEncodingExcludeSignatureScript {
		err = writeVarBytes(w, input.SignatureScript)
	} else {
		err = writeVarBytes(w, []byte{})
	}
	if err != nil {
		return err
	}

	return serialization.WriteElement(w, input.Sequence)
}

func writeOutpoint(w io.Writer, outpoint *externalapi.DomainOutpoint) error {
	_, err := w.Write(outpoint.TransactionID.ByteSlice())
	if err != nil {
		return err
	}

	return serialization.WriteElement(w, outpoint.Index)
}

func writeVarBytes(w io.Writer, data []byte) error {
	dataLength := uint64(len(data))
	err := serialization.WriteElement(w, dataLength)
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

func writeTransactionOutput(w io.Writer, output *externalapi.DomainTransactionOutput) error {
	err := serialization.WriteElement(w, output.Value)
	if err != nil {
		return err
	}

	err = serialization.WriteElement(w, output.ScriptPublicKey.Version)
	if err != nil {
		return err
	}

	return writeVarBytes(w, output.ScriptPublicKey.Script)
}
