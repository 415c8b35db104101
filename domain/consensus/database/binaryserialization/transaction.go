package binaryserialization

import (
	"io"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
)

// serializeTransaction serializes the given transaction for storage purposes.
// Runtime-only fields (fee, mass, UTXO entries) are not written.
func serializeTransaction(w io.Writer, transaction *externalapi.DomainTransaction) error {
	err := serialization.WriteElements(w, transaction.Version, uint64(len(transaction.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range transaction.Inputs {
		err := serializeTransactionInput(w, input)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, uint64(len(transaction.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range transaction.Outputs {
		err := serializeTransactionOutput(w, output)
		if err != nil {
			return err
		}
	}

	return serialization.WriteElements(w,
		transaction.LockTime, transaction.SubnetworkID, transaction.Gas, transaction.Payload)
}

func deserializeTransaction(r io.Reader) (*externalapi.DomainTransaction, error) {
	transaction := &externalapi.DomainTransaction{}
	var inputCount uint64
	err := serialization.ReadElements(r, &transaction.Version, &inputCount)
	if err != nil {
		return nil, err
	}

	transaction.Inputs = make([]*externalapi.DomainTransactionInput, inputCount)
	for i := uint64(0); i < inputCount; i++ {
		transaction.Inputs[i], err = deserializeTransactionInput(r)
		if err != nil {
			return nil, err
		}
	}

	var outputCount uint64
	err = serialization.ReadElement(r, &outputCount)
	if err != nil {
		return nil, err
	}
	transaction.Outputs = make([]*externalapi.DomainTransactionOutput, outputCount)
	for i := uint64(0); i < outputCount; i++ {
		transaction.Outputs[i], err = deserializeTransactionOutput(r)
		if err != nil {
			return nil, err
		}
	}

	err = serialization.ReadElement(r, &transaction.LockTime)
	if err != nil {
		return nil, err
	}

	_, err = io.ReadFull(r, transaction.SubnetworkID[:])
	if err != nil {
		return nil, err
	}

	err = serialization.ReadElement(r, &transaction.Gas)
	if err != nil {
		return nil, err
	}

	transaction.Payload, err = readByteSlice(r)
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

func serializeTransactionInput(w io.Writer, input *externalapi.DomainTransactionInput) error {
	return serialization.WriteElements(w,
		(*externalapi.DomainHash)(&input.PreviousOutpoint.TransactionID),
		input.PreviousOutpoint.Index, input.SignatureScript, input.Sequence)
}

func deserializeTransactionInput(r io.Reader) (*externalapi.DomainTransactionInput, error) {
	transactionIDHash, err := readHash(r)
	if err != nil {
		return nil, err
	}

	input := &externalapi.DomainTransactionInput{
		PreviousOutpoint: externalapi.DomainOutpoint{
			TransactionID: *(*externalapi.DomainTransactionID)(transactionIDHash),
		},
	}
	err = serialization.ReadElement(r, &input.PreviousOutpoint.Index)
	if err != nil {
		return nil, err
	}

	input.SignatureScript, err = readByteSlice(r)
	if err != nil {
		return nil, err
	}

	err = serialization.ReadElement(r, &input.Sequence)
	if err != nil {
		return nil, err
	}
	return input, nil
}

func serializeTransactionOutput(w io.Writer, output *externalapi.DomainTransactionOutput) error {
	return serialization.WriteElements(w,
		output.Value, output.ScriptPublicKey.Version, output.ScriptPublicKey.Script)
}

func deserializeTransactionOutput(r io.Reader) (*externalapi.DomainTransactionOutput, error) {
	output := &externalapi.DomainTransactionOutput{
		ScriptPublicKey: &externalapi.ScriptPublicKey{},
	}
	err := serialization.ReadElements(r, &output.Value, &output.ScriptPublicKey.Version)
	if err != nil {
		return nil, err
	}

	output.ScriptPublicKey.Script, err = readByteSlice(r)
	if err != nil {
		return nil, err
	}
	return output, nil
}
