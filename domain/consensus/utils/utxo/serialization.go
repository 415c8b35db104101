package utxo

import (
	"bytes"
	"io"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionid"
	"github.com/pkg/errors"
)

// SerializeUTXO returns the byte-slice representation for given UTXOEntry-outpoint pair
func SerializeUTXO(entry externalapi.UTXOEntry, outpoint *externalapi.DomainOutpoint) ([]byte, error) {
	w := &bytes.Buffer{}

	err := SerializeUTXOIntoWriter(w, entry, outpoint)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// SerializeUTXOIntoWriter serializes the given UTXOEntry-outpoint pair into the given writer
func SerializeUTXOIntoWriter(w io.Writer, entry externalapi.UTXOEntry, outpoint *externalapi.DomainOutpoint) error {
	err := serializeOutpoint(w, outpoint)
	if err != nil {
		return err
	}

	err = serializeUTXOEntry(w, entry)
	if err != nil {
		return err
	}

	return nil
}

// DeserializeUTXO deserializes the given byte slice to UTXOEntry-outpoint pair
func DeserializeUTXO(utxoBytes []byte) (entry externalapi.UTXOEntry, outpoint *externalapi.DomainOutpoint, err error) {
	return DeserializeUTXOFromReader(bytes.NewReader(utxoBytes))
}

// DeserializeUTXOFromReader deserializes a UTXOEntry-outpoint pair from the given reader
func DeserializeUTXOFromReader(r io.Reader) (entry externalapi.UTXOEntry, outpoint *externalapi.DomainOutpoint, err error) {
	outpoint, err = deserializeOutpoint(r)
	if err != nil {
		return nil, nil, err
	}

	entry, err = deserializeUTXOEntry(r)
	if err != nil {
		return nil, nil, err
	}

	return entry, outpoint, nil
}

// SerializeOutpoint returns the byte-slice representation for given outpoint
func SerializeOutpoint(outpoint *externalapi.DomainOutpoint) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serializeOutpoint(w, outpoint)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeOutpoint deserializes the given byte slice to an outpoint
func DeserializeOutpoint(outpointBytes []byte) (*externalapi.DomainOutpoint, error) {
	return deserializeOutpoint(bytes.NewReader(outpointBytes))
}

// SerializeUTXOEntry returns the byte-slice representation for given UTXOEntry
func SerializeUTXOEntry(entry externalapi.UTXOEntry) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serializeUTXOEntry(w, entry)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeUTXOEntry deserializes the given byte slice to a UTXOEntry
func DeserializeUTXOEntry(entryBytes []byte) (externalapi.UTXOEntry, error) {
	return deserializeUTXOEntry(bytes.NewReader(entryBytes))
}

func serializeOutpoint(w io.Writer, outpoint *externalapi.DomainOutpoint) error {
	_, err := w.Write(outpoint.TransactionID.ByteSlice())
	if err != nil {
		return errors.WithStack(err)
	}

	return serialization.WriteElement(w, outpoint.Index)
}

func deserializeOutpoint(r io.Reader) (*externalapi.DomainOutpoint, error) {
	transactionIDBytes := make([]byte, externalapi.DomainHashSize)
	_, err := io.ReadFull(r, transactionIDBytes)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	transactionID, err := transactionid.FromBytes(transactionIDBytes)
	if err != nil {
		return nil, err
	}

	var index uint32
	err = serialization.ReadElement(r, &index)
	if err != nil {
		return nil, err
	}

	return &externalapi.DomainOutpoint{
		TransactionID: *transactionID,
		Index:         index,
	}, nil
}

func serializeUTXOEntry(w io.Writer, entry externalapi.UTXOEntry) error {
	err := serialization.WriteElements(w, entry.BlockDAAScore(), entry.Amount(), entry.ScriptPublicKey().Version, entry.IsCoinbase())
	if err != nil {
		return err
	}

	count := uint64(len(entry.ScriptPublicKey().Script))
	err = serialization.WriteElement(w, count)
	if err != nil {
		return err
	}

	_, err = w.Write(entry.ScriptPublicKey().Script)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func deserializeUTXOEntry(r io.Reader) (externalapi.UTXOEntry, error) {
	var blockDAAScore uint64
	var amount uint64
	var version uint16
	var isCoinbase bool
	err := serialization.ReadElements(r, &blockDAAScore, &amount, &version, &isCoinbase)
	if err != nil {
		return nil, err
	}

	var scriptPublicKeyLength uint64
	err = serialization.ReadElement(r, &scriptPublicKeyLength)
	if err != nil {
		return nil, err
	}

	scriptPublicKeyScript := make([]byte, scriptPublicKeyLength)
	_, err = io.ReadFull(r, scriptPublicKeyScript)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	scriptPublicKey := externalapi.ScriptPublicKey{Script: scriptPublicKeyScript, Version: version}
	return NewUTXOEntry(amount, &scriptPublicKey, isCoinbase, blockDAAScore), nil
}
