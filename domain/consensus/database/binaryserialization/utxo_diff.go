package binaryserialization

import (
	"bytes"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
)

// SerializeUTXODiff serializes the given UTXODiff
func SerializeUTXODiff(diff externalapi.UTXODiff) ([]byte, error) {
	w := &bytes.Buffer{}

	err := SerializeUTXOCollection(w, diff.ToAdd())
	if err != nil {
		return nil, err
	}

	err = SerializeUTXOCollection(w, diff.ToRemove())
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeUTXODiff deserializes the given slice of bytes to UTXODiff
func DeserializeUTXODiff(diffBytes []byte) (externalapi.UTXODiff, error) {
	r := bytes.NewReader(diffBytes)

	toAdd, err := DeserializeUTXOCollection(r)
	if err != nil {
		return nil, err
	}

	toRemove, err := DeserializeUTXOCollection(r)
	if err != nil {
		return nil, err
	}

	return utxo.NewUTXODiffFromCollections(toAdd, toRemove)
}
