package binaryserialization

import (
	"io"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
	"github.com/cobaltnet/cobaltd/util/binaryserializer"
)

// SerializeUTXOCollection serializes the given utxoCollection into the given writer
func SerializeUTXOCollection(writer io.Writer, utxoCollection externalapi.UTXOCollection) error {
	err := binaryserializer.PutUint64(writer, uint64(utxoCollection.Len()))
	if err != nil {
		return err
	}

	iterator := utxoCollection.Iterator()
	defer iterator.Close()
	for ok := iterator.First(); ok; ok = iterator.Next() {
		outpoint, entry, err := iterator.Get()
		if err != nil {
			return err
		}

		err = utxo.SerializeUTXOIntoWriter(writer, entry, outpoint)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeserializeUTXOCollection deserializes a utxoCollection from the given reader
func DeserializeUTXOCollection(reader io.Reader) (externalapi.UTXOCollection, error) {
	length, err := binaryserializer.Uint64(reader)
	if err != nil {
		return nil, err
	}

	utxoMap := make(map[externalapi.DomainOutpoint]externalapi.UTXOEntry, length)
	for i := uint64(0); i < length; i++ {
		entry, outpoint, err := utxo.DeserializeUTXOFromReader(reader)
		if err != nil {
			return nil, err
		}
		utxoMap[*outpoint] = entry
	}

	return utxo.NewUTXOCollection(utxoMap), nil
}
