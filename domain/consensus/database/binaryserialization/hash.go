package binaryserialization

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// SerializeHash serializes hash to a slice of bytes
func SerializeHash(hash *externalapi.DomainHash) []byte {
	return hash.ByteSlice()
}

// DeserializeHash deserializes a slice of bytes to a hash
func DeserializeHash(hashBytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

// SerializeHashes serializes a slice of hashes to a slice of bytes
func SerializeHashes(hashes []*externalapi.DomainHash) []byte {
	serialized := make([]byte, 8+externalapi.DomainHashSize*len(hashes))
	byteOrder.PutUint64(serialized[:8], uint64(len(hashes)))
	for i, hash := range hashes {
		start := 8 + externalapi.DomainHashSize*i
		copy(serialized[start:], hash.ByteSlice())
	}
	return serialized
}

// DeserializeHashes deserializes a slice of bytes to a slice of hashes
func DeserializeHashes(hashesBytes []byte) ([]*externalapi.DomainHash, error) {
	if len(hashesBytes) < 8 {
		return nil, errors.Errorf("serialized hashes are shorter than their length prefix")
	}
	length := byteOrder.Uint64(hashesBytes[:8])
	if uint64(len(hashesBytes)) != 8+length*externalapi.DomainHashSize {
		return nil, errors.Errorf("serialized hashes length is %d while expected length is %d",
			len(hashesBytes), 8+length*externalapi.DomainHashSize)
	}

	hashes := make([]*externalapi.DomainHash, length)
	for i := uint64(0); i < length; i++ {
		start := 8 + externalapi.DomainHashSize*i
		end := start + externalapi.DomainHashSize
		var err error
		hashes[i], err = externalapi.NewDomainHashFromByteSlice(hashesBytes[start:end])
		if err != nil {
			return nil, err
		}
	}

	return hashes, nil
}
