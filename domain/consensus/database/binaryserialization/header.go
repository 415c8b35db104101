package binaryserialization

import (
	"bytes"
	"io"
	"math/big"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/blockheader"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
)

// SerializeHeader serializes the given block header
func SerializeHeader(header externalapi.BlockHeader) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serializeHeader(w, header)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DeserializeHeader deserializes the given slice of bytes to a block header
func DeserializeHeader(headerBytes []byte) (externalapi.BlockHeader, error) {
	return deserializeHeader(bytes.NewReader(headerBytes))
}

func serializeHeader(w io.Writer, header externalapi.BlockHeader) error {
	parents := header.Parents()
	err := serialization.WriteElements(w, header.Version(), uint64(len(parents)))
	if err != nil {
		return err
	}
	for _, blockLevelParents := range parents {
		err := serializeHashSlice(w, blockLevelParents)
		if err != nil {
			return err
		}
	}

	return serialization.WriteElements(w,
		header.HashMerkleRoot(),
		header.AcceptedIDMerkleRoot(),
		header.UTXOCommitment(),
		header.TimeInMilliseconds(),
		header.Bits(),
		header.Nonce(),
		header.DAAScore(),
		header.BlueScore(),
		header.BlueWork().Bytes(),
		header.PruningPoint())
}

func deserializeHeader(r io.Reader) (externalapi.BlockHeader, error) {
	var version uint16
	var parentLevelCount uint64
	err := serialization.ReadElements(r, &version, &parentLevelCount)
	if err != nil {
		return nil, err
	}
	parents := make([]externalapi.BlockLevelParents, parentLevelCount)
	for i := uint64(0); i < parentLevelCount; i++ {
		blockLevelParents, err := deserializeHashSlice(r)
		if err != nil {
			return nil, err
		}
		parents[i] = blockLevelParents
	}

	hashMerkleRoot, err := readHash(r)
	if err != nil {
		return nil, err
	}
	acceptedIDMerkleRoot, err := readHash(r)
	if err != nil {
		return nil, err
	}
	utxoCommitment, err := readHash(r)
	if err != nil {
		return nil, err
	}

	var timeInMilliseconds int64
	var bits uint32
	var nonce, daaScore, blueScore uint64
	err = serialization.ReadElements(r, &timeInMilliseconds, &bits, &nonce, &daaScore, &blueScore)
	if err != nil {
		return nil, err
	}

	blueWorkBytes, err := readByteSlice(r)
	if err != nil {
		return nil, err
	}

	pruningPoint, err := readHash(r)
	if err != nil {
		return nil, err
	}

	return blockheader.NewImmutableBlockHeader(
		version,
		parents,
		hashMerkleRoot,
		acceptedIDMerkleRoot,
		utxoCommitment,
		timeInMilliseconds,
		bits,
		nonce,
		daaScore,
		blueScore,
		new(big.Int).SetBytes(blueWorkBytes),
		pruningPoint,
	), nil
}
