package binaryserialization

import (
	"bytes"
	"io"
	"math/big"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
)

// SerializeGHOSTDAGData serializes the given BlockGHOSTDAGData
func SerializeGHOSTDAGData(ghostdagData *model.BlockGHOSTDAGData) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serialization.WriteElements(w,
		ghostdagData.BlueScore(), ghostdagData.BlueWork().Bytes())
	if err != nil {
		return nil, err
	}

	err = serializeNullableHash(w, ghostdagData.SelectedParent())
	if err != nil {
		return nil, err
	}

	err = serializeHashSlice(w, ghostdagData.MergeSetBlues())
	if err != nil {
		return nil, err
	}

	err = serializeHashSlice(w, ghostdagData.MergeSetReds())
	if err != nil {
		return nil, err
	}

	// Blues are written in merge set order so the serialization is canonical
	bluesAnticoneSizes := ghostdagData.BluesAnticoneSizes()
	orderedBlues := make([]*externalapi.DomainHash, 0, len(bluesAnticoneSizes))
	for _, blue := range ghostdagData.MergeSetBlues() {
		if _, ok := bluesAnticoneSizes[*blue]; ok {
			orderedBlues = append(orderedBlues, blue)
		}
	}
	err = serialization.WriteElement(w, uint64(len(orderedBlues)))
	if err != nil {
		return nil, err
	}
	for _, blue := range orderedBlues {
		err := serialization.WriteElements(w, blue, uint8(bluesAnticoneSizes[*blue]))
		if err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// DeserializeGHOSTDAGData deserializes the given slice of bytes to BlockGHOSTDAGData
func DeserializeGHOSTDAGData(ghostdagDataBytes []byte) (*model.BlockGHOSTDAGData, error) {
	r := bytes.NewReader(ghostdagDataBytes)

	var blueScore uint64
	err := serialization.ReadElement(r, &blueScore)
	if err != nil {
		return nil, err
	}

	blueWorkBytes, err := readByteSlice(r)
	if err != nil {
		return nil, err
	}
	blueWork := new(big.Int).SetBytes(blueWorkBytes)

	selectedParent, err := deserializeNullableHash(r)
	if err != nil {
		return nil, err
	}

	mergeSetBlues, err := deserializeHashSlice(r)
	if err != nil {
		return nil, err
	}

	mergeSetReds, err := deserializeHashSlice(r)
	if err != nil {
		return nil, err
	}

	var bluesAnticoneSizesLen uint64
	err = serialization.ReadElement(r, &bluesAnticoneSizesLen)
	if err != nil {
		return nil, err
	}
	bluesAnticoneSizes := make(map[externalapi.DomainHash]model.KType, bluesAnticoneSizesLen)
	for i := uint64(0); i < bluesAnticoneSizesLen; i++ {
		hash, err := readHash(r)
		if err != nil {
			return nil, err
		}
		var anticoneSize uint8
		err = serialization.ReadElement(r, &anticoneSize)
		if err != nil {
			return nil, err
		}
		bluesAnticoneSizes[*hash] = model.KType(anticoneSize)
	}

	return model.NewBlockGHOSTDAGData(
		blueScore, blueWork, selectedParent, mergeSetBlues, mergeSetReds, bluesAnticoneSizes), nil
}

func serializeNullableHash(w io.Writer, hash *externalapi.DomainHash) error {
	err := serialization.WriteElement(w, hash != nil)
	if err != nil {
		return err
	}
	if hash != nil {
		return serialization.WriteElement(w, hash)
	}
	return nil
}

func deserializeNullableHash(r io.Reader) (*externalapi.DomainHash, error) {
	var exists bool
	err := serialization.ReadElement(r, &exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return readHash(r)
}

func serializeHashSlice(w io.Writer, hashes []*externalapi.DomainHash) error {
	err := serialization.WriteElement(w, uint64(len(hashes)))
	if err != nil {
		return err
	}
	for _, hash := range hashes {
		err := serialization.WriteElement(w, hash)
		if err != nil {
			return err
		}
	}
	return nil
}

func deserializeHashSlice(r io.Reader) ([]*externalapi.DomainHash, error) {
	var length uint64
	err := serialization.ReadElement(r, &length)
	if err != nil {
		return nil, err
	}
	hashes := make([]*externalapi.DomainHash, length)
	for i := uint64(0); i < length; i++ {
		hashes[i], err = readHash(r)
		if err != nil {
			return nil, err
		}
	}
	return hashes, nil
}

func readHash(r io.Reader) (*externalapi.DomainHash, error) {
	var hashBytes [externalapi.DomainHashSize]byte
	_, err := io.ReadFull(r, hashBytes[:])
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteArray(&hashBytes), nil
}

func readByteSlice(r io.Reader) ([]byte, error) {
	var length uint64
	err := serialization.ReadElement(r, &length)
	if err != nil {
		return nil, err
	}
	data := make([]byte, length)
	_, err = io.ReadFull(r, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
