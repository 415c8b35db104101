package binaryserialization

import (
	"bytes"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
)

// SerializeBlockRelations serializes the given BlockRelations
func SerializeBlockRelations(blockRelations *model.BlockRelations) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serializeHashSlice(w, blockRelations.Parents)
	if err != nil {
		return nil, err
	}

	err = serializeHashSlice(w, blockRelations.Children)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeBlockRelations deserializes the given slice of bytes to BlockRelations
func DeserializeBlockRelations(blockRelationsBytes []byte) (*model.BlockRelations, error) {
	r := bytes.NewReader(blockRelationsBytes)

	parents, err := deserializeHashSlice(r)
	if err != nil {
		return nil, err
	}

	children, err := deserializeHashSlice(r)
	if err != nil {
		return nil, err
	}

	return &model.BlockRelations{
		Parents:  parents,
		Children: children,
	}, nil
}
