package binaryserialization

import (
	"bytes"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/reachabilitydata"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/serialization"
)

// SerializeReachabilityData serializes the given ReachabilityData
func SerializeReachabilityData(reachabilityData model.ReachabilityData) ([]byte, error) {
	w := &bytes.Buffer{}

	err := serializeHashSlice(w, reachabilityData.Children())
	if err != nil {
		return nil, err
	}

	err = serializeNullableHash(w, reachabilityData.Parent())
	if err != nil {
		return nil, err
	}

	interval := reachabilityData.Interval()
	err = serialization.WriteElements(w, interval.Start, interval.End)
	if err != nil {
		return nil, err
	}

	err = serializeHashSlice(w, reachabilityData.FutureCoveringSet())
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DeserializeReachabilityData deserializes the given slice of bytes to ReachabilityData
func DeserializeReachabilityData(reachabilityDataBytes []byte) (model.ReachabilityData, error) {
	r := bytes.NewReader(reachabilityDataBytes)

	children, err := deserializeHashSlice(r)
	if err != nil {
		return nil, err
	}

	parent, err := deserializeNullableHash(r)
	if err != nil {
		return nil, err
	}

	interval := &model.ReachabilityInterval{}
	err = serialization.ReadElements(r, &interval.Start, &interval.End)
	if err != nil {
		return nil, err
	}

	futureCoveringSet, err := deserializeHashSlice(r)
	if err != nil {
		return nil, err
	}

	return reachabilitydata.New(children, parent, interval, futureCoveringSet), nil
}
