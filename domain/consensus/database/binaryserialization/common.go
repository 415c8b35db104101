package binaryserialization

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var byteOrder = binary.LittleEndian

// SerializeUint64 serializes a uint64
func SerializeUint64(value uint64) []byte {
	var valueBytes [8]byte
	byteOrder.PutUint64(valueBytes[:], value)
	return valueBytes[:]
}

// DeserializeUint64 deserializes a slice of bytes to a uint64
func DeserializeUint64(valueBytes []byte) (uint64, error) {
	if len(valueBytes) != 8 {
		return 0, errors.Errorf("the given value is %d bytes so it cannot be deserialized into uint64",
			len(valueBytes))
	}
	return byteOrder.Uint64(valueBytes), nil
}
