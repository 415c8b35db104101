package transactionid

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

// FromBytes creates a DomainTransactionID from the given byte slice
func FromBytes(transactionIDBytes []byte) (*externalapi.DomainTransactionID, error) {
	return externalapi.NewDomainTransactionIDFromByteSlice(transactionIDBytes)
}

// FromString creates a DomainTransactionID from the given string
func FromString(str string) (*externalapi.DomainTransactionID, error) {
	return externalapi.NewDomainTransactionIDFromString(str)
}

// Less returns true iff transaction ID a is less than transaction ID b
func Less(a, b *externalapi.DomainTransactionID) bool {
	return a.Less(b)
}
