package transactionhelper

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/subnetworks"
)

// CoinbaseTransactionIndex is the index of the coinbase transaction in every block
const CoinbaseTransactionIndex = 0

// IsCoinBase determines whether or not a transaction is a coinbase transaction. A coinbase
// transaction is a special transaction created by miners that distributes fees and block subsidy
// to the previous blocks' miners, and specifies the scriptPublicKey that will be used to pay the current
// miner in future blocks.
func IsCoinBase(tx *externalapi.DomainTransaction) bool {
	// A coinbase transaction must have subnetwork id SubnetworkIDCoinbase
	return tx.SubnetworkID == subnetworks.SubnetworkIDCoinbase
}

// NewSubnetworkTransaction returns a new transaction in the specified subnetwork with specified gas and payload
func NewSubnetworkTransaction(version uint16, inputs []*externalapi.DomainTransactionInput,
	outputs []*externalapi.DomainTransactionOutput, subnetworkID *externalapi.DomainSubnetworkID,
	gas uint64, payload []byte) *externalapi.DomainTransaction {

	return &externalapi.DomainTransaction{
		Version:      version,
		Inputs:       inputs,
		Outputs:      outputs,
		LockTime:     0,
		SubnetworkID: *subnetworkID,
		Gas:          gas,
		Payload:      payload,
		Fee:          0,
		Mass:         0,
	}
}

// NewNativeTransaction returns a new native transaction
func NewNativeTransaction(version uint16, inputs []*externalapi.DomainTransactionInput,
	outputs []*externalapi.DomainTransactionOutput) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		Version:      version,
		Inputs:       inputs,
		Outputs:      outputs,
		LockTime:     0,
		SubnetworkID: subnetworks.SubnetworkIDNative,
		Gas:          0,
		Payload:      []byte{},
		Fee:          0,
		Mass:         0,
	}
}
