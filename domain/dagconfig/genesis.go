// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"math/big"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/blockheader"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/merkle"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/multiset"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/subnetworks"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionhelper"
)

// genesisUTXOCommitment is the UTXO commitment every genesis block carries.
// The UTXO set is empty at genesis, so this is the hash of an empty multiset.
var genesisUTXOCommitment = multiset.New().Hash()

var genesisTxOuts = []*externalapi.DomainTransactionOutput{}

var genesisTxPayload = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Blue score
	0x00, 0x00, // Script version
	0x01, // Varint
	0x00, // OP-FALSE
}

// genesisCoinbaseTx is the coinbase transaction for the genesis blocks for
// the main network.
var genesisCoinbaseTx = transactionhelper.NewSubnetworkTransaction(0, []*externalapi.DomainTransactionInput{},
	genesisTxOuts, &subnetworks.SubnetworkIDCoinbase, 0, genesisTxPayload)

// genesisMerkleRoot is the hash of the first transaction in the genesis block
// for the main network.
var genesisMerkleRoot = merkle.CalculateHashMerkleRoot([]*externalapi.DomainTransaction{genesisCoinbaseTx})

// genesisBlock defines the genesis block of the block DAG which serves as the
// public transaction ledger for the main network.
var genesisBlock = externalapi.DomainBlock{
	Header: blockheader.NewImmutableBlockHeader(
		0,
		[]externalapi.BlockLevelParents{},
		genesisMerkleRoot,
		&externalapi.DomainHash{},
		genesisUTXOCommitment,
		0x18328caf245,
		0x1e7fffff,
		0x33a74,
		0,
		0,
		big.NewInt(0),
		&externalapi.DomainHash{},
	),
	Transactions: []*externalapi.DomainTransaction{genesisCoinbaseTx},
}

// genesisHash is the hash of the first block in the block DAG for the main
// network (genesis block). It is derived from the genesis block itself so
// that the two can never fall out of sync.
var genesisHash = consensushashing.BlockHash(&genesisBlock)

var devnetGenesisTxOuts = []*externalapi.DomainTransactionOutput{}

var devnetGenesisTxPayload = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Blue score
	0x00, 0x00, // Script version
	0x01, // Varint
	0x00, // OP-FALSE
	0x63, 0x6f, 0x62, 0x61, 0x6c, 0x74, 0x2d, 0x64, 0x65, 0x76, 0x6e, 0x65, 0x74, // cobalt-devnet
}

// devnetGenesisCoinbaseTx is the coinbase transaction for the genesis blocks for
// the development network.
var devnetGenesisCoinbaseTx = transactionhelper.NewSubnetworkTransaction(0,
	[]*externalapi.DomainTransactionInput{}, devnetGenesisTxOuts,
	&subnetworks.SubnetworkIDCoinbase, 0, devnetGenesisTxPayload)

// devnetGenesisMerkleRoot is the hash of the first transaction in the genesis block
// for the development network.
var devnetGenesisMerkleRoot = merkle.CalculateHashMerkleRoot(
	[]*externalapi.DomainTransaction{devnetGenesisCoinbaseTx})

// devnetGenesisBlock defines the genesis block of the block DAG which serves as the
// public transaction ledger for the development network.
var devnetGenesisBlock = externalapi.DomainBlock{
	Header: blockheader.NewImmutableBlockHeader(
		0,
		[]externalapi.BlockLevelParents{},
		devnetGenesisMerkleRoot,
		&externalapi.DomainHash{},
		genesisUTXOCommitment,
		0x18328cb5123,
		0x1e7fffff,
		0x48e5e,
		0,
		0,
		big.NewInt(0),
		&externalapi.DomainHash{},
	),
	Transactions: []*externalapi.DomainTransaction{devnetGenesisCoinbaseTx},
}

// devnetGenesisHash is the hash of the first block in the block DAG for the
// development network (genesis block).
var devnetGenesisHash = consensushashing.BlockHash(&devnetGenesisBlock)

var simnetGenesisTxOuts = []*externalapi.DomainTransactionOutput{}

var simnetGenesisTxPayload = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Blue score
	0x00, 0x00, // Script version
	0x01, // Varint
	0x00, // OP-FALSE
	0x63, 0x6f, 0x62, 0x61, 0x6c, 0x74, 0x2d, 0x73, 0x69, 0x6d, 0x6e, 0x65, 0x74, // cobalt-simnet
}

// simnetGenesisCoinbaseTx is the coinbase transaction for the simnet genesis block.
var simnetGenesisCoinbaseTx = transactionhelper.NewSubnetworkTransaction(0,
	[]*externalapi.DomainTransactionInput{}, simnetGenesisTxOuts,
	&subnetworks.SubnetworkIDCoinbase, 0, simnetGenesisTxPayload)

// simnetGenesisMerkleRoot is the hash of the first transaction in the genesis block
// for the simulation network.
var simnetGenesisMerkleRoot = merkle.CalculateHashMerkleRoot(
	[]*externalapi.DomainTransaction{simnetGenesisCoinbaseTx})

// simnetGenesisBlock defines the genesis block of the block DAG which serves as the
// public transaction ledger for the simulation network.
var simnetGenesisBlock = externalapi.DomainBlock{
	Header: blockheader.NewImmutableBlockHeader(
		0,
		[]externalapi.BlockLevelParents{},
		simnetGenesisMerkleRoot,
		&externalapi.DomainHash{},
		genesisUTXOCommitment,
		0x18328cb9001,
		0x207fffff,
		0x2,
		0,
		0,
		big.NewInt(0),
		&externalapi.DomainHash{},
	),
	Transactions: []*externalapi.DomainTransaction{simnetGenesisCoinbaseTx},
}

// simnetGenesisHash is the hash of the first block in the block DAG for
// the simnet (genesis block).
var simnetGenesisHash = consensushashing.BlockHash(&simnetGenesisBlock)

var testnetGenesisTxOuts = []*externalapi.DomainTransactionOutput{}

var testnetGenesisTxPayload = []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // Blue score
	0x00, 0x00, // Script version
	0x01, // Varint
	0x00, // OP-FALSE
	0x63, 0x6f, 0x62, 0x61, 0x6c, 0x74, 0x2d, 0x74, 0x65, 0x73, 0x74, 0x6e, 0x65, 0x74, // cobalt-testnet
}

// testnetGenesisCoinbaseTx is the coinbase transaction for the testnet genesis block.
var testnetGenesisCoinbaseTx = transactionhelper.NewSubnetworkTransaction(0,
	[]*externalapi.DomainTransactionInput{}, testnetGenesisTxOuts,
	&subnetworks.SubnetworkIDCoinbase, 0, testnetGenesisTxPayload)

// testnetGenesisMerkleRoot is the hash of the first transaction in the genesis block
// for testnet.
var testnetGenesisMerkleRoot = merkle.CalculateHashMerkleRoot(
	[]*externalapi.DomainTransaction{testnetGenesisCoinbaseTx})

// testnetGenesisBlock defines the genesis block of the block DAG which serves as the
// public transaction ledger for testnet.
var testnetGenesisBlock = externalapi.DomainBlock{
	Header: blockheader.NewImmutableBlockHeader(
		0,
		[]externalapi.BlockLevelParents{},
		testnetGenesisMerkleRoot,
		&externalapi.DomainHash{},
		genesisUTXOCommitment,
		0x18328cbcfa7,
		0x1e7fffff,
		0x2bf95,
		0,
		0,
		big.NewInt(0),
		&externalapi.DomainHash{},
	),
	Transactions: []*externalapi.DomainTransaction{testnetGenesisCoinbaseTx},
}

// testnetGenesisHash is the hash of the first block in the block DAG for the test
// network (genesis block).
var testnetGenesisHash = consensushashing.BlockHash(&testnetGenesisBlock)
