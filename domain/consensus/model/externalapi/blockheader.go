package externalapi

import "math/big"

// BaseBlockHeader contains the block header fields
type BaseBlockHeader interface {
	Version() uint16
	Parents() []BlockLevelParents
	DirectParents() BlockLevelParents
	HashMerkleRoot() *DomainHash
	AcceptedIDMerkleRoot() *DomainHash
	UTXOCommitment() *DomainHash
	TimeInMilliseconds() int64
	Bits() uint32
	Nonce() uint64
	DAAScore() uint64
	BlueScore() uint64
	BlueWork() *big.Int
	PruningPoint() *DomainHash
	Equal(other BaseBlockHeader) bool
}

// BlockHeader represents an immutable block header.
type BlockHeader interface {
	BaseBlockHeader
	ToMutable() MutableBlockHeader
}

// MutableBlockHeader represents a block header that can have its fields mutated.
type MutableBlockHeader interface {
	BaseBlockHeader
	ToImmutable() BlockHeader
	SetNonce(nonce uint64)
	SetTimeInMilliseconds(timeInMilliseconds int64)
	SetHashMerkleRoot(hashMerkleRoot *DomainHash)
}
