package merkle

import (
	"math"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/hashes"
)

// nextPowerOfTwo returns the next highest power of two from a given number if
// it is not already a power of two. This is a helper function used during the
// calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	// Return the number if it's already a power of 2.
	if n&(n-1) == 0 {
		return n
	}

	// Figure out and return the next power of two.
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent // 2^exponent
}

// hashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation. This is a helper
// function used to aid in the generation of a merkle tree.
func hashMerkleBranches(left *externalapi.DomainHash, right *externalapi.DomainHash) *externalapi.DomainHash {
	// Concatenate the left and right nodes.
	w := hashes.NewMerkleBranchHashWriter()

	w.InfallibleWrite(left.ByteSlice())
	w.InfallibleWrite(right.ByteSlice())

	return w.Finalize()
}

// CalculateHashMerkleRoot calculates the merkle root of a tree consisted of the given transaction hashes.
// See `merkleRoot` for more info.
func CalculateHashMerkleRoot(transactions []*externalapi.DomainTransaction) *externalapi.DomainHash {
	txHashes := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		txHashes[i] = consensushashing.TransactionHash(tx)
	}
	return merkleRoot(txHashes)
}

// CalculateIDMerkleRoot calculates the merkle root of a tree consisted of the given transaction IDs.
// See `merkleRoot` for more info.
func CalculateIDMerkleRoot(transactions []*externalapi.DomainTransaction) *externalapi.DomainHash {
	if len(transactions) == 0 {
		return externalapi.NewZeroHash()
	}

	transactionIDs := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		transactionIDs[i] = (*externalapi.DomainHash)(consensushashing.TransactionID(tx))
	}
	return merkleRoot(transactionIDs)
}

// CalculateAcceptedIDMerkleRoot calculates the accepted ID merkle root of a block:
// the merkle root over the IDs of the transactions the block accepts from its merge
// set, folded together with the accepted ID merkle root of its selected parent. The
// fold makes the commitment cover the accepted transactions of the entire selected
// chain, so a header alone suffices to prove acceptance of any historical transaction.
func CalculateAcceptedIDMerkleRoot(selectedParentAcceptedIDMerkleRoot *externalapi.DomainHash,
	acceptedTransactions []*externalapi.DomainTransaction) *externalapi.DomainHash {

	return hashMerkleBranches(selectedParentAcceptedIDMerkleRoot, CalculateIDMerkleRoot(acceptedTransactions))
}

// merkleRoot creates a merkle tree from a slice of hashes, and returns its root.
//
// The tree is stored as a linear array. A root of an empty tree is a zero-hash,
// a missing right child is replaced by a zero-hash when its parent is calculated.
func merkleRoot(hashes []*externalapi.DomainHash) *externalapi.DomainHash {
	// Calculate how many entries are required to hold the binary merkle
	// tree as a linear array and create an array of that size.
	nextPoT := nextPowerOfTwo(len(hashes))
	arraySize := nextPoT*2 - 1
	merkles := make([]*externalapi.DomainHash, arraySize)

	// Create the base transaction hashes and populate the array with them.
	copy(merkles, hashes)

	// Start the array offset after the last transaction and adjusted to the
	// offset required for the next power of two.
	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		// When there is no left child node, the parent is nil too.
		case merkles[i] == nil:
			merkles[offset] = nil

		// When there is no right child, the parent is generated by
		// hashing the concatenation of the left child with zeros.
		case merkles[i+1] == nil:
			newHash := hashMerkleBranches(merkles[i], externalapi.NewZeroHash())
			merkles[offset] = newHash

		// The normal case sets the parent node to the hash
		// of the concatenation of the left and right children.
		default:
			newHash := hashMerkleBranches(merkles[i], merkles[i+1])
			merkles[offset] = newHash
		}
		offset++
	}

	return merkles[arraySize-1]
}
