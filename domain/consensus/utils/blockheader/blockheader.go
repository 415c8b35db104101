package blockheader

import (
	"math/big"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type blockHeader struct {
	version              uint16
	parents              []externalapi.BlockLevelParents
	hashMerkleRoot       *externalapi.DomainHash
	acceptedIDMerkleRoot *externalapi.DomainHash
	utxoCommitment       *externalapi.DomainHash
	timeInMilliseconds   int64
	bits                 uint32
	nonce                uint64
	daaScore             uint64
	blueScore            uint64
	blueWork             *big.Int
	pruningPoint         *externalapi.DomainHash
}

func (bh *blockHeader) ToImmutable() externalapi.BlockHeader {
	return bh.clone()
}

func (bh *blockHeader) SetNonce(nonce uint64) {
	bh.nonce = nonce
}

func (bh *blockHeader) SetTimeInMilliseconds(timeInMilliseconds int64) {
	bh.timeInMilliseconds = timeInMilliseconds
}

func (bh *blockHeader) SetHashMerkleRoot(hashMerkleRoot *externalapi.DomainHash) {
	bh.hashMerkleRoot = hashMerkleRoot
}

func (bh *blockHeader) Version() uint16 {
	return bh.version
}

func (bh *blockHeader) Parents() []externalapi.BlockLevelParents {
	return bh.parents
}

func (bh *blockHeader) DirectParents() externalapi.BlockLevelParents {
	if len(bh.parents) == 0 {
		return externalapi.BlockLevelParents{}
	}

	return bh.parents[0]
}

func (bh *blockHeader) HashMerkleRoot() *externalapi.DomainHash {
	return bh.hashMerkleRoot
}

func (bh *blockHeader) AcceptedIDMerkleRoot() *externalapi.DomainHash {
	return bh.acceptedIDMerkleRoot
}

func (bh *blockHeader) UTXOCommitment() *externalapi.DomainHash {
	return bh.utxoCommitment
}

func (bh *blockHeader) TimeInMilliseconds() int64 {
	return bh.timeInMilliseconds
}

func (bh *blockHeader) Bits() uint32 {
	return bh.bits
}

func (bh *blockHeader) Nonce() uint64 {
	return bh.nonce
}

func (bh *blockHeader) DAAScore() uint64 {
	return bh.daaScore
}

func (bh *blockHeader) BlueScore() uint64 {
	return bh.blueScore
}

func (bh *blockHeader) BlueWork() *big.Int {
	return bh.blueWork
}

func (bh *blockHeader) PruningPoint() *externalapi.DomainHash {
	return bh.pruningPoint
}

// Equal returns whether bh equals to other
func (bh *blockHeader) Equal(other externalapi.BaseBlockHeader) bool {
	if bh == nil || other == nil {
		return externalapi.BaseBlockHeader(bh) == other
	}

	// If only the underlying value of other is nil it'll
	// make `other == nil` return false, so we check it
	// explicitly.
	downcastedOther := other.(*blockHeader)
	if downcastedOther == nil {
		return false
	}

	if bh.version != downcastedOther.version {
		return false
	}
	if !externalapi.ParentsEqual(bh.parents, downcastedOther.parents) {
		return false
	}
	if !bh.hashMerkleRoot.Equal(downcastedOther.hashMerkleRoot) {
		return false
	}
	if !bh.acceptedIDMerkleRoot.Equal(downcastedOther.acceptedIDMerkleRoot) {
		return false
	}
	if !bh.utxoCommitment.Equal(downcastedOther.utxoCommitment) {
		return false
	}
	if bh.timeInMilliseconds != downcastedOther.timeInMilliseconds {
		return false
	}
	if bh.bits != downcastedOther.bits {
		return false
	}
	if bh.nonce != downcastedOther.nonce {
		return false
	}
	if bh.daaScore != downcastedOther.daaScore {
		return false
	}
	if bh.blueScore != downcastedOther.blueScore {
		return false
	}
	if bh.blueWork.Cmp(downcastedOther.blueWork) != 0 {
		return false
	}
	if !bh.pruningPoint.Equal(downcastedOther.pruningPoint) {
		return false
	}

	return true
}

func (bh *blockHeader) clone() *blockHeader {
	return &blockHeader{
		version:              bh.version,
		parents:              externalapi.CloneParents(bh.parents),
		hashMerkleRoot:       bh.hashMerkleRoot,
		acceptedIDMerkleRoot: bh.acceptedIDMerkleRoot,
		utxoCommitment:       bh.utxoCommitment,
		timeInMilliseconds:   bh.timeInMilliseconds,
		bits:                 bh.bits,
		nonce:                bh.nonce,
		daaScore:             bh.daaScore,
		blueScore:            bh.blueScore,
		blueWork:             bh.blueWork,
		pruningPoint:         bh.pruningPoint,
	}
}

func (bh *blockHeader) ToMutable() externalapi.MutableBlockHeader {
	return bh.clone()
}

// NewImmutableBlockHeader returns a new immutable block header
func NewImmutableBlockHeader(
	version uint16,
	parents []externalapi.BlockLevelParents,
	hashMerkleRoot *externalapi.DomainHash,
	acceptedIDMerkleRoot *externalapi.DomainHash,
	utxoCommitment *externalapi.DomainHash,
	timeInMilliseconds int64,
	bits uint32,
	nonce uint64,
	daaScore uint64,
	blueScore uint64,
	blueWork *big.Int,
	pruningPoint *externalapi.DomainHash) externalapi.BlockHeader {

	return &blockHeader{
		version:              version,
		parents:              parents,
		hashMerkleRoot:       hashMerkleRoot,
		acceptedIDMerkleRoot: acceptedIDMerkleRoot,
		utxoCommitment:       utxoCommitment,
		timeInMilliseconds:   timeInMilliseconds,
		bits:                 bits,
		nonce:                nonce,
		daaScore:             daaScore,
		blueScore:            blueScore,
		blueWork:             blueWork,
		pruningPoint:         pruningPoint,
	}
}
