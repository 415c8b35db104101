package externalapi

// Consensus maintains the current core state of the node
type Consensus interface {
	Init() error
	Shutdown()

	BuildBlock(coinbaseData *DomainCoinbaseData, transactions []*DomainTransaction) (*DomainBlock, error)
	ValidateAndInsertBlock(block *DomainBlock, updateVirtual bool) (*VirtualChangeSet, error)
	ValidateTransactionAndPopulateWithConsensusData(transaction *DomainTransaction) error

	GetBlock(blockHash *DomainHash) (*DomainBlock, error)
	GetBlockHeader(blockHash *DomainHash) (BlockHeader, error)
	GetBlockInfo(blockHash *DomainHash) (*BlockInfo, error)
	GetBlockAcceptanceData(blockHash *DomainHash) (AcceptanceData, error)
	GetBlockRelations(blockHash *DomainHash) (parents []*DomainHash, children []*DomainHash, err error)
	BlockDAAWindowHashes(blockHash *DomainHash) ([]*DomainHash, error)

	GetVirtualSelectedParent() (*DomainHash, error)
	GetVirtualSelectedParentChainFromBlock(blockHash *DomainHash) (*SelectedChainPath, error)
	GetVirtualInfo() (*VirtualInfo, error)
	GetVirtualDAAScore() (uint64, error)
	Tips() ([]*DomainHash, error)

	IsChainBlock(blockHash *DomainHash) (bool, error)
	IsInSelectedParentChainOf(blockHashA *DomainHash, blockHashB *DomainHash) (bool, error)

	PruningPoint() (*DomainHash, error)
	IsValidPruningPoint(blockHash *DomainHash) (bool, error)
}

// VirtualChangeCallback is invoked after every committed change to the
// virtual, with the change set that was committed. The callback is invoked
// outside the consensus lock, so it may call back into the Consensus.
type VirtualChangeCallback func(virtualChangeSet *VirtualChangeSet)
