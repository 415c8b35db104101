package externalapi

// VirtualInfo represents information about the virtual block needed by external components
type VirtualInfo struct {
	ParentHashes   []*DomainHash
	Bits           uint32
	PastMedianTime int64
	BlueScore      uint64
	DAAScore       uint64
}

// SelectedChainPath is a path the of the selected chains between two blocks.
type SelectedChainPath struct {
	Added   []*DomainHash
	Removed []*DomainHash
}

// VirtualChangeSet is auxiliary data describing how the virtual
// changed following the insertion of a block: the selected-chain
// delta and the UTXO delta of the virtual UTXO set.
type VirtualChangeSet struct {
	VirtualSelectedParentChainChanges *SelectedChainPath
	VirtualUTXODiff                   UTXODiff
	VirtualParents                    []*DomainHash
}
