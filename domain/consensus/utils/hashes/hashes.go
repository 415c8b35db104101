package hashes

const (
	transcationHashDomain    = "TransactionHash"
	transcationIDDomain      = "TransactionID"
	transcationSigningDomain = "TransactionSigningHash"
	blockDomain              = "BlockHash"
	merkleBranchDomain       = "MerkleBranchHash"
)
