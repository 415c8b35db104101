package consensus

import "github.com/cobaltnet/cobaltd/domain/dagconfig"

// Config is the full config required to run consensus
type Config struct {
	dagconfig.Params
	// IsArchival tells the consensus if it should not prune old blocks
	IsArchival bool
	// EnableSanityCheckPruningUTXOSet checks the full pruning point utxo set
	// against the commitment at every pruning point movement
	EnableSanityCheckPruningUTXOSet bool
}
