package externalapi

// DomainCoinbaseData contains data by which a coinbase transaction
// is built
type DomainCoinbaseData struct {
	ScriptPublicKey *ScriptPublicKey
	ExtraData       []byte
}

// Clone returns a clone of DomainCoinbaseData
func (dcd *DomainCoinbaseData) Clone() *DomainCoinbaseData {
	scriptPubKeyClone := make([]byte, len(dcd.ScriptPublicKey.Script))
	copy(scriptPubKeyClone, dcd.ScriptPublicKey.Script)

	extraDataClone := make([]byte, len(dcd.ExtraData))
	copy(extraDataClone, dcd.ExtraData)

	return &DomainCoinbaseData{
		ScriptPublicKey: &ScriptPublicKey{Script: scriptPubKeyClone, Version: dcd.ScriptPublicKey.Version},
		ExtraData:       extraDataClone,
	}
}
