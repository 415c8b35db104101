package coinbasemanager

import (
	"encoding/binary"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

const uint64Len = 8
const uint16Len = 2
const lengthOfScriptPubKeyLength = 1

var payloadMinLength = uint64Len + uint16Len + lengthOfScriptPubKeyLength

// serializeCoinbasePayload builds the coinbase payload based on the provided scriptPublicKey and extra data.
func (c *coinbaseManager) serializeCoinbasePayload(
	blueScore uint64, coinbaseData *externalapi.DomainCoinbaseData) ([]byte, error) {

	scriptLengthOfScriptPubKey := len(coinbaseData.ScriptPublicKey.Script)
	if scriptLengthOfScriptPubKey > int(c.coinbasePayloadScriptPublicKeyMaxLength) {
		return nil, errors.Wrapf(ruleerrors.ErrBadCoinbasePayloadLen, "coinbase's payload script public key is "+
			"longer than the max allowed length of %d", c.coinbasePayloadScriptPublicKeyMaxLength)
	}

	payload := make([]byte, payloadMinLength+scriptLengthOfScriptPubKey+len(coinbaseData.ExtraData))
	binary.LittleEndian.PutUint64(payload[:uint64Len], blueScore)
	binary.LittleEndian.PutUint16(payload[uint64Len:], coinbaseData.ScriptPublicKey.Version)
	payload[uint64Len+uint16Len] = uint8(scriptLengthOfScriptPubKey)
	copy(payload[uint64Len+uint16Len+lengthOfScriptPubKeyLength:], coinbaseData.ScriptPublicKey.Script)
	copy(payload[uint64Len+uint16Len+lengthOfScriptPubKeyLength+scriptLengthOfScriptPubKey:], coinbaseData.ExtraData)

	return payload, nil
}

// ExtractCoinbaseDataAndBlueScore deserializes the coinbase payload to its component
// (scriptPublicKey, extra data, and blue score).
func (c *coinbaseManager) ExtractCoinbaseDataAndBlueScore(coinbaseTx *externalapi.DomainTransaction) (
	blueScore uint64, coinbaseData *externalapi.DomainCoinbaseData, err error) {

	if len(coinbaseTx.Payload) < payloadMinLength {
		return 0, nil, errors.Wrapf(ruleerrors.ErrBadCoinbasePayloadLen,
			"coinbase payload is less than the minimum length of %d", payloadMinLength)
	}

	blueScore = binary.LittleEndian.Uint64(coinbaseTx.Payload[:uint64Len])
	scriptPubKeyVersion := binary.LittleEndian.Uint16(coinbaseTx.Payload[uint64Len : uint64Len+uint16Len])
	scriptPubKeyScriptLength := coinbaseTx.Payload[uint64Len+uint16Len]

	if scriptPubKeyScriptLength > c.coinbasePayloadScriptPublicKeyMaxLength {
		return 0, nil, errors.Wrapf(ruleerrors.ErrBadCoinbasePayloadLen, "coinbase's payload script public key is "+
			"longer than the max allowed length of %d", c.coinbasePayloadScriptPublicKeyMaxLength)
	}

	if len(coinbaseTx.Payload) < payloadMinLength+int(scriptPubKeyScriptLength) {
		return 0, nil, errors.Wrapf(ruleerrors.ErrBadCoinbasePayloadLen,
			"coinbase payload doesn't have enough bytes to contain a script public key of %d bytes",
			scriptPubKeyScriptLength)
	}
	scriptPubKeyScript := coinbaseTx.Payload[uint64Len+uint16Len+lengthOfScriptPubKeyLength : uint64Len+uint16Len+lengthOfScriptPubKeyLength+int(scriptPubKeyScriptLength)]

	return blueScore, &externalapi.DomainCoinbaseData{
		ScriptPublicKey: &externalapi.ScriptPublicKey{
			Script:  scriptPubKeyScript,
			Version: scriptPubKeyVersion,
		},
		ExtraData: coinbaseTx.Payload[uint64Len+uint16Len+lengthOfScriptPubKeyLength+int(scriptPubKeyScriptLength):],
	}, nil
}
