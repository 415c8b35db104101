// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
)

// CobaltNet represents which cobalt network a block belongs to.
type CobaltNet uint32

// Constants used to indicate the cobalt network.
const (
	// Mainnet represents the main cobalt network.
	Mainnet CobaltNet = 0x2cd1ba4f

	// Testnet represents the public test network.
	Testnet CobaltNet = 0x8e32d049

	// Simnet represents the simulation test network.
	Simnet CobaltNet = 0x50d3f4c1

	// Devnet represents the development test network.
	Devnet CobaltNet = 0x6a9c1e83
)

var bnStrings = map[CobaltNet]string{
	Mainnet: "Mainnet",
	Testnet: "Testnet",
	Simnet:  "Simnet",
	Devnet:  "Devnet",
}

// String returns the CobaltNet in human-readable form.
func (n CobaltNet) String() string {
	if s, ok := bnStrings[n]; ok {
		return s
	}
	return "Unknown CobaltNet"
}

// These variables are the DAG proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowMax is the highest proof of work value a cobalt block can
	// have for the main network. It is the value 2^255 - 1.
	mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// testnetPowMax is the highest proof of work value a cobalt block
	// can have for the test network. It is the value 2^239 - 1.
	testnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 239), bigOne)

	// simnetPowMax is the highest proof of work value a cobalt block
	// can have for the simulation test network. It is the value 2^255 - 1.
	simnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

	// devnetPowMax is the highest proof of work value a cobalt block
	// can have for the development network. It is the value 2^239 - 1.
	devnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 239), bigOne)
)

const (
	defaultGHOSTDAGK                        = 18
	defaultMergeSetSizeLimit                = defaultGHOSTDAGK * 10
	defaultMaxBlockParents                  = 10
	defaultDifficultyAdjustmentWindowSize   = 2641
	defaultTimestampDeviationTolerance      = 132
	defaultFinalityDuration                 = 24 * time.Hour
	defaultTargetTimePerBlock               = 1 * time.Second
	defaultBaseSubsidy                      = 50 * constants.AtomPerCobalt
	defaultMaxBlockMass                     = 500_000
	defaultMassPerTxByte                    = 1
	defaultMassPerScriptPubKeyByte          = 10
	defaultMassPerSigOp                     = 1000
	defaultMaxCoinbasePayloadLength         = 204
	defaultCoinbasePayloadScriptPublicKeyMaxLength = 150
)

// Params defines a cobalt network by its parameters. These parameters may be
// used by cobalt applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// K defines the K parameter for GHOSTDAG consensus algorithm.
	// See ghostdag.go for further details.
	K model.KType

	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net CobaltNet

	// RPCPort defines the rpc server port
	RPCPort string

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// GenesisBlock defines the first block of the DAG.
	GenesisBlock *externalapi.DomainBlock

	// GenesisHash is the starting block hash.
	GenesisHash *externalapi.DomainHash

	// PowMax defines the highest allowed proof of work value for a block
	// as a uint256.
	PowMax *big.Int

	// BlockCoinbaseMaturity is the number of blocks required before newly mined
	// coins can be spent.
	BlockCoinbaseMaturity uint64

	// BaseSubsidy is the starting subsidy amount for mined blocks.
	BaseSubsidy uint64

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// FinalityDuration is the duration of the finality window.
	FinalityDuration time.Duration

	// TimestampDeviationTolerance is the maximum offset a block timestamp
	// is allowed to be in the future before it gets delayed
	TimestampDeviationTolerance uint64

	// DifficultyAdjustmentWindowSize is the size of window that is inspected
	// to calculate the required difficulty of each block.
	DifficultyAdjustmentWindowSize int

	// DisableDifficultyAdjustment determine whether to use difficulty
	DisableDifficultyAdjustment bool

	// MaxBlockParents is the maximum number of blocks a block is allowed to point to
	MaxBlockParents model.KType

	// MergeSetSizeLimit is the maximum number of blocks in a block's merge set
	MergeSetSizeLimit uint64

	// MaxBlockMass is the maximum mass a block is allowed
	MaxBlockMass uint64

	// MassPerTxByte is the number of grams that any byte
	// adds to a transaction.
	MassPerTxByte uint64

	// MassPerScriptPubKeyByte is the number of grams that any
	// scriptPubKey byte adds to a transaction.
	MassPerScriptPubKeyByte uint64

	// MassPerSigOp is the number of grams that any
	// signature operation adds to a transaction.
	MassPerSigOp uint64

	// MaxCoinbasePayloadLength is the maximum length in bytes allowed for a block's coinbase's payload
	MaxCoinbasePayloadLength uint64

	// CoinbasePayloadScriptPublicKeyMaxLength is the maximum allowed script public key in the coinbase's payload
	CoinbasePayloadScriptPublicKeyMaxLength uint8

	// EnableNonNativeSubnetworks enables non-native/coinbase transactions
	EnableNonNativeSubnetworks bool

	// SkipProofOfWork indicates whether proof of work should be checked.
	SkipProofOfWork bool
}

// FinalityDepth returns the finality duration represented in blocks
func (p *Params) FinalityDepth() uint64 {
	return uint64(p.FinalityDuration / p.TargetTimePerBlock)
}

// PruningDepth returns the pruning duration represented in blocks
func (p *Params) PruningDepth() uint64 {
	return 2*p.FinalityDepth() + 4*p.MergeSetSizeLimit*uint64(p.K) + 2*uint64(p.K) + 2
}

// MainnetParams defines the network parameters for the main cobalt network.
var MainnetParams = Params{
	K:           defaultGHOSTDAGK,
	Name:        "cobalt-mainnet",
	Net:         Mainnet,
	RPCPort:     "22110",
	DefaultPort: "22111",

	// DAG parameters
	GenesisBlock:                   &genesisBlock,
	GenesisHash:                    genesisHash,
	PowMax:                         mainPowMax,
	BlockCoinbaseMaturity:          100,
	BaseSubsidy:                    defaultBaseSubsidy,
	TargetTimePerBlock:             defaultTargetTimePerBlock,
	FinalityDuration:               defaultFinalityDuration,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	DisableDifficultyAdjustment:    false,

	MaxBlockParents:   defaultMaxBlockParents,
	MergeSetSizeLimit: defaultMergeSetSizeLimit,

	MaxBlockMass:            defaultMaxBlockMass,
	MassPerTxByte:           defaultMassPerTxByte,
	MassPerScriptPubKeyByte: defaultMassPerScriptPubKeyByte,
	MassPerSigOp:            defaultMassPerSigOp,

	MaxCoinbasePayloadLength:                defaultMaxCoinbasePayloadLength,
	CoinbasePayloadScriptPublicKeyMaxLength: defaultCoinbasePayloadScriptPublicKeyMaxLength,

	// EnableNonNativeSubnetworks enables non-native/coinbase transactions
	EnableNonNativeSubnetworks: false,
}

// TestnetParams defines the network parameters for the test cobalt network.
var TestnetParams = Params{
	K:           defaultGHOSTDAGK,
	Name:        "cobalt-testnet",
	Net:         Testnet,
	RPCPort:     "22210",
	DefaultPort: "22211",

	// DAG parameters
	GenesisBlock:                   &testnetGenesisBlock,
	GenesisHash:                    testnetGenesisHash,
	PowMax:                         testnetPowMax,
	BlockCoinbaseMaturity:          100,
	BaseSubsidy:                    defaultBaseSubsidy,
	TargetTimePerBlock:             defaultTargetTimePerBlock,
	FinalityDuration:               defaultFinalityDuration,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	DisableDifficultyAdjustment:    false,

	MaxBlockParents:   defaultMaxBlockParents,
	MergeSetSizeLimit: defaultMergeSetSizeLimit,

	MaxBlockMass:            defaultMaxBlockMass,
	MassPerTxByte:           defaultMassPerTxByte,
	MassPerScriptPubKeyByte: defaultMassPerScriptPubKeyByte,
	MassPerSigOp:            defaultMassPerSigOp,

	MaxCoinbasePayloadLength:                defaultMaxCoinbasePayloadLength,
	CoinbasePayloadScriptPublicKeyMaxLength: defaultCoinbasePayloadScriptPublicKeyMaxLength,

	// EnableNonNativeSubnetworks enables non-native/coinbase transactions
	EnableNonNativeSubnetworks: false,
}

// SimnetParams defines the network parameters for the simulation test cobalt
// network. This network is similar to the normal test network except it is
// intended for private use within a group of individuals doing simulation
// testing. The functionality is intended to differ in that the only nodes
// which are specifically specified are used to create the network rather than
// following normal discovery rules. This is important as otherwise it would
// just turn into another public testnet.
var SimnetParams = Params{
	K:           defaultGHOSTDAGK,
	Name:        "cobalt-simnet",
	Net:         Simnet,
	RPCPort:     "22510",
	DefaultPort: "22511",

	// DAG parameters
	GenesisBlock:                   &simnetGenesisBlock,
	GenesisHash:                    simnetGenesisHash,
	PowMax:                         simnetPowMax,
	BlockCoinbaseMaturity:          100,
	BaseSubsidy:                    defaultBaseSubsidy,
	TargetTimePerBlock:             time.Millisecond,
	FinalityDuration:               time.Minute,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	DisableDifficultyAdjustment:    true,

	MaxBlockParents:   defaultMaxBlockParents,
	MergeSetSizeLimit: defaultMergeSetSizeLimit,

	MaxBlockMass:            defaultMaxBlockMass,
	MassPerTxByte:           defaultMassPerTxByte,
	MassPerScriptPubKeyByte: defaultMassPerScriptPubKeyByte,
	MassPerSigOp:            defaultMassPerSigOp,

	MaxCoinbasePayloadLength:                defaultMaxCoinbasePayloadLength,
	CoinbasePayloadScriptPublicKeyMaxLength: defaultCoinbasePayloadScriptPublicKeyMaxLength,

	// EnableNonNativeSubnetworks enables non-native/coinbase transactions
	EnableNonNativeSubnetworks: false,
}

// DevnetParams defines the network parameters for the development cobalt network.
var DevnetParams = Params{
	K:           defaultGHOSTDAGK,
	Name:        "cobalt-devnet",
	Net:         Devnet,
	RPCPort:     "22610",
	DefaultPort: "22611",

	// DAG parameters
	GenesisBlock:                   &devnetGenesisBlock,
	GenesisHash:                    devnetGenesisHash,
	PowMax:                         devnetPowMax,
	BlockCoinbaseMaturity:          100,
	BaseSubsidy:                    defaultBaseSubsidy,
	TargetTimePerBlock:             defaultTargetTimePerBlock,
	FinalityDuration:               defaultFinalityDuration,
	TimestampDeviationTolerance:    defaultTimestampDeviationTolerance,
	DifficultyAdjustmentWindowSize: defaultDifficultyAdjustmentWindowSize,
	DisableDifficultyAdjustment:    false,

	MaxBlockParents:   defaultMaxBlockParents,
	MergeSetSizeLimit: defaultMergeSetSizeLimit,

	MaxBlockMass:            defaultMaxBlockMass,
	MassPerTxByte:           defaultMassPerTxByte,
	MassPerScriptPubKeyByte: defaultMassPerScriptPubKeyByte,
	MassPerSigOp:            defaultMassPerSigOp,

	MaxCoinbasePayloadLength:                defaultMaxCoinbasePayloadLength,
	CoinbasePayloadScriptPublicKeyMaxLength: defaultCoinbasePayloadScriptPublicKeyMaxLength,

	// EnableNonNativeSubnetworks enables non-native/coinbase transactions
	EnableNonNativeSubnetworks: false,
}

// ErrDuplicateNet describes an error where the parameters for a cobalt
// network could not be set due to the network already being a standard
// network or previously-registered into this package.
var ErrDuplicateNet = errors.New("duplicate cobalt network")

var registeredNets = make(map[CobaltNet]struct{})

// Register registers the network parameters for a cobalt network. This may
// error with ErrDuplicateNet if the network is already registered (either
// due to a previous Register call, or the network being one of the default
// networks).
//
// Network parameters should be registered into this package by a main package
// as early as possible. Then, library packages may lookup networks or network
// parameters based on inputs and work regardless of the network being standard
// or not.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = struct{}{}

	return nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&SimnetParams)
	mustRegister(&DevnetParams)
}
