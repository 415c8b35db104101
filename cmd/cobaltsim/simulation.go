package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain"
	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
	"github.com/cobaltnet/cobaltd/infrastructure/db/database/ldb"
	"github.com/cobaltnet/cobaltd/util/difficulty"
)

const (
	leveldbCacheSizeMiB = 100
	reportInterval      = 100
)

func runSimulation(cfg *configFlags) error {
	db, err := ldb.NewLevelDB(filepath.Join(cfg.DataDir, "db"), leveldbCacheSizeMiB)
	if err != nil {
		return err
	}
	defer db.Close()

	consensusConfig := &consensus.Config{Params: *cfg.NetParams()}
	dom, err := domain.New(consensusConfig, db, nil)
	if err != nil {
		return err
	}
	defer dom.Shutdown()
	cons := dom.Consensus()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	log.Infof("Using random seed %d", seed)
	rng := rand.New(rand.NewSource(int64(seed)))

	coinbaseScript, err := txscript.PayToScriptHashScript([]byte{txscript.OpTrue})
	if err != nil {
		return err
	}
	coinbaseData := &externalapi.DomainCoinbaseData{
		ScriptPublicKey: &externalapi.ScriptPublicKey{
			Script:  coinbaseScript,
			Version: constants.MaxScriptPublicKeyVersion,
		},
	}

	lastPruningPoint, err := cons.PruningPoint()
	if err != nil {
		return err
	}

	startTime := time.Now()
	totalBuilt := uint64(0)
	nextReport := uint64(reportInterval)
	for totalBuilt < cfg.NumberOfBlocks {
		width := uint64(1 + rng.Intn(int(cfg.MaxBlockWidth)))
		if remaining := cfg.NumberOfBlocks - totalBuilt; width > remaining {
			width = remaining
		}

		// Build the whole round before inserting anything, so all blocks in
		// the round point at the same tips and widen the DAG.
		blocks := make([]*externalapi.DomainBlock, 0, width)
		for i := uint64(0); i < width; i++ {
			coinbaseData.ExtraData = []byte(fmt.Sprintf("cobaltsim/%d", totalBuilt+i))
			block, err := cons.BuildBlock(coinbaseData, nil)
			if err != nil {
				return errors.Wrapf(err, "error building block %d", totalBuilt+i)
			}
			solveBlock(rng, block)
			blocks = append(blocks, block)
		}

		for _, block := range blocks {
			_, err := cons.ValidateAndInsertBlock(block, true)
			if err != nil {
				return errors.Wrapf(err, "error inserting block %s",
					consensushashing.BlockHash(block))
			}
		}
		totalBuilt += width

		lastPruningPoint, err = reportProgress(cons, totalBuilt, &nextReport, lastPruningPoint)
		if err != nil {
			return err
		}
	}

	return logSummary(cons, totalBuilt, time.Since(startTime))
}

// solveBlock is the same nonce scan miners run, only against the trivial
// difficulty of the simulation networks, so it returns after a few attempts.
func solveBlock(rng *rand.Rand, block *externalapi.DomainBlock) {
	targetDifficulty := difficulty.CompactToBig(block.Header.Bits())
	headerForMining := block.Header.ToMutable()
	initialNonce := rng.Uint64()
	for i := initialNonce; i != initialNonce-1; i++ {
		headerForMining.SetNonce(i)

		hash := consensushashing.HeaderHash(headerForMining)
		if difficulty.HashToBig(hash).Cmp(targetDifficulty) <= 0 {
			block.Header = headerForMining.ToImmutable()
			return
		}
	}

	panic("went over all the nonce space and couldn't find a single one that gives a valid block")
}

func reportProgress(cons externalapi.Consensus, totalBuilt uint64, nextReport *uint64,
	lastPruningPoint *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	pruningPoint, err := cons.PruningPoint()
	if err != nil {
		return nil, err
	}
	if !pruningPoint.Equal(lastPruningPoint) {
		log.Infof("Pruning point moved from %s to %s", lastPruningPoint, pruningPoint)
	}

	if totalBuilt >= *nextReport {
		*nextReport += reportInterval
		virtualInfo, err := cons.GetVirtualInfo()
		if err != nil {
			return nil, err
		}
		tips, err := cons.Tips()
		if err != nil {
			return nil, err
		}
		log.Infof("Built %d blocks. Virtual DAA score: %d, blue score: %d, tips: %d",
			totalBuilt, virtualInfo.DAAScore, virtualInfo.BlueScore, len(tips))
	}

	return pruningPoint, nil
}

func logSummary(cons externalapi.Consensus, totalBuilt uint64, elapsed time.Duration) error {
	selectedParent, err := cons.GetVirtualSelectedParent()
	if err != nil {
		return err
	}
	virtualInfo, err := cons.GetVirtualInfo()
	if err != nil {
		return err
	}
	pruningPoint, err := cons.PruningPoint()
	if err != nil {
		return err
	}

	log.Infof("Simulated %d blocks in %s", totalBuilt, elapsed)
	log.Infof("Virtual selected parent: %s", selectedParent)
	log.Infof("Virtual DAA score: %d, blue score: %d", virtualInfo.DAAScore, virtualInfo.BlueScore)
	log.Infof("Pruning point: %s", pruningPoint)
	return nil
}
