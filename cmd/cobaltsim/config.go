package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/infrastructure/config"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/cobaltnet/cobaltd/version"
)

const (
	defaultLogFilename    = "cobaltsim.log"
	defaultErrLogFilename = "cobaltsim_err.log"

	defaultNumberOfBlocks = 1000
	defaultMaxBlockWidth  = 4
	maxMaxBlockWidth      = 16
)

type configFlags struct {
	ShowVersion    bool   `short:"V" long:"version" description:"Display version information and exit"`
	DataDir        string `short:"b" long:"datadir" description:"Directory to keep the simulation database and logs in. A fresh temporary directory is used when omitted."`
	NumberOfBlocks uint64 `short:"n" long:"numblocks" description:"Number of blocks to simulate"`
	MaxBlockWidth  uint64 `long:"max-width" description:"Maximum number of sibling blocks built over the same state in a single round"`
	Seed           uint64 `long:"seed" description:"Seed for the random number generator. A fixed seed replays the same DAG."`
	LogLevel       string `short:"d" long:"loglevel" description:"Set log level {trace, debug, info, warn, error, critical}"`
	Profile        string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	config.NetworkFlags
}

func parseConfig() (*configFlags, error) {
	cfg := &configFlags{
		NumberOfBlocks: defaultNumberOfBlocks,
		MaxBlockWidth:  defaultMaxBlockWidth,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	// The simulation solves blocks with real nonces, so it needs a network
	// whose difficulty is trivial.
	if !cfg.Simnet && !cfg.Devnet {
		return nil, errors.New("the simulation requires --simnet or --devnet")
	}

	if cfg.NumberOfBlocks == 0 {
		return nil, errors.New("--numblocks must be at least 1")
	}
	if cfg.MaxBlockWidth == 0 || cfg.MaxBlockWidth > maxMaxBlockWidth {
		return nil, errors.Errorf("--max-width must be between 1 and %d", maxMaxBlockWidth)
	}

	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.New("The profile port must be between 1024 and 65535")
		}
	}

	if cfg.DataDir == "" {
		cfg.DataDir, err = ioutil.TempDir("", "cobaltsim")
		if err != nil {
			return nil, err
		}
	}

	logger.InitLog(filepath.Join(cfg.DataDir, defaultLogFilename), filepath.Join(cfg.DataDir, defaultErrLogFilename))
	if cfg.LogLevel != "" {
		err = logger.ParseAndSetLogLevels(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
