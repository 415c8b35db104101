package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/infrastructure/os/signal"
	"github.com/cobaltnet/cobaltd/util/panics"
	"github.com/cobaltnet/cobaltd/util/profiling"
	"github.com/cobaltnet/cobaltd/version"
)

func main() {
	defer panics.HandlePanic(log, nil)
	interrupt := signal.InterruptListener()

	cfg, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	log.Infof("Version %s", version.Version())
	log.Infof("Simulating %d blocks over %s in %s", cfg.NumberOfBlocks, cfg.NetParams().Name, cfg.DataDir)

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	doneChan := make(chan struct{})
	spawn(func() {
		err := runSimulation(cfg)
		if err != nil {
			panic(errors.Wrap(err, "error in simulation"))
		}
		doneChan <- struct{}{}
	})

	select {
	case <-doneChan:
	case <-interrupt:
	}
}
