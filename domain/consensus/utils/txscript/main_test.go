package txscript

import (
	"os"
	"testing"

	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

func TestMain(m *testing.M) {
	// set log level to trace, so that trace-guarded disassembly paths are covered
	log.SetLevel(logger.LevelTrace)

	os.Exit(m.Run())
}
