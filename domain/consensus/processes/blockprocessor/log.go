package blockprocessor

import (
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
