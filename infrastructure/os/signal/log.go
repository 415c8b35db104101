package signal

import (
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/cobaltnet/cobaltd/util/panics"
)

var log = logger.RegisterSubSystem("CBLD")
var spawn = panics.GoroutineWrapperFunc(log)
