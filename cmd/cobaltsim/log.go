package main

import (
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/cobaltnet/cobaltd/util/panics"
)

var log = logger.RegisterSubSystem("CBSM")
var spawn = panics.GoroutineWrapperFunc(log)
