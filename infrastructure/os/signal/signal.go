package signal

import (
	"os"
	"os/signal"
)

// interruptSignals defines the default signals to catch in order to do a proper
// shutdown. This may be modified during init depending on the platform.
var interruptSignals = []os.Signal{os.Interrupt}

// ShutdownRequestChannel is used to initiate shutdown from one of the
// subsystems using the same code paths as when an interrupt signal is received.
var ShutdownRequestChannel = make(chan struct{})

// InterruptListener listens for OS Signals such as SIGINT (Ctrl+C) and
// shutdown requests from ShutdownRequestChannel. It returns a channel that is
// closed when either signal is received.
func InterruptListener() chan struct{} {
	c := make(chan struct{})
	spawn(func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)

		// Listen for the initial signal and close the returned channel to
		// notify the caller.
		select {
		case sig := <-interruptChannel:
			log.Infof("Received signal (%s). Shutting down...", sig)

		case <-ShutdownRequestChannel:
			log.Info("Shutdown requested. Shutting down...")
		}
		close(c)

		// Listen for repeated signals and display a message so the user
		// knows the shutdown is in progress and the process is not hung.
		for {
			select {
			case sig := <-interruptChannel:
				log.Infof("Received signal (%s). Already shutting down...", sig)

			case <-ShutdownRequestChannel:
				log.Info("Shutdown requested. Already shutting down...")
			}
		}
	})

	return c
}
