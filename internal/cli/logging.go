package cli

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

// setupLogging configures the standard logger for the given -v count.
func setupLogging(w io.Writer, verbosity int) {
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: verbosity < 2,
	})
	logrus.SetLevel(logLevel(verbosity))
}

func logLevel(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.WarnLevel
	case verbosity == 1:
		return logrus.InfoLevel
	case verbosity == 2:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// libkrunLogLevel maps -v to libkrun's own logging, which is only turned on
// for debugging.
func libkrunLogLevel(verbosity int) uint32 {
	switch {
	case verbosity < 2:
		return hypervisor.LogLevelOff
	case verbosity == 2:
		return hypervisor.LogLevelDebug
	default:
		return hypervisor.LogLevelTrace
	}
}
