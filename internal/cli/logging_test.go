package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/javanstorm/krunvm/pkg/hypervisor"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      logrus.Level
		libkrun   uint32
	}{
		{0, logrus.WarnLevel, hypervisor.LogLevelOff},
		{1, logrus.InfoLevel, hypervisor.LogLevelOff},
		{2, logrus.DebugLevel, hypervisor.LogLevelDebug},
		{3, logrus.TraceLevel, hypervisor.LogLevelTrace},
		{7, logrus.TraceLevel, hypervisor.LogLevelTrace},
	}

	for _, tt := range tests {
		if got := logLevel(tt.verbosity); got != tt.want {
			t.Errorf("logLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
		if got := libkrunLogLevel(tt.verbosity); got != tt.libkrun {
			t.Errorf("libkrunLogLevel(%d) = %d, want %d", tt.verbosity, got, tt.libkrun)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	origLevel := logrus.GetLevel()
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(origLevel)
	})

	var buf bytes.Buffer
	setupLogging(&buf, 1)

	logrus.Debug("hidden")
	logrus.WithField("vm", "demo").Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at -v:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "vm=demo") {
		t.Errorf("info message missing:\n%s", out)
	}
}
