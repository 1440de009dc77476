// Package timing measures the phases of a VM start up to the hand-off to the
// guest.
package timing

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvVar enables the phase report when set to "1".
const EnvVar = "KRUNVM_TIMING"

// Timer tracks durations of named phases.
type Timer struct {
	start time.Time
	last  time.Time
	now   func() time.Time

	phases []Phase
}

// Phase is a named span of a start.
type Phase struct {
	Name     string
	Duration time.Duration
}

// New creates a Timer starting from now.
func New() *Timer {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Timer {
	start := now()
	return &Timer{start: start, last: start, now: now}
}

// Enabled reports whether the user asked for a timing report.
func Enabled() bool {
	return os.Getenv(EnvVar) == "1"
}

// Mark records a phase ending now, measured from the previous mark.
func (t *Timer) Mark(name string) {
	now := t.now()
	t.phases = append(t.phases, Phase{Name: name, Duration: now.Sub(t.last)})
	t.last = now
}

// Total returns the time elapsed since the timer was created.
func (t *Timer) Total() time.Duration {
	return t.now().Sub(t.start)
}

// Phases returns the recorded phases in order.
func (t *Timer) Phases() []Phase {
	return t.phases
}

// Fields returns the phases as log fields, in milliseconds.
func (t *Timer) Fields() logrus.Fields {
	fields := make(logrus.Fields, len(t.phases)+1)
	for _, p := range t.phases {
		fields[p.Name+"_ms"] = p.Duration.Milliseconds()
	}
	fields["total_ms"] = t.Total().Milliseconds()
	return fields
}

// Report prints the phases to w. The guest owns the terminal afterwards, so
// this is the last chance to print anything.
func (t *Timer) Report(w io.Writer) {
	fmt.Fprintln(w, "=== krunvm start timing ===")
	for _, p := range t.phases {
		fmt.Fprintf(w, "  %-12s %s\n", p.Name+":", formatDuration(p.Duration))
	}
	fmt.Fprintf(w, "  %-12s %s\n", "total:", formatDuration(t.Total()))
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
