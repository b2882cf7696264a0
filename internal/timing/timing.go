// Package timing measures how long the phases of a completion request take.
package timing

import (
	"fmt"
	"strings"
	"time"
)

type mark struct {
	label   string
	elapsed time.Duration
}

// Timer records elapsed time at labelled checkpoints.
type Timer struct {
	start time.Time
	marks []mark
}

// NewTimer starts a timer at the current instant.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Mark records a checkpoint and returns the elapsed time since the start.
func (t *Timer) Mark(label string) time.Duration {
	elapsed := time.Since(t.start)
	t.marks = append(t.marks, mark{label: label, elapsed: elapsed})
	return elapsed
}

// Elapsed returns the total time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Get returns the recorded duration for a label.
func (t *Timer) Get(label string) (time.Duration, bool) {
	for _, m := range t.marks {
		if m.label == label {
			return m.elapsed, true
		}
	}
	return 0, false
}

// Summary formats the total and every checkpoint in record order.
func (t *Timer) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total: %.3fms", millis(t.Elapsed()))
	for i, m := range t.marks {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %.3fms", m.label, millis(m.elapsed))
	}
	if len(t.marks) > 0 {
		b.WriteString(")")
	}
	return b.String()
}

// Reset restarts the timer and discards recorded checkpoints.
func (t *Timer) Reset() {
	t.start = time.Now()
	t.marks = nil
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
