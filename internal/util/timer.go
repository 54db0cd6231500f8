package util

import "time"

// Timer measures the total time of a pipeline run and the time spent in each step.
type Timer struct {
	start time.Time
	lap   time.Time
}

// StartTimer creates a new timer starting at current time.
func StartTimer() *Timer {
	now := time.Now()
	return &Timer{start: now, lap: now}
}

// ElapsedMs returns the elapsed milliseconds since start.
func (t *Timer) ElapsedMs() int64 {
	if t == nil || t.start.IsZero() {
		return 0
	}
	return time.Since(t.start).Milliseconds()
}

// LapMs returns the milliseconds since the previous lap (or start) and begins a new lap.
func (t *Timer) LapMs() int64 {
	if t == nil || t.start.IsZero() {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(t.lap).Milliseconds()
	t.lap = now
	return elapsed
}
