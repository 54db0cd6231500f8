package util

import (
	"testing"
	"time"
)

func TestTimerLaps(t *testing.T) {
	timer := StartTimer()
	time.Sleep(5 * time.Millisecond)
	first := timer.LapMs()
	if first < 5 {
		t.Fatalf("expected first lap >= 5ms got %d", first)
	}
	second := timer.LapMs()
	if second > first {
		t.Fatalf("expected immediate lap to be short, got %d after %d", second, first)
	}
	if total := timer.ElapsedMs(); total < first {
		t.Fatalf("expected total %d >= first lap %d", total, first)
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	if timer.ElapsedMs() != 0 || timer.LapMs() != 0 {
		t.Fatalf("nil timer should report zero")
	}
}
