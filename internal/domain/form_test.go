package domain

import (
	"testing"
	"time"
)

func TestClampSleep(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{4, 4},
		{12, 12},
		{3.9, 4},
		{12.1, 12},
		{8.1, 8},
		{8.13, 8.25},
		{7.75, 7.75},
	}
	for _, tt := range tests {
		if got := ClampSleep(tt.in); got != tt.want {
			t.Errorf("ClampSleep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClampCoffee(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 7: 7, 20: 20, 21: 20, -4: 1} {
		if got := ClampCoffee(in); got != want {
			t.Errorf("ClampCoffee(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestDefaultForm(t *testing.T) {
	now := time.Date(2026, 10, 16, 18, 30, 0, 0, time.UTC)
	f := DefaultForm(now, time.UTC)

	want := time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC)
	if !f.WakeUp.Equal(want) {
		t.Fatalf("wake = %v, want %v", f.WakeUp, want)
	}
	if f.SleepAmount != 8 || f.CoffeeAmount != 1 {
		t.Fatalf("unexpected defaults %+v", f)
	}
}

func TestWakeSeconds(t *testing.T) {
	wake := time.Date(2026, 1, 1, 7, 30, 59, 0, time.UTC)
	if got := WakeSeconds(wake); got != 7*3600+30*60 {
		t.Fatalf("WakeSeconds = %d", got)
	}
}
