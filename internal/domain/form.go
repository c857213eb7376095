package domain

import (
	"math"
	"time"
)

// Presentation-layer bounds for the three form fields.
const (
	MinSleepHours = 4.0
	MaxSleepHours = 12.0
	SleepStep     = 0.25

	MinCoffee = 1
	MaxCoffee = 20
)

// Defaults shown when the form first opens.
const (
	DefaultWakeHour    = 7
	DefaultWakeMinute  = 0
	DefaultSleepAmount = 8.0
	DefaultCoffee      = 1
)

// FormState is the complete set of user inputs.
type FormState struct {
	WakeUp       time.Time // only hour and minute are meaningful
	SleepAmount  float64   // hours
	CoffeeAmount int       // cups per day
}

// DefaultWakeTime returns today's 07:00 in the given location.
// A nil location means time.Local.
func DefaultWakeTime(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), DefaultWakeHour, DefaultWakeMinute, 0, 0, loc)
}

// DefaultForm returns the initial form state anchored on now's calendar day.
func DefaultForm(now time.Time, loc *time.Location) FormState {
	return FormState{
		WakeUp:       DefaultWakeTime(now, loc),
		SleepAmount:  DefaultSleepAmount,
		CoffeeAmount: DefaultCoffee,
	}
}

// ClampSleep snaps hours to the nearest SleepStep inside the allowed range.
func ClampSleep(hours float64) float64 {
	if math.IsNaN(hours) {
		return DefaultSleepAmount
	}
	hours = math.Round(hours/SleepStep) * SleepStep
	return math.Max(MinSleepHours, math.Min(MaxSleepHours, hours))
}

// ClampCoffee limits n to [MinCoffee, MaxCoffee].
func ClampCoffee(n int) int {
	switch {
	case n < MinCoffee:
		return MinCoffee
	case n > MaxCoffee:
		return MaxCoffee
	}
	return n
}

// WakeSeconds returns the seconds elapsed since midnight for t's clock,
// ignoring seconds and sub-second parts.
func WakeSeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60
}
