package domain

import "errors"

// ErrEstimation is the single error kind produced by the bedtime
// estimator. Model-load and inference failures are not distinguished.
var ErrEstimation = errors.New("bedtime estimation failed")

// FailureMessage is shown in place of a bedtime when estimation fails.
const FailureMessage = "Sorry, there was a problem calculating your bedtime."

// PlaceholderBedtime is displayed before the first computation.
const PlaceholderBedtime = "10:38 PM"
