package domain

import "context"

// SleepPredictor maps the form inputs to the amount of sleep, in seconds,
// the user actually needs. Implementations may be a bundled regression
// artifact, an ONNX model, or a stub in tests. Loading the underlying
// model may happen lazily on the first call.
type SleepPredictor interface {
	Predict(ctx context.Context, wake, estimatedSleep, coffee float64) (float64, error)
}

// ResultListener receives every recomputed bedtime.
type ResultListener interface {
	BedtimeChanged(result BedtimeResult)
}

// ListenerFunc adapts a function to ResultListener.
type ListenerFunc func(result BedtimeResult)

// BedtimeChanged calls f.
func (f ListenerFunc) BedtimeChanged(result BedtimeResult) { f(result) }
