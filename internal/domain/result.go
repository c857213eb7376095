package domain

// Field identifies which form input changed.
type Field int

const (
	FieldNone Field = iota
	FieldWakeUp
	FieldSleepAmount
	FieldCoffeeAmount
)

// String returns the field name used in logs.
func (f Field) String() string {
	switch f {
	case FieldWakeUp:
		return "wakeUp"
	case FieldSleepAmount:
		return "sleepAmount"
	case FieldCoffeeAmount:
		return "coffeeAmount"
	default:
		return "none"
	}
}

// BedtimeResult is the display string derived from one FormState.
type BedtimeResult struct {
	Text     string    // formatted time or the fixed failure message
	Failed   bool      // true when Text is the failure message
	Form     FormState // inputs that produced Text
	Trigger  Field     // field whose change caused the recomputation
	Revision uint64    // monotonically increasing per recomputation
}
