package cell

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidCount is returned when a cell count is outside [MinCount, MaxCount].
	ErrInvalidCount = errors.New("invalid cell count")

	// ErrInvalidCurrent is returned for negative, NaN or infinite currents.
	ErrInvalidCurrent = errors.New("invalid current")
)

// ValidateCount checks that count is within [MinCount, MaxCount].
func ValidateCount(count int) error {
	if count < MinCount || count > MaxCount {
		return fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidCount, MinCount, MaxCount, count)
	}
	return nil
}

// ValidateCurrent checks that a current reading is finite and non-negative.
// Values are rejected, never clamped.
func ValidateCurrent(current float64) error {
	if math.IsNaN(current) || math.IsInf(current, 0) {
		return fmt.Errorf("%w: must be a finite number, got %v", ErrInvalidCurrent, current)
	}
	if current < 0 {
		return fmt.Errorf("%w: must be >= 0, got %v", ErrInvalidCurrent, current)
	}
	return nil
}
