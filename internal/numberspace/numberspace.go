// Package numberspace defines the bounded numeric space of raffle ticket
// numbers and the allocator that draws unused numbers from it.
//
// A raffle with digit width d issues numbers as zero-padded decimal strings
// of exactly d characters, representing values in [0, 10^d - 1]. The
// allocator is a pure generator over supplied state: it never persists
// anything, and the submission state machine re-verifies every batch
// against the authoritative issued set at commit time.
package numberspace

import (
	"fmt"

	"github.com/rafflehq/raffle-backend/internal/models"
)

// MinDigitWidth and MaxDigitWidth bound the digit width a raffle may use.
const (
	MinDigitWidth = 1
	MaxDigitWidth = 10
)

// MaxValue returns the largest value representable with digitWidth digits,
// i.e. 10^digitWidth - 1. It returns -1 for an invalid width.
func MaxValue(digitWidth int) int64 {
	if digitWidth < MinDigitWidth || digitWidth > MaxDigitWidth {
		return -1
	}
	max := int64(1)
	for i := 0; i < digitWidth; i++ {
		max *= 10
	}
	return max - 1
}

// Format zero-pads n to digitWidth characters. It fails with ErrOutOfRange
// if n is negative or exceeds MaxValue(digitWidth).
func Format(n int64, digitWidth int) (string, error) {
	max := MaxValue(digitWidth)
	if max < 0 {
		return "", fmt.Errorf("digit width %d: %w", digitWidth, models.ErrOutOfRange)
	}
	if n < 0 || n > max {
		return "", fmt.Errorf("value %d with digit width %d: %w", n, digitWidth, models.ErrOutOfRange)
	}
	return fmt.Sprintf("%0*d", digitWidth, n), nil
}

// IsValid reports whether candidate is a string of exactly digitWidth ASCII
// digits. Leading zeros are permitted.
func IsValid(candidate string, digitWidth int) bool {
	if digitWidth < MinDigitWidth || digitWidth > MaxDigitWidth {
		return false
	}
	if len(candidate) != digitWidth {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}
	return true
}
