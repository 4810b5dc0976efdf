package makeup

import (
	"errors"
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Standard widths.
const (
	Width8  = 8
	Width16 = 16
	Width32 = 32
	Width64 = 64
)

var (
	ErrUnreachable    = errors.New("makeup: target unreachable")
	ErrStepLimit      = errors.New("makeup: step limit exceeded")
	ErrIterationLimit = errors.New("makeup: iteration limit exceeded")
	ErrMagic          = errors.New("makeup: cannot evaluate magic expression")
)

// Mask is a fixed-width unsigned integer treated as a vector of bits.
type Mask interface {
	constraints.Unsigned
}

// Cost is the unsigned type used to accumulate decomposition costs.
type Cost interface {
	constraints.Unsigned
}

// Width returns the number of bits in T.
func Width[T Mask]() uint {
	return uint(bits.OnesCount64(uint64(^T(0))))
}

// FormatMask returns v in binary, zero-padded to the full width of T.
func FormatMask[T Mask](v T) string {
	return fmt.Sprintf("%0*b", int(Width[T]()), uint64(v))
}

// maxCost returns the largest value representable by S.
func maxCost[S Cost]() S {
	return ^S(0)
}

// addCost returns a+b, saturating at the maximum value of S.
func addCost[S Cost](a, b S) S {
	if a > maxCost[S]()-b {
		return maxCost[S]()
	}
	return a + b
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
