package conv

import (
	"fmt"
	"math"
)

// Int64ToInt converts a non-negative int64 to int safely.
func Int64ToInt(v int64) (int, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (negative)", v)
	}
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// Uint32ToInt converts uint32 to int safely.
func Uint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}
