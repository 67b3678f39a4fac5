package utils

import (
	"strconv"
)

// StringToUint converts s to uint, returning 0 on error.
func StringToUint(s string) uint {
	i, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(i)
}

// ClampLimit keeps a requested page size within [1, max], using def when unset.
func ClampLimit(requested, def, max int) int {
	if requested <= 0 {
		return def
	}
	if requested > max {
		return max
	}
	return requested
}

// StringFromUint formats u in base 10.
func StringFromUint(u uint) string {
	return strconv.FormatUint(uint64(u), 10)
}
