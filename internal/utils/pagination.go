// Package utils provides small helpers shared across layers. The listing
// endpoints (projects, messages) parse their page and page_size query
// parameters through these functions.
package utils

import "strconv"

// AtoiDefault converts s to an int, returning def when s is empty or not a
// valid integer. Listing handlers use it so a garbled page parameter
// degrades to the default page instead of erroring.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to [lo, hi]. Used to keep client-supplied page sizes
// within the server's limits.
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
