// Package schedule generates facility calendars deterministically.  Every
// value the engine produces (session IDs, booked counts, rosters) is derived
// from template rules and Hash, so regenerating the same facility and date
// always yields identical output and no generator state needs storing.
package schedule

import "unicode/utf16"

// Hash is the seed hash behind all pseudo-randomness in the engine.  The
// accumulator starts at zero and for every UTF-16 code unit c of seed becomes
// acc*31 + c, truncated to 32 bits.  Working on UTF-16 units keeps non-ASCII
// seeds hashing the same way browser clients do.
func Hash(seed string) uint32 {
	var h uint32
	for _, u := range utf16.Encode([]rune(seed)) {
		h = h*31 + uint32(u)
	}
	return h
}
