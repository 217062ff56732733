// Package version compares release version strings segment by segment.
package version

import "strings"

// Compare returns -1, 0 or 1 when a is lower, equal or greater than b.
//
// Versions are split on "." and each segment is compared numerically, at any
// length; missing
// trailing segments count as 0, so "1.4" equals "1.4.0". A suffix introduced by
// "-" (as in "2.0-beta1") marks a pre-release which sorts before the same
// version without a suffix. Pre-release suffixes compare lexically.
func Compare(a, b string) int {
	aCore, aPre := split(a)
	bCore, bPre := split(b)

	as, bs := segments(aCore), segments(bCore)
	n := max(len(as), len(bs))
	for i := 0; i < n; i++ {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		if c := compareDigits(x, y); c != 0 {
			return c
		}
	}

	switch {
	case aPre == bPre:
		return 0
	case aPre == "":
		return 1
	case bPre == "":
		return -1
	case aPre < bPre:
		return -1
	default:
		return 1
	}
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

func split(v string) (core, pre string) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		return v[:i], v[i+1:]
	}
	return v, ""
}

// segments returns the leading digits of each segment without leading zeros.
func segments(core string) []string {
	if core == "" {
		return nil
	}
	parts := strings.Split(core, ".")
	out := make([]string, len(parts))
	for i, p := range parts {
		// leading digits only, "3rc" reads as 3
		end := 0
		for end < len(p) && p[end] >= '0' && p[end] <= '9' {
			end++
		}
		out[i] = strings.TrimLeft(p[:end], "0")
	}
	return out
}

// compareDigits orders two zero-trimmed digit strings by value.
func compareDigits(x, y string) int {
	switch {
	case len(x) != len(y):
		if len(x) < len(y) {
			return -1
		}
		return 1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
