// Package version implements the RPM-style total ordering over version
// strings used to satisfy dependency atoms (spec component B).
//
// The comparator is grounded directly on libpkgconf's
// pkgconf_compare_version (itself the LSB's description of RPM version
// comparison): walk two cursors in lockstep, skip non-alphanumeric
// separator bytes, treat '~' as a pre-release marker that sorts before
// everything, and otherwise compare runs of digits (numerically, after
// stripping leading zeros) or runs of letters (lexicographically). The
// teacher's own version.go takes the same "cursor over two copied
// strings, structured regexp-free comparison" shape for PEP 440 versions;
// this package keeps that shape but swaps in the RPM grammar the spec
// requires instead of PEP 440.
package version

// Compare returns -1, 0, or 1 according to whether a is less than, equal
// to, or greater than b under RPM version comparison rules.
//
// An empty string denotes "no version specified" and is treated the way
// libpkgconf treats a NULL version pointer: it compares greater than any
// specified version, and two empty strings compare equal.
func Compare(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	if equalFold(a, b) {
		return 0
	}

	one, two := []byte(a), []byte(b)
	i, j := 0, 0

	for i < len(one) || j < len(two) {
		for i < len(one) && !isAlnum(one[i]) && one[i] != '~' {
			i++
		}
		for j < len(two) && !isAlnum(two[j]) && two[j] != '~' {
			j++
		}

		oneTilde := i < len(one) && one[i] == '~'
		twoTilde := j < len(two) && two[j] == '~'
		if oneTilde || twoTilde {
			if !oneTilde {
				return 1
			}
			if !twoTilde {
				return -1
			}
			i++
			j++
			continue
		}

		if !(i < len(one) && j < len(two)) {
			break
		}

		start1, start2 := i, j
		isNum := isDigit(one[i])
		if isNum {
			for i < len(one) && isDigit(one[i]) {
				i++
			}
			for j < len(two) && isDigit(two[j]) {
				j++
			}
		} else {
			for i < len(one) && isAlpha(one[i]) {
				i++
			}
			for j < len(two) && isAlpha(two[j]) {
				j++
			}
		}

		if i == start1 {
			return -1
		}
		if j == start2 {
			if isNum {
				return 1
			}
			return -1
		}

		seg1 := one[start1:i]
		seg2 := two[start2:j]

		if isNum {
			seg1 = stripLeadingZeros(seg1)
			seg2 = stripLeadingZeros(seg2)
			if len(seg1) > len(seg2) {
				return 1
			}
			if len(seg2) > len(seg1) {
				return -1
			}
		}

		if c := compareBytes(seg1, seg2); c != 0 {
			return c
		}
	}

	switch {
	case i >= len(one) && j >= len(two):
		return 0
	case i >= len(one):
		return -1
	default:
		return 1
	}
}

func stripLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == '0' {
		i++
	}
	return b[i:]
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
