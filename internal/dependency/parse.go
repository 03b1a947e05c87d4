package dependency

import "github.com/pkgconf-go/pkgconf/internal/version"

func isModuleSep(c byte) bool {
	return c == ',' || isSpaceByte(c)
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isOperatorChar(c byte) bool {
	switch c {
	case '<', '>', '!', '=':
		return true
	default:
		return false
	}
}

// ParseStr runs the module/operator/version scanner over depends and
// adds one dependency per atom found. A trailing separator is appended
// internally so the final atom always flushes, the way the original
// pads its working buffer with a trailing space before scanning.
//
// An operator is only recognised when it directly follows a run of
// whitespace after the package name (PRE-OP -> OP); a name immediately
// followed by an operator character with no intervening space (e.g. a
// malformed "foo>=1.0") is taken as a single, literal package name, since
// that is what the padded single-pass scan it is grounded on does too.
func ParseStr(list *List, depends string, flags DepFlags) {
	s := depends + " "
	i, n := 0, len(s)

	for i < n {
		for i < n && isModuleSep(s[i]) {
			i++
		}
		if i >= n {
			break
		}

		// INSIDE_MODULE_NAME
		nameStart := i
		for i < n && !isModuleSep(s[i]) {
			i++
		}
		name := s[nameStart:i]
		if name == "" {
			continue
		}

		// Look past (only) whitespace for BEFORE_OPERATOR.
		j := i
		for j < n && isSpaceByte(s[j]) {
			j++
		}

		if j < n && isOperatorChar(s[j]) {
			// INSIDE_OPERATOR
			opStart := j
			for j < n && isOperatorChar(s[j]) {
				j++
			}
			cmp := version.Lookup(s[opStart:j])

			// AFTER_OPERATOR
			for j < n && isSpaceByte(s[j]) {
				j++
			}

			// INSIDE_VERSION
			verStart := j
			for j < n && !isModuleSep(s[j]) {
				j++
			}

			AddRaw(list, name, s[verStart:j], cmp, flags)
			i = j
			continue
		}

		AddRaw(list, name, "", version.Any, flags)
	}
}
