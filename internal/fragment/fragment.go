// Package fragment implements compiler/linker flag fragments: parsing a
// value into fragments, merging and mergeback on copy, filtering, and
// rendering back out as a flag string (spec component E).
//
// Classification is grounded directly on libpkgconf's fragment.c: the set
// of greedy, unmergeable, groupable and terminus tokens below is a literal
// port of its check_fragments tables, not a reinterpretation.
package fragment

import "github.com/pkgconf-go/pkgconf/internal/dlist"

// Fragment is one flag, either typed (-I, -L, -D, -l, -F, Type holds the
// letter) or opaque (Type == 0, Data holds the whole token).
//
// Children holds fragments that were grouped under this one (see
// isGroupable) until a terminus token arrives and Terminated is set.
type Fragment struct {
	Type       byte
	Data       string
	Children   dlist.List[*Fragment]
	Terminated bool
}

// List is a fragment list in insertion order.
type List = dlist.List[*Fragment]

// node is a List's node type, named locally for brevity in merge.go.
type node = dlist.Node[*Fragment]

// PropFlags mirror the property flags a .pc package carries that affect
// fragment handling (currently only whether the package is -uninstalled).
type PropFlags uint32

const FlagUninstalled PropFlags = 1 << iota

var greedyTokens = []string{"-F", "-I", "-L", "-D", "-l"}

// isGreedy reports whether string is a bare flag (no attached data) that
// takes the following argv word as its data.
func isGreedy(s string) bool {
	if len(s) == 0 || s[0] != '-' {
		return false
	}
	for _, tok := range greedyTokens {
		if s == tok {
			return true
		}
	}
	return false
}

var sysrootCheckTokens = []string{"-F", "-I", "-L", "-isystem", "-idirafter"}

// shouldCheckSysroot reports whether a fragment of this classification is
// eligible for sysroot injection.
func shouldCheckSysroot(s string) bool {
	if len(s) == 0 || s[0] != '-' {
		return false
	}
	for _, tok := range sysrootCheckTokens {
		if hasPrefix(s, tok) {
			return true
		}
	}
	return false
}

var unmergeablePrefixes = []string{
	"-framework", "-isystem", "-idirafter", "-pthread",
	"-Wa,", "-Wl,", "-Wp,",
	"-trigraphs", "-pedantic", "-ansi",
	"-std=", "-stdlib=", "-include",
	"-nostdinc", "-nostdlibinc", "-nobuiltininc", "-nodefaultlibs",
}

// isUnmergeable reports whether a token may only ever be merged with an
// exact duplicate of itself (or not at all).
func isUnmergeable(s string) bool {
	if len(s) == 0 || s[0] != '-' {
		return true
	}
	for _, tok := range unmergeablePrefixes {
		if hasPrefix(s, tok) {
			return true
		}
	}
	return false
}

// isSpecial reports whether a token should be treated as opaque (Type ==
// 0) rather than parsed as a typed "-X..." flag.
func isSpecial(s string) bool {
	if len(s) == 0 || s[0] != '-' {
		return true
	}
	if hasPrefix(s, "-lib:") {
		return true
	}
	return isUnmergeable(s)
}

var groupableTokens = []string{
	"-Wl,--start-group", "-framework", "-isystem", "-idirafter", "-include",
}

// isGroupable reports whether a token starts a group: fragments that
// follow accumulate as its children until a terminus token arrives.
func isGroupable(s string) bool {
	for _, tok := range groupableTokens {
		if hasPrefix(s, tok) {
			return true
		}
	}
	return false
}

// isTerminus reports whether a token closes a group started by a
// groupable token.
func isTerminus(s string) bool {
	return hasPrefix(s, "-Wl,--end-group")
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
