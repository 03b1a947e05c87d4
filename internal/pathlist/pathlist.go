// Package pathlist implements the ordered, de-duplicated directory search
// list used for locating .pc files (spec component C).
//
// The teacher builds exactly one PATH-shaped string in pythonpath.go by
// joining installation directories with os.PathListSeparator; this
// package is the general form of that idea, generalized to parsing such a
// string back into a list and guarding against two names that refer to
// the same directory.
package pathlist

import (
	"os"
	"strings"
)

// List is an ordered list of directories with optional inode-aware
// de-duplication.
type List struct {
	dirs []string
}

// Split tokenises text on the platform's list separator (':' on POSIX,
// ';' on Windows, i.e. os.PathListSeparator), discarding empty fields.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	fields := strings.Split(text, string(os.PathListSeparator))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Dirs returns the list's directories in insertion order.
func (l *List) Dirs() []string { return l.dirs }

// Add appends path to the list. If filter is true, the path is skipped
// when it is already present either by exact string match or because it
// refers to the same directory (by os.SameFile) as an existing entry.
func (l *List) Add(path string, filter bool) {
	if !filter {
		l.dirs = append(l.dirs, path)
		return
	}

	if l.MatchList(path) {
		return
	}

	if info, err := os.Stat(path); err == nil {
		for _, existing := range l.dirs {
			existingInfo, err := os.Stat(existing)
			if err != nil {
				continue
			}
			if os.SameFile(info, existingInfo) {
				return
			}
		}
	}

	l.dirs = append(l.dirs, path)
}

// AddAll splits text on the platform separator and adds each resulting
// directory.
func (l *List) AddAll(text string, filter bool) {
	for _, dir := range Split(text) {
		l.Add(dir, filter)
	}
}

// MatchList reports whether path is already present by exact string
// equality.
func (l *List) MatchList(path string) bool {
	for _, existing := range l.dirs {
		if existing == path {
			return true
		}
	}
	return false
}

// Environ abstracts environment-variable lookup so callers (the client's
// personality) can inject a fake environment in tests.
type Environ interface {
	Getenv(key string) (string, bool)
}

// osEnviron is the default Environ backed by the process environment.
type osEnviron struct{}

func (osEnviron) Getenv(key string) (string, bool) { return os.LookupEnv(key) }

// OS is the default Environ implementation, reading from the process
// environment via os.LookupEnv.
var OS Environ = osEnviron{}

// BuildFromEnviron consults the named environment variable through env;
// if unset, it splits fallback instead. Either way the result is
// returned as a fresh, unfiltered List.
func BuildFromEnviron(env Environ, name, fallback string) *List {
	l := &List{}
	if env == nil {
		env = OS
	}
	if v, ok := env.Getenv(name); ok {
		l.AddAll(v, false)
		return l
	}
	l.AddAll(fallback, false)
	return l
}
