// Package dependency implements Requires/Requires.private-style
// dependency declarations: the record type, the text parser, and the
// collision policy applied when two declarations name the same package
// (spec component F).
//
// Grounded on libpkgconf's dependency.c: parse_str there runs a six-state
// machine (OUTSIDE, NAME, PRE-OP, OP, POST-OP, VERSION) over a buffer
// padded with a trailing separator so the final token always flushes.
// ParseStr below keeps that padding trick and marks the same six states in
// its comments (INSIDE_MODULE_NAME, BEFORE_OPERATOR, INSIDE_OPERATOR,
// AFTER_OPERATOR, INSIDE_VERSION, plus the separator skip), but scans with
// two cursors per token instead of a single character-at-a-time enum loop
// — an operator character is only treated as an operator when whitespace
// separates it from the package name, which is the one behavioural
// subtlety worth preserving faithfully.
package dependency

import (
	"github.com/pkgconf-go/pkgconf/internal/dlist"
	"github.com/pkgconf-go/pkgconf/internal/variable"
	"github.com/pkgconf-go/pkgconf/internal/version"
)

// DepFlags marks the provenance of a dependency declaration (e.g. whether
// it came from a private/static-only clause). Two declarations for the
// same package with different flags are a collision (see AddRaw).
type DepFlags uint32

const (
	// FlagPrivate marks a dependency parsed from a Requires.private-style
	// field rather than a public Requires field.
	FlagPrivate DepFlags = 1 << iota
)

// Dependency is one parsed (name, operator, version) atom.
type Dependency struct {
	Package string
	Version string // empty means no version constraint
	Compare version.Comparator
	Flags   DepFlags

	// Match is filled in by the resolver once the named package has been
	// located and verified against Version/Compare.
	Match any
}

// List is a dependency list in declaration order.
type List = dlist.List[*Dependency]

func (d *Dependency) String() string {
	if d.Version == "" {
		return d.Package
	}
	return d.Package + " " + d.Compare.String() + " " + d.Version
}

func findColliding(dep *Dependency, list *List) *dlist.Node[*Dependency] {
	for n := list.Front(); n != nil; n = n.Next() {
		d2 := n.Value
		if d2.Package != dep.Package {
			continue
		}
		if d2.Flags != dep.Flags {
			return n
		}
	}
	return nil
}

// AddRaw appends a new dependency to list, resolving a collision against
// an existing entry for the same package name with different flags: the
// uncoloured (Flags == 0) side always wins; if both sides carry flags (or
// neither does), both are kept, since deciding between e.g. "foo > 1" and
// "foo < 3" is not this layer's job — fragment deduplication cleans up
// any resulting redundancy downstream. Returns nil if dep itself was the
// side dropped.
func AddRaw(list *List, pkg, ver string, cmp version.Comparator, flags DepFlags) *Dependency {
	dep := &Dependency{Package: pkg, Version: ver, Compare: cmp, Flags: flags}

	if n := findColliding(dep, list); n != nil {
		existing := n.Value
		switch {
		case dep.Flags != 0 && existing.Flags == 0:
			return nil
		case existing.Flags != 0 && dep.Flags == 0:
			list.Remove(n)
		}
	}

	list.PushBack(dep)
	return dep
}

// Add adds a dependency with an optional version constraint (an empty
// ver means Compare should be version.Any).
func Add(list *List, pkg, ver string, cmp version.Comparator, flags DepFlags) *Dependency {
	return AddRaw(list, pkg, ver, cmp, flags)
}

// Parse expands variable references in text against scope and parses the
// result as a dependency declaration list.
func Parse(list *List, scope *variable.Scope, text string, flags DepFlags) error {
	res, err := variable.Evaluate(variable.Compile(text), scope)
	if err != nil {
		return err
	}
	ParseStr(list, res.Value, flags)
	return nil
}
