// Package resolver implements depth-first dependency-graph traversal with
// conflict, version, and provides handling, plus the fragment-collection
// and queue-solving entry points built on top of it (spec component I).
//
// Grounded on the teacher's mvs.go: MinimalVersionSelection recursively
// visits a dependency's transitive dependencies, guarding against cycles
// with a visited map, then reduces the accumulated tree to one entry per
// package. Traverse below keeps that recurse-then-reduce shape (walkList
// is the direct analogue of minimalVersionSelection's recursive call, and
// the per-edge SEEN flag on pcpkg.Package plays the role of the teacher's
// visited map) but targets depth-bounded graph verification and fragment
// collection against conflict/provides rules instead of picking a single
// minimal version per package.
package resolver

import (
	"fmt"

	"github.com/pkgconf-go/pkgconf/internal/client"
	"github.com/pkgconf-go/pkgconf/internal/dependency"
	"github.com/pkgconf-go/pkgconf/internal/dlist"
	"github.com/pkgconf-go/pkgconf/internal/fragment"
	"github.com/pkgconf-go/pkgconf/internal/pcpkg"
	"github.com/pkgconf-go/pkgconf/internal/variable"
)

// ErrFlags records the outcome of a traversal/verification step, mirroring
// pkgconf's PKGCONF_PKG_ERRF_* bitmask.
type ErrFlags uint32

const (
	ErrOK ErrFlags = 0
	ErrPackageNotFound ErrFlags = 1 << iota
	ErrPackageVersionMismatch
	ErrPackageConflict
)

func (e ErrFlags) OK() bool { return e == ErrOK }

// VisitFunc is called once per resolved package during Traverse.
type VisitFunc func(pkg *pcpkg.Package, private bool)

type depNode = dlist.Node[*dependency.Dependency]
type fragNode = dlist.Node[*fragment.Fragment]

// VerifyDependency resolves dep to a Package and checks it against dep's
// version constraint. The bare name "pkg-config" is special-cased inside
// client.Find to a synthetic virtual package (spec.md §9 Open Question).
// When the package cannot be found directly and NoProvides is not set,
// every already loaded package's Provides list is searched for a
// satisfying entry.
func VerifyDependency(c *client.Client, dep *dependency.Dependency) (*pcpkg.Package, ErrFlags) {
	pkg, err := c.Find(dep.Package)
	if err != nil {
		return nil, ErrPackageNotFound
	}

	if pkg == nil && c.Flags&client.FlagNoProvides == 0 {
		if provider := findProvider(c, dep); provider != nil {
			pkg = provider
		}
	}

	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	if !dep.Compare.Satisfies(pkg.Version, dep.Version) {
		return pkg, ErrPackageVersionMismatch
	}

	return pkg, ErrOK
}

// findProvider searches every cached package's Provides list for an entry
// matching dep's package name and version constraint, returning the
// providing package itself. This is not present in libpkgconf's pkg.c
// (no Provides handling appears anywhere in that source); it is built
// directly from spec.md's prose description of the "Provides" rule.
func findProvider(c *client.Client, dep *dependency.Dependency) *pcpkg.Package {
	var found *pcpkg.Package
	c.EachCached(func(pkg *pcpkg.Package) {
		if found != nil {
			return
		}
		pkg.Provides.Each(func(n *depNode) {
			if found != nil {
				return
			}
			pd := n.Value
			if pd.Package != dep.Package {
				return
			}
			if dep.Compare.Satisfies(pkg.Version, dep.Version) {
				found = pkg
			}
		})
	})
	return found
}

// Traverse visits root itself (unless root is virtual, e.g. the client's
// synthetic world package), then walks its Requires (and, under
// FlagSearchPrivate, Requires.private) depth-first, invoking visit for
// every resolved package reached along the way. maxdepth bounds recursion;
// 0 stops immediately and a negative value means unbounded. Conflicts are
// checked before descending unless FlagSkipConflicts is set.
//
// root is guarded against re-entrancy for the lifetime of this call, the
// same way walkList guards every dependency it recurses into, so that a
// cycle looping back to root does not recurse forever.
func Traverse(c *client.Client, root *pcpkg.Package, visit VisitFunc, maxdepth int) ErrFlags {
	alreadySeen := root.Flags&pcpkg.FlagSeen != 0
	if !alreadySeen {
		root.Flags |= pcpkg.FlagSeen
	}
	eflags := traverse(c, root, visit, maxdepth, false)
	if !alreadySeen {
		root.Flags &^= pcpkg.FlagSeen
	}
	return eflags
}

func traverse(c *client.Client, root *pcpkg.Package, visit VisitFunc, maxdepth int, private bool) ErrFlags {
	if maxdepth == 0 {
		return ErrOK
	}

	if root.Flags&pcpkg.FlagVirtual == 0 && visit != nil {
		visit(root, private)
	}

	if c.Flags&client.FlagSkipConflicts == 0 {
		if eflags := walkConflicts(c, root); eflags != ErrOK {
			return eflags
		}
	}

	eflags := walkList(c, root, &root.Requires, visit, private, maxdepth)

	if c.Flags&client.FlagSearchPrivate != 0 {
		eflags |= walkList(c, root, &root.RequiresPrivate, visit, true, maxdepth)
	}

	return eflags
}

func walkList(c *client.Client, parent *pcpkg.Package, list *dependency.List, visit VisitFunc, private bool, depth int) ErrFlags {
	var eflags ErrFlags

	list.Each(func(n *depNode) {
		dep := n.Value
		if dep.Package == "" {
			return
		}

		pkgdep, local := VerifyDependency(c, dep)
		if local != ErrOK {
			eflags |= local
			if c.Flags&client.FlagSkipErrors == 0 {
				reportGraphError(c, parent, dep, local)
			}
			return
		}
		if pkgdep == nil {
			return
		}

		if pkgdep.Flags&pcpkg.FlagSeen != 0 {
			return
		}

		pkgdep.Flags |= pcpkg.FlagSeen
		eflags |= traverse(c, pkgdep, visit, depth-1, private)
		pkgdep.Flags &^= pcpkg.FlagSeen
	})

	return eflags
}

// walkConflicts checks root's Conflicts atoms against its own Requires
// list: a conflict only fires when the conflicting package is also
// actually required and verifies successfully against the conflict
// atom's version constraint.
func walkConflicts(c *client.Client, root *pcpkg.Package) ErrFlags {
	var result ErrFlags

	root.Conflicts.Each(func(cn *depNode) {
		if result != ErrOK {
			return
		}
		conflict := cn.Value
		if conflict.Package == "" {
			return
		}

		root.Requires.Each(func(rn *depNode) {
			if result != ErrOK {
				return
			}
			req := rn.Value
			if req.Package == "" || req.Package != conflict.Package {
				return
			}

			pkgdep, local := VerifyDependency(c, conflict)
			if local == ErrOK {
				c.ReportError(
					"Version '%s' of '%s' conflicts with '%s' due to satisfying conflict rule '%s'.\n",
					pkgdep.Version, pkgdep.Realname, root.Realname, conflict.String(),
				)
				c.ReportError("It may be possible to ignore this conflict and continue, try the\n")
				c.ReportError("--ignore-conflicts option.\n")
				result = ErrPackageConflict
			}
		})
	})

	return result
}

func reportGraphError(c *client.Client, parent *pcpkg.Package, dep *dependency.Dependency, eflags ErrFlags) {
	switch {
	case eflags&ErrPackageNotFound != 0:
		c.NotFoundHint(dep.Package)
		c.ReportError("Package '%s', required by '%s', not found\n", dep.Package, parent.ID)
	case eflags&ErrPackageVersionMismatch != 0:
		c.ReportError(
			"Package dependency requirement '%s' could not be satisfied.\n",
			dep.String(),
		)
	}
}

// CFlags collects root's transitive CFlags fragments, plus CFlagsPrivate
// when FlagMergePrivateFragments is set.
func CFlags(c *client.Client, root *pcpkg.Package, maxdepth int) (fragment.List, error) {
	var out fragment.List

	visit := func(pkg *pcpkg.Package, private bool) {
		fragment.Filter(&out, &pkg.CFlags, func(*fragment.Fragment) bool { return true }, false)
	}
	if eflags := Traverse(c, root, visit, maxdepth); !eflags.OK() {
		return out, fmt.Errorf("resolver: cflags traversal failed with flags %v", eflags)
	}

	if c.Flags&client.FlagMergePrivateFragments != 0 {
		visitPrivate := func(pkg *pcpkg.Package, private bool) {
			copyAll(&out, &pkg.CFlagsPrivate)
		}
		if eflags := Traverse(c, root, visitPrivate, maxdepth); !eflags.OK() {
			return out, fmt.Errorf("resolver: cflags.private traversal failed with flags %v", eflags)
		}
	}

	return out, nil
}

// Libs collects root's transitive Libs fragments. Under FlagSearchPrivate
// the private dependency edges are also walked; along a private edge (or
// whenever FlagStatic forces a static resolution per SPEC_FULL.md's
// supplemented STATICLIB behavior) LibsPrivate is folded in alongside
// Libs for that package.
func Libs(c *client.Client, root *pcpkg.Package, maxdepth int) (fragment.List, error) {
	var out fragment.List

	visit := func(pkg *pcpkg.Package, private bool) {
		fragment.Filter(&out, &pkg.Libs, func(*fragment.Fragment) bool { return true }, false)
		if private || c.Flags&client.FlagStatic != 0 {
			copyAll(&out, &pkg.LibsPrivate)
		}
	}

	if eflags := Traverse(c, root, visit, maxdepth); !eflags.OK() {
		return out, fmt.Errorf("resolver: libs traversal failed with flags %v", eflags)
	}

	return out, nil
}

func copyAll(dest, src *fragment.List) {
	src.Each(func(n *fragNode) {
		fragment.Copy(dest, n.Value, true)
	})
}

// Variable looks up name against pkg's resolved variable table, evaluating
// it through the client's global table and sysroot configuration, for the
// "--variable=NAME" query surface.
func Variable(c *client.Client, pkg *pcpkg.Package, name string) (string, bool) {
	v := pkg.Vars.Get(name)
	if v == nil {
		v = c.Global.Get(name)
	}
	if v == nil {
		return "", false
	}

	scope := &variable.Scope{
		Global:               &c.Global,
		Local:                &pkg.Vars,
		Sysroot:              c.Sysroot,
		FDOSysrootRules:      c.Flags&client.FlagFDOSysrootRules != 0,
		PKGCONF1SysrootRules: c.Flags&client.FlagPKGCONF1SysrootRules != 0,
	}
	res, err := variable.Evaluate(v.BC, scope)
	if err != nil {
		return "", false
	}
	return res.Value, true
}
