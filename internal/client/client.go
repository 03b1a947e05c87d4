// Package client implements the package cache, global variable table,
// search-path personality, and error-reporting sink that anchor a single
// query session (spec component H).
//
// Grounded on the teacher's cache.go: a struct holding configuration plus
// a sync.Once-guarded setup step, a getPath-style lookup-or-miss helper,
// and a Close/teardown method. Client generalizes that "look up, fall
// back to search, cache the result" shape to .pc files instead of wheel
// downloads; the package cache below is the direct analogue of
// cache.GetWheel/AddWheel.
package client

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkgconf-go/pkgconf/internal/dlist"
	"github.com/pkgconf-go/pkgconf/internal/fragment"
	"github.com/pkgconf-go/pkgconf/internal/pathlist"
	"github.com/pkgconf-go/pkgconf/internal/pcpkg"
	"github.com/pkgconf-go/pkgconf/internal/personality"
	"github.com/pkgconf-go/pkgconf/internal/variable"
)

// Flags are the client-wide process flags named in spec §4.H/§4.I.
type Flags uint32

const (
	FlagSearchPrivate Flags = 1 << iota
	FlagMergePrivateFragments
	FlagSkipErrors
	FlagSkipConflicts
	FlagNoUninstalled
	FlagNoCache
	FlagNoProvides
	FlagStatic
	FlagFDOSysrootRules
	FlagPKGCONF1SysrootRules
	FlagEnvOnly
)

// ErrorHandler receives formatted diagnostic text, following the
// pkgconf_error_handler_func_t shape. ReportError hands its boolean result
// back to the caller; the resolver and the CLI do not act on it, so
// returning false does not stop an operation. The default handler always
// returns true.
type ErrorHandler func(msg string) bool

// AuditSink is the type of Client.Audit, a writer for an audit log. No
// code in this module writes to Client.Audit: neither the resolver nor the
// CLI emits audit lines, so setting it has no effect.
type AuditSink interface {
	io.Writer
}

// SelfVersion is the version the synthetic "pkg-config" virtual package
// advertises (spec.md §9 Open Question), pinned to the most common modern
// pkgconf/pkg-config compatibility advertisement and validated once at
// construction time through blang/semver.
const SelfVersion = "0.29.2"

// Client owns everything needed to resolve and query .pc files for one
// session. A Client is single-threaded; a second Client is independent.
type Client struct {
	cache dlist.List[*pcpkg.Package]

	Global variable.Table

	SearchPath        pathlist.List
	FilterLibDirs     pathlist.List
	FilterIncludeDirs pathlist.List

	Sysroot   string
	Buildroot string
	Flags     Flags

	ErrorHandler ErrorHandler
	Output       io.Writer
	Audit        AuditSink

	hintedNotFound bool

	world *pcpkg.Package
}

// New constructs a Client seeded from env (pass pathlist.OS for the real
// process environment). The client's own build version is
// parsed through blang/semver to guarantee it is well-formed; see
// version.go.
func New(env pathlist.Environ, flags Flags) (*Client, error) {
	if err := validateSelfVersion(SelfVersion); err != nil {
		return nil, fmt.Errorf("client: invalid self version: %w", err)
	}

	pers := personality.Load(env, flags&FlagEnvOnly != 0)

	c := &Client{
		SearchPath: pers.SearchPath,
		Sysroot:    pers.Sysroot,
		Buildroot:  pers.Buildroot,
		Flags:      flags,
		Output:     os.Stderr,
	}
	c.Global = *variable.NewTable()
	if pers.TopBuildDir != "" {
		c.Global.Set("pc_top_builddir", pers.TopBuildDir, 0)
	}
	c.ErrorHandler = c.defaultErrorHandler

	c.world = &pcpkg.Package{
		ID:       "virtual:world",
		Realname: "virtual world package",
		Flags:    pcpkg.FlagVirtual | pcpkg.FlagStatic,
	}
	c.world.Vars = *variable.NewTable()

	return c, nil
}

func (c *Client) defaultErrorHandler(msg string) bool {
	fmt.Fprint(c.Output, msg)
	return true
}

// ReportError formats msg and routes it through ErrorHandler, returning
// whatever the handler returns (true means "continue").
func (c *Client) ReportError(format string, args ...any) bool {
	if c.ErrorHandler == nil {
		return true
	}
	return c.ErrorHandler(fmt.Sprintf(format, args...))
}

// World returns the synthetic root package whose Requires list accumulates
// the user's query atoms (spec.md's "World").
func (c *Client) World() *pcpkg.Package { return c.world }

// FragmentOptions builds the fragment.Options this client's sysroot
// configuration implies.
func (c *Client) FragmentOptions() fragment.Options {
	return fragment.Options{
		Sysroot:              c.Sysroot,
		FDOSysrootRules:      c.Flags&FlagFDOSysrootRules != 0,
		PKGCONF1SysrootRules: c.Flags&FlagPKGCONF1SysrootRules != 0,
	}
}

// Lookup performs a linear, first-match cache lookup by package id.
func (c *Client) Lookup(id string) *pcpkg.Package {
	for n := c.cache.Front(); n != nil; n = n.Next() {
		if n.Value.ID == id {
			return n.Value
		}
	}
	return nil
}

// Add inserts pkg into the cache, bumping its reference count.
func (c *Client) Add(pkg *pcpkg.Package) {
	pkg.Ref()
	c.cache.PushBack(pkg)
	pkg.Flags |= pcpkg.FlagCached
}

// Remove detaches pkg from the cache without affecting its refcount.
func (c *Client) Remove(pkg *pcpkg.Package) {
	for n := c.cache.Front(); n != nil; n = n.Next() {
		if n.Value == pkg {
			c.cache.Remove(n)
			return
		}
	}
}

// FreeAll drops the cache's reference on every entry so only
// externally-referenced packages survive.
func (c *Client) FreeAll() {
	c.cache.Each(func(n *dlist.Node[*pcpkg.Package]) {
		n.Value.Unref()
	})
	c.cache = dlist.List[*pcpkg.Package]{}
}

// EachCached invokes f once for every package currently in the cache, in
// insertion order. Used by the resolver's Provides search, which must
// consider every package already loaded into a session.
func (c *Client) EachCached(f func(*pcpkg.Package)) {
	for n := c.cache.Front(); n != nil; n = n.Next() {
		f(n.Value)
	}
}

// pkgConfigVirtual constructs the synthetic "pkg-config" package used to
// satisfy the bare pkg-config atom during dependency verification.
func (c *Client) pkgConfigVirtual() *pcpkg.Package {
	pkg := &pcpkg.Package{
		ID:          "pkg-config",
		Realname:    "pkg-config",
		Description: "virtual package defining pkg-config API version supported",
		Version:     SelfVersion,
		Flags:       pcpkg.FlagVirtual,
	}
	pkg.Vars = *variable.NewTable()
	pkg.Vars.Set("pc_path", strings.Join(c.SearchPath.Dirs(), ":"), 0)
	return pkg
}

// Find resolves name to a Package following spec §4.H's order: an
// explicit ".pc" path is parsed directly; otherwise the cache is
// consulted (unless NoCache) before the search path is walked, trying
// "<dir>/<name>-uninstalled.pc" before "<dir>/<name>.pc" unless
// NoUninstalled is set.
func (c *Client) Find(name string) (*pcpkg.Package, error) {
	if strings.EqualFold(name, "pkg-config") {
		return c.pkgConfigVirtual(), nil
	}

	if strings.HasSuffix(name, ".pc") {
		if _, err := os.Stat(name); err == nil {
			pkg, err := pcpkg.ReadFile(name, &c.Global, c.FragmentOptions())
			if err != nil {
				return nil, err
			}
			c.SearchPath.Add(dirOf(name), true)
			c.Add(pkg)
			return pkg, nil
		}
	}

	if c.Flags&FlagNoCache == 0 {
		if pkg := c.Lookup(name); pkg != nil {
			return pkg, nil
		}
	}

	for _, dir := range c.SearchPath.Dirs() {
		pkg, err := c.tryPath(dir, name)
		if err != nil {
			return nil, err
		}
		if pkg != nil {
			c.Add(pkg)
			return pkg, nil
		}
	}

	return nil, nil
}

func (c *Client) tryPath(dir, name string) (*pcpkg.Package, error) {
	if c.Flags&FlagNoUninstalled == 0 {
		uninstalled := dir + "/" + name + "-uninstalled.pc"
		if _, err := os.Stat(uninstalled); err == nil {
			return pcpkg.ReadFile(uninstalled, &c.Global, c.FragmentOptions())
		}
	}

	plain := dir + "/" + name + ".pc"
	if _, err := os.Stat(plain); err == nil {
		return pcpkg.ReadFile(plain, &c.Global, c.FragmentOptions())
	}

	return nil, nil
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}

// NotFoundHint reports the "Perhaps you should add the directory
// containing ..." preamble exactly once per client lifetime, matching
// libpkgconf's pkgconf_pkg_report_graph_error dedup via a static bool.
func (c *Client) NotFoundHint(pkgName string) {
	if c.hintedNotFound {
		return
	}
	c.hintedNotFound = true
	c.ReportError("Package %s was not found in the pkg-config search path.\n", pkgName)
	c.ReportError("Perhaps you should add the directory containing `%s.pc'\n", pkgName)
	c.ReportError("to the PKG_CONFIG_PATH environment variable\n")
}
