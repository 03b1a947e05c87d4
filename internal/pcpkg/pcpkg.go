// Package pcpkg implements the Package record and the ".pc" file parser
// (spec component G). The scan itself does not evaluate anything: it
// compiles Name/Description/Version/URL/License to bytecode and keeps the
// Cflags/Libs/Requires/Conflicts/Provides values as raw text. Resolve
// performs the actual variable expansion and fragment/dependency parsing,
// against a caller-supplied global variable table and sysroot options.
// Parse and ReadFile call Resolve once before returning, so a Package is
// evaluated when it is loaded, not when it is queried; Resolve can be
// called again against a different sysroot or client flags without
// reparsing the file.
//
// Grounded on libpkgconf's pkg.c: pkgconf_pkg_new_from_file scans the file
// line by line, splits each on the first whitespace-or-operator boundary,
// and dispatches on the KEY/OP pair to pkgconf_tuple_parse (`=` or the
// Name/Description/Version/URL/License properties), pkgconf_fragment_parse
// (CFLAGS/LIBS and their .private counterparts), or pkgconf_dependency_parse
// (Requires/Requires.private/Conflicts/Provides). Its "line by line" is
// itself fileio.c's pkgconf_fgetline, which joins backslash-continued
// physical lines and strips unescaped '#' comments before a line ever
// reaches the dispatch table; nextLogicalLine below is that reader ported
// onto bufio.Scanner instead of a fixed-size FILE* buffer. ReadFile keeps
// the same dispatch table but defers the parts of it that depend on the
// variable table to Resolve.
package pcpkg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkgconf-go/pkgconf/internal/dependency"
	"github.com/pkgconf-go/pkgconf/internal/fragment"
	"github.com/pkgconf-go/pkgconf/internal/variable"
)

// Flags records the package-level property bits of spec.md §3's Package
// record.
type Flags uint32

const (
	FlagVirtual Flags = 1 << iota
	FlagCached
	FlagSeen
	FlagUninstalled
	FlagStatic
)

// Package is one parsed (or synthetically constructed) ".pc" record.
type Package struct {
	ID        string
	Filename  string
	PCFiledir string

	Realname    string
	Version     string
	Description string
	URL         string
	License     string

	Vars variable.Table

	CFlags        fragment.List
	CFlagsPrivate fragment.List
	Libs          fragment.List
	LibsPrivate   fragment.List

	Requires        dependency.List
	RequiresPrivate dependency.List
	Conflicts       dependency.List
	Provides        dependency.List

	Flags    Flags
	refcount int

	bc rawProperties
}

// rawProperties holds every property that needs variable expansion,
// captured at parse time and left unevaluated until Resolve runs. The
// single-valued properties are stored as bytecode; the fragment and
// dependency properties are stored as raw text, which Resolve splits and
// compiles token by token.
type rawProperties struct {
	realname, version, description, url, license variable.Bytecode
	cflags, cflagsPrivate                         string
	libs, libsPrivate                              string
	requires, requiresPrivate                      string
	conflicts, provides                            string
}

// Ref increments the package's reference count and returns it, matching
// pkgconf_pkg_ref's "return the same pointer, bump the count" contract.
func (p *Package) Ref() *Package {
	p.refcount++
	return p
}

// Unref decrements the reference count. Go's garbage collector reclaims
// the Package once nothing references it; Unref exists only so cache
// bookkeeping in internal/client can mirror the original's refcounting
// without pretending to free memory manually.
func (p *Package) Unref() {
	p.refcount--
}

func (p *Package) fragmentPropFlags() fragment.PropFlags {
	if p.Flags&FlagUninstalled != 0 {
		return fragment.FlagUninstalled
	}
	return 0
}

func idFromFilename(filename string) string {
	base := filepath.Base(filename)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// ReadFile parses the ".pc" file at path into a new Package, seeding its
// variable table with pcfiledir from the file's parent directory, then
// resolves it against globals.
func ReadFile(path string, globals *variable.Table, opts fragment.Options) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pkg, err := parseFile(f, path)
	if err != nil {
		return nil, err
	}
	if err := pkg.Resolve(globals, opts); err != nil {
		return nil, err
	}
	return pkg, nil
}

// Parse reads a ".pc" document from r, compiling every property to
// bytecode but not yet evaluating it, then resolves it against globals.
// filename need not be a real path on disk; it is used only to derive the
// package id and pcfiledir, which lets tests feed an in-memory reader.
func Parse(r io.Reader, filename string, globals *variable.Table, opts fragment.Options) (*Package, error) {
	pkg, err := parseFile(r, filename)
	if err != nil {
		return nil, err
	}
	if err := pkg.Resolve(globals, opts); err != nil {
		return nil, err
	}
	return pkg, nil
}

func parseFile(r io.Reader, filename string) (*Package, error) {
	pkg := &Package{
		Filename: filename,
		ID:       idFromFilename(filename),
	}
	pkg.Vars = *variable.NewTable()
	pkg.PCFiledir = filepath.Dir(filename)
	pkg.Vars.Set("pcfiledir", pkg.PCFiledir, 0)

	if strings.HasSuffix(idFromFilename(filename), "-uninstalled") {
		pkg.Flags |= FlagUninstalled
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	lineno := 0
	for {
		text, consumed, ok := nextLogicalLine(scanner)
		lineno += consumed
		if !ok {
			break
		}
		if err := parseLine(pkg, text); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return pkg, nil
}

// nextLogicalLine reads the next ".pc" logical line from scanner, the way
// the original's pkgconf_fgetline assembles one out of a raw FILE*: a line
// ending in an unescaped trailing backslash is joined with the next
// physical line (its leading whitespace trimmed first), and an unescaped
// '#' truncates the line as a comment. "\#" yields a literal '#'; any
// other backslash is left untouched along with the character it precedes.
// It reports how many physical lines (scanner.Scan calls) it consumed, so
// callers can keep error line numbers roughly in step.
func nextLogicalLine(scanner *bufio.Scanner) (string, int, bool) {
	if !scanner.Scan() {
		return "", 0, false
	}

	consumed := 1
	var b strings.Builder
	line := scanner.Text()
	for {
		if !appendLogicalChunk(&b, line) {
			break
		}
		if !scanner.Scan() {
			break
		}
		consumed++
		next := scanner.Text()
		j := 0
		for j < len(next) && isLineSpace(next[j]) {
			j++
		}
		line = next[j:]
	}

	return b.String(), consumed, true
}

// appendLogicalChunk appends one physical line's processed content to b.
// It returns true when line ends on an unescaped trailing backslash (a
// continuation marker the caller should join with the next physical
// line), and false when the line ended normally or an unescaped '#'
// truncated it as a comment.
func appendLogicalChunk(b *strings.Builder, line string) bool {
	quoted := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && !quoted:
			quoted = true
		case c == '#' && quoted:
			b.WriteByte('#')
			quoted = false
		case c == '#':
			return false
		default:
			if quoted {
				b.WriteByte('\\')
				quoted = false
			}
			b.WriteByte(c)
		}
	}
	return quoted
}

// Resolve evaluates every bytecode-compiled property against pkg.Vars as
// the local scope and globals as the global scope (plus opts for fragment
// sysroot handling), filling in the derived fields. It may be called more
// than once, e.g. after the caller changes the sysroot or a global
// override, without reparsing the file.
func (p *Package) Resolve(globals *variable.Table, opts fragment.Options) error {
	if globals == nil {
		globals = variable.NewTable()
	}
	scope := &variable.Scope{
		Global:               globals,
		Local:                &p.Vars,
		Sysroot:              opts.Sysroot,
		FDOSysrootRules:      opts.FDOSysrootRules,
		PKGCONF1SysrootRules: opts.PKGCONF1SysrootRules,
	}

	installed := p.Flags&FlagUninstalled == 0
	evalText := func(bc variable.Bytecode) string {
		res, err := variable.EvaluateTuple(bc, scope, installed)
		if err != nil {
			return ""
		}
		return res.Value
	}

	p.Realname = evalText(p.bc.realname)
	p.Version = evalText(p.bc.version)
	p.Description = evalText(p.bc.description)
	p.URL = evalText(p.bc.url)
	p.License = evalText(p.bc.license)

	propFlags := p.fragmentPropFlags()

	p.CFlags = fragment.List{}
	p.CFlagsPrivate = fragment.List{}
	p.Libs = fragment.List{}
	p.LibsPrivate = fragment.List{}
	if err := fragment.Parse(&p.CFlags, scope, opts, p.bc.cflags, propFlags); err != nil {
		return err
	}
	if err := fragment.Parse(&p.CFlagsPrivate, scope, opts, p.bc.cflagsPrivate, propFlags); err != nil {
		return err
	}
	if err := fragment.Parse(&p.Libs, scope, opts, p.bc.libs, propFlags); err != nil {
		return err
	}
	if err := fragment.Parse(&p.LibsPrivate, scope, opts, p.bc.libsPrivate, propFlags); err != nil {
		return err
	}

	p.Requires = dependency.List{}
	p.RequiresPrivate = dependency.List{}
	p.Conflicts = dependency.List{}
	p.Provides = dependency.List{}
	if err := dependency.Parse(&p.Requires, scope, p.bc.requires, 0); err != nil {
		return err
	}
	if err := dependency.Parse(&p.RequiresPrivate, scope, p.bc.requiresPrivate, dependency.FlagPrivate); err != nil {
		return err
	}
	if err := dependency.Parse(&p.Conflicts, scope, p.bc.conflicts, 0); err != nil {
		return err
	}
	if err := dependency.Parse(&p.Provides, scope, p.bc.provides, 0); err != nil {
		return err
	}

	return nil
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '.'
}

func isLineSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

// parseLine splits a single logical ".pc" line (comments already stripped
// and continuations already joined by nextLogicalLine) into KEY OP VALUE
// and dispatches on KEY/OP. Blank lines and lines with no recognised OP
// are silently ignored, matching the original's behavior of ignoring
// unknown key/op pairs rather than erroring. Variable assignments (`=`)
// go straight into pkg.Vars in source order, since later property values
// may reference earlier variables; property assignments (`:`) only
// compile to bytecode here, evaluated later by Resolve.
func parseLine(pkg *Package, line string) error {
	i := 0
	n := len(line)
	for i < n && isLineSpace(line[i]) {
		i++
	}
	if i >= n {
		return nil
	}

	keyStart := i
	for i < n && isKeyChar(line[i]) {
		i++
	}
	key := line[keyStart:i]
	if key == "" {
		return nil
	}

	for i < n && isLineSpace(line[i]) {
		i++
	}
	if i >= n {
		return nil
	}

	op := line[i]
	if op != '=' && op != ':' {
		return nil
	}
	i++

	for i < n && isLineSpace(line[i]) {
		i++
	}
	value := strings.TrimRight(line[i:], " \t\r")

	switch op {
	case '=':
		pkg.Vars.Set(key, value, 0)
		return nil
	case ':':
		compileProperty(pkg, key, value)
		return nil
	}
	return nil
}

func compileProperty(pkg *Package, key, value string) {
	switch strings.ToLower(key) {
	case "name":
		pkg.bc.realname = variable.Compile(value)
		return
	case "description":
		pkg.bc.description = variable.Compile(value)
		return
	case "version":
		pkg.bc.version = variable.Compile(value)
		return
	case "url":
		pkg.bc.url = variable.Compile(value)
		return
	case "license":
		pkg.bc.license = variable.Compile(value)
		return
	case "cflags":
		pkg.bc.cflags = value
		return
	case "cflags.private":
		pkg.bc.cflagsPrivate = value
		return
	case "libs":
		pkg.bc.libs = value
		return
	case "libs.private":
		pkg.bc.libsPrivate = value
		return
	}

	switch key {
	case "Requires":
		pkg.bc.requires = value
	case "Requires.private":
		pkg.bc.requiresPrivate = value
	case "Conflicts":
		pkg.bc.conflicts = value
	case "Provides":
		pkg.bc.provides = value
	}
}
