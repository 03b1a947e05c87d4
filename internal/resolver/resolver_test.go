package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgconf-go/pkgconf/internal/client"
	"github.com/pkgconf-go/pkgconf/internal/dependency"
	"github.com/pkgconf-go/pkgconf/internal/pcpkg"
	"github.com/pkgconf-go/pkgconf/internal/version"
)

type fakeEnviron map[string]string

func (f fakeEnviron) Getenv(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
}

func newTestClient(t *testing.T, dir string, flags client.Flags) *client.Client {
	t.Helper()
	env := fakeEnviron{"PKG_CONFIG_LIBDIR": dir}
	c, err := client.New(env, flags)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestVerifyDependencySucceeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.pc", "Name: Foo\nVersion: 1.0\n")

	c := newTestClient(t, dir, 0)
	dep := &dependency.Dependency{Package: "foo"}
	pkg, eflags := VerifyDependency(c, dep)
	if !eflags.OK() {
		t.Fatalf("VerifyDependency() eflags = %v, want OK", eflags)
	}
	if pkg.Realname != "Foo" {
		t.Errorf("Realname = %q, want Foo", pkg.Realname)
	}
}

func TestVerifyDependencyNotFound(t *testing.T) {
	dir := t.TempDir()
	c := newTestClient(t, dir, 0)
	dep := &dependency.Dependency{Package: "missing"}
	_, eflags := VerifyDependency(c, dep)
	if eflags&ErrPackageNotFound == 0 {
		t.Errorf("eflags = %v, want ErrPackageNotFound set", eflags)
	}
}

func TestVerifyDependencyVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.pc", "Name: Foo\nVersion: 1.0\n")

	c := newTestClient(t, dir, 0)
	dep := &dependency.Dependency{Package: "foo", Version: "2.0", Compare: version.GreaterEqual}
	_, eflags := VerifyDependency(c, dep)
	if eflags&ErrPackageVersionMismatch == 0 {
		t.Errorf("eflags = %v, want ErrPackageVersionMismatch set", eflags)
	}
}

func TestVerifyDependencyPkgConfigVirtual(t *testing.T) {
	dir := t.TempDir()
	c := newTestClient(t, dir, 0)
	dep := &dependency.Dependency{Package: "pkg-config"}
	pkg, eflags := VerifyDependency(c, dep)
	if !eflags.OK() {
		t.Fatalf("VerifyDependency() eflags = %v, want OK", eflags)
	}
	if pkg.Version != client.SelfVersion {
		t.Errorf("Version = %q, want %q", pkg.Version, client.SelfVersion)
	}
}

func TestVerifyDependencyFallsBackToProvides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "concrete.pc", "Name: Concrete\nVersion: 3.0\nProvides: virtual-thing = 3.0\n")

	c := newTestClient(t, dir, 0)
	// Load concrete.pc into the cache first, the way a traversal would
	// have before reaching a dependency on the thing it provides.
	if _, err := c.Find("concrete"); err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	dep := &dependency.Dependency{Package: "virtual-thing"}
	pkg, eflags := VerifyDependency(c, dep)
	if !eflags.OK() {
		t.Fatalf("VerifyDependency() eflags = %v, want OK", eflags)
	}
	if pkg.Realname != "Concrete" {
		t.Errorf("Realname = %q, want Concrete (the provider)", pkg.Realname)
	}
}

func TestVerifyDependencyNoProvidesSuppressesFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "concrete.pc", "Name: Concrete\nVersion: 3.0\nProvides: virtual-thing = 3.0\n")

	c := newTestClient(t, dir, client.FlagNoProvides)
	if _, err := c.Find("concrete"); err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	dep := &dependency.Dependency{Package: "virtual-thing"}
	_, eflags := VerifyDependency(c, dep)
	if eflags&ErrPackageNotFound == 0 {
		t.Errorf("eflags = %v, want ErrPackageNotFound with FlagNoProvides set", eflags)
	}
}

func TestTraverseVisitsTransitiveRequires(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: b\nLibs: -la\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\nLibs: -lb\n")

	c := newTestClient(t, dir, 0)
	root, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	var visited []string
	eflags := Traverse(c, root, func(pkg *pcpkg.Package, private bool) {
		visited = append(visited, pkg.ID)
	}, -1)
	if !eflags.OK() {
		t.Fatalf("Traverse() eflags = %v, want OK", eflags)
	}
	if len(visited) != 2 || visited[0] != "a" || visited[1] != "b" {
		t.Errorf("visited = %v, want [a b]", visited)
	}
}

func TestTraverseBreaksCycles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: b\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\nRequires: a\n")

	c := newTestClient(t, dir, 0)
	root, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	visits := 0
	eflags := Traverse(c, root, func(pkg *pcpkg.Package, private bool) {
		visits++
	}, -1)
	if !eflags.OK() {
		t.Fatalf("Traverse() eflags = %v, want OK", eflags)
	}
	if visits != 2 {
		t.Errorf("visits = %d, want 2 (a and b each visited once, the cycle back to a suppressed)", visits)
	}
}

func TestTraverseReportsConflict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: b\nConflicts: b\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\n")

	c := newTestClient(t, dir, 0)
	root, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	eflags := Traverse(c, root, nil, -1)
	if eflags&ErrPackageConflict == 0 {
		t.Errorf("eflags = %v, want ErrPackageConflict set", eflags)
	}
}

func TestTraverseIgnoreConflictsSuppressesCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: b\nConflicts: b\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\n")

	c := newTestClient(t, dir, client.FlagSkipConflicts)
	root, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	eflags := Traverse(c, root, nil, -1)
	if eflags&ErrPackageConflict != 0 {
		t.Errorf("eflags = %v, want ErrPackageConflict clear under FlagSkipConflicts", eflags)
	}
}

func TestCFlagsCollectsTransitiveFragments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: b\nCflags: -DA\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\nCflags: -DB\n")

	c := newTestClient(t, dir, 0)
	root, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	cflags, err := CFlags(c, root, -1)
	if err != nil {
		t.Fatalf("CFlags() error = %v", err)
	}
	if cflags.Len() != 2 {
		t.Fatalf("CFlags() len = %d, want 2 (root a's own -DA plus b's -DB)", cflags.Len())
	}
	var data []string
	for _, f := range cflags.Slice() {
		data = append(data, f.Data)
	}
	if data[0] != "A" || data[1] != "B" {
		t.Errorf("CFlags() data = %v, want [A B]", data)
	}
}

func TestLibsStaticFoldsInPrivate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: b\nLibs: -la\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\nLibs: -lb\nLibs.private: -lbpriv\n")

	c := newTestClient(t, dir, client.FlagStatic)
	root, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	libs, err := Libs(c, root, -1)
	if err != nil {
		t.Fatalf("Libs() error = %v", err)
	}
	if libs.Len() != 3 {
		t.Fatalf("Libs() len = %d, want 3 (root a's -la, b's Libs and Libs.private under FlagStatic)", libs.Len())
	}
}

func TestLibsMergesBackSharedDependency(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.pc", "Name: Top\nVersion: 1.0\nRequires: b a\n")
	writeFile(t, dir, "b.pc", "Name: B\nVersion: 1.0\nRequires: x\nLibs: -ly\n")
	writeFile(t, dir, "a.pc", "Name: A\nVersion: 1.0\nRequires: x\nLibs: -lx\n")
	writeFile(t, dir, "x.pc", "Name: X\nVersion: 1.0\nLibs: -lx\n")

	c := newTestClient(t, dir, 0)
	root, err := c.Find("top")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	libs, err := Libs(c, root, -1)
	if err != nil {
		t.Fatalf("Libs() error = %v", err)
	}

	var data []string
	for _, f := range libs.Slice() {
		data = append(data, f.Data)
	}
	want := []string{"y", "x"}
	if len(data) != len(want) || data[0] != want[0] || data[1] != want[1] {
		t.Errorf("Libs() data = %v, want %v (x deduplicated and moved to the end)", data, want)
	}
}

func TestVariableResolvesAgainstSysroot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pc", "prefix=/usr\nName: A\nVersion: 1.0\nLibs: -L${prefix}/lib\n")

	env := fakeEnviron{
		"PKG_CONFIG_LIBDIR":      dir,
		"PKG_CONFIG_SYSROOT_DIR": "/opt/root",
	}
	c, err := client.New(env, client.FlagFDOSysrootRules)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	pkg, err := c.Find("a")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	v, ok := Variable(c, pkg, "prefix")
	if !ok {
		t.Fatal("Variable() ok = false, want true")
	}
	if v != "/usr" {
		t.Errorf("Variable(prefix) = %q, want /usr", v)
	}
}
