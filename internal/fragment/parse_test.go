package fragment

import (
	"testing"

	"github.com/pkgconf-go/pkgconf/internal/variable"
)

func newScope() *variable.Scope {
	return &variable.Scope{Global: variable.NewTable(), Local: variable.NewTable()}
}

func TestParseBasicFlags(t *testing.T) {
	var list List
	if err := Parse(&list, newScope(), Options{}, "-I/usr/include -DFOO -lfoo", 0); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if list.Len() != 3 {
		t.Fatalf("Parse() produced %d fragments, want 3", list.Len())
	}
	n := list.Front()
	if n.Value.Type != 'I' || n.Value.Data != "/usr/include" {
		t.Errorf("fragment[0] = %+v", n.Value)
	}
	n = n.Next()
	if n.Value.Type != 'D' || n.Value.Data != "FOO" {
		t.Errorf("fragment[1] = %+v", n.Value)
	}
	n = n.Next()
	if n.Value.Type != 'l' || n.Value.Data != "foo" {
		t.Errorf("fragment[2] = %+v", n.Value)
	}
}

func TestParseGreedyCombinesNextWord(t *testing.T) {
	var list List
	if err := Parse(&list, newScope(), Options{}, "-I /usr/include", 0); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("Parse() produced %d fragments, want 1", list.Len())
	}
	f := list.Front().Value
	if f.Type != 'I' || f.Data != "/usr/include" {
		t.Errorf("fragment = %+v", f)
	}
}

func TestParseGroupableAccumulatesChildren(t *testing.T) {
	var list List
	err := Parse(&list, newScope(), Options{}, "-Wl,--start-group -lfoo -lbar -Wl,--end-group", 0)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("Parse() produced %d top-level fragments, want 1 (got %d)", list.Len(), list.Len())
	}
	parent := list.Front().Value
	if !parent.Terminated {
		t.Error("group parent not marked Terminated")
	}
	// The terminus token itself is appended as the group's last child: by
	// the time it is processed, target already points at parent.Children.
	if parent.Children.Len() != 3 {
		t.Fatalf("group has %d children, want 3", parent.Children.Len())
	}
}

func TestAddSysrootInjection(t *testing.T) {
	var list List
	opts := Options{Sysroot: "/opt/root"}
	if err := Parse(&list, newScope(), opts, "-I/usr/include", 0); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f := list.Front().Value
	if want := "/opt/root/usr/include"; f.Data != want {
		t.Errorf("fragment.Data = %q, want %q", f.Data, want)
	}
}

func TestAddSysrootNotInjectedWhenFDORules(t *testing.T) {
	var list List
	opts := Options{Sysroot: "/opt/root", FDOSysrootRules: true}
	if err := Parse(&list, newScope(), opts, "-I/usr/include", 0); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f := list.Front().Value
	if want := "/usr/include"; f.Data != want {
		t.Errorf("fragment.Data = %q, want %q", f.Data, want)
	}
}

func TestAddSysrootNotInjectedForUninstalledByDefault(t *testing.T) {
	var list List
	opts := Options{Sysroot: "/opt/root"}
	if err := Parse(&list, newScope(), opts, "-I/usr/include", FlagUninstalled); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f := list.Front().Value
	if want := "/usr/include"; f.Data != want {
		t.Errorf("fragment.Data = %q, want %q", f.Data, want)
	}
}

func TestAddSysrootInjectedForUninstalledWithPkgconf1Rules(t *testing.T) {
	var list List
	opts := Options{Sysroot: "/opt/root", PKGCONF1SysrootRules: true}
	if err := Parse(&list, newScope(), opts, "-I/usr/include", FlagUninstalled); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	f := list.Front().Value
	if want := "/opt/root/usr/include"; f.Data != want {
		t.Errorf("fragment.Data = %q, want %q", f.Data, want)
	}
}

func TestAddSysrootChildInjection(t *testing.T) {
	// -isystem is groupable, so the directory that follows it becomes its
	// child rather than a sibling fragment.
	var list List
	opts := Options{Sysroot: "/opt/root"}
	if err := Parse(&list, newScope(), opts, "-isystem /usr/include", 0); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("Parse() produced %d top-level fragments, want 1", list.Len())
	}
	parent := list.Front().Value
	if parent.Children.Len() != 1 {
		t.Fatalf("parent has %d children, want 1", parent.Children.Len())
	}
	child := parent.Children.Front().Value
	if want := "/opt/root/usr/include"; child.Data != want {
		t.Errorf("child fragment.Data = %q, want %q", child.Data, want)
	}
}

func TestAddSkipsEmptyExpansion(t *testing.T) {
	var list List
	scope := newScope()
	scope.Global.Set("EMPTY", "", 0)
	if err := Parse(&list, scope, Options{}, "${EMPTY}", 0); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("Parse() produced %d fragments, want 0", list.Len())
	}
}
