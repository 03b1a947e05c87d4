package pcpkg

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkgconf-go/pkgconf/internal/dependency"
	"github.com/pkgconf-go/pkgconf/internal/dlist"
	"github.com/pkgconf-go/pkgconf/internal/fragment"
)

// Write serialises pkg back to the ".pc" text format, using its already
// resolved (evaluated) fields rather than the raw bytecode kept for Resolve.
// libpkgconf itself has no ".pc" writer; this exists only so the
// round-trip test (parse, write, reparse, compare resolved fields) has
// something to call, the way ReadRopefile/WriteRopefile round-trip the
// teacher's project file.
func Write(w io.Writer, pkg *Package) error {
	writeField := func(name, value string) error {
		if value == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s: %s\n", name, value)
		return err
	}

	if err := writeField("Name", pkg.Realname); err != nil {
		return err
	}
	if err := writeField("Description", pkg.Description); err != nil {
		return err
	}
	if err := writeField("URL", pkg.URL); err != nil {
		return err
	}
	if err := writeField("License", pkg.License); err != nil {
		return err
	}
	if err := writeField("Version", pkg.Version); err != nil {
		return err
	}

	if err := writeDeps(w, "Requires", &pkg.Requires); err != nil {
		return err
	}
	if err := writeDeps(w, "Requires.private", &pkg.RequiresPrivate); err != nil {
		return err
	}
	if err := writeDeps(w, "Conflicts", &pkg.Conflicts); err != nil {
		return err
	}
	if err := writeDeps(w, "Provides", &pkg.Provides); err != nil {
		return err
	}

	if err := writeFragments(w, "CFLAGS", &pkg.CFlags); err != nil {
		return err
	}
	if err := writeFragments(w, "CFLAGS.private", &pkg.CFlagsPrivate); err != nil {
		return err
	}
	if err := writeFragments(w, "LIBS", &pkg.Libs); err != nil {
		return err
	}
	if err := writeFragments(w, "LIBS.private", &pkg.LibsPrivate); err != nil {
		return err
	}

	return nil
}

func writeDeps(w io.Writer, name string, list *dependency.List) error {
	if list.Len() == 0 {
		return nil
	}
	var parts []string
	list.Each(func(n *dlist.Node[*dependency.Dependency]) {
		parts = append(parts, n.Value.String())
	})
	_, err := fmt.Fprintf(w, "%s: %s\n", name, strings.Join(parts, ", "))
	return err
}

func writeFragments(w io.Writer, name string, list *fragment.List) error {
	if list.Len() == 0 {
		return nil
	}
	rendered := fragment.Render(list, fragment.DefaultDelim, nil)
	if rendered == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", name, rendered)
	return err
}
