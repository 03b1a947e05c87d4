package fragment

import "github.com/pkgconf-go/pkgconf/internal/dlist"

// DefaultDelim is the separator Render uses between top-level fragments
// and between a fragment and its children when no explicit delimiter is
// requested.
const DefaultDelim = ' '

// Renderer renders a single fragment (and, recursively, its children)
// into buf. The default renderer produces a POSIX shell-escaped flag
// string; MSVCRenderer is the alternate form named in spec §4.E.
type Renderer interface {
	Render(buf *dlist.Buffer, frag *Fragment, delim byte)
}

// Render renders list into a single string, separating fragments with
// delim. renderer may be nil, in which case ShellRenderer is used.
func Render(list *List, delim byte, renderer Renderer) string {
	if renderer == nil {
		renderer = ShellRenderer{}
	}

	var buf dlist.Buffer
	first := true
	list.Each(func(n *node) {
		if !first {
			buf.PushByte(delim)
		}
		first = false
		renderer.Render(&buf, n.Value, delim)
	})
	return buf.String()
}

// ShellRenderer is the default Renderer: "-%c" (if typed) followed by the
// shell-escaped data, with children separated by delim and recursively
// rendered the same way.
type ShellRenderer struct{}

func (ShellRenderer) Render(buf *dlist.Buffer, frag *Fragment, delim byte) {
	if frag.Type != 0 {
		buf.Appendf("-%c", frag.Type)
	}
	quoteShell(buf, frag.Data)

	frag.Children.Each(func(n *node) {
		buf.PushByte(delim)
		ShellRenderer{}.Render(buf, n.Value, delim)
	})
}

// quoteShell backslash-escapes bytes that are significant to a POSIX
// shell or are otherwise unprintable, matching libpkgconf's fragment
// quoting spans.
func quoteShell(buf *dlist.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if needsShellEscape(c) {
			buf.PushByte('\\')
		}
		buf.PushByte(c)
	}
}

func needsShellEscape(c byte) bool {
	switch {
	case c <= 0x1f:
		return true
	case c >= ' ' && c <= '#':
		return true
	case c >= '%' && c <= '\'':
		return true
	case c == '*':
		return true
	case c >= ';' && c <= '<':
		return true
	case c >= '>' && c <= '?':
		return true
	case c >= '[' && c <= ']':
		return true
	case c == '`':
		return true
	case c >= '{' && c <= '}':
		return true
	case c >= 0x7f:
		return true
	default:
		return false
	}
}

// MSVCRenderer renders fragments in cl.exe/link.exe flag style: "/I",
// "/libpath:", ".lib" suffixed library names, and "/D" defines. It is
// intended to be used together with FilterMSVCTypes, since MSVC has no
// equivalent for groupable linker-script fragments.
type MSVCRenderer struct{}

func (r MSVCRenderer) Render(buf *dlist.Buffer, frag *Fragment, delim byte) {
	switch frag.Type {
	case 'I':
		buf.AppendString("/I")
		quoteShell(buf, frag.Data)
	case 'L':
		buf.AppendString("/libpath:")
		quoteShell(buf, frag.Data)
	case 'l':
		quoteShell(buf, frag.Data)
		buf.AppendString(".lib")
	case 'D':
		buf.AppendString("/D")
		quoteShell(buf, frag.Data)
	default:
		quoteShell(buf, frag.Data)
	}

	frag.Children.Each(func(n *node) {
		buf.PushByte(delim)
		r.Render(buf, n.Value, delim)
	})
}

// FilterMSVCTypes returns a predicate suitable for Filter that keeps only
// the fragment types MSVCRenderer knows how to render.
func FilterMSVCTypes() func(*Fragment) bool {
	return func(f *Fragment) bool {
		switch f.Type {
		case 'I', 'L', 'l', 'D':
			return true
		default:
			return false
		}
	}
}
