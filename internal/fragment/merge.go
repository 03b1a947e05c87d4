package fragment

import "github.com/pkgconf-go/pkgconf/internal/pathlist"

// canMergeBack reports whether an existing fragment equal to base may be
// deleted and replaced (e.g. to move a library to the end of the link
// line). -l is mergeback-able unless the new copy is private; -F, -L, -I
// never are, since their ordering is significant.
func canMergeBack(base *Fragment, isPrivate bool) bool {
	switch base.Type {
	case 'l':
		return !isPrivate
	case 'F', 'L', 'I':
		return false
	default:
		return true
	}
}

// canMerge reports whether base may be deduplicated against an identical
// fragment already present in the destination list.
func canMerge(base *Fragment, isPrivate bool) bool {
	if isPrivate {
		return false
	}
	if base.Children.Len() > 0 {
		return false
	}
	return isUnmergeable(base.Data)
}

// findNode searches list tail-to-head for a fragment with the same type
// and data as base.
func findNode(list *List, base *Fragment) *node {
	for n := list.Back(); n != nil; n = n.Prev() {
		f := n.Value
		if f.Type != base.Type {
			continue
		}
		if f.Data == base.Data {
			return n
		}
	}
	return nil
}

func exists(list *List, base *Fragment, isPrivate bool) *node {
	if !canMergeBack(base, isPrivate) {
		return nil
	}
	if !canMerge(base, isPrivate) {
		return nil
	}
	return findNode(list, base)
}

// shouldMerge reports whether the existing match found by exists should
// actually be removed in favour of the incoming copy. A match directly
// preceded by an ordering-significant fragment (-l, -L, -I) is always
// re-added at the new position; otherwise it is only re-added if the
// preceding fragment shares its type (or is itself opaque).
func shouldMerge(n *node) bool {
	prev := n.Prev()
	if prev == nil {
		return true
	}
	parent := prev.Value
	switch parent.Type {
	case 'l', 'L', 'I':
		return true
	default:
		return n.Value.Type == 0 || parent.Type == n.Value.Type
	}
}

// Copy appends a copy of base to dest, first deleting a prior mergeable
// copy of it ("mergeback") so the fragment ends up ordered last.
func Copy(dest *List, base *Fragment, isPrivate bool) {
	if n := exists(dest, base, isPrivate); n != nil {
		if shouldMerge(n) {
			dest.Remove(n)
		}
	} else if !isPrivate && !canMergeBack(base, isPrivate) && findNode(dest, base) != nil {
		return
	}

	frag := &Fragment{Type: base.Type, Data: base.Data}
	CopyList(&frag.Children, &base.Children)
	dest.PushBack(frag)
}

// CopyList copies every fragment of src into dest, always as a private
// copy (children are never subject to further mergeback once nested).
func CopyList(dest, src *List) {
	src.Each(func(n *node) {
		Copy(dest, n.Value, true)
	})
}

// Filter copies the fragments of src for which keep returns true into
// dest. isPrivate is forwarded to Copy: the public cflags/libs collectors
// pass false so mergeback and dedup apply, while *.private/static passes
// pass true.
func Filter(dest, src *List, keep func(*Fragment) bool, isPrivate bool) {
	src.Each(func(n *node) {
		if keep(n.Value) {
			Copy(dest, n.Value, isPrivate)
		}
	})
}

// HasSystemDir reports whether frag names a directory present in the
// relevant filter list: includeDirs for -I fragments, libDirs for -L
// fragments. Any other fragment type is never a system directory.
func HasSystemDir(includeDirs, libDirs *pathlist.List, frag *Fragment) bool {
	switch frag.Type {
	case 'I':
		return includeDirs != nil && includeDirs.MatchList(frag.Data)
	case 'L':
		return libDirs != nil && libDirs.MatchList(frag.Data)
	default:
		return false
	}
}

// FilterSystemDirs returns a predicate suitable for Filter that drops
// fragments naming a system include/library directory, matching the
// "--keep-system-cflags is not given" default.
func FilterSystemDirs(includeDirs, libDirs *pathlist.List) func(*Fragment) bool {
	return func(f *Fragment) bool {
		return !HasSystemDir(includeDirs, libDirs, f)
	}
}
