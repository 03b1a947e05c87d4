package fragment

import (
	"strings"

	"github.com/pkgconf-go/pkgconf/internal/variable"
)

// Options carries the client-level settings that affect how a fragment is
// added: the sysroot (if any) and the two legacy-compatibility switches
// that gate automatic sysroot injection (spec §4.D/§4.E).
type Options struct {
	Sysroot              string
	FDOSysrootRules      bool
	PKGCONF1SysrootRules bool

	// DontMergeSpecial disables the "attach to the previous unmergeable
	// fragment's children" behaviour entirely.
	DontMergeSpecial bool
}

// Parse splits value into words, combines a greedy bare flag with the
// following word, and adds each resulting token to list in order.
func Parse(list *List, scope *variable.Scope, opts Options, value string, propFlags PropFlags) error {
	tokens, err := ArgvSplit(value)
	if err != nil {
		return err
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if isGreedy(tok) && i+1 < len(tokens) {
			Add(list, scope, opts, tok+tokens[i+1], propFlags)
			i++
			continue
		}
		Add(list, scope, opts, tok, propFlags)
	}

	return nil
}

// Add expands tok's variable references and appends the resulting
// fragment (or attaches it as the child of the list's trailing groupable
// fragment) to list.
//
// A cycle detected while expanding tok is swallowed rather than
// propagated: the original drops the fragment silently in this case, and
// every other token in the same value should still be processed.
func Add(list *List, scope *variable.Scope, opts Options, tok string, propFlags PropFlags) {
	res, err := variable.Evaluate(variable.Compile(tok), scope)
	if err != nil {
		return
	}

	value := res.Value
	if value == "" {
		return
	}
	sawSysroot := res.SawSysroot

	target := list
	if back := list.Back(); back != nil && !opts.DontMergeSpecial {
		parent := back.Value
		if parent.Type == 0 && !parent.Terminated && isUnmergeable(parent.Data) {
			if isGroupable(parent.Data) {
				target = &parent.Children
			}
			if isTerminus(value) {
				parent.Terminated = true
			}
		}
	}

	frag := &Fragment{}

	if len(value) > 1 && !isSpecial(value) {
		frag.Type = value[1]
		body := value[2:]

		if shouldInjectSysroot(opts, value, sawSysroot, propFlags) {
			frag.Data = opts.Sysroot + body
		} else {
			frag.Data = body
		}
	} else {
		if opts.Sysroot != "" {
			if back := list.Back(); back != nil {
				last := back.Value
				if shouldInjectSysrootChild(opts, last, value, sawSysroot, propFlags) {
					value = opts.Sysroot + value
				}
			}
		}

		frag.Type = 0
		frag.Data = value
	}

	target.PushBack(frag)
}

func shouldInjectSysroot(opts Options, value string, sawSysroot bool, propFlags PropFlags) bool {
	if opts.FDOSysrootRules {
		return false
	}
	if propFlags&FlagUninstalled != 0 && !opts.PKGCONF1SysrootRules {
		return false
	}
	if opts.Sysroot == "" {
		return false
	}
	if sawSysroot {
		return false
	}
	if !shouldCheckSysroot(value) {
		return false
	}
	if strings.HasPrefix(value[2:], opts.Sysroot) {
		return false
	}
	return true
}

func shouldInjectSysrootChild(opts Options, last *Fragment, value string, sawSysroot bool, propFlags PropFlags) bool {
	if opts.FDOSysrootRules {
		return false
	}
	if propFlags&FlagUninstalled != 0 && !opts.PKGCONF1SysrootRules {
		return false
	}
	if last.Type != 0 {
		return false
	}
	if opts.Sysroot == "" {
		return false
	}
	if sawSysroot {
		return false
	}
	if !shouldCheckSysroot(last.Data) {
		return false
	}
	if strings.HasPrefix(value, opts.Sysroot) {
		return false
	}
	return true
}
