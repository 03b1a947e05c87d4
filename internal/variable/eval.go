package variable

import (
	"errors"
	"strings"

	"github.com/pkgconf-go/pkgconf/internal/dlist"
)

// ErrCycle is returned when evaluating a bytecode program would re-enter
// a variable that is already being expanded.
var ErrCycle = errors.New("variable: cycle detected during expansion")

// Scope bundles the global/per-package tables and sysroot configuration
// that Evaluate needs to resolve VAR and SYSROOT operations.
type Scope struct {
	Global *Table
	Local  *Table

	// Sysroot is the client's raw, unprocessed sysroot string.
	Sysroot string

	// FDOSysrootRules and PKGCONF1SysrootRules gate the legacy prefix
	// behaviour in EvaluateTuple (spec §4.D).
	FDOSysrootRules     bool
	PKGCONF1SysrootRules bool
}

// NormalizedSysroot returns the effective sysroot string: the raw
// sysroot is disabled (treated as empty) when it is empty, ".", or "/";
// otherwise it is the raw string with a trailing '/' stripped.
func (s *Scope) NormalizedSysroot() string {
	if !s.SysrootEnabled() {
		return ""
	}
	return strings.TrimSuffix(s.Sysroot, "/")
}

// SysrootEnabled reports whether the raw sysroot string is usable.
func (s *Scope) SysrootEnabled() bool {
	switch s.Sysroot {
	case "", ".", "/":
		return false
	default:
		return true
	}
}

// Result is the outcome of evaluating a Bytecode program.
type Result struct {
	Value      string
	SawSysroot bool
	Truncated  bool
}

// Evaluate interprets bc into an output string using scope for variable
// and sysroot resolution.
//
// VAR references that are missing contribute nothing. A VAR reference
// into a variable that is already mid-expansion (the reentrancy guard
// described in spec §3) fails with ErrCycle. Output is bounded at
// dlist.MaxValueSize; reaching the cap truncates and is reported via
// Result.Truncated rather than as an error.
func Evaluate(bc Bytecode, scope *Scope) (Result, error) {
	var buf dlist.Buffer
	sawSysroot := false

	if err := evalInto(bc, scope, &buf, &sawSysroot); err != nil {
		return Result{}, err
	}

	return Result{
		Value:      buf.String(),
		SawSysroot: sawSysroot,
		Truncated:  buf.Truncated,
	}, nil
}

func evalInto(bc Bytecode, scope *Scope, buf *dlist.Buffer, sawSysroot *bool) error {
	for _, op := range bc {
		switch op.Kind {
		case OpText:
			buf.AppendString(op.Data)

		case OpSysroot:
			buf.AppendString(scope.NormalizedSysroot())
			*sawSysroot = true

		case OpVar:
			v := lookup(scope.Global, scope.Local, op.Data)
			if v == nil {
				continue
			}
			if v.expanding {
				return ErrCycle
			}
			v.expanding = true
			err := evalInto(v.BC, scope, buf, sawSysroot)
			v.expanding = false
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateTuple evaluates bc and additionally applies the legacy sysroot
// prefix rule (spec §4.D "Legacy sysroot prefixing"): when the evaluated
// value begins with '/', the sysroot is enabled, the client does not set
// FDOSysrootRules, and either installed is true or PKGCONF1SysrootRules
// is set, the sysroot is prepended once. Afterwards, if the result shows
// the double-prefix signature (a leading sysroot followed by a second,
// embedded occurrence), the leading one is stripped. That double-prefix
// check is a purely textual heuristic.
func EvaluateTuple(bc Bytecode, scope *Scope, installed bool) (Result, error) {
	res, err := Evaluate(bc, scope)
	if err != nil {
		return Result{}, err
	}

	sysroot := scope.NormalizedSysroot()
	if scope.SysrootEnabled() && !scope.FDOSysrootRules && (installed || scope.PKGCONF1SysrootRules) {
		if strings.HasPrefix(res.Value, "/") && !strings.HasPrefix(res.Value, sysroot) {
			res.Value = sysroot + res.Value
		}
	}

	if sysroot != "" && strings.HasPrefix(res.Value, sysroot) {
		rest := res.Value[len(sysroot):]
		if strings.Contains(rest, sysroot) {
			res.Value = rest
		}
	}

	return res, nil
}
