// Package variable implements the key/value variable table and the
// bytecode compiler/evaluator used to expand "${name}" references in .pc
// values (spec component D).
//
// The teacher solves a structurally similar problem twice: version/parser.go
// is a hand-rolled cursor parser over a small string grammar, and
// version/expr.go evaluates a compiled marker expression recursively
// against an environment with short-circuiting. This package keeps both
// shapes — Compile is the cursor parser, Evaluate is the recursive,
// environment-driven evaluator — but targets the bytecode op stream and
// cycle-detection/sysroot semantics spec §4.D defines instead of PEP 508
// marker evaluation.
package variable

// MaxNameLen bounds a "${name}" reference; anything longer is treated as
// a malformed reference and kept as literal text.
const MaxNameLen = 256

// OpKind identifies a bytecode operation.
type OpKind byte

const (
	OpText OpKind = iota
	OpVar
	OpSysroot
)

// Op is one bytecode operation: literal text, a variable reference, or
// the sysroot marker.
type Op struct {
	Kind OpKind
	Data string // literal text for OpText, variable name for OpVar
}

// Bytecode is a compiled value template: a sequence of operations that
// concatenate to produce the expanded value.
type Bytecode []Op

// sysrootVariableName is the one variable name that compiles to OpSysroot
// instead of OpVar, per spec §3 Bytecode invariants.
const sysrootVariableName = "pc_sysrootdir"

// Compile compiles a value string into a Bytecode program. A value with
// no "${...}" references compiles to a single OpText (or an empty
// program for an empty value). A malformed reference — no closing '}',
// an empty name, or a name longer than MaxNameLen — is emitted as
// literal text verbatim, including its "${" and (if present) "}".
func Compile(value string) Bytecode {
	var ops Bytecode
	var literal []byte

	flush := func() {
		if len(literal) > 0 {
			ops = append(ops, Op{Kind: OpText, Data: string(literal)})
			literal = literal[:0]
		}
	}

	i := 0
	for i < len(value) {
		if value[i] == '$' && i+1 < len(value) && value[i+1] == '{' {
			end := indexByte(value, i+2, '}')
			if end < 0 {
				// Unterminated reference: keep the rest verbatim.
				literal = append(literal, value[i:]...)
				break
			}

			name := value[i+2 : end]
			if name == "" || len(name) > MaxNameLen {
				literal = append(literal, value[i:end+1]...)
				i = end + 1
				continue
			}

			flush()
			if name == sysrootVariableName {
				ops = append(ops, Op{Kind: OpSysroot})
			} else {
				ops = append(ops, Op{Kind: OpVar, Data: name})
			}
			i = end + 1
			continue
		}

		literal = append(literal, value[i])
		i++
	}

	flush()
	return ops
}

func indexByte(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
