package variable

// Flags on a Variable.
const (
	// FlagOverride marks a global variable as taking precedence over a
	// same-named per-package variable (spec §4.D lookup order).
	FlagOverride uint32 = 1 << iota
)

// Variable is a single key/value entry: the value is stored compiled,
// not evaluated, so the same package can be evaluated against different
// sysroots or flags without reparsing (spec §4.G).
type Variable struct {
	Key   string
	BC    Bytecode
	Flags uint32

	expanding bool
}

// Table is a key/value store of Variables, used both as a package's local
// table and as the client's global table.
type Table struct {
	order []string
	vars  map[string]*Variable
}

// NewTable constructs an empty Table.
func NewTable() *Table {
	return &Table{vars: make(map[string]*Variable)}
}

// Set compiles value and stores (or replaces) the variable named key.
// Re-definition mutates the existing Variable in place when one exists,
// matching the teacher's ReadRopefile/WriteRopefile idiom of replacing
// state wholesale rather than layering patches.
func (t *Table) Set(key, value string, flags uint32) *Variable {
	if t.vars == nil {
		t.vars = make(map[string]*Variable)
	}
	if v, ok := t.vars[key]; ok {
		v.BC = Compile(value)
		v.Flags = flags
		return v
	}
	v := &Variable{Key: key, BC: Compile(value), Flags: flags}
	t.vars[key] = v
	t.order = append(t.order, key)
	return v
}

// SetRaw stores a variable whose bytecode the caller has already
// compiled.
func (t *Table) SetRaw(key string, bc Bytecode, flags uint32) *Variable {
	if t.vars == nil {
		t.vars = make(map[string]*Variable)
	}
	if v, ok := t.vars[key]; ok {
		v.BC = bc
		v.Flags = flags
		return v
	}
	v := &Variable{Key: key, BC: bc, Flags: flags}
	t.vars[key] = v
	t.order = append(t.order, key)
	return v
}

// Get returns the variable named key, or nil.
func (t *Table) Get(key string) *Variable {
	if t == nil || t.vars == nil {
		return nil
	}
	return t.vars[key]
}

// Keys returns variable names in insertion order.
func (t *Table) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// lookup implements the shadowing order of spec §4.D: global overrides >
// per-package table > global non-override.
func lookup(global, local *Table, name string) *Variable {
	if g := global.Get(name); g != nil && g.Flags&FlagOverride != 0 {
		return g
	}
	if l := local.Get(name); l != nil {
		return l
	}
	return global.Get(name)
}
