// Package equiv implements the gate equivalence library: a set of rewrite
// rules mapping a parameterized gate to an equivalent circuit over other
// gates. The basis translation pass searches this rule set.
package equiv

import (
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/expr"
)

// Key identifies a gate family by name and arity.
type Key struct {
	Name      string
	NumQubits int
}

// KeyFor returns the library key of a gate.
func KeyFor(g circuit.Gate) Key {
	return Key{Name: g.Name(), NumQubits: g.NumQubits()}
}

// Entry is one equivalence: the gate with the given formal parameters equals
// the circuit. Every free symbol in the circuit must be one of Params.
type Entry struct {
	Params  []expr.Symbol
	Circuit *circuit.Circuit
}

// Library holds equivalence rules in insertion order. Insertion order is
// part of the search tie-break, so translation output is deterministic.
type Library struct {
	rules map[Key][]Entry
	keys  []Key
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{rules: make(map[Key][]Entry)}
}

// AddEquivalence registers gate(params...) == c. The circuit must have the
// gate's arity and reference no symbols outside params.
func (l *Library) AddEquivalence(g circuit.Gate, params []expr.Symbol, c *circuit.Circuit) error {
	if g.NumQubits() != c.NumQubits {
		return fmt.Errorf("equiv: rule for %s has %d qubits, gate has %d", g.Name(), c.NumQubits, g.NumQubits())
	}
	if g.NumParams() != len(params) {
		return fmt.Errorf("equiv: rule for %s has %d parameters, gate has %d", g.Name(), len(params), g.NumParams())
	}
	allowed := make(map[expr.Symbol]bool, len(params))
	for _, s := range params {
		allowed[s] = true
	}
	check := func(e expr.Expression) error {
		for _, s := range e.Symbols() {
			if !allowed[s] {
				return fmt.Errorf("equiv: rule for %s uses symbol %s outside its parameters", g.Name(), s.Name())
			}
		}
		return nil
	}
	if err := check(c.GlobalPhase); err != nil {
		return err
	}
	for i := range c.Ops {
		for _, p := range c.Ops[i].Params {
			if err := check(p); err != nil {
				return err
			}
		}
	}
	key := KeyFor(g)
	if _, ok := l.rules[key]; !ok {
		l.keys = append(l.keys, key)
	}
	// the library owns its rule bodies; the caller is free to keep
	// mutating c after registration
	body := deepcopy.Copy(c).(*circuit.Circuit)
	l.rules[key] = append(l.rules[key], Entry{Params: params, Circuit: body})
	return nil
}

// MustAdd is AddEquivalence that panics on error, for building rule tables.
func (l *Library) MustAdd(g circuit.Gate, params []expr.Symbol, c *circuit.Circuit) {
	if err := l.AddEquivalence(g, params, c); err != nil {
		panic(err)
	}
}

// Has reports whether any rule exists for the key.
func (l *Library) Has(key Key) bool {
	_, ok := l.rules[key]
	return ok
}

// Entries returns the rules for a key in insertion order.
func (l *Library) Entries(key Key) []Entry {
	return l.rules[key]
}

// Keys returns all keys in insertion order.
func (l *Library) Keys() []Key {
	return l.keys
}
