package circuit

import (
	"fmt"

	"github.com/qompiler/qompiler/expr"
)

// Condition is a classical condition attached to an operation: the operation
// executes only when the clbit holds the given value.
type Condition struct {
	Clbit int
	Value bool
}

// Operation is one instruction of a circuit: a gate applied to a list of
// qubits, with optional symbolic parameters, classical condition, nested
// control flow blocks, and a calibration marker.
type Operation struct {
	Gate   Gate
	Qubits []int
	Clbits []int
	Params []expr.Expression

	Condition *Condition
	Blocks    []*Circuit

	// Calibrated marks an operation backed by a custom pulse calibration.
	// Optimization passes must not touch it.
	Calibrated bool
}

// BoundParams evaluates all parameters to floats. The second return is false
// if any parameter still contains a free symbol.
func (op *Operation) BoundParams() ([]float64, bool) {
	out := make([]float64, len(op.Params))
	for i, p := range op.Params {
		v, ok := p.Const()
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// Copy returns a deep copy of the operation.
func (op *Operation) Copy() Operation {
	c := Operation{
		Gate:       op.Gate,
		Qubits:     append([]int(nil), op.Qubits...),
		Clbits:     append([]int(nil), op.Clbits...),
		Params:     make([]expr.Expression, len(op.Params)),
		Calibrated: op.Calibrated,
	}
	for i, p := range op.Params {
		c.Params[i] = p.Clone()
	}
	if op.Condition != nil {
		cond := *op.Condition
		c.Condition = &cond
	}
	if len(op.Blocks) > 0 {
		c.Blocks = make([]*Circuit, len(op.Blocks))
		for i, b := range op.Blocks {
			c.Blocks[i] = b.Copy()
		}
	}
	return c
}

// Circuit is a flat list of operations over a fixed set of qubits and
// clbits, plus a symbolic global phase.
type Circuit struct {
	NumQubits   int
	NumClbits   int
	GlobalPhase expr.Expression
	Ops         []Operation
}

// New returns an empty circuit over the given registers.
func New(numQubits, numClbits int) *Circuit {
	return &Circuit{NumQubits: numQubits, NumClbits: numClbits}
}

// Append adds an operation, checking arity and parameter count.
func (c *Circuit) Append(g Gate, qubits []int, params ...expr.Expression) error {
	if n := g.NumQubits(); n != 0 && len(qubits) != n {
		return fmt.Errorf("circuit: gate %s expects %d qubits, got %d", g.Name(), n, len(qubits))
	}
	if g.NumParams() != len(params) {
		return fmt.Errorf("circuit: gate %s expects %d parameters, got %d", g.Name(), g.NumParams(), len(params))
	}
	for _, q := range qubits {
		if q < 0 || q >= c.NumQubits {
			return fmt.Errorf("circuit: qubit %d out of range [0, %d)", q, c.NumQubits)
		}
	}
	c.Ops = append(c.Ops, Operation{Gate: g, Qubits: qubits, Params: params})
	return nil
}

// MustAppend is Append that panics on error. It is the builder used when the
// operands are known to be valid, such as equivalence rule construction.
func (c *Circuit) MustAppend(g Gate, qubits []int, params ...expr.Expression) {
	if err := c.Append(g, qubits, params...); err != nil {
		panic(err)
	}
}

// Measure appends a measurement of qubit q into clbit cb.
func (c *Circuit) Measure(q, cb int) error {
	if cb < 0 || cb >= c.NumClbits {
		return fmt.Errorf("circuit: clbit %d out of range [0, %d)", cb, c.NumClbits)
	}
	if q < 0 || q >= c.NumQubits {
		return fmt.Errorf("circuit: qubit %d out of range [0, %d)", q, c.NumQubits)
	}
	c.Ops = append(c.Ops, Operation{Gate: GateMeasure, Qubits: []int{q}, Clbits: []int{cb}})
	return nil
}

// AddGlobalPhase accumulates phase onto the circuit's global phase.
func (c *Circuit) AddGlobalPhase(phase expr.Expression) {
	c.GlobalPhase = c.GlobalPhase.Add(phase)
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	out := &Circuit{
		NumQubits:   c.NumQubits,
		NumClbits:   c.NumClbits,
		GlobalPhase: c.GlobalPhase.Clone(),
		Ops:         make([]Operation, len(c.Ops)),
	}
	for i := range c.Ops {
		out.Ops[i] = c.Ops[i].Copy()
	}
	return out
}

// CountOps returns the number of operations per gate name, recursing into
// control flow blocks.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	c.countOpsInto(counts)
	return counts
}

func (c *Circuit) countOpsInto(counts map[string]int) {
	for i := range c.Ops {
		op := &c.Ops[i]
		counts[op.Gate.Name()]++
		for _, b := range op.Blocks {
			b.countOpsInto(counts)
		}
	}
}
