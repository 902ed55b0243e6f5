// Package circuit defines the quantum circuit data model: the closed set of
// standard gates, operations with symbolic parameters, and the flat circuit
// representation used as the transpiler's input and output format.
package circuit

// Gate identifies one of the standard gates, a directive, or a control flow
// construct. The set is closed: passes switch on it exhaustively.
type Gate uint8

const (
	GateInvalid Gate = iota

	// one-qubit gates
	GateI
	GateX
	GateY
	GateZ
	GateH
	GateS
	GateSdg
	GateT
	GateTdg
	GateSX
	GateSXdg
	GateRX
	GateRY
	GateRZ
	GateP
	GateU1
	GateU2
	GateU3
	GateU

	// two-qubit gates
	GateCX
	GateCY
	GateCZ
	GateCH
	GateCP
	GateCRX
	GateCRY
	GateCRZ
	GateSwap
	GateISwap
	GateECR
	GateRXX
	GateRYY
	GateRZZ
	GateRZX

	// three-qubit gates
	GateCCX
	GateCSwap

	// directives and non-unitary ops
	GateMeasure
	GateReset
	GateBarrier

	// control flow
	GateIfElse
	GateForLoop

	numGates
)

type gateInfo struct {
	name      string
	numQubits int
	numParams int
	unitary   bool
}

var gateTable = [numGates]gateInfo{
	GateInvalid: {"invalid", 0, 0, false},

	GateI:    {"id", 1, 0, true},
	GateX:    {"x", 1, 0, true},
	GateY:    {"y", 1, 0, true},
	GateZ:    {"z", 1, 0, true},
	GateH:    {"h", 1, 0, true},
	GateS:    {"s", 1, 0, true},
	GateSdg:  {"sdg", 1, 0, true},
	GateT:    {"t", 1, 0, true},
	GateTdg:  {"tdg", 1, 0, true},
	GateSX:   {"sx", 1, 0, true},
	GateSXdg: {"sxdg", 1, 0, true},
	GateRX:   {"rx", 1, 1, true},
	GateRY:   {"ry", 1, 1, true},
	GateRZ:   {"rz", 1, 1, true},
	GateP:    {"p", 1, 1, true},
	GateU1:   {"u1", 1, 1, true},
	GateU2:   {"u2", 1, 2, true},
	GateU3:   {"u3", 1, 3, true},
	GateU:    {"u", 1, 3, true},

	GateCX:    {"cx", 2, 0, true},
	GateCY:    {"cy", 2, 0, true},
	GateCZ:    {"cz", 2, 0, true},
	GateCH:    {"ch", 2, 0, true},
	GateCP:    {"cp", 2, 1, true},
	GateCRX:   {"crx", 2, 1, true},
	GateCRY:   {"cry", 2, 1, true},
	GateCRZ:   {"crz", 2, 1, true},
	GateSwap:  {"swap", 2, 0, true},
	GateISwap: {"iswap", 2, 0, true},
	GateECR:   {"ecr", 2, 0, true},
	GateRXX:   {"rxx", 2, 1, true},
	GateRYY:   {"ryy", 2, 1, true},
	GateRZZ:   {"rzz", 2, 1, true},
	GateRZX:   {"rzx", 2, 1, true},

	GateCCX:   {"ccx", 3, 0, true},
	GateCSwap: {"cswap", 3, 0, true},

	GateMeasure: {"measure", 1, 0, false},
	GateReset:   {"reset", 1, 0, false},
	GateBarrier: {"barrier", 0, 0, false},

	GateIfElse:  {"if_else", 0, 0, false},
	GateForLoop: {"for_loop", 0, 0, false},
}

var gateByName = func() map[string]Gate {
	m := make(map[string]Gate, numGates)
	for g := Gate(1); g < numGates; g++ {
		m[gateTable[g].name] = g
	}
	return m
}()

// Name returns the lowercase OpenQASM-style name of the gate.
func (g Gate) Name() string {
	if g >= numGates {
		return "invalid"
	}
	return gateTable[g].name
}

// NumQubits returns the fixed arity of the gate. Barrier and control flow
// have variable arity and report 0.
func (g Gate) NumQubits() int {
	return gateTable[g].numQubits
}

// NumParams returns the number of angle parameters the gate takes.
func (g Gate) NumParams() int {
	return gateTable[g].numParams
}

// IsUnitary reports whether the gate has a unitary matrix representation.
func (g Gate) IsUnitary() bool {
	return gateTable[g].unitary
}

// IsControlFlow reports whether the gate carries nested circuit blocks.
func (g Gate) IsControlFlow() bool {
	return g == GateIfElse || g == GateForLoop
}

// GateByName looks up a gate by its name.
func GateByName(name string) (Gate, bool) {
	g, ok := gateByName[name]
	return g, ok
}
