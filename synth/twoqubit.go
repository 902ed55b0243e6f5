package synth

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/expr"
)

// ErrUnsupportedBasis is returned when the decomposer cannot express its
// output in the requested gates.
var ErrUnsupportedBasis = errors.New("synth: unsupported synthesis basis")

// TwoQubitDecomposer resynthesizes 4x4 unitaries into a two-qubit basis
// gate (cx or cz) plus one-qubit gates in an Euler basis.
type TwoQubitDecomposer struct {
	Gate  circuit.Gate
	Euler EulerBasis
}

// NewTwoQubitDecomposer returns a decomposer emitting the given two-qubit
// gate. Only cx and cz are supported.
func NewTwoQubitDecomposer(g circuit.Gate, euler EulerBasis) (*TwoQubitDecomposer, error) {
	if g != circuit.GateCX && g != circuit.GateCZ {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBasis, g.Name())
	}
	return &TwoQubitDecomposer{Gate: g, Euler: euler}, nil
}

// axis identifies one of the three canonical interaction axes.
type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

var axisGate = [3]circuit.Gate{circuit.GateX, circuit.GateY, circuit.GateZ}

// seqBuilder accumulates one-qubit matrices per wire and flushes them as
// Euler-decomposed gates whenever a two-qubit gate is emitted.
type seqBuilder struct {
	euler   OneQubitDecomposer
	gate2q  circuit.Gate
	out     *circuit.Circuit
	pending [2]*mat.CDense
	phase   float64
	twoQ    int
}

func newSeqBuilder(gate2q circuit.Gate, euler EulerBasis) *seqBuilder {
	return &seqBuilder{
		euler:   OneQubitDecomposer{Basis: euler},
		gate2q:  gate2q,
		out:     circuit.New(2, 0),
		pending: [2]*mat.CDense{Eye(2), Eye(2)},
	}
}

func (b *seqBuilder) gate1(q int, g circuit.Gate, params ...float64) {
	m, err := g.Matrix(params)
	if err != nil {
		panic(err)
	}
	b.mat1(q, m)
}

func (b *seqBuilder) mat1(q int, m *mat.CDense) {
	b.pending[q] = Mul(m, b.pending[q])
}

func (b *seqBuilder) addPhase(p float64) {
	b.phase += p
}

func (b *seqBuilder) flush(q int) {
	if AllClose(b.pending[q], Eye(2), 1e-12) {
		b.pending[q] = Eye(2)
		return
	}
	c := b.euler.Circuit(b.pending[q])
	for i := range c.Ops {
		op := c.Ops[i].Copy()
		op.Qubits = []int{q}
		b.out.Ops = append(b.out.Ops, op)
	}
	b.phase += c.GlobalPhase.MustConst()
	b.pending[q] = Eye(2)
}

// basis2q emits one cx(0,1), translating through cz when that is the basis.
func (b *seqBuilder) basis2q() {
	if b.gate2q == circuit.GateCZ {
		// cx = h(1) cz h(1)
		b.gate1(1, circuit.GateH)
		b.flush(0)
		b.flush(1)
		b.out.MustAppend(circuit.GateCZ, []int{0, 1})
		b.twoQ++
		b.gate1(1, circuit.GateH)
		return
	}
	b.flush(0)
	b.flush(1)
	b.out.MustAppend(circuit.GateCX, []int{0, 1})
	b.twoQ++
}

func (b *seqBuilder) finish() *circuit.Circuit {
	b.flush(0)
	b.flush(1)
	b.out.AddGlobalPhase(expr.NewConstant(b.phase))
	return b.out
}

// Circuit synthesizes u into the decomposer's basis. The returned circuit
// reproduces u exactly, global phase included.
func (d *TwoQubitDecomposer) Circuit(u *mat.CDense) (*circuit.Circuit, error) {
	w, err := DecomposeWeyl(u)
	if err != nil {
		return nil, err
	}
	b := newSeqBuilder(d.Gate, d.Euler)
	b.addPhase(w.Phase)

	// inner local factors first
	b.mat1(0, w.R2)
	b.mat1(1, w.L2)

	if err := emitCanonical(b, w.Tx, w.Ty, w.Tz); err != nil {
		return nil, err
	}

	b.mat1(0, w.R1)
	b.mat1(1, w.L1)
	return b.finish(), nil
}

// NumBasisGates reports how many two-qubit basis gates synthesis of u will
// use, without building the circuit.
func (d *TwoQubitDecomposer) NumBasisGates(u *mat.CDense) (int, error) {
	w, err := DecomposeWeyl(u)
	if err != nil {
		return 0, err
	}
	ts := [3]float64{w.Tx, w.Ty, w.Tz}
	zero, half := classify(ts)
	switch {
	case zero == 3:
		return 0, nil
	case zero == 2 && half == 1:
		return 1, nil
	case zero >= 1:
		return 2, nil
	}
	return 4, nil
}

// classify counts coordinates that are 0 resp. pi/2 modulo pi.
func classify(ts [3]float64) (zero, half int) {
	for _, t := range ts {
		r, _ := modPi(t)
		if math.Abs(r) < angleTol {
			zero++
		} else if math.Abs(math.Abs(r)-math.Pi/2) < angleTol {
			half++
		}
	}
	return zero, half
}

// emitCanonical appends exp(-i/2 (tx*XX + ty*YY + tz*ZZ)) to the builder.
func emitCanonical(b *seqBuilder, tx, ty, tz float64) error {
	ts := [3]float64{tx, ty, tz}
	zero, half := classify(ts)

	switch {
	case zero == 3:
		for ax := axisX; ax <= axisZ; ax++ {
			_, m := modPi(ts[ax])
			emitAxisMultiple(b, ax, m)
		}
		return nil

	case zero == 2 && half == 1:
		for ax := axisX; ax <= axisZ; ax++ {
			r, m := modPi(ts[ax])
			if math.Abs(r) < angleTol {
				emitAxisMultiple(b, ax, m)
				continue
			}
			// t = m*pi + r with r = ±pi/2; fold a negative half turn
			// into one more pi multiple
			if r < 0 {
				m--
			}
			emitAxisMultiple(b, ax, m)
			emitHalfTurn(b, ax)
		}
		return nil

	case zero >= 1:
		// peel the axis that is a multiple of pi, emit the other two as
		// one conjugated two-axis block
		peel := axisX
		for ax := axisX; ax <= axisZ; ax++ {
			if r, _ := modPi(ts[ax]); math.Abs(r) < angleTol {
				peel = ax
				break
			}
		}
		_, m := modPi(ts[peel])
		emitAxisMultiple(b, peel, m)
		switch peel {
		case axisZ:
			emitXYBlock(b, ts[axisX], ts[axisY])
		case axisY:
			emitXZBlock(b, ts[axisX], ts[axisZ])
		default:
			emitYZBlock(b, ts[axisY], ts[axisZ])
		}
		return nil
	}

	// generic: an xz block and a yy block, four basis gates
	emitXYBlock(b, 0, ty)
	emitXZBlock(b, tx, tz)
	return nil
}

// emitAxisMultiple appends exp(-i*m*pi/2 * axis⊗axis): a phase and, for odd
// m, the axis gate on both qubits.
func emitAxisMultiple(b *seqBuilder, ax axis, m int) {
	if m == 0 {
		return
	}
	b.addPhase(-float64(m) * math.Pi / 2)
	if m%2 != 0 {
		b.gate1(0, axisGate[ax])
		b.gate1(1, axisGate[ax])
	}
}

// emitHalfTurn appends exp(-i*pi/4 * axis⊗axis) with one basis gate:
// exp(-i*pi/4 ZZ) = e^{-i*pi/4} p(pi/2)⊗p(pi/2) · cz, conjugated onto the
// requested axis.
func emitHalfTurn(b *seqBuilder, ax axis) {
	conj := axisConjugation(b, ax)
	conj(false)
	b.gate1(0, circuit.GateP, math.Pi/2)
	b.gate1(1, circuit.GateP, math.Pi/2)
	// cz = h(1) cx h(1)
	b.gate1(1, circuit.GateH)
	b.basis2q()
	b.gate1(1, circuit.GateH)
	b.addPhase(-math.Pi / 4)
	conj(true)
}

// emitXZBlock appends exp(-i/2 (a*XX + b*ZZ)) = cx (rx(a)⊗rz(b)) cx.
func emitXZBlock(b *seqBuilder, a, c float64) {
	b.basis2q()
	b.gate1(0, circuit.GateRX, a)
	b.gate1(1, circuit.GateRZ, c)
	b.basis2q()
}

// emitXYBlock conjugates the xz block so its z axis becomes y.
func emitXYBlock(b *seqBuilder, a, c float64) {
	b.gate1(0, circuit.GateRX, math.Pi/2)
	b.gate1(1, circuit.GateRX, math.Pi/2)
	b.basis2q()
	b.gate1(0, circuit.GateRX, a)
	b.gate1(1, circuit.GateRZ, c)
	b.basis2q()
	b.gate1(0, circuit.GateRX, -math.Pi/2)
	b.gate1(1, circuit.GateRX, -math.Pi/2)
}

// emitYZBlock conjugates the xz block so its x axis becomes y.
func emitYZBlock(b *seqBuilder, a, c float64) {
	b.gate1(0, circuit.GateRZ, -math.Pi/2)
	b.gate1(1, circuit.GateRZ, -math.Pi/2)
	b.basis2q()
	b.gate1(0, circuit.GateRX, a)
	b.gate1(1, circuit.GateRZ, c)
	b.basis2q()
	b.gate1(0, circuit.GateRZ, math.Pi/2)
	b.gate1(1, circuit.GateRZ, math.Pi/2)
}

// axisConjugation returns a closure wrapping subsequent gates in the basis
// change that maps ZZ onto the requested axis pair.
func axisConjugation(b *seqBuilder, ax axis) func(closing bool) {
	switch ax {
	case axisX:
		return func(bool) {
			b.gate1(0, circuit.GateH)
			b.gate1(1, circuit.GateH)
		}
	case axisY:
		return func(closing bool) {
			sign := 1.0
			if closing {
				sign = -1
			}
			b.gate1(0, circuit.GateRX, sign*math.Pi/2)
			b.gate1(1, circuit.GateRX, sign*math.Pi/2)
		}
	}
	return func(bool) {}
}
