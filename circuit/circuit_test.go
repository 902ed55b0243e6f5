package circuit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qompiler/qompiler/expr"
)

func TestAppendChecksArity(t *testing.T) {
	c := New(2, 0)
	require.NoError(t, c.Append(GateH, []int{0}))
	require.NoError(t, c.Append(GateCX, []int{0, 1}))
	require.Error(t, c.Append(GateCX, []int{0}))
	require.Error(t, c.Append(GateH, []int{5}))
	require.Error(t, c.Append(GateRZ, []int{0}))
}

func TestGateByName(t *testing.T) {
	for g := GateI; g < numGates; g++ {
		got, ok := GateByName(g.Name())
		require.True(t, ok, g.Name())
		require.Equal(t, g, got)
	}
	_, ok := GateByName("nope")
	require.False(t, ok)
}

func TestMatrixUnitary(t *testing.T) {
	gates := []struct {
		g      Gate
		params []float64
	}{
		{GateH, nil}, {GateX, nil}, {GateS, nil}, {GateSX, nil},
		{GateRX, []float64{0.7}}, {GateRZ, []float64{-1.2}},
		{GateU, []float64{0.3, 1.1, -0.4}},
		{GateCX, nil}, {GateCZ, nil}, {GateSwap, nil}, {GateECR, nil},
		{GateRXX, []float64{0.9}}, {GateRZZ, []float64{2.1}},
		{GateCCX, nil}, {GateCSwap, nil},
	}
	for _, tc := range gates {
		m, err := tc.g.Matrix(tc.params)
		require.NoError(t, err, tc.g.Name())
		n, _ := m.Dims()
		// check M * M^dagger = I
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				var sum complex128
				for k := 0; k < n; k++ {
					a := m.At(i, k)
					b := m.At(j, k)
					sum += a * complex(real(b), -imag(b))
				}
				want := complex128(0)
				if i == j {
					want = 1
				}
				require.InDelta(t, real(want), real(sum), 1e-12, tc.g.Name())
				require.InDelta(t, imag(want), imag(sum), 1e-12, tc.g.Name())
			}
		}
	}
}

func TestMatrixRejectsNonUnitary(t *testing.T) {
	_, err := GateMeasure.Matrix(nil)
	require.Error(t, err)
	_, err = GateRX.Matrix(nil)
	require.Error(t, err)
}

func TestCXLittleEndian(t *testing.T) {
	m, err := GateCX.Matrix(nil)
	require.NoError(t, err)
	// control is qubit 0 (low bit): |01> maps to |11>
	require.Equal(t, complex128(1), m.At(3, 1))
	require.Equal(t, complex128(1), m.At(1, 3))
	require.Equal(t, complex128(0), m.At(1, 1))
}

func TestSerializeRoundTrip(t *testing.T) {
	theta := expr.NewSymbol("theta")
	c := New(3, 1)
	require.NoError(t, c.Append(GateH, []int{0}))
	require.NoError(t, c.Append(GateRZ, []int{1}, expr.NewLinear(0.5, theta)))
	require.NoError(t, c.Append(GateCX, []int{0, 2}))
	require.NoError(t, c.Measure(2, 0))
	c.Ops[len(c.Ops)-1].Condition = &Condition{Clbit: 0, Value: true}
	c.AddGlobalPhase(expr.NewConstant(math.Pi / 2))

	got, err := Deserialize(c.Serialize())
	require.NoError(t, err)
	require.Equal(t, c.NumQubits, got.NumQubits)
	require.Equal(t, c.NumClbits, got.NumClbits)
	require.Len(t, got.Ops, len(c.Ops))
	for i := range c.Ops {
		require.Equal(t, c.Ops[i].Gate, got.Ops[i].Gate)
		require.Equal(t, c.Ops[i].Qubits, got.Ops[i].Qubits)
	}
	require.Equal(t, got.Ops[3].Condition, &Condition{Clbit: 0, Value: true})
	v, ok := got.GlobalPhase.Const()
	require.True(t, ok)
	require.InDelta(t, math.Pi/2, v, 1e-15)
	// the rz parameter survives with one free symbol
	syms := got.Ops[1].Params[0].Symbols()
	require.Len(t, syms, 1)
	require.Equal(t, "theta", syms[0].Name())
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	_, err := Deserialize([]byte{1, 2, 3})
	require.Error(t, err)
	c := New(1, 0)
	data := c.Serialize()
	_, err = Deserialize(data[:len(data)-2])
	require.Error(t, err)
}

func TestCountOpsRecursesBlocks(t *testing.T) {
	inner := New(2, 0)
	require.NoError(t, inner.Append(GateX, []int{0}))
	c := New(2, 1)
	require.NoError(t, c.Append(GateH, []int{0}))
	c.Ops = append(c.Ops, Operation{Gate: GateIfElse, Qubits: []int{0, 1}, Clbits: []int{0}, Blocks: []*Circuit{inner}})
	counts := c.CountOps()
	require.Equal(t, 1, counts["h"])
	require.Equal(t, 1, counts["x"])
	require.Equal(t, 1, counts["if_else"])
}
