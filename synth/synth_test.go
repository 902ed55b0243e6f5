package synth

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/expr"
)

func requireClose(t *testing.T, want, got *mat.CDense, tol float64) {
	t.Helper()
	n, c := want.Dims()
	gn, gc := got.Dims()
	require.Equal(t, n, gn)
	require.Equal(t, c, gc)
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			require.InDelta(t, real(want.At(i, j)), real(got.At(i, j)), tol, "entry (%d,%d)", i, j)
			require.InDelta(t, imag(want.At(i, j)), imag(got.At(i, j)), tol, "entry (%d,%d)", i, j)
		}
	}
}

// randomOneQubit builds a deterministic pseudo-random 2x2 unitary as a
// product of elementary rotations.
func randomOneQubit(rng *rand.Rand) *mat.CDense {
	u := Eye(2)
	for _, g := range []circuit.Gate{circuit.GateRZ, circuit.GateRY, circuit.GateRZ} {
		m, err := g.Matrix([]float64{rng.Float64()*4*math.Pi - 2*math.Pi})
		if err != nil {
			panic(err)
		}
		u = Mul(m, u)
	}
	// a pseudo-random global phase exercises the phase tracking
	return Scale(expiC(rng.Float64()*2*math.Pi), u)
}

func expiC(t float64) complex128 {
	return complex(math.Cos(t), math.Sin(t))
}

func TestUnitaryOfCircuit(t *testing.T) {
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateH, []int{0})
	c.MustAppend(circuit.GateCX, []int{0, 1})
	u, err := Unitary(c)
	require.NoError(t, err)
	require.True(t, IsUnitaryMatrix(u, 1e-12))
	// bell circuit maps |00> to (|00>+|11>)/sqrt2
	require.InDelta(t, 1/math.Sqrt2, real(u.At(0, 0)), 1e-12)
	require.InDelta(t, 1/math.Sqrt2, real(u.At(3, 0)), 1e-12)
}

func TestUnitaryRejectsUnbound(t *testing.T) {
	theta := expr.NewSymbol("theta")
	c := circuit.New(1, 0)
	c.MustAppend(circuit.GateRZ, []int{0}, expr.NewLinear(1, theta))
	_, err := Unitary(c)
	require.Error(t, err)
}

func TestKronLittleEndian(t *testing.T) {
	x, _ := circuit.GateX.Matrix(nil)
	z, _ := circuit.GateZ.Matrix(nil)
	// z on qubit 1, x on qubit 0
	zx := Kron(z, x)
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateX, []int{0})
	c.MustAppend(circuit.GateZ, []int{1})
	u, err := Unitary(c)
	require.NoError(t, err)
	requireClose(t, zx, u, 1e-12)
}

func TestOneQubitDecomposer(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fixed := []*mat.CDense{Eye(2)}
	for _, g := range []circuit.Gate{circuit.GateH, circuit.GateX, circuit.GateS, circuit.GateT, circuit.GateSX} {
		m, err := g.Matrix(nil)
		require.NoError(t, err)
		fixed = append(fixed, m)
	}
	for i := 0; i < 20; i++ {
		fixed = append(fixed, randomOneQubit(rng))
	}
	for _, basis := range []EulerBasis{EulerZYZ, EulerU, EulerZSX} {
		d := &OneQubitDecomposer{Basis: basis}
		for i, u := range fixed {
			c := d.Circuit(u)
			got, err := Unitary(c)
			require.NoError(t, err, "basis %v case %d", basis, i)
			requireClose(t, u, got, 1e-9)
		}
	}
}

func TestZSXUsesOnlyRZAndSX(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	d := &OneQubitDecomposer{Basis: EulerZSX}
	c := d.Circuit(randomOneQubit(rng))
	for name := range c.CountOps() {
		require.Contains(t, []string{"rz", "sx"}, name)
	}
}

func twoQubitCases(t *testing.T) map[string]*mat.CDense {
	t.Helper()
	cases := make(map[string]*mat.CDense)
	add := func(name string, build func(c *circuit.Circuit)) {
		c := circuit.New(2, 0)
		build(c)
		u, err := Unitary(c)
		require.NoError(t, err)
		cases[name] = u
	}
	add("identity", func(c *circuit.Circuit) {})
	add("product", func(c *circuit.Circuit) {
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateT, []int{1})
	})
	add("cx", func(c *circuit.Circuit) { c.MustAppend(circuit.GateCX, []int{0, 1}) })
	add("cx_reversed", func(c *circuit.Circuit) { c.MustAppend(circuit.GateCX, []int{1, 0}) })
	add("cz", func(c *circuit.Circuit) { c.MustAppend(circuit.GateCZ, []int{0, 1}) })
	add("swap", func(c *circuit.Circuit) { c.MustAppend(circuit.GateSwap, []int{0, 1}) })
	add("iswap", func(c *circuit.Circuit) { c.MustAppend(circuit.GateISwap, []int{0, 1}) })
	add("rzz", func(c *circuit.Circuit) {
		c.MustAppend(circuit.GateRZZ, []int{0, 1}, expr.NewConstant(0.7))
	})
	add("rxx_dressed", func(c *circuit.Circuit) {
		c.MustAppend(circuit.GateT, []int{0})
		c.MustAppend(circuit.GateRXX, []int{0, 1}, expr.NewConstant(-1.3))
		c.MustAppend(circuit.GateH, []int{1})
	})
	add("generic", func(c *circuit.Circuit) {
		c.MustAppend(circuit.GateRXX, []int{0, 1}, expr.NewConstant(0.9))
		c.MustAppend(circuit.GateRYY, []int{0, 1}, expr.NewConstant(-0.4))
		c.MustAppend(circuit.GateRZZ, []int{0, 1}, expr.NewConstant(1.7))
		c.MustAppend(circuit.GateT, []int{0})
		c.MustAppend(circuit.GateSX, []int{1})
	})
	add("dense", func(c *circuit.Circuit) {
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateRY, []int{0}, expr.NewConstant(0.3))
		c.MustAppend(circuit.GateCX, []int{1, 0})
		c.MustAppend(circuit.GateT, []int{1})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateSX, []int{0})
	})
	return cases
}

func TestWeylDecomposition(t *testing.T) {
	for name, u := range twoQubitCases(t) {
		w, err := DecomposeWeyl(u)
		require.NoError(t, err, name)
		requireClose(t, u, w.Reconstruct(), 1e-8)
	}
}

func TestWeylRejectsNonUnitary(t *testing.T) {
	m := mat.NewCDense(4, 4, nil)
	m.Set(0, 0, 2)
	_, err := DecomposeWeyl(m)
	require.ErrorIs(t, err, ErrWeylFailed)
}

func TestTwoQubitDecomposerRoundTrip(t *testing.T) {
	for _, gate2q := range []circuit.Gate{circuit.GateCX, circuit.GateCZ} {
		d, err := NewTwoQubitDecomposer(gate2q, EulerU)
		require.NoError(t, err)
		for name, u := range twoQubitCases(t) {
			c, err := d.Circuit(u)
			require.NoError(t, err, name)
			got, err := Unitary(c)
			require.NoError(t, err, name)
			requireClose(t, u, got, 1e-8)
			for opName := range c.CountOps() {
				require.Contains(t, []string{"u", gate2q.Name()}, opName, name)
			}
		}
	}
}

func TestTwoQubitGateCounts(t *testing.T) {
	d, err := NewTwoQubitDecomposer(circuit.GateCX, EulerU)
	require.NoError(t, err)
	cases := twoQubitCases(t)
	expect := map[string]int{
		"identity":    0,
		"product":     0,
		"cx":          1,
		"cx_reversed": 1,
		"cz":          1,
		"swap":        4,
		"iswap":       2,
		"rzz":         2,
		"rxx_dressed": 2,
	}
	for name, want := range expect {
		n, err := d.NumBasisGates(cases[name])
		require.NoError(t, err, name)
		require.Equal(t, want, n, name)
		c, err := d.Circuit(cases[name])
		require.NoError(t, err, name)
		require.Equal(t, want, c.CountOps()["cx"], name)
	}
}

func TestDecomposerRejectsBadBasis(t *testing.T) {
	_, err := NewTwoQubitDecomposer(circuit.GateSwap, EulerU)
	require.ErrorIs(t, err, ErrUnsupportedBasis)
}
