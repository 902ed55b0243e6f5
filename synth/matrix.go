// Package synth implements unitary synthesis: one-qubit Euler angle
// decomposition and two-qubit Weyl (canonical) decomposition, used by the
// block optimizer to resynthesize collected runs.
package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/qompiler/qompiler/circuit"
)

// Eye returns the n by n identity.
func Eye(n int) *mat.CDense {
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Mul returns a*b.
func Mul(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		panic("unexpected situation: matrix product dimension mismatch")
	}
	out := mat.NewCDense(ar, bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < bc; j++ {
			var s complex128
			for k := 0; k < ac; k++ {
				s += a.At(i, k) * b.At(k, j)
			}
			out.Set(i, j, s)
		}
	}
	return out
}

// Dagger returns the conjugate transpose.
func Dagger(a *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(c, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(j, i, cmplx.Conj(a.At(i, j)))
		}
	}
	return out
}

// Kron returns the Kronecker product a⊗b. With little-endian qubit
// ordering, a acts on the higher qubit and b on the lower.
func Kron(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	out := mat.NewCDense(ar*br, ac*bc, nil)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				for l := 0; l < bc; l++ {
					out.Set(i*br+k, j*bc+l, v*b.At(k, l))
				}
			}
		}
	}
	return out
}

// Scale returns v*a.
func Scale(v complex128, a *mat.CDense) *mat.CDense {
	r, c := a.Dims()
	out := mat.NewCDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, v*a.At(i, j))
		}
	}
	return out
}

// AllClose reports whether every entry of a and b differs by less than tol.
func AllClose(a, b *mat.CDense, tol float64) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if cmplx.Abs(a.At(i, j)-b.At(i, j)) >= tol {
				return false
			}
		}
	}
	return true
}

// Det returns the determinant of a small square matrix by LU-free expansion
// for n <= 2 and cofactor recursion otherwise.
func Det(a *mat.CDense) complex128 {
	n, _ := a.Dims()
	switch n {
	case 1:
		return a.At(0, 0)
	case 2:
		return a.At(0, 0)*a.At(1, 1) - a.At(0, 1)*a.At(1, 0)
	}
	var det complex128
	sign := complex128(1)
	for j := 0; j < n; j++ {
		det += sign * a.At(0, j) * Det(minor(a, 0, j))
		sign = -sign
	}
	return det
}

func minor(a *mat.CDense, row, col int) *mat.CDense {
	n, _ := a.Dims()
	out := mat.NewCDense(n-1, n-1, nil)
	for i, oi := 0, 0; i < n; i++ {
		if i == row {
			continue
		}
		for j, oj := 0, 0; j < n; j++ {
			if j == col {
				continue
			}
			out.Set(oi, oj, a.At(i, j))
			oj++
		}
		oi++
	}
	return out
}

// Lift embeds a gate matrix acting on the given qubits into the register
// space of numQubits qubits, little-endian.
func Lift(g *mat.CDense, qubits []int, numQubits int) *mat.CDense {
	dim := 1 << numQubits
	full := mat.NewCDense(dim, dim, nil)
	k := len(qubits)
	for col := 0; col < dim; col++ {
		sub := 0
		for i, q := range qubits {
			sub |= ((col >> q) & 1) << i
		}
		rest := col
		for _, q := range qubits {
			rest &^= 1 << q
		}
		for subRow := 0; subRow < 1<<k; subRow++ {
			v := g.At(subRow, sub)
			if v == 0 {
				continue
			}
			row := rest
			for i, q := range qubits {
				row |= ((subRow >> i) & 1) << q
			}
			full.Set(row, col, v)
		}
	}
	return full
}

// Unitary multiplies out a circuit with bound parameters, global phase
// included.
func Unitary(c *circuit.Circuit) (*mat.CDense, error) {
	u := Eye(1 << c.NumQubits)
	for i := range c.Ops {
		op := &c.Ops[i]
		if op.Condition != nil || !op.Gate.IsUnitary() {
			return nil, fmt.Errorf("synth: operation %s has no unitary", op.Gate.Name())
		}
		params, ok := op.BoundParams()
		if !ok {
			return nil, fmt.Errorf("synth: unbound parameter on %s", op.Gate.Name())
		}
		g, err := op.Gate.Matrix(params)
		if err != nil {
			return nil, err
		}
		u = Mul(Lift(g, op.Qubits, c.NumQubits), u)
	}
	phase, ok := c.GlobalPhase.Const()
	if !ok {
		return nil, fmt.Errorf("synth: unbound global phase")
	}
	return Scale(cmplx.Exp(complex(0, phase)), u), nil
}

// IsUnitaryMatrix reports whether m†m is the identity within tol.
func IsUnitaryMatrix(m *mat.CDense, tol float64) bool {
	n, c := m.Dims()
	if n != c {
		return false
	}
	return AllClose(Mul(Dagger(m), m), Eye(n), tol)
}

// modPi reduces t to r in [-pi/2, pi/2] with t = r + m*pi.
func modPi(t float64) (r float64, m int) {
	m = int(math.Round(t / math.Pi))
	r = t - float64(m)*math.Pi
	return r, m
}
