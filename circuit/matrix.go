package circuit

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Matrix returns the unitary matrix of the gate for the given bound angle
// parameters. Matrices use little-endian qubit ordering: qubit 0 is the
// least significant bit of the basis index.
func (g Gate) Matrix(params []float64) (*mat.CDense, error) {
	if !g.IsUnitary() {
		return nil, fmt.Errorf("circuit: gate %s has no unitary matrix", g.Name())
	}
	if len(params) != g.NumParams() {
		return nil, fmt.Errorf("circuit: gate %s expects %d parameters, got %d", g.Name(), g.NumParams(), len(params))
	}
	switch g {
	case GateI:
		return dense2(1, 0, 0, 1), nil
	case GateX:
		return dense2(0, 1, 1, 0), nil
	case GateY:
		return dense2(0, -1i, 1i, 0), nil
	case GateZ:
		return dense2(1, 0, 0, -1), nil
	case GateH:
		h := complex(1/math.Sqrt2, 0)
		return dense2(h, h, h, -h), nil
	case GateS:
		return dense2(1, 0, 0, 1i), nil
	case GateSdg:
		return dense2(1, 0, 0, -1i), nil
	case GateT:
		return dense2(1, 0, 0, expi(math.Pi/4)), nil
	case GateTdg:
		return dense2(1, 0, 0, expi(-math.Pi/4)), nil
	case GateSX:
		return dense2(0.5+0.5i, 0.5-0.5i, 0.5-0.5i, 0.5+0.5i), nil
	case GateSXdg:
		return dense2(0.5-0.5i, 0.5+0.5i, 0.5+0.5i, 0.5-0.5i), nil
	case GateRX:
		c, s := halfAngle(params[0])
		return dense2(c, -1i*s, -1i*s, c), nil
	case GateRY:
		c, s := halfAngle(params[0])
		return dense2(c, -s, s, c), nil
	case GateRZ:
		return dense2(expi(-params[0]/2), 0, 0, expi(params[0]/2)), nil
	case GateP, GateU1:
		return dense2(1, 0, 0, expi(params[0])), nil
	case GateU2:
		return uMatrix(math.Pi/2, params[0], params[1]), nil
	case GateU3, GateU:
		return uMatrix(params[0], params[1], params[2]), nil

	case GateCX:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {1, 3}: 1, {2, 2}: 1, {3, 1}: 1,
		}), nil
	case GateCY:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {1, 3}: -1i, {2, 2}: 1, {3, 1}: 1i,
		}), nil
	case GateCZ:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {1, 1}: 1, {2, 2}: 1, {3, 3}: -1,
		}), nil
	case GateCH:
		h := complex(1/math.Sqrt2, 0)
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {2, 2}: 1,
			{1, 1}: h, {1, 3}: h, {3, 1}: h, {3, 3}: -h,
		}), nil
	case GateCP:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {1, 1}: 1, {2, 2}: 1, {3, 3}: expi(params[0]),
		}), nil
	case GateCRX:
		c, s := halfAngle(params[0])
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {2, 2}: 1,
			{1, 1}: c, {1, 3}: -1i * s, {3, 1}: -1i * s, {3, 3}: c,
		}), nil
	case GateCRY:
		c, s := halfAngle(params[0])
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {2, 2}: 1,
			{1, 1}: c, {1, 3}: -s, {3, 1}: s, {3, 3}: c,
		}), nil
	case GateCRZ:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {2, 2}: 1,
			{1, 1}: expi(-params[0] / 2), {3, 3}: expi(params[0] / 2),
		}), nil
	case GateSwap:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {1, 2}: 1, {2, 1}: 1, {3, 3}: 1,
		}), nil
	case GateISwap:
		return dense4(map[[2]int]complex128{
			{0, 0}: 1, {1, 2}: 1i, {2, 1}: 1i, {3, 3}: 1,
		}), nil
	case GateECR:
		h := complex(1/math.Sqrt2, 0)
		return dense4(map[[2]int]complex128{
			{0, 1}: h, {0, 3}: 1i * h,
			{1, 0}: h, {1, 2}: -1i * h,
			{2, 1}: 1i * h, {2, 3}: h,
			{3, 0}: -1i * h, {3, 2}: h,
		}), nil
	case GateRXX:
		c, s := halfAngle(params[0])
		return dense4(map[[2]int]complex128{
			{0, 0}: c, {1, 1}: c, {2, 2}: c, {3, 3}: c,
			{0, 3}: -1i * s, {1, 2}: -1i * s, {2, 1}: -1i * s, {3, 0}: -1i * s,
		}), nil
	case GateRYY:
		c, s := halfAngle(params[0])
		return dense4(map[[2]int]complex128{
			{0, 0}: c, {1, 1}: c, {2, 2}: c, {3, 3}: c,
			{0, 3}: 1i * s, {1, 2}: -1i * s, {2, 1}: -1i * s, {3, 0}: 1i * s,
		}), nil
	case GateRZZ:
		e0, e1 := expi(-params[0]/2), expi(params[0]/2)
		return dense4(map[[2]int]complex128{
			{0, 0}: e0, {1, 1}: e1, {2, 2}: e1, {3, 3}: e0,
		}), nil
	case GateRZX:
		c, s := halfAngle(params[0])
		return dense4(map[[2]int]complex128{
			{0, 0}: c, {1, 1}: c, {2, 2}: c, {3, 3}: c,
			{0, 2}: -1i * s, {2, 0}: -1i * s, {1, 3}: 1i * s, {3, 1}: 1i * s,
		}), nil

	case GateCCX:
		m := identityC(8)
		m.Set(3, 3, 0)
		m.Set(7, 7, 0)
		m.Set(3, 7, 1)
		m.Set(7, 3, 1)
		return m, nil
	case GateCSwap:
		m := identityC(8)
		m.Set(3, 3, 0)
		m.Set(5, 5, 0)
		m.Set(3, 5, 1)
		m.Set(5, 3, 1)
		return m, nil
	}
	return nil, fmt.Errorf("circuit: no matrix for gate %s", g.Name())
}

func expi(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

func halfAngle(theta float64) (c, s complex128) {
	return complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
}

func uMatrix(theta, phi, lam float64) *mat.CDense {
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)
	return dense2(
		complex(c, 0), -expi(lam)*complex(s, 0),
		expi(phi)*complex(s, 0), expi(phi+lam)*complex(c, 0),
	)
}

func dense2(a, b, c, d complex128) *mat.CDense {
	return mat.NewCDense(2, 2, []complex128{a, b, c, d})
}

func dense4(entries map[[2]int]complex128) *mat.CDense {
	m := mat.NewCDense(4, 4, nil)
	for rc, v := range entries {
		m.Set(rc[0], rc[1], v)
	}
	return m
}

func identityC(n int) *mat.CDense {
	m := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
