package synth

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/expr"
)

// EulerBasis selects the gate set a one-qubit unitary is synthesized into.
type EulerBasis int

const (
	// EulerZYZ emits rz, ry, rz.
	EulerZYZ EulerBasis = iota
	// EulerU emits a single u gate.
	EulerU
	// EulerZSX emits rz and sx.
	EulerZSX
)

func (b EulerBasis) String() string {
	switch b {
	case EulerZYZ:
		return "zyz"
	case EulerU:
		return "u"
	case EulerZSX:
		return "zsx"
	}
	return fmt.Sprintf("basis(%d)", int(b))
}

// EulerBasisForNames picks the richest Euler basis expressible in the given
// gate names.
func EulerBasisForNames(names map[string]bool) (EulerBasis, bool) {
	switch {
	case names["u"] || names["u3"]:
		return EulerU, true
	case names["rz"] && names["sx"]:
		return EulerZSX, true
	case names["rz"] && names["ry"]:
		return EulerZYZ, true
	}
	return 0, false
}

const angleTol = 1e-10

// ZYZAngles returns theta, phi, lam and the global phase such that
// u = exp(i*phase) * rz(phi) * ry(theta) * rz(lam).
func ZYZAngles(u *mat.CDense) (theta, phi, lam, phase float64) {
	det := u.At(0, 0)*u.At(1, 1) - u.At(0, 1)*u.At(1, 0)
	phase = cmplx.Phase(det) / 2
	coeff := cmplx.Exp(complex(0, -phase))
	su00 := coeff * u.At(0, 0)
	su10 := coeff * u.At(1, 0)
	su11 := coeff * u.At(1, 1)

	theta = 2 * math.Atan2(cmplx.Abs(su10), cmplx.Abs(su00))
	phiPlusLam := 2 * cmplx.Phase(su11)
	phiMinusLam := 2 * cmplx.Phase(su10)
	phi = (phiPlusLam + phiMinusLam) / 2
	lam = (phiPlusLam - phiMinusLam) / 2
	if theta < angleTol {
		// diagonal: only the phase sum is defined
		phi = phiPlusLam
		lam = 0
	} else if math.Pi-theta < angleTol {
		// anti-diagonal: only the phase difference is defined
		phi = phiMinusLam
		lam = 0
	}
	return theta, phi, lam, phase
}

// OneQubitDecomposer synthesizes 2x2 unitaries into a fixed Euler basis.
type OneQubitDecomposer struct {
	Basis EulerBasis
}

// Circuit returns a one-qubit circuit equal to u, global phase included.
func (d *OneQubitDecomposer) Circuit(u *mat.CDense) *circuit.Circuit {
	theta, phi, lam, phase := ZYZAngles(u)
	c := circuit.New(1, 0)
	switch d.Basis {
	case EulerU:
		c.MustAppend(circuit.GateU, []int{0},
			expr.NewConstant(theta), expr.NewConstant(phi), expr.NewConstant(lam))
		c.AddGlobalPhase(expr.NewConstant(phase - (phi+lam)/2))
	case EulerZSX:
		if math.Abs(theta) < angleTol {
			appendRZ(c, phi+lam)
			c.AddGlobalPhase(expr.NewConstant(phase))
			break
		}
		// rz(phi) ry(theta) rz(lam) =
		//   exp(i*pi/2) rz(phi+pi) sx rz(theta+pi) sx rz(lam)
		appendRZ(c, lam)
		c.MustAppend(circuit.GateSX, []int{0})
		appendRZ(c, theta+math.Pi)
		c.MustAppend(circuit.GateSX, []int{0})
		appendRZ(c, phi+math.Pi)
		c.AddGlobalPhase(expr.NewConstant(phase + math.Pi/2))
	default:
		appendRZ(c, lam)
		if math.Abs(theta) >= angleTol {
			c.MustAppend(circuit.GateRY, []int{0}, expr.NewConstant(theta))
		}
		appendRZ(c, phi)
		c.AddGlobalPhase(expr.NewConstant(phase))
	}
	return c
}

func appendRZ(c *circuit.Circuit, angle float64) {
	if math.Abs(angle) < angleTol {
		return
	}
	c.MustAppend(circuit.GateRZ, []int{0}, expr.NewConstant(angle))
}
