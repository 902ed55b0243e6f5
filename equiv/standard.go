package equiv

import (
	"math"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/expr"
)

// Standard returns the built-in equivalence rules for the standard gates.
// The rules connect every gate to the common hardware bases {u, cx},
// {rz, sx, x, cx}, {cz, ...} and {ecr, ...} through at most a few hops.
func Standard() *Library {
	l := NewLibrary()

	sym := func(name string) expr.Symbol { return expr.NewSymbol(name) }
	lin := func(c float64, s expr.Symbol) expr.Expression { return expr.NewLinear(c, s) }
	con := expr.NewConstant

	// fixed one-qubit gates as u
	fixedU := func(g circuit.Gate, theta, phi, lam float64) {
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateU, []int{0}, con(theta), con(phi), con(lam))
		l.MustAdd(g, nil, c)
	}
	fixedU(circuit.GateH, math.Pi/2, 0, math.Pi)
	fixedU(circuit.GateX, math.Pi, 0, math.Pi)
	fixedU(circuit.GateY, math.Pi, math.Pi/2, math.Pi/2)

	// fixed phases as p
	fixedP := func(g circuit.Gate, lam float64) {
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateP, []int{0}, con(lam))
		l.MustAdd(g, nil, c)
	}
	fixedP(circuit.GateZ, math.Pi)
	fixedP(circuit.GateS, math.Pi/2)
	fixedP(circuit.GateSdg, -math.Pi/2)
	fixedP(circuit.GateT, math.Pi/4)
	fixedP(circuit.GateTdg, -math.Pi/4)

	// id is the empty circuit
	l.MustAdd(circuit.GateI, nil, circuit.New(1, 0))

	{
		// p(lam) = u(0, 0, lam)
		lam := sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateU, []int{0}, con(0), con(0), lin(1, lam))
		l.MustAdd(circuit.GateP, []expr.Symbol{lam}, c)
	}
	{
		// p(lam) = rz(lam) up to global phase lam/2
		lam := sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateRZ, []int{0}, lin(1, lam))
		c.AddGlobalPhase(lin(0.5, lam))
		l.MustAdd(circuit.GateP, []expr.Symbol{lam}, c)
	}
	{
		// rz(lam) = p(lam) up to global phase -lam/2
		lam := sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateP, []int{0}, lin(1, lam))
		c.AddGlobalPhase(lin(-0.5, lam))
		l.MustAdd(circuit.GateRZ, []expr.Symbol{lam}, c)
	}
	{
		// u1 is p
		lam := sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateP, []int{0}, lin(1, lam))
		l.MustAdd(circuit.GateU1, []expr.Symbol{lam}, c)
	}
	{
		// u2(phi, lam) = u(pi/2, phi, lam)
		phi, lam := sym("phi"), sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateU, []int{0}, con(math.Pi/2), lin(1, phi), lin(1, lam))
		l.MustAdd(circuit.GateU2, []expr.Symbol{phi, lam}, c)
	}
	{
		// u3 is u
		theta, phi, lam := sym("theta"), sym("phi"), sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateU, []int{0}, lin(1, theta), lin(1, phi), lin(1, lam))
		l.MustAdd(circuit.GateU3, []expr.Symbol{theta, phi, lam}, c)
	}
	{
		// zyz form: u(theta, phi, lam) = gp((phi+lam)/2) rz(phi) ry(theta) rz(lam)
		theta, phi, lam := sym("theta"), sym("phi"), sym("lam")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateRZ, []int{0}, lin(1, lam))
		c.MustAppend(circuit.GateRY, []int{0}, lin(1, theta))
		c.MustAppend(circuit.GateRZ, []int{0}, lin(1, phi))
		c.AddGlobalPhase(lin(0.5, phi).Add(lin(0.5, lam)))
		l.MustAdd(circuit.GateU, []expr.Symbol{theta, phi, lam}, c)
	}
	{
		// rx(theta) = u(theta, -pi/2, pi/2)
		theta := sym("theta")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateU, []int{0}, lin(1, theta), con(-math.Pi/2), con(math.Pi/2))
		l.MustAdd(circuit.GateRX, []expr.Symbol{theta}, c)
	}
	{
		// rx(theta) = h rz(theta) h
		theta := sym("theta")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateRZ, []int{0}, lin(1, theta))
		c.MustAppend(circuit.GateH, []int{0})
		l.MustAdd(circuit.GateRX, []expr.Symbol{theta}, c)
	}
	{
		// ry(theta) = u(theta, 0, 0)
		theta := sym("theta")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateU, []int{0}, lin(1, theta), con(0), con(0))
		l.MustAdd(circuit.GateRY, []expr.Symbol{theta}, c)
	}
	{
		// ry(theta) = sdg rx(theta) s
		theta := sym("theta")
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateSdg, []int{0})
		c.MustAppend(circuit.GateRX, []int{0}, lin(1, theta))
		c.MustAppend(circuit.GateS, []int{0})
		l.MustAdd(circuit.GateRY, []expr.Symbol{theta}, c)
	}
	{
		// sx = gp(pi/4) sdg h sdg
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateSdg, []int{0})
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateSdg, []int{0})
		c.AddGlobalPhase(con(math.Pi / 4))
		l.MustAdd(circuit.GateSX, nil, c)
	}
	{
		// sxdg = gp(-pi/4) s h s
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateS, []int{0})
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateS, []int{0})
		c.AddGlobalPhase(con(-math.Pi / 4))
		l.MustAdd(circuit.GateSXdg, nil, c)
	}
	{
		// h = gp(pi/4) rz(pi/2) sx rz(pi/2)
		c := circuit.New(1, 0)
		c.MustAppend(circuit.GateRZ, []int{0}, con(math.Pi/2))
		c.MustAppend(circuit.GateSX, []int{0})
		c.MustAppend(circuit.GateRZ, []int{0}, con(math.Pi/2))
		c.AddGlobalPhase(con(math.Pi / 4))
		l.MustAdd(circuit.GateH, nil, c)
	}

	{
		// cx = h(1) cz h(1)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateCZ, []int{0, 1})
		c.MustAppend(circuit.GateH, []int{1})
		l.MustAdd(circuit.GateCX, nil, c)
	}
	{
		// cz = h(1) cx h(1)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateH, []int{1})
		l.MustAdd(circuit.GateCZ, nil, c)
	}
	{
		// cy = sdg(1) cx s(1)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateSdg, []int{1})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateS, []int{1})
		l.MustAdd(circuit.GateCY, nil, c)
	}
	{
		// ch = s(1) h(1) t(1) cx tdg(1) h(1) sdg(1)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateS, []int{1})
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateT, []int{1})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateTdg, []int{1})
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateSdg, []int{1})
		l.MustAdd(circuit.GateCH, nil, c)
	}
	{
		// swap = cx(0,1) cx(1,0) cx(0,1)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateCX, []int{1, 0})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		l.MustAdd(circuit.GateSwap, nil, c)
	}
	{
		// iswap = s(0) s(1) h(0) cx(0,1) cx(1,0) h(1)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateS, []int{0})
		c.MustAppend(circuit.GateS, []int{1})
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateCX, []int{1, 0})
		c.MustAppend(circuit.GateH, []int{1})
		l.MustAdd(circuit.GateISwap, nil, c)
	}
	{
		// cp(lam) = p(lam/2)(0) cx p(-lam/2)(1) cx p(lam/2)(1)
		lam := sym("lam")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateP, []int{0}, lin(0.5, lam))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateP, []int{1}, lin(-0.5, lam))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateP, []int{1}, lin(0.5, lam))
		l.MustAdd(circuit.GateCP, []expr.Symbol{lam}, c)
	}
	{
		// crz(lam) = rz(lam/2)(1) cx rz(-lam/2)(1) cx
		lam := sym("lam")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateRZ, []int{1}, lin(0.5, lam))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateRZ, []int{1}, lin(-0.5, lam))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		l.MustAdd(circuit.GateCRZ, []expr.Symbol{lam}, c)
	}
	{
		// cry(theta) = ry(theta/2)(1) cx ry(-theta/2)(1) cx
		theta := sym("theta")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateRY, []int{1}, lin(0.5, theta))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateRY, []int{1}, lin(-0.5, theta))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		l.MustAdd(circuit.GateCRY, []expr.Symbol{theta}, c)
	}
	{
		// crx(theta) = h(1) crz(theta) h(1)
		theta := sym("theta")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateCRZ, []int{0, 1}, lin(1, theta))
		c.MustAppend(circuit.GateH, []int{1})
		l.MustAdd(circuit.GateCRX, []expr.Symbol{theta}, c)
	}
	{
		// rzz(theta) = cx rz(theta)(1) cx
		theta := sym("theta")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateRZ, []int{1}, lin(1, theta))
		c.MustAppend(circuit.GateCX, []int{0, 1})
		l.MustAdd(circuit.GateRZZ, []expr.Symbol{theta}, c)
	}
	{
		// rxx(theta) = (h h) rzz(theta) (h h)
		theta := sym("theta")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateRZZ, []int{0, 1}, lin(1, theta))
		c.MustAppend(circuit.GateH, []int{0})
		c.MustAppend(circuit.GateH, []int{1})
		l.MustAdd(circuit.GateRXX, []expr.Symbol{theta}, c)
	}
	{
		// ryy(theta) = (rx(pi/2) rx(pi/2)) rzz(theta) (rx(-pi/2) rx(-pi/2))
		theta := sym("theta")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateRX, []int{0}, con(math.Pi/2))
		c.MustAppend(circuit.GateRX, []int{1}, con(math.Pi/2))
		c.MustAppend(circuit.GateRZZ, []int{0, 1}, lin(1, theta))
		c.MustAppend(circuit.GateRX, []int{0}, con(-math.Pi/2))
		c.MustAppend(circuit.GateRX, []int{1}, con(-math.Pi/2))
		l.MustAdd(circuit.GateRYY, []expr.Symbol{theta}, c)
	}
	{
		// rzx(theta) = h(1) rzz(theta) h(1)
		theta := sym("theta")
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateH, []int{1})
		c.MustAppend(circuit.GateRZZ, []int{0, 1}, lin(1, theta))
		c.MustAppend(circuit.GateH, []int{1})
		l.MustAdd(circuit.GateRZX, []expr.Symbol{theta}, c)
	}
	{
		// ecr = rzx(pi/2) x(0)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateRZX, []int{0, 1}, con(math.Pi/2))
		c.MustAppend(circuit.GateX, []int{0})
		l.MustAdd(circuit.GateECR, nil, c)
	}
	{
		// cx = gp(pi/4) x(0) ecr rx(pi/2)(1) rz(pi/2)(0)
		c := circuit.New(2, 0)
		c.MustAppend(circuit.GateX, []int{0})
		c.MustAppend(circuit.GateECR, []int{0, 1})
		c.MustAppend(circuit.GateRX, []int{1}, con(math.Pi/2))
		c.MustAppend(circuit.GateRZ, []int{0}, con(math.Pi/2))
		c.AddGlobalPhase(con(math.Pi / 4))
		l.MustAdd(circuit.GateCX, nil, c)
	}

	{
		// toffoli, six cx
		c := circuit.New(3, 0)
		c.MustAppend(circuit.GateH, []int{2})
		c.MustAppend(circuit.GateCX, []int{1, 2})
		c.MustAppend(circuit.GateTdg, []int{2})
		c.MustAppend(circuit.GateCX, []int{0, 2})
		c.MustAppend(circuit.GateT, []int{2})
		c.MustAppend(circuit.GateCX, []int{1, 2})
		c.MustAppend(circuit.GateTdg, []int{2})
		c.MustAppend(circuit.GateCX, []int{0, 2})
		c.MustAppend(circuit.GateT, []int{1})
		c.MustAppend(circuit.GateT, []int{2})
		c.MustAppend(circuit.GateH, []int{2})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		c.MustAppend(circuit.GateT, []int{0})
		c.MustAppend(circuit.GateTdg, []int{1})
		c.MustAppend(circuit.GateCX, []int{0, 1})
		l.MustAdd(circuit.GateCCX, nil, c)
	}
	{
		// fredkin
		c := circuit.New(3, 0)
		c.MustAppend(circuit.GateCX, []int{2, 1})
		c.MustAppend(circuit.GateCCX, []int{0, 1, 2})
		c.MustAppend(circuit.GateCX, []int{2, 1})
		l.MustAdd(circuit.GateCSwap, nil, c)
	}

	return l
}
