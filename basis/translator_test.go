package basis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/equiv"
	"github.com/qompiler/qompiler/expr"
	"github.com/qompiler/qompiler/synth"
)

func globalTarget(n int, names ...string) *device.Target {
	t := device.NewTarget(n)
	for _, name := range names {
		g, ok := circuit.GateByName(name)
		if !ok {
			panic(name)
		}
		t.AddGlobalOperation(name, g.NumQubits(), device.Props{})
	}
	return t
}

func translate(t *testing.T, c *circuit.Circuit, target *device.Target) *circuit.Circuit {
	t.Helper()
	tr := NewTranslator(equiv.Standard(), target)
	out, err := tr.RunCircuit(c)
	require.NoError(t, err)
	return out
}

func requireOnlyNames(t *testing.T, c *circuit.Circuit, allowed ...string) {
	t.Helper()
	ok := make(map[string]bool)
	for _, n := range allowed {
		ok[n] = true
	}
	for name, cnt := range c.CountOps() {
		require.True(t, ok[name], "gate %s (x%d) not in %v", name, cnt, allowed)
	}
}

func requireSameUnitary(t *testing.T, a, b *circuit.Circuit) {
	t.Helper()
	ua, err := synth.Unitary(a)
	require.NoError(t, err)
	ub, err := synth.Unitary(b)
	require.NoError(t, err)
	n, _ := ua.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.InDelta(t, real(ua.At(i, j)), real(ub.At(i, j)), 1e-9)
			require.InDelta(t, imag(ua.At(i, j)), imag(ub.At(i, j)), 1e-9)
		}
	}
}

func TestTranslateBellToUCX(t *testing.T) {
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateH, []int{0})
	c.MustAppend(circuit.GateCX, []int{0, 1})

	out := translate(t, c, globalTarget(2, "u", "cx"))
	requireOnlyNames(t, out, "u", "cx")
	require.Equal(t, 1, out.CountOps()["cx"])
	requireSameUnitary(t, c, out)
}

func TestTranslateSkipsNonUnitaryOps(t *testing.T) {
	c := circuit.New(2, 1)
	c.MustAppend(circuit.GateH, []int{0})
	c.MustAppend(circuit.GateCX, []int{0, 1})
	require.NoError(t, c.Measure(1, 0))
	c.MustAppend(circuit.GateReset, []int{1})

	// the target lists neither measure nor reset; both pass through
	out := translate(t, c, globalTarget(2, "u", "cx"))
	requireOnlyNames(t, out, "u", "cx", "measure", "reset")
	require.Equal(t, 1, out.CountOps()["measure"])
	require.Equal(t, 1, out.CountOps()["reset"])
}

func TestTranslateAlreadyNative(t *testing.T) {
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateCX, []int{0, 1})
	out := translate(t, c, globalTarget(2, "u", "cx"))
	require.Equal(t, map[string]int{"cx": 1}, out.CountOps())
}

func TestTranslateToRZSXBasis(t *testing.T) {
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateH, []int{0})
	c.MustAppend(circuit.GateRY, []int{1}, expr.NewConstant(0.37))
	c.MustAppend(circuit.GateSwap, []int{0, 1})
	c.MustAppend(circuit.GateRXX, []int{0, 1}, expr.NewConstant(-0.9))

	out := translate(t, c, globalTarget(2, "rz", "sx", "x", "cx"))
	requireOnlyNames(t, out, "rz", "sx", "x", "cx")
	requireSameUnitary(t, c, out)
}

func TestTranslateToECRBasis(t *testing.T) {
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateCX, []int{0, 1})
	out := translate(t, c, globalTarget(2, "rz", "sx", "x", "ecr"))
	requireOnlyNames(t, out, "rz", "sx", "x", "ecr")
	requireSameUnitary(t, c, out)
}

func TestTranslateGlobalPhase(t *testing.T) {
	c := circuit.New(1, 0)
	c.MustAppend(circuit.GateZ, []int{0})
	out := translate(t, c, globalTarget(1, "rz", "sx", "cx"))
	requireOnlyNames(t, out, "rz")
	require.InDelta(t, math.Pi/2, out.GlobalPhase.MustConst(), 1e-12)
	requireSameUnitary(t, c, out)
}

func TestTranslateKeepsSymbolicParams(t *testing.T) {
	theta := expr.NewSymbol("theta")
	c := circuit.New(1, 0)
	c.MustAppend(circuit.GateRX, []int{0}, expr.NewLinear(1, theta))
	out := translate(t, c, globalTarget(1, "rz", "sx", "x", "cx"))
	requireOnlyNames(t, out, "rz", "sx", "x")

	// binding the symbol afterwards must equal binding it before
	bind := map[expr.Symbol]expr.Expression{theta: expr.NewConstant(1.234)}
	boundAfter := out.Copy()
	for i := range boundAfter.Ops {
		for j := range boundAfter.Ops[i].Params {
			boundAfter.Ops[i].Params[j] = boundAfter.Ops[i].Params[j].Bind(bind)
		}
	}
	boundAfter.GlobalPhase = boundAfter.GlobalPhase.Bind(bind)

	ref := circuit.New(1, 0)
	ref.MustAppend(circuit.GateRX, []int{0}, expr.NewConstant(1.234))
	requireSameUnitary(t, ref, boundAfter)
}

func TestTranslateUnreachable(t *testing.T) {
	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateCX, []int{0, 1})
	tr := NewTranslator(equiv.Standard(), globalTarget(2, "u"))
	_, err := tr.RunCircuit(c)
	require.ErrorIs(t, err, ErrUnreachable)
	require.Contains(t, err.Error(), "cx")
}

func TestTranslateNonGlobalOperation(t *testing.T) {
	tgt := device.NewTarget(2)
	tgt.AddGlobalOperation("u", 1, device.Props{})
	tgt.AddGlobalOperation("h", 1, device.Props{})
	tgt.AddOperation("cx", []int{0, 1}, device.Props{})
	tgt.AddOperation("cx", []int{1, 0}, device.Props{})
	// cz exists on (0,1) only, so cz(1,0) needs a local translation
	tgt.AddOperation("cz", []int{0, 1}, device.Props{})

	c := circuit.New(2, 0)
	c.MustAppend(circuit.GateCZ, []int{1, 0})
	out := translate(t, c, tgt)
	require.Equal(t, 0, out.CountOps()["cz"])
	requireSameUnitary(t, c, out)

	// cz on its native direction stays put
	c2 := circuit.New(2, 0)
	c2.MustAppend(circuit.GateCZ, []int{0, 1})
	out2 := translate(t, c2, tgt)
	require.Equal(t, 1, out2.CountOps()["cz"])
}

func TestTranslateRecursesControlFlow(t *testing.T) {
	inner := circuit.New(1, 0)
	inner.MustAppend(circuit.GateH, []int{0})
	c := circuit.New(2, 1)
	c.Ops = append(c.Ops, circuit.Operation{
		Gate:   circuit.GateIfElse,
		Qubits: []int{0},
		Clbits: []int{0},
		Blocks: []*circuit.Circuit{inner},
	})

	tgt := globalTarget(2, "u", "cx", "if_else")
	out := translate(t, c, tgt)
	require.Len(t, out.Ops, 1)
	blockCounts := out.Ops[0].Blocks[0].CountOps()
	require.Equal(t, 0, blockCounts["h"])
	require.Equal(t, 1, blockCounts["u"])
}

func TestTranslateConditionedGate(t *testing.T) {
	c := circuit.New(1, 1)
	c.Ops = append(c.Ops, circuit.Operation{
		Gate:      circuit.GateH,
		Qubits:    []int{0},
		Condition: &circuit.Condition{Clbit: 0, Value: true},
	})
	out := translate(t, c, globalTarget(1, "u", "cx"))
	require.Len(t, out.Ops, 1)
	require.Equal(t, circuit.GateU, out.Ops[0].Gate)
	require.NotNil(t, out.Ops[0].Condition)
}

func TestRunLeavesInputUntouched(t *testing.T) {
	c := circuit.New(1, 0)
	c.MustAppend(circuit.GateH, []int{0})
	d, err := dag.FromCircuit(c)
	require.NoError(t, err)
	tr := NewTranslator(equiv.Standard(), globalTarget(1, "rz", "sx", "cx"))
	_, err = tr.Run(d)
	require.NoError(t, err)
	require.Equal(t, 1, d.CountOps()["h"])
}
