package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstEvaluation(t *testing.T) {
	e := NewConstant(1.5).Add(NewConstant(2))
	v, ok := e.Const()
	require.True(t, ok)
	require.Equal(t, 3.5, v)
}

func TestBindLinear(t *testing.T) {
	theta := NewSymbol("theta")
	// theta/2 - pi
	e := NewLinear(0.5, theta).AddConst(-math.Pi)
	require.False(t, e.IsConstant())
	require.Equal(t, []Symbol{theta}, e.Symbols())

	bound := e.Bind(map[Symbol]Expression{theta: NewConstant(math.Pi)})
	v, ok := bound.Const()
	require.True(t, ok)
	require.InDelta(t, -math.Pi/2, v, 1e-12)
}

func TestBindSymbolic(t *testing.T) {
	a := NewSymbol("a")
	b := NewSymbol("b")
	// binding a symbol to another expression keeps the result symbolic
	e := NewLinear(2, a)
	e = e.Bind(map[Symbol]Expression{a: NewLinear(3, b).AddConst(1)})
	require.False(t, e.IsConstant())
	e = e.Bind(map[Symbol]Expression{b: NewConstant(2)})
	v, ok := e.Const()
	require.True(t, ok)
	require.Equal(t, 14.0, v)
}

func TestNormalizeMergesTerms(t *testing.T) {
	s := NewSymbol("s")
	e := NewLinear(1, s).Add(NewLinear(-1, s))
	v, ok := e.Const()
	require.True(t, ok)
	require.Equal(t, 0.0, v)
}

func TestEqualAndHash(t *testing.T) {
	x := NewSymbol("x")
	a := NewLinear(2, x).AddConst(1)
	b := NewConstant(1).Add(NewLinear(2, x))
	require.True(t, a.Equal(b))
	require.Equal(t, a.HashCode(), b.HashCode())

	m := make(Map)
	m.Set(a, "v")
	got, ok := m.Find(b)
	require.True(t, ok)
	require.Equal(t, "v", got)
}

func TestMulDegree(t *testing.T) {
	x := NewSymbol("x")
	y := NewSymbol("y")
	e := NewLinear(2, x).Mul(NewLinear(3, y))
	require.Equal(t, 2, e.Degree())
	bound := e.Bind(map[Symbol]Expression{x: NewConstant(1), y: NewConstant(2)})
	v, ok := bound.Const()
	require.True(t, ok)
	require.Equal(t, 12.0, v)
}
