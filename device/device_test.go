package device

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTarget(t *testing.T) {
	tgt, err := LoadTarget(filepath.Join("testdata", "line5.toml"))
	require.NoError(t, err)
	require.Equal(t, 5, tgt.NumQubits())
	require.True(t, tgt.Supported("cx", []int{0, 1}))
	require.True(t, tgt.Supported("cx", []int{1, 0}))
	require.False(t, tgt.Supported("cx", []int{0, 2}))
	require.False(t, tgt.Supported("h", []int{0}))
	require.InDelta(t, 0.01, tgt.ErrorRate("cx", []int{0, 1}), 1e-12)
	require.Equal(t, []string{"cx", "measure", "u"}, tgt.OperationNames())
}

func TestParseTargetRejectsBadInput(t *testing.T) {
	_, err := ParseTarget(`num_qubits = 0`)
	require.Error(t, err)
	_, err = ParseTarget(`
num_qubits = 2
[[operation]]
name = "cx"
qargs = [[0, 5]]
`)
	require.Error(t, err)
	_, err = ParseTarget(`
num_qubits = 2
[[operation]]
name = "cx"
`)
	require.Error(t, err)
}

func TestOperationProps(t *testing.T) {
	tgt := NewTarget(3)
	tgt.AddGlobalOperation("u", 1, Props{Error: 0.001, Duration: 20e-9})
	tgt.AddOperation("cx", []int{0, 1}, Props{Error: 0.01})

	p, err := tgt.OperationProps("u", []int{2})
	require.NoError(t, err)
	require.InDelta(t, 0.001, p.Error, 1e-12)

	p, err = tgt.OperationProps("cx", []int{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.01, p.Error, 1e-12)

	_, err = tgt.OperationProps("cz", []int{0, 1})
	require.ErrorIs(t, err, ErrUnknownOperation)
	_, err = tgt.OperationProps("cx", []int{1, 0})
	require.ErrorIs(t, err, ErrUnknownOperation)
	_, err = tgt.OperationProps("u", []int{0, 1})
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestEncodeTargetRoundTrip(t *testing.T) {
	tgt := NewTarget(3)
	tgt.AddGlobalOperation("measure", 1, Props{Error: 0.02})
	tgt.AddOperation("u", []int{0}, Props{Error: 0.001, Duration: 20e-9})
	tgt.AddOperation("u", []int{1}, Props{Error: 0.002})
	tgt.AddOperation("cx", []int{0, 1}, Props{Error: 0.01})
	tgt.AddOperation("cx", []int{1, 2}, Props{Error: 0.015})

	text, err := EncodeTarget(tgt)
	require.NoError(t, err)
	back, err := ParseTarget(text)
	require.NoError(t, err)

	require.Equal(t, tgt.NumQubits(), back.NumQubits())
	require.Equal(t, tgt.OperationNames(), back.OperationNames())
	for _, name := range tgt.OperationNames() {
		require.Equal(t, tgt.QargsForOperation(name), back.QargsForOperation(name))
	}
	p, err := back.OperationProps("u", []int{0})
	require.NoError(t, err)
	require.InDelta(t, 0.001, p.Error, 1e-12)
	require.InDelta(t, 20e-9, p.Duration, 1e-18)
	require.True(t, back.Supported("measure", []int{2}))
	require.InDelta(t, 0.015, back.ErrorRate("cx", []int{1, 2}), 1e-12)
}

func TestGlobalOperation(t *testing.T) {
	tgt := NewTarget(3)
	tgt.AddGlobalOperation("u", 1, Props{Error: 0.001})
	tgt.AddOperation("cx", []int{0, 1}, Props{})
	require.True(t, tgt.Supported("u", []int{2}))
	require.False(t, tgt.Supported("u", []int{0, 1}))
	require.InDelta(t, 0.001, tgt.ErrorRate("u", []int{2}), 1e-12)
}

func TestNonGlobalOperationNames(t *testing.T) {
	tgt := NewTarget(3)
	tgt.AddOperation("cx", []int{0, 1}, Props{})
	tgt.AddOperation("cx", []int{1, 2}, Props{})
	tgt.AddOperation("cz", []int{0, 1}, Props{})
	require.Equal(t, []string{"cz"}, tgt.NonGlobalOperationNames())
}

func TestBuildCoupling(t *testing.T) {
	tgt := LineTarget(4, []string{"u"}, 0.01)
	c := tgt.BuildCoupling()
	require.Equal(t, 4, c.NumQubits())
	require.True(t, c.HasEdge(0, 1))
	require.False(t, c.HasEdge(0, 2))
	require.Equal(t, 3, c.Distance(0, 3))
	require.Equal(t, []int{0, 1, 2, 3}, c.ShortestPath(0, 3))
	require.True(t, c.IsConnected())
}

func TestCouplingComponents(t *testing.T) {
	c := NewCoupling(5, [][2]int{{0, 1}, {3, 4}})
	require.False(t, c.IsConnected())
	require.Equal(t, [][]int{{0, 1}, {2}, {3, 4}}, c.Components())
	require.Equal(t, -1, c.Distance(0, 3))
	require.Nil(t, c.ShortestPath(0, 4))
	require.Equal(t, []int{1}, c.Neighbors(0))
}
