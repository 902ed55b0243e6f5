package peephole

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/expr"
	"github.com/qompiler/qompiler/logger"
)

const identityTol = 1e-10

// RemoveIdentityEquiv drops every bound, unconditioned gate whose matrix is
// the identity up to a global phase, folding the phase into the DAG.
func RemoveIdentityEquiv(d *dag.DAG) *dag.DAG {
	out := d.Copy()
	removed := 0
	for _, id := range out.TopologicalOpNodes() {
		op := out.Op(id)
		if !op.Gate.IsUnitary() || op.Condition != nil || op.Calibrated {
			continue
		}
		params, ok := op.BoundParams()
		if !ok {
			continue
		}
		g, err := op.Gate.Matrix(params)
		if err != nil {
			continue
		}
		phase, ok := identityPhase(g)
		if !ok {
			continue
		}
		out.Remove(id)
		if phase != 0 {
			out.AddGlobalPhase(expr.NewConstant(phase))
		}
		removed++
	}
	if removed > 0 {
		log := logger.Logger()
		log.Debug().Int("removed", removed).Msg("dropped identity-equivalent gates")
	}
	return out
}

// identityPhase returns phi when m = e^{i phi} I within tolerance.
func identityPhase(m *mat.CDense) (float64, bool) {
	n, c := m.Dims()
	if n != c {
		return 0, false
	}
	scale := m.At(0, 0)
	if cmplx.Abs(scale) < 1-identityTol {
		return 0, false
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := complex(0, 0)
			if i == j {
				want = scale
			}
			if cmplx.Abs(m.At(i, j)-want) > identityTol {
				return 0, false
			}
		}
	}
	return cmplx.Phase(scale), true
}
