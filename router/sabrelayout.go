package router

import (
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/layout"
	"github.com/qompiler/qompiler/logger"
)

const (
	defaultLayoutTrials  = 4
	defaultMaxIterations = 4
)

// SabreLayout picks an initial layout by routing the circuit forward and
// backward a few times from random starting permutations, keeping the
// permutation that leaves the least work for the router.
type SabreLayout struct {
	Coupling *device.Coupling
	Seed     int64
	// Trials is the number of random starting permutations. Zero means
	// the default.
	Trials int
	// MaxIterations is the number of forward plus backward refinement
	// rounds per trial. Zero means the default.
	MaxIterations int
}

type layoutTrial struct {
	l     *layout.Layout
	swaps int
}

// Run returns a full layout over all physical qubits. Circuit qubits map
// into a single connected component of the coupling graph.
func (s *SabreLayout) Run(d *dag.DAG) (*layout.Layout, error) {
	comp, err := s.component(d.NumQubits)
	if err != nil {
		return nil, err
	}
	trials := s.Trials
	if trials <= 0 {
		trials = defaultLayoutTrials
	}
	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	results := make([]*layoutTrial, trials)
	g := new(errgroup.Group)
	for i := 0; i < trials; i++ {
		i := i
		g.Go(func() error {
			res, err := s.trial(d, comp, s.Seed+int64(i), maxIter)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.swaps < best.swaps {
			best = r
		}
	}
	log := logger.Logger()
	log.Debug().Int("swaps", best.swaps).Msg("selected initial layout")
	return best.l, nil
}

// component returns the physical qubits of the largest connected component,
// sorted, or an error when the circuit cannot fit in any component.
func (s *SabreLayout) component(numQubits int) ([]int, error) {
	comps := s.Coupling.Components()
	best := comps[0]
	for _, c := range comps[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	if numQubits > len(best) {
		return nil, fmt.Errorf("%w: %d qubits, largest connected component has %d", layout.ErrCircuitTooWide, numQubits, len(best))
	}
	return best, nil
}

func (s *SabreLayout) trial(d *dag.DAG, comp []int, seed int64, maxIter int) (*layoutTrial, error) {
	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(len(comp))
	v2p := make([]int, d.NumQubits)
	for v := range v2p {
		v2p[v] = comp[order[v]]
	}
	cur, err := layout.FromV2P(v2p, s.Coupling.NumQubits())
	if err != nil {
		return nil, err
	}
	cur = cur.Expand()

	rev := d.Reverse()
	sab := &Sabre{Coupling: s.Coupling}
	for iter := 0; iter < maxIter; iter++ {
		for pass, dir := range []*dag.DAG{d, rev} {
			mapped, err := layout.Apply(dir, cur, nil)
			if err != nil {
				return nil, err
			}
			res, err := sab.route(mapped, seed+int64(2*iter+pass+1))
			if err != nil {
				return nil, err
			}
			cur = cur.Compose(res.perm)
		}
	}

	mapped, err := layout.Apply(d, cur, nil)
	if err != nil {
		return nil, err
	}
	res, err := sab.route(mapped, seed)
	if err != nil {
		return nil, err
	}
	return &layoutTrial{l: cur, swaps: res.swaps}, nil
}
