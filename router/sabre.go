package router

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/layout"
	"github.com/qompiler/qompiler/logger"
	"github.com/qompiler/qompiler/props"
)

const (
	extendedSetSize    = 20
	extendedSetWeight  = 0.5
	decayRate          = 0.001
	decayResetInterval = 5
	defaultSwapTrials  = 4
)

// Heuristic selects how candidate swaps are scored.
type Heuristic int

const (
	// HeuristicDecay scores with lookahead and decay weighting.
	HeuristicDecay Heuristic = iota
	// HeuristicBasic scores by front-layer distance only.
	HeuristicBasic
	// HeuristicLookahead adds the extended-set term, without decay.
	HeuristicLookahead
)

// Sabre inserts swap gates so that every two-qubit gate acts on coupled
// qubits. The input DAG must already be as wide as the device, with qubit
// indices referring to physical qubits. Several randomized trials run in
// parallel and the one needing the fewest swaps wins.
type Sabre struct {
	Coupling  *device.Coupling
	Seed      int64
	Heuristic Heuristic
	// Trials is the number of parallel routing attempts. Zero means the
	// default.
	Trials int
}

type trialResult struct {
	out   *dag.DAG
	perm  *layout.Layout
	swaps int
}

// Run routes the DAG. The returned layout is the permutation of physical
// qubits accumulated by the inserted swaps: output wire q holds the state
// that started on wire perm.P2V(q).
func (s *Sabre) Run(d *dag.DAG, ps props.Set) (*dag.DAG, *layout.Layout, error) {
	if d.NumQubits != s.Coupling.NumQubits() {
		return nil, nil, fmt.Errorf("router: circuit has %d qubits, device has %d", d.NumQubits, s.Coupling.NumQubits())
	}
	for _, id := range d.TopologicalOpNodes() {
		op := d.Op(id)
		if len(op.Qubits) > 2 && op.Gate != circuit.GateBarrier {
			return nil, nil, fmt.Errorf("router: %s acts on %d qubits, decompose to two-qubit gates first", op.Gate.Name(), len(op.Qubits))
		}
	}

	trials := s.Trials
	if trials <= 0 {
		trials = defaultSwapTrials
	}
	results := make([]*trialResult, trials)
	g := new(errgroup.Group)
	for i := 0; i < trials; i++ {
		i := i
		g.Go(func() error {
			res, err := s.route(d, s.Seed+int64(i))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.swaps < best.swaps {
			best = r
		}
	}
	log := logger.Logger()
	log.Debug().Int("swaps", best.swaps).Int("trials", trials).Msg("routed circuit")
	if ps != nil {
		ps.Put(props.KeyFinalLayout, best.perm)
		ps.Put(props.KeySabreSwapCount, best.swaps)
	}
	return best.out, best.perm, nil
}

type routeState struct {
	coupling *device.Coupling
	heur     Heuristic
	d        *dag.DAG
	out      *dag.DAG
	perm     *layout.Layout
	indeg    map[dag.NodeID]int
	front    []dag.NodeID
	decay    []float64
	rng      *rand.Rand
	swaps    int
	// idle counts swaps inserted since a gate last executed
	idle     int
	undoPair [][2]int
	undoID   []dag.NodeID
}

func (s *Sabre) route(d *dag.DAG, seed int64) (*trialResult, error) {
	n := d.NumQubits
	st := &routeState{
		coupling: s.Coupling,
		heur:     s.Heuristic,
		d:        d,
		out:      d.CopyEmptyLike(),
		perm:     layout.Identity(n, n),
		indeg:    make(map[dag.NodeID]int),
		decay:    make([]float64, n),
		rng:      rand.New(rand.NewSource(seed)),
	}
	st.resetDecay()
	for _, id := range d.TopologicalOpNodes() {
		st.indeg[id] = len(d.Predecessors(id))
		if st.indeg[id] == 0 {
			st.front = append(st.front, id)
		}
	}
	sortIDs(st.front)

	for len(st.front) > 0 {
		if st.executeReady() {
			continue
		}
		if st.idle >= 10*n {
			if err := st.escape(); err != nil {
				return nil, err
			}
			continue
		}
		if err := st.insertBestSwap(); err != nil {
			return nil, err
		}
	}
	return &trialResult{out: st.out, perm: st.perm, swaps: st.swaps}, nil
}

func (st *routeState) resetDecay() {
	for i := range st.decay {
		st.decay[i] = 1
	}
}

func (st *routeState) executable(op *circuit.Operation) bool {
	if len(op.Qubits) < 2 || op.Gate == circuit.GateBarrier {
		return true
	}
	return st.coupling.HasEdge(st.perm.V2P(op.Qubits[0]), st.perm.V2P(op.Qubits[1]))
}

// executeReady applies every currently executable front-layer gate and
// returns whether any ran.
func (st *routeState) executeReady() bool {
	ran := false
	for {
		current := st.front
		st.front = nil
		progressed := false
		for _, id := range current {
			op := st.d.Op(id)
			if !st.executable(op) {
				st.front = append(st.front, id)
				continue
			}
			st.apply(id, op)
			progressed = true
		}
		sortIDs(st.front)
		if !progressed {
			break
		}
		ran = true
	}
	if ran {
		st.idle = 0
		st.resetDecay()
		st.undoPair = st.undoPair[:0]
		st.undoID = st.undoID[:0]
	}
	return ran
}

func (st *routeState) apply(id dag.NodeID, op *circuit.Operation) {
	mapped := op.Copy()
	qubits := make([]int, len(op.Qubits))
	for i, q := range op.Qubits {
		qubits[i] = st.perm.V2P(q)
	}
	mapped.Qubits = qubits
	if _, err := st.out.Append(mapped); err != nil {
		panic(fmt.Sprintf("unexpected situation: routed gate rejected: %v", err))
	}
	for _, succ := range st.d.Successors(id) {
		st.indeg[succ]--
		if st.indeg[succ] == 0 {
			st.front = append(st.front, succ)
		}
	}
}

func (st *routeState) addSwap(p, q int) dag.NodeID {
	id, err := st.out.Append(circuit.Operation{Gate: circuit.GateSwap, Qubits: []int{p, q}})
	if err != nil {
		panic(fmt.Sprintf("unexpected situation: swap rejected: %v", err))
	}
	st.perm.SwapPhysical(p, q)
	st.swaps++
	return id
}

// frontPairs returns the wire pairs of the blocked two-qubit gates.
func (st *routeState) frontPairs() [][2]int {
	pairs := make([][2]int, 0, len(st.front))
	for _, id := range st.front {
		op := st.d.Op(id)
		if len(op.Qubits) == 2 && op.Gate != circuit.GateBarrier {
			pairs = append(pairs, [2]int{op.Qubits[0], op.Qubits[1]})
		}
	}
	return pairs
}

// extendedSet walks the successors of the front layer and collects the wire
// pairs of upcoming two-qubit gates, for lookahead scoring.
func (st *routeState) extendedSet() [][2]int {
	var pairs [][2]int
	visited := bitset.New(64)
	queue := append([]dag.NodeID(nil), st.front...)
	for _, id := range queue {
		visited.Set(uint(id))
	}
	for len(queue) > 0 && len(pairs) < extendedSetSize {
		id := queue[0]
		queue = queue[1:]
		for _, succ := range st.d.Successors(id) {
			if visited.Test(uint(succ)) {
				continue
			}
			visited.Set(uint(succ))
			op := st.d.Op(succ)
			if len(op.Qubits) == 2 && op.Gate != circuit.GateBarrier {
				pairs = append(pairs, [2]int{op.Qubits[0], op.Qubits[1]})
				if len(pairs) == extendedSetSize {
					break
				}
			}
			queue = append(queue, succ)
		}
	}
	return pairs
}

// candidates lists the physical edges adjacent to any blocked gate's qubits.
func (st *routeState) candidates(fronts [][2]int) [][2]int {
	seen := make(map[[2]int]bool)
	var cands [][2]int
	for _, pr := range fronts {
		for _, v := range pr {
			p := st.perm.V2P(v)
			for _, q := range st.coupling.Neighbors(p) {
				e := [2]int{p, q}
				if e[0] > e[1] {
					e[0], e[1] = e[1], e[0]
				}
				if !seen[e] {
					seen[e] = true
					cands = append(cands, e)
				}
			}
		}
	}
	sort.Slice(cands, func(a, b int) bool {
		if cands[a][0] != cands[b][0] {
			return cands[a][0] < cands[b][0]
		}
		return cands[a][1] < cands[b][1]
	})
	return cands
}

func (st *routeState) heuristic(fronts, ext [][2]int) (float64, error) {
	sum := 0.0
	for _, pr := range fronts {
		dist := st.coupling.Distance(st.perm.V2P(pr[0]), st.perm.V2P(pr[1]))
		if dist < 0 {
			return 0, fmt.Errorf("router: no path between qubits %d and %d", pr[0], pr[1])
		}
		sum += float64(dist)
	}
	h := sum / float64(len(fronts))
	if len(ext) > 0 {
		extSum := 0.0
		for _, pr := range ext {
			dist := st.coupling.Distance(st.perm.V2P(pr[0]), st.perm.V2P(pr[1]))
			if dist < 0 {
				return 0, fmt.Errorf("router: no path between qubits %d and %d", pr[0], pr[1])
			}
			extSum += float64(dist)
		}
		h += extendedSetWeight * extSum / float64(len(ext))
	}
	return h, nil
}

func (st *routeState) insertBestSwap() error {
	fronts := st.frontPairs()
	if len(fronts) == 0 {
		panic("unexpected situation: front layer blocked without two-qubit gates")
	}
	var ext [][2]int
	if st.heur != HeuristicBasic {
		ext = st.extendedSet()
	}
	cands := st.candidates(fronts)

	const eps = 1e-12
	bestScore := 0.0
	var ties [][2]int
	for _, e := range cands {
		st.perm.SwapPhysical(e[0], e[1])
		h, err := st.heuristic(fronts, ext)
		st.perm.SwapPhysical(e[0], e[1])
		if err != nil {
			return err
		}
		score := h
		if st.heur == HeuristicDecay {
			score *= maxf(st.decay[e[0]], st.decay[e[1]])
		}
		switch {
		case len(ties) == 0 || score < bestScore-eps:
			bestScore = score
			ties = ties[:0]
			ties = append(ties, e)
		case score < bestScore+eps:
			ties = append(ties, e)
		}
	}
	e := ties[st.rng.Intn(len(ties))]

	id := st.addSwap(e[0], e[1])
	st.undoPair = append(st.undoPair, e)
	st.undoID = append(st.undoID, id)
	st.decay[e[0]] += decayRate
	st.decay[e[1]] += decayRate
	st.idle++
	if st.swaps%decayResetInterval == 0 {
		st.resetDecay()
	}
	return nil
}

// escape breaks out of a stagnated search: the unproductive swaps since the
// last executed gate are undone, then the oldest blocked gate is forced
// through by swapping along a shortest path.
func (st *routeState) escape() error {
	for i := len(st.undoID) - 1; i >= 0; i-- {
		st.out.Remove(st.undoID[i])
		st.perm.SwapPhysical(st.undoPair[i][0], st.undoPair[i][1])
		st.swaps--
	}
	st.undoPair = st.undoPair[:0]
	st.undoID = st.undoID[:0]

	fronts := st.frontPairs()
	if len(fronts) == 0 {
		panic("unexpected situation: front layer blocked without two-qubit gates")
	}
	a, b := st.perm.V2P(fronts[0][0]), st.perm.V2P(fronts[0][1])
	path := st.coupling.ShortestPath(a, b)
	if len(path) == 0 {
		return fmt.Errorf("router: no path between qubits %d and %d", a, b)
	}
	for i := 0; i+2 < len(path); i++ {
		st.addSwap(path[i], path[i+1])
	}
	st.idle = 0
	st.resetDecay()
	return nil
}

func sortIDs(ids []dag.NodeID) {
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
