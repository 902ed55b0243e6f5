package layout

import (
	"errors"
	"fmt"
	"time"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/logger"
	"github.com/qompiler/qompiler/utils"
)

// ErrCircuitTooWide is returned when a circuit uses more qubits than the
// device has.
var ErrCircuitTooWide = errors.New("layout: circuit is wider than the device")

// Stop reasons published to the property set.
const (
	StopSolutionFound = "solution found"
	StopNoSolution    = "nonexistent solution"
	StopCallLimit     = "call limit reached"
)

// VF2 searches for a perfect layout: an assignment of virtual to physical
// qubits under which every interacting pair is directly coupled, so no
// routing is needed. The search is a bounded backtracking subgraph
// monomorphism; among the mappings found within the budget the one with the
// lowest accumulated error wins.
type VF2 struct {
	Coupling *device.Coupling
	Target   *device.Target
	// CallLimit bounds the number of search states visited. Zero means
	// the default.
	CallLimit int
	// Deadline stops the search cooperatively. Zero means no deadline.
	Deadline time.Time
}

const defaultCallLimit = 1 << 20

type vf2State struct {
	coupling  *device.Coupling
	inter     [][]int
	order     []int
	calls     int
	limit     int
	deadline  time.Time
	v2p       []int
	usedPhys  []bool
	bestV2P   []int
	bestScore float64
	score     func(v2p []int) float64
}

// Run searches for a perfect layout of the DAG's interaction graph. The
// returned layout is nil when none was found; the string is the stop
// reason.
func (v *VF2) Run(d *dag.DAG) (*Layout, string, error) {
	np := v.Coupling.NumQubits()
	if d.NumQubits > np {
		return nil, StopNoSolution, fmt.Errorf("%w: %d qubits, device has %d", ErrCircuitTooWide, d.NumQubits, np)
	}
	inter, ok := interactionGraph(d)
	if !ok {
		// gates over more than two qubits cannot be matched to coupling edges
		return nil, StopNoSolution, nil
	}

	st := &vf2State{
		coupling:  v.Coupling,
		inter:     inter,
		order:     matchOrder(inter),
		limit:     v.CallLimit,
		deadline:  v.Deadline,
		v2p:       make([]int, len(inter)),
		usedPhys:  make([]bool, np),
		bestScore: -1,
	}
	if st.limit <= 0 {
		st.limit = defaultCallLimit
	}
	for i := range st.v2p {
		st.v2p[i] = -1
	}
	st.score = func(v2p []int) float64 {
		return v.scoreLayout(inter, v2p)
	}

	exhausted := st.match(0)

	log := logger.Logger()
	switch {
	case st.bestV2P != nil:
		log.Debug().Ints("v2p", st.bestV2P).Int("calls", st.calls).Msg("perfect layout found")
		l, err := FromV2P(st.bestV2P, np)
		if err != nil {
			return nil, StopNoSolution, err
		}
		return l, StopSolutionFound, nil
	case exhausted:
		return nil, StopNoSolution, nil
	default:
		return nil, StopCallLimit, nil
	}
}

// match tries to assign the idx-th virtual qubit in match order. It returns
// false when the call budget ran out.
func (st *vf2State) match(idx int) bool {
	st.calls++
	if st.calls > st.limit {
		return false
	}
	if !st.deadline.IsZero() && st.calls%1024 == 0 && time.Now().After(st.deadline) {
		st.limit = 0
		return false
	}
	if idx == len(st.order) {
		s := st.score(st.v2p)
		if st.bestV2P == nil || s < st.bestScore {
			st.bestV2P = append([]int(nil), st.v2p...)
			st.bestScore = s
		}
		return true
	}
	v := st.order[idx]
	exhausted := true
	for p := 0; p < len(st.usedPhys); p++ {
		if st.usedPhys[p] || !st.feasible(v, p) {
			continue
		}
		st.v2p[v] = p
		st.usedPhys[p] = true
		if !st.match(idx + 1) {
			exhausted = false
		}
		st.v2p[v] = -1
		st.usedPhys[p] = false
		if !exhausted && st.calls > st.limit {
			return false
		}
	}
	return exhausted
}

func (st *vf2State) feasible(v, p int) bool {
	for u, cnt := range st.inter[v] {
		if cnt == 0 || st.v2p[u] == -1 {
			continue
		}
		if !st.coupling.HasEdge(p, st.v2p[u]) {
			return false
		}
	}
	return true
}

// scoreLayout sums interaction counts weighted by the device error of the
// edge they land on. Without a target all complete layouts tie at zero.
func (v *VF2) scoreLayout(inter [][]int, v2p []int) float64 {
	if v.Target == nil {
		return 0
	}
	total := 0.0
	for a := range inter {
		for b := a + 1; b < len(inter); b++ {
			if inter[a][b] == 0 {
				continue
			}
			total += float64(inter[a][b]) * v.edgeError(v2p[a], v2p[b])
		}
	}
	return total
}

func (v *VF2) edgeError(p, q int) float64 {
	bestSet := false
	best := 0.0
	for _, name := range v.Target.OperationNames() {
		if n, ok := v.Target.NumQubitsForOperation(name); !ok || n != 2 {
			continue
		}
		for _, qargs := range [][]int{{p, q}, {q, p}} {
			if !v.Target.Supported(name, qargs) {
				continue
			}
			if e := v.Target.ErrorRate(name, qargs); !bestSet || e < best {
				best = e
				bestSet = true
			}
		}
	}
	return best
}

// interactionGraph builds the virtual qubit interaction counts. The second
// return is false when the DAG holds operations on more than two qubits.
func interactionGraph(d *dag.DAG) ([][]int, bool) {
	n := d.NumQubits
	inter := make([][]int, n)
	for i := range inter {
		inter[i] = make([]int, n)
	}
	for _, id := range d.TopologicalOpNodes() {
		op := d.Op(id)
		if op.Gate == circuit.GateBarrier {
			continue
		}
		if op.Gate.IsControlFlow() {
			// conservative: interactions inside blocks count too
			for _, b := range op.Blocks {
				for k := range b.Ops {
					if len(b.Ops[k].Qubits) > 2 {
						return nil, false
					}
					if len(b.Ops[k].Qubits) == 2 {
						a, c := op.Qubits[b.Ops[k].Qubits[0]], op.Qubits[b.Ops[k].Qubits[1]]
						inter[a][c]++
						inter[c][a]++
					}
				}
			}
			continue
		}
		if len(op.Qubits) > 2 {
			return nil, false
		}
		if len(op.Qubits) == 2 {
			a, b := op.Qubits[0], op.Qubits[1]
			inter[a][b]++
			inter[b][a]++
		}
	}
	return inter, true
}

// matchOrder sorts virtual qubits by descending interaction degree so the
// most constrained qubits are placed first.
func matchOrder(inter [][]int) []int {
	n := len(inter)
	deg := make([]int, n)
	for i := range inter {
		for _, c := range inter[i] {
			deg[i] += c
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	utils.SortIntSeq(order, func(a, b int) bool {
		if deg[a] != deg[b] {
			return deg[a] > deg[b]
		}
		return a < b
	})
	return order
}
