// Package dag implements the operation-level directed acyclic graph form of
// a circuit. Every qubit and clbit is a wire holding a total order of the
// operations touching it; edges between operations are induced by shared
// wires. All transpiler passes consume and produce this form.
package dag

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/expr"
)

// NodeID identifies an operation node inside one DAG. IDs are allocation
// order and are never reused; removed nodes leave holes.
type NodeID int

// None is the null node id, used as a wire endpoint.
const None NodeID = -1

type wireRef struct {
	clbit bool
	index int
}

type node struct {
	op      circuit.Operation
	wires   []wireRef
	prev    []NodeID
	next    []NodeID
	removed bool
}

func (n *node) wireIndex(w wireRef) int {
	for i, x := range n.wires {
		if x == w {
			return i
		}
	}
	panic("unexpected situation: node not on wire")
}

// DAG is the dependency graph of one circuit.
type DAG struct {
	NumQubits   int
	NumClbits   int
	GlobalPhase expr.Expression

	nodes      []node
	qubitFirst []NodeID
	qubitLast  []NodeID
	clbitFirst []NodeID
	clbitLast  []NodeID
	numOps     int
}

// New returns an empty DAG over the given registers.
func New(numQubits, numClbits int) *DAG {
	d := &DAG{NumQubits: numQubits, NumClbits: numClbits}
	d.qubitFirst = makeNone(numQubits)
	d.qubitLast = makeNone(numQubits)
	d.clbitFirst = makeNone(numClbits)
	d.clbitLast = makeNone(numClbits)
	return d
}

func makeNone(n int) []NodeID {
	s := make([]NodeID, n)
	for i := range s {
		s[i] = None
	}
	return s
}

func (d *DAG) first(w wireRef) *NodeID {
	if w.clbit {
		return &d.clbitFirst[w.index]
	}
	return &d.qubitFirst[w.index]
}

func (d *DAG) last(w wireRef) *NodeID {
	if w.clbit {
		return &d.clbitLast[w.index]
	}
	return &d.qubitLast[w.index]
}

// opWires lists the wires an operation occupies: its qubits, its clbits,
// and the condition clbit if any.
func opWires(op *circuit.Operation) []wireRef {
	ws := make([]wireRef, 0, len(op.Qubits)+len(op.Clbits)+1)
	for _, q := range op.Qubits {
		ws = append(ws, wireRef{clbit: false, index: q})
	}
	for _, c := range op.Clbits {
		ws = append(ws, wireRef{clbit: true, index: c})
	}
	if op.Condition != nil {
		w := wireRef{clbit: true, index: op.Condition.Clbit}
		dup := false
		for _, x := range ws {
			if x == w {
				dup = true
				break
			}
		}
		if !dup {
			ws = append(ws, w)
		}
	}
	return ws
}

func (d *DAG) checkOp(op *circuit.Operation) error {
	if n := op.Gate.NumQubits(); n != 0 && len(op.Qubits) != n {
		return fmt.Errorf("dag: gate %s expects %d qubits, got %d", op.Gate.Name(), n, len(op.Qubits))
	}
	if op.Gate.NumParams() != len(op.Params) {
		return fmt.Errorf("dag: gate %s expects %d parameters, got %d", op.Gate.Name(), op.Gate.NumParams(), len(op.Params))
	}
	seen := make(map[int]bool, len(op.Qubits))
	for _, q := range op.Qubits {
		if q < 0 || q >= d.NumQubits {
			return fmt.Errorf("dag: qubit %d out of range [0, %d)", q, d.NumQubits)
		}
		if seen[q] {
			return fmt.Errorf("dag: duplicate qubit %d in operation %s", q, op.Gate.Name())
		}
		seen[q] = true
	}
	for _, c := range op.Clbits {
		if c < 0 || c >= d.NumClbits {
			return fmt.Errorf("dag: clbit %d out of range [0, %d)", c, d.NumClbits)
		}
	}
	if op.Condition != nil {
		if c := op.Condition.Clbit; c < 0 || c >= d.NumClbits {
			return fmt.Errorf("dag: condition clbit %d out of range [0, %d)", c, d.NumClbits)
		}
	}
	return nil
}

// Append adds an operation at the end of its wires and returns the new node.
func (d *DAG) Append(op circuit.Operation) (NodeID, error) {
	if err := d.checkOp(&op); err != nil {
		return None, err
	}
	ws := opWires(&op)
	id := NodeID(len(d.nodes))
	n := node{
		op:    op,
		wires: ws,
		prev:  make([]NodeID, len(ws)),
		next:  makeNone(len(ws)),
	}
	for i, w := range ws {
		lastID := *d.last(w)
		n.prev[i] = lastID
		if lastID == None {
			*d.first(w) = id
		} else {
			ln := &d.nodes[lastID]
			ln.next[ln.wireIndex(w)] = id
		}
		*d.last(w) = id
	}
	d.nodes = append(d.nodes, n)
	d.numOps++
	return id, nil
}

// Remove unlinks a node from all its wires.
func (d *DAG) Remove(id NodeID) {
	n := &d.nodes[id]
	if n.removed {
		panic("unexpected situation: node removed twice")
	}
	for i, w := range n.wires {
		p, nx := n.prev[i], n.next[i]
		if p == None {
			*d.first(w) = nx
		} else {
			pn := &d.nodes[p]
			pn.next[pn.wireIndex(w)] = nx
		}
		if nx == None {
			*d.last(w) = p
		} else {
			nn := &d.nodes[nx]
			nn.prev[nn.wireIndex(w)] = p
		}
	}
	n.removed = true
	d.numOps--
}

// Op returns the operation stored at a node. The pointer aliases the DAG;
// callers must not change the operands.
func (d *DAG) Op(id NodeID) *circuit.Operation {
	n := &d.nodes[id]
	if n.removed {
		panic("unexpected situation: access to removed node")
	}
	return &n.op
}

// NumOps returns the number of live operation nodes.
func (d *DAG) NumOps() int {
	return d.numOps
}

// Predecessors returns the distinct nodes immediately preceding id on any of
// its wires, in ascending order.
func (d *DAG) Predecessors(id NodeID) []NodeID {
	return distinct(d.nodes[id].prev)
}

// Successors returns the distinct nodes immediately following id on any of
// its wires, in ascending order.
func (d *DAG) Successors(id NodeID) []NodeID {
	return distinct(d.nodes[id].next)
}

func distinct(ids []NodeID) []NodeID {
	res := make([]NodeID, 0, len(ids))
	for _, x := range ids {
		if x != None {
			res = append(res, x)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	out := res[:0]
	for i, x := range res {
		if i == 0 || res[i-1] != x {
			out = append(out, x)
		}
	}
	return out
}

// FrontLayer returns the nodes with no predecessor, in ascending order.
func (d *DAG) FrontLayer() []NodeID {
	var res []NodeID
	for id := range d.nodes {
		n := &d.nodes[id]
		if n.removed {
			continue
		}
		front := true
		for _, p := range n.prev {
			if p != None {
				front = false
				break
			}
		}
		if front {
			res = append(res, NodeID(id))
		}
	}
	return res
}

type nodeIDHeap []NodeID

func (h nodeIDHeap) Len() int            { return len(h) }
func (h nodeIDHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h nodeIDHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeIDHeap) Push(x interface{}) { *h = append(*h, x.(NodeID)) }
func (h *nodeIDHeap) Pop() interface{} {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// TopologicalOpNodes returns all live nodes in a deterministic topological
// order: among ready nodes the smallest id goes first.
func (d *DAG) TopologicalOpNodes() []NodeID {
	indeg := make(map[NodeID]int, d.numOps)
	h := &nodeIDHeap{}
	for id := range d.nodes {
		if d.nodes[id].removed {
			continue
		}
		deg := len(d.Predecessors(NodeID(id)))
		indeg[NodeID(id)] = deg
		if deg == 0 {
			*h = append(*h, NodeID(id))
		}
	}
	heap.Init(h)
	res := make([]NodeID, 0, d.numOps)
	for h.Len() > 0 {
		id := heap.Pop(h).(NodeID)
		res = append(res, id)
		for _, s := range d.Successors(id) {
			indeg[s]--
			if indeg[s] == 0 {
				heap.Push(h, s)
			}
		}
	}
	if len(res) != d.numOps {
		panic("unexpected situation: cycle in dag")
	}
	return res
}

// CountOps returns the number of live operations per gate name.
func (d *DAG) CountOps() map[string]int {
	counts := make(map[string]int)
	for id := range d.nodes {
		if d.nodes[id].removed {
			continue
		}
		counts[d.nodes[id].op.Gate.Name()]++
	}
	return counts
}

// CopyEmptyLike returns a DAG with the same registers and global phase but
// no operations.
func (d *DAG) CopyEmptyLike() *DAG {
	out := New(d.NumQubits, d.NumClbits)
	out.GlobalPhase = d.GlobalPhase.Clone()
	return out
}

// Copy returns a deep copy. Node ids are renumbered in topological order.
func (d *DAG) Copy() *DAG {
	out := d.CopyEmptyLike()
	for _, id := range d.TopologicalOpNodes() {
		if _, err := out.Append(d.nodes[id].op.Copy()); err != nil {
			panic(err)
		}
	}
	return out
}

// Reverse returns a DAG with the operations in reverse topological order.
// Used by layout search to route a circuit backwards.
func (d *DAG) Reverse() *DAG {
	out := d.CopyEmptyLike()
	order := d.TopologicalOpNodes()
	for i := len(order) - 1; i >= 0; i-- {
		if _, err := out.Append(d.nodes[order[i]].op.Copy()); err != nil {
			panic(err)
		}
	}
	return out
}

// AddGlobalPhase accumulates phase onto the DAG's global phase.
func (d *DAG) AddGlobalPhase(phase expr.Expression) {
	d.GlobalPhase = d.GlobalPhase.Add(phase)
}

// FromCircuit builds the DAG form of a circuit.
func FromCircuit(c *circuit.Circuit) (*DAG, error) {
	d := New(c.NumQubits, c.NumClbits)
	d.GlobalPhase = c.GlobalPhase.Clone()
	for i := range c.Ops {
		if _, err := d.Append(c.Ops[i].Copy()); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ToCircuit flattens the DAG back into a circuit in topological order.
func (d *DAG) ToCircuit() *circuit.Circuit {
	c := circuit.New(d.NumQubits, d.NumClbits)
	c.GlobalPhase = d.GlobalPhase.Clone()
	for _, id := range d.TopologicalOpNodes() {
		c.Ops = append(c.Ops, d.nodes[id].op.Copy())
	}
	return c
}
