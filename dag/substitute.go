package dag

import (
	"fmt"

	"github.com/qompiler/qompiler/circuit"
)

// SubstituteNodeWithDAG replaces one node by the contents of another DAG.
// Qubit i of sub maps to the i-th operand qubit of the node, clbit i to its
// i-th operand clbit. The substituted node's condition, if any, is
// propagated onto every replacement operation. sub's global phase is added
// to the receiver's.
func (d *DAG) SubstituteNodeWithDAG(id NodeID, sub *DAG) error {
	n := &d.nodes[id]
	if n.removed {
		return fmt.Errorf("dag: substitute of removed node %d", id)
	}
	if sub.NumQubits != len(n.op.Qubits) {
		return fmt.Errorf("dag: replacement has %d qubits, node %s has %d operands",
			sub.NumQubits, n.op.Gate.Name(), len(n.op.Qubits))
	}
	if sub.NumClbits != len(n.op.Clbits) {
		return fmt.Errorf("dag: replacement has %d clbits, node %s has %d operands",
			sub.NumClbits, n.op.Gate.Name(), len(n.op.Clbits))
	}

	qmap := n.op.Qubits
	cmap := n.op.Clbits
	cond := n.op.Condition

	// map replacement ops onto outer wires before mutating anything
	order := sub.TopologicalOpNodes()
	mapped := make([]circuit.Operation, 0, len(order))
	for _, sid := range order {
		op := sub.nodes[sid].op.Copy()
		for i, q := range op.Qubits {
			op.Qubits[i] = qmap[q]
		}
		for i, c := range op.Clbits {
			op.Clbits[i] = cmap[c]
		}
		if op.Condition != nil {
			op.Condition.Clbit = cmap[op.Condition.Clbit]
		} else if cond != nil {
			cc := *cond
			op.Condition = &cc
		}
		if err := d.checkOp(&op); err != nil {
			return err
		}
		mapped = append(mapped, op)
	}

	// cursor starts at the old node's predecessor on each wire; tail is its
	// successor and stays fixed while nodes are spliced in between
	cursor := make(map[wireRef]NodeID, len(n.wires))
	tail := make(map[wireRef]NodeID, len(n.wires))
	for i, w := range n.wires {
		cursor[w] = n.prev[i]
		tail[w] = n.next[i]
	}
	d.Remove(id)

	for _, op := range mapped {
		ws := opWires(&op)
		nid := NodeID(len(d.nodes))
		nn := node{
			op:    op,
			wires: ws,
			prev:  make([]NodeID, len(ws)),
			next:  make([]NodeID, len(ws)),
		}
		for i, w := range ws {
			c, ok := cursor[w]
			if !ok {
				panic("unexpected situation: replacement op leaves substituted wires")
			}
			t := tail[w]
			nn.prev[i] = c
			nn.next[i] = t
			if c == None {
				*d.first(w) = nid
			} else {
				cn := &d.nodes[c]
				cn.next[cn.wireIndex(w)] = nid
			}
			if t == None {
				*d.last(w) = nid
			} else {
				tn := &d.nodes[t]
				tn.prev[tn.wireIndex(w)] = nid
			}
			cursor[w] = nid
		}
		d.nodes = append(d.nodes, nn)
		d.numOps++
	}

	d.GlobalPhase = d.GlobalPhase.Add(sub.GlobalPhase)
	return nil
}
