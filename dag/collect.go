package dag

// collectEligible reports whether a node can join a gate run: a unitary
// gate on at most maxQubits qubits, unconditioned, uncalibrated, with all
// parameters bound.
func (d *DAG) collectEligible(id NodeID, maxQubits int) bool {
	op := &d.nodes[id].op
	if !op.Gate.IsUnitary() || len(op.Qubits) > maxQubits {
		return false
	}
	if op.Condition != nil || op.Calibrated {
		return false
	}
	_, bound := op.BoundParams()
	return bound
}

type run struct {
	nodes   []NodeID
	pair    [2]int
	hasPair bool
	done    bool
}

func samePair(a [2]int, q0, q1 int) bool {
	return (a[0] == q0 && a[1] == q1) || (a[0] == q1 && a[1] == q0)
}

// Collect2QRuns partitions the eligible gates into maximal runs that act on
// a single pair of qubits, interleaved one-qubit gates included. Runs
// containing no two-qubit gate are dropped. Runs are returned in
// topological order of their first node, each run internally topological.
func (d *DAG) Collect2QRuns() [][]NodeID {
	cur := make(map[int]*run, d.NumQubits)
	var runs []*run

	closeRun := func(q int) {
		if r := cur[q]; r != nil {
			r.done = true
			if r.hasPair {
				delete(cur, r.pair[0])
				delete(cur, r.pair[1])
			} else {
				delete(cur, q)
			}
		}
	}

	for _, id := range d.TopologicalOpNodes() {
		op := &d.nodes[id].op
		if !d.collectEligible(id, 2) {
			for _, q := range op.Qubits {
				closeRun(q)
			}
			continue
		}
		if len(op.Qubits) == 1 {
			q := op.Qubits[0]
			if r := cur[q]; r != nil {
				r.nodes = append(r.nodes, id)
			} else {
				r := &run{nodes: []NodeID{id}}
				runs = append(runs, r)
				cur[q] = r
			}
			continue
		}
		q0, q1 := op.Qubits[0], op.Qubits[1]
		r0, r1 := cur[q0], cur[q1]
		if r0 != nil && r0 == r1 && (!r0.hasPair || samePair(r0.pair, q0, q1)) {
			r0.nodes = append(r0.nodes, id)
			r0.pair = [2]int{q0, q1}
			r0.hasPair = true
			continue
		}
		// runs on both qubits end here; pure one-qubit prefixes are
		// absorbed into the new run instead
		r := &run{pair: [2]int{q0, q1}, hasPair: true}
		for _, prev := range []*run{r0, r1} {
			if prev == nil {
				continue
			}
			if prev.hasPair {
				prev.done = true
				delete(cur, prev.pair[0])
				delete(cur, prev.pair[1])
			} else {
				prev.done = true
				r.nodes = append(r.nodes, prev.nodes...)
				prev.nodes = nil
			}
		}
		r.nodes = append(r.nodes, id)
		runs = append(runs, r)
		cur[q0] = r
		cur[q1] = r
	}

	var res [][]NodeID
	for _, r := range runs {
		if r.hasPair && len(r.nodes) > 0 {
			res = append(res, r.nodes)
		}
	}
	return res
}

// Collect1QRuns returns the maximal runs of single-qubit gates per wire.
func (d *DAG) Collect1QRuns() [][]NodeID {
	cur := make(map[int]*run, d.NumQubits)
	var runs []*run
	for _, id := range d.TopologicalOpNodes() {
		op := &d.nodes[id].op
		if !d.collectEligible(id, 1) || len(op.Qubits) != 1 {
			for _, q := range op.Qubits {
				delete(cur, q)
			}
			continue
		}
		q := op.Qubits[0]
		if r := cur[q]; r != nil {
			r.nodes = append(r.nodes, id)
		} else {
			r := &run{nodes: []NodeID{id}}
			runs = append(runs, r)
			cur[q] = r
		}
	}
	var res [][]NodeID
	for _, r := range runs {
		if len(r.nodes) > 0 {
			res = append(res, r.nodes)
		}
	}
	return res
}
