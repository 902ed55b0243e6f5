// Package basis implements translation of a circuit into the gate basis a
// target supports, by searching the equivalence library for rewrite chains
// and applying them gate by gate.
package basis

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/qompiler/qompiler/circuit"
	"github.com/qompiler/qompiler/dag"
	"github.com/qompiler/qompiler/device"
	"github.com/qompiler/qompiler/equiv"
	"github.com/qompiler/qompiler/expr"
	"github.com/qompiler/qompiler/logger"
)

// ErrUnreachable is returned when no chain of equivalence rules connects a
// gate to the target basis.
var ErrUnreachable = errors.New("basis: no translation path")

// Translator rewrites circuits into a target's native basis.
type Translator struct {
	lib    *equiv.Library
	target *device.Target
}

// NewTranslator returns a translator over the given rule library and target.
func NewTranslator(lib *equiv.Library, target *device.Target) *Translator {
	return &Translator{lib: lib, target: target}
}

// pick is the chosen rule for one gate key after the search.
type pick struct {
	cost  int
	rule  int
	entry equiv.Entry
}

// composed is a fully expanded replacement: its circuit contains only
// basis gates.
type composed struct {
	params []expr.Symbol
	body   *circuit.Circuit
}

// Run translates the DAG into the target basis and returns a new DAG. The
// input is left untouched.
func (t *Translator) Run(d *dag.DAG) (*dag.DAG, error) {
	log := logger.Logger()

	sourceKeys := sourceBasis(d)
	targetNames := make(map[string]bool)
	for _, name := range t.target.OperationNames() {
		targetNames[name] = true
	}

	// fast path: everything already expressed in target names
	if coveredBy(sourceKeys, targetNames) && len(t.target.NonGlobalOperationNames()) == 0 {
		return d.Copy(), nil
	}

	picks, err := t.search(targetNames, sourceKeys)
	if err != nil {
		return nil, err
	}

	// operations restricted to specific qargs need their own searches,
	// one per (name, qargs) pair, run in parallel
	nonGlobal := make(map[string]bool)
	for _, name := range t.target.NonGlobalOperationNames() {
		nonGlobal[name] = true
	}
	localPicks, err := t.searchNonGlobal(d, nonGlobal)
	if err != nil {
		return nil, err
	}

	out := d.Copy()
	replaced := 0
	for _, id := range out.TopologicalOpNodes() {
		n, err := t.translateNode(out, id, targetNames, nonGlobal, picks, localPicks)
		if err != nil {
			return nil, err
		}
		replaced += n
	}
	log.Debug().
		Int("replaced", replaced).
		Int("ops", out.NumOps()).
		Msg("translated to target basis")
	return out, nil
}

// RunCircuit is Run on the flat circuit form.
func (t *Translator) RunCircuit(c *circuit.Circuit) (*circuit.Circuit, error) {
	d, err := dag.FromCircuit(c)
	if err != nil {
		return nil, err
	}
	out, err := t.Run(d)
	if err != nil {
		return nil, err
	}
	return out.ToCircuit(), nil
}

func (t *Translator) translateNode(out *dag.DAG, id dag.NodeID, targetNames, nonGlobal map[string]bool,
	picks map[equiv.Key]pick, localPicks map[string]map[equiv.Key]pick) (int, error) {

	op := out.Op(id)
	if !op.Gate.IsUnitary() && !op.Gate.IsControlFlow() {
		// barrier, measure and reset pass through untranslated
		return 0, nil
	}
	if op.Gate.IsControlFlow() {
		// translate each block in place
		for i, block := range op.Blocks {
			bd, err := dag.FromCircuit(block)
			if err != nil {
				return 0, err
			}
			bt, err := t.Run(bd)
			if err != nil {
				return 0, err
			}
			op.Blocks[i] = bt.ToCircuit()
		}
		return 0, nil
	}

	key := equiv.Key{Name: op.Gate.Name(), NumQubits: len(op.Qubits)}
	if targetNames[key.Name] {
		if !nonGlobal[key.Name] || t.target.Supported(key.Name, op.Qubits) {
			return 0, nil
		}
		// name exists but not on these qargs; fall through to the local
		// search result
		if local, ok := localPicks[qargsID(key.Name, op.Qubits)]; ok {
			if _, ok := local[key]; ok {
				return t.substitute(out, id, key, local)
			}
		}
	}
	if _, ok := picks[key]; ok {
		return t.substitute(out, id, key, picks)
	}
	return 0, fmt.Errorf("%w: gate %s (%d qubits) to basis %v",
		ErrUnreachable, key.Name, key.NumQubits, t.target.OperationNames())
}

func (t *Translator) substitute(out *dag.DAG, id dag.NodeID, key equiv.Key, picks map[equiv.Key]pick) (int, error) {
	op := out.Op(id)
	memo := make(map[equiv.Key]*composed)
	comp, err := t.compose(key, picks, memo)
	if err != nil {
		return 0, err
	}
	if len(comp.params) != len(op.Params) {
		panic("unexpected situation: composed rule parameter count mismatch")
	}
	bind := make(map[expr.Symbol]expr.Expression, len(comp.params))
	for i, s := range comp.params {
		bind[s] = op.Params[i]
	}
	// angles like θ/2 recur across the composed body; the bind map is
	// fixed here, so bound results can be shared by source expression
	cache := make(expr.Map)
	bindExpr := func(p expr.Expression) expr.Expression {
		if v, ok := cache.Find(p); ok {
			return v.(expr.Expression)
		}
		b := p.Bind(bind)
		cache.Set(p, b)
		return b
	}
	bound := comp.body.Copy()
	for i := range bound.Ops {
		for j := range bound.Ops[i].Params {
			bound.Ops[i].Params[j] = bindExpr(bound.Ops[i].Params[j])
		}
	}
	bound.GlobalPhase = bindExpr(bound.GlobalPhase)
	sub, err := dag.FromCircuit(bound)
	if err != nil {
		return 0, err
	}
	if err := out.SubstituteNodeWithDAG(id, sub); err != nil {
		return 0, err
	}
	return 1, nil
}

// sourceBasis collects the distinct gate keys of a DAG, recursing into
// control flow blocks. Barriers are skipped.
func sourceBasis(d *dag.DAG) []equiv.Key {
	seen := make(map[equiv.Key]bool)
	var walkCircuit func(c *circuit.Circuit)
	walkOp := func(op *circuit.Operation) {
		if !op.Gate.IsUnitary() && !op.Gate.IsControlFlow() {
			return
		}
		if op.Gate.IsControlFlow() {
			for _, b := range op.Blocks {
				walkCircuit(b)
			}
			return
		}
		seen[equiv.Key{Name: op.Gate.Name(), NumQubits: len(op.Qubits)}] = true
	}
	walkCircuit = func(c *circuit.Circuit) {
		for i := range c.Ops {
			walkOp(&c.Ops[i])
		}
	}
	for _, id := range d.TopologicalOpNodes() {
		walkOp(d.Op(id))
	}
	keys := make([]equiv.Key, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].NumQubits < keys[j].NumQubits
	})
	return keys
}

func coveredBy(keys []equiv.Key, names map[string]bool) bool {
	for _, k := range keys {
		if !names[k.Name] {
			return false
		}
	}
	return true
}

func qargsID(name string, qargs []int) string {
	s := name
	for _, q := range qargs {
		s += fmt.Sprintf(",%d", q)
	}
	return s
}

// searchNonGlobal runs one basis search per distinct (name, qargs) pair of
// operations whose name is restricted to specific qargs on the target.
func (t *Translator) searchNonGlobal(d *dag.DAG, nonGlobal map[string]bool) (map[string]map[equiv.Key]pick, error) {
	if len(nonGlobal) == 0 {
		return nil, nil
	}
	type job struct {
		id    string
		key   equiv.Key
		qargs []int
	}
	var jobs []job
	seen := make(map[string]bool)
	for _, nid := range d.TopologicalOpNodes() {
		op := d.Op(nid)
		if !op.Gate.IsUnitary() {
			continue
		}
		name := op.Gate.Name()
		if !nonGlobal[name] || t.target.Supported(name, op.Qubits) {
			continue
		}
		id := qargsID(name, op.Qubits)
		if seen[id] {
			continue
		}
		seen[id] = true
		jobs = append(jobs, job{
			id:    id,
			key:   equiv.Key{Name: name, NumQubits: len(op.Qubits)},
			qargs: append([]int(nil), op.Qubits...),
		})
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	res := make(map[string]map[equiv.Key]pick, len(jobs))
	var mu sync.Mutex
	var eg errgroup.Group
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			// the local basis is whatever the target supports on exactly
			// these qargs, plus all unrestricted names
			local := make(map[string]bool)
			for _, name := range t.target.OperationNames() {
				if !nonGlobal[name] {
					local[name] = true
				} else if t.target.Supported(name, j.qargs) {
					local[name] = true
				}
			}
			picks, err := t.search(local, []equiv.Key{j.key})
			if err != nil {
				return fmt.Errorf("%w (on qubits %v)", err, j.qargs)
			}
			mu.Lock()
			res[j.id] = picks
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// search finds, for every source key, the cheapest rule chain ending in the
// target names. Cost of a key is 0 when its name is native, otherwise
// 1 plus the cost of every key its chosen rule uses. Ties break on rule
// insertion order, so results are deterministic.
func (t *Translator) search(targetNames map[string]bool, sourceKeys []equiv.Key) (map[equiv.Key]pick, error) {
	const inf = int(1e9)
	cost := make(map[equiv.Key]int)
	picks := make(map[equiv.Key]pick)

	keyCost := func(k equiv.Key) int {
		if targetNames[k.Name] {
			return 0
		}
		if c, ok := cost[k]; ok {
			return c
		}
		return inf
	}

	ruleCost := func(e equiv.Entry) int {
		total := 1
		for i := range e.Circuit.Ops {
			op := &e.Circuit.Ops[i]
			c := keyCost(equiv.Key{Name: op.Gate.Name(), NumQubits: len(op.Qubits)})
			if c >= inf {
				return inf
			}
			total += c
		}
		return total
	}

	// relax to a fixpoint; the rule graph is small and acyclic in cost
	for changed := true; changed; {
		changed = false
		for _, key := range t.lib.Keys() {
			if targetNames[key.Name] {
				continue
			}
			best := keyCost(key)
			for ruleIdx, entry := range t.lib.Entries(key) {
				if c := ruleCost(entry); c < best {
					best = c
					cost[key] = c
					picks[key] = pick{cost: c, rule: ruleIdx, entry: entry}
					changed = true
				}
			}
		}
	}

	for _, k := range sourceKeys {
		if targetNames[k.Name] {
			continue
		}
		if _, ok := picks[k]; !ok {
			names := make([]string, 0, len(targetNames))
			for n := range targetNames {
				names = append(names, n)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("%w: gate %s (%d qubits) to basis %v", ErrUnreachable, k.Name, k.NumQubits, names)
		}
	}
	return picks, nil
}

// compose expands the chosen rule of a key until only basis gates remain.
func (t *Translator) compose(key equiv.Key, picks map[equiv.Key]pick, memo map[equiv.Key]*composed) (*composed, error) {
	if c, ok := memo[key]; ok {
		return c, nil
	}
	p, ok := picks[key]
	if !ok {
		return nil, fmt.Errorf("%w: gate %s (%d qubits)", ErrUnreachable, key.Name, key.NumQubits)
	}
	out := circuit.New(p.entry.Circuit.NumQubits, 0)
	out.GlobalPhase = p.entry.Circuit.GlobalPhase.Clone()
	for i := range p.entry.Circuit.Ops {
		op := &p.entry.Circuit.Ops[i]
		opKey := equiv.Key{Name: op.Gate.Name(), NumQubits: len(op.Qubits)}
		if _, needs := picks[opKey]; !needs {
			// already a basis gate
			out.Ops = append(out.Ops, op.Copy())
			continue
		}
		inner, err := t.compose(opKey, picks, memo)
		if err != nil {
			return nil, err
		}
		bind := make(map[expr.Symbol]expr.Expression, len(inner.params))
		for j, s := range inner.params {
			bind[s] = op.Params[j]
		}
		for k := range inner.body.Ops {
			iop := inner.body.Ops[k].Copy()
			for j := range iop.Params {
				iop.Params[j] = iop.Params[j].Bind(bind)
			}
			mapped := make([]int, len(iop.Qubits))
			for j, q := range iop.Qubits {
				mapped[j] = op.Qubits[q]
			}
			iop.Qubits = mapped
			out.Ops = append(out.Ops, iop)
		}
		out.GlobalPhase = out.GlobalPhase.Add(inner.body.GlobalPhase.Bind(bind))
	}
	c := &composed{params: p.entry.Params, body: out}
	memo[key] = c
	return c, nil
}
