package device

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Coupling is the undirected qubit connectivity graph with precomputed
// all-pairs shortest path distances.
type Coupling struct {
	numQubits int
	g         *simple.UndirectedGraph
	edges     [][2]int
	dist      path.AllShortest
}

// NewCoupling builds a coupling graph over numQubits qubits. Isolated
// qubits are kept as graph nodes.
func NewCoupling(numQubits int, edges [][2]int) *Coupling {
	g := simple.NewUndirectedGraph()
	for i := 0; i < numQubits; i++ {
		g.AddNode(simple.Node(i))
	}
	kept := make([][2]int, 0, len(edges))
	for _, e := range edges {
		if e[0] == e[1] {
			continue
		}
		a, b := simple.Node(e[0]), simple.Node(e[1])
		if g.HasEdgeBetween(int64(e[0]), int64(e[1])) {
			continue
		}
		g.SetEdge(g.NewEdge(a, b))
		kept = append(kept, e)
	}
	c := &Coupling{numQubits: numQubits, g: g, edges: kept}
	c.dist, _ = path.FloydWarshall(g)
	return c
}

// NumQubits returns the number of physical qubits.
func (c *Coupling) NumQubits() int {
	return c.numQubits
}

// Edges returns the undirected edges.
func (c *Coupling) Edges() [][2]int {
	return c.edges
}

// HasEdge reports whether two qubits are adjacent.
func (c *Coupling) HasEdge(a, b int) bool {
	return c.g.HasEdgeBetween(int64(a), int64(b))
}

// Neighbors returns the qubits adjacent to q in ascending order.
func (c *Coupling) Neighbors(q int) []int {
	var res []int
	it := c.g.From(int64(q))
	for it.Next() {
		res = append(res, int(it.Node().ID()))
	}
	sort.Ints(res)
	return res
}

// Distance returns the shortest path length between two qubits, or -1 when
// they are in different components.
func (c *Coupling) Distance(a, b int) int {
	w := c.dist.Weight(int64(a), int64(b))
	if math.IsInf(w, 1) || math.IsNaN(w) {
		return -1
	}
	return int(w)
}

// ShortestPath returns one shortest path between two qubits, endpoints
// included, or nil when unreachable.
func (c *Coupling) ShortestPath(a, b int) []int {
	nodes, _, _ := c.dist.Between(int64(a), int64(b))
	if nodes == nil {
		return nil
	}
	res := make([]int, len(nodes))
	for i, n := range nodes {
		res[i] = int(n.ID())
	}
	return res
}

// Components returns the connected components, each sorted ascending,
// ordered by their smallest qubit.
func (c *Coupling) Components() [][]int {
	comps := topo.ConnectedComponents(c.g)
	res := make([][]int, 0, len(comps))
	for _, comp := range comps {
		qs := make([]int, len(comp))
		for i, n := range comp {
			qs[i] = int(n.ID())
		}
		sort.Ints(qs)
		res = append(res, qs)
	}
	sort.Slice(res, func(i, j int) bool { return res[i][0] < res[j][0] })
	return res
}

// IsConnected reports whether all qubits are mutually reachable.
func (c *Coupling) IsConnected() bool {
	return len(c.Components()) <= 1
}
