package callgraph

import (
	"slices"
)

type Topo struct {
	Order   []NodeID   // линейный порядок
	Batches [][]NodeID // волны независимых узлов
	Cyclic  bool
	Cycles  []NodeID // узлы, оставшиеся в цикле
}

// ToposortKahn orders nodes so that every edge goes from an earlier batch to
// a later one. Nodes on cycles are left out of Order and listed in Cycles.
func ToposortKahn(g *Graph) *Topo {
	n := g.Len()
	indeg := make([]int, n)
	for from := range g.Edges {
		for _, to := range g.Edges[from] {
			if int(to) != from {
				indeg[int(to)]++
			}
		}
	}

	topo := &Topo{
		Order: make([]NodeID, 0, n),
	}

	current := make([]NodeID, 0, n)
	for i := range n {
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if to == id {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != n {
		topo.Cyclic = true
		for i := range n {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
	}
	return topo
}
