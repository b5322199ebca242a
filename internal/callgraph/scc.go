package callgraph

import "slices"

// SCCs returns the strongly connected components, callees before callers
// (Tarjan выдаёт сначала компоненты-листья). Members are sorted by id.
func (g *Graph) SCCs() [][]NodeID {
	n := g.Len()
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack []NodeID
		out   [][]NodeID
		next  int
	)

	var strong func(v NodeID)
	strong = func(v NodeID) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Edges[int(v)] {
			switch {
			case index[w] < 0:
				strong(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []NodeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			slices.Sort(comp)
			out = append(out, comp)
		}
	}

	for i := range n {
		if index[i] < 0 {
			strong(mustID(i))
		}
	}
	return out
}

// Recursive reports the nodes that lie on a cycle: members of a component
// with more than one node, or nodes with a self edge.
func (g *Graph) Recursive() map[string]bool {
	out := make(map[string]bool)
	for _, comp := range g.SCCs() {
		if len(comp) > 1 {
			for _, id := range comp {
				out[g.Name(id)] = true
			}
			continue
		}
		id := comp[0]
		if _, self := slices.BinarySearch(g.Edges[int(id)], id); self {
			out[g.Name(id)] = true
		}
	}
	return out
}

// Component returns the names in the same strongly connected component as name.
func (g *Graph) Component(name string) []string {
	id, ok := g.ID(name)
	if !ok {
		return nil
	}
	for _, comp := range g.SCCs() {
		if slices.Contains(comp, id) {
			out := make([]string, len(comp))
			for i, m := range comp {
				out[i] = g.Name(m)
			}
			return out
		}
	}
	return nil
}
