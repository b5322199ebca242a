package callgraph

import (
	"slices"
)

// Graph is an immutable directed graph over string-named nodes.
type Graph struct {
	Index Index
	Edges [][]NodeID // Edges[from] = []to, sorted, no duplicates
}

// Builder collects nodes and edges; nodes mentioned only as edge targets
// are created implicitly.
type Builder struct {
	nodes []string
	edges map[string][]string
}

func NewBuilder() *Builder {
	return &Builder{edges: make(map[string][]string)}
}

func (b *Builder) AddNode(name string) {
	b.nodes = append(b.nodes, name)
}

func (b *Builder) AddEdge(from, to string) {
	b.nodes = append(b.nodes, from, to)
	b.edges[from] = append(b.edges[from], to)
}

func (b *Builder) Build() *Graph {
	idx := BuildIndex(b.nodes)
	g := &Graph{
		Index: idx,
		Edges: make([][]NodeID, len(idx.IDToName)),
	}
	for from, tos := range b.edges {
		fid := idx.NameToID[from]
		out := make([]NodeID, 0, len(tos))
		for _, to := range tos {
			out = append(out, idx.NameToID[to])
		}
		slices.Sort(out)
		g.Edges[int(fid)] = slices.Compact(out)
	}
	return g
}

func (g *Graph) Len() int { return len(g.Index.IDToName) }

func (g *Graph) ID(name string) (NodeID, bool) {
	id, ok := g.Index.NameToID[name]
	return id, ok
}

func (g *Graph) Name(id NodeID) string {
	return g.Index.IDToName[int(id)]
}

// Successors returns the names of the direct successors of name.
func (g *Graph) Successors(name string) []string {
	id, ok := g.ID(name)
	if !ok {
		return nil
	}
	out := make([]string, len(g.Edges[int(id)]))
	for i, to := range g.Edges[int(id)] {
		out[i] = g.Name(to)
	}
	return out
}

// Reachable returns every node reachable from roots, roots included.
// Unknown roots are ignored.
func (g *Graph) Reachable(roots ...string) map[string]bool {
	seen := make([]bool, g.Len())
	stack := make([]NodeID, 0, len(roots))
	for _, r := range roots {
		if id, ok := g.ID(r); ok && !seen[int(id)] {
			seen[int(id)] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range g.Edges[int(id)] {
			if !seen[int(to)] {
				seen[int(to)] = true
				stack = append(stack, to)
			}
		}
	}
	out := make(map[string]bool)
	for i, ok := range seen {
		if ok {
			out[g.Index.IDToName[i]] = true
		}
	}
	return out
}
