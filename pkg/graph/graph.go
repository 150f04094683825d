// Package graph provides the directed category graph used by the pruning and
// export stages. It is a plain adjacency-list structure: successor and
// predecessor maps kept in sync on every mutation. Not safe for concurrent
// mutation; the pipeline only touches it from a single goroutine.
package graph

// Directed is a directed graph over uint32 node ids. A node exists iff it
// appears as an endpoint of at least one edge (or did at some point and has
// not been removed). Self-loops are permitted.
type Directed struct {
	successors   map[uint32]map[uint32]struct{}
	predecessors map[uint32]map[uint32]struct{}
}

// NewDirected returns an empty graph.
func NewDirected() *Directed {
	return &Directed{
		successors:   make(map[uint32]map[uint32]struct{}),
		predecessors: make(map[uint32]map[uint32]struct{}),
	}
}

// Edge is a parent→child pair.
type Edge struct {
	Parent uint32
	Child  uint32
}

// AddEdges inserts edges, creating endpoints as needed. Duplicate edges are
// a no-op.
func (g *Directed) AddEdges(edges []Edge) {
	for _, e := range edges {
		g.ensureNode(e.Parent)
		g.ensureNode(e.Child)
		g.successors[e.Parent][e.Child] = struct{}{}
		g.predecessors[e.Child][e.Parent] = struct{}{}
	}
}

func (g *Directed) ensureNode(id uint32) {
	if _, ok := g.successors[id]; !ok {
		g.successors[id] = make(map[uint32]struct{})
		g.predecessors[id] = make(map[uint32]struct{})
	}
}

// Has reports whether id is a node of the graph.
func (g *Directed) Has(id uint32) bool {
	_, ok := g.successors[id]
	return ok
}

// Len returns the node count.
func (g *Directed) Len() int {
	return len(g.successors)
}

// Nodes returns all node ids in unspecified order.
func (g *Directed) Nodes() []uint32 {
	nodes := make([]uint32, 0, len(g.successors))
	for id := range g.successors {
		nodes = append(nodes, id)
	}
	return nodes
}

// SuccessorsOf returns the direct children of id, or nil if id is absent.
func (g *Directed) SuccessorsOf(id uint32) []uint32 {
	return collect(g.successors[id])
}

// PredecessorsOf returns the direct parents of id, or nil if id is absent.
func (g *Directed) PredecessorsOf(id uint32) []uint32 {
	return collect(g.predecessors[id])
}

func collect(set map[uint32]struct{}) []uint32 {
	if len(set) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// RemoveNodes deletes the given nodes and every incident edge. Removing an
// absent id is a no-op.
func (g *Directed) RemoveNodes(ids []uint32) {
	for _, id := range ids {
		if _, ok := g.successors[id]; !ok {
			continue
		}
		for child := range g.successors[id] {
			delete(g.predecessors[child], id)
		}
		for parent := range g.predecessors[id] {
			delete(g.successors[parent], id)
		}
		delete(g.successors, id)
		delete(g.predecessors, id)
	}
}

// WeaklyConnectedComponents partitions the node set into components reachable
// from one another when edge direction is ignored. Traversal is breadth-first.
// Component order and intra-component node order are unspecified.
func (g *Directed) WeaklyConnectedComponents() [][]uint32 {
	visited := make(map[uint32]struct{}, len(g.successors))
	var components [][]uint32

	for start := range g.successors {
		if _, ok := visited[start]; ok {
			continue
		}

		var component []uint32
		queue := []uint32{start}
		visited[start] = struct{}{}

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			component = append(component, id)

			for child := range g.successors[id] {
				if _, ok := visited[child]; !ok {
					visited[child] = struct{}{}
					queue = append(queue, child)
				}
			}
			for parent := range g.predecessors[id] {
				if _, ok := visited[parent]; !ok {
					visited[parent] = struct{}{}
					queue = append(queue, parent)
				}
			}
		}

		components = append(components, component)
	}

	return components
}
