package propgraph

// BFSOrder computes a topological visitation order over the graph's nodes
// (spec.md §4.2): a forward breadth-first search from the roots records
// every node visit (once per path that reaches it) in a buffer; the buffer is then walked in
// reverse, keeping only the first-seen (deepest) occurrence of each node,
// and the kept sequence is itself reversed. The result guarantees that for
// every edge u -> v, u precedes v - the property the pi-pass and lambda-pass
// rely on to process every node's parents before the node itself.
func BFSOrder(g *Graph) []Node {
	type visit struct {
		node Node
	}

	var buffer []visit
	queue := make([]visit, 0, len(g.rootKeys))
	for _, key := range g.rootKeys {
		queue = append(queue, visit{node: SingleNode(g.roots[key])})
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		buffer = append(buffer, v)
		for _, child := range g.Forward(v.node) {
			queue = append(queue, visit{node: child})
		}
	}

	seen := make(map[string]bool, len(buffer))
	kept := make([]Node, 0, len(buffer))
	for i := len(buffer) - 1; i >= 0; i-- {
		n := buffer[i].node
		key := n.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, n)
	}

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

// ReverseBFSOrder is BFSOrder's reverse, the order the lambda-pass consumes
// (children processed before their parents).
func ReverseBFSOrder(g *Graph) []Node {
	fwd := BFSOrder(g)
	out := make([]Node, len(fwd))
	for i, n := range fwd {
		out[len(fwd)-1-i] = n
	}
	return out
}
