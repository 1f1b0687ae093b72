package circuit

import (
	"slices"

	"qpragma/operations"
)

// DAGNode is one operation of a circuit in its dependency graph.
// An operation cannot run before the operations it depends on.
type DAGNode struct {
	ID           int // index of the operation in the circuit
	Operation    operations.Operation
	Dependencies []int // IDs of nodes that must run first
}

// DAG is the dependency graph of a circuit built from qubit involvement.
// An operation involving All is a barrier for everything before and after it.
// An operation involving None has no dependencies and nothing depends on it.
type DAG struct {
	Nodes     []*DAGNode
	rootNodes []int
}

// NewDAG builds the dependency graph of c.
func NewDAG(c *Circuit) *DAG {
	dag := &DAG{Nodes: make([]*DAGNode, 0, c.Len())}

	// Track the last operation on each qubit to establish dependencies
	lastOnQubit := make(map[int]int)
	lastBarrier := -1

	for id, op := range c.ops {
		node := &DAGNode{ID: id, Operation: op, Dependencies: []int{}}
		involved := op.InvolvedQubits()

		depSet := make(map[int]bool)
		switch involved.Kind {
		case operations.InvolveAll:
			for _, last := range lastOnQubit {
				depSet[last] = true
			}
			if lastBarrier >= 0 {
				depSet[lastBarrier] = true
			}
			clear(lastOnQubit)
			lastBarrier = id
		case operations.InvolveSet:
			// An empty set still follows the last barrier.
			if len(involved.Qubits) == 0 && lastBarrier >= 0 {
				depSet[lastBarrier] = true
			}
			for _, q := range involved.Qubits {
				if last, ok := lastOnQubit[q]; ok {
					depSet[last] = true
				} else if lastBarrier >= 0 {
					depSet[lastBarrier] = true
				}
			}
			for _, q := range involved.Qubits {
				lastOnQubit[q] = id
			}
		}

		for depID := range depSet {
			node.Dependencies = append(node.Dependencies, depID)
		}
		slices.Sort(node.Dependencies)
		dag.Nodes = append(dag.Nodes, node)
	}

	dag.updateRootNodes()
	return dag
}

// updateRootNodes recalculates the nodes with no dependencies.
func (dag *DAG) updateRootNodes() {
	dag.rootNodes = []int{}
	for _, node := range dag.Nodes {
		if len(node.Dependencies) == 0 {
			dag.rootNodes = append(dag.rootNodes, node.ID)
		}
	}
}

// Roots returns the IDs of nodes without dependencies.
func (dag *DAG) Roots() []int {
	return slices.Clone(dag.rootNodes)
}

// TopologicalSort returns nodes in an order respecting dependencies.
// Ties are broken by circuit position, so the order is deterministic.
func (dag *DAG) TopologicalSort() []*DAGNode {
	visited := make([]bool, len(dag.Nodes))
	result := make([]*DAGNode, 0, len(dag.Nodes))

	var visit func(id int)
	visit = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true

		node := dag.Nodes[id]
		for _, depID := range node.Dependencies {
			visit(depID)
		}
		result = append(result, node)
	}

	// Visit all root nodes first
	for _, rootID := range dag.rootNodes {
		visit(rootID)
	}

	// Visit any remaining unvisited nodes
	for id := range dag.Nodes {
		visit(id)
	}

	return result
}

// Layers groups nodes into moments: every node sits one layer after the
// deepest of its dependencies, so nodes in one layer can run in parallel.
func (dag *DAG) Layers() [][]*DAGNode {
	depth := make([]int, len(dag.Nodes))
	var layers [][]*DAGNode
	for _, node := range dag.TopologicalSort() {
		d := 0
		for _, depID := range node.Dependencies {
			d = max(d, depth[depID]+1)
		}
		depth[node.ID] = d
		for len(layers) <= d {
			layers = append(layers, nil)
		}
		layers[d] = append(layers[d], node)
	}
	for _, layer := range layers {
		slices.SortFunc(layer, func(a, b *DAGNode) int {
			return a.ID - b.ID
		})
	}
	return layers
}

// LayerOf returns the layer index of every node, indexed by node ID.
func (dag *DAG) LayerOf() []int {
	out := make([]int, len(dag.Nodes))
	for i, layer := range dag.Layers() {
		for _, node := range layer {
			out[node.ID] = i
		}
	}
	return out
}

// NodesOnQubit returns all nodes that touch qubit, including All barriers.
func (dag *DAG) NodesOnQubit(qubit int) []*DAGNode {
	var result []*DAGNode
	for _, node := range dag.Nodes {
		if node.Operation.InvolvedQubits().Contains(qubit) {
			result = append(result, node)
		}
	}
	return result
}
