package classifier

// Node is one node of a regression tree. Leaves have Left == -1 and carry
// the leaf weight (shrinkage already applied); internal nodes route on
// x[Feature] <= Threshold.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// Tree is a regression tree in the boosted ensemble. Nodes are stored flat
// so trees serialize cleanly with encoding/gob.
type Tree struct {
	Nodes []Node
}

// Predict walks the tree for one sample and returns the leaf weight.
func (t *Tree) Predict(x []float64) float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// leaf appends a leaf node and returns its index.
func (t *Tree) leaf(value float64) int {
	t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1, Value: value})
	return len(t.Nodes) - 1
}

// split appends an internal node with placeholder children and returns its
// index; callers patch Left/Right once subtrees are built.
func (t *Tree) split(feature int, threshold float64) int {
	t.Nodes = append(t.Nodes, Node{Feature: feature, Threshold: threshold, Left: -1, Right: -1})
	return len(t.Nodes) - 1
}
