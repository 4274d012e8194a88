package generation

import (
	"github.com/aukilabs/dvergr/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	// DefaultStopProbabilityPercent is the default chance, in percent, that a
	// node declines to split.
	DefaultStopProbabilityPercent = 10

	// DefaultMinAreaSize is the default minimum extent of a split child along
	// the divided axis.
	DefaultMinAreaSize = 10

	aspectRatioLimit = 1.25
)

// SplitOptions configures how a node is split.
type SplitOptions struct {
	// The chance, in percent, that a node declines to split. It is evaluated
	// before any geometric decision.
	StopProbabilityPercent int

	// The minimum extent of each child along the divided axis.
	MinAreaSize int
}

// Node is a node of a binary space partition tree. A node is either a leaf,
// which may hold a room, or an internal node with exactly two children that
// tile its bounds.
type Node struct {
	Bounds geometry.Rect  `json:"bounds"`
	Room   *geometry.Rect `json:"room,omitempty"`
	Left   *Node          `json:"left,omitempty"`
	Right  *Node          `json:"right,omitempty"`
}

// NewNode creates a leaf covering the given bounds.
func NewNode(bounds geometry.Rect) *Node {
	return &Node{Bounds: bounds}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Split tries to divide a leaf into two children. It returns false when the
// node is not a leaf, when the minimum size is not positive, when the stop draw
// declines the split or when the divided extent is too small to give both
// children the minimum size.
func (n *Node) Split(src RandomSource, opts SplitOptions) bool {
	if !n.IsLeaf() || opts.MinAreaSize < 1 {
		return false
	}

	if src.Int(0, 100) < opts.StopProbabilityPercent {
		return false
	}

	horizontal := src.Float64() > 0.5

	w, h := n.Bounds.Width, n.Bounds.Height
	if w > h && float64(w)/float64(h) >= aspectRatioLimit {
		horizontal = false
	} else if h > w && float64(h)/float64(w) >= aspectRatioLimit {
		horizontal = true
	}

	extent := w
	if horizontal {
		extent = h
	}
	if extent < 2*opts.MinAreaSize {
		return false
	}

	offset := src.Int(opts.MinAreaSize, extent-opts.MinAreaSize)
	b := n.Bounds

	if horizontal {
		n.Left = NewNode(geometry.NewRect(b.X, b.Y, b.Width, offset))
		n.Right = NewNode(geometry.NewRect(b.X, b.Y+offset, b.Width, b.Height-offset))
	} else {
		n.Left = NewNode(geometry.NewRect(b.X, b.Y, offset, b.Height))
		n.Right = NewNode(geometry.NewRect(b.X+offset, b.Y, b.Width-offset, b.Height))
	}
	return true
}

// CarveRoom places a room inside a leaf, keeping a margin of at least one unit
// on every side. It returns false for internal nodes and for leaves too small to
// hold a room.
func (n *Node) CarveRoom(src RandomSource) bool {
	if !n.IsLeaf() {
		return false
	}

	if err := n.checkCarvable(); err != nil {
		instrumentDegenerateLeaf()
		logDegenerateLeaf(err)
		return false
	}

	b := n.Bounds
	width := src.Int(b.Width/2, b.Width-1)
	height := src.Int(b.Height/2, b.Height-1)
	x := b.X + src.Int(1, b.Width-width)
	y := b.Y + src.Int(1, b.Height-height)

	room := geometry.NewRect(x, y, width, height)
	n.Room = &room
	return true
}

func (n *Node) checkCarvable() error {
	b := n.Bounds
	if b.Width/2 >= b.Width-1 || b.Height/2 >= b.Height-1 {
		return errors.New("leaf too small for a room").
			WithType(ErrTypeDegenerateGeometry).
			WithTag("bounds", b)
	}
	return nil
}

// Leaves returns the leaves of the tree rooted at n, left to right.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node, depth int) {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// Walk calls fn for every node of the tree rooted at n, in pre-order.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	if n.Left != nil {
		n.Left.walk(fn, depth+1)
	}
	if n.Right != nil {
		n.Right.walk(fn, depth+1)
	}
}

// Depth returns the length of the longest path from n to a leaf.
func (n *Node) Depth() int {
	depth := 0
	n.Walk(func(_ *Node, d int) {
		depth = max(depth, d)
	})
	return depth
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) {
		count++
	})
	return count
}
