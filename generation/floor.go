package generation

import (
	"github.com/aukilabs/dvergr/geometry"
)

const (
	// DefaultIterations is the default number of partition passes per floor.
	DefaultIterations = 4

	// DefaultFloorStopProbabilityPercent is the stop probability used when
	// laying out dungeon floors.
	DefaultFloorStopProbabilityPercent = 30
)

// FloorLayout builds the partition tree of a floor and carves its rooms.
type FloorLayout struct {
	// The number of partition passes.
	Iterations int

	// The chance, in percent, that a frontier node declines to split.
	StopProbabilityPercent int

	// The minimum extent of a split child along the divided axis.
	MinAreaSize int
}

// DefaultFloorLayout returns the layout used for dungeon floors.
func DefaultFloorLayout() FloorLayout {
	return FloorLayout{
		Iterations:             DefaultIterations,
		StopProbabilityPercent: DefaultFloorStopProbabilityPercent,
		MinAreaSize:            DefaultMinAreaSize,
	}
}

// Generate partitions the footprint with exactly Iterations passes and then
// carves a room in every node of the final frontier. The frontier is returned
// in left to right order.
func (l FloorLayout) Generate(footprint geometry.Rect, src RandomSource) (*Node, []*Node) {
	root := NewNode(footprint)
	frontier := []*Node{root}

	for i := 0; i < l.Iterations; i++ {
		frontier = l.Pass(frontier, src)
	}

	for _, n := range frontier {
		n.CarveRoom(src)
	}
	return root, frontier
}

// Pass attempts to split every node of the frontier and returns the next
// frontier: the children of the nodes that split, and the nodes that declined.
func (l FloorLayout) Pass(frontier []*Node, src RandomSource) []*Node {
	opts := l.splitOptions()
	next := make([]*Node, 0, len(frontier)*2)

	for _, n := range frontier {
		if n.Split(src, opts) {
			next = append(next, n.Left, n.Right)
			continue
		}
		next = append(next, n)
	}
	return next
}

func (l FloorLayout) splitOptions() SplitOptions {
	return SplitOptions{
		StopProbabilityPercent: l.StopProbabilityPercent,
		MinAreaSize:            l.MinAreaSize,
	}
}
