package generation

import (
	"testing"

	"github.com/aukilabs/dvergr/geometry"
	"github.com/stretchr/testify/require"
)

func requireTiled(t *testing.T, n *Node) {
	l, r := n.Left.Bounds, n.Right.Bounds
	require.Equal(t, n.Bounds.Area(), l.Area()+r.Area())
	require.True(t, n.Bounds.Contains(l))
	require.True(t, n.Bounds.Contains(r))
	require.False(t, l.Overlaps(r))
}

func TestNodeSplit(t *testing.T) {
	opts := SplitOptions{StopProbabilityPercent: 0, MinAreaSize: 10}

	t.Run("vertical cut on wide bounds", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 40, 20))
		src := &scriptedSource{ints: []int{50, 15}, floats: []float64{0.9}}

		require.True(t, n.Split(src, opts))
		require.Equal(t, geometry.NewRect(0, 0, 15, 20), n.Left.Bounds)
		require.Equal(t, geometry.NewRect(15, 0, 25, 20), n.Right.Bounds)
		requireTiled(t, n)
	})

	t.Run("horizontal cut on tall bounds", func(t *testing.T) {
		n := NewNode(geometry.NewRect(5, 5, 20, 40))
		src := &scriptedSource{ints: []int{50, 12}, floats: []float64{0.1}}

		require.True(t, n.Split(src, opts))
		require.Equal(t, geometry.NewRect(5, 5, 20, 12), n.Left.Bounds)
		require.Equal(t, geometry.NewRect(5, 17, 20, 28), n.Right.Bounds)
		requireTiled(t, n)
	})

	t.Run("coin flip on square bounds", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 30, 30))
		src := &scriptedSource{ints: []int{50, 10}, floats: []float64{0.75}}

		require.True(t, n.Split(src, opts))
		require.Equal(t, 30, n.Left.Bounds.Width)
		require.Equal(t, 10, n.Left.Bounds.Height)
		requireTiled(t, n)
	})

	t.Run("stop draw declines", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 64, 64))
		src := &scriptedSource{ints: []int{29}}

		require.False(t, n.Split(src, SplitOptions{StopProbabilityPercent: 30, MinAreaSize: 10}))
		require.True(t, n.IsLeaf())
	})

	t.Run("non positive minimum size declines", func(t *testing.T) {
		for _, min := range []int{0, -3} {
			n := NewNode(geometry.NewRect(0, 0, 64, 64))
			src := &scriptedSource{ints: []int{50, 0}, floats: []float64{0.9}}

			require.False(t, n.Split(src, SplitOptions{MinAreaSize: min}))
			require.True(t, n.IsLeaf())
		}
	})

	t.Run("too small declines", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 19, 19))
		require.False(t, n.Split(NewSeededSource(1), opts))
		require.True(t, n.IsLeaf())
	})

	t.Run("internal node is not split again", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 64, 64))
		require.True(t, n.Split(NewSeededSource(1), opts))

		left := n.Left
		require.False(t, n.Split(NewSeededSource(1), opts))
		require.Same(t, left, n.Left)
	})

	t.Run("children respect minimum size", func(t *testing.T) {
		for seed := int64(1); seed < 500; seed++ {
			n := NewNode(geometry.NewRect(0, 0, 20+int(seed%40), 20+int(seed%23)))
			if !n.Split(NewSeededSource(seed), opts) {
				continue
			}
			requireTiled(t, n)

			if n.Left.Bounds.Width == n.Bounds.Width {
				require.GreaterOrEqual(t, n.Left.Bounds.Height, opts.MinAreaSize)
				require.GreaterOrEqual(t, n.Right.Bounds.Height, opts.MinAreaSize)
			} else {
				require.GreaterOrEqual(t, n.Left.Bounds.Width, opts.MinAreaSize)
				require.GreaterOrEqual(t, n.Right.Bounds.Width, opts.MinAreaSize)
			}
		}
	})
}

func TestNodeCarveRoom(t *testing.T) {
	t.Run("room keeps a margin", func(t *testing.T) {
		for seed := int64(1); seed < 500; seed++ {
			n := NewNode(geometry.NewRect(3, 7, 3+int(seed%30), 3+int(seed%17)))

			require.True(t, n.CarveRoom(NewSeededSource(seed)))
			require.NotNil(t, n.Room)
			require.True(t, n.Bounds.ContainsWithMargin(*n.Room), "bounds %+v room %+v", n.Bounds, *n.Room)
			require.False(t, n.Room.Empty())
		}
	})

	t.Run("smallest carvable leaf", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 3, 3))
		require.True(t, n.CarveRoom(NewSeededSource(1)))
		require.Equal(t, geometry.NewRect(1, 1, 1, 1), *n.Room)
	})

	t.Run("degenerate leaf", func(t *testing.T) {
		for _, b := range []geometry.Rect{
			geometry.NewRect(0, 0, 2, 10),
			geometry.NewRect(0, 0, 10, 2),
			geometry.NewRect(0, 0, 0, 0),
		} {
			n := NewNode(b)
			require.False(t, n.CarveRoom(NewSeededSource(1)))
			require.Nil(t, n.Room)
		}
	})

	t.Run("internal node", func(t *testing.T) {
		n := NewNode(geometry.NewRect(0, 0, 64, 64))
		require.True(t, n.Split(NewSeededSource(3), SplitOptions{MinAreaSize: 10}))
		require.False(t, n.CarveRoom(NewSeededSource(3)))
		require.Nil(t, n.Room)
	})
}

func TestNodeWalk(t *testing.T) {
	root := NewNode(geometry.NewRect(0, 0, 40, 40))
	root.Left = NewNode(geometry.NewRect(0, 0, 20, 40))
	root.Right = NewNode(geometry.NewRect(20, 0, 20, 40))
	root.Right.Left = NewNode(geometry.NewRect(20, 0, 20, 15))
	root.Right.Right = NewNode(geometry.NewRect(20, 15, 20, 25))

	var visited []geometry.Rect
	var depths []int
	root.Walk(func(n *Node, depth int) {
		visited = append(visited, n.Bounds)
		depths = append(depths, depth)
	})

	require.Equal(t, []geometry.Rect{
		root.Bounds,
		root.Left.Bounds,
		root.Right.Bounds,
		root.Right.Left.Bounds,
		root.Right.Right.Bounds,
	}, visited)
	require.Equal(t, []int{0, 1, 1, 2, 2}, depths)

	leaves := root.Leaves()
	require.Len(t, leaves, 3)
	require.Same(t, root.Left, leaves[0])
	require.Same(t, root.Right.Left, leaves[1])
	require.Same(t, root.Right.Right, leaves[2])

	require.Equal(t, 2, root.Depth())
	require.Equal(t, 5, root.Count())
	require.Equal(t, 0, root.Left.Depth())
}
