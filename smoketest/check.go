package smoketest

import (
	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/dvergr/geometry"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Check verifies the layout invariants of every floor of d:
//   - the leaves of a partition tree tile the floor footprint;
//   - a split child is never narrower than layout.MinAreaSize along the cut;
//   - a room lies strictly inside its leaf;
//   - replaying the floor pass by pass conserves the frontier area.
func Check(d *generation.DungeonInstance, layout generation.FloorLayout) error {
	for i := range d.Floors {
		f := &d.Floors[i]
		if f.Root == nil {
			return errors.New("floor has no partition tree").
				WithType(ErrTypeSmokeTest).
				WithTag("floor_index", f.FloorIndex)
		}

		if err := checkTiling(f); err != nil {
			return err
		}
		if err := checkSplits(f, layout.MinAreaSize); err != nil {
			return err
		}
		if err := checkRooms(f); err != nil {
			return err
		}
		if err := checkReplay(f, layout); err != nil {
			return err
		}
	}
	return nil
}

func checkTiling(f *generation.FloorInstance) error {
	footprint := f.Footprint()
	if f.Root.Bounds != footprint {
		return errors.New("root bounds differ from the floor footprint").
			WithType(ErrTypeSmokeTest).
			WithTag("floor_index", f.FloorIndex)
	}

	leaves := f.Root.Leaves()
	area := 0
	for i, l := range leaves {
		if !footprint.Contains(l.Bounds) {
			return errors.New("leaf outside of the floor").
				WithType(ErrTypeSmokeTest).
				WithTag("floor_index", f.FloorIndex).
				WithTag("leaf", l.Bounds)
		}
		for _, o := range leaves[i+1:] {
			if l.Bounds.Overlaps(o.Bounds) {
				return errors.New("overlapping leaves").
					WithType(ErrTypeSmokeTest).
					WithTag("floor_index", f.FloorIndex).
					WithTag("leaf", l.Bounds).
					WithTag("other", o.Bounds)
			}
		}
		area += l.Bounds.Area()
	}

	if area != footprint.Area() {
		return errors.New("leaves do not cover the floor").
			WithType(ErrTypeSmokeTest).
			WithTag("floor_index", f.FloorIndex).
			WithTag("area", area).
			WithTag("expected_area", footprint.Area())
	}
	return nil
}

func checkSplits(f *generation.FloorInstance, minAreaSize int) error {
	var err error

	f.Root.Walk(func(n *generation.Node, depth int) {
		if err != nil || n.IsLeaf() {
			return
		}

		for _, c := range []*generation.Node{n.Left, n.Right} {
			extent := c.Bounds.Width
			if c.Bounds.Width == n.Bounds.Width {
				extent = c.Bounds.Height
			}

			if extent < minAreaSize {
				err = errors.New("split child below the minimum size").
					WithType(ErrTypeSmokeTest).
					WithTag("floor_index", f.FloorIndex).
					WithTag("node", c.Bounds).
					WithTag("depth", depth+1).
					WithTag("min_area_size", minAreaSize)
				return
			}
		}
	})
	return err
}

func checkRooms(f *generation.FloorInstance) error {
	rooms := make(map[geometry.Rect]bool, len(f.Rooms))
	for _, r := range f.Rooms {
		rooms[r.Bounds] = true
	}

	carved := 0
	for _, l := range f.Root.Leaves() {
		if l.Room == nil {
			continue
		}

		if !l.Bounds.ContainsWithMargin(*l.Room) {
			return errors.New("room touches its leaf bounds").
				WithType(ErrTypeSmokeTest).
				WithTag("floor_index", f.FloorIndex).
				WithTag("leaf", l.Bounds).
				WithTag("room", *l.Room)
		}
		if !rooms[*l.Room] {
			return errors.New("carved room is missing from the floor").
				WithType(ErrTypeSmokeTest).
				WithTag("floor_index", f.FloorIndex).
				WithTag("room", *l.Room)
		}
		carved++
	}

	if carved != len(f.Rooms) {
		return errors.New("room count differs from carved leaves").
			WithType(ErrTypeSmokeTest).
			WithTag("floor_index", f.FloorIndex).
			WithTag("rooms", len(f.Rooms)).
			WithTag("carved", carved)
	}
	return nil
}

func checkReplay(f *generation.FloorInstance, layout generation.FloorLayout) error {
	src := generation.NewSeededSource(f.Seed)
	footprint := f.Footprint()
	frontier := []*generation.Node{generation.NewNode(footprint)}

	for pass := 0; pass < layout.Iterations; pass++ {
		next := layout.Pass(frontier, src)

		area := 0
		for _, n := range next {
			area += n.Bounds.Area()
		}
		if area != footprint.Area() || len(next) < len(frontier) {
			return errors.New("pass does not conserve the frontier").
				WithType(ErrTypeSmokeTest).
				WithTag("floor_index", f.FloorIndex).
				WithTag("pass", pass).
				WithTag("area", area)
		}
		frontier = next
	}

	leaves := f.Root.Leaves()
	if len(leaves) != len(frontier) {
		return errors.New("replayed frontier differs from the floor").
			WithType(ErrTypeSmokeTest).
			WithTag("floor_index", f.FloorIndex).
			WithTag("leaves", len(leaves)).
			WithTag("replayed", len(frontier))
	}
	for i, l := range leaves {
		if l.Bounds != frontier[i].Bounds {
			return errors.New("replayed frontier differs from the floor").
				WithType(ErrTypeSmokeTest).
				WithTag("floor_index", f.FloorIndex).
				WithTag("leaf", l.Bounds).
				WithTag("replayed", frontier[i].Bounds)
		}
	}
	return nil
}
