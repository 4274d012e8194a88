package models

import (
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// SequentialIDGenerator generates sequential ids starting at 1. Released ids
// are handed out again, lowest first, before new ones.
type SequentialIDGenerator struct {
	mutex       sync.Mutex
	currentID   uint32
	reusableIDs mapset.Set[uint32]
}

// New returns an id that is not in use.
func (g *SequentialIDGenerator) New() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.reusableIDs.Size() != 0 {
		var lowest uint32
		g.reusableIDs.Each(func(id uint32) {
			if lowest == 0 || id < lowest {
				lowest = id
			}
		})
		g.reusableIDs.Remove(lowest)
		return lowest
	}

	g.currentID++
	return g.currentID
}

// Reuse releases the given id so New can return it again.
func (g *SequentialIDGenerator) Reuse(id uint32) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.reusableIDs.Size() == 0 {
		g.reusableIDs = mapset.New[uint32]()
	}
	g.reusableIDs.Put(id)
}
