package models

import (
	"sync"
	"time"

	"github.com/aukilabs/dvergr/generation"
	"github.com/google/uuid"
)

// DefaultStoreCapacity is the default number of dungeons a DungeonStore keeps.
const DefaultStoreCapacity = 256

// Dungeon is a generated dungeon kept in a store.
type Dungeon struct {
	ID          uint32                      `json:"id"`
	UUID        string                      `json:"uuid"`
	Fingerprint string                      `json:"fingerprint"`
	Signature   string                      `json:"signature,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	Instance    *generation.DungeonInstance `json:"dungeon"`
}

// DungeonSummary describes a stored dungeon without its layout.
type DungeonSummary struct {
	ID          uint32    `json:"id"`
	UUID        string    `json:"uuid"`
	Fingerprint string    `json:"fingerprint"`
	Seed        int64     `json:"seed"`
	DungeonType string    `json:"dungeon_type"`
	Floors      int       `json:"floors"`
	Rooms       int       `json:"rooms"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDungeon wraps a generated dungeon with a new run UUID.
func NewDungeon(id uint32, fingerprint string, d *generation.DungeonInstance) *Dungeon {
	return &Dungeon{
		ID:          id,
		UUID:        uuid.NewString(),
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
		Instance:    d,
	}
}

// Summary returns the summary of the dungeon.
func (d *Dungeon) Summary() DungeonSummary {
	return DungeonSummary{
		ID:          d.ID,
		UUID:        d.UUID,
		Fingerprint: d.Fingerprint,
		Seed:        d.Instance.Seed,
		DungeonType: d.Instance.DungeonType.Name,
		Floors:      len(d.Instance.Floors),
		Rooms:       d.Instance.RoomCount(),
		CreatedAt:   d.CreatedAt,
	}
}

// DungeonStore keeps the most recently generated dungeons in memory. When full,
// adding a dungeon evicts the oldest one.
type DungeonStore struct {
	// The maximum number of dungeons kept. Zero uses DefaultStoreCapacity.
	Capacity int

	initOnce sync.Once
	mutex    sync.RWMutex
	dungeons map[uint32]*Dungeon
	order    []uint32
	ids      SequentialIDGenerator
}

func (s *DungeonStore) init() {
	s.dungeons = make(map[uint32]*Dungeon)

	if s.Capacity <= 0 {
		s.Capacity = DefaultStoreCapacity
	}
}

// NewID returns an id for a dungeon to be added.
func (s *DungeonStore) NewID() uint32 {
	return s.ids.New()
}

// Add adds a dungeon and returns the dungeons evicted to make room for it.
func (s *DungeonStore) Add(d *Dungeon) []*Dungeon {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if prev, ok := s.dungeons[d.ID]; ok {
		s.dungeons[d.ID] = d
		instrumentDecreaseDungeonGauge(prev.Instance.DungeonType.Name)
		instrumentIncreaseDungeonGauge(d.Instance.DungeonType.Name)
		return nil
	}

	var evicted []*Dungeon
	for len(s.order) >= s.Capacity {
		oldest := s.dungeons[s.order[0]]
		s.remove(oldest.ID)
		evicted = append(evicted, oldest)
	}

	s.dungeons[d.ID] = d
	s.order = append(s.order, d.ID)

	instrumentIncreaseDungeonGauge(d.Instance.DungeonType.Name)
	instrumentCountStoredDungeon(d.Instance.DungeonType.Name)
	return evicted
}

// Remove removes the dungeon with the given id. Its id can be returned again by
// NewID.
func (s *DungeonStore) Remove(id uint32) bool {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.dungeons[id]; !ok {
		return false
	}
	s.remove(id)
	return true
}

func (s *DungeonStore) remove(id uint32) {
	d := s.dungeons[id]
	delete(s.dungeons, id)

	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.ids.Reuse(id)
	instrumentDecreaseDungeonGauge(d.Instance.DungeonType.Name)
}

// Get returns the dungeon with the given id.
func (s *DungeonStore) Get(id uint32) (*Dungeon, bool) {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	d, ok := s.dungeons[id]
	return d, ok
}

// List returns the summaries of the stored dungeons, oldest first.
func (s *DungeonStore) List() []DungeonSummary {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summaries := make([]DungeonSummary, 0, len(s.order))
	for _, id := range s.order {
		summaries = append(summaries, s.dungeons[id].Summary())
	}
	return summaries
}

// Len returns the number of stored dungeons.
func (s *DungeonStore) Len() int {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.dungeons)
}
