// Package service generates dungeons on behalf of the HTTP and WebSocket
// handlers and keeps track of them.
package service

import (
	"context"

	"github.com/aukilabs/dvergr/codec"
	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/dvergr/models"
	"github.com/aukilabs/dvergr/storage/sqlite"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Archive persists generated dungeons.
type Archive interface {
	Save(ctx context.Context, r sqlite.Record) error
}

// Request is a dungeon generation request.
type Request struct {
	// The master seed. Zero draws a time based seed.
	Seed int64 `json:"seed"`

	// The dungeon type to generate. Empty lets the seed choose.
	DungeonType string `json:"dungeon_type,omitempty"`
}

// Dungeons generates dungeons, fingerprints them and keeps them in a store and
// an optional archive.
type Dungeons struct {
	Generator *generation.Generator
	Store     *models.DungeonStore

	// Nil disables archiving.
	Archive Archive

	// Nil disables fingerprint signatures.
	Signer *codec.Signer
}

// Generate generates and stores a dungeon.
func (s *Dungeons) Generate(ctx context.Context, req Request) (*models.Dungeon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := s.generate(req)
	if err != nil {
		return nil, err
	}

	fingerprint, err := codec.Fingerprint(instance)
	if err != nil {
		return nil, errors.New("fingerprinting dungeon failed").Wrap(err)
	}

	d := models.NewDungeon(s.Store.NewID(), fingerprint, instance)

	if s.Signer != nil {
		if d.Signature, err = s.Signer.Sign(fingerprint); err != nil {
			return nil, err
		}
	}

	for _, evicted := range s.Store.Add(d) {
		logs.WithTag("id", evicted.ID).
			WithTag("uuid", evicted.UUID).
			Debug("dungeon evicted from store")
	}

	if s.Archive != nil {
		err := s.Archive.Save(ctx, sqlite.Record{
			UUID:        d.UUID,
			Seed:        instance.Seed,
			DungeonType: instance.DungeonType.Name,
			Fingerprint: fingerprint,
			Floors:      len(instance.Floors),
			Rooms:       instance.RoomCount(),
			Dungeon:     instance,
			CreatedAt:   d.CreatedAt,
		})
		if err != nil {
			logs.WithTag("uuid", d.UUID).
				Warn(errors.New("archiving dungeon failed").Wrap(err))
		}
	}
	return d, nil
}

func (s *Dungeons) generate(req Request) (*generation.DungeonInstance, error) {
	if req.DungeonType != "" {
		return s.Generator.GenerateOfType(req.Seed, req.DungeonType)
	}
	return s.Generator.Generate(req.Seed)
}
