package http

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/aukilabs/dvergr/catalog"
	"github.com/aukilabs/dvergr/codec"
	"github.com/aukilabs/dvergr/featureflag"
	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/dvergr/models"
	"github.com/aukilabs/dvergr/service"
	"github.com/aukilabs/dvergr/storage/sqlite"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

const (
	ErrTypeBadRequest = "bad_request"
	ErrTypeNotFound   = "not_found"

	maxRequestSize = 1 << 16
)

// ArchiveReader reads archived dungeons.
type ArchiveReader interface {
	Get(ctx context.Context, uuid string) (sqlite.Record, error)
	ListBySeed(ctx context.Context, seed int64) ([]sqlite.Record, error)
}

// DungeonHandler serves the dungeon API.
type DungeonHandler struct {
	Dungeons     *service.Dungeons
	Catalog      *catalog.Catalog
	FeatureFlags featureflag.FeatureFlag

	// Nil disables the archive routes.
	Archive ArchiveReader
}

// Register registers the dungeon API routes on mux.
func (h *DungeonHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /dungeons", HandleWithCORS(http.HandlerFunc(h.HandleGenerate)))
	mux.Handle("GET /dungeons", HandleWithCORS(http.HandlerFunc(h.HandleList)))
	mux.Handle("GET /dungeons/{id}", HandleWithCORS(http.HandlerFunc(h.HandleGet)))
	mux.Handle("DELETE /dungeons/{id}", HandleWithCORS(http.HandlerFunc(h.HandleDelete)))
	mux.Handle("OPTIONS /dungeons", HandleWithCORS(http.NotFoundHandler()))
	mux.Handle("OPTIONS /dungeons/{id}", HandleWithCORS(http.NotFoundHandler()))
	mux.Handle("GET /catalog", HandleWithCORS(http.HandlerFunc(h.HandleCatalog)))

	if h.Archive != nil {
		mux.Handle("GET /archive", HandleWithCORS(http.HandlerFunc(h.HandleArchiveList)))
		mux.Handle("GET /archive/{uuid}", HandleWithCORS(http.HandlerFunc(h.HandleArchiveGet)))
	}
}

func (h *DungeonHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req service.Request

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		writeError(w, r, errors.New("reading request failed").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	if len(body) != 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, r, errors.New("invalid generation request").
				WithType(ErrTypeBadRequest).
				Wrap(err))
			return
		}
	}

	d, err := h.Dungeons.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.write(w, r, http.StatusCreated, h.present(d))
}

func (h *DungeonHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, ok := h.Dungeons.Store.Get(id)
	if !ok {
		writeError(w, r, errors.New("dungeon not found").
			WithType(ErrTypeNotFound).
			WithTag("id", id))
		return
	}

	h.write(w, r, http.StatusOK, h.present(d))
}

func (h *DungeonHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.Dungeons.Store.Remove(id) {
		writeError(w, r, errors.New("dungeon not found").
			WithType(ErrTypeNotFound).
			WithTag("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DungeonHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, h.Dungeons.Store.List())
}

func (h *DungeonHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, h.Catalog)
}

func (h *DungeonHandler) HandleArchiveGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Archive.Get(r.Context(), r.PathValue("uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.write(w, r, http.StatusOK, archiveEntryFromRecord(rec, true))
}

func (h *DungeonHandler) HandleArchiveList(w http.ResponseWriter, r *http.Request) {
	seed, err := strconv.ParseInt(r.URL.Query().Get("seed"), 10, 64)
	if err != nil {
		writeError(w, r, errors.New("invalid seed").
			WithType(ErrTypeBadRequest).
			Wrap(err))
		return
	}

	records, err := h.Archive.ListBySeed(r.Context(), seed)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := make([]archiveEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, archiveEntryFromRecord(rec, false))
	}
	h.write(w, r, http.StatusOK, entries)
}

func (h *DungeonHandler) present(d *models.Dungeon) *models.Dungeon {
	if !h.FeatureFlags.IsSet(featureflag.FlagDisablePartitionTree) {
		return d
	}

	c := *d
	c.Instance = d.Instance.WithoutTrees()
	return &c
}

func (h *DungeonHandler) write(w http.ResponseWriter, r *http.Request, status int, v any) {
	format, err := codec.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := codec.Marshal(format, v)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)
	w.Write(b)
}

type archiveEntry struct {
	UUID        string                      `json:"uuid"`
	Seed        int64                       `json:"seed"`
	DungeonType string                      `json:"dungeon_type"`
	Fingerprint string                      `json:"fingerprint"`
	Floors      int                         `json:"floors"`
	Rooms       int                         `json:"rooms"`
	CreatedAt   string                      `json:"created_at"`
	Dungeon     *generation.DungeonInstance `json:"dungeon,omitempty"`
}

func archiveEntryFromRecord(r sqlite.Record, withDungeon bool) archiveEntry {
	e := archiveEntry{
		UUID:        r.UUID,
		Seed:        r.Seed,
		DungeonType: r.DungeonType,
		Fingerprint: r.Fingerprint,
		Floors:      r.Floors,
		Rooms:       r.Rooms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if withDungeon {
		e.Dungeon = r.Dungeon
	}
	return e
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.New("invalid dungeon id").
			WithType(ErrTypeBadRequest).
			WithTag("id", s).
			Wrap(err)
	}
	return uint32(id), nil
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// StatusCode returns the HTTP status code matching the type of err.
func StatusCode(err error) int {
	switch errors.Type(err) {
	case generation.ErrTypeConfiguration:
		return http.StatusUnprocessableEntity

	case ErrTypeBadRequest,
		generation.ErrTypeUnknownDungeonType,
		codec.ErrTypeUnsupportedFormat:
		return http.StatusBadRequest

	case ErrTypeNotFound, sqlite.ErrTypeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		logs.WithTag("path", r.URL.Path).Error(err)
	} else {
		logs.WithTag("path", r.URL.Path).Debug(err)
	}

	b, _ := json.Marshal(errorResponse{
		Error: err.Error(),
		Type:  errors.Type(err),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
