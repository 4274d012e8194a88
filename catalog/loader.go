package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

const (
	// ErrTypeCatalogLoad is the error type returned when a catalog file cannot
	// be read or decoded.
	ErrTypeCatalogLoad = "catalog_load_error"
)

// Load loads a catalog from a file or from every catalog file of a directory.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.New("reading catalog failed").
			WithType(ErrTypeCatalogLoad).
			WithTag("path", path).
			Wrap(err)
	}

	if info.IsDir() {
		return LoadDirectory(path)
	}
	return LoadFile(path)
}

// LoadFile loads a catalog from a JSON or YAML file. The format is chosen from
// the file extension.
func LoadFile(filename string) (*Catalog, error) {
	unmarshal, ok := unmarshalerFor(filename)
	if !ok {
		return nil, errors.New("unsupported catalog file extension").
			WithType(ErrTypeCatalogLoad).
			WithTag("filename", filename)
	}

	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New("reading catalog file failed").
			WithType(ErrTypeCatalogLoad).
			WithTag("filename", filename).
			Wrap(err)
	}

	var c Catalog
	if err := unmarshal(b, &c); err != nil {
		return nil, errors.New("decoding catalog file failed").
			WithType(ErrTypeCatalogLoad).
			WithTag("filename", filename).
			Wrap(err)
	}
	return &c, nil
}

// LoadDirectory loads and merges every JSON and YAML file of a directory, in
// file name order. Other files are ignored.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New("reading catalog directory failed").
			WithType(ErrTypeCatalogLoad).
			WithTag("dir", dir).
			Wrap(err)
	}

	var c Catalog
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		if _, ok := unmarshalerFor(e.Name()); !ok {
			continue
		}

		f, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		c.Merge(f)
	}
	return &c, nil
}

func unmarshalerFor(filename string) (func([]byte, any) error, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return json.Unmarshal, true

	case ".yaml", ".yml":
		return yaml.Unmarshal, true

	default:
		return nil, false
	}
}
