package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownIndex      = errors.New("unknown index")
	ErrMissingID         = errors.New("record has no id")
)

// DuplicateError reports a uniqueness violation on a declared unique index.
// Both backends return it for the same inputs.
type DuplicateError struct {
	Collection string
	Field      string
	Value      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value %q for unique index %s.%s", e.Value, e.Collection, e.Field)
}

// IsDuplicate reports whether err is a uniqueness violation
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}

// Index declares a secondary index on a top-level document field
type Index struct {
	Field  string
	Unique bool
}

// Collection declares a named group of same-shaped records
type Collection struct {
	Name    string
	Indexes []Index
}

// Collections is the storefront schema. Additive changes only: backends
// never remove or migrate existing collections.
var Collections = []Collection{
	{Name: "users", Indexes: []Index{
		{Field: "phone", Unique: true},
		{Field: "username", Unique: true},
		{Field: "email"},
	}},
	{Name: "products", Indexes: []Index{
		{Field: "category"},
		{Field: "name"},
	}},
	{Name: "cart", Indexes: []Index{
		{Field: "productId"},
		{Field: "userId"},
	}},
	{Name: "orders", Indexes: []Index{
		{Field: "userId"},
		{Field: "status"},
		{Field: "createdAt"},
	}},
	{Name: "addresses", Indexes: []Index{
		{Field: "userId"},
	}},
	{Name: "activities", Indexes: []Index{
		{Field: "userId"},
	}},
}

func collectionByName(name string) (*Collection, bool) {
	for i := range Collections {
		if Collections[i].Name == name {
			return &Collections[i], true
		}
	}
	return nil, false
}

func (c *Collection) index(field string) (*Index, bool) {
	for i := range c.Indexes {
		if c.Indexes[i].Field == field {
			return &c.Indexes[i], true
		}
	}
	return nil, false
}

// Store is the uniform CRUD + indexed-query interface over named
// collections. Documents are JSON objects with a string "id" field.
// Query matches on equality against a declared index field; result
// order is unspecified and may differ between backends.
type Store interface {
	Backend() string
	GetAll(ctx context.Context, collection string) ([]json.RawMessage, error)
	Query(ctx context.Context, collection, field, value string) ([]json.RawMessage, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	Add(ctx context.Context, collection string, doc interface{}) (string, error)
	Update(ctx context.Context, collection string, doc interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Clear(ctx context.Context, collection string) error
	BulkAdd(ctx context.Context, collection string, docs []interface{}) ([]string, error)
	Close() error
}

// Open selects the backend by capability: the configured SQL engine is
// probed first, and any open or migration failure falls back to the
// flat-file backend (non-fatal, mirroring the original's
// IndexedDB-to-LocalStorage degradation).
func Open(cfg *config.StorageConfig) (Store, error) {
	if cfg.Driver == "file" {
		return OpenFileStore(cfg.DataDir)
	}

	sqlStore, err := OpenSQLStore(cfg)
	if err == nil {
		return sqlStore, nil
	}

	logger.Warn("SQL backend unavailable, falling back to file storage", map[string]interface{}{
		"driver":   cfg.Driver,
		"data_dir": cfg.DataDir,
		"error":    err.Error(),
	})
	return OpenFileStore(cfg.DataDir)
}

// document normalization shared by both backends

type document struct {
	id     string
	body   json.RawMessage
	fields map[string]interface{}
}

func normalizeDoc(doc interface{}) (*document, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}

	id, _ := fields["id"].(string)
	if id == "" {
		return nil, ErrMissingID
	}

	return &document{id: id, body: body, fields: fields}, nil
}

// indexValue extracts the stringified value of an indexed field. Absent
// and null fields are not indexed, matching object-store semantics.
func (d *document) indexValue(field string) (string, bool) {
	raw, ok := d.fields[field]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
