package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

// FileStore is the flat-file fallback backend. Each collection lives in
// one JSON array file under the data directory. All operations hold the
// store mutex, so throughput is bounded by full-file rewrites.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// OpenFileStore prepares the data directory and creates an empty array
// file for every declared collection that does not exist yet.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{dir: dir}
	for _, col := range Collections {
		path := fs.path(col.Name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := writeFileAtomic(path, []byte("[]")); err != nil {
				return nil, fmt.Errorf("failed to initialize %s: %w", col.Name, err)
			}
		}
	}

	logger.Info("Document store opened", map[string]interface{}{
		"backend":     "file",
		"data_dir":    dir,
		"collections": len(Collections),
	})

	return fs, nil
}

func (s *FileStore) Backend() string {
	return "file"
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, "wuwumall_"+collection+".json")
}

func (s *FileStore) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(collection)
}

func (s *FileStore) Query(ctx context.Context, collection, field, value string) ([]json.RawMessage, error) {
	col, ok := collectionByName(collection)
	if !ok {
		return nil, ErrUnknownCollection
	}
	if _, ok := col.index(field); !ok {
		return nil, ErrUnknownIndex
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return nil, err
	}

	matched := []json.RawMessage{}
	for _, raw := range docs {
		d, err := normalizeDoc(raw)
		if err != nil {
			continue
		}
		if v, ok := d.indexValue(field); ok && v == value {
			matched = append(matched, raw)
		}
	}
	return matched, nil
}

func (s *FileStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	for _, raw := range docs {
		if docID(raw) == id {
			return raw, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) Add(ctx context.Context, collection string, doc interface{}) (string, error) {
	col, ok := collectionByName(collection)
	if !ok {
		return "", ErrUnknownCollection
	}

	d, err := normalizeDoc(doc)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return "", err
	}
	if err := checkUnique(col, docs, d, ""); err != nil {
		return "", err
	}

	docs = append(docs, d.body)
	if err := s.save(collection, docs); err != nil {
		return "", err
	}
	return d.id, nil
}

func (s *FileStore) Update(ctx context.Context, collection string, doc interface{}) error {
	col, ok := collectionByName(collection)
	if !ok {
		return ErrUnknownCollection
	}

	d, err := normalizeDoc(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return err
	}
	if err := checkUnique(col, docs, d, d.id); err != nil {
		return err
	}

	replaced := false
	for i, raw := range docs {
		if docID(raw) == d.id {
			docs[i] = d.body
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, d.body)
	}
	return s.save(collection, docs)
}

func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if _, ok := collectionByName(collection); !ok {
		return ErrUnknownCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(collection)
	if err != nil {
		return err
	}
	kept := docs[:0]
	for _, raw := range docs {
		if docID(raw) != id {
			kept = append(kept, raw)
		}
	}
	return s.save(collection, kept)
}

func (s *FileStore) Clear(ctx context.Context, collection string) error {
	if _, ok := collectionByName(collection); !ok {
		return ErrUnknownCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(collection, []json.RawMessage{})
}

func (s *FileStore) BulkAdd(ctx context.Context, collection string, docs []interface{}) ([]string, error) {
	col, ok := collectionByName(collection)
	if !ok {
		return nil, ErrUnknownCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(collection)
	if err != nil {
		return nil, err
	}

	// Validate the whole batch before touching the file so a failure
	// leaves the collection unchanged, matching SQL rollback behavior.
	ids := make([]string, 0, len(docs))
	pending := existing
	for _, doc := range docs {
		d, err := normalizeDoc(doc)
		if err != nil {
			return nil, err
		}
		if err := checkUnique(col, pending, d, ""); err != nil {
			return nil, err
		}
		pending = append(pending, d.body)
		ids = append(ids, d.id)
	}

	if err := s.save(collection, pending); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load(collection string) ([]json.RawMessage, error) {
	if _, ok := collectionByName(collection); !ok {
		return nil, ErrUnknownCollection
	}

	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		// A truncated or corrupted file is treated as empty rather
		// than poisoning every subsequent call.
		logger.Warn("Corrupted collection file, resetting", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		return []json.RawMessage{}, nil
	}
	return docs, nil
}

func (s *FileStore) save(collection string, docs []json.RawMessage) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", collection, err)
	}
	return writeFileAtomic(s.path(collection), data)
}

// checkUnique scans existing documents for unique index collisions with
// d. selfID exempts the record being updated from matching itself.
func checkUnique(col *Collection, docs []json.RawMessage, d *document, selfID string) error {
	uniqueValues := map[string]string{}
	for _, idx := range col.Indexes {
		if !idx.Unique {
			continue
		}
		if v, ok := d.indexValue(idx.Field); ok {
			uniqueValues[idx.Field] = v
		}
	}
	if len(uniqueValues) == 0 {
		return nil
	}

	for _, raw := range docs {
		other, err := normalizeDoc(raw)
		if err != nil {
			continue
		}
		if selfID != "" && other.id == selfID {
			continue
		}
		if selfID == "" && other.id == d.id {
			return &DuplicateError{Collection: col.Name, Field: "id", Value: d.id}
		}
		for field, value := range uniqueValues {
			if v, ok := other.indexValue(field); ok && v == value {
				return &DuplicateError{Collection: col.Name, Field: field, Value: value}
			}
		}
	}
	return nil
}

func docID(raw json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}

// writeFileAtomic writes to a temp file in the same directory and
// renames it over the target so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
