package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// documentRow holds one record body per collection entry
type documentRow struct {
	Collection string    `gorm:"primaryKey;size:64;column:collection"`
	DocID      string    `gorm:"primaryKey;size:128;column:doc_id"`
	Body       string    `gorm:"type:text;not null"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (documentRow) TableName() string {
	return "documents"
}

// indexRow is one entry of a non-unique secondary index
type indexRow struct {
	ID         uint   `gorm:"primarykey"`
	Collection string `gorm:"size:64;not null;index:idx_lookup,priority:1"`
	Field      string `gorm:"size:64;not null;index:idx_lookup,priority:2"`
	Value      string `gorm:"size:512;not null;index:idx_lookup,priority:3"`
	DocID      string `gorm:"size:128;not null;index"`
}

func (indexRow) TableName() string {
	return "document_indexes"
}

// uniqueRow is one entry of a unique secondary index. The composite
// primary key makes the database itself reject collisions, so
// uniqueness does not depend on the pre-check inside the transaction.
type uniqueRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	Field      string `gorm:"primaryKey;size:64"`
	Value      string `gorm:"primaryKey;size:512"`
	DocID      string `gorm:"size:128;not null;index"`
}

func (uniqueRow) TableName() string {
	return "document_uniques"
}

// SQLStore is the transactional document store backend on gorm
type SQLStore struct {
	db     *gorm.DB
	driver string
}

// OpenSQLStore opens the configured SQL engine and migrates the
// document tables. Errors are returned to the caller so Open can fall
// back to the file backend.
func OpenSQLStore(cfg *config.StorageConfig) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(&documentRow{}, &indexRow{}, &uniqueRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate document tables: %w", err)
	}

	logger.Info("Document store opened", map[string]interface{}{
		"backend":     "sql",
		"driver":      cfg.Driver,
		"collections": len(Collections),
	})

	return &SQLStore{db: db, driver: cfg.Driver}, nil
}

// NewSQLStoreFromDB wraps an existing gorm handle (used by tests)
func NewSQLStoreFromDB(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&documentRow{}, &indexRow{}, &uniqueRow{}); err != nil {
		return nil, err
	}
	return &SQLStore{db: db, driver: "sqlite"}, nil
}

func (s *SQLStore) Backend() string {
	return "sql"
}

func (s *SQLStore) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if _, ok := collectionByName(collection); !ok {
		return nil, ErrUnknownCollection
	}

	var rows []documentRow
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, json.RawMessage(row.Body))
	}
	return docs, nil
}

func (s *SQLStore) Query(ctx context.Context, collection, field, value string) ([]json.RawMessage, error) {
	col, ok := collectionByName(collection)
	if !ok {
		return nil, ErrUnknownCollection
	}
	idx, ok := col.index(field)
	if !ok {
		return nil, ErrUnknownIndex
	}

	var ids []string
	q := s.db.WithContext(ctx)
	if idx.Unique {
		err := q.Model(&uniqueRow{}).
			Where("collection = ? AND field = ? AND value = ?", collection, field, value).
			Pluck("doc_id", &ids).Error
		if err != nil {
			return nil, err
		}
	} else {
		err := q.Model(&indexRow{}).
			Where("collection = ? AND field = ? AND value = ?", collection, field, value).
			Pluck("doc_id", &ids).Error
		if err != nil {
			return nil, err
		}
	}

	if len(ids) == 0 {
		return []json.RawMessage{}, nil
	}

	var rows []documentRow
	if err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id IN ?", collection, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, json.RawMessage(row.Body))
	}
	return docs, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	if _, ok := collectionByName(collection); !ok {
		return nil, ErrUnknownCollection
	}

	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(row.Body), nil
}

func (s *SQLStore) Add(ctx context.Context, collection string, doc interface{}) (string, error) {
	col, ok := collectionByName(collection)
	if !ok {
		return "", ErrUnknownCollection
	}

	d, err := normalizeDoc(doc)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertDoc(tx, col, d)
	})
	if err != nil {
		return "", err
	}
	return d.id, nil
}

func (s *SQLStore) Update(ctx context.Context, collection string, doc interface{}) error {
	col, ok := collectionByName(collection)
	if !ok {
		return ErrUnknownCollection
	}

	d, err := normalizeDoc(doc)
	if err != nil {
		return err
	}

	// Upsert by id: replace the body and rebuild index entries
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := dropIndexEntries(tx, collection, d.id); err != nil {
			return err
		}

		var existing documentRow
		err := tx.Where("collection = ? AND doc_id = ?", collection, d.id).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			return insertDoc(tx, col, d)
		case err != nil:
			return err
		}

		existing.Body = string(d.body)
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		return insertIndexEntries(tx, col, d)
	})
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	if _, ok := collectionByName(collection); !ok {
		return ErrUnknownCollection
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := dropIndexEntries(tx, collection, id); err != nil {
			return err
		}
		return tx.Where("collection = ? AND doc_id = ?", collection, id).
			Delete(&documentRow{}).Error
	})
}

func (s *SQLStore) Clear(ctx context.Context, collection string) error {
	if _, ok := collectionByName(collection); !ok {
		return ErrUnknownCollection
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", collection).Delete(&indexRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection = ?", collection).Delete(&uniqueRow{}).Error; err != nil {
			return err
		}
		return tx.Where("collection = ?", collection).Delete(&documentRow{}).Error
	})
}

func (s *SQLStore) BulkAdd(ctx context.Context, collection string, docs []interface{}) ([]string, error) {
	col, ok := collectionByName(collection)
	if !ok {
		return nil, ErrUnknownCollection
	}

	// One transaction for the whole batch; partial failure rolls back
	// and surfaces as a single error.
	ids := make([]string, 0, len(docs))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, doc := range docs {
			d, err := normalizeDoc(doc)
			if err != nil {
				return err
			}
			if err := insertDoc(tx, col, d); err != nil {
				return err
			}
			ids = append(ids, d.id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func insertDoc(tx *gorm.DB, col *Collection, d *document) error {
	row := documentRow{
		Collection: col.Name,
		DocID:      d.id,
		Body:       string(d.body),
	}
	if err := tx.Create(&row).Error; err != nil {
		return translateConstraintError(err, col, d)
	}
	return insertIndexEntries(tx, col, d)
}

func insertIndexEntries(tx *gorm.DB, col *Collection, d *document) error {
	for _, idx := range col.Indexes {
		value, ok := d.indexValue(idx.Field)
		if !ok {
			continue
		}
		if idx.Unique {
			row := uniqueRow{Collection: col.Name, Field: idx.Field, Value: value, DocID: d.id}
			if err := tx.Create(&row).Error; err != nil {
				if isConstraintViolation(err) {
					return &DuplicateError{Collection: col.Name, Field: idx.Field, Value: value}
				}
				return err
			}
		} else {
			row := indexRow{Collection: col.Name, Field: idx.Field, Value: value, DocID: d.id}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func dropIndexEntries(tx *gorm.DB, collection, docID string) error {
	if err := tx.Where("collection = ? AND doc_id = ?", collection, docID).
		Delete(&indexRow{}).Error; err != nil {
		return err
	}
	return tx.Where("collection = ? AND doc_id = ?", collection, docID).
		Delete(&uniqueRow{}).Error
}

// translateConstraintError maps a primary-key collision on the document
// row itself to a DuplicateError on the id
func translateConstraintError(err error, col *Collection, d *document) error {
	if isConstraintViolation(err) {
		return &DuplicateError{Collection: col.Name, Field: "id", Value: d.id}
	}
	return err
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed")
}
