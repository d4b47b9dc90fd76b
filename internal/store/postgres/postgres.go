// Package postgres keeps the shared document in a single JSONB row and
// serializes read-modify-write cycles with a row lock.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aniladanir/hirechat/internal/domain"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultDocumentName = "myhire"

type DocumentRecord struct {
	Name      string         `gorm:"primaryKey;type:varchar(64)"`
	Body      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (DocumentRecord) TableName() string {
	return "documents"
}

// Models lists the tables the store needs migrated
func Models() []any {
	return []any{&DocumentRecord{}}
}

type Store struct {
	db   *gorm.DB
	name string
}

func New(db *gorm.DB, name string) *Store {
	if name == "" {
		name = DefaultDocumentName
	}
	return &Store{db: db, name: name}
}

func (s *Store) Read(ctx context.Context) (*domain.Document, error) {
	var rec DocumentRecord
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "select document")
	}
	return decode(rec.Body)
}

func (s *Store) Write(ctx context.Context, doc *domain.Document) error {
	rec, err := s.record(doc)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, UpdateAll: true}).
		Create(&rec).Error
	return pkgerrors.Wrap(err, "upsert document")
}

// Update locks the document row for the duration of fn so concurrent
// writers, including other service instances, apply one at a time
func (s *Store) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		empty, err := s.record(domain.NewDocument())
		if err != nil {
			return err
		}
		// make sure there is a row to lock
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&empty).Error; err != nil {
			return pkgerrors.Wrap(err, "seed document")
		}

		var rec DocumentRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", s.name).First(&rec).Error; err != nil {
			return pkgerrors.Wrap(err, "lock document")
		}

		doc, err := decode(rec.Body)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}

		next, err := s.record(doc)
		if err != nil {
			return err
		}
		return pkgerrors.Wrap(tx.Model(&DocumentRecord{}).
			Where("name = ?", s.name).
			Updates(map[string]any{"body": next.Body, "updated_at": next.UpdatedAt}).Error, "update document")
	})
}

func (s *Store) record(doc *domain.Document) (DocumentRecord, error) {
	doc.Normalize()
	raw, err := json.Marshal(doc)
	if err != nil {
		return DocumentRecord{}, pkgerrors.Wrap(err, "encode document")
	}
	return DocumentRecord{Name: s.name, Body: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}, nil
}

func decode(body datatypes.JSON) (*domain.Document, error) {
	doc := new(domain.Document)
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, pkgerrors.Wrap(err, "decode document")
	}
	doc.Normalize()
	return doc, nil
}
