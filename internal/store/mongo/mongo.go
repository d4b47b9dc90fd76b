// Package mongo keeps the shared document as a single MongoDB document.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aniladanir/hirechat/internal/domain"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	documentCollection  = "documents"
	DefaultDocumentName = "myhire"
)

type record struct {
	ID        string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewDB connects to the server and verifies the connection with a ping
func NewDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(database), nil
}

type Store struct {
	coll *mongo.Collection
	name string
}

func New(db *mongo.Database, name string) *Store {
	if name == "" {
		name = DefaultDocumentName
	}
	return &Store{coll: db.Collection(documentCollection), name: name}
}

func (s *Store) Read(ctx context.Context) (*domain.Document, error) {
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": s.name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find document")
	}

	doc := new(domain.Document)
	if err := json.Unmarshal([]byte(rec.Body), doc); err != nil {
		return nil, pkgerrors.Wrap(err, "decode document")
	}
	doc.Normalize()
	return doc, nil
}

func (s *Store) Write(ctx context.Context, doc *domain.Document) error {
	doc.Normalize()
	raw, err := json.Marshal(doc)
	if err != nil {
		return pkgerrors.Wrap(err, "encode document")
	}

	rec := record{ID: s.name, Body: string(raw), UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": s.name}, rec, options.Replace().SetUpsert(true))
	return pkgerrors.Wrap(err, "replace document")
}
