// Package store defines the shared document persistence contract and the
// helpers that make read-modify-write cycles safe on top of it.
package store

import (
	"context"

	"github.com/aniladanir/hirechat/internal/domain"
)

// Store persists the whole shared document. Implementations give no
// transactional guarantees across a Read followed by a Write.
type Store interface {
	Read(ctx context.Context) (*domain.Document, error)
	Write(ctx context.Context, doc *domain.Document) error
}

// Updater is implemented by backends that can apply a read-modify-write
// cycle atomically themselves, e.g. under a row lock.
type Updater interface {
	Update(ctx context.Context, fn func(doc *domain.Document) error) error
}

// UpdatingStore is a Store that applies updates atomically itself
type UpdatingStore interface {
	Store
	Updater
}
