package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aniladanir/hirechat/internal/domain"
)

type fallback struct {
	primary   Store
	secondary Store
	logger    *slog.Logger
	mtx       sync.Mutex
}

// WithFallback serves from primary and switches to secondary for any call
// the primary fails. Failures are logged, not returned, unless both fail.
func WithFallback(primary, secondary Store, logger *slog.Logger) UpdatingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallback) Read(ctx context.Context) (*domain.Document, error) {
	doc, err := f.primary.Read(ctx)
	if err == nil {
		return doc, nil
	}
	f.logger.Warn("primary store read failed, falling back", "error", err.Error())
	return f.secondary.Read(ctx)
}

func (f *fallback) Write(ctx context.Context, doc *domain.Document) error {
	err := f.primary.Write(ctx, doc)
	if err == nil {
		return nil
	}
	f.logger.Warn("primary store write failed, falling back", "error", err.Error())
	return f.secondary.Write(ctx, doc)
}

// Update keeps the primary's own transaction when it has one. Only a failure
// of the primary itself moves the update to the secondary; errors from fn are
// returned as is.
func (f *fallback) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	u, ok := f.primary.(Updater)
	if !ok {
		return f.apply(ctx, f, fn)
	}

	var fnErr error
	err := u.Update(ctx, func(doc *domain.Document) error {
		fnErr = fn(doc)
		return fnErr
	})
	if err == nil || fnErr != nil {
		return err
	}
	f.logger.Warn("primary store update failed, falling back", "error", err.Error())
	return f.apply(ctx, f.secondary, fn)
}

func (f *fallback) apply(ctx context.Context, s Store, fn func(doc *domain.Document) error) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	doc, err := s.Read(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.Write(ctx, doc)
}
