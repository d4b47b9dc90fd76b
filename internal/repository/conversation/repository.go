package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aniladanir/hirechat/internal/cache"
	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/store"
)

type Repository interface {
	ListMessages(ctx context.Context, applicationID string) ([]domain.Message, error)
	CurrentCall(ctx context.Context, applicationID string) (*domain.VideoCall, error)
	Update(ctx context.Context, fn func(doc *domain.Document) error) error
	CacheDelivery(ctx context.Context, eventID string, sentTime time.Time) error
	Delivered(ctx context.Context, eventID string) (bool, error)
}

type repo struct {
	store store.Store
	cache cache.Cache
	// serializes read-modify-write for stores without their own Update
	mtx sync.Mutex
}

func NewConversationRepository(s store.Store, cache cache.Cache) Repository {
	return &repo{store: s, cache: cache}
}

// ListMessages returns the conversation of an application in append order
func (r *repo) ListMessages(ctx context.Context, applicationID string) ([]domain.Message, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Conversation(applicationID), nil
}

// CurrentCall returns a copy of the ongoing call of an application, or nil
func (r *repo) CurrentCall(ctx context.Context, applicationID string) (*domain.VideoCall, error) {
	doc, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	call := doc.CurrentCall(applicationID)
	if call == nil {
		return nil, nil
	}
	found := *call
	return &found, nil
}

// Update applies fn as a single read-modify-write. Nothing is written when fn fails.
func (r *repo) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	if u, ok := r.store.(store.Updater); ok {
		return u.Update(ctx, fn)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	doc, err := r.store.Read(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.store.Write(ctx, doc)
}

// CacheDelivery records a delivered notification so it is not sent twice
func (r *repo) CacheDelivery(ctx context.Context, eventID string, sentTime time.Time) error {
	value := map[string]any{
		"eventId": eventID,
		"sentAt":  sentTime,
	}

	jsonVal, _ := json.Marshal(value)
	// Expire after 24 hours to keep memory clean
	return r.cache.Set(ctx, deliveryKey(eventID), string(jsonVal), 24*time.Hour)
}

func (r *repo) Delivered(ctx context.Context, eventID string) (bool, error) {
	return r.cache.Exists(ctx, deliveryKey(eventID))
}

func deliveryKey(eventID string) string {
	return fmt.Sprintf("sent_event:%s", eventID)
}
