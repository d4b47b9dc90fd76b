// Package kv stores each document collection under its own key of a
// key-value cache such as redis.
package kv

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aniladanir/hirechat/internal/cache"
	"github.com/aniladanir/hirechat/internal/domain"
	pkgerrors "github.com/pkg/errors"
)

const (
	JobsKey         = "myhire:jobs"
	ApplicationsKey = "myhire:applications"
	ProfilesKey     = "myhire:profiles"
	MessagesKey     = "myhire:messages"
	VideoCallsKey   = "myhire:videoCalls"
)

type Store struct {
	cache cache.Cache
}

func New(c cache.Cache) *Store {
	return &Store{cache: c}
}

func (s *Store) Read(ctx context.Context) (*domain.Document, error) {
	doc := domain.NewDocument()
	for key, dst := range s.collections(doc) {
		if err := s.load(ctx, key, dst); err != nil {
			return nil, err
		}
	}
	doc.Normalize()
	return doc, nil
}

func (s *Store) Write(ctx context.Context, doc *domain.Document) error {
	doc.Normalize()
	for key, src := range s.collections(doc) {
		raw, err := json.Marshal(src)
		if err != nil {
			return pkgerrors.Wrapf(err, "encode %s", key)
		}
		if err := s.cache.Set(ctx, key, string(raw), 0); err != nil {
			return pkgerrors.Wrapf(err, "set %s", key)
		}
	}
	return nil
}

func (s *Store) collections(doc *domain.Document) map[string]any {
	return map[string]any{
		JobsKey:         &doc.Jobs,
		ApplicationsKey: &doc.Applications,
		ProfilesKey:     &doc.Profiles,
		MessagesKey:     &doc.Messages,
		VideoCallsKey:   &doc.VideoCalls,
	}
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "get %s", key)
	}
	return pkgerrors.Wrapf(json.Unmarshal([]byte(raw), dst), "decode %s", key)
}
