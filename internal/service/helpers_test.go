package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cachemem "github.com/aniladanir/hirechat/internal/cache/memory"
	"github.com/aniladanir/hirechat/internal/domain"
	repository "github.com/aniladanir/hirechat/internal/repository/conversation"
	"github.com/aniladanir/hirechat/internal/store/memory"
)

var testNow = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%d", n.Add(1))
	}
}

type recordingNotifier struct {
	mtx    sync.Mutex
	events []Event
}

func (r *recordingNotifier) Notify(evt Event) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingNotifier) types() []EventType {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Type)
	}
	return out
}

type brokenStore struct{}

func (brokenStore) Read(context.Context) (*domain.Document, error) {
	return nil, errors.New("disk unavailable")
}

func (brokenStore) Write(context.Context, *domain.Document) error {
	return errors.New("disk unavailable")
}

type fixture struct {
	store    *memory.Store
	repo     repository.Repository
	notifier *recordingNotifier
	chat     *ChatService
	calls    *CallService
}

func newFixture() *fixture {
	s := memory.New(nil)
	repo := repository.NewConversationRepository(s, cachemem.New())
	notifier := &recordingNotifier{}
	opts := Options{
		IDGenerator: sequentialIDs(),
		Now:         func() time.Time { return testNow },
		Notifier:    notifier,
	}
	return &fixture{
		store:    s,
		repo:     repo,
		notifier: notifier,
		chat:     NewChatService(repo, opts),
		calls:    NewCallService(repo, opts),
	}
}

// ongoingCalls counts non-terminal calls of an application straight from the store
func (f *fixture) ongoingCalls(applicationID string) int {
	doc, _ := f.store.Read(context.Background())
	n := 0
	for _, c := range doc.VideoCalls {
		if c.ApplicationID == applicationID && c.Ongoing() {
			n++
		}
	}
	return n
}
