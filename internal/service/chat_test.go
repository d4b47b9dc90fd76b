package service

import (
	"context"
	"errors"
	"testing"

	cachemem "github.com/aniladanir/hirechat/internal/cache/memory"
	"github.com/aniladanir/hirechat/internal/domain"
	repository "github.com/aniladanir/hirechat/internal/repository/conversation"
)

func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a trimmed unread message", func(t *testing.T) {
		f := newFixture()

		msg, err := f.chat.SendMessage(ctx, SendMessageParams{
			ApplicationID: "app-1",
			Sender:        domain.RoleEmployer,
			SenderEmail:   "hr@acme.com",
			Text:          "  Welcome aboard  ",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := domain.Message{
			ID:            "msg-1",
			ApplicationID: "app-1",
			Sender:        domain.RoleEmployer,
			SenderEmail:   "hr@acme.com",
			Text:          "Welcome aboard",
			Timestamp:     testNow,
			Read:          false,
		}
		if msg != want {
			t.Fatalf("unexpected message\nwant %+v\ngot  %+v", want, msg)
		}

		msgs, err := f.chat.ListMessages(ctx, "app-1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(msgs) != 1 || msgs[0] != want {
			t.Fatalf("expected exactly the sent message, got %+v", msgs)
		}

		if got := f.notifier.types(); len(got) != 1 || got[0] != EventMessageCreated {
			t.Fatalf("expected one message.created event, got %v", got)
		}
	})

	t.Run("rejects blank and missing fields", func(t *testing.T) {
		f := newFixture()

		_, err := f.chat.SendMessage(ctx, SendMessageParams{
			ApplicationID: "app-1",
			Sender:        domain.RoleCandidate,
			SenderEmail:   "",
			Text:          "   ",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["text"]; !ok {
			t.Fatalf("expected text validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["senderEmail"]; !ok {
			t.Fatalf("expected senderEmail validation error, got %v", vErr.FieldErrors)
		}
		if msgs, _ := f.chat.ListMessages(ctx, "app-1"); len(msgs) != 0 {
			t.Fatalf("expected no write on validation failure")
		}
	})

	t.Run("rejects unknown sender roles", func(t *testing.T) {
		f := newFixture()

		_, err := f.chat.SendMessage(ctx, SendMessageParams{
			ApplicationID: "app-1",
			Sender:        domain.Role("manager"),
			SenderEmail:   "boss@acme.com",
			Text:          "hi",
		})
		if !errors.Is(err, ErrInvalidSender) {
			t.Fatalf("expected ErrInvalidSender, got %v", err)
		}
		if msgs, _ := f.chat.ListMessages(ctx, "app-1"); len(msgs) != 0 {
			t.Fatalf("expected no new entry, got %+v", msgs)
		}
		if len(f.notifier.types()) != 0 {
			t.Fatalf("expected no notification for rejected message")
		}
	})

	t.Run("wraps store failures", func(t *testing.T) {
		svc := NewChatService(repository.NewConversationRepository(brokenStore{}, cachemem.New()), Options{})

		_, err := svc.SendMessage(ctx, SendMessageParams{
			ApplicationID: "app-1",
			Sender:        domain.RoleCandidate,
			SenderEmail:   "cand@x.com",
			Text:          "hello",
		})
		var sErr *StorageError
		if !errors.As(err, &sErr) {
			t.Fatalf("expected StorageError, got %v", err)
		}
		if ErrorKind(err) != "storage" {
			t.Fatalf("expected storage error kind, got %s", ErrorKind(err))
		}

		if _, err := svc.ListMessages(ctx, "app-1"); !errors.As(err, &sErr) {
			t.Fatalf("expected StorageError from list, got %v", err)
		}
	})
}

func TestChatService_ListMessagesKeepsSendOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sends := []struct {
		app  string
		text string
	}{
		{"app-1", "first"},
		{"app-2", "other conversation"},
		{"app-1", "second"},
		{"app-2", "other again"},
		{"app-1", "third"},
	}
	for _, s := range sends {
		if _, err := f.chat.SendMessage(ctx, SendMessageParams{
			ApplicationID: s.app,
			Sender:        domain.RoleCandidate,
			SenderEmail:   "cand@x.com",
			Text:          s.text,
		}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	msgs, err := f.chat.ListMessages(ctx, "app-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(msgs))
	}
	for i, text := range want {
		if msgs[i].Text != text {
			t.Fatalf("position %d: expected %q, got %q", i, text, msgs[i].Text)
		}
	}

	empty, err := f.chat.ListMessages(ctx, "app-9")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty conversation, got %+v (%v)", empty, err)
	}
}

func TestChatService_MarkRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	send := func(email string, role domain.Role) {
		t.Helper()
		if _, err := f.chat.SendMessage(ctx, SendMessageParams{
			ApplicationID: "app-1", Sender: role, SenderEmail: email, Text: "hello",
		}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	send("a@x.com", domain.RoleCandidate)
	send("hr@acme.com", domain.RoleEmployer)
	send("hr@acme.com", domain.RoleEmployer)

	readState := func() []bool {
		msgs, _ := f.chat.ListMessages(ctx, "app-1")
		out := make([]bool, len(msgs))
		for i, m := range msgs {
			out[i] = m.Read
		}
		return out
	}

	if err := f.chat.MarkRead(ctx, "app-1", "a@x.com"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	once := readState()
	if err := f.chat.MarkRead(ctx, "app-1", "a@x.com"); err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	twice := readState()

	want := []bool{false, true, true}
	for i := range want {
		if once[i] != want[i] || twice[i] != want[i] {
			t.Fatalf("message %d: expected read=%v, got once=%v twice=%v", i, want[i], once[i], twice[i])
		}
	}

	if err := f.chat.MarkRead(ctx, "app-404", "a@x.com"); err != nil {
		t.Fatalf("expected no-op for empty conversation, got %v", err)
	}

	var vErr *ValidationError
	if err := f.chat.MarkRead(ctx, "app-1", " "); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for blank email, got %v", err)
	}
}
