package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	cachemem "github.com/aniladanir/hirechat/internal/cache/memory"
	"github.com/aniladanir/hirechat/internal/domain"
	repository "github.com/aniladanir/hirechat/internal/repository/conversation"
	"github.com/aniladanir/hirechat/internal/store/memory"
)

func TestCallService_StartCall(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a ringing call", func(t *testing.T) {
		f := newFixture()

		res, err := f.calls.StartCall(ctx, StartCallParams{
			ApplicationID:  "app-2",
			InitiatorEmail: "cand@x.com",
			InitiatorRole:  domain.RoleCandidate,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Created {
			t.Fatalf("expected a new call")
		}
		if res.Call.ID != "call-1" || res.Call.Status != domain.CallCalling || !res.Call.StartedAt.Equal(testNow) {
			t.Fatalf("unexpected call %+v", res.Call)
		}
		if res.Call.EndedAt != nil || res.Call.RoomURL != "" {
			t.Fatalf("expected no endedAt and no room, got %+v", res.Call)
		}
		if got := f.notifier.types(); len(got) != 1 || got[0] != EventCallStarted {
			t.Fatalf("expected call.started event, got %v", got)
		}
	})

	t.Run("second starter answers a ringing call", func(t *testing.T) {
		f := newFixture()

		first, err := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate})
		if err != nil {
			t.Fatalf("first start: %v", err)
		}
		second, err := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "b@x.com", InitiatorRole: domain.RoleEmployer})
		if err != nil {
			t.Fatalf("second start: %v", err)
		}

		if second.Created {
			t.Fatalf("expected the existing call to be reused")
		}
		if second.Call.ID != first.Call.ID || second.Call.Status != domain.CallActive {
			t.Fatalf("expected %s to be active, got %+v", first.Call.ID, second.Call)
		}
		if second.Call.InitiatorEmail != "a@x.com" {
			t.Fatalf("expected initiator to stay a@x.com, got %s", second.Call.InitiatorEmail)
		}

		current, err := f.calls.GetCurrentCall(ctx, "app-1")
		if err != nil || current == nil || current.ID != first.Call.ID || current.Status != domain.CallActive {
			t.Fatalf("expected current call to be the active one, got %+v (%v)", current, err)
		}
		if n := f.ongoingCalls("app-1"); n != 1 {
			t.Fatalf("expected one ongoing call, got %d", n)
		}
	})

	t.Run("rejoining an active call leaves it unchanged", func(t *testing.T) {
		f := newFixture()
		params := StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate}

		first, _ := f.calls.StartCall(ctx, params)
		answered, _ := f.calls.StartCall(ctx, params)
		again, err := f.calls.StartCall(ctx, params)
		if err != nil {
			t.Fatalf("rejoin: %v", err)
		}
		if again.Created || again.Call != answered.Call || again.Call.ID != first.Call.ID {
			t.Fatalf("expected unchanged active call, got %+v", again.Call)
		}
	})

	t.Run("validates role", func(t *testing.T) {
		f := newFixture()

		_, err := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: "recruiter"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["initiatorRole"]; !ok {
			t.Fatalf("expected initiatorRole error, got %v", vErr.FieldErrors)
		}
		if n := f.ongoingCalls("app-1"); n != 0 {
			t.Fatalf("expected no call to be created")
		}
	})

	t.Run("assigns a room when configured", func(t *testing.T) {
		repo := repository.NewConversationRepository(memory.New(nil), cachemem.New())
		svc := NewCallService(repo, Options{
			IDGenerator: func() string { return "0f8fad5b-d9cb-469f-a165-70867728950e" },
			RoomURLBase: "https://myhire.daily.co/",
		})

		res, err := svc.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleEmployer})
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if res.Call.RoomURL != "https://myhire.daily.co/myhire-0f8fad5bd9cb" {
			t.Fatalf("unexpected room url %q", res.Call.RoomURL)
		}
	})
}

func TestCallService_ConcurrentStartsResolveToOneCall(t *testing.T) {
	ctx := context.Background()

	for range 20 {
		f := newFixture()
		wg := sync.WaitGroup{}
		for _, who := range []string{"cand@x.com", "hr@acme.com"} {
			wg.Go(func() {
				if _, err := f.calls.StartCall(ctx, StartCallParams{
					ApplicationID:  "app-1",
					InitiatorEmail: who,
					InitiatorRole:  domain.RoleCandidate,
				}); err != nil {
					t.Errorf("start: %v", err)
				}
			})
		}
		wg.Wait()

		doc, _ := f.store.Read(ctx)
		if len(doc.VideoCalls) != 1 {
			t.Fatalf("expected a single call record, got %d", len(doc.VideoCalls))
		}
		if doc.VideoCalls[0].Status != domain.CallActive {
			t.Fatalf("expected glare to end active, got %s", doc.VideoCalls[0].Status)
		}
	}
}

func TestCallService_SingleOngoingCallInvariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	steps := []string{"start", "start", "end", "start", "end", "start", "start", "start", "end", "end", "start"}
	for i, step := range steps {
		switch step {
		case "start":
			if _, err := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate}); err != nil {
				t.Fatalf("step %d: start: %v", i, err)
			}
		case "end":
			current, _ := f.calls.GetCurrentCall(ctx, "app-1")
			if current != nil {
				if _, err := f.calls.SetCallStatus(ctx, current.ID, domain.CallEnded); err != nil {
					t.Fatalf("step %d: end: %v", i, err)
				}
			}
		}
		if n := f.ongoingCalls("app-1"); n > 1 {
			t.Fatalf("step %d: expected at most one ongoing call, got %d", i, n)
		}
	}
}

func TestCallService_SetCallStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown call", func(t *testing.T) {
		f := newFixture()
		if _, err := f.calls.SetCallStatus(ctx, "call-404", domain.CallEnded); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("calling cannot be set directly", func(t *testing.T) {
		f := newFixture()
		res, _ := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate})

		for _, status := range []domain.CallStatus{domain.CallCalling, "ringing", ""} {
			_, err := f.calls.SetCallStatus(ctx, res.Call.ID, status)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("status %q: expected ValidationError, got %v", status, err)
			}
		}
	})

	t.Run("answer then end", func(t *testing.T) {
		f := newFixture()
		res, _ := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate})

		answered, err := f.calls.SetCallStatus(ctx, res.Call.ID, domain.CallActive)
		if err != nil || answered.Status != domain.CallActive {
			t.Fatalf("expected active call, got %+v (%v)", answered, err)
		}

		ended, err := f.calls.SetCallStatus(ctx, res.Call.ID, domain.CallEnded)
		if err != nil {
			t.Fatalf("end: %v", err)
		}
		if ended.Status != domain.CallEnded || ended.EndedAt == nil || !ended.EndedAt.Equal(testNow) {
			t.Fatalf("expected ended call with endedAt, got %+v", ended)
		}
		if got := f.notifier.types(); len(got) != 2 || got[1] != EventCallEnded {
			t.Fatalf("expected call.started then call.ended, got %v", got)
		}
	})

	t.Run("ended calls stay ended", func(t *testing.T) {
		f := newFixture()
		res, _ := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate})
		ended, err := f.calls.SetCallStatus(ctx, res.Call.ID, domain.CallEnded)
		if err != nil {
			t.Fatalf("end: %v", err)
		}

		again, err := f.calls.SetCallStatus(ctx, res.Call.ID, domain.CallActive)
		if err != nil {
			t.Fatalf("expected no-op, got %v", err)
		}
		if again.Status != domain.CallEnded || !again.EndedAt.Equal(*ended.EndedAt) {
			t.Fatalf("expected stored terminal record, got %+v", again)
		}
		if _, err := f.calls.SetCallStatus(ctx, res.Call.ID, domain.CallEnded); err != nil {
			t.Fatalf("expected repeated end to be a no-op, got %v", err)
		}

		current, err := f.calls.GetCurrentCall(ctx, "app-1")
		if err != nil || current != nil {
			t.Fatalf("expected no current call, got %+v (%v)", current, err)
		}
		if got := f.notifier.types(); len(got) != 2 {
			t.Fatalf("expected no extra events after the first end, got %v", got)
		}
	})
}

func TestCallService_CandidateCallsEmployerAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	started, err := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-2", InitiatorEmail: "cand@x.com", InitiatorRole: domain.RoleCandidate})
	if err != nil || started.Call.Status != domain.CallCalling {
		t.Fatalf("expected calling call, got %+v (%v)", started.Call, err)
	}

	seen, err := f.calls.GetCurrentCall(ctx, "app-2")
	if err != nil || seen == nil {
		t.Fatalf("employer poll: %+v (%v)", seen, err)
	}
	if seen.Status != domain.CallCalling || seen.InitiatorEmail == "hr@acme.com" {
		t.Fatalf("employer should see an incoming call, got %+v", seen)
	}

	answered, err := f.calls.StartCall(ctx, StartCallParams{ApplicationID: "app-2", InitiatorEmail: "hr@acme.com", InitiatorRole: domain.RoleEmployer})
	if err != nil || answered.Call.ID != started.Call.ID || answered.Call.Status != domain.CallActive {
		t.Fatalf("expected employer start to answer, got %+v (%v)", answered.Call, err)
	}

	candidateView, err := f.calls.GetCurrentCall(ctx, "app-2")
	if err != nil || candidateView == nil || candidateView.Status != domain.CallActive {
		t.Fatalf("candidate should observe an active call, got %+v (%v)", candidateView, err)
	}
}

func TestCallService_GetCurrentCallValidation(t *testing.T) {
	f := newFixture()
	var vErr *ValidationError
	if _, err := f.calls.GetCurrentCall(context.Background(), "  "); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Error(), "applicationId") {
		t.Fatalf("expected message to name the field, got %q", vErr.Error())
	}
}

func TestCallService_StorageFailure(t *testing.T) {
	svc := NewCallService(repository.NewConversationRepository(brokenStore{}, cachemem.New()), Options{Now: func() time.Time { return testNow }})

	_, err := svc.StartCall(context.Background(), StartCallParams{ApplicationID: "app-1", InitiatorEmail: "a@x.com", InitiatorRole: domain.RoleCandidate})
	var sErr *StorageError
	if !errors.As(err, &sErr) || sErr.Op != "StartCall" {
		t.Fatalf("expected StorageError for StartCall, got %v", err)
	}
}
