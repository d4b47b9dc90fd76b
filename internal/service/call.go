package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aniladanir/hirechat/internal/domain"
	repository "github.com/aniladanir/hirechat/internal/repository/conversation"
)

type CallSignaler interface {
	GetCurrentCall(ctx context.Context, applicationID string) (*domain.VideoCall, error)
	StartCall(ctx context.Context, params StartCallParams) (StartCallResult, error)
	SetCallStatus(ctx context.Context, callID string, status domain.CallStatus) (domain.VideoCall, error)
}

type StartCallParams struct {
	ApplicationID  string      `json:"applicationId" validate:"required"`
	InitiatorEmail string      `json:"initiatorEmail" validate:"required"`
	InitiatorRole  domain.Role `json:"initiatorRole" validate:"required,oneof=employer candidate"`
}

// StartCallResult is the call a StartCall resolved to. Created is false when
// an existing call was joined or answered instead.
type StartCallResult struct {
	Call    domain.VideoCall
	Created bool
}

type setStatusParams struct {
	CallID string            `json:"callId" validate:"required"`
	Status domain.CallStatus `json:"status" validate:"required,oneof=active ended"`
}

type CallService struct {
	repo repository.Repository
	opts Options
}

func NewCallService(repo repository.Repository, opts Options) *CallService {
	return &CallService{repo: repo, opts: opts.withDefaults()}
}

// GetCurrentCall returns the calling or active call of an application, or nil
func (s *CallService) GetCurrentCall(ctx context.Context, applicationID string) (call *domain.VideoCall, err error) {
	logger := serviceLogger(s.opts.Logger, "CallService", "GetCurrentCall", "application_id", applicationID)
	defer func() {
		attrs := []any{"found", call != nil}
		if call != nil {
			attrs = append(attrs, "call_id", call.ID, "status", call.Status)
		}
		logResult(ctx, logger, slog.LevelDebug, err, "failed to fetch current call", "current call fetched", attrs...)
	}()

	if strings.TrimSpace(applicationID) == "" {
		vErr := &ValidationError{}
		vErr.add("applicationId", "applicationId is required")
		return nil, vErr
	}

	call, err = s.repo.CurrentCall(ctx, applicationID)
	if err != nil {
		return nil, &StorageError{Op: "GetCurrentCall", Err: err}
	}
	return call, nil
}

// StartCall rings the other side, or resolves glare: a call already ringing
// is answered by the second starter and an active call is simply rejoined.
func (s *CallService) StartCall(ctx context.Context, params StartCallParams) (res StartCallResult, err error) {
	logger := serviceLogger(s.opts.Logger, "CallService", "StartCall",
		"application_id", params.ApplicationID,
		"initiator_role", params.InitiatorRole,
	)
	defer func() {
		logResult(ctx, logger, slog.LevelInfo, err, "failed to start call", "call started",
			"call_id", res.Call.ID, "status", res.Call.Status, "created", res.Created)
	}()

	params.ApplicationID = strings.TrimSpace(params.ApplicationID)
	params.InitiatorEmail = strings.TrimSpace(params.InitiatorEmail)
	if vErr := validateParams(params); vErr.HasErrors() {
		return StartCallResult{}, vErr
	}

	err = mapRepoError("StartCall", s.repo.Update(ctx, func(doc *domain.Document) error {
		if existing := doc.CurrentCall(params.ApplicationID); existing != nil {
			res = StartCallResult{Call: *existing}
			if existing.Status == domain.CallActive {
				return errNoChange
			}
			existing.Status = domain.CallActive
			res.Call = *existing
			return nil
		}

		res = StartCallResult{Created: true, Call: s.newCall(params)}
		doc.VideoCalls = append(doc.VideoCalls, res.Call)
		return nil
	}))
	if err != nil {
		return StartCallResult{}, err
	}

	if res.Created {
		s.opts.Notifier.Notify(newEvent(s.opts, EventCallStarted, res.Call.ApplicationID, res.Call))
	}
	return res, nil
}

// SetCallStatus answers or ends a call. Ended calls are terminal: further
// updates return the stored record unchanged.
func (s *CallService) SetCallStatus(ctx context.Context, callID string, status domain.CallStatus) (call domain.VideoCall, err error) {
	logger := serviceLogger(s.opts.Logger, "CallService", "SetCallStatus", "call_id", callID, "status", status)
	defer func() {
		logResult(ctx, logger, slog.LevelInfo, err, "failed to update call status", "call status updated", "status_after", call.Status)
	}()

	params := setStatusParams{CallID: strings.TrimSpace(callID), Status: status}
	if vErr := validateParams(params); vErr.HasErrors() {
		return domain.VideoCall{}, vErr
	}

	ended := false
	err = mapRepoError("SetCallStatus", s.repo.Update(ctx, func(doc *domain.Document) error {
		found := doc.FindCall(params.CallID)
		if found == nil {
			return ErrNotFound
		}
		if found.Status.Terminal() || found.Status == params.Status {
			call = *found
			return errNoChange
		}

		found.Status = params.Status
		if params.Status == domain.CallEnded {
			endedAt := s.opts.Now()
			found.EndedAt = &endedAt
			ended = true
		}
		call = *found
		return nil
	}))
	if err != nil {
		return domain.VideoCall{}, err
	}

	if ended {
		s.opts.Notifier.Notify(newEvent(s.opts, EventCallEnded, call.ApplicationID, call))
	}
	return call, nil
}

func (s *CallService) newCall(params StartCallParams) domain.VideoCall {
	id := s.opts.IDGenerator()
	call := domain.VideoCall{
		ID:             fmt.Sprintf("call-%s", id),
		ApplicationID:  params.ApplicationID,
		InitiatorEmail: params.InitiatorEmail,
		InitiatorRole:  params.InitiatorRole,
		Status:         domain.CallCalling,
		StartedAt:      s.opts.Now(),
	}
	if base := strings.TrimRight(s.opts.RoomURLBase, "/"); base != "" {
		call.RoomURL = fmt.Sprintf("%s/myhire-%s", base, roomSuffix(id))
	}
	return call
}

func roomSuffix(id string) string {
	suffix := strings.ReplaceAll(id, "-", "")
	if len(suffix) > 12 {
		suffix = suffix[:12]
	}
	return suffix
}
