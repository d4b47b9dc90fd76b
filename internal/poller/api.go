package poller

import (
	"context"

	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/service"
)

// API is the set of server operations a conversation client depends on.
// It is served in-process by the services or remotely over HTTP.
type API interface {
	ListMessages(ctx context.Context, applicationID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, params service.SendMessageParams) (domain.Message, error)
	MarkRead(ctx context.Context, applicationID, userEmail string) error
	GetCurrentCall(ctx context.Context, applicationID string) (*domain.VideoCall, error)
	StartCall(ctx context.Context, params service.StartCallParams) (service.StartCallResult, error)
	SetCallStatus(ctx context.Context, callID string, status domain.CallStatus) (domain.VideoCall, error)
}

type localAPI struct {
	service.MessagingService
	service.CallSignaler
}

// Local serves the API straight from the services
func Local(chat service.MessagingService, calls service.CallSignaler) API {
	return localAPI{MessagingService: chat, CallSignaler: calls}
}
