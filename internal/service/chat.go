package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aniladanir/hirechat/internal/domain"
	repository "github.com/aniladanir/hirechat/internal/repository/conversation"
)

type MessagingService interface {
	ListMessages(ctx context.Context, applicationID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, params SendMessageParams) (domain.Message, error)
	MarkRead(ctx context.Context, applicationID, userEmail string) error
}

type SendMessageParams struct {
	ApplicationID string      `json:"applicationId" validate:"required"`
	Sender        domain.Role `json:"sender" validate:"required"`
	SenderEmail   string      `json:"senderEmail" validate:"required"`
	Text          string      `json:"text" validate:"required"`
}

type markReadParams struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	UserEmail     string `json:"userEmail" validate:"required"`
}

type ChatService struct {
	repo repository.Repository
	opts Options
}

func NewChatService(repo repository.Repository, opts Options) *ChatService {
	return &ChatService{repo: repo, opts: opts.withDefaults()}
}

// ListMessages returns the whole conversation of an application in append order
func (s *ChatService) ListMessages(ctx context.Context, applicationID string) (msgs []domain.Message, err error) {
	logger := serviceLogger(s.opts.Logger, "ChatService", "ListMessages", "application_id", applicationID)
	defer func() {
		logResult(ctx, logger, slog.LevelDebug, err, "failed to list messages", "messages listed", "result_count", len(msgs))
	}()

	if strings.TrimSpace(applicationID) == "" {
		vErr := &ValidationError{}
		vErr.add("applicationId", "applicationId is required")
		return nil, vErr
	}

	msgs, err = s.repo.ListMessages(ctx, applicationID)
	if err != nil {
		return nil, &StorageError{Op: "ListMessages", Err: err}
	}
	return msgs, nil
}

// SendMessage validates and appends a new unread message to the conversation
func (s *ChatService) SendMessage(ctx context.Context, params SendMessageParams) (msg domain.Message, err error) {
	logger := serviceLogger(s.opts.Logger, "ChatService", "SendMessage",
		"application_id", params.ApplicationID,
		"sender", params.Sender,
	)
	defer func() {
		logResult(ctx, logger, slog.LevelInfo, err, "failed to send message", "message sent", "message_id", msg.ID)
	}()

	params.ApplicationID = strings.TrimSpace(params.ApplicationID)
	params.SenderEmail = strings.TrimSpace(params.SenderEmail)
	params.Text = strings.TrimSpace(params.Text)

	if vErr := validateParams(params); vErr.HasErrors() {
		return domain.Message{}, vErr
	}
	if !params.Sender.Valid() {
		return domain.Message{}, ErrInvalidSender
	}

	msg = domain.Message{
		ID:            fmt.Sprintf("msg-%s", s.opts.IDGenerator()),
		ApplicationID: params.ApplicationID,
		Sender:        params.Sender,
		SenderEmail:   params.SenderEmail,
		Text:          params.Text,
		Timestamp:     s.opts.Now(),
		Read:          false,
	}

	err = mapRepoError("SendMessage", s.repo.Update(ctx, func(doc *domain.Document) error {
		doc.Messages = append(doc.Messages, msg)
		return nil
	}))
	if err != nil {
		return domain.Message{}, err
	}

	s.opts.Notifier.Notify(newEvent(s.opts, EventMessageCreated, msg.ApplicationID, msg))
	return msg, nil
}

// MarkRead flags every message of the conversation not written by userEmail as read
func (s *ChatService) MarkRead(ctx context.Context, applicationID, userEmail string) (err error) {
	logger := serviceLogger(s.opts.Logger, "ChatService", "MarkRead", "application_id", applicationID)
	marked := 0
	defer func() {
		logResult(ctx, logger, slog.LevelDebug, err, "failed to mark messages read", "messages marked read", "marked_count", marked)
	}()

	params := markReadParams{ApplicationID: strings.TrimSpace(applicationID), UserEmail: strings.TrimSpace(userEmail)}
	if vErr := validateParams(params); vErr.HasErrors() {
		return vErr
	}

	err = mapRepoError("MarkRead", s.repo.Update(ctx, func(doc *domain.Document) error {
		marked = 0
		for i := range doc.Messages {
			m := &doc.Messages[i]
			if m.ApplicationID == params.ApplicationID && m.SenderEmail != params.UserEmail && !m.Read {
				m.Read = true
				marked++
			}
		}
		if marked == 0 {
			return errNoChange
		}
		return nil
	}))
	return err
}
