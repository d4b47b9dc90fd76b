package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aniladanir/hirechat/internal/domain"
	repository "github.com/aniladanir/hirechat/internal/repository/conversation"
	"github.com/aniladanir/retry"
	"github.com/google/uuid"
)

type EventType string

const (
	EventMessageCreated EventType = "message.created"
	EventCallStarted    EventType = "call.started"
	EventCallEnded      EventType = "call.ended"
)

// Event describes a change worth pushing to an external system
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ApplicationID string    `json:"applicationId"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       any       `json:"payload"`
}

func newEvent(opts Options, typ EventType, applicationID string, payload any) Event {
	return Event{
		ID:            fmt.Sprintf("evt-%s", opts.IDGenerator()),
		Type:          typ,
		ApplicationID: applicationID,
		OccurredAt:    opts.Now(),
		Payload:       payload,
	}
}

// Notifier receives events after the change is persisted. Notify must not block.
type Notifier interface {
	Notify(evt Event)
}

type EventNotifier interface {
	Notifier
	Start()
	Stop()
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
func (nopNotifier) Start()        {}
func (nopNotifier) Stop()         {}

// NopEventNotifier drops every event
func NopEventNotifier() EventNotifier {
	return nopNotifier{}
}

type webhookNotifier struct {
	repo       repository.Repository
	webhookURL string
	queue      chan Event
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	isRunning  bool
	mtx        sync.Mutex
	retrier    *retry.Retrier
	httpClient *http.Client
	logger     *slog.Logger
	workers    int
}

func NewWebhookNotifier(repo repository.Repository, logger *slog.Logger, webhookURL string, maxRetryOnFail *int, workers, queueSize int) (EventNotifier, error) {
	// initialize retrier
	retrierOpts := make([]retry.Option, 0)
	if maxRetryOnFail != nil {
		retrierOpts = append(retrierOpts, retry.WithMaxAttemps(*maxRetryOnFail))
	}
	retrier, err := retry.New(retrierOpts...)
	if err != nil {
		return nil, fmt.Errorf("encountered error when initializing retrier: %w", err)
	}

	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	return &webhookNotifier{
		repo:       repo,
		webhookURL: webhookURL,
		queue:      make(chan Event, queueSize),
		retrier:    retrier,
		logger:     defaultLogger(logger),
		httpClient: &http.Client{
			Timeout: time.Second * 5,
		},
		workers: workers,
	}, nil
}

// Start launches the delivery workers
func (n *webhookNotifier) Start() {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.isRunning = true

	for range n.workers {
		n.wg.Go(func() {
			for {
				select {
				case evt := <-n.queue:
					n.deliver(ctx, evt)
				case <-ctx.Done():
					return
				}
			}
		})
	}
}

// Stop cancels in-flight deliveries and waits for the workers to exit
func (n *webhookNotifier) Stop() {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if !n.isRunning {
		return
	}

	n.cancel()
	n.wg.Wait()
	n.isRunning = false
}

// Notify queues the event, dropping it when the queue is full
func (n *webhookNotifier) Notify(evt Event) {
	select {
	case n.queue <- evt:
	default:
		n.logger.Warn("notification queue full, dropping event", "eventId", evt.ID, "type", evt.Type)
	}
}

func (n *webhookNotifier) deliver(ctx context.Context, evt Event) {
	// create a logger with event id
	evtLogger := n.logger.With(slog.String("eventId", evt.ID), slog.String("type", string(evt.Type)))

	if sent, err := n.repo.Delivered(ctx, evt.ID); err != nil {
		evtLogger.Warn("failed to check delivery cache", "error", err.Error())
	} else if sent {
		return
	}

	retryFunc := func(attempt int) (terminate bool) {
		retryLogger := evtLogger.With(slog.Int("attempt", attempt))

		resp, err := n.doEventRequest(ctx, evt)
		if err != nil {
			retryLogger.Error("failed to send request", "error", err.Error())
			return false
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
			retryLogger.Info("event is successfuly delivered",
				"requestId", resp.Header.Get("X-Request-ID"),
				"remoteId", remoteMessageID(resp.Body))
			if err := n.repo.CacheDelivery(ctx, evt.ID, time.Now().UTC()); err != nil {
				retryLogger.Error("failed to cache delivery", "error", err.Error())
			}
		case resp.StatusCode >= http.StatusInternalServerError:
			// 5XX status code indicates server error, try retry
			retryLogger.Error("response indicates error",
				"requestId", resp.Header.Get("X-Request-ID"),
				"statusCode", resp.StatusCode)
			return false
		default:
			// 4XX indicates client error, no need to retry
			retryLogger.Error("response indicates error, dropping event",
				"requestId", resp.Header.Get("X-Request-ID"),
				"statusCode", resp.StatusCode)
		}

		return true
	}

	if retrySuccess := <-n.retrier.Retry(ctx, retryFunc, true); !retrySuccess {
		evtLogger.Error("giving up on event delivery")
	}
}

func (n *webhookNotifier) doEventRequest(ctx context.Context, evt Event) (*http.Response, error) {
	jsonPayload, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Add("X-Request-ID", uuid.NewString())

	return n.httpClient.Do(req)
}

func remoteMessageID(body io.Reader) string {
	var result domain.WebhookResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return ""
	}
	return result.MessageID
}
