// Package client talks to the HireChat HTTP API and satisfies poller.API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/poller"
	"github.com/aniladanir/hirechat/internal/service"
	"github.com/google/uuid"
)

var _ poller.API = (*Client)(nil)

// APIError is a non 2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match service.ErrNotFound for 404 answers
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return service.ErrNotFound
	}
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) ListMessages(ctx context.Context, applicationID string) ([]domain.Message, error) {
	var resp struct {
		Messages []domain.Message `json:"messages"`
	}
	q := url.Values{"applicationId": {applicationID}}
	if err := c.do(ctx, http.MethodGet, "/api/chat?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		resp.Messages = []domain.Message{}
	}
	return resp.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, params service.SendMessageParams) (domain.Message, error) {
	var resp struct {
		Message domain.Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/chat", params, &resp); err != nil {
		return domain.Message{}, err
	}
	return resp.Message, nil
}

func (c *Client) MarkRead(ctx context.Context, applicationID, userEmail string) error {
	body := map[string]string{"applicationId": applicationID, "userEmail": userEmail}
	return c.do(ctx, http.MethodPatch, "/api/chat", body, nil)
}

func (c *Client) GetCurrentCall(ctx context.Context, applicationID string) (*domain.VideoCall, error) {
	var resp struct {
		Call *domain.VideoCall `json:"call"`
	}
	q := url.Values{"applicationId": {applicationID}}
	if err := c.do(ctx, http.MethodGet, "/api/videocall?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Call, nil
}

func (c *Client) StartCall(ctx context.Context, params service.StartCallParams) (service.StartCallResult, error) {
	var resp struct {
		Call domain.VideoCall `json:"call"`
	}
	status, err := c.doStatus(ctx, http.MethodPost, "/api/videocall", params, &resp)
	if err != nil {
		return service.StartCallResult{}, err
	}
	return service.StartCallResult{Call: resp.Call, Created: status == http.StatusCreated}, nil
}

func (c *Client) SetCallStatus(ctx context.Context, callID string, status domain.CallStatus) (domain.VideoCall, error) {
	var resp struct {
		Call domain.VideoCall `json:"call"`
	}
	body := map[string]string{"callId": callID, "status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/api/videocall", body, &resp); err != nil {
		return domain.VideoCall{}, err
	}
	return resp.Call, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.doStatus(ctx, method, path, body, out)
	return err
}

func (c *Client) doStatus(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(payload))
		if json.Unmarshal(payload, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return resp.StatusCode, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}
