package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/poller"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event types pushed on /api/watch
const (
	WatchMessages     = "messages"
	WatchIncomingCall = "incoming_call"
	WatchJoinCall     = "join_call"
	WatchCallEnded    = "call_ended"
	WatchCallFailed   = "call_failed"
)

// WatchSync is the only frame a watcher sends: it asks for the current state again
const WatchSync = "sync"

type watchRequest struct {
	Type string `json:"type"`
}

type WatchEvent struct {
	Type     string            `json:"type"`
	Messages []domain.Message  `json:"messages,omitempty"`
	Call     *domain.VideoCall `json:"call,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsListener forwards poller callbacks to one websocket connection
type wsListener struct {
	mtx   sync.Mutex
	conn  *websocket.Conn
	h     *Handler
	email string
}

func (l *wsListener) send(evt WatchEvent) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if err := l.conn.WriteJSON(evt); err != nil {
		l.h.logger.Debug("failed to push watch event", "type", evt.Type, "error", err.Error())
	}
}

func (l *wsListener) MessagesUpdated(msgs []domain.Message) {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	l.send(WatchEvent{Type: WatchMessages, Messages: msgs})
}

func (l *wsListener) IncomingCall(call domain.VideoCall) {
	l.send(WatchEvent{Type: WatchIncomingCall, Call: &call})
}

func (l *wsListener) JoinCall(call domain.VideoCall) {
	l.send(WatchEvent{Type: WatchJoinCall, Call: &call})
}

func (l *wsListener) CallEnded(call domain.VideoCall) {
	l.send(WatchEvent{Type: WatchCallEnded, Call: &call})
}

func (l *wsListener) CallFailed(err error) {
	l.send(WatchEvent{Type: WatchCallFailed, Error: poller.Notice(err)})
}

// resync pushes the last observed state. The poller announces a call once,
// so a watcher that lost a join_call or incoming_call gets it again here.
func (l *wsListener) resync(p *poller.Poller) {
	l.MessagesUpdated(p.Messages())

	call := p.Call()
	switch {
	case call == nil:
	case call.Status == domain.CallActive:
		l.JoinCall(*call)
	case call.InitiatorEmail != l.email:
		l.IncomingCall(*call)
	}
}

// Watch godoc
// @Summary Stream conversation events
// @Description Upgrades to a websocket and pushes message and call changes observed by a server side poller. Sending {"type":"sync"} repeats the current state.
// @Tags Watch
// @Param applicationId query string true "application id"
// @Param email query string true "watcher email"
// @Router /api/watch [get]
func (h *Handler) watch(c *gin.Context) {
	appID := c.Query("applicationId")
	email := c.Query("email")
	if appID == "" || email == "" {
		badRequest(c, "applicationId and email are required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	listener := &wsListener{conn: conn, h: h, email: email}
	p := poller.New(
		poller.Local(h.chat, h.calls),
		listener,
		poller.Identity{ApplicationID: appID, Email: email},
		poller.Config{Interval: h.cfg.WatchInterval, Logger: h.logger},
	)
	p.Start()
	defer p.Stop()

	h.logger.Info("watch opened", "applicationId", appID, "email", email)

	// besides closing, the client may only ask for a resync
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req watchRequest
		if json.Unmarshal(raw, &req) == nil && req.Type == WatchSync {
			listener.resync(p)
		}
	}

	h.logger.Info("watch closed", "applicationId", appID, "email", email)
}
