// Package poller implements the conversation client: it polls messages and
// call state on a fixed interval and turns observed changes into callbacks.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/service"
)

const DefaultInterval = 3 * time.Second

// ErrNoIncomingCall is returned by Answer when nobody is ringing
var ErrNoIncomingCall = errors.New("poller: no incoming call")

// Listener receives the state transitions a poller observes. Callbacks run
// on poller goroutines and must not block for long.
type Listener interface {
	MessagesUpdated(msgs []domain.Message)
	IncomingCall(call domain.VideoCall)
	JoinCall(call domain.VideoCall)
	CallEnded(call domain.VideoCall)
	CallFailed(err error)
}

// Identity is the local participant of a conversation
type Identity struct {
	ApplicationID string
	Email         string
	Role          domain.Role
}

type Config struct {
	Interval time.Duration
	// RequestTimeout bounds each poll request; zero means no bound
	RequestTimeout time.Duration
	Media          Media
	Logger         *slog.Logger
}

type Poller struct {
	api      API
	listener Listener
	me       Identity
	cfg      Config
	logger   *slog.Logger

	// at most one outstanding request per poll operation
	listing  atomic.Bool
	checking atomic.Bool

	mtx       sync.Mutex
	messages  []domain.Message
	loaded    bool
	call      *domain.VideoCall
	announced string
	mediaOpen bool
	joining   bool
	// gen counts local call actions so polls answered across one are dropped
	gen uint64

	runMtx    sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func New(api API, listener Listener, me Identity, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Media == nil {
		cfg.Media = nopMedia{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		api:      api,
		listener: listener,
		me:       me,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "poller"), slog.String("applicationId", me.ApplicationID)),
	}
}

// Start opens the conversation: it fetches messages and call state, marks
// the other side's messages read, then keeps polling until Stop.
func (p *Poller) Start() {
	p.runMtx.Lock()
	defer p.runMtx.Unlock()

	if p.isRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.isRunning = true

	ticker := time.NewTicker(p.cfg.Interval)
	p.wg.Go(func() {
		defer ticker.Stop()

		// initial run
		p.tick(ctx)
		p.markRead(ctx)

		for {
			select {
			case <-ticker.C:
				p.tick(ctx)
			case <-ctx.Done():
				return
			}
		}
	})
}

// Stop ends polling and releases local media. The server is not told.
func (p *Poller) Stop() {
	p.runMtx.Lock()
	defer p.runMtx.Unlock()

	if !p.isRunning {
		return
	}

	p.cancel()
	p.wg.Wait()
	p.isRunning = false

	p.mtx.Lock()
	release := p.mediaOpen
	p.mediaOpen = false
	p.mtx.Unlock()
	if release {
		p.cfg.Media.Release()
	}
}

// Messages returns the last known conversation
func (p *Poller) Messages() []domain.Message {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return slices.Clone(p.messages)
}

// Call returns the call being tracked, if any
func (p *Poller) Call() *domain.VideoCall {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.call == nil {
		return nil
	}
	c := *p.call
	return &c
}

func (p *Poller) tick(ctx context.Context) {
	p.runGuarded(ctx, &p.listing, p.pollMessages)
	p.runGuarded(ctx, &p.checking, p.pollCall)
}

// runGuarded skips the operation while a previous request of it is still in flight
func (p *Poller) runGuarded(ctx context.Context, inFlight *atomic.Bool, op func(ctx context.Context)) {
	if !inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("previous request still in flight, skipping tick")
		return
	}
	p.wg.Go(func() {
		defer inFlight.Store(false)
		reqCtx, cancel := p.requestContext(ctx)
		defer cancel()
		op(reqCtx)
	})
}

func (p *Poller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, p.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (p *Poller) markRead(ctx context.Context) {
	if err := p.api.MarkRead(ctx, p.me.ApplicationID, p.me.Email); err != nil {
		p.logger.Warn("failed to mark messages read", "error", err.Error())
	}
}

func (p *Poller) pollMessages(ctx context.Context) {
	msgs, err := p.api.ListMessages(ctx, p.me.ApplicationID)
	if err != nil {
		// keep the last known state, the next tick retries
		p.logger.Warn("failed to poll messages", "error", err.Error())
		return
	}

	p.mtx.Lock()
	changed := !p.loaded || !slices.EqualFunc(p.messages, msgs, sameMessage)
	p.messages = msgs
	p.loaded = true
	p.mtx.Unlock()

	if changed {
		p.listener.MessagesUpdated(slices.Clone(msgs))
	}
}

func sameMessage(a, b domain.Message) bool {
	return a.ID == b.ID && a.Read == b.Read
}

func (p *Poller) pollCall(ctx context.Context) {
	gen := p.generation()
	call, err := p.api.GetCurrentCall(ctx, p.me.ApplicationID)
	if err != nil {
		p.logger.Warn("failed to poll call state", "error", err.Error())
		return
	}
	p.observeCall(ctx, call, gen)
}

func (p *Poller) generation() uint64 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.gen
}

// observeCall applies the client rules for an observed call state. gen is the
// local generation the poll was requested at; answers older than the last
// local call action are dropped.
func (p *Poller) observeCall(ctx context.Context, call *domain.VideoCall, gen uint64) {
	p.mtx.Lock()
	if gen != p.gen {
		p.mtx.Unlock()
		p.logger.Debug("dropping call state requested before a local call action")
		return
	}

	if !call.Ongoing() {
		tracked, release := p.untrackLocked()
		p.mtx.Unlock()
		p.finishCall(tracked, release, call)
		return
	}

	observed := *call
	var replaced *domain.VideoCall
	releaseReplaced := false
	if p.call != nil && p.call.ID != observed.ID {
		// a different call replaced ours
		replaced, releaseReplaced = p.untrackLocked()
	}

	incoming, join := false, false
	p.call = &observed
	switch observed.Status {
	case domain.CallCalling:
		if observed.InitiatorEmail != p.me.Email && p.announced != observed.ID {
			p.announced = observed.ID
			incoming = true
		}
	case domain.CallActive:
		if !p.mediaOpen && !p.joining {
			p.joining = true
			join = true
		}
	}
	p.mtx.Unlock()

	p.finishCall(replaced, releaseReplaced, nil)
	if incoming {
		p.listener.IncomingCall(observed)
	}
	if join {
		p.join(ctx, observed, gen)
	}
}

func (p *Poller) join(ctx context.Context, call domain.VideoCall, gen uint64) {
	err := p.cfg.Media.Acquire(ctx)

	p.mtx.Lock()
	p.joining = false
	stale := err == nil && gen != p.gen
	if err == nil && !stale {
		p.mediaOpen = true
	}
	p.mtx.Unlock()

	switch {
	case err != nil:
		p.logger.Error("failed to join active call", "callId", call.ID, "error", err.Error())
		p.listener.CallFailed(err)
	case stale:
		// a local hangup or start won the race
		p.cfg.Media.Release()
	default:
		p.listener.JoinCall(call)
	}
}

// untrackLocked forgets the tracked call and reports whether media must be released
func (p *Poller) untrackLocked() (tracked *domain.VideoCall, release bool) {
	tracked, release = p.call, p.mediaOpen
	p.call = nil
	p.mediaOpen = false
	return tracked, release
}

// finishCall releases media and reports the end of a call that disappeared or ended
func (p *Poller) finishCall(tracked *domain.VideoCall, release bool, ended *domain.VideoCall) {
	if release {
		p.cfg.Media.Release()
	}
	if tracked == nil {
		return
	}

	final := *tracked
	if ended != nil && ended.ID == tracked.ID {
		final = *ended
	} else {
		final.Status = domain.CallEnded
	}
	p.listener.CallEnded(final)
}

// Send posts a message and shows it immediately. The next poll replaces the
// local view with the server's.
func (p *Poller) Send(ctx context.Context, text string) (domain.Message, error) {
	msg, err := p.api.SendMessage(ctx, service.SendMessageParams{
		ApplicationID: p.me.ApplicationID,
		Sender:        p.me.Role,
		SenderEmail:   p.me.Email,
		Text:          text,
	})
	if err != nil {
		return domain.Message{}, err
	}

	p.mtx.Lock()
	p.messages = append(p.messages, msg)
	snapshot := slices.Clone(p.messages)
	p.mtx.Unlock()

	p.listener.MessagesUpdated(snapshot)
	return msg, nil
}

// StartCall acquires local media and then starts, answers or rejoins the
// conversation's call
func (p *Poller) StartCall(ctx context.Context) (domain.VideoCall, error) {
	if err := p.cfg.Media.Acquire(ctx); err != nil {
		return domain.VideoCall{}, err
	}

	res, err := p.api.StartCall(ctx, service.StartCallParams{
		ApplicationID:  p.me.ApplicationID,
		InitiatorEmail: p.me.Email,
		InitiatorRole:  p.me.Role,
	})
	if err != nil {
		p.cfg.Media.Release()
		return domain.VideoCall{}, err
	}

	p.mtx.Lock()
	call := res.Call
	p.call = &call
	p.mediaOpen = true
	p.gen++
	p.mtx.Unlock()
	return res.Call, nil
}

// Answer accepts the ringing call announced through IncomingCall
func (p *Poller) Answer(ctx context.Context) (domain.VideoCall, error) {
	p.mtx.Lock()
	var ringing *domain.VideoCall
	if p.call != nil && p.call.Status == domain.CallCalling && p.call.InitiatorEmail != p.me.Email {
		c := *p.call
		ringing = &c
	}
	p.mtx.Unlock()
	if ringing == nil {
		return domain.VideoCall{}, ErrNoIncomingCall
	}

	if err := p.cfg.Media.Acquire(ctx); err != nil {
		return domain.VideoCall{}, err
	}

	call, err := p.api.SetCallStatus(ctx, ringing.ID, domain.CallActive)
	if err != nil {
		p.cfg.Media.Release()
		return domain.VideoCall{}, err
	}

	p.mtx.Lock()
	p.call = &call
	p.mediaOpen = true
	p.gen++
	p.mtx.Unlock()
	return call, nil
}

// Hangup ends the tracked call on the server and releases local media even
// when the server update fails
func (p *Poller) Hangup(ctx context.Context) error {
	p.mtx.Lock()
	tracked, release := p.untrackLocked()
	p.gen++
	p.mtx.Unlock()

	if release {
		p.cfg.Media.Release()
	}
	if tracked == nil {
		return nil
	}

	_, err := p.api.SetCallStatus(ctx, tracked.ID, domain.CallEnded)

	// polls sent before the server saw the hangup still report the call
	p.mtx.Lock()
	p.gen++
	p.mtx.Unlock()

	if err != nil {
		p.logger.Error("failed to end call", "callId", tracked.ID, "error", err.Error())
		return err
	}
	return nil
}
