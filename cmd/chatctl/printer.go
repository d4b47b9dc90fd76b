package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/aniladanir/hirechat/internal/domain"
	"github.com/aniladanir/hirechat/internal/poller"
)

// printer renders poller events as terminal lines
type printer struct {
	mtx  sync.Mutex
	w    io.Writer
	me   string
	seen map[string]bool
}

func (p *printer) MessagesUpdated(msgs []domain.Message) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	for _, m := range msgs {
		if p.seen[m.ID] {
			continue
		}
		p.seen[m.ID] = true
		who := string(m.Sender)
		if m.SenderEmail == p.me {
			who = "you"
		}
		fmt.Fprintf(p.w, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), who, m.Text)
	}
}

func (p *printer) IncomingCall(call domain.VideoCall) {
	p.println(fmt.Sprintf("*** incoming video call from %s (%s), run `chatctl call answer` to join", call.InitiatorEmail, call.InitiatorRole))
}

func (p *printer) JoinCall(call domain.VideoCall) {
	msg := "*** call connected"
	if call.RoomURL != "" {
		msg += ", room " + call.RoomURL
	}
	p.println(msg)
}

func (p *printer) CallEnded(domain.VideoCall) {
	p.println("*** call ended")
}

func (p *printer) CallFailed(err error) {
	p.println("*** " + poller.Notice(err))
}

func (p *printer) println(line string) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	fmt.Fprintln(p.w, line)
}
