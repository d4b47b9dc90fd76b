package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Options carries the collaborators shared by the chat and call services
type Options struct {
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
	Notifier    Notifier
	// RoomURLBase, when set, gives every new call a media room under this URL
	RoomURLBase string
}

func (o Options) withDefaults() Options {
	if o.IDGenerator == nil {
		o.IDGenerator = uuid.NewString
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	o.Logger = defaultLogger(o.Logger)
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	return o
}
