package poller

import (
	"context"
	"errors"
)

var (
	ErrPermissionDenied = errors.New("media: permission denied")
	ErrDeviceNotFound   = errors.New("media: no capture device found")
	ErrDeviceBusy       = errors.New("media: capture device in use")
)

// Media is the local capture session a participant holds while in a call
type Media interface {
	Acquire(ctx context.Context) error
	Release()
}

type nopMedia struct{}

func (nopMedia) Acquire(context.Context) error { return nil }
func (nopMedia) Release()                      {}

// Notice turns a start or answer failure into the text shown to the user
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Camera/microphone access denied. Please allow access in your browser settings and try again."
	case errors.Is(err, ErrDeviceNotFound):
		return "No camera or microphone found. Please connect a device and try again."
	case errors.Is(err, ErrDeviceBusy):
		return "Camera/microphone is already in use by another application. Please close other apps and try again."
	default:
		return "Failed to start video call. Please check camera permissions and try again."
	}
}
