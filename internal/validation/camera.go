package validation

import (
	"context"
	"errors"
)

// Stream is a live camera feed handle. Exactly one consumer may hold it; it
// must be closed on every exit path from Scan mode.
type Stream interface {
	Close() error
}

// Camera acquires the scanning device. Implementations may return a non-nil
// partially-started stream together with an error; the flow closes it either
// way.
type Camera interface {
	Acquire(ctx context.Context) (Stream, error)
}

// ErrCameraUnavailable is reported by UnavailableCamera.
var ErrCameraUnavailable = errors.New("camera unavailable on this device")

// UnavailableCamera is the production stand-in for hosts without a scanning
// device. Scan mode stays selectable but shows no live preview.
type UnavailableCamera struct{}

func (UnavailableCamera) Acquire(ctx context.Context) (Stream, error) {
	return nil, ErrCameraUnavailable
}
