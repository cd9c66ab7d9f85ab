// Package notify carries user-facing notices from domain operations to
// whatever surface displays them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/amglow-storefront/pkg/enums"
	"github.com/angelmondragon/amglow-storefront/pkg/types"
)

const PositionBottomCenter = "bottom-center"

const (
	ShortAutoClose = 2 * time.Second
	LongAutoClose  = 3 * time.Second
)

type Options struct {
	Position  string
	AutoClose time.Duration
}

type Notification struct {
	Kind    enums.NotificationKind
	Message string
	Options Options
}

// Notifier is fire-and-forget; implementations must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

func Success(message string, autoClose time.Duration) Notification {
	return build(enums.NotificationSuccess, message, autoClose)
}

func Info(message string, autoClose time.Duration) Notification {
	return build(enums.NotificationInfo, message, autoClose)
}

func Error(message string, autoClose time.Duration) Notification {
	return build(enums.NotificationError, message, autoClose)
}

func build(kind enums.NotificationKind, message string, autoClose time.Duration) Notification {
	return Notification{
		Kind:    kind,
		Message: message,
		Options: Options{Position: PositionBottomCenter, AutoClose: autoClose},
	}
}

// Notice converts n to its wire form.
func (n Notification) Notice() types.Notice {
	return types.Notice{
		Kind:        string(n.Kind),
		Message:     n.Message,
		Position:    n.Options.Position,
		AutoCloseMS: n.Options.AutoClose.Milliseconds(),
	}
}

// Recorder collects notifications in emission order. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Notices returns the recorded notifications in wire form, or nil when empty.
func (r *Recorder) Notices() []types.Notice {
	items := r.All()
	if len(items) == 0 {
		return nil
	}
	out := make([]types.Notice, 0, len(items))
	for _, n := range items {
		out = append(out, n.Notice())
	}
	return out
}

type discard struct{}

func (discard) Notify(context.Context, Notification) {}

// Discard drops every notification.
var Discard Notifier = discard{}
