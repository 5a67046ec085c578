package tray

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/jameshartig/sungrowmon/pkg/log"
)

// Updater receives battery status for the host status indicator. Updates are
// fire and forget.
type Updater interface {
	UpdateStatus(ctx context.Context, percent int, label string)
}

// Status buffers the latest tray title and icon for whatever renders the tray.
// Sends never block: when a channel is full the update is dropped.
type Status struct {
	titles chan string
	icons  chan []byte
	goos   string
}

var _ Updater = (*Status)(nil)

// NewStatus returns a Status whose channels hold up to buffer pending updates.
func NewStatus(buffer int) *Status {
	return &Status{
		titles: make(chan string, buffer),
		icons:  make(chan []byte, buffer),
		goos:   runtime.GOOS,
	}
}

// Titles delivers tooltip/title updates.
func (s *Status) Titles() <-chan string {
	return s.titles
}

// Icons delivers encoded icon updates.
func (s *Status) Icons() <-chan []byte {
	return s.icons
}

// UpdateTitle queues a new title.
func (s *Status) UpdateTitle(ctx context.Context, title string) {
	select {
	case s.titles <- title:
	default:
		log.Ctx(ctx).DebugContext(ctx, "tray title channel full, dropping update", slog.String("title", title))
	}
}

// UpdateStatus queues label as the title and a badge icon filled to percent.
func (s *Status) UpdateStatus(ctx context.Context, percent int, label string) {
	log.Ctx(ctx).DebugContext(ctx, "updating tray status", slog.Int("percent", percent), slog.String("label", label))

	s.UpdateTitle(ctx, label)

	icon, err := badgeIcon(percent, s.goos)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to generate tray icon", slog.Any("error", err))
		return
	}
	select {
	case s.icons <- icon:
	default:
		log.Ctx(ctx).DebugContext(ctx, "tray icon channel full, dropping update")
	}
}
