package workers

import (
	"context"
	"log/slog"
	"time"
)

type OnlineLister interface {
	OnlineUsers() []string
}

// PresenceReporterWorker logs the number of online users at a fixed
// interval, as a cheap liveness signal in production logs.
type PresenceReporterWorker struct {
	presence OnlineLister
	interval time.Duration
	log      *slog.Logger
}

func NewPresenceReporterWorker(presence OnlineLister, interval time.Duration, log *slog.Logger) *PresenceReporterWorker {
	return &PresenceReporterWorker{presence: presence, interval: interval, log: log}
}

func (w *PresenceReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.log.Info("Presence snapshot", "online_users", len(w.presence.OnlineUsers()))
		}
	}
}
