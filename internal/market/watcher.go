package market

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/observability"
	"github.com/marcelofeitoza/crowd-estate/internal/solana"
)

// Watcher subscribes to the program's transaction logs and invalidates
// the listing whenever any program transaction lands. Log notifications
// do not identify the touched accounts, so the watcher invalidates
// broadly; singleton entries are handled by the write path and TTL.
type Watcher struct {
	ws          solana.WSClient
	programID   string
	invalidator Invalidator
	log         *logrus.Entry
}

// NewWatcher creates a watcher over an established WebSocket client.
func NewWatcher(ws solana.WSClient, programID string, inv Invalidator, log *logrus.Logger) *Watcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Watcher{
		ws:          ws,
		programID:   programID,
		invalidator: inv,
		log:         log.WithField("component", "watcher"),
	}
}

// Run consumes notifications until the context is cancelled or the
// subscription channel closes. Failed transactions are ignored: they
// changed no account state.
func (w *Watcher) Run(ctx context.Context) error {
	notifs, err := w.ws.SubscribeProgram(ctx, w.programID)
	if err != nil {
		return err
	}

	w.log.WithField("program", w.programID).Info("watching program logs")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifs:
			if !ok {
				w.log.Warn("log subscription closed")
				return nil
			}
			observability.RecordWatcherNotification()
			if n.Err != nil {
				continue
			}

			w.log.WithFields(logrus.Fields{
				"signature": n.Signature,
				"slot":      n.Slot,
			}).Debug("program transaction landed, invalidating listing")

			if err := w.invalidator.InvalidateAllProperties(ctx); err != nil {
				w.log.WithError(err).Warn("listing invalidation failed")
			}
		}
	}
}
