package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/jewelry-miniapp/pkg/logger"
	"github.com/angelmondragon/jewelry-miniapp/pkg/metrics"
	"github.com/angelmondragon/jewelry-miniapp/pkg/types"
)

// SyncEvent describes one finished remote call.
type SyncEvent struct {
	Operation Operation
	LineID    types.LineID
	ProductID int64
	Duration  time.Duration
	// Stale is set when a successful response was discarded because a newer
	// local mutation happened while the call was in flight.
	Stale bool
}

// SyncObserver is notified after every background call. Failures never reach
// the caller of a cart mutation; observers are the only place they surface.
type SyncObserver interface {
	OnSyncSuccess(ctx context.Context, ev SyncEvent)
	OnSyncFailure(ctx context.Context, ev SyncEvent, err error)
}

type nopObserver struct{}

func (nopObserver) OnSyncSuccess(context.Context, SyncEvent)        {}
func (nopObserver) OnSyncFailure(context.Context, SyncEvent, error) {}

// Observers fans events out to every member.
type Observers []SyncObserver

func (o Observers) OnSyncSuccess(ctx context.Context, ev SyncEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.OnSyncSuccess(ctx, ev)
		}
	}
}

func (o Observers) OnSyncFailure(ctx context.Context, ev SyncEvent, err error) {
	for _, obs := range o {
		if obs != nil {
			obs.OnSyncFailure(ctx, ev, err)
		}
	}
}

// LoggingObserver writes sync outcomes to the structured logger.
type LoggingObserver struct {
	Logger *logger.Logger
}

func (l LoggingObserver) fields(ctx context.Context, ev SyncEvent) context.Context {
	fields := map[string]any{
		"duration_ms": ev.Duration.Milliseconds(),
		"stale":       ev.Stale,
	}
	if ev.LineID != 0 {
		fields["line_item_id"] = int64(ev.LineID)
	}
	if ev.ProductID != 0 {
		fields["product_id"] = ev.ProductID
	}
	ctx = l.Logger.WithOperation(ctx, "cart."+ev.Operation.String())
	return l.Logger.WithFields(ctx, fields)
}

func (l LoggingObserver) OnSyncSuccess(ctx context.Context, ev SyncEvent) {
	if l.Logger == nil {
		return
	}
	l.Logger.Debug(l.fields(ctx, ev), "cart sync completed")
}

func (l LoggingObserver) OnSyncFailure(ctx context.Context, ev SyncEvent, err error) {
	if l.Logger == nil {
		return
	}
	l.Logger.WarnErr(l.fields(ctx, ev), "cart sync failed; keeping local state", err)
}

// MetricsObserver records sync outcomes as prometheus series.
type MetricsObserver struct {
	Metrics *metrics.SyncMetrics
}

func (m MetricsObserver) OnSyncSuccess(_ context.Context, ev SyncEvent) {
	m.Metrics.ObserveDuration(ev.Operation.String(), ev.Duration)
	m.Metrics.IncSuccess(ev.Operation.String())
	if ev.Stale {
		m.Metrics.IncStale(ev.Operation.String())
	}
}

func (m MetricsObserver) OnSyncFailure(_ context.Context, ev SyncEvent, _ error) {
	m.Metrics.ObserveDuration(ev.Operation.String(), ev.Duration)
	m.Metrics.IncFailure(ev.Operation.String())
}
