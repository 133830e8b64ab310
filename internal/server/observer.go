package server

import (
	"sync"

	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/observability/log"
)

var _ bus.EventBusObserver = (*eventStats)(nil)

// eventStats counts simulation events by type and logs handler failures.
// It runs inside Publish, under the session lock.
type eventStats struct {
	logger log.Log

	mu     sync.Mutex
	byType map[string]uint64
	failed uint64
}

func newEventStats(logger log.Log) *eventStats {
	return &eventStats{logger: logger, byType: make(map[string]uint64)}
}

func (o *eventStats) OnPublish(eventType string, _ bus.Event) {
	o.mu.Lock()
	o.byType[eventType]++
	o.mu.Unlock()
}

func (o *eventStats) OnDelivered(eventType string, handlers int, err error, durationMicros int64) {
	if err == nil {
		return
	}
	o.mu.Lock()
	o.failed++
	o.mu.Unlock()
	o.logger.Warn("event handler failed",
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Int64("took_us", durationMicros),
		log.Error(err),
	)
}

func (o *eventStats) count(eventType string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.byType[eventType]
}

func (o *eventStats) failures() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failed
}

// fields summarises the bus totals for the shutdown log
func (o *eventStats) fields(m bus.EventBusMetrics) []log.Field {
	o.mu.Lock()
	defer o.mu.Unlock()
	byType := make(map[string]uint64, len(o.byType))
	for k, v := range o.byType {
		byType[k] = v
	}
	return []log.Field{
		log.Uint64("events_published", m.Published),
		log.Uint64("events_delivered", m.DeliveredHandlers),
		log.Uint64("event_errors", m.Errors),
		log.Any("events_by_type", byType),
	}
}
