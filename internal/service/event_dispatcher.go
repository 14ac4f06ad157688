package service

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	q "github.com/iliyamo/service-b/internal/queue"
)

// Publisher is satisfied by EventPublisher.
type Publisher interface {
	Publish(ctx context.Context, ev q.APIRequestEvent) error
}

// EventDispatcher decouples request handling from the broker. Enqueue never
// blocks; one worker drains a bounded buffer and publishes each event with
// its own timeout. When the buffer is full the event is dropped.
type EventDispatcher struct {
	pub     Publisher
	events  chan q.APIRequestEvent
	timeout time.Duration
	dropped atomic.Uint64
}

func NewEventDispatcher(pub Publisher, buffer int, timeout time.Duration) *EventDispatcher {
	return &EventDispatcher{
		pub:     pub,
		events:  make(chan q.APIRequestEvent, max(buffer, 1)),
		timeout: timeout,
	}
}

// Enqueue hands ev to the worker and reports whether it was accepted.
func (d *EventDispatcher) Enqueue(ev q.APIRequestEvent) bool {
	select {
	case d.events <- ev:
		return true
	default:
		if n := d.dropped.Add(1); n == 1 || n%1000 == 0 {
			log.Printf("events: buffer full, %d event(s) dropped so far", n)
		}
		return false
	}
}

// Dropped returns the number of events rejected by Enqueue.
func (d *EventDispatcher) Dropped() uint64 { return d.dropped.Load() }

// Run publishes queued events until ctx is cancelled. Events still buffered
// at that point are discarded.
func (d *EventDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			pctx, cancel := context.WithTimeout(ctx, d.timeout)
			if err := d.pub.Publish(pctx, ev); err != nil {
				log.Printf("events: publish %s %s: %v", ev.Method, ev.Path, err)
			}
			cancel()
		}
	}
}
