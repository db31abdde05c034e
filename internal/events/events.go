package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lgrosz/climb-catalog/internal/domain/changelog"
	"github.com/lgrosz/climb-catalog/internal/observability"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

// Event is a committed change as seen by downstream consumers.
type Event struct {
	ID         int64           `json:"id"`
	EntityKind string          `json:"entity_kind"`
	EntityID   int64           `json:"entity_id"`
	Action     string          `json:"action"`
	Actor      string          `json:"actor"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	At         time.Time       `json:"at"`
}

func FromChange(c *changelog.Change) Event {
	return Event{
		ID:         c.ID,
		EntityKind: c.EntityKind,
		EntityID:   c.EntityID,
		Action:     c.Action,
		Actor:      c.Actor,
		Payload:    json.RawMessage(c.Payload),
		At:         c.CreatedAt.UTC(),
	}
}

func FromChanges(changes []*changelog.Change) []Event {
	out := make([]Event, 0, len(changes))
	for _, c := range changes {
		if c != nil {
			out = append(out, FromChange(c))
		}
	}
	return out
}

func (e Event) DecodePayload() (changelog.Payload, error) {
	return changelog.DecodePayload(e.Payload)
}

// Publisher receives events after their transaction commits.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, evs []Event) error
}

type noop struct{}

func (noop) Name() string                           { return "noop" }
func (noop) Publish(context.Context, []Event) error { return nil }

func Noop() Publisher { return noop{} }

// Fanout hands every batch to each publisher in order. A failing publisher
// does not stop the others.
type Fanout struct {
	publishers []Publisher
	log        *logger.Logger
	metrics    *observability.Metrics
}

func NewFanout(log *logger.Logger, metrics *observability.Metrics, publishers ...Publisher) *Fanout {
	kept := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Fanout{publishers: kept, log: log.With("component", "EventFanout"), metrics: metrics}
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

func (f *Fanout) Publish(ctx context.Context, evs []Event) error {
	if f == nil || len(evs) == 0 {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, evs); err != nil {
			f.metrics.IncPublish(p.Name(), "error")
			f.log.Warn("publish change events failed", "publisher", p.Name(), "count", len(evs), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		f.metrics.IncPublish(p.Name(), "ok")
	}
	return errors.Join(errs...)
}
