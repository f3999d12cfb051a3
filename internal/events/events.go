// Package events publishes domain notifications after a unit of work commits.
// Delivery is best effort: a failed publish never undoes the committed change.
package events

import (
	"context"
	"errors"
	"time"

	"go-inventory-pos/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	MovementSubmitted Type = "movement.submitted"
	MovementApproved  Type = "movement.approved"
	MovementRejected  Type = "movement.rejected"

	RequestSubmitted Type = "request.submitted"
	RequestApproved  Type = "request.approved"
	RequestRejected  Type = "request.rejected"

	SaleCompleted Type = "sale.completed"

	ReversalRequested Type = "reversal.requested"
	ReversalApproved  Type = "reversal.approved"
	ReversalRejected  Type = "reversal.rejected"
)

// NeedsOwner reports whether the event asks the owner for a decision.
func (t Type) NeedsOwner() bool {
	return t == MovementSubmitted || t == RequestSubmitted || t == ReversalRequested
}

// Event is the envelope written to every sink.
type Event struct {
	ID          string      `json:"event_id"`
	Type        Type        `json:"type"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Actor       model.Actor `json:"actor"`
	AggregateID uuid.UUID   `json:"aggregate_id"`
	Data        any         `json:"data"`
}

func New(t Type, actor model.Actor, aggregateID uuid.UUID, data any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		OccurredAt:  time.Now().UTC(),
		Actor:       actor,
		AggregateID: aggregateID,
		Data:        data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// Nop discards every event.
func Nop() Publisher { return nopPublisher{} }

// Fanout delivers to every sink and joins their errors.
type Fanout struct {
	sinks  []Publisher
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger, sinks ...Publisher) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sinks: sinks, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, evt); err != nil {
			f.logger.Warn("event sink failed",
				zap.String("event_id", evt.ID),
				zap.String("type", string(evt.Type)),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
