package services

import (
	"context"
	"time"
)

// Event types published after a lifecycle operation commits.
const (
	EventRequestCreated       = "request_created"
	EventTechnicianAssigned   = "technician_assigned"
	EventRequestStatusChanged = "request_status_changed"
	EventPaymentCreated       = "payment_created"
	EventPaymentStatusChanged = "payment_status_changed"
	EventReviewCreated        = "review_created"
	EventReviewUpdated        = "review_updated"
	EventReviewDeleted        = "review_deleted"
	EventTrackingAppended     = "tracking_appended"
)

type Event struct {
	Type         string      `json:"event"`
	RequestID    string      `json:"request_id"`
	CustomerID   string      `json:"customer_id,omitempty"`
	TechnicianID string      `json:"technician_id,omitempty"`
	Status       string      `json:"status,omitempty"`
	Data         interface{} `json:"data"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// Notifier receives committed lifecycle events. Delivery is best effort:
// a notifier must not block for long and cannot fail the operation.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, ev Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(ctx, ev)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}
