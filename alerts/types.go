package alerts

import "time"

// Task type constants
const (
	TaskRequestStatus = "lifecycle:request_status"
	TaskPaymentStatus = "lifecycle:payment_status"
	TaskReviewPosted  = "lifecycle:review_posted"
)

const QueueAlerts = "alerts"

// LifecyclePayload is the body of every lifecycle alert task.
type LifecyclePayload struct {
	Event        string    `json:"event"`
	RequestID    string    `json:"request_id"`
	CustomerID   string    `json:"customer_id"`
	TechnicianID string    `json:"technician_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
