package alerts

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer turns committed lifecycle events into background alert tasks.
type Enqueuer struct {
	client taskClient
}

func NewEnqueuer(client taskClient) *Enqueuer {
	return &Enqueuer{client: client}
}

// taskType picks the alert task for an event. Events nobody is alerted
// about return false.
func taskType(ev services.Event) (string, bool) {
	switch ev.Type {
	case services.EventTechnicianAssigned, services.EventRequestStatusChanged:
		return TaskRequestStatus, true
	case services.EventPaymentStatusChanged:
		return TaskPaymentStatus, true
	case services.EventReviewCreated:
		return TaskReviewPosted, true
	default:
		return "", false
	}
}

func (e *Enqueuer) Notify(ctx context.Context, ev services.Event) {
	kind, ok := taskType(ev)
	if !ok {
		return
	}

	payload := LifecyclePayload{
		Event:        ev.Type,
		RequestID:    ev.RequestID,
		CustomerID:   ev.CustomerID,
		TechnicianID: ev.TechnicianID,
		Status:       ev.Status,
		OccurredAt:   ev.OccurredAt,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling alert payload: %v", err)
		return
	}

	task := asynq.NewTask(kind, b)
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueAlerts), asynq.MaxRetry(5)); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"task":       kind,
			"request_id": ev.RequestID,
		}).Errorf("failed to enqueue alert: %v", err)
	}
}
