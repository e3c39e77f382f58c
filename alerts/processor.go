package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// NewClient returns the asynq client used by the Enqueuer.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db})
}

// NewServeMux registers the lifecycle alert handlers.
func NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRequestStatus, handleRequestStatus)
	mux.HandleFunc(TaskPaymentStatus, handlePaymentStatus)
	mux.HandleFunc(TaskReviewPosted, handleReviewPosted)
	return mux
}

// StartWorker runs the asynq server in the background. Call Shutdown on the
// returned server to stop it.
func StartWorker(redisAddr, password string, db int) *asynq.Server {
	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db}, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueAlerts: 1,
		},
	})
	go func() {
		if err := server.Run(NewServeMux()); err != nil {
			utils.ErrorLogger.Printf("Asynq server stopped: %v", err)
		}
	}()

	utils.InfoLogger.Printf("Asynq worker initialized (addr=%s)", redisAddr)
	return server
}

func decode(t *asynq.Task) (LifecyclePayload, error) {
	var p LifecyclePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if p.RequestID == "" {
		return p, fmt.Errorf("%s payload without request id: %w", t.Type(), asynq.SkipRetry)
	}
	return p, nil
}

func fields(p LifecyclePayload) logrus.Fields {
	return logrus.Fields{
		"request_id":    p.RequestID,
		"customer_id":   p.CustomerID,
		"technician_id": p.TechnicianID,
		"status":        p.Status,
	}
}

// Handlers currently log; delivery channels plug in here.
func handleRequestStatus(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	utils.InfoLogger.WithFields(fields(p)).Infof("alert: request %s", p.Event)
	return nil
}

func handlePaymentStatus(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	utils.InfoLogger.WithFields(fields(p)).Info("alert: payment status changed")
	return nil
}

func handleReviewPosted(ctx context.Context, t *asynq.Task) error {
	p, err := decode(t)
	if err != nil {
		return err
	}
	utils.InfoLogger.WithFields(fields(p)).Info("alert: review posted")
	return nil
}
