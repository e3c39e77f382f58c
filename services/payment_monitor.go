package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/fieldservice-app/models"
)

// PaymentMetrics menyimpan metrik pembayaran sejak proses berjalan
type PaymentMetrics struct {
	TotalTransactions  int64      `json:"total_transactions"`
	SuccessfulPayments int64      `json:"successful_payments"`
	FailedPayments     int64      `json:"failed_payments"`
	RefundedPayments   int64      `json:"refunded_payments"`
	LastEventAt        *time.Time `json:"last_event_at,omitempty"`
}

// PaymentMonitor menghitung event pembayaran yang sudah commit. Dipasang
// sebagai Notifier di samping hub dan alerts.
type PaymentMonitor struct {
	metrics PaymentMetrics
	mutex   sync.Mutex
}

func NewPaymentMonitor() *PaymentMonitor {
	return &PaymentMonitor{}
}

func (pm *PaymentMonitor) Notify(_ context.Context, ev Event) {
	switch ev.Type {
	case EventPaymentCreated, EventPaymentStatusChanged:
	default:
		return
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if ev.Type == EventPaymentCreated {
		pm.metrics.TotalTransactions++
	}
	switch models.PaymentStatus(ev.Status) {
	case models.PaymentCompleted:
		pm.metrics.SuccessfulPayments++
	case models.PaymentFailed:
		pm.metrics.FailedPayments++
	case models.PaymentRefunded:
		pm.metrics.RefundedPayments++
	}
	at := ev.OccurredAt
	pm.metrics.LastEventAt = &at
}

// GetMetrics mengembalikan salinan metrik saat ini
func (pm *PaymentMonitor) GetMetrics() PaymentMetrics {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	out := pm.metrics
	if out.LastEventAt != nil {
		at := *out.LastEventAt
		out.LastEventAt = &at
	}
	return out
}
