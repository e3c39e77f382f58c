package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

const DefaultCurrency = "USD"

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch status := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return status, true
	default:
		return status, false
	}
}

// Payment records the payment state of a service request. At most one
// payment exists per request.
type Payment struct {
	Base
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status         PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod  string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentGateway *string         `gorm:"type:varchar(50)" json:"payment_gateway,omitempty"`
	TransactionID  *string         `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`
	FailureReason  *string         `gorm:"type:text" json:"failure_reason,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	RequestID      string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"request_id"`
	CustomerID     string          `gorm:"type:varchar(36);not null;index" json:"customer_id"`
}
