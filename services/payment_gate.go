package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/store"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// PaymentGate records payment state for service requests. It never moves
// money.
type PaymentGate struct {
	deps
	requests RequestReader
}

func NewPaymentGate(st *store.Store, requests RequestReader, opts ...Option) *PaymentGate {
	return &PaymentGate{deps: newDeps(st, opts), requests: requests}
}

type NewPayment struct {
	RequestID string
	Amount    decimal.Decimal
	Currency  string
	Method    string
	Gateway   *string
}

type PaymentUpdate struct {
	Status        string
	TransactionID *string
	FailureReason *string
}

// CreatePayment opens the single pending payment of a request. Cancelled and
// rejected requests are not payable; any other state may be paid up front.
func (g *PaymentGate) CreatePayment(ctx context.Context, in NewPayment) (*models.Payment, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	var created *models.Payment
	err := g.run(ctx, in.RequestID, func(tx *store.Tx) ([]Event, error) {
		r, err := g.requests.LoadRequest(tx, in.RequestID)
		if err != nil {
			return nil, err
		}

		_, err = tx.PaymentByRequest(r.ID)
		if err == nil {
			return nil, ErrPaymentAlreadyExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, infra("failed to check existing payment", err)
		}

		if !in.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		if len(currency) != 3 {
			return nil, ErrInvalidCurrency.Withf("invalid currency %q", currency)
		}
		if !r.Status.Payable() {
			return nil, ErrRequestNotPayable.Withf("request is %s and can no longer be paid", r.Status)
		}

		p := &models.Payment{
			Amount:         in.Amount,
			Currency:       currency,
			Status:         models.PaymentPending,
			PaymentMethod:  in.Method,
			PaymentGateway: in.Gateway,
			RequestID:      r.ID,
			CustomerID:     r.CustomerID,
		}
		if err := tx.CreatePayment(p); err != nil {
			if store.IsDuplicate(err) {
				return nil, ErrPaymentAlreadyExists
			}
			return nil, infra("failed to create payment", err)
		}
		created = p
		return []Event{paymentEvent(EventPaymentCreated, p, r)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"payment_id": created.ID,
		"request_id": created.RequestID,
		"amount":     created.Amount.StringFixed(2),
		"currency":   created.Currency,
	}).Info("payment created")
	return created, nil
}

// UpdatePaymentStatus records a status reported for the payment. PaidAt is
// stamped the first time the payment completes and never moves afterwards.
func (g *PaymentGate) UpdatePaymentStatus(ctx context.Context, paymentID string, in PaymentUpdate) (*models.Payment, error) {
	existing, err := g.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var updated *models.Payment
	err = g.run(ctx, existing.RequestID, func(tx *store.Tx) ([]Event, error) {
		r, err := g.requests.LoadRequest(tx, existing.RequestID)
		if err != nil {
			return nil, err
		}
		p, err := tx.LockPayment(paymentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		if err != nil {
			return nil, infra("failed to load payment", err)
		}

		status, ok := models.ParsePaymentStatus(in.Status)
		if !ok {
			return nil, ErrInvalidStatus.Withf("unknown payment status %q", in.Status)
		}
		if status == models.PaymentCompleted && !r.Status.Payable() {
			return nil, ErrRequestNotPayable.Withf("request is %s and can no longer be paid", r.Status)
		}

		p.Status = status
		if in.TransactionID != nil {
			p.TransactionID = in.TransactionID
		}
		if in.FailureReason != nil {
			p.FailureReason = in.FailureReason
		}
		if status == models.PaymentCompleted && p.PaidAt == nil {
			paidAt := g.timestamp()
			p.PaidAt = &paidAt
		}
		if err := tx.SavePayment(p); err != nil {
			return nil, infra("failed to update payment status", err)
		}
		updated = p
		return []Event{paymentEvent(EventPaymentStatusChanged, p, r)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"status":     updated.Status,
	}).Info("payment status updated")
	return updated, nil
}

func (g *PaymentGate) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p, err := g.store.Read(ctx).PaymentByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, infra("failed to load payment", err)
	}
	return p, nil
}

func (g *PaymentGate) GetPaymentByRequest(ctx context.Context, requestID string) (*models.Payment, error) {
	p, err := g.store.Read(ctx).PaymentByRequest(requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, infra("failed to load payment", err)
	}
	return p, nil
}

func (g *PaymentGate) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]models.Payment, error) {
	payments, err := g.store.Read(ctx).PaymentsByCustomer(customerID)
	if err != nil {
		return nil, infra("failed to list payments", err)
	}
	return payments, nil
}

func paymentEvent(kind string, p *models.Payment, r *models.ServiceRequest) Event {
	return Event{
		Type:         kind,
		RequestID:    p.RequestID,
		CustomerID:   p.CustomerID,
		TechnicianID: r.AssignedTechnician(),
		Status:       string(p.Status),
		Data:         *p,
	}
}
