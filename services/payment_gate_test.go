package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/fieldservice-app/models"
	"golang.org/x/sync/errgroup"
)

func strPtr(s string) *string { return &s }

func TestCreatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.newRequest(t)

	p, err := f.payments.CreatePayment(ctx, NewPayment{
		RequestID: r.ID,
		Amount:    decimal.RequireFromString("120.50"),
		Method:    "card",
		Gateway:   strPtr("stripe"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, f.customer.ID, p.CustomerID)
	assert.Nil(t, p.PaidAt)

	byRequest, err := f.payments.GetPaymentByRequest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byRequest.ID)

	_, err = f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: decimal.NewFromInt(10), Method: "cash"})
	assert.ErrorIs(t, err, ErrPaymentAlreadyExists)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.newRequest(t)
	cancelled := f.requestIn(t, models.RequestCancelled)
	rejected := f.requestIn(t, models.RequestRejected)

	tests := []struct {
		name    string
		in      NewPayment
		wantErr error
	}{
		{"unknown request", NewPayment{RequestID: "missing", Amount: decimal.NewFromInt(5)}, ErrRequestNotFound},
		{"zero amount", NewPayment{RequestID: pending.ID, Amount: decimal.Zero}, ErrInvalidAmount},
		{"negative amount", NewPayment{RequestID: pending.ID, Amount: decimal.NewFromInt(-3)}, ErrInvalidAmount},
		{"bad currency", NewPayment{RequestID: pending.ID, Amount: decimal.NewFromInt(5), Currency: "euro"}, ErrInvalidCurrency},
		{"cancelled request", NewPayment{RequestID: cancelled.ID, Amount: decimal.NewFromInt(5)}, ErrRequestNotPayable},
		{"rejected request", NewPayment{RequestID: rejected.ID, Amount: decimal.NewFromInt(5)}, ErrRequestNotPayable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.CreatePayment(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreatePaymentLowercaseCurrency(t *testing.T) {
	f := newFixture(t)
	r := f.newRequest(t)

	p, err := f.payments.CreatePayment(context.Background(), NewPayment{RequestID: r.ID, Amount: decimal.NewFromInt(5), Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
}

func TestConcurrentCreatePaymentAdmitsOne(t *testing.T) {
	f := newFixture(t)
	r := f.requestIn(t, models.RequestCompleted)

	var succeeded, duplicates int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case assert.ErrorIs(t, err, ErrPaymentAlreadyExists):
				atomic.AddInt32(&duplicates, 1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(1), duplicates)

	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Where("request_id = ?", r.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUpdatePaymentStatusSetsPaidAtOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.requestIn(t, models.RequestCompleted)
	p, err := f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
	require.NoError(t, err)

	completed, err := f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "completed", TransactionID: strPtr("txn_123")})
	require.NoError(t, err)
	require.NotNil(t, completed.PaidAt)
	paidAt := *completed.PaidAt
	assert.True(t, f.clock.Now().Equal(paidAt))
	assert.Equal(t, "txn_123", *completed.TransactionID)

	f.clock.Advance(time.Hour)
	_, err = f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "refunded"})
	require.NoError(t, err)
	again, err := f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "COMPLETED"})
	require.NoError(t, err)

	require.NotNil(t, again.PaidAt)
	assert.True(t, paidAt.Equal(*again.PaidAt))
	assert.Equal(t, "txn_123", *again.TransactionID)
}

func TestUpdatePaymentStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.requestIn(t, models.RequestAccepted)
	p, err := f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
	require.NoError(t, err)

	_, err = f.payments.UpdatePaymentStatus(ctx, "missing", PaymentUpdate{Status: "completed"})
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "settled"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	failed, err := f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "failed", FailureReason: strPtr("card declined")})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.Status)
	assert.Nil(t, failed.PaidAt)

	_, err = f.engine.TransitionStatus(ctx, r.ID, models.RequestCancelled, "customer left")
	require.NoError(t, err)
	_, err = f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "completed"})
	assert.ErrorIs(t, err, ErrRequestNotPayable)
}

func TestListPaymentsByCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		r := f.newRequest(t)
		_, err := f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
		require.NoError(t, err)
	}

	payments, err := f.payments.ListPaymentsByCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	none, err := f.payments.ListPaymentsByCustomer(ctx, f.technician.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
