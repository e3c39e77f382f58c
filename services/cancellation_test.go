package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/fieldservice-app/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// cancelAfterFirstUpdate cancels ctx as soon as the first UPDATE of the
// fixture database has run, leaving the rest of the transaction to fail.
func (f *fixture) cancelAfterFirstUpdate(t *testing.T, cancel context.CancelFunc) {
	t.Helper()
	var once sync.Once
	err := f.db.Callback().Update().After("gorm:update").Register("test:cancel_after_update", func(*gorm.DB) {
		once.Do(cancel)
	})
	require.NoError(t, err)
}

func TestCancelledContextRollsBackTransition(t *testing.T) {
	f := newFixture(t)
	r := f.requestIn(t, models.RequestAccepted)
	p, err := f.payments.CreatePayment(context.Background(), NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
	require.NoError(t, err)
	published := len(f.events.types())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.cancelAfterFirstUpdate(t, cancel)

	_, err = f.engine.TransitionStatus(ctx, r.ID, models.RequestCancelled, "customer left")
	require.Error(t, err)
	assert.Equal(t, KindInfra, KindOf(err))

	// request dan payment tetap seperti sebelum transaksi
	stored, err := f.engine.GetRequest(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, stored.Status)
	require.NotNil(t, stored.TechnicianID)
	assert.Equal(t, f.technician.ID, *stored.TechnicianID)
	assert.Nil(t, stored.CancellationReason)

	payment, err := f.payments.GetPayment(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Nil(t, payment.FailureReason)

	assert.Len(t, f.events.types(), published)
}

func TestCancelledContextBeforeLockWritesNothing(t *testing.T) {
	f := newFixture(t)
	r := f.requestIn(t, models.RequestCompleted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.reviews.CreateReview(ctx, NewReview{RequestID: r.ID, Rating: 5})
	assert.ErrorIs(t, err, context.Canceled)

	var payments, reviews int64
	require.NoError(t, f.db.Model(&models.Payment{}).Where("request_id = ?", r.ID).Count(&payments).Error)
	require.NoError(t, f.db.Model(&models.Review{}).Where("request_id = ?", r.ID).Count(&reviews).Error)
	assert.Zero(t, payments)
	assert.Zero(t, reviews)
}

func TestConcurrentCreateReviewAdmitsOne(t *testing.T) {
	f := newFixture(t)
	r := f.requestIn(t, models.RequestCompleted)

	var succeeded, duplicates int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 2; i++ {
		rating := 4 + i
		g.Go(func() error {
			_, err := f.reviews.CreateReview(ctx, NewReview{RequestID: r.ID, Rating: rating})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case assert.ErrorIs(t, err, ErrReviewAlreadyExists):
				atomic.AddInt32(&duplicates, 1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(1), duplicates)

	var n int64
	require.NoError(t, f.db.Model(&models.Review{}).Where("request_id = ?", r.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
