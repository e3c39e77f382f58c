package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/fieldservice-app/models"
)

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.newRequest(t)

	// a review is refused before the work is done
	_, err := f.reviews.CreateReview(ctx, NewReview{RequestID: r.ID, Rating: 5})
	require.ErrorIs(t, err, ErrRequestNotCompleted)

	r, err = f.engine.AssignTechnician(ctx, r.ID, f.technician.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	r, err = f.engine.TransitionStatus(ctx, r.ID, models.RequestInProgress, "")
	require.NoError(t, err)
	_, err = f.tracking.AppendEvent(ctx, r.ID, NewTrackingEvent{Status: "Work started"})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	r, err = f.engine.TransitionStatus(ctx, r.ID, models.RequestCompleted, "")
	require.NoError(t, err)
	require.NotNil(t, r.StartedAt)
	require.NotNil(t, r.CompletedAt)
	assert.False(t, r.CompletedAt.Before(*r.StartedAt))

	p, err := f.payments.CreatePayment(ctx, NewPayment{RequestID: r.ID, Amount: r.TotalAmount, Method: "card"})
	require.NoError(t, err)
	p, err = f.payments.UpdatePaymentStatus(ctx, p.ID, PaymentUpdate{Status: "completed"})
	require.NoError(t, err)
	assert.NotNil(t, p.PaidAt)

	review, err := f.reviews.CreateReview(ctx, NewReview{RequestID: r.ID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, f.technician.ID, review.TechnicianID)

	assert.Equal(t, []string{
		EventRequestCreated,
		EventTechnicianAssigned,
		EventRequestStatusChanged,
		EventTrackingAppended,
		EventRequestStatusChanged,
		EventPaymentCreated,
		EventPaymentStatusChanged,
		EventReviewCreated,
	}, f.events.types())

	stats, err := f.dashboard.AdminStats(ctx)
	require.NoError(t, err)
	assert.True(t, r.TotalAmount.Equal(stats.TotalRevenue))
	assert.Equal(t, 5.0, stats.AverageRating)
}
