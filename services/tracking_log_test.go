package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/fieldservice-app/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestAppendEventAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.requestIn(t, models.RequestInProgress)

	first, err := f.tracking.AppendEvent(ctx, r.ID, NewTrackingEvent{
		Status:    "On the way",
		Latitude:  floatPtr(40.7128),
		Longitude: floatPtr(-74.0060),
	})
	require.NoError(t, err)
	require.NotNil(t, first.Location())
	assert.InDelta(t, 40.7128, first.Location().Latitude, 1e-9)

	f.clock.Advance(15 * time.Minute)
	second, err := f.tracking.AppendEvent(ctx, r.ID, NewTrackingEvent{Status: "Arrived", Notes: strPtr("Parked out front")})
	require.NoError(t, err)
	assert.Nil(t, second.Location())

	history, err := f.tracking.GetHistory(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Arrived", history[0].Status)
	assert.Equal(t, "On the way", history[1].Status)

	latest, err := f.tracking.GetLatest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestAppendEventLocationNeedsBothCoordinates(t *testing.T) {
	f := newFixture(t)
	r := f.newRequest(t)

	ev, err := f.tracking.AppendEvent(context.Background(), r.ID, NewTrackingEvent{Status: "Dispatched", Latitude: floatPtr(10)})
	require.NoError(t, err)
	assert.Nil(t, ev.Latitude)
	assert.Nil(t, ev.Longitude)
}

func TestAppendEventValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.newRequest(t)

	tests := []struct {
		name      string
		requestID string
		in        NewTrackingEvent
		wantErr   error
	}{
		{"unknown request", "missing", NewTrackingEvent{Status: "x"}, ErrRequestNotFound},
		{"blank label", r.ID, NewTrackingEvent{Status: "  "}, ErrInvalidTrackingEvent},
		{"latitude out of range", r.ID, NewTrackingEvent{Status: "x", Latitude: floatPtr(91), Longitude: floatPtr(0)}, ErrInvalidTrackingEvent},
		{"longitude out of range", r.ID, NewTrackingEvent{Status: "x", Latitude: floatPtr(0), Longitude: floatPtr(-200)}, ErrInvalidTrackingEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tracking.AppendEvent(ctx, tt.requestID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHistoryOfUnknownRequestIsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	history, err := f.tracking.GetHistory(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.tracking.GetLatest(ctx, "missing")
	assert.ErrorIs(t, err, ErrTrackingNotFound)
}

func TestHistoryOrderWithEqualTimestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.requestIn(t, models.RequestInProgress)

	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, label := range labels {
		_, err := f.tracking.AppendEvent(ctx, r.ID, NewTrackingEvent{Status: label})
		require.NoError(t, err)
	}

	history, err := f.tracking.GetHistory(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, history, len(labels))
	for i, ev := range history {
		assert.Equal(t, labels[len(labels)-1-i], ev.Status)
		assert.Equal(t, int64(len(labels)-i), ev.Seq)
	}

	latest, err := f.tracking.GetLatest(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "h", latest.Status)
}
