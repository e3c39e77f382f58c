package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/store"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// TrackingLog is the append-only progress trail of a request.
type TrackingLog struct {
	deps
	requests RequestReader
}

func NewTrackingLog(st *store.Store, requests RequestReader, opts ...Option) *TrackingLog {
	return &TrackingLog{deps: newDeps(st, opts), requests: requests}
}

type NewTrackingEvent struct {
	Status string
	Notes  *string
	// Location is kept only when both coordinates were reported.
	Latitude  *float64
	Longitude *float64
}

func (l *TrackingLog) AppendEvent(ctx context.Context, requestID string, in NewTrackingEvent) (*models.TrackingEvent, error) {
	var appended *models.TrackingEvent
	err := l.run(ctx, requestID, func(tx *store.Tx) ([]Event, error) {
		r, err := l.requests.LoadRequest(tx, requestID)
		if err != nil {
			return nil, err
		}

		label := strings.TrimSpace(in.Status)
		if label == "" {
			return nil, ErrInvalidTrackingEvent.Withf("tracking status is required")
		}

		ev := &models.TrackingEvent{
			Status:    label,
			Notes:     in.Notes,
			RequestID: r.ID,
		}
		if in.Latitude != nil && in.Longitude != nil {
			loc := models.GeoLocation{Latitude: *in.Latitude, Longitude: *in.Longitude}
			if !loc.Valid() {
				return nil, ErrInvalidTrackingEvent.Withf("location %.6f,%.6f is out of range", loc.Latitude, loc.Longitude)
			}
			ev.SetLocation(&loc)
		}
		seq, err := tx.NextTrackingSeq(r.ID)
		if err != nil {
			return nil, infra("failed to number tracking event", err)
		}
		ev.Seq = seq
		ev.CreatedAt = l.timestamp()

		if err := tx.CreateTrackingEvent(ev); err != nil {
			return nil, infra("failed to append tracking event", err)
		}
		appended = ev
		return []Event{{
			Type:         EventTrackingAppended,
			RequestID:    r.ID,
			CustomerID:   r.CustomerID,
			TechnicianID: r.AssignedTechnician(),
			Status:       label,
			Data:         *ev,
		}}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("request_id", requestID).WithField("status", appended.Status).Info("tracking event appended")
	return appended, nil
}

// GetHistory lists the request's events newest first. Unknown requests have
// an empty history.
func (l *TrackingLog) GetHistory(ctx context.Context, requestID string) ([]models.TrackingEvent, error) {
	events, err := l.store.Read(ctx).TrackingHistory(requestID)
	if err != nil {
		return nil, infra("failed to load tracking history", err)
	}
	return events, nil
}

func (l *TrackingLog) GetLatest(ctx context.Context, requestID string) (*models.TrackingEvent, error) {
	ev, err := l.store.Read(ctx).LatestTrackingEvent(requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTrackingNotFound
	}
	if err != nil {
		return nil, infra("failed to load latest tracking event", err)
	}
	return ev, nil
}
