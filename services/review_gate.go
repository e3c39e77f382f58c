package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/store"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// ReviewGate admits one review per completed request.
type ReviewGate struct {
	deps
	requests RequestReader
}

func NewReviewGate(st *store.Store, requests RequestReader, opts ...Option) *ReviewGate {
	return &ReviewGate{deps: newDeps(st, opts), requests: requests}
}

type NewReview struct {
	RequestID string
	Rating    int
	Comment   *string
}

type ReviewUpdate struct {
	Rating   int
	Comment  *string
	IsPublic bool
}

func (g *ReviewGate) CreateReview(ctx context.Context, in NewReview) (*models.Review, error) {
	var created *models.Review
	err := g.run(ctx, in.RequestID, func(tx *store.Tx) ([]Event, error) {
		r, err := g.requests.LoadRequest(tx, in.RequestID)
		if err != nil {
			return nil, err
		}
		if r.Status != models.RequestCompleted {
			return nil, ErrRequestNotCompleted.Withf("request is %s, reviews open once it is completed", r.Status)
		}

		taken, err := tx.ReviewSlotTaken(r.ID)
		if err != nil {
			return nil, infra("failed to check existing review", err)
		}
		if taken {
			return nil, ErrReviewAlreadyExists
		}
		if !models.ValidRating(in.Rating) {
			return nil, ErrInvalidRating
		}

		review := &models.Review{
			Rating:       in.Rating,
			Comment:      in.Comment,
			IsPublic:     true,
			RequestID:    r.ID,
			CustomerID:   r.CustomerID,
			TechnicianID: r.AssignedTechnician(),
		}
		if err := tx.CreateReview(review); err != nil {
			if store.IsDuplicate(err) {
				return nil, ErrReviewAlreadyExists
			}
			return nil, infra("failed to create review", err)
		}
		created = review
		return []Event{reviewEvent(EventReviewCreated, review)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"review_id":  created.ID,
		"request_id": created.RequestID,
		"rating":     created.Rating,
	}).Info("review created")
	return created, nil
}

// UpdateReview overwrites rating, comment and visibility. The request is not
// re-checked.
func (g *ReviewGate) UpdateReview(ctx context.Context, reviewID string, in ReviewUpdate) (*models.Review, error) {
	existing, err := g.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var updated *models.Review
	err = g.run(ctx, existing.RequestID, func(tx *store.Tx) ([]Event, error) {
		review, err := lockReview(tx, reviewID)
		if err != nil {
			return nil, err
		}
		if !models.ValidRating(in.Rating) {
			return nil, ErrInvalidRating
		}

		review.Rating = in.Rating
		review.Comment = in.Comment
		review.IsPublic = in.IsPublic
		if err := tx.SaveReview(review); err != nil {
			return nil, infra("failed to update review", err)
		}
		updated = review
		return []Event{reviewEvent(EventReviewUpdated, review)}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReview tombstones the review. The request keeps its review slot.
func (g *ReviewGate) DeleteReview(ctx context.Context, reviewID string) error {
	existing, err := g.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}

	return g.run(ctx, existing.RequestID, func(tx *store.Tx) ([]Event, error) {
		review, err := lockReview(tx, reviewID)
		if err != nil {
			return nil, err
		}
		if err := tx.RemoveReview(review); err != nil {
			return nil, infra("failed to delete review", err)
		}
		return []Event{reviewEvent(EventReviewDeleted, review)}, nil
	})
}

func lockReview(tx *store.Tx, id string) (*models.Review, error) {
	review, err := tx.LockReview(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, infra("failed to load review", err)
	}
	return review, nil
}

func (g *ReviewGate) GetReview(ctx context.Context, id string) (*models.Review, error) {
	review, err := g.store.Read(ctx).ReviewByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, infra("failed to load review", err)
	}
	return review, nil
}

func (g *ReviewGate) GetReviewByRequest(ctx context.Context, requestID string) (*models.Review, error) {
	review, err := g.store.Read(ctx).ReviewByRequest(requestID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, infra("failed to load review", err)
	}
	return review, nil
}

type ReviewFilter = store.ReviewFilter

func (g *ReviewGate) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error) {
	reviews, err := g.store.Read(ctx).FindReviews(f)
	if err != nil {
		return nil, infra("failed to list reviews", err)
	}
	return reviews, nil
}

func reviewEvent(kind string, r *models.Review) Event {
	return Event{
		Type:         kind,
		RequestID:    r.RequestID,
		CustomerID:   r.CustomerID,
		TechnicianID: r.TechnicianID,
		Data:         *r,
	}
}
