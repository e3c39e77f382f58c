package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/store"
	"github.com/yeremiapane/fieldservice-app/utils"
)

// RequestReader gives the gates read access to a request's persisted state
// within their own transaction. The row stays locked until that transaction
// ends.
type RequestReader interface {
	LoadRequest(tx *store.Tx, id string) (*models.ServiceRequest, error)
}

// Engine owns the service request state machine.
type Engine struct {
	deps
}

func NewEngine(st *store.Store, opts ...Option) *Engine {
	return &Engine{deps: newDeps(st, opts)}
}

type NewRequest struct {
	CustomerID    string
	ServiceID     string
	Description   string
	Location      models.Address
	ScheduledDate time.Time
}

func (e *Engine) LoadRequest(tx *store.Tx, id string) (*models.ServiceRequest, error) {
	r, err := tx.LockRequest(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, infra("failed to load request", err)
	}
	return r, nil
}

// CreateRequest opens a pending request priced at the offering's base price.
func (e *Engine) CreateRequest(ctx context.Context, in NewRequest) (*models.ServiceRequest, error) {
	var created *models.ServiceRequest
	err := e.run(ctx, "", func(tx *store.Tx) ([]Event, error) {
		offering, err := e.catalog.GetServiceOffering(tx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if !offering.IsActive {
			return nil, ErrServiceInactive.Withf("service offering %q is not active", offering.Name)
		}

		r := &models.ServiceRequest{
			Description:      strings.TrimSpace(in.Description),
			CustomerLocation: in.Location,
			Status:           models.RequestPending,
			TotalAmount:      offering.BasePrice,
			ScheduledDate:    in.ScheduledDate,
			CustomerID:       in.CustomerID,
			ServiceID:        offering.ID,
		}
		if err := tx.CreateRequest(r); err != nil {
			return nil, infra("failed to create request", err)
		}
		created = r
		return []Event{requestEvent(EventRequestCreated, r)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"request_id":  created.ID,
		"customer_id": created.CustomerID,
		"service_id":  created.ServiceID,
	}).Info("service request created")
	return created, nil
}

// AssignTechnician binds an active technician to a pending request and
// accepts it in the same write.
func (e *Engine) AssignTechnician(ctx context.Context, requestID, technicianID string) (*models.ServiceRequest, error) {
	var assigned *models.ServiceRequest
	err := e.run(ctx, requestID, func(tx *store.Tx) ([]Event, error) {
		r, err := e.LoadRequest(tx, requestID)
		if err != nil {
			return nil, err
		}

		actor, err := e.directory.GetActor(tx, technicianID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrInvalidTechnician.Withf("technician %s not found", technicianID)
		case err != nil:
			return nil, infra("failed to load technician", err)
		case !actor.IsTechnician():
			return nil, ErrInvalidTechnician.Withf("user %s is not a technician", technicianID)
		case !actor.IsActive:
			return nil, ErrInvalidTechnician.Withf("technician %s is not active", technicianID)
		}

		if r.Status != models.RequestPending {
			return nil, ErrInvalidTransition.Withf("cannot assign a technician to a %s request", r.Status)
		}

		techID := actor.ID
		r.TechnicianID = &techID
		r.Status = models.RequestAccepted
		if err := tx.SaveRequest(r); err != nil {
			return nil, infra("failed to assign technician", err)
		}
		assigned = r
		return []Event{requestEvent(EventTechnicianAssigned, r)}, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"request_id":    requestID,
		"technician_id": technicianID,
	}).Info("technician assigned")
	return assigned, nil
}

// TransitionStatus moves a request along one edge of the workflow graph.
// reason is required when cancelling or rejecting and ignored otherwise.
func (e *Engine) TransitionStatus(ctx context.Context, requestID string, target models.RequestStatus, reason string) (*models.ServiceRequest, error) {
	var updated *models.ServiceRequest
	var from models.RequestStatus
	err := e.run(ctx, requestID, func(tx *store.Tx) ([]Event, error) {
		r, err := e.LoadRequest(tx, requestID)
		if err != nil {
			return nil, err
		}
		if !target.Valid() {
			return nil, ErrInvalidStatus.Withf("unknown request status %q", target)
		}
		from = r.Status
		previousTech := r.AssignedTechnician()
		if !models.CanTransition(r.Status, target) {
			return nil, ErrInvalidTransition.Withf("cannot move request from %s to %s", r.Status, target)
		}

		now := e.timestamp()
		reason = strings.TrimSpace(reason)
		switch target {
		case models.RequestAccepted:
			if r.TechnicianID == nil {
				return nil, ErrTechnicianRequired
			}
		case models.RequestInProgress:
			if r.StartedAt == nil {
				r.StartedAt = &now
			}
		case models.RequestCompleted:
			if r.CompletedAt == nil {
				r.CompletedAt = &now
			}
		case models.RequestCancelled:
			if reason == "" {
				return nil, ErrReasonRequired.Withf("a cancellation reason is required")
			}
			r.CancellationReason = &reason
			r.TechnicianID = nil
		case models.RequestRejected:
			if reason == "" {
				return nil, ErrReasonRequired.Withf("a rejection reason is required")
			}
			r.RejectionReason = &reason
		}

		r.Status = target
		if err := tx.SaveRequest(r); err != nil {
			return nil, infra("failed to update request status", err)
		}
		changed := requestEvent(EventRequestStatusChanged, r)
		if changed.TechnicianID == "" {
			changed.TechnicianID = previousTech
		}
		events := []Event{changed}

		if !target.Payable() {
			failed, err := failPendingPayment(tx, r)
			if err != nil {
				return nil, err
			}
			if failed != nil {
				events = append(events, paymentEvent(EventPaymentStatusChanged, failed, r))
			}
		}

		updated = r
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"request_id": requestID,
		"from":       from,
		"to":         target,
	}).Info("service request status changed")
	return updated, nil
}

// failPendingPayment closes the pending payment of a request that was
// called off. Settled payments are left for a refund.
func failPendingPayment(tx *store.Tx, r *models.ServiceRequest) (*models.Payment, error) {
	p, err := tx.PaymentByRequest(r.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, infra("failed to load payment", err)
	}
	if p.Status != models.PaymentPending || p.IsRemoved() {
		return nil, nil
	}

	reason := "request " + string(r.Status)
	p.Status = models.PaymentFailed
	p.FailureReason = &reason
	if err := tx.SavePayment(p); err != nil {
		return nil, infra("failed to fail pending payment", err)
	}
	return p, nil
}

func (e *Engine) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	r, err := e.store.Read(ctx).RequestByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, infra("failed to load request", err)
	}
	return r, nil
}

type RequestFilter = store.RequestFilter

func (e *Engine) ListRequests(ctx context.Context, f RequestFilter) ([]models.ServiceRequest, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus.Withf("unknown request status %q", f.Status)
	}
	requests, err := e.store.Read(ctx).FindRequests(f)
	if err != nil {
		return nil, infra("failed to list requests", err)
	}
	return requests, nil
}

func requestEvent(kind string, r *models.ServiceRequest) Event {
	return Event{
		Type:         kind,
		RequestID:    r.ID,
		CustomerID:   r.CustomerID,
		TechnicianID: r.AssignedTechnician(),
		Status:       string(r.Status),
		Data:         *r,
	}
}
