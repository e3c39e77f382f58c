package store

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/fieldservice-app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx is the handle passed to every helper taking part in an operation.
// Inside Store.Transaction it is bound to the open transaction.
type Tx struct {
	db *gorm.DB
}

// DB exposes the underlying gorm handle for ad-hoc queries.
func (t *Tx) DB() *gorm.DB {
	return t.db
}

func (t *Tx) forUpdate() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *Tx) create(value interface{}) error {
	return translate(t.db.Create(value).Error)
}

func (t *Tx) save(value interface{}) error {
	return translate(t.db.Save(value).Error)
}

// ---- service requests ----

type RequestFilter struct {
	CustomerID   string
	TechnicianID string
	Status       models.RequestStatus
}

func (f RequestFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CustomerID != "" {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.TechnicianID != "" {
		db = db.Where("technician_id = ?", f.TechnicianID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

// LockRequest loads the request row and holds it for the rest of the
// transaction where the dialect supports row locks.
func (t *Tx) LockRequest(id string) (*models.ServiceRequest, error) {
	var r models.ServiceRequest
	if err := t.forUpdate().Where("id = ?", id).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (t *Tx) RequestByID(id string) (*models.ServiceRequest, error) {
	var r models.ServiceRequest
	if err := t.db.Where("id = ?", id).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (t *Tx) CreateRequest(r *models.ServiceRequest) error {
	return t.create(r)
}

func (t *Tx) SaveRequest(r *models.ServiceRequest) error {
	return t.save(r)
}

func (t *Tx) FindRequests(f RequestFilter) ([]models.ServiceRequest, error) {
	requests := make([]models.ServiceRequest, 0)
	err := f.apply(t.db.Model(&models.ServiceRequest{})).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, translate(err)
}

type StatusCount struct {
	Status models.RequestStatus
	Total  int64
}

// CountRequestsByStatus returns the number of live requests per status.
func (t *Tx) CountRequestsByStatus(f RequestFilter) (map[models.RequestStatus]int64, error) {
	var rows []StatusCount
	err := f.apply(t.db.Model(&models.ServiceRequest{})).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	counts := make(map[models.RequestStatus]int64, len(models.RequestStatuses))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// ---- payments ----

func (t *Tx) PaymentByID(id string) (*models.Payment, error) {
	var p models.Payment
	if err := t.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (t *Tx) LockPayment(id string) (*models.Payment, error) {
	var p models.Payment
	if err := t.forUpdate().Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// PaymentByRequest ignores tombstones: a request's payment slot stays taken.
func (t *Tx) PaymentByRequest(requestID string) (*models.Payment, error) {
	var p models.Payment
	if err := t.db.Unscoped().Where("request_id = ?", requestID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (t *Tx) PaymentsByCustomer(customerID string) ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	err := t.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&payments).Error
	return payments, translate(err)
}

func (t *Tx) CreatePayment(p *models.Payment) error {
	return t.create(p)
}

func (t *Tx) SavePayment(p *models.Payment) error {
	return t.save(p)
}

type PaymentScope struct {
	CustomerID   string
	TechnicianID string
	// OnlyCompletedRequests restricts the scan to payments whose request
	// reached the completed state.
	OnlyCompletedRequests bool
}

// CompletedPaymentAmounts returns the amount of every completed payment in
// scope. Callers sum them with decimal arithmetic.
func (t *Tx) CompletedPaymentAmounts(scope PaymentScope) ([]decimal.Decimal, error) {
	q := t.db.Model(&models.Payment{}).
		Joins("JOIN service_requests ON service_requests.id = payments.request_id AND service_requests.deleted_at IS NULL").
		Where("payments.status = ?", models.PaymentCompleted)
	if scope.OnlyCompletedRequests {
		q = q.Where("service_requests.status = ?", models.RequestCompleted)
	}
	if scope.CustomerID != "" {
		q = q.Where("payments.customer_id = ?", scope.CustomerID)
	}
	if scope.TechnicianID != "" {
		q = q.Where("service_requests.technician_id = ?", scope.TechnicianID)
	}

	var rows []struct {
		Amount decimal.Decimal
	}
	if err := q.Select("payments.amount AS amount").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to scan payment amounts: %w", err)
	}

	amounts := make([]decimal.Decimal, len(rows))
	for i, row := range rows {
		amounts[i] = row.Amount
	}
	return amounts, nil
}

// ---- reviews ----

func (t *Tx) ReviewByID(id string) (*models.Review, error) {
	var r models.Review
	if err := t.db.Where("id = ?", id).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (t *Tx) LockReview(id string) (*models.Review, error) {
	var r models.Review
	if err := t.forUpdate().Where("id = ?", id).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// ReviewSlotTaken reports whether any review, removed or not, was ever
// written for the request.
func (t *Tx) ReviewSlotTaken(requestID string) (bool, error) {
	var n int64
	err := t.db.Unscoped().Model(&models.Review{}).Where("request_id = ?", requestID).Count(&n).Error
	return n > 0, translate(err)
}

func (t *Tx) ReviewByRequest(requestID string) (*models.Review, error) {
	var r models.Review
	if err := t.db.Where("request_id = ?", requestID).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

type ReviewFilter struct {
	CustomerID   string
	TechnicianID string
	PublicOnly   bool
}

func (f ReviewFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CustomerID != "" {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.TechnicianID != "" {
		db = db.Where("technician_id = ?", f.TechnicianID)
	}
	if f.PublicOnly {
		db = db.Where("is_public = ?", true)
	}
	return db
}

func (t *Tx) FindReviews(f ReviewFilter) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := f.apply(t.db.Model(&models.Review{})).Order("created_at DESC").Find(&reviews).Error
	return reviews, translate(err)
}

func (t *Tx) CreateReview(r *models.Review) error {
	return t.create(r)
}

func (t *Tx) SaveReview(r *models.Review) error {
	return t.save(r)
}

// RemoveReview tombstones the review.
func (t *Tx) RemoveReview(r *models.Review) error {
	return translate(t.db.Delete(r).Error)
}

type RatingSummary struct {
	Average float64
	Count   int64
}

func (t *Tx) RatingSummary(f ReviewFilter) (RatingSummary, error) {
	var s RatingSummary
	err := f.apply(t.db.Model(&models.Review{})).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&s).Error
	return s, translate(err)
}

// ---- tracking ----

func (t *Tx) CreateTrackingEvent(e *models.TrackingEvent) error {
	return t.create(e)
}

// NextTrackingSeq returns the sequence number for the request's next event.
// Callers hold the request lock.
func (t *Tx) NextTrackingSeq(requestID string) (int64, error) {
	var last int64
	err := t.db.Model(&models.TrackingEvent{}).
		Where("request_id = ?", requestID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, translate(err)
	}
	return last + 1, nil
}

const trackingOrder = "created_at DESC, seq DESC"

// TrackingHistory returns events newest first.
func (t *Tx) TrackingHistory(requestID string) ([]models.TrackingEvent, error) {
	events := make([]models.TrackingEvent, 0)
	err := t.db.Where("request_id = ?", requestID).Order(trackingOrder).Find(&events).Error
	return events, translate(err)
}

func (t *Tx) LatestTrackingEvent(requestID string) (*models.TrackingEvent, error) {
	var e models.TrackingEvent
	err := t.db.Where("request_id = ?", requestID).Order(trackingOrder).First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// ---- catalog & directory ----

func (t *Tx) ServiceByID(id string) (*models.Service, error) {
	var s models.Service
	if err := t.db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (t *Tx) CountActiveServices() (int64, error) {
	var n int64
	err := t.db.Model(&models.Service{}).Where("is_active = ?", true).Count(&n).Error
	return n, translate(err)
}

func (t *Tx) UserByID(id string) (*models.User, error) {
	var u models.User
	if err := t.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *Tx) CountActiveUsers(role string) (int64, error) {
	var n int64
	err := t.db.Model(&models.User{}).Where("role = ? AND is_active = ?", role, true).Count(&n).Error
	return n, translate(err)
}
