package services

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/store"
	"golang.org/x/sync/errgroup"
)

// Dashboard computes read-only statistics on demand.
type Dashboard struct {
	store *store.Store
}

func NewDashboard(st *store.Store) *Dashboard {
	return &Dashboard{store: st}
}

type RequestCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Accepted   int64 `json:"accepted"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Rejected   int64 `json:"rejected"`
}

type AdminStats struct {
	Requests         RequestCounts   `json:"requests"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	AverageRating    float64         `json:"average_rating"`
	TotalReviews     int64           `json:"total_reviews"`
	TotalCustomers   int64           `json:"total_customers"`
	TotalTechnicians int64           `json:"total_technicians"`
	TotalServices    int64           `json:"total_services"`
}

type TechnicianStats struct {
	AssignedRequests   int64           `json:"assigned_requests"`
	CompletedRequests  int64           `json:"completed_requests"`
	InProgressRequests int64           `json:"in_progress_requests"`
	TotalEarnings      decimal.Decimal `json:"total_earnings"`
	AverageRating      float64         `json:"average_rating"`
	TotalReviews       int64           `json:"total_reviews"`
}

type CustomerStats struct {
	Requests     RequestCounts   `json:"requests"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	ReviewsGiven int64           `json:"reviews_given"`
}

// AdminStats: revenue counts completed payments of completed requests only.
func (d *Dashboard) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := d.requestCounts(gctx, store.RequestFilter{})
		stats.Requests = counts
		return err
	})
	g.Go(func() error {
		revenue, err := d.sumCompleted(gctx, store.PaymentScope{OnlyCompletedRequests: true})
		stats.TotalRevenue = revenue
		return err
	})
	g.Go(func() error {
		summary, err := d.store.Read(gctx).RatingSummary(store.ReviewFilter{})
		stats.AverageRating = roundRating(summary.Average)
		stats.TotalReviews = summary.Count
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalCustomers, err = d.store.Read(gctx).CountActiveUsers(models.RoleCustomer)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalTechnicians, err = d.store.Read(gctx).CountActiveUsers(models.RoleTechnician)
		return err
	})
	g.Go(func() error {
		var err error
		stats.TotalServices, err = d.store.Read(gctx).CountActiveServices()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, infra("failed to compute admin stats", err)
	}
	return stats, nil
}

func (d *Dashboard) TechnicianStats(ctx context.Context, technicianID string) (*TechnicianStats, error) {
	stats := &TechnicianStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := d.requestCounts(gctx, store.RequestFilter{TechnicianID: technicianID})
		stats.AssignedRequests = counts.Total
		stats.CompletedRequests = counts.Completed
		stats.InProgressRequests = counts.InProgress
		return err
	})
	g.Go(func() error {
		earnings, err := d.sumCompleted(gctx, store.PaymentScope{TechnicianID: technicianID, OnlyCompletedRequests: true})
		stats.TotalEarnings = earnings
		return err
	})
	g.Go(func() error {
		summary, err := d.store.Read(gctx).RatingSummary(store.ReviewFilter{TechnicianID: technicianID})
		stats.AverageRating = roundRating(summary.Average)
		stats.TotalReviews = summary.Count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, infra("failed to compute technician stats", err)
	}
	return stats, nil
}

func (d *Dashboard) CustomerStats(ctx context.Context, customerID string) (*CustomerStats, error) {
	stats := &CustomerStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := d.requestCounts(gctx, store.RequestFilter{CustomerID: customerID})
		stats.Requests = counts
		return err
	})
	g.Go(func() error {
		spent, err := d.sumCompleted(gctx, store.PaymentScope{CustomerID: customerID})
		stats.TotalSpent = spent
		return err
	})
	g.Go(func() error {
		summary, err := d.store.Read(gctx).RatingSummary(store.ReviewFilter{CustomerID: customerID})
		stats.ReviewsGiven = summary.Count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, infra("failed to compute customer stats", err)
	}
	return stats, nil
}

func (d *Dashboard) requestCounts(ctx context.Context, f store.RequestFilter) (RequestCounts, error) {
	byStatus, err := d.store.Read(ctx).CountRequestsByStatus(f)
	if err != nil {
		return RequestCounts{}, err
	}

	c := RequestCounts{
		Pending:    byStatus[models.RequestPending],
		Accepted:   byStatus[models.RequestAccepted],
		InProgress: byStatus[models.RequestInProgress],
		Completed:  byStatus[models.RequestCompleted],
		Cancelled:  byStatus[models.RequestCancelled],
		Rejected:   byStatus[models.RequestRejected],
	}
	for _, n := range byStatus {
		c.Total += n
	}
	return c, nil
}

func (d *Dashboard) sumCompleted(ctx context.Context, scope store.PaymentScope) (decimal.Decimal, error) {
	amounts, err := d.store.Read(ctx).CompletedPaymentAmounts(scope)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

func roundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
