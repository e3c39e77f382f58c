package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

type ReviewController struct {
	Reviews  *services.ReviewGate
	Requests *services.Engine
}

func NewReviewController(reviews *services.ReviewGate, requests *services.Engine) *ReviewController {
	return &ReviewController{Reviews: reviews, Requests: requests}
}

type createReviewBody struct {
	RequestID string  `json:"request_id" binding:"required"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment"`
}

// CreateReview -> hanya customer pemilik request yang bisa memberi review
func (rc *ReviewController) CreateReview(c *gin.Context) {
	var body createReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	r, err := rc.Requests.GetRequest(ctx, body.RequestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canAccess(r) {
		respondForbidden(c)
		return
	}

	review, err := rc.Reviews.CreateReview(ctx, services.NewReview{
		RequestID: body.RequestID,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Review created", review)
}

// GetReview -> review privat dianggap tidak ada bagi yang bukan pesertanya
func (rc *ReviewController) GetReview(c *gin.Context) {
	review, err := rc.Reviews.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canSeeReview(review) {
		respondServiceError(c, services.ErrReviewNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review detail", review)
}

func (rc *ReviewController) GetReviewByRequest(c *gin.Context) {
	review, err := rc.Reviews.GetReviewByRequest(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canSeeReview(review) {
		respondServiceError(c, services.ErrReviewNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review detail", review)
}

// ListByTechnician -> review privat hanya terlihat oleh teknisi itu sendiri dan admin
func (rc *ReviewController) ListByTechnician(c *gin.Context) {
	technicianID := c.Param("technician_id")
	rc.list(c, services.ReviewFilter{
		TechnicianID: technicianID,
		PublicOnly:   !currentActor(c).isSelf(technicianID),
	})
}

func (rc *ReviewController) ListByCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")
	rc.list(c, services.ReviewFilter{
		CustomerID: customerID,
		PublicOnly: !currentActor(c).isSelf(customerID),
	})
}

func (rc *ReviewController) list(c *gin.Context, filter services.ReviewFilter) {
	reviews, err := rc.Reviews.ListReviews(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reviews", reviews)
}

type updateReviewBody struct {
	Rating   int     `json:"rating"`
	Comment  *string `json:"comment"`
	IsPublic *bool   `json:"is_public"`
}

// UpdateReview -> is_public yang tidak dikirim mempertahankan nilai lama
func (rc *ReviewController) UpdateReview(c *gin.Context) {
	var body updateReviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, ok := rc.ownedReview(c)
	if !ok {
		return
	}

	isPublic := existing.IsPublic
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}
	review, err := rc.Reviews.UpdateReview(ctx, existing.ID, services.ReviewUpdate{
		Rating:   body.Rating,
		Comment:  body.Comment,
		IsPublic: isPublic,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review updated", review)
}

func (rc *ReviewController) DeleteReview(c *gin.Context) {
	existing, ok := rc.ownedReview(c)
	if !ok {
		return
	}
	if err := rc.Reviews.DeleteReview(c.Request.Context(), existing.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review deleted", nil)
}

// ownedReview memuat review dari path dan memastikan actor adalah penulisnya.
func (rc *ReviewController) ownedReview(c *gin.Context) (*models.Review, bool) {
	review, err := rc.Reviews.GetReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if !currentActor(c).isSelf(review.CustomerID) {
		respondForbidden(c)
		return nil, false
	}
	return review, true
}
