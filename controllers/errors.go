package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

var errForbidden = errors.New("you are not a participant of this request")

// respondServiceError memetakan kind error lifecycle ke status HTTP.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindValidation:
		status = http.StatusBadRequest
	default:
		utils.ErrorLogger.WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
		utils.RespondErrorCode(c, status, services.CodeOf(err), errors.New("internal server error"))
		return
	}
	utils.RespondErrorCode(c, status, services.CodeOf(err), err)
}

func respondBadRequest(c *gin.Context, err error) {
	utils.RespondErrorCode(c, http.StatusBadRequest, "BAD_REQUEST", err)
}

func respondForbidden(c *gin.Context) {
	utils.RespondErrorCode(c, http.StatusForbidden, "FORBIDDEN", errForbidden)
}

type actor struct {
	ID   string
	Role string
}

func currentActor(c *gin.Context) actor {
	return actor{ID: c.GetString("userID"), Role: c.GetString("role")}
}

func (a actor) isAdmin() bool { return a.Role == models.RoleAdmin }

// canAccess: admin selalu boleh, customer dan teknisi hanya request miliknya.
func (a actor) canAccess(r *models.ServiceRequest) bool {
	switch a.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return r.CustomerID == a.ID
	case models.RoleTechnician:
		return r.AssignedTechnician() == a.ID
	}
	return false
}

// isSelf dipakai untuk endpoint yang dibatasi per user (dashboard, review).
func (a actor) isSelf(userID string) bool {
	return a.isAdmin() || a.ID == userID
}

// canSeeReview: review privat hanya untuk penulis, teknisi yang direview dan admin.
func (a actor) canSeeReview(r *models.Review) bool {
	return r.IsPublic || a.isSelf(r.CustomerID) || a.isSelf(r.TechnicianID)
}

// allowRequest memastikan actor adalah peserta request sebelum data turunannya
// (tracking, payment) dibaca. Request yang tidak ada diteruskan ke service.
func allowRequest(c *gin.Context, engine *services.Engine, requestID string) bool {
	a := currentActor(c)
	if a.isAdmin() {
		return true
	}
	r, err := engine.GetRequest(c.Request.Context(), requestID)
	if services.KindOf(err) == services.KindNotFound {
		return true
	}
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if !a.canAccess(r) {
		respondForbidden(c)
		return false
	}
	return true
}
