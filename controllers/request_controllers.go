package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

type RequestController struct {
	Engine *services.Engine
}

func NewRequestController(engine *services.Engine) *RequestController {
	return &RequestController{Engine: engine}
}

type createRequestBody struct {
	ServiceID        string         `json:"service_id" binding:"required"`
	Description      string         `json:"description" binding:"required"`
	CustomerLocation models.Address `json:"customer_location"`
	ScheduledDate    time.Time      `json:"scheduled_date" binding:"required"`
}

// CreateRequest -> customer membuat request baru atas namanya sendiri
func (rc *RequestController) CreateRequest(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	r, err := rc.Engine.CreateRequest(c.Request.Context(), services.NewRequest{
		CustomerID:    currentActor(c).ID,
		ServiceID:     body.ServiceID,
		Description:   body.Description,
		Location:      body.CustomerLocation,
		ScheduledDate: body.ScheduledDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Service request created", r)
}

// ListRequests -> filter opsional customer_id, technician_id, status.
// Customer hanya melihat request miliknya, teknisi hanya yang ditugaskan.
func (rc *RequestController) ListRequests(c *gin.Context) {
	filter := services.RequestFilter{
		CustomerID:   c.Query("customer_id"),
		TechnicianID: c.Query("technician_id"),
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = models.RequestStatus(raw)
		if status, ok := models.ParseRequestStatus(raw); ok {
			filter.Status = status
		}
	}
	switch a := currentActor(c); a.Role {
	case models.RoleCustomer:
		filter.CustomerID = a.ID
	case models.RoleTechnician:
		filter.TechnicianID = a.ID
	}

	requests, err := rc.Engine.ListRequests(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of service requests", requests)
}

func (rc *RequestController) GetRequest(c *gin.Context) {
	r, err := rc.Engine.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canAccess(r) {
		respondForbidden(c)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service request detail", r)
}

// AssignTechnician -> admin menugaskan teknisi, request menjadi accepted
func (rc *RequestController) AssignTechnician(c *gin.Context) {
	r, err := rc.Engine.AssignTechnician(c.Request.Context(), c.Param("id"), c.Param("technician_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Technician assigned", r)
}

type transitionBody struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// TransitionStatus -> hanya peserta request (atau admin) yang boleh
// memindahkan status.
func (rc *RequestController) TransitionStatus(c *gin.Context) {
	var body transitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := rc.Engine.GetRequest(ctx, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canAccess(current) {
		respondForbidden(c)
		return
	}

	target := models.RequestStatus(body.Status)
	if parsed, ok := models.ParseRequestStatus(body.Status); ok {
		target = parsed
	}
	r, err := rc.Engine.TransitionStatus(ctx, current.ID, target, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Status updated", r)
}
