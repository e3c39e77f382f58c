package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

type TrackingController struct {
	Tracking *services.TrackingLog
	Requests *services.Engine
}

func NewTrackingController(tracking *services.TrackingLog, requests *services.Engine) *TrackingController {
	return &TrackingController{Tracking: tracking, Requests: requests}
}

type trackingBody struct {
	Status    string   `json:"status" binding:"required"`
	Notes     *string  `json:"notes"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// AppendEvent -> teknisi yang ditugaskan mencatat progres di lapangan
func (tc *TrackingController) AppendEvent(c *gin.Context) {
	var body trackingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	requestID := c.Param("request_id")
	r, err := tc.Requests.GetRequest(ctx, requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canAccess(r) {
		respondForbidden(c)
		return
	}

	ev, err := tc.Tracking.AppendEvent(ctx, requestID, services.NewTrackingEvent{
		Status:    body.Status,
		Notes:     body.Notes,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Tracking event recorded", ev)
}

// GetHistory -> terbaru lebih dulu; request tanpa event menghasilkan list kosong
func (tc *TrackingController) GetHistory(c *gin.Context) {
	if !allowRequest(c, tc.Requests, c.Param("request_id")) {
		return
	}
	history, err := tc.Tracking.GetHistory(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tracking history", history)
}

func (tc *TrackingController) GetLatest(c *gin.Context) {
	if !allowRequest(c, tc.Requests, c.Param("request_id")) {
		return
	}
	ev, err := tc.Tracking.GetLatest(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Latest tracking event", ev)
}
