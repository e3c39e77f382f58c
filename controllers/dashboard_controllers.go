package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

type DashboardController struct {
	Dashboard *services.Dashboard
	Monitor   *services.PaymentMonitor
}

func NewDashboardController(dashboard *services.Dashboard, monitor *services.PaymentMonitor) *DashboardController {
	return &DashboardController{Dashboard: dashboard, Monitor: monitor}
}

func (dc *DashboardController) AdminStats(c *gin.Context) {
	stats, err := dc.Dashboard.AdminStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admin dashboard", stats)
}

// TechnicianStats -> teknisi hanya bisa melihat dashboard miliknya
func (dc *DashboardController) TechnicianStats(c *gin.Context) {
	id := c.Param("id")
	if !currentActor(c).isSelf(id) {
		respondForbidden(c)
		return
	}
	stats, err := dc.Dashboard.TechnicianStats(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Technician dashboard", stats)
}

func (dc *DashboardController) CustomerStats(c *gin.Context) {
	id := c.Param("id")
	if !currentActor(c).isSelf(id) {
		respondForbidden(c)
		return
	}
	stats, err := dc.Dashboard.CustomerStats(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer dashboard", stats)
}

// PaymentMetrics -> metrik pembayaran sejak server terakhir start
func (dc *DashboardController) PaymentMetrics(c *gin.Context) {
	var metrics services.PaymentMetrics
	if dc.Monitor != nil {
		metrics = dc.Monitor.GetMetrics()
	}
	utils.RespondJSON(c, http.StatusOK, "Payment metrics", metrics)
}
