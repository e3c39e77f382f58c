package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/fieldservice-app/controllers"
	"github.com/yeremiapane/fieldservice-app/hub"
	"github.com/yeremiapane/fieldservice-app/middlewares"
	"github.com/yeremiapane/fieldservice-app/models"
	"github.com/yeremiapane/fieldservice-app/services"
)

// Deps adalah komponen lifecycle yang dipakai oleh controller. Semua service
// harus dibuat dengan locker yang sama.
type Deps struct {
	Engine    *services.Engine
	Payments  *services.PaymentGate
	Reviews   *services.ReviewGate
	Tracking  *services.TrackingLog
	Dashboard *services.Dashboard
	Monitor   *services.PaymentMonitor
	Hub       *hub.Hub

	AllowedOrigin   string
	RateLimitPerSec float64
	RateLimitBurst  int
}

const (
	admin      = models.RoleAdmin
	customer   = models.RoleCustomer
	technician = models.RoleTechnician
)

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if d.RateLimitPerSec > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimitPerSec, d.RateLimitBurst).RateLimit())
	}

	// Inisialisasi controller
	requestCtrl := controllers.NewRequestController(d.Engine)
	paymentCtrl := controllers.NewPaymentController(d.Payments, d.Engine)
	reviewCtrl := controllers.NewReviewController(d.Reviews, d.Engine)
	trackingCtrl := controllers.NewTrackingController(d.Tracking, d.Engine)
	dashboardCtrl := controllers.NewDashboardController(d.Dashboard, d.Monitor)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	// SERVICE REQUESTS
	requests := api.Group("/requests")
	requests.POST("", middlewares.RequireRoles(customer), requestCtrl.CreateRequest)
	requests.GET("", requestCtrl.ListRequests)
	requests.GET("/:id", requestCtrl.GetRequest)
	requests.PUT("/:id/assign/:technician_id", middlewares.RequireRoles(admin), requestCtrl.AssignTechnician)
	requests.PUT("/:id/status", middlewares.RequireRoles(technician, admin, customer), requestCtrl.TransitionStatus)

	// PAYMENTS
	payments := api.Group("/payments")
	payments.POST("", middlewares.RequireRoles(customer, admin), paymentCtrl.CreatePayment)
	payments.GET("/:id", paymentCtrl.GetPayment)
	payments.GET("/request/:request_id", paymentCtrl.GetPaymentByRequest)
	payments.GET("/customer/:customer_id", paymentCtrl.ListPaymentsByCustomer)
	payments.PUT("/:id/status", middlewares.RequireRoles(admin), paymentCtrl.UpdatePaymentStatus)

	// REVIEWS
	reviews := api.Group("/reviews")
	reviews.POST("", middlewares.RequireRoles(customer), reviewCtrl.CreateReview)
	reviews.GET("/:id", reviewCtrl.GetReview)
	reviews.GET("/request/:request_id", reviewCtrl.GetReviewByRequest)
	reviews.GET("/technician/:technician_id", reviewCtrl.ListByTechnician)
	reviews.GET("/customer/:customer_id", reviewCtrl.ListByCustomer)
	reviews.PUT("/:id", middlewares.RequireRoles(customer, admin), reviewCtrl.UpdateReview)
	reviews.DELETE("/:id", middlewares.RequireRoles(customer, admin), reviewCtrl.DeleteReview)

	// TRACKING
	tracking := api.Group("/tracking/request/:request_id")
	tracking.POST("", middlewares.RequireRoles(technician, admin), trackingCtrl.AppendEvent)
	tracking.GET("", trackingCtrl.GetHistory)
	tracking.GET("/latest", trackingCtrl.GetLatest)

	// DASHBOARD
	dashboard := api.Group("/dashboard")
	dashboard.GET("/admin", middlewares.RequireRoles(admin), dashboardCtrl.AdminStats)
	dashboard.GET("/payments/metrics", middlewares.RequireRoles(admin), dashboardCtrl.PaymentMetrics)
	dashboard.GET("/technician/:id", middlewares.RequireRoles(technician, admin), dashboardCtrl.TechnicianStats)
	dashboard.GET("/customer/:id", middlewares.RequireRoles(customer, admin), dashboardCtrl.CustomerStats)

	// WebSocket endpoint dengan middleware khusus
	if d.Hub != nil {
		wsCtrl := controllers.NewWSController(d.Hub)
		wsGroup := r.Group("/ws")
		wsGroup.Use(middlewares.WebSocketAuthMiddleware())
		{
			wsGroup.GET("/:channel", wsCtrl.Stream)
		}
	}

	return r
}
