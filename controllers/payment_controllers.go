package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/utils"
)

type PaymentController struct {
	Payments *services.PaymentGate
	Requests *services.Engine
}

func NewPaymentController(payments *services.PaymentGate, requests *services.Engine) *PaymentController {
	return &PaymentController{Payments: payments, Requests: requests}
}

type createPaymentBody struct {
	RequestID      string          `json:"request_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"payment_method" binding:"required"`
	PaymentGateway *string         `json:"payment_gateway"`
}

// CreatePayment -> customer membayar request miliknya, admin untuk semua
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var body createPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	r, err := pc.Requests.GetRequest(ctx, body.RequestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !currentActor(c).canAccess(r) {
		respondForbidden(c)
		return
	}

	p, err := pc.Payments.CreatePayment(ctx, services.NewPayment{
		RequestID: body.RequestID,
		Amount:    body.Amount,
		Currency:  body.Currency,
		Method:    body.PaymentMethod,
		Gateway:   body.PaymentGateway,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment created", p)
}

func (pc *PaymentController) GetPayment(c *gin.Context) {
	p, err := pc.Payments.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !allowRequest(c, pc.Requests, p.RequestID) {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment detail", p)
}

func (pc *PaymentController) GetPaymentByRequest(c *gin.Context) {
	p, err := pc.Payments.GetPaymentByRequest(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !allowRequest(c, pc.Requests, p.RequestID) {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment detail", p)
}

// ListPaymentsByCustomer -> hanya customer itu sendiri dan admin
func (pc *PaymentController) ListPaymentsByCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")
	if !currentActor(c).isSelf(customerID) {
		respondForbidden(c)
		return
	}

	payments, err := pc.Payments.ListPaymentsByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

type paymentStatusBody struct {
	Status        string  `json:"status" binding:"required"`
	TransactionID *string `json:"transaction_id"`
	FailureReason *string `json:"failure_reason"`
}

// UpdatePaymentStatus -> admin (atau callback gateway lewat admin) mengubah status
func (pc *PaymentController) UpdatePaymentStatus(c *gin.Context) {
	var body paymentStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBadRequest(c, err)
		return
	}

	p, err := pc.Payments.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), services.PaymentUpdate{
		Status:        body.Status,
		TransactionID: body.TransactionID,
		FailureReason: body.FailureReason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment status updated", p)
}
