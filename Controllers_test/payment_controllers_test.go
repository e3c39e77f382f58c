package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/fieldservice-app/models"
)

func TestCreateAndGetPayment(t *testing.T) {
	env := setupEnv(t)
	r := env.createRequest()

	payload := map[string]interface{}{
		"request_id":      r.ID,
		"amount":          "120.50",
		"payment_method":  "card",
		"payment_gateway": "stripe",
	}
	w, resp := env.do(env.customer, http.MethodPost, "/api/payments", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p models.Payment
	decodeData(t, resp, &p)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, "USD", p.Currency)
	assert.True(t, decimal.RequireFromString("120.50").Equal(p.Amount))

	w, resp = env.do(env.customer, http.MethodPost, "/api/payments", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PAYMENT_ALREADY_EXISTS", resp.Code)

	w, resp = env.do(env.customer, http.MethodGet, "/api/payments/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Payment
	decodeData(t, resp, &got)
	assert.Equal(t, p.ID, got.ID)

	// teknisi hanya melihat pembayaran request yang ditugaskan kepadanya
	w, _ = env.do(env.technician, http.MethodGet, "/api/payments/request/"+r.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env.assign(r)
	w, resp = env.do(env.technician, http.MethodGet, "/api/payments/request/"+r.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &got)
	assert.Equal(t, p.ID, got.ID)
	w, _ = env.do(env.spare, http.MethodGet, "/api/payments/"+p.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.do(env.other, http.MethodGet, "/api/payments/"+p.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(env.admin, http.MethodGet, "/api/payments/request/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PAYMENT_NOT_FOUND", resp.Code)
}

func TestCreatePaymentValidation(t *testing.T) {
	env := setupEnv(t)
	r := env.createRequest()

	tests := []struct {
		name     string
		as       models.User
		payload  map[string]interface{}
		wantCode int
		wantErr  string
	}{
		{"missing method", env.customer, map[string]interface{}{"request_id": r.ID, "amount": 10}, http.StatusBadRequest, "BAD_REQUEST"},
		{"zero amount", env.customer, map[string]interface{}{"request_id": r.ID, "amount": 0, "payment_method": "card"}, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"bad currency", env.customer, map[string]interface{}{"request_id": r.ID, "amount": 10, "currency": "euro", "payment_method": "card"}, http.StatusBadRequest, "INVALID_CURRENCY"},
		{"unknown request", env.customer, map[string]interface{}{"request_id": "missing", "amount": 10, "payment_method": "card"}, http.StatusNotFound, "REQUEST_NOT_FOUND"},
		{"not the owner", env.other, map[string]interface{}{"request_id": r.ID, "amount": 10, "payment_method": "card"}, http.StatusForbidden, "FORBIDDEN"},
		{"technician cannot pay", env.technician, map[string]interface{}{"request_id": r.ID, "amount": 10, "payment_method": "card"}, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(tt.as, http.MethodPost, "/api/payments", tt.payload)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, resp.Code)
		})
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	env := setupEnv(t)
	r := env.completedRequest()

	w, resp := env.do(env.admin, http.MethodPost, "/api/payments", map[string]interface{}{
		"request_id": r.ID, "amount": 120.5, "currency": "usd", "payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p models.Payment
	decodeData(t, resp, &p)

	w, _ = env.do(env.customer, http.MethodPut, "/api/payments/"+p.ID+"/status", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(env.admin, http.MethodPut, "/api/payments/"+p.ID+"/status", map[string]string{"status": "settled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", resp.Code)

	w, resp = env.do(env.admin, http.MethodPut, "/api/payments/"+p.ID+"/status", map[string]string{
		"status":         "completed",
		"transaction_id": "txn_42",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid models.Payment
	decodeData(t, resp, &paid)
	assert.Equal(t, models.PaymentCompleted, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.TransactionID)
	assert.Equal(t, "txn_42", *paid.TransactionID)

	w, resp = env.do(env.admin, http.MethodPut, "/api/payments/missing/status", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PAYMENT_NOT_FOUND", resp.Code)
}

func TestCancelledRequestIsNotPayable(t *testing.T) {
	env := setupEnv(t)
	r := env.createRequest()
	w, _ := env.transition(env.customer, r, "cancelled", "changed my mind")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := env.do(env.customer, http.MethodPost, "/api/payments", map[string]interface{}{
		"request_id": r.ID, "amount": 10, "payment_method": "card",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "REQUEST_NOT_PAYABLE", resp.Code)
}

func TestListPaymentsByCustomer(t *testing.T) {
	env := setupEnv(t)
	for i := 0; i < 2; i++ {
		r := env.createRequest()
		w, _ := env.do(env.customer, http.MethodPost, "/api/payments", map[string]interface{}{
			"request_id": r.ID, "amount": 50, "payment_method": "card",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, resp := env.do(env.customer, http.MethodGet, "/api/payments/customer/"+env.customer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var payments []models.Payment
	decodeData(t, resp, &payments)
	assert.Len(t, payments, 2)

	w, _ = env.do(env.technician, http.MethodGet, "/api/payments/customer/"+env.customer.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = env.do(env.other, http.MethodGet, "/api/payments/customer/"+env.customer.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(env.admin, http.MethodGet, "/api/payments/customer/"+env.other.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &payments)
	assert.Empty(t, payments)
}
