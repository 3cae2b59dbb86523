package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/gateway"
	"github.com/Domenick1991/flightpay/internal/repository"
	"github.com/Domenick1991/flightpay/internal/service/orders"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newPaymentRouter(service orders.OrderUseCase) *gin.Engine {
	router := gin.New()
	NewPaymentHandler(service).Register(router.Group("/api/payments"))
	return router
}

func TestPaymentHandler_Confirm(t *testing.T) {
	service := &MockOrderUseCase{}
	service.On("ConfirmPayment", mock.Anything, orders.ConfirmPaymentInput{
		OrderID:   "order-1",
		Provider:  domain.ProviderStripe,
		SessionID: "cs_1",
	}).Return(&orders.ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true}, nil).Once()
	router := newPaymentRouter(service)

	body := `{"order_id":"order-1","provider":"stripe","session_id":"cs_1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp confirmPaymentResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.OrderID)
	assert.Equal(t, "paid", resp.Status)
	assert.True(t, resp.Verified)
	assert.False(t, resp.AlreadyPaid)
	service.AssertExpectations(t)
}

func TestPaymentHandler_Confirm_AlreadyPaid(t *testing.T) {
	service := &MockOrderUseCase{}
	service.On("ConfirmPayment", mock.Anything, mock.Anything).
		Return(&orders.ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true, AlreadyPaid: true}, nil).Once()
	router := newPaymentRouter(service)

	body := `{"order_id":"order-1","provider":"stripe","session_id":"cs_1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp confirmPaymentResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AlreadyPaid)
}

func TestPaymentHandler_Confirm_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{name: "not found", err: repository.ErrOrderNotFound, code: http.StatusNotFound},
		{name: "unsupported provider", err: gateway.ErrUnsupportedProvider, code: http.StatusBadRequest},
		{name: "missing reference", err: gateway.ErrMissingReference, code: http.StatusBadRequest},
		{name: "transient gateway failure", err: gateway.ErrTransient, code: http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := &MockOrderUseCase{}
			service.On("ConfirmPayment", mock.Anything, mock.Anything).Return(nil, tc.err).Once()
			router := newPaymentRouter(service)

			body := `{"order_id":"order-1","provider":"stripe","session_id":"cs_1"}`
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", bytes.NewBufferString(body))
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestPaymentHandler_StripeWebhook(t *testing.T) {
	service := &MockOrderUseCase{}
	service.On("ConfirmPayment", mock.Anything, orders.ConfirmPaymentInput{
		OrderID:   "order-1",
		Provider:  domain.ProviderStripe,
		SessionID: "cs_1",
	}).Return(&orders.ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true}, nil).Once()
	router := newPaymentRouter(service)

	body := `{"type":"checkout.session.completed","data":{"object":{"id":"cs_1","client_reference_id":"order-1"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/stripe", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestPaymentHandler_StripeWebhook_OrderIDFromMetadata(t *testing.T) {
	service := &MockOrderUseCase{}
	service.On("ConfirmPayment", mock.Anything, orders.ConfirmPaymentInput{
		OrderID:   "order-1",
		Provider:  domain.ProviderStripe,
		SessionID: "cs_1",
	}).Return(&orders.ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true}, nil).Once()
	router := newPaymentRouter(service)

	body := `{"type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"order_id":"order-1"}}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/stripe", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestPaymentHandler_StripeWebhook_IgnoresOtherEvents(t *testing.T) {
	service := &MockOrderUseCase{}
	router := newPaymentRouter(service)

	body := `{"type":"invoice.created","data":{"object":{"id":"in_1"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/stripe", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}

func TestPaymentHandler_FlutterwaveWebhook(t *testing.T) {
	service := &MockOrderUseCase{}
	service.On("ConfirmPayment", mock.Anything, orders.ConfirmPaymentInput{
		OrderID:       "order-1",
		Provider:      domain.ProviderFlutterwave,
		TransactionID: "12345",
		TxRef:         "order-1",
	}).Return(&orders.ConfirmPaymentResult{Status: domain.OrderStatusPaid, Verified: true}, nil).Once()
	router := newPaymentRouter(service)

	body := `{"event":"charge.completed","data":{"id":12345,"tx_ref":"order-1"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/flutterwave", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestPaymentHandler_FlutterwaveWebhook_MissingReference(t *testing.T) {
	service := &MockOrderUseCase{}
	router := newPaymentRouter(service)

	body := `{"event":"charge.completed","data":{"id":0}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook/flutterwave", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything)
}
