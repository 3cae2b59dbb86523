package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/gateway"
	"github.com/Domenick1991/flightpay/internal/repository"
	"github.com/Domenick1991/flightpay/internal/service/orders"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service orders.OrderUseCase
}

func NewPaymentHandler(service orders.OrderUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/confirm", h.confirm)
	router.POST("/webhook/stripe", h.stripeWebhook)
	router.POST("/webhook/flutterwave", h.flutterwaveWebhook)
}

type confirmPaymentRequest struct {
	OrderID       string `json:"order_id"`
	Provider      string `json:"provider"`
	SessionID     string `json:"session_id"`
	TransactionID string `json:"transaction_id"`
	TxRef         string `json:"tx_ref"`
}

type confirmPaymentResponse struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	Verified    bool   `json:"verified"`
	AlreadyPaid bool   `json:"already_paid"`
}

// confirm is the client redirect callback: the browser lands back on the
// site and the frontend posts the provider references here. The response
// reflects the observed order state, never the client's claim.
func (h *PaymentHandler) confirm(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.handleConfirmation(c, orders.ConfirmPaymentInput{
		OrderID:       req.OrderID,
		Provider:      domain.PaymentProvider(req.Provider),
		SessionID:     req.SessionID,
		TransactionID: req.TransactionID,
		TxRef:         req.TxRef,
	})
}

type stripeWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string            `json:"id"`
			ClientReferenceID string            `json:"client_reference_id"`
			Metadata          map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (h *PaymentHandler) stripeWebhook(c *gin.Context) {
	var event stripeWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	orderID := event.Data.Object.ClientReferenceID
	if orderID == "" {
		orderID = event.Data.Object.Metadata["order_id"]
	}
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing order reference"})
		return
	}

	h.handleConfirmation(c, orders.ConfirmPaymentInput{
		OrderID:   orderID,
		Provider:  domain.ProviderStripe,
		SessionID: event.Data.Object.ID,
	})
}

type flutterwaveWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID    int64  `json:"id"`
		TxRef string `json:"tx_ref"`
		Meta  struct {
			OrderID string `json:"order_id"`
		} `json:"meta"`
	} `json:"data"`
}

func (h *PaymentHandler) flutterwaveWebhook(c *gin.Context) {
	var event flutterwaveWebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if event.Event != "charge.completed" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	orderID := event.Data.Meta.OrderID
	if orderID == "" {
		// tx_ref is set to the order id at checkout time.
		orderID = event.Data.TxRef
	}
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing order reference"})
		return
	}

	input := orders.ConfirmPaymentInput{
		OrderID:  orderID,
		Provider: domain.ProviderFlutterwave,
		TxRef:    event.Data.TxRef,
	}
	if event.Data.ID != 0 {
		input.TransactionID = strconv.FormatInt(event.Data.ID, 10)
	}
	h.handleConfirmation(c, input)
}

func (h *PaymentHandler) handleConfirmation(c *gin.Context, input orders.ConfirmPaymentInput) {
	result, err := h.service.ConfirmPayment(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, gateway.ErrUnsupportedProvider), errors.Is(err, gateway.ErrMissingReference):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gateway.ErrTransient):
			// 502 so the provider's webhook retry machinery kicks in.
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification temporarily unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, confirmPaymentResponse{
		OrderID:     input.OrderID,
		Status:      string(result.Status),
		Verified:    result.Verified,
		AlreadyPaid: result.AlreadyPaid,
	})
}
