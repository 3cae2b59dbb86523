package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/flightpay/internal/domain"
	"github.com/Domenick1991/flightpay/internal/repository"
	"github.com/Domenick1991/flightpay/internal/service/orders"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const adminTokenHeader = "X-Admin-Token"

type OrderHandler struct {
	service orders.OrderUseCase
}

func NewOrderHandler(service orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

func (h *OrderHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/complete", h.complete)
	router.POST("/:id/refund", h.refund)
	router.POST("/:id/notifications/redrive", h.redrive)
}

type passengerPayload struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
}

type createOrderRequest struct {
	UserID       string             `json:"user_id"`
	GuestEmail   string             `json:"guest_email"`
	ContactEmail string             `json:"contact_email"`
	FlightNumber string             `json:"flight_number"`
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	Departure    time.Time          `json:"departure"`
	Amount       string             `json:"amount"`
	Currency     string             `json:"currency"`
	Passengers   []passengerPayload `json:"passengers"`
}

type orderResponse struct {
	ID           string             `json:"id"`
	OrderNumber  string             `json:"order_number"`
	Status       string             `json:"status"`
	Provider     string             `json:"provider,omitempty"`
	Amount       string             `json:"amount"`
	Currency     string             `json:"currency"`
	Email        string             `json:"email"`
	FlightNumber string             `json:"flight_number"`
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	CreatedAt    string             `json:"created_at"`
	PaidAt       string             `json:"paid_at,omitempty"`
	CompletedAt  string             `json:"completed_at,omitempty"`
	Passengers   []passengerPayload `json:"passengers,omitempty"`
}

func toOrderResponse(o *domain.Order, passengers []domain.Passenger) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		Status:       string(o.Status),
		Provider:     string(o.Provider),
		Amount:       o.Amount.StringFixed(2),
		Currency:     o.Currency,
		Email:        o.Email,
		FlightNumber: o.FlightNumber,
		Origin:       o.Origin,
		Destination:  o.Destination,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
	if o.PaidAt != nil {
		resp.PaidAt = o.PaidAt.Format(time.RFC3339)
	}
	if o.CompletedAt != nil {
		resp.CompletedAt = o.CompletedAt.Format(time.RFC3339)
	}
	for _, p := range passengers {
		resp.Passengers = append(resp.Passengers, passengerPayload{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DocumentNumber: p.DocumentNumber,
		})
	}
	return resp
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	input := orders.CreateOrderInput{
		UserID:       req.UserID,
		GuestEmail:   req.GuestEmail,
		ContactEmail: req.ContactEmail,
		FlightNumber: req.FlightNumber,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Departure:    req.Departure,
		Amount:       amount,
		Currency:     req.Currency,
	}
	for _, p := range req.Passengers {
		input.Passengers = append(input.Passengers, domain.Passenger{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			DocumentNumber: p.DocumentNumber,
		})
	}

	order, err := h.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order, input.Passengers))
}

func (h *OrderHandler) get(c *gin.Context) {
	order, passengers, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, passengers))
}

type completeOrderRequest struct {
	TicketURL string `json:"ticket_url"`
}

func (h *OrderHandler) complete(c *gin.Context) {
	// Body is optional; ticket upload may happen out of band.
	var req completeOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.service.CompleteOrder(c.Request.Context(), c.GetHeader(adminTokenHeader), c.Param("id"), req.TicketURL)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, nil))
}

func (h *OrderHandler) refund(c *gin.Context) {
	order, err := h.service.RefundOrder(c.Request.Context(), c.GetHeader(adminTokenHeader), c.Param("id"))
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, nil))
}

func (h *OrderHandler) redrive(c *gin.Context) {
	if err := h.service.RedriveNotifications(c.Request.Context(), c.GetHeader(adminTokenHeader), c.Param("id")); err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "redriven"})
}

func respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
