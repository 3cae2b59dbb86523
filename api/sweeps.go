package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/Domenick1991/flightpay/internal/service/sweeps"
	"github.com/gin-gonic/gin"
)

const cronSecretHeader = "X-Cron-Secret"

// SweepHandler exposes the sweep entry points to the external scheduler.
// The shared secret is checked before any store access.
type SweepHandler struct {
	service    sweeps.SweepUseCase
	cronSecret string
}

func NewSweepHandler(service sweeps.SweepUseCase, cronSecret string) *SweepHandler {
	return &SweepHandler{service: service, cronSecret: cronSecret}
}

func (h *SweepHandler) Register(router *gin.RouterGroup) {
	router.POST("/reminders", h.reminders)
	router.POST("/surveys", h.surveys)
}

func (h *SweepHandler) authorized(c *gin.Context) bool {
	supplied := c.GetHeader(cronSecretHeader)
	if h.cronSecret == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(h.cronSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	return true
}

func (h *SweepHandler) reminders(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	sent, err := h.service.RunReminderSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

func (h *SweepHandler) surveys(c *gin.Context) {
	if !h.authorized(c) {
		return
	}
	sent, err := h.service.RunSurveySweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
