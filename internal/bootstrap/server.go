package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightpay/api"
	"github.com/Domenick1991/flightpay/config"
	"github.com/Domenick1991/flightpay/internal/service/orders"
	"github.com/Domenick1991/flightpay/internal/service/sweeps"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, orderSvc orders.OrderUseCase, sweepSvc sweeps.SweepUseCase) error {
	router := NewRouter(cfg, orderSvc, sweepSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, orderSvc orders.OrderUseCase, sweepSvc sweeps.SweepUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	api.NewOrderHandler(orderSvc).Register(apiGroup.Group("/orders"))
	api.NewPaymentHandler(orderSvc).Register(apiGroup.Group("/payments"))
	api.NewSweepHandler(sweepSvc, cfg.Sweep.CronSecret).Register(router.Group("/sweeps"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
