package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

type Config struct {
	Carts    CartService
	Orders   OrderService
	Payments PaymentService
	Gatherer prometheus.Gatherer
	// Ping reports whether the service's dependencies are reachable.
	Ping           func(ctx context.Context) error
	RequestTimeout time.Duration
}

func NewRouter(cfg Config, logger *zap.Logger) *gin.Engine {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	r := gin.New()
	r.Use(
		RequestID(),
		RequestLogger(logger.With(zap.String("component", "http"))),
		gin.Recovery(),
	)

	r.GET("/healthz", healthz(cfg.Ping))
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	h := &handler{carts: cfg.Carts, orders: cfg.Orders, payments: cfg.Payments}

	api := r.Group("/api", Timeout(cfg.RequestTimeout), RequireUser())

	cart := api.Group("/cart")
	cart.PUT("", h.provisionCart)
	cart.GET("/items", h.listCartItems)
	cart.POST("/items", h.addCartItem)
	cart.PUT("/items/:productID", h.setCartItemQuantity)
	cart.DELETE("/items/:productID", h.removeCartItem)

	orders := api.Group("/orders")
	orders.POST("", h.createOrder)
	orders.GET("", h.listOrders)
	orders.GET("/:orderID", h.getOrder)
	orders.POST("/:orderID/cancel", h.cancelOrder)
	orders.POST("/:orderID/done", h.markOrderDone)
	orders.POST("/:orderID/payment", h.startPayment)

	manager := api.Group("/manager", RequireManager())
	manager.POST("/orders/:orderID/deliver", h.markOrderDelivered)

	return r
}

func healthz(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := ping(ctx); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
