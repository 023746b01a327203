package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okateva/resto/internal/config"
	"github.com/okateva/resto/internal/server/http/handlers"
	"github.com/okateva/resto/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.RestaurantFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Prometheus())
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, cfg.Card.WebhookSecret, cfg.Wallet.WebhookSecret)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		if err := facade.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	payments := api.Group("/payments/:provider")
	payments.POST("/webhook", paymentHandler.Webhook)
	payments.POST("/create-intent", middleware.AuthRequired(facade), paymentHandler.CreateCharge)
	payments.POST("/create-order", middleware.AuthRequired(facade), paymentHandler.CreateCharge)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(facade))
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id", orderHandler.Update)
	orders.GET("/:id/history", orderHandler.History)

	return engine
}
