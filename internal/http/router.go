// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"

	"khabar/internal/geo"
	"khabar/internal/http/handlers"
	"khabar/internal/http/middleware"
	"khabar/internal/infra"
	"khabar/internal/modules/order"
	"khabar/internal/modules/rider"
)

type RouterDeps struct {
	Order      *order.Service
	Rider      *rider.Service
	Dispatcher handlers.Dispatcher
	Zones      handlers.ZoneLookup
	GeoParams  geo.Params
	Verifier   infra.TokenVerifier
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	dispatchHandler := handlers.NewDispatchHandler(deps.Dispatcher)
	api.POST("/dispatch/:orderId", dispatchHandler.Dispatch)

	orderHandler := handlers.NewOrderHandler(deps.Order)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders/:id/status", orderHandler.UpdateStatus)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)

	riderHandler := handlers.NewRiderHandler(deps.Rider)
	api.POST("/riders/:id/location", riderHandler.UpdateLocation)
	api.POST("/riders/:id/status", riderHandler.SetStatus)

	quoteHandler := handlers.NewQuoteHandler(deps.Zones, deps.GeoParams)
	api.GET("/delivery/quote", quoteHandler.Quote)

	return r
}
