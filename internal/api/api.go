// Package api exposes the HTTP surface: contact intake, catalog reads,
// order placement and token auth.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/stock"
	"storefront/internal/store"
)

// ServiceName labels metrics emitted by this API.
const ServiceName = "storefront-api"

// API holds the collaborators shared by every endpoint.
type API struct {
	store    store.Store
	stock    *stock.Manager
	auth     *auth.Service
	notifier notify.Notifier
	events   events.Publisher
}

// New wires the API onto its collaborators.
func New(s store.Store, m *stock.Manager, a *auth.Service, n notify.Notifier, p events.Publisher) *API {
	return &API{store: s, stock: m, auth: a, notifier: n, events: p}
}

// Routes builds the explicit route table. Contact intake and token auth
// are open; everything touching the catalog requires a token.
func (a *API) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.PrometheusMiddleware(ServiceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/contact/", a.createContact)
	router.POST("/api-token-auth/", a.obtainToken)

	authed := router.Group("/", a.auth.Middleware())
	authed.GET("/item/", a.listItems)
	authed.GET("/item/:id/", a.getItem)
	authed.GET("/order/", a.listOrders)
	authed.GET("/order/:id/", a.getOrder)
	authed.POST("/order/", a.createOrder)

	return router
}
