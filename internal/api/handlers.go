package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"storefront/internal/auth"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/stock"
	"storefront/internal/store"
)

// createContact handles POST /contact/. Open endpoint; echoes the stored
// submission using the external field names.
func (a *API) createContact(c *gin.Context) {
	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validationErrorResponse(err))
		return
	}

	contact := models.NewContact(req.Name, req.Email, req.Message)
	if err := a.store.SaveContact(c.Request.Context(), contact); err != nil {
		log.Error("Failed to save contact: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not save contact"})
		return
	}
	metrics.ContactSubmissionsTotal.Inc()

	// Best effort, off the request path. The request context dies with
	// this handler, so the notification gets its own.
	go a.notifier.ContactSubmitted(context.Background(), contact)

	c.JSON(http.StatusOK, models.ContactToResponse(contact))
}

// obtainToken handles POST /api-token-auth/.
func (a *API) obtainToken(c *gin.Context) {
	var req models.ObtainTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validationErrorResponse(err))
		return
	}

	token, err := a.auth.ObtainToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{
				"detail": "unable to log in with provided credentials",
			})
			return
		}
		log.Error("Failed to obtain token: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{Token: token.Key})
}

// listItems handles GET /item/.
func (a *API) listItems(c *gin.Context) {
	items, err := a.store.ListItems(c.Request.Context())
	if err != nil {
		log.Error("Failed to list items: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	out := make([]models.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, models.ItemToResponse(item))
	}
	c.JSON(http.StatusOK, out)
}

// getItem handles GET /item/:id/.
func (a *API) getItem(c *gin.Context) {
	item, err := a.store.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "item not found"})
			return
		}
		log.Error("Failed to get item: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, models.ItemToResponse(item))
}

// listOrders handles GET /order/.
func (a *API) listOrders(c *gin.Context) {
	orders, err := a.store.ListOrders(c.Request.Context())
	if err != nil {
		log.Error("Failed to list orders: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	out := make([]models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, models.OrderToResponse(order))
	}
	c.JSON(http.StatusOK, out)
}

// getOrder handles GET /order/:id/.
func (a *API) getOrder(c *gin.Context) {
	order, err := a.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "order not found"})
			return
		}
		log.Error("Failed to get order: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, models.OrderToResponse(order))
}

// createOrder handles POST /order/. The stock manager owns the
// availability check and the decrement.
func (a *API) createOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.OrdersTotal.WithLabelValues("validation_failed").Inc()
		c.JSON(http.StatusBadRequest, validationErrorResponse(err))
		return
	}

	userID := c.GetString(auth.ContextUserKey)
	order, err := a.stock.PlaceOrder(c.Request.Context(), req.Item, userID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotEnoughStock):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "NotEnoughStock"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "item not found"})
		case errors.Is(err, stock.ErrInvalidQuantity), errors.Is(err, stock.ErrUserRequired):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			log.Error("Failed to place order: ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		}
		return
	}

	if err := a.events.OrderPlaced(c.Request.Context(), order); err != nil {
		// The order stands; the event stream just missed it.
		log.WithField("order_id", order.ID).Warn("Failed to publish order event: ", err)
	}

	c.JSON(http.StatusOK, models.OrderToResponse(order))
}
