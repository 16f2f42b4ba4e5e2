// Package stock enforces the single business invariant of the shop: an
// order must never take more units than an item has, and every accepted
// order reduces the item's stock by exactly its quantity.
package stock

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/store"
)

var (
	// ErrInvalidQuantity is returned when the requested quantity is not positive.
	ErrInvalidQuantity = errors.New("order quantity must be positive")
	// ErrUserRequired is returned when no user identity accompanies the order.
	ErrUserRequired = errors.New("order requires a user identity")
)

// Manager serializes stock mutations through the store's conditional
// decrement. It is safe for concurrent use.
type Manager struct {
	store store.Store
}

// NewManager creates a stock manager on top of a store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// CheckAvailability reports whether qty units of the item can be ordered.
// It is a pure predicate; equality is allowed, so an order may take stock
// to exactly zero.
func CheckAvailability(item *models.Item, qty int) bool {
	return qty <= item.Stock
}

// PlaceOrder validates availability and, if the item has enough units,
// takes them and records an order referencing the item and user.
//
// The pre-check gives a cheap rejection, but the store's DecrementStock is
// the authority: it refuses to go below zero even when two orders for the
// same item race past the pre-check, so at most the available stock is
// ever sold.
func (m *Manager) PlaceOrder(ctx context.Context, itemID, userID string, qty int) (*models.Order, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if userID == "" {
		return nil, ErrUserRequired
	}

	item, err := m.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !CheckAvailability(item, qty) {
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, store.ErrNotEnoughStock
	}

	updated, err := m.store.DecrementStock(ctx, item.ID, qty)
	if err != nil {
		if errors.Is(err, store.ErrNotEnoughStock) {
			// Lost the race against a concurrent order.
			metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	order := models.NewOrder(item.ID, userID, qty)
	if err := m.store.SaveOrder(ctx, order); err != nil {
		// The order was never recorded, so hand the units back.
		if restoreErr := m.store.RestoreStock(ctx, item.ID, qty); restoreErr != nil {
			log.WithFields(log.Fields{
				"item_id":  item.ID,
				"quantity": qty,
			}).Error("Failed to restore stock after order save failure: ", restoreErr)
		}
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("saving order: %w", err)
	}

	metrics.OrdersTotal.WithLabelValues("completed").Inc()
	metrics.InventoryLevel.WithLabelValues(item.ID).Set(float64(updated.Stock))

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"item_id":  item.ID,
		"quantity": qty,
		"stock":    updated.Stock,
	}).Info("Order placed")

	return order, nil
}
