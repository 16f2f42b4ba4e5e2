// Package store is the persistence boundary for catalog items, orders,
// contact submissions and auth identities.
package store

import (
	"context"
	"errors"

	"storefront/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotEnoughStock is returned by DecrementStock when fewer units
	// remain than requested.
	ErrNotEnoughStock = errors.New("not enough stock")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// Store persists every record kind the API serves.
type Store interface {
	SaveItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id string) (*models.Item, error)
	ListItems(ctx context.Context) ([]*models.Item, error)

	// DecrementStock atomically reduces an item's stock by qty. It fails
	// with ErrNotEnoughStock when fewer than qty units remain, leaving the
	// stock untouched, and returns the item as stored after the decrement.
	// Concurrent callers against the same item are serialized here; this
	// is the sole authority for reducing stock.
	DecrementStock(ctx context.Context, id string, qty int) (*models.Item, error)

	// RestoreStock adds qty units back, used to compensate when an order
	// could not be recorded after its stock was taken.
	RestoreStock(ctx context.Context, id string, qty int) error

	SaveOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)

	SaveContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context) ([]*models.Contact, error)

	SaveUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	SaveToken(ctx context.Context, token *models.Token) error
	GetTokenByKey(ctx context.Context, key string) (*models.Token, error)
	GetTokenByUser(ctx context.Context, userID string) (*models.Token, error)
}
