package store

import (
	"context"
	"sync"
	"time"

	"storefront/internal/models"
)

// Memory is an in-process Store used in development and tests. A single
// RWMutex guards all maps; writes that touch stock therefore serialize,
// which is what makes DecrementStock a safe conditional decrement.
type Memory struct {
	mu sync.RWMutex

	items   map[string]*models.Item
	itemIDs []string

	orders   map[string]*models.Order
	orderIDs []string

	contacts   map[string]*models.Contact
	contactIDs []string

	users       map[string]*models.User
	userByName  map[string]string
	tokenByKey  map[string]*models.Token
	tokenByUser map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:       make(map[string]*models.Item),
		orders:      make(map[string]*models.Order),
		contacts:    make(map[string]*models.Contact),
		users:       make(map[string]*models.User),
		userByName:  make(map[string]string),
		tokenByKey:  make(map[string]*models.Token),
		tokenByUser: make(map[string]string),
	}
}

func (m *Memory) SaveItem(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		m.itemIDs = append(m.itemIDs, item.ID)
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *Memory) GetItem(_ context.Context, id string) (*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *Memory) ListItems(_ context.Context) ([]*models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Item, 0, len(m.itemIDs))
	for _, id := range m.itemIDs {
		cp := *m.items[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) DecrementStock(_ context.Context, id string, qty int) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if qty > item.Stock {
		return nil, ErrNotEnoughStock
	}
	item.Stock -= qty
	item.Modified = time.Now().UTC()
	cp := *item
	return &cp, nil
}

func (m *Memory) RestoreStock(_ context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Stock += qty
	item.Modified = time.Now().UTC()
	return nil
}

func (m *Memory) SaveOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; !ok {
		m.orderIDs = append(m.orderIDs, order.ID)
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *Memory) ListOrders(_ context.Context) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Order, 0, len(m.orderIDs))
	for _, id := range m.orderIDs {
		cp := *m.orders[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) SaveContact(_ context.Context, contact *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contacts[contact.ID]; !ok {
		m.contactIDs = append(m.contactIDs, contact.ID)
	}
	cp := *contact
	m.contacts[contact.ID] = &cp
	return nil
}

func (m *Memory) ListContacts(_ context.Context) ([]*models.Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Contact, 0, len(m.contactIDs))
	for _, id := range m.contactIDs {
		cp := *m.contacts[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) SaveUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.userByName[user.Username]; ok && existing != user.ID {
		return ErrDuplicate
	}
	cp := *user
	m.users[user.ID] = &cp
	m.userByName[user.Username] = user.ID
	return nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.userByName[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) SaveToken(_ context.Context, token *models.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	m.tokenByKey[token.Key] = &cp
	m.tokenByUser[token.UserID] = token.Key
	return nil
}

func (m *Memory) GetTokenByKey(_ context.Context, key string) (*models.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokenByKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (m *Memory) GetTokenByUser(_ context.Context, userID string) (*models.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.tokenByUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.tokenByKey[key]
	return &cp, nil
}
