package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the activation state of a record.
type Status int

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
)

// Base carries the generated identifier shared by every record.
type Base struct {
	ID string `json:"id"`
}

// Timestamps records creation and last-modification times.
type Timestamps struct {
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Activator tracks the soft activation lifecycle of a record.
type Activator struct {
	Status         Status     `json:"status"`
	ActivateDate   *time.Time `json:"activate_date,omitempty"`
	DeactivateDate *time.Time `json:"deactivate_date,omitempty"`
}

// TitleDescription is the pair of free-text fields shared by catalog
// entries and contact submissions.
type TitleDescription struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// newLifecycle returns the field groups for a freshly created, active record.
func newLifecycle() (Base, Timestamps, Activator) {
	now := time.Now().UTC()
	return Base{ID: uuid.NewString()},
		Timestamps{Created: now, Modified: now},
		Activator{Status: StatusActive, ActivateDate: &now}
}

// Item is a single catalog entry for the shop.
type Item struct {
	Base
	Timestamps
	Activator
	TitleDescription
	// Stock is mutated only through the stock manager.
	Stock int `json:"stock"`
	// Price is in minor currency units (pence).
	Price int `json:"price"`
}

// NewItem creates an active catalog entry.
func NewItem(title, description string, price, stock int) *Item {
	base, ts, act := newLifecycle()
	return &Item{
		Base:             base,
		Timestamps:       ts,
		Activator:        act,
		TitleDescription: TitleDescription{Title: title, Description: description},
		Stock:            stock,
		Price:            price,
	}
}

// Amount converts the price from pence to pounds.
func (i *Item) Amount() float64 {
	return float64(i.Price) / 100
}

// Order records a quantity of one item requested by one user. Orders are
// created once and never mutated afterwards.
type Order struct {
	Base
	Timestamps
	Activator
	ItemID   string `json:"item"`
	UserID   string `json:"user"`
	Quantity int    `json:"quantity"`
}

// NewOrder creates an order referencing one item and one user.
func NewOrder(itemID, userID string, quantity int) *Order {
	base, ts, act := newLifecycle()
	return &Order{
		Base:       base,
		Timestamps: ts,
		Activator:  act,
		ItemID:     itemID,
		UserID:     userID,
		Quantity:   quantity,
	}
}

// Contact is a contact-form submission. External clients call the title
// "name" and the description "message".
type Contact struct {
	Base
	Timestamps
	Activator
	TitleDescription
	Email string `json:"email"`
}

// NewContact creates a contact submission, mapping the external field
// names onto the shared title/description pair.
func NewContact(name, email, message string) *Contact {
	base, ts, act := newLifecycle()
	return &Contact{
		Base:             base,
		Timestamps:       ts,
		Activator:        act,
		TitleDescription: TitleDescription{Title: name, Description: message},
		Email:            email,
	}
}

// User is an authenticated identity.
type User struct {
	Base
	Timestamps
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"password_hash"`
}

// NewUser creates a user record with an already-hashed password.
func NewUser(username, email string, passwordHash []byte) *User {
	base, ts, _ := newLifecycle()
	return &User{
		Base:         base,
		Timestamps:   ts,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// Token is the static bearer credential identifying one user.
type Token struct {
	Key     string    `json:"key"`
	UserID  string    `json:"user"`
	Created time.Time `json:"created"`
}
