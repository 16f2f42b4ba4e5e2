package models

// CreateContactRequest is the payload for a contact-form submission.
type CreateContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// ContactResponse echoes a stored contact using the external field names.
type ContactResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactToResponse maps the internal title/description fields back to the
// external name/message representation.
func ContactToResponse(c *Contact) ContactResponse {
	return ContactResponse{Name: c.Title, Email: c.Email, Message: c.Description}
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	Item     string `json:"item" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// OrderResponse is the wire representation of an order.
type OrderResponse struct {
	ID       string `json:"id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// OrderToResponse converts a stored order to its wire representation.
func OrderToResponse(o *Order) OrderResponse {
	return OrderResponse{ID: o.ID, Item: o.ItemID, Quantity: o.Quantity}
}

// ItemResponse is the wire representation of a catalog entry.
type ItemResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Stock int    `json:"stock"`
	Price int    `json:"price"`
}

// ItemToResponse converts a stored item to its wire representation.
func ItemToResponse(i *Item) ItemResponse {
	return ItemResponse{ID: i.ID, Title: i.Title, Stock: i.Stock, Price: i.Price}
}

// ObtainTokenRequest carries the credentials exchanged for an API token.
type ObtainTokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse returns the minted or existing token key.
type TokenResponse struct {
	Token string `json:"token"`
}
