package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/stock"
	"storefront/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	server *httptest.Server
	client *resty.Client
	store  *store.Memory
	token  string
	items  []*models.Item
}

// newFixture stands up the full router on a memory store with the demo
// catalog and one user, mirroring production wiring minus the broker and
// webhook.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	items := []*models.Item{
		models.NewItem("Demo item 1", "This is a description for demo 1", 500, 20),
		models.NewItem("Demo item 2", "This is a description for demo 2", 700, 15),
		models.NewItem("Demo item 3", "This is a description for demo 3", 300, 18),
	}
	for _, item := range items {
		if err := st.SaveItem(ctx, item); err != nil {
			t.Fatalf("seeding item: %v", err)
		}
	}

	authService := auth.NewService(st)
	_, token, err := authService.CreateUser(ctx, "testuser1", "testuser1@test.com", "this_is_a_test")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	router := New(st, stock.NewManager(st), authService, notify.Noop{}, events.Noop{}).Routes()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{
		server: server,
		client: resty.New().SetBaseURL(server.URL),
		store:  st,
		token:  token.Key,
		items:  items,
	}
}

func (f *fixture) authed() *resty.Request {
	return f.client.R().SetHeader("Authorization", "Token "+f.token)
}

func TestContactRoundTrip(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.R().
		SetBody(map[string]string{
			"name":    "Jordan",
			"email":   "jordan@example.com",
			"message": "I would like to know more",
		}).
		Post("/contact/")
	if err != nil {
		t.Fatalf("POST /contact/: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d, body: %s", resp.StatusCode(), resp.String())
	}

	var out models.ContactResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Name != "Jordan" || out.Email != "jordan@example.com" || out.Message != "I would like to know more" {
		t.Errorf("submission did not round-trip: %+v", out)
	}

	contacts, _ := f.store.ListContacts(context.Background())
	if len(contacts) != 1 {
		t.Errorf("expected 1 stored contact, got %d", len(contacts))
	}
}

func TestContactValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		body      interface{}
		wantField string
	}{
		{
			name:      "invalid email",
			body:      map[string]string{"name": "Jordan", "email": "not-an-email", "message": "hi"},
			wantField: "email",
		},
		{
			name:      "missing name",
			body:      map[string]string{"email": "jordan@example.com", "message": "hi"},
			wantField: "name",
		},
		{
			name:      "missing message",
			body:      map[string]string{"name": "Jordan", "email": "jordan@example.com"},
			wantField: "message",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.client.R().SetBody(tt.body).Post("/contact/")
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode() != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode())
			}
			var out struct {
				Errors map[string]string `json:"errors"`
			}
			if err := json.Unmarshal(resp.Body(), &out); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if _, ok := out.Errors[tt.wantField]; !ok {
				t.Errorf("expected a field error for %q, got %v", tt.wantField, out.Errors)
			}
		})
	}
}

func TestContactMalformedBody(t *testing.T) {
	f := newFixture(t)
	resp, err := f.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody("{not json").
		Post("/contact/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode())
	}
}

func TestCatalogRequiresToken(t *testing.T) {
	f := newFixture(t)

	paths := []string{"/item/", "/item/" + f.items[0].ID + "/", "/order/"}
	for _, path := range paths {
		resp, err := f.client.R().Get(path)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode() != http.StatusUnauthorized {
			t.Errorf("GET %s without token: status = %d, want 401", path, resp.StatusCode())
		}
	}

	resp, err := f.client.R().
		SetBody(models.CreateOrderRequest{Item: f.items[0].ID, Quantity: 1}).
		Post("/order/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusUnauthorized {
		t.Errorf("POST /order/ without token: status = %d, want 401", resp.StatusCode())
	}
}

func TestListAndRetrieveItems(t *testing.T) {
	f := newFixture(t)

	resp, err := f.authed().Get("/item/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	var list []models.ItemResponse
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != len(f.items) {
		t.Fatalf("listed %d items, want %d", len(list), len(f.items))
	}
	if list[0].Title != "Demo item 1" || list[0].Stock != 20 || list[0].Price != 500 {
		t.Errorf("unexpected first item: %+v", list[0])
	}

	for _, item := range f.items {
		resp, err := f.authed().Get("/item/" + item.ID + "/")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode() != http.StatusOK {
			t.Errorf("GET /item/%s/: status = %d", item.ID, resp.StatusCode())
		}
	}

	resp, err = f.authed().Get("/item/does-not-exist/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Errorf("missing item: status = %d, want 404", resp.StatusCode())
	}
}

func TestCreateOrderFlow(t *testing.T) {
	f := newFixture(t)
	item := f.items[0] // stock 20, price 500

	resp, err := f.authed().
		SetBody(models.CreateOrderRequest{Item: item.ID, Quantity: 5}).
		Post("/order/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d, body: %s", resp.StatusCode(), resp.String())
	}
	var created models.OrderResponse
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Quantity != 5 || created.Item != item.ID || created.ID == "" {
		t.Errorf("unexpected order: %+v", created)
	}

	// Stock dropped from 20 to 15.
	resp, err = f.authed().Get("/item/" + item.ID + "/")
	if err != nil {
		t.Fatal(err)
	}
	var after models.ItemResponse
	if err := json.Unmarshal(resp.Body(), &after); err != nil {
		t.Fatal(err)
	}
	if after.Stock != 15 {
		t.Errorf("stock after order = %d, want 15", after.Stock)
	}

	// The order shows up in list and retrieve.
	resp, err = f.authed().Get("/order/")
	if err != nil {
		t.Fatal(err)
	}
	var orders []models.OrderResponse
	if err := json.Unmarshal(resp.Body(), &orders); err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].ID != created.ID {
		t.Errorf("unexpected order list: %+v", orders)
	}

	resp, err = f.authed().Get("/order/" + created.ID + "/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Errorf("GET /order/%s/: status = %d", created.ID, resp.StatusCode())
	}

	resp, err = f.authed().Get("/order/does-not-exist/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Errorf("missing order: status = %d, want 404", resp.StatusCode())
	}
}

func TestCreateOrderNotEnoughStock(t *testing.T) {
	f := newFixture(t)
	item := f.items[0] // stock 20

	resp, err := f.authed().
		SetBody(models.CreateOrderRequest{Item: item.ID, Quantity: 21}).
		Post("/order/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode())
	}
	var out struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Detail != "NotEnoughStock" {
		t.Errorf("detail = %q, want NotEnoughStock", out.Detail)
	}

	// No order created, stock unchanged.
	stored, _ := f.store.GetItem(context.Background(), item.ID)
	if stored.Stock != 20 {
		t.Errorf("stock = %d, want 20", stored.Stock)
	}
	orders, _ := f.store.ListOrders(context.Background())
	if len(orders) != 0 {
		t.Errorf("rejected order created %d orders", len(orders))
	}
}

func TestCreateOrderAtExactStock(t *testing.T) {
	f := newFixture(t)
	item := f.items[1] // stock 15

	resp, err := f.authed().
		SetBody(models.CreateOrderRequest{Item: item.ID, Quantity: 15}).
		Post("/order/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d, body: %s", resp.StatusCode(), resp.String())
	}
	stored, _ := f.store.GetItem(context.Background(), item.ID)
	if stored.Stock != 0 {
		t.Errorf("stock = %d, want 0", stored.Stock)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing item", map[string]interface{}{"quantity": 1}},
		{"zero quantity", map[string]interface{}{"item": f.items[0].ID, "quantity": 0}},
		{"negative quantity", map[string]interface{}{"item": f.items[0].ID, "quantity": -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.authed().SetBody(tt.body).Post("/order/")
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode() != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode())
			}
		})
	}

	resp, err := f.authed().
		SetBody(models.CreateOrderRequest{Item: "does-not-exist", Quantity: 1}).
		Post("/order/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Errorf("unknown item: status = %d, want 404", resp.StatusCode())
	}
}

func TestObtainTokenEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.R().
		SetBody(models.ObtainTokenRequest{Username: "testuser1", Password: "this_is_a_test"}).
		Post("/api-token-auth/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d, body: %s", resp.StatusCode(), resp.String())
	}
	var out models.TokenResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Token != f.token {
		t.Errorf("token = %q, want %q", out.Token, f.token)
	}

	resp, err = f.client.R().
		SetBody(models.ObtainTokenRequest{Username: "testuser1", Password: "wrong"}).
		Post("/api-token-auth/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusBadRequest {
		t.Errorf("bad credentials: status = %d, want 400", resp.StatusCode())
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, err := f.client.R().Get("/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode())
	}
}
