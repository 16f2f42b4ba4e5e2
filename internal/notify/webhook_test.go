package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/models"
)

func TestWebhookPostsContactSubmission(t *testing.T) {
	received := make(chan models.ContactResponse, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload models.ContactResponse
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding webhook payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := NewWebhook(server.URL, "notify-test")
	contact := models.NewContact("Jordan", "jordan@example.com", "hello there")
	w.ContactSubmitted(context.Background(), contact)

	select {
	case payload := <-received:
		if payload.Name != "Jordan" || payload.Email != "jordan@example.com" || payload.Message != "hello there" {
			t.Errorf("unexpected payload: %+v", payload)
		}
	default:
		t.Fatal("webhook endpoint never received the submission")
	}
}

func TestWebhookFailureDoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := NewWebhook(server.URL, "notify-test-failures")
	contact := models.NewContact("Sam", "sam@example.com", "a message")
	// Repeated failures should trip the breaker, never the caller.
	for i := 0; i < 5; i++ {
		w.ContactSubmitted(context.Background(), contact)
	}
}

func TestNoopIsSafe(t *testing.T) {
	Noop{}.ContactSubmitted(context.Background(), models.NewContact("x", "x@example.com", "y"))
}
