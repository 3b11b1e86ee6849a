package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *Client {
	c := NewClientWithOptions(Options{
		BaseURL:        serverURL,
		RateLimit:      time.Millisecond,
		InitialBackoff: time.Millisecond,
	})
	return c
}

func TestNewClient(t *testing.T) {
	client := NewClient()

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.httpClient == nil {
		t.Error("httpClient is nil")
	}
	if client.rateLimiter == nil {
		t.Error("rateLimiter is nil")
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultBaseURL)
	}
}

func TestClient_SearchPrintings_FollowsPages(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			if r.URL.Path != "/cards/search" {
				t.Errorf("Unexpected path: %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("unique"); got != "prints" {
				t.Errorf("unique = %q, want prints", got)
			}
			if got := r.URL.Query().Get("order"); got != "usd" {
				t.Errorf("order = %q, want usd", got)
			}
			if got := r.URL.Query().Get("q"); got != `!"Lightning Bolt" game:paper` {
				t.Errorf("q = %q", got)
			}
			w.Write([]byte(`{"object":"list","has_more":true,"next_page":"` + server.URL + `/cards/search?page=2",
				"data":[{"id":"a","name":"Lightning Bolt","set":"lea"}]}`))
		case "2":
			w.Write([]byte(`{"object":"list","has_more":false,"data":[{"id":"b","name":"Lightning Bolt","set":"m10"}]}`))
		}
	}))
	defer server.Close()

	cards, err := newTestClient(server.URL).SearchPrintings(context.Background(), "Lightning Bolt")
	if err != nil {
		t.Fatalf("SearchPrintings failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("Expected 2 printings, got %d", len(cards))
	}
	if cards[0].ID != "a" || cards[1].ID != "b" {
		t.Errorf("Printings out of catalog order: %s, %s", cards[0].ID, cards[1].ID)
	}
}

func TestClient_NotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No cards found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchPrintings(context.Background(), "Nonexistent Card")
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected NotFoundError, got: %T %v", err, err)
	}
}

func TestClient_RateLimitRetry(t *testing.T) {
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		w.Header().Set("Content-Type", "application/json")
		if attemptCount < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"object":"error","code":"rate_limit","status":429}`))
			return
		}
		w.Write([]byte(`{"id":"test","name":"Test Card"}`))
	}))
	defer server.Close()

	card, err := newTestClient(server.URL).Named(context.Background(), "test card")
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}
	if attemptCount != 2 {
		t.Errorf("Expected 2 attempts, got %d", attemptCount)
	}
	if card.Name != "Test Card" {
		t.Errorf("Expected card name 'Test Card', got '%s'", card.Name)
	}
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	attemptCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attemptCount++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var slept []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	var card Card
	if err := client.doRequest(context.Background(), server.URL, &card); err == nil {
		t.Fatal("Expected error after max retries, got nil")
	}
	if attemptCount != maxRetries+1 {
		t.Errorf("Expected %d attempts, got %d", maxRetries+1, attemptCount)
	}
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("backoff[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestClient_Autocomplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/autocomplete" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"object":"catalog","total_values":2,"data":["Lightning Bolt","Lightning Helix"]}`))
	}))
	defer server.Close()

	names, err := newTestClient(server.URL).Autocomplete(context.Background(), "light")
	if err != nil {
		t.Fatalf("Autocomplete failed: %v", err)
	}
	if len(names) != 2 || names[1] != "Lightning Helix" {
		t.Errorf("Unexpected names: %v", names)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{invalid json}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Named(context.Background(), "x"); err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
}

func TestClient_UserAgentAndAccept(t *testing.T) {
	var ua, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, _ = newTestClient(server.URL).Named(context.Background(), "x")

	if ua != "MTG-Price-Finder/1.0" {
		t.Errorf("Expected User-Agent 'MTG-Price-Finder/1.0', got '%s'", ua)
	}
	if accept != "application/json" {
		t.Errorf("Expected Accept header 'application/json', got '%s'", accept)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "NotFoundError", err: &NotFoundError{URL: "test"}, expected: true},
		{name: "Other error", err: &APIError{Status: 500}, expected: false},
		{name: "Nil error", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}
