package coingecko

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSimplePriceParsesPartialResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/simple/price" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("ids") != "bitcoin,ethereum,unknowncoin" {
			t.Fatalf("unexpected ids %q", q.Get("ids"))
		}
		if q.Get("vs_currencies") != "usd" {
			t.Fatalf("unexpected vs_currencies %q", q.Get("vs_currencies"))
		}
		if q.Get("include_24hr_change") != "true" {
			t.Fatalf("unexpected include_24hr_change %q", q.Get("include_24hr_change"))
		}
		w.Header().Set("Content-Type", "application/json")
		// unknowncoin is absent; ethereum has a null change.
		_, _ = w.Write([]byte(`{
			"bitcoin": {"usd": 45000.5, "usd_24h_change": -2.13},
			"ethereum": {"usd": 3000, "usd_24h_change": null}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	quotes, err := c.SimplePrice(context.Background(), []string{"bitcoin", "ethereum", "unknowncoin"}, "USD")
	if err != nil {
		t.Fatalf("SimplePrice: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	btc, ok := quotes["bitcoin"]
	if !ok {
		t.Fatalf("missing bitcoin quote")
	}
	if math.Abs(btc.Price-45000.5) > 1e-9 {
		t.Fatalf("bitcoin price = %v", btc.Price)
	}
	if math.Abs(btc.Change24h-(-2.13)) > 1e-9 {
		t.Fatalf("bitcoin change = %v", btc.Change24h)
	}
	eth, ok := quotes["ethereum"]
	if !ok {
		t.Fatalf("missing ethereum quote")
	}
	if eth.Change24h != 0 {
		t.Fatalf("null change should decode to 0, got %v", eth.Change24h)
	}
	if _, ok := quotes["unknowncoin"]; ok {
		t.Fatalf("unknowncoin should be absent")
	}
}

func TestSimplePriceEmptyIDsSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected")
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	quotes, err := c.SimplePrice(context.Background(), []string{" ", ""}, "usd")
	if err != nil {
		t.Fatalf("SimplePrice: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected empty result, got %v", quotes)
	}
}

func TestSimplePriceAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":{"error_code":429}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.SimplePrice(context.Background(), []string{"bitcoin"}, "usd")
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", apiErr.Status)
	}
}

func TestSimplePriceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.SimplePrice(ctx, []string{"bitcoin"}, "usd"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
