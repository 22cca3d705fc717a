package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/history"
	"cryptofolio/internal/models"
)

func TestPerformanceLatest_EmptyHistoryIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	(&PerformanceHandler{History: &history.Store{}}).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/performance/latest", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404, body=%s", w.Code, w.Body.String())
	}
}

func TestPerformanceLatest_ReturnsNewest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hist := &history.Store{MaxEntries: 10, MaxAge: 24 * time.Hour}
	hist.Append(context.Background(), &models.Snapshot{
		Timestamp:         time.Now().UTC(),
		TotalCurrentValue: 31200,
	})
	r := gin.New()
	(&PerformanceHandler{History: hist}).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/performance/latest", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "31200") {
		t.Fatalf("snapshot missing from body: %s", w.Body.String())
	}
}

func TestAlerts_EmptyHistoryIsQuiet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	(&AlertHandler{History: &history.Store{}}).Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Fatalf("want empty alert list, got: %s", w.Body.String())
	}
}
