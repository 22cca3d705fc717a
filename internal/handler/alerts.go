package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/alert"
	"cryptofolio/internal/config"
	"cryptofolio/internal/history"
	"cryptofolio/internal/models"
)

// AlertHandler re-derives alerts from the latest snapshot on demand;
// alerts are never stored.
type AlertHandler struct {
	History *history.Store
	Alerts  config.AlertsConfig
}

func (h *AlertHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/alerts", h.list)
}

func (h *AlertHandler) list(c *gin.Context) {
	if h.History == nil {
		Error(c, http.StatusInternalServerError, "history unavailable", nil)
		return
	}
	snap := h.History.Latest()
	alerts := alert.Evaluate(snap, h.Alerts)
	if alerts == nil {
		alerts = []models.Alert{}
	}
	var meta map[string]any
	if snap != nil {
		meta = map[string]any{"snapshot_at": snap.Timestamp}
	}
	Ok(c, alerts, meta)
}
