package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/tracker"
)

type ExportHandler struct {
	Tracker *tracker.Service
}

func (h *ExportHandler) Register(r *gin.Engine) {
	r.POST("/api/v1/export", h.export)
}

func (h *ExportHandler) export(c *gin.Context) {
	if h.Tracker == nil {
		Error(c, http.StatusInternalServerError, "tracker unavailable", nil)
		return
	}
	path, err := h.Tracker.ExportLatest()
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"path": path}, nil)
}
