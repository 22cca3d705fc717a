package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/history"
	"cryptofolio/internal/repository"
)

type PerformanceHandler struct {
	History *history.Store
	Repo    repository.Repository
}

func (h *PerformanceHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/performance")
	group.GET("/latest", h.latest)
	group.GET("/history", h.list)
}

func (h *PerformanceHandler) latest(c *gin.Context) {
	if h.History == nil {
		Error(c, http.StatusInternalServerError, "history unavailable", nil)
		return
	}
	snap := h.History.Latest()
	if snap == nil {
		Error(c, http.StatusNotFound, "no performance data yet", nil)
		return
	}
	Ok(c, snap, nil)
}

func (h *PerformanceHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListSnapshotsParams{
		Since:  timeQueryPtr(c, "since"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	items, err := h.Repo.ListSnapshots(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSnapshots(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}
