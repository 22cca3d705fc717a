package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/ledger"
)

type PortfolioHandler struct {
	Ledger *ledger.Service
}

func (h *PortfolioHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/portfolio", h.get)
}

func (h *PortfolioHandler) get(c *gin.Context) {
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "ledger unavailable", nil)
		return
	}
	Ok(c, h.Ledger.View(), nil)
}
