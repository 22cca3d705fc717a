package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cryptofolio/internal/ledger"
	"cryptofolio/internal/repository"
)

type TransactionHandler struct {
	Ledger *ledger.Service
	Repo   repository.Repository
}

func (h *TransactionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/transactions")
	group.POST("", h.create)
	group.GET("", h.list)
}

type createTransactionRequest struct {
	Symbol       string     `json:"symbol"`
	CoinID       string     `json:"coin_id"`
	Kind         string     `json:"kind"`
	Quantity     float64    `json:"quantity"`
	PricePerUnit float64    `json:"price_per_unit"`
	Timestamp    *time.Time `json:"timestamp"`
}

func (h *TransactionHandler) create(c *gin.Context) {
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "ledger unavailable", nil)
		return
	}
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	input := ledger.TransactionInput{
		Symbol:       req.Symbol,
		CoinID:       req.CoinID,
		Kind:         req.Kind,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
	}
	if req.Timestamp != nil {
		input.Timestamp = req.Timestamp.UTC()
	}

	tx, err := h.Ledger.ApplyTransaction(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidInput):
			Error(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, ledger.ErrInsufficientQuantity), errors.Is(err, ledger.ErrUnknownSymbolSell):
			Error(c, http.StatusConflict, err.Error(), nil)
		default:
			Error(c, http.StatusInternalServerError, err.Error(), nil)
		}
		return
	}
	Ok(c, tx, nil)
}

func (h *TransactionHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := repository.ListTransactionsParams{
		Symbol: strQueryPtr(c, "symbol"),
		Since:  timeQueryPtr(c, "since"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	items, err := h.Repo.ListTransactions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountTransactions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}
