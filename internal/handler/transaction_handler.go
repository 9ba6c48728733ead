package handler

import (
	"net/http"

	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /transactions 取引履歴（参照のみ）
type TransactionHandler struct {
	uc *usecase.TransactionUsecase
}

// DI
func NewTransactionHandler(uc *usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

func (h *TransactionHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/transactions", h.list)
	e.GET("/transactions/:id", h.detail)
}

func (h *TransactionHandler) list(c echo.Context) error {
	items, err := h.uc.ListTransactions(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	out := make([]usecase.Receipt, 0, len(items))
	for _, t := range items {
		out = append(out, usecase.ToReceipt(t))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) detail(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	r, err := h.uc.GetReceipt(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
