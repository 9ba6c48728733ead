package handler

import (
	"net/http"

	"kasir/internal/domain/model"
	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /cartのHTTP（開いているカートは1つだけ）
type CartHandler struct {
	engine *usecase.CartEngine
}

// DI
func NewCartHandler(engine *usecase.CartEngine) *CartHandler {
	return &CartHandler{engine: engine}
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
}

type AdjustCartItemRequest struct {
	Delta int64 `json:"delta"`
}

type CartLineResponse struct {
	ID       int64                 `json:"id"`
	Product  model.ProductSnapshot `json:"product"`
	Quantity int64                 `json:"quantity"`
	Subtotal decimal.Decimal       `json:"subtotal"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int64              `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
}

func toCartResponse(cart model.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, CartLineResponse{
			ID:       l.ID(),
			Product:  l.Product,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		})
	}
	return CartResponse{Lines: lines, ItemCount: cart.ItemCount(), Total: cart.Total()}
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.DELETE("", h.discard)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.adjustItem)
	g.DELETE("/items/:id", h.removeItem)
	g.POST("/checkout", h.checkout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	return c.JSON(http.StatusOK, toCartResponse(h.engine.Cart()))
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	cart, err := h.engine.AddToCart(c.Request().Context(), req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) adjustItem(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	var req AdjustCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	cart, err := h.engine.AdjustQuantity(c.Request().Context(), id, req.Delta)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) removeItem(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}

	cart, err := h.engine.RemoveFromCart(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) discard(c echo.Context) error {
	if err := h.engine.Discard(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(h.engine.Cart()))
}

func (h *CartHandler) checkout(c echo.Context) error {
	t, err := h.engine.Checkout(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, usecase.ToReceipt(t))
}
