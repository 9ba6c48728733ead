package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"kasir/internal/handler"
	"kasir/internal/infra/db"
	infraRepo "kasir/internal/infra/repository"
	"kasir/internal/logger"
	"kasir/internal/server"
	"kasir/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

// newTestClient serves the full route table over a private in-memory store.
func newTestClient(t *testing.T) *TestClient {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(gdb, false, logger.Discard()))

	feed := infraRepo.NewChangeFeed()
	productRepo := infraRepo.NewProductGormRepository(gdb, feed)
	transactionRepo := infraRepo.NewTransactionGormRepository(gdb, feed)
	txManager := infraRepo.NewTxManagerGorm(gdb, feed)

	engine := usecase.NewCartEngine(txManager, realClock{}, uuidGenerator{}, logger.Discard())
	productUC := usecase.NewProductUsecase(productRepo, feed, engine, logger.Discard())
	transactionUC := usecase.NewTransactionUsecase(transactionRepo, feed, logger.Discard())

	e := server.New(logger.Discard(),
		handler.NewProductHandler(productUC),
		handler.NewCartHandler(engine),
		handler.NewTransactionHandler(transactionUC),
	)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return &TestClient{BaseURL: srv.URL, HTTP: srv.Client()}
}

func (c *TestClient) doJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equal(t, want, resp.StatusCode, "body=%s", string(body))
}

func mustDecode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body=%s", string(body))
	return v
}

type productDTO struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

func (c *TestClient) createProduct(t *testing.T, name string, price string, stock int64) productDTO {
	t.Helper()
	resp, body := c.doJSON(t, http.MethodPost, "/products", map[string]any{
		"name":  name,
		"price": price,
		"stock": stock,
	})
	requireStatus(t, resp, http.StatusCreated, body)
	return mustDecode[productDTO](t, body)
}

func (c *TestClient) stock(t *testing.T, id int64) int64 {
	t.Helper()
	resp, body := c.doJSON(t, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil)
	requireStatus(t, resp, http.StatusOK, body)
	return mustDecode[productDTO](t, body).Stock
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}

func Test_Products_Create_Search_Edit_Delete(t *testing.T) {
	c := newTestClient(t)

	beras := c.createProduct(t, "Beras 5kg", "65000", 10)
	c.createProduct(t, "Minyak Goreng 1L", "18000", 24)

	// blank query lists everything by name
	resp, body := c.doJSON(t, http.MethodGet, "/products", nil)
	requireStatus(t, resp, http.StatusOK, body)
	all := mustDecode[[]productDTO](t, body)
	require.Len(t, all, 2)
	assert.Equal(t, "Beras 5kg", all[0].Name)

	resp, body = c.doJSON(t, http.MethodGet, "/products?q=MINYAK", nil)
	requireStatus(t, resp, http.StatusOK, body)
	found := mustDecode[[]productDTO](t, body)
	require.Len(t, found, 1)
	assert.Equal(t, "Minyak Goreng 1L", found[0].Name)

	resp, body = c.doJSON(t, http.MethodPut, "/products/"+toStr(beras.ID), map[string]any{
		"name":  "Beras 10kg",
		"price": 120000,
		"stock": 4,
	})
	requireStatus(t, resp, http.StatusOK, body)
	edited := mustDecode[productDTO](t, body)
	assert.Equal(t, "Beras 10kg", edited.Name)
	assert.True(t, edited.Price.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, int64(4), edited.Stock)

	resp, body = c.doJSON(t, http.MethodDelete, "/products/"+toStr(beras.ID), nil)
	requireStatus(t, resp, http.StatusNoContent, body)

	resp, body = c.doJSON(t, http.MethodGet, "/products/"+toStr(beras.ID), nil)
	requireStatus(t, resp, http.StatusNotFound, body)
}

func Test_Products_Validation(t *testing.T) {
	c := newTestClient(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty name", map[string]any{"name": " ", "price": 1, "stock": 1}},
		{"missing price", map[string]any{"name": "x", "stock": 1}},
		{"fractional stock", map[string]any{"name": "x", "price": 1, "stock": 1.5}},
		{"negative stock", map[string]any{"name": "x", "price": 1, "stock": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.doJSON(t, http.MethodPost, "/products", tt.body)
			requireStatus(t, resp, http.StatusBadRequest, body)
			assert.NotEmpty(t, mustDecode[handler.ErrorResponse](t, body).Error)
		})
	}

	resp, body := c.doJSON(t, http.MethodGet, "/products", nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Empty(t, mustDecode[[]productDTO](t, body))

	resp, body = c.doJSON(t, http.MethodPut, "/products/abc", map[string]any{"name": "x", "price": 1, "stock": 1})
	requireStatus(t, resp, http.StatusBadRequest, body)

	resp, body = c.doJSON(t, http.MethodPut, "/products/999", map[string]any{"name": "x", "price": 1, "stock": 1})
	requireStatus(t, resp, http.StatusNotFound, body)
}

func Test_Cart_Add_Adjust_Checkout_Receipt(t *testing.T) {
	c := newTestClient(t)

	p := c.createProduct(t, "Beras 5kg", "65000", 10)

	resp, body := c.doJSON(t, http.MethodPost, "/cart/items", handler.AddCartItemRequest{ProductID: p.ID})
	requireStatus(t, resp, http.StatusOK, body)
	assert.Equal(t, int64(9), c.stock(t, p.ID))

	resp, body = c.doJSON(t, http.MethodPatch, "/cart/items/"+toStr(p.ID), handler.AdjustCartItemRequest{Delta: 1})
	requireStatus(t, resp, http.StatusOK, body)
	cart := mustDecode[handler.CartResponse](t, body)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(2), cart.Lines[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(130000)))
	assert.Equal(t, int64(8), c.stock(t, p.ID))

	// over-increase is rejected whole
	resp, body = c.doJSON(t, http.MethodPatch, "/cart/items/"+toStr(p.ID), handler.AdjustCartItemRequest{Delta: 9})
	requireStatus(t, resp, http.StatusConflict, body)
	assert.Equal(t, int64(8), c.stock(t, p.ID))

	// reserved products cannot be deleted
	resp, body = c.doJSON(t, http.MethodDelete, "/products/"+toStr(p.ID), nil)
	requireStatus(t, resp, http.StatusConflict, body)

	resp, body = c.doJSON(t, http.MethodPost, "/cart/checkout", nil)
	requireStatus(t, resp, http.StatusCreated, body)
	receipt := mustDecode[usecase.Receipt](t, body)
	assert.NotEmpty(t, receipt.ReceiptNo)
	assert.Equal(t, int64(2), receipt.ItemCount)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(130000)))
	require.Len(t, receipt.Lines, 1)
	assert.Equal(t, "Beras 5kg", receipt.Lines[0].Name)

	// checkout never touches stock again
	assert.Equal(t, int64(8), c.stock(t, p.ID))

	resp, body = c.doJSON(t, http.MethodGet, "/cart", nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Empty(t, mustDecode[handler.CartResponse](t, body).Lines)

	resp, body = c.doJSON(t, http.MethodGet, "/transactions", nil)
	requireStatus(t, resp, http.StatusOK, body)
	history := mustDecode[[]usecase.Receipt](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, receipt.ReceiptNo, history[0].ReceiptNo)

	resp, body = c.doJSON(t, http.MethodGet, "/transactions/"+toStr(receipt.ID), nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Equal(t, receipt.ReceiptNo, mustDecode[usecase.Receipt](t, body).ReceiptNo)

	resp, body = c.doJSON(t, http.MethodGet, "/transactions/999", nil)
	requireStatus(t, resp, http.StatusNotFound, body)
}

func Test_Cart_Errors(t *testing.T) {
	c := newTestClient(t)

	resp, body := c.doJSON(t, http.MethodPost, "/cart/checkout", nil)
	requireStatus(t, resp, http.StatusUnprocessableEntity, body)

	resp, body = c.doJSON(t, http.MethodPost, "/cart/items", handler.AddCartItemRequest{ProductID: 42})
	requireStatus(t, resp, http.StatusNotFound, body)

	resp, body = c.doJSON(t, http.MethodPost, "/cart/items", handler.AddCartItemRequest{})
	requireStatus(t, resp, http.StatusBadRequest, body)

	empty := c.createProduct(t, "Telur 1kg", "28000", 0)
	resp, body = c.doJSON(t, http.MethodPost, "/cart/items", handler.AddCartItemRequest{ProductID: empty.ID})
	requireStatus(t, resp, http.StatusConflict, body)

	resp, body = c.doJSON(t, http.MethodDelete, "/cart/items/"+toStr(empty.ID), nil)
	requireStatus(t, resp, http.StatusNotFound, body)
}

func Test_Cart_Discard_RestoresStock(t *testing.T) {
	c := newTestClient(t)

	a := c.createProduct(t, "Gula Pasir 1kg", "14500", 15)
	b := c.createProduct(t, "Minyak Goreng 1L", "18000", 24)

	for _, id := range []int64{a.ID, a.ID, b.ID} {
		resp, body := c.doJSON(t, http.MethodPost, "/cart/items", handler.AddCartItemRequest{ProductID: id})
		requireStatus(t, resp, http.StatusOK, body)
	}
	assert.Equal(t, int64(13), c.stock(t, a.ID))

	resp, body := c.doJSON(t, http.MethodDelete, "/cart/items/"+toStr(b.ID), nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Equal(t, int64(24), c.stock(t, b.ID))

	resp, body = c.doJSON(t, http.MethodDelete, "/cart", nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Empty(t, mustDecode[handler.CartResponse](t, body).Lines)
	assert.Equal(t, int64(15), c.stock(t, a.ID))

	resp, body = c.doJSON(t, http.MethodGet, "/transactions", nil)
	requireStatus(t, resp, http.StatusOK, body)
	assert.Empty(t, mustDecode[[]usecase.Receipt](t, body))
}

func Test_RequestID_IsEchoed(t *testing.T) {
	c := newTestClient(t)

	req, err := http.NewRequest(http.MethodGet, c.BaseURL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err := c.HTTP.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}
