package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/inventory-api/internal/apperr"
	"github.com/MikeMC777/inventory-api/internal/auth"
	"github.com/MikeMC777/inventory-api/internal/httpx"
	"github.com/MikeMC777/inventory-api/internal/order"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

//
// ---------- STUBS & FAKES ----------
//

// stubEngine implements OrderPlacer in memory.
type stubEngine struct {
	lastUserID int64
	lastItems  []order.ItemRequest
	lastKey    string
	ret        *order.Order
	err        error
}

func (s *stubEngine) PlaceOrder(ctx context.Context, userID int64, items []order.ItemRequest, idemKey string) (*order.Order, error) {
	s.lastUserID = userID
	s.lastItems = items
	s.lastKey = idemKey
	if s.err != nil {
		return nil, s.err
	}
	return s.ret, nil
}

// stubOrderRepo implements order.Repository and records which scope was read.
type stubOrderRepo struct {
	all        []order.Order
	byUser     map[int64][]order.Order
	calledAll  bool
	calledUser int64
}

func (s *stubOrderRepo) ListAll(ctx context.Context) ([]order.Order, error) {
	s.calledAll = true
	return s.all, nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	s.calledUser = userID
	return s.byUser[userID], nil
}

var testTokens = auth.NewManager("test-secret", time.Hour)

func bearerFor(t *testing.T, userID int64, role string) string {
	t.Helper()
	tok, err := testTokens.Issue(userID, "test@example.com", role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + tok
}

func orderRouter(eng OrderPlacer, repo order.Repository) *gin.Engine {
	r := gin.New()
	grp := r.Group("/api", httpx.Auth(testTokens))
	grp.POST("/orders", createOrderHandler(eng, nil))
	grp.GET("/orders", listOrdersHandler(repo))
	return r
}

//
// ---------- TESTS ----------
//

func TestCreateOrder_HappyPath(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{ret: &order.Order{
		ID: 1, UserID: 7, Status: order.StatusPending, TotalAmount: "30.00",
		Lines: []order.Line{{ID: 1, OrderID: 1, ProductID: 42, Quantity: 3, PriceAtOrder: "10.00"}},
	}}
	r := orderRouter(eng, &stubOrderRepo{})

	body := `{"items":[{"product_id":42,"quantity":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, 7, "USER"))
	req.Header.Set("Idempotency-Key", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if eng.lastUserID != 7 {
		t.Fatalf("requester id from token=%d, expected 7", eng.lastUserID)
	}
	if eng.lastKey != "abc-123" {
		t.Fatalf("idempotency key=%q", eng.lastKey)
	}
	if len(eng.lastItems) != 1 || eng.lastItems[0].ProductID != 42 {
		t.Fatalf("items=%+v", eng.lastItems)
	}

	var resp struct {
		Order order.Order `json:"order"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.Order.TotalAmount != "30.00" || len(resp.Order.Lines) != 1 {
		t.Fatalf("order=%+v", resp.Order)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{err: apperr.InsufficientStock(42, "widget", 2, 3)}
	r := orderRouter(eng, &stubOrderRepo{})

	body := `{"items":[{"product_id":42,"quantity":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, 7, "USER"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status=%d, expected 409", w.Code)
	}
	var resp struct {
		ProductID int64 `json:"product_id"`
		Available int   `json:"available"`
		Requested int   `json:"requested"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.ProductID != 42 || resp.Available != 2 || resp.Requested != 3 {
		t.Fatalf("shortfall context=%+v body=%s", resp, w.Body.String())
	}
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{err: apperr.ProductNotFound(999)}
	r := orderRouter(eng, &stubOrderRepo{})

	body := `{"items":[{"product_id":999,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, 7, "USER"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// not found maps to 404, not the 400 of older revisions
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, expected 404", w.Code)
	}
}

func TestCreateOrder_NoToken(t *testing.T) {
	t.Parallel()

	r := orderRouter(&stubEngine{}, &stubOrderRepo{})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(`{"items":[]}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, expected 401", w.Code)
	}
}

func TestListOrders_UserScope(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{byUser: map[int64][]order.Order{
		7: {{ID: 1, UserID: 7, Status: order.StatusPending, TotalAmount: "50.00", Lines: []order.Line{}}},
	}}
	r := orderRouter(&stubEngine{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", bearerFor(t, 7, "USER"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.calledAll || repo.calledUser != 7 {
		t.Fatalf("wrong scope: calledAll=%v calledUser=%d", repo.calledAll, repo.calledUser)
	}
	var orders []order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(orders) != 1 || orders[0].UserID != 7 {
		t.Fatalf("orders=%+v", orders)
	}
}

func TestListOrders_AdminScope(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{all: []order.Order{
		{ID: 2, UserID: 8, UserEmail: "other@example.com", Status: order.StatusPending, TotalAmount: "20.00", Lines: []order.Line{}},
		{ID: 1, UserID: 7, UserEmail: "test@example.com", Status: order.StatusPending, TotalAmount: "50.00", Lines: []order.Line{}},
	}}
	r := orderRouter(&stubEngine{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", bearerFor(t, 1, "ADMIN"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !repo.calledAll {
		t.Fatalf("admin listing did not use the all-users scope")
	}
	var orders []order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(orders) != 2 || orders[0].UserEmail == "" {
		t.Fatalf("orders=%+v", orders)
	}
}
