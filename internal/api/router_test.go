package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/delivery-admin/config"
	"github.com/d60-Lab/delivery-admin/internal/api/handler"
	"github.com/d60-Lab/delivery-admin/internal/api/middleware"
	"github.com/d60-Lab/delivery-admin/internal/client"
	"github.com/d60-Lab/delivery-admin/internal/model"
	"github.com/d60-Lab/delivery-admin/internal/repository"
	"github.com/d60-Lab/delivery-admin/internal/service"
	"github.com/d60-Lab/delivery-admin/pkg/database"
	"github.com/d60-Lab/delivery-admin/pkg/response"
)

// ordersServer 模拟订单后端
type ordersServer struct {
	mu        sync.Mutex
	orders    []model.Order
	listCalls int
	shipCalls int
	failShip  bool
}

func (s *ordersServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/getOrders":
		s.listCalls++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"orders": s.orders})
	case "/markAsShipped":
		s.shipCalls++
		var body struct {
			OrderID string `json:"orderId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if s.failShip {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Database unavailable"}`))
			return
		}
		for i := range s.orders {
			if s.orders[i].ID == body.OrderID {
				s.orders[i].IsShipped = true
			}
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *ordersServer) counts() (list, ship int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.shipCalls
}

// inventoryServer 模拟库存后端
type inventoryServer struct {
	mu       sync.Mutex
	products []model.Product
	adds     int
}

func (s *inventoryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	switch r.URL.Path {
	case "/api/products":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"products": s.products})
	case "/api/products/add":
		s.adds++
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.products = append(s.products, model.Product{ProductID: body.ProductID, Quantity: body.Quantity})
		_, _ = w.Write([]byte(`{"message":"Product added successfully"}`))
	case "/api/products/update":
		_ = json.NewDecoder(r.Body).Decode(&body)
		for i := range s.products {
			if s.products[i].ProductID == body.ProductID {
				s.products[i].Quantity += body.Quantity
				_, _ = w.Write([]byte(`{"message":"Quantity updated successfully"}`))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Product not found"}`))
	}
}

type testEnv struct {
	router    *gin.Engine
	orders    *ordersServer
	inventory *inventoryServer
}

func newTestEnv(t *testing.T, auth config.AuthConfig) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Now().UTC()
	orders := &ordersServer{orders: []model.Order{
		{ID: "1", CreatedAt: now, Cart: []model.LineItem{{Name: "Beer", CartQuantity: 2}, {Name: "Chips", CartQuantity: 1}},
			ShippingInfo: &model.ShippingInfo{Name: "Ann", Address: "1 Main St", Phone: "555", ZipCode: "10001"}},
		{ID: "2", CreatedAt: now.Add(-time.Second), IsShipped: true, Cart: []model.LineItem{{Name: "Wine", CartQuantity: 1}}},
	}}
	inventory := &inventoryServer{products: []model.Product{{ProductID: "vodka", Quantity: 5}}}
	ordersSrv := httptest.NewServer(orders)
	inventorySrv := httptest.NewServer(inventory)
	t.Cleanup(ordersSrv.Close)
	t.Cleanup(inventorySrv.Close)

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Tracing:  config.TracingConfig{ServiceName: "delivery-admin-test"},
		Auth:     auth,
	}
	db, err := database.InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, repository.InitSchema(db))

	recorder := service.NewActivityRecorder(repository.NewActivityRepository(db), 64)
	stop := recorder.Start(1)
	t.Cleanup(func() { _ = stop(context.Background()) })

	orderClient := client.NewOrderClient(ordersSrv.URL, client.OrderPaths{List: "/getOrders", Ship: "/markAsShipped"}, ordersSrv.Client())
	inventoryClient := client.NewInventoryClient(inventorySrv.URL, client.InventoryPaths{
		List: "/api/products", Add: "/api/products/add", Update: "/api/products/update",
	}, inventorySrv.Client())

	dash := service.NewDashboardService(orderClient, recorder, time.Hour, time.UTC)
	dash.Start(context.Background())
	t.Cleanup(dash.Close)
	require.Eventually(t, func() bool { return !dash.State().Loading }, 2*time.Second, 10*time.Millisecond)

	inv := service.NewInventoryService(inventoryClient, recorder)
	require.NoError(t, inv.Load(context.Background()))

	authSvc := service.NewAuthService(auth)
	h := handler.NewHandler(dash, service.NewAnalyticsService(dash, time.UTC), inv, recorder, authSvc, 10*time.Second)
	return &testEnv{router: NewRouter(cfg, h, authSvc), orders: orders, inventory: inventory}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) response.Response {
	t.Helper()
	resp := response.Response{Data: data}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDashboardPage_RendersOrders(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	w := env.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = env.get("/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h2>All Orders</h2>")
	assert.Contains(t, body, "Beer")
	assert.Contains(t, body, `rowspan="2"`)
	assert.Contains(t, body, "Ann")
	assert.Contains(t, body, "N/A")
	assert.Equal(t, 1, strings.Count(body, "Mark as Shipped"))
	assert.Contains(t, body, `http-equiv="refresh" content="10"`)
}

func TestMarkShipped_UpdatesLocallyWithoutRefetch(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	w := env.postForm("/dashboard/orders/ship", url.Values{"orderId": {"1"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	body := env.get("/dashboard").Body.String()
	assert.NotContains(t, body, "Mark as Shipped")
	list, ship := env.orders.counts()
	assert.Equal(t, 1, list)
	assert.Equal(t, 1, ship)

	w = env.postJSON("/api/v1/orders/ship", map[string]string{"orderId": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.postJSON("/api/v1/orders/ship", map[string]string{"orderId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, ship = env.orders.counts()
	assert.Equal(t, 1, ship)

	require.Eventually(t, func() bool {
		var list []model.Activity
		decode(t, env.get("/api/v1/activity"), &list)
		return len(list) == 1 && list[0].Target == "1" && list[0].Success
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMarkShipped_BackendFailure(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	env.orders.mu.Lock()
	env.orders.failShip = true
	env.orders.mu.Unlock()

	w := env.postJSON("/api/v1/orders/ship", map[string]string{"orderId": "1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w, nil)
	assert.Equal(t, "Database unavailable", resp.Message)

	assert.Contains(t, env.get("/dashboard").Body.String(), "Database unavailable")
}

func TestMenu_PendingRestartsPolling(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	w := env.postForm("/dashboard/menu", url.Values{"menu": {"Pending Orders"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Eventually(t, func() bool {
		list, _ := env.orders.counts()
		return list == 2
	}, 2*time.Second, 10*time.Millisecond)

	var view service.DashboardView
	decode(t, env.get("/api/v1/orders"), &view)
	assert.Equal(t, service.MenuPendingOrders, view.Menu)
	require.Len(t, view.Orders, 1)
	assert.Equal(t, "1", view.Orders[0].ID)

	w = env.postForm("/dashboard/menu", url.Values{"menu": {"Settings"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDateFilter(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	w := env.postForm("/dashboard/filter", url.Values{"filter": {"Last 3 Days"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, env.get("/dashboard").Body.String(), `<option value="Last 3 Days" selected>`)

	w = env.get("/api/v1/orders?filter=Yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalytics_ChartAndSummaries(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	env.postForm("/dashboard/menu", url.Values{"menu": {"Visual Data"}})

	body := env.get("/dashboard").Body.String()
	assert.Contains(t, body, "Orders Over Time")
	assert.Contains(t, body, `type="image"`)
	assert.Contains(t, body, `http-equiv="refresh" content="10"`)

	w := env.get("/dashboard/analytics/chart.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(w.Body.String(), "<circle"))

	var view service.AnalyticsView
	decode(t, env.get("/api/v1/analytics"), &view)
	require.Len(t, view.Chart.Points, 1)
	p := view.Chart.Points[0]
	assert.Equal(t, 2, p.Count)

	w = env.postForm("/dashboard/analytics/select", url.Values{
		"chart.x": {strconvF(p.X + 3)},
		"chart.y": {strconvF(p.Y - 3)},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	body = env.get("/dashboard").Body.String()
	assert.Contains(t, body, "Selected Date: "+p.Label)
	assert.Contains(t, body, "Orders: 2")

	var sum service.Summary
	decode(t, env.postJSON("/api/v1/analytics/show-all", nil), &sum)
	assert.Equal(t, service.SummaryAll, sum.Kind)
	assert.Equal(t, 2, sum.TotalOrders)
	assert.Equal(t, p.Label, sum.BestDay)
	assert.Contains(t, env.get("/dashboard").Body.String(), "Total Orders: 2")

	w = env.postJSON("/api/v1/analytics/select", map[string]int{"index": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var hit struct {
		Hit     bool             `json:"hit"`
		Summary *service.Summary `json:"summary"`
	}
	decode(t, env.postJSON("/api/v1/analytics/select", map[string]float64{"x": 0, "y": 0}), &hit)
	assert.False(t, hit.Hit)
	require.NotNil(t, hit.Summary)
	assert.Equal(t, service.SummaryAll, hit.Summary.Kind)
}

func TestInventory_Flow(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	env.postForm("/dashboard/menu", url.Values{"menu": {"Inventory"}})

	body := env.get("/dashboard").Body.String()
	assert.Contains(t, body, "vodka")
	assert.Contains(t, body, "Add New Product")

	w := env.postForm("/dashboard/inventory/products", url.Values{"productId": {""}, "quantity": {"3"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, env.get("/dashboard").Body.String(), "Both fields are required.")
	assert.Zero(t, env.inventory.adds)

	var state service.InventoryState
	w = env.postJSON("/api/v1/inventory/products", map[string]interface{}{"productId": "gin", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, "Product added successfully", state.Message)
	assert.Len(t, state.Products, 2)

	w = env.postForm("/dashboard/inventory/quantity", url.Values{"productId": {"gin"}, "amount": {""}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	w = env.postJSON("/api/v1/inventory/quantity", map[string]interface{}{"productId": "gin", "quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, model.Product{ProductID: "gin", Quantity: 7}, state.Products[1])

	w = env.postJSON("/api/v1/inventory/quantity", map[string]interface{}{"productId": "rum", "quantity": 1})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Product not found", decode(t, w, nil).Message)
}

func TestAuth_ProtectsRoutes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pa55"), bcrypt.MinCost)
	require.NoError(t, err)
	env := newTestEnv(t, config.AuthConfig{
		JWTSecret:         "secret",
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
		TokenTTL:          time.Hour,
	})

	assert.Equal(t, http.StatusOK, env.get("/health").Code)
	assert.Equal(t, http.StatusUnauthorized, env.get("/api/v1/orders").Code)
	w := env.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.postForm("/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")

	var login struct {
		Token string `json:"token"`
	}
	w = env.postJSON("/api/v1/auth/login", map[string]string{"username": "admin", "password": "pa55"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &login)
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	assert.Equal(t, http.StatusOK, env.do(req).Code)

	w = env.postForm("/login", url.Values{"username": {"admin"}, "password": {"pa55"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.TokenCookie, cookies[0].Name)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	w = env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Signed in as admin")
}

func TestLoginPage_AuthDisabled(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	w := env.get("/login")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func strconvF(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }

func TestInventory_UpdateProductIDWithReservedCharacters(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	const id = "beer/6pack?size=l#2"
	env.inventory.mu.Lock()
	env.inventory.products = append(env.inventory.products, model.Product{ProductID: id, Quantity: 5})
	env.inventory.mu.Unlock()
	env.postForm("/dashboard/menu", url.Values{"menu": {"Inventory"}})

	body := env.get("/dashboard").Body.String()
	assert.Contains(t, body, `action="/dashboard/inventory/quantity"`)
	assert.Contains(t, body, `value="beer/6pack?size=l#2"`)

	w := env.postForm("/dashboard/inventory/quantity", url.Values{"productId": {id}, "amount": {"3"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var state service.InventoryState
	w = env.postJSON("/api/v1/inventory/quantity", map[string]interface{}{"productId": id, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	require.Len(t, state.Products, 2)
	assert.Equal(t, model.Product{ProductID: id, Quantity: 9}, state.Products[1])

	w = env.postForm("/dashboard/inventory/quantity", url.Values{"amount": {"3"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.postJSON("/api/v1/inventory/quantity", map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkShipped_OrderIDWithReservedCharacters(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	const id = "ord/1?x#y"
	env.orders.mu.Lock()
	env.orders.orders[0].ID = id
	env.orders.mu.Unlock()
	env.postForm("/dashboard/menu", url.Values{"menu": {"Pending Orders"}})
	require.Eventually(t, func() bool {
		return strings.Contains(env.get("/dashboard").Body.String(), `value="ord/1?x#y"`)
	}, 2*time.Second, 10*time.Millisecond)

	w := env.postForm("/dashboard/orders/ship", url.Values{"orderId": {id}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	_, ship := env.orders.counts()
	assert.Equal(t, 1, ship)
	assert.NotContains(t, env.get("/dashboard").Body.String(), "Mark as Shipped")

	w = env.postJSON("/api/v1/orders/ship", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.postForm("/dashboard/orders/ship", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
