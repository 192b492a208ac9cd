package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/routes"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
	"github.com/shashiranjanraj/shopfront/pkg/payment"
	"github.com/shashiranjanraj/shopfront/pkg/payment/paymenttest"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

type discard struct{}

func (discard) SendAsync(context.Context, string, notification.Notification) {}

type app struct {
	handler http.Handler
	repos   repositories.Set
	signer  *auth.Signer
	fake    *paymenttest.Fake
}

func newApp(t *testing.T) *app {
	t.Helper()
	repos := repositories.NewMemory()
	signer := auth.NewSigner("routes-secret")
	fake := paymenttest.New()
	svc := services.New(services.Deps{
		Repos:    repos,
		Cache:    cache.NewMemory(),
		Payments: fake,
		Notifier: discard{},
		Signer:   signer,
	})
	r := router.New()
	routes.RegisterAPI(r, auth.NewGate(signer, repos.Users), controllers.New(svc))
	return &app{handler: r.Handler(), repos: repos, signer: signer, fake: fake}
}

// user stores an account and returns a bearer token for it.
func (a *app) user(t *testing.T, role string, verified bool) string {
	t.Helper()
	u := &models.User{
		Name:       role,
		Email:      role + "-" + primitive.NewObjectID().Hex() + "@example.com",
		Role:       role,
		Status:     models.StatusActive,
		IsVerified: verified,
	}
	require.NoError(t, a.repos.Users.Create(context.Background(), u))
	token, err := a.signer.Generate(u.ID.Hex())
	require.NoError(t, err)
	return token
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (a *app) do(t *testing.T, method, path, token string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func TestProducts_AdminGuard(t *testing.T) {
	a := newApp(t)
	body := map[string]any{"name": "Chair1", "stockQuantity": 2, "attributes": map[string]any{"colors": "red"}}

	code, _ := a.do(t, http.MethodPost, "/api/products", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := a.do(t, http.MethodPost, "/api/products", a.user(t, models.RoleUser, true), body)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", env.Message)

	code, _ = a.do(t, http.MethodPost, "/api/products", a.user(t, models.RoleAdmin, true), body)
	assert.Equal(t, http.StatusCreated, code)

	code, env = a.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, code)
	var ps []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &ps))
	assert.Len(t, ps, 1)
}

func TestProducts_VariantsAndBulk(t *testing.T) {
	a := newApp(t)
	admin := a.user(t, models.RoleAdmin, true)

	code, env := a.do(t, http.MethodPost, "/api/products/bulk", admin, []byte(`{"name":"x"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid or empty product list", env.Message)

	bulk := []map[string]any{
		{"name": "Chair1", "stockQuantity": 1, "attributes": map[string]any{"colors": []string{"red", "blue"}}},
		{"name": "Chair2", "stockQuantity": 1, "attributes": map[string]any{"colors": "red"}},
	}
	code, _ = a.do(t, http.MethodPost, "/api/products/bulk", admin, bulk)
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(t, http.MethodGet, "/api/products/variants/Chair7", "", nil)
	require.Equal(t, http.StatusOK, code)
	var bundle models.VariantBundle
	require.NoError(t, json.Unmarshal(env.Data, &bundle))
	assert.Equal(t, "Chair", bundle.BaseName)
	assert.Equal(t, []string{"blue", "red"}, bundle.AllAvailableColors)

	code, _ = a.do(t, http.MethodGet, "/api/products/variant/Chair1/green", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(t, http.MethodGet, "/api/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrders_GuestAndSignedInCheckout(t *testing.T) {
	a := newApp(t)
	order := map[string]any{
		"customerName":    "Ann",
		"items":           []map[string]any{{"product": "64b7f0c2a1b2c3d4e5f60718", "quantity": 2, "price": 10}, {"productId": "64b7f0c2a1b2c3d4e5f60719", "quantity": 1, "price": 15}},
		"shippingAddress": map[string]any{"addressLine": "1 Main St"},
		"status":          "Delivered",
	}

	code, env := a.do(t, http.MethodPost, "/api/orders/create", "", order)
	require.Equal(t, http.StatusCreated, code)
	var o models.Order
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, "35", o.TotalAmount.String())
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Nil(t, o.User)

	token := a.user(t, models.RoleUser, false)
	code, _ = a.do(t, http.MethodPost, "/api/orders/create", token, order)
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(t, http.MethodGet, "/api/orders/my", token, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	code, _ = a.do(t, http.MethodGet, "/api/orders", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestUsers_RegisterLoginProfile(t *testing.T) {
	a := newApp(t)

	code, env := a.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = a.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ann@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code)
	var res services.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)

	code, env = a.do(t, http.MethodPut, "/api/users/profile", res.Token, map[string]any{"bio": "hello", "role": "admin"})
	require.Equal(t, http.StatusOK, code)
	var u models.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, models.RoleUser, u.Role)

	code, _ = a.do(t, http.MethodGet, "/api/users", res.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "email")
}

func TestPayments_RequireVerifiedAndWebhook(t *testing.T) {
	a := newApp(t)

	code, env := a.do(t, http.MethodPost, "/api/payments/create-payment-intent", a.user(t, models.RoleUser, false), map[string]any{"amount": 10})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Email verification required", env.Message)

	code, env = a.do(t, http.MethodPost, "/api/payments/create-payment-intent", a.user(t, models.RoleUser, true), map[string]any{"amount": 10})
	require.Equal(t, http.StatusOK, code)
	var intent services.IntentResult
	require.NoError(t, json.Unmarshal(env.Data, &intent))
	assert.NotEmpty(t, intent.ClientSecret)

	code, env = a.do(t, http.MethodPost, "/api/payments/webhook", "", []byte(`{}`), "Stripe-Signature", "bogus")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "Webhook Error")

	payload := paymenttest.EventPayload("evt_1", payment.EventIntentSucceeded, intent.PaymentIntentID, nil)
	code, _ = a.do(t, http.MethodPost, "/api/payments/webhook", "", payload, "Stripe-Signature", paymenttest.Secret)
	assert.Equal(t, http.StatusOK, code)
}

func TestDashboard_AdminOnly(t *testing.T) {
	a := newApp(t)

	code, _ := a.do(t, http.MethodGet, "/api/dashboard/summary", a.user(t, models.RoleUser, true), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(t, http.MethodGet, "/api/dashboard/monthly-orders-sales", a.user(t, models.RoleAdmin, true), nil)
	require.Equal(t, http.StatusOK, code)
	var points []services.MonthlyPoint
	require.NoError(t, json.Unmarshal(env.Data, &points))
	assert.Len(t, points, 12)
}

func TestRouteTable(t *testing.T) {
	r := router.New()
	routes.RegisterAPI(r, nil, controllers.Set{
		Products:   &controllers.ProductController{},
		Categories: &controllers.CategoryController{},
		Attributes: &controllers.AttributeController{},
		Orders:     &controllers.OrderController{},
		Users:      &controllers.UserController{},
		Payments:   &controllers.PaymentController{},
		Dashboard:  &controllers.DashboardController{},
	})
	path, ok := r.Path("orders.checkout")
	require.True(t, ok)
	assert.Equal(t, "/api/orders/create", path)

	url, err := r.URL("products.variant", map[string]string{"name": "Chair1", "color": "red"})
	require.NoError(t, err)
	assert.Equal(t, "/api/products/variant/Chair1/red", url)
}
