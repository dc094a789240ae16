package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/service"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService records the caller and returns canned results
type fakeService struct {
	service.ServiceInterface

	lastCaller service.Caller
	err        error
	resp       *model.CartResponse
}

func (f *fakeService) result(caller service.Caller) (*model.CartResponse, error) {
	f.lastCaller = caller
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &model.CartResponse{Items: []model.CartItemResponse{}}, nil
}

func (f *fakeService) GetCart(_ context.Context, caller service.Caller) (*model.CartResponse, error) {
	return f.result(caller)
}

func (f *fakeService) AddItem(_ context.Context, caller service.Caller, _ model.AddItemRequest) (*model.CartResponse, error) {
	return f.result(caller)
}

func (f *fakeService) RemoveItem(_ context.Context, caller service.Caller, _ uuid.UUID) (*model.CartResponse, error) {
	return f.result(caller)
}

func (f *fakeService) UpdateQuantity(_ context.Context, caller service.Caller, _ model.UpdateQuantityRequest) (*model.CartResponse, error) {
	return f.result(caller)
}

func (f *fakeService) ApplyDiscount(_ context.Context, caller service.Caller, _ model.ApplyDiscountRequest) (*model.CartResponse, error) {
	return f.result(caller)
}

func (f *fakeService) SyncGuestCart(_ context.Context, caller service.Caller, _ model.SyncCartRequest) (*model.CartResponse, error) {
	return f.result(caller)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func setupRouter(svc service.ServiceInterface, tokens *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := NewHandler(svc)
	cart := r.Group("/api/v1/cart")
	cart.Use(middleware.OptionalAuthMiddleware(tokens), middleware.SessionMiddleware(middleware.DefaultSessionConfig()))
	{
		cart.GET("", h.GetCart)
		cart.POST("/add", h.AddItem)
		cart.DELETE("/remove/:productId", h.RemoveItem)
		cart.PUT("/update", h.UpdateQuantity)
		cart.POST("/discount", h.ApplyDiscount)
		cart.POST("/sync", h.SyncCart)
	}
	return r
}

func do(t *testing.T, r http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.HeaderAuthToken, token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestGetCart_GuestGetsSession(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc, jwt.NewManager("s", time.Hour))

	w, env := do(t, r, http.MethodGet, "/api/v1/cart", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.True(t, svc.lastCaller.IsGuest())
	assert.NotEmpty(t, svc.lastCaller.SessionID)
}

func TestGetCart_AuthenticatedCaller(t *testing.T) {
	tokens := jwt.NewManager("s", time.Hour)
	userID := uuid.New()
	token, _, err := tokens.GenerateAccessToken(userID.String(), "a@b.c", "customer")
	require.NoError(t, err)

	svc := &fakeService{}
	r := setupRouter(svc, tokens)

	w, _ := do(t, r, http.MethodGet, "/api/v1/cart", "", token)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastCaller.UserID)
	assert.Equal(t, userID, *svc.lastCaller.UserID)
}

func TestAddItem_ValidatesBody(t *testing.T) {
	r := setupRouter(&fakeService{}, jwt.NewManager("s", time.Hour))

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing product", `{"quantity":1}`},
		{"zero quantity", fmt.Sprintf(`{"productId":%q,"quantity":0}`, uuid.New())},
		{"bad uuid", `{"productId":"nope","quantity":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, "/api/v1/cart/add", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, model.ErrCodeInvalidRequest, env.Error.Code)
		})
	}
}

func TestUpdateQuantity_RequiresQuantity(t *testing.T) {
	r := setupRouter(&fakeService{}, jwt.NewManager("s", time.Hour))
	productID := uuid.New()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing quantity", fmt.Sprintf(`{"productId":%q}`, productID), http.StatusBadRequest},
		{"null quantity", fmt.Sprintf(`{"productId":%q,"quantity":null}`, productID), http.StatusBadRequest},
		{"negative quantity", fmt.Sprintf(`{"productId":%q,"quantity":-1}`, productID), http.StatusBadRequest},
		{"zero removes", fmt.Sprintf(`{"productId":%q,"quantity":0}`, productID), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPut, "/api/v1/cart/update", tt.body, "")
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusBadRequest {
				require.NotNil(t, env.Error)
				assert.Equal(t, model.ErrCodeInvalidRequest, env.Error.Code)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	productID := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	stockErr := model.NewStockError(model.ProductSnapshot{ID: productID, Name: "Keyboard", Stock: 5}, 6)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"stock", stockErr, http.StatusBadRequest, model.ErrCodeInsufficientStock, "Not enough stock available for product Keyboard. Available stock: 5, requested: 6"},
		{"unknown product", &model.ProductNotFoundError{ProductID: productID}, http.StatusNotFound, model.ErrCodeProductNotFound, "Product not found for ID: 33333333-3333-3333-3333-333333333333"},
		{"item", model.ErrItemNotFound, http.StatusNotFound, model.ErrCodeItemNotFound, "Product not found in cart"},
		{"cart", model.ErrCartNotFound, http.StatusNotFound, model.ErrCodeCartNotFound, "Cart not found"},
		{"discount", model.ErrInvalidDiscountCode, http.StatusBadRequest, model.ErrCodeInvalidDiscountCode, "Invalid discount code"},
		{"guest", model.ErrNotAuthenticated, http.StatusUnauthorized, model.ErrCodeNotAuthenticated, "User not logged in"},
		{"conflict", fmt.Errorf("gave up after 3 attempts: %w", model.ErrConcurrentModification), http.StatusConflict, model.ErrCodeConcurrentModification, ""},
		{"storage", fmt.Errorf("%w: boom", model.ErrStorageUnavailable), http.StatusInternalServerError, model.ErrCodeStorageUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&fakeService{err: tt.err}, jwt.NewManager("s", time.Hour))
			body := fmt.Sprintf(`{"productId":%q,"quantity":1}`, productID)

			w, env := do(t, r, http.MethodPost, "/api/v1/cart/add", body, "")

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
		})
	}
}

func TestErrorMapping_StockDetails(t *testing.T) {
	productID := uuid.New()
	svc := &fakeService{err: model.NewStockError(model.ProductSnapshot{ID: productID, Name: "Mouse", Stock: 2}, 3)}
	r := setupRouter(svc, jwt.NewManager("s", time.Hour))

	_, env := do(t, r, http.MethodPut, "/api/v1/cart/update", fmt.Sprintf(`{"productId":%q,"quantity":3}`, productID), "")

	require.NotNil(t, env.Error)
	var details model.StockError
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, productID, details.ProductID)
	assert.Equal(t, 2, details.Available)
	assert.Equal(t, 3, details.Requested)
}

func TestRemoveItem_BadID(t *testing.T) {
	r := setupRouter(&fakeService{}, jwt.NewManager("s", time.Hour))

	w, _ := do(t, r, http.MethodDelete, "/api/v1/cart/remove/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncCart_EmptyBodyAllowed(t *testing.T) {
	svc := &fakeService{resp: &model.CartResponse{GuestCartCleared: true}}
	r := setupRouter(svc, jwt.NewManager("s", time.Hour))

	w, env := do(t, r, http.MethodPost, "/api/v1/cart/sync", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"guestCartCleared":true`)
}
