package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/user"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/pkg/jwt"
)

type fakeService struct {
	registerErr error
	loginErr    error
	resetErr    error
	loggedOut   []uuid.UUID
	forgotten   []string
	resetTokens []string
}

func (f *fakeService) Register(_ context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &user.UserDTO{ID: uuid.New(), Email: req.Email, Name: req.Name, Role: user.RoleCustomer}, nil
}

func (f *fakeService) Login(_ context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &user.LoginResponse{AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeService) Logout(_ context.Context, userID uuid.UUID) error {
	f.loggedOut = append(f.loggedOut, userID)
	return nil
}

func (f *fakeService) GetProfile(_ context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	return &user.UserDTO{ID: userID, Name: "Jane"}, nil
}

func (f *fakeService) ForgotPassword(_ context.Context, req user.ForgotPasswordRequest) error {
	f.forgotten = append(f.forgotten, req.Email)
	return nil
}

func (f *fakeService) ResetPassword(_ context.Context, token string, _ user.ResetPasswordRequest) error {
	if f.resetErr != nil {
		return f.resetErr
	}
	f.resetTokens = append(f.resetTokens, token)
	return nil
}

func setupRouter(svc user.Service, tokens *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewUserHandler(svc)

	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", middleware.AuthMiddleware(tokens), h.Logout)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password/:token", h.ResetPassword)
	r.GET("/users/me", middleware.AuthMiddleware(tokens), h.GetProfile)
	return r
}

func post(r http.Handler, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.HeaderAuthToken, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"created", `{"email":"a@b.co","password":"long-enough","name":"A"}`, nil, http.StatusCreated},
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"invalid email", `{"email":"nope","password":"long-enough","name":"A"}`, nil, http.StatusBadRequest},
		{"duplicate", `{"email":"a@b.co","password":"long-enough","name":"A"}`, user.ErrEmailAlreadyExists, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&fakeService{registerErr: tt.err}, jwt.NewManager("s", time.Hour))
			w := post(r, "/auth/register", tt.body, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestLogin(t *testing.T) {
	r := setupRouter(&fakeService{}, jwt.NewManager("s", time.Hour))
	w := post(r, "/auth/login", `{"email":"a@b.co","password":"x"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"token"`)

	r = setupRouter(&fakeService{loginErr: user.ErrInvalidCredentials}, jwt.NewManager("s", time.Hour))
	w = post(r, "/auth/login", `{"email":"a@b.co","password":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutAndProfile_RequireToken(t *testing.T) {
	tokens := jwt.NewManager("s", time.Hour)
	svc := &fakeService{}
	r := setupRouter(svc, tokens)

	w := post(r, "/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	id := uuid.New()
	token, _, err := tokens.GenerateAccessToken(id.String(), "a@b.co", "customer")
	require.NoError(t, err)

	w = post(r, "/auth/logout", "", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{id}, svc.loggedOut)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestForgotPassword(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc, jwt.NewManager("s", time.Hour))

	w := post(r, "/auth/forgot-password", `{"email":"a@b.co"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Email sent successfully")
	assert.Equal(t, []string{"a@b.co"}, svc.forgotten)

	w = post(r, "/auth/forgot-password", `{"email":"nope"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"reset", `{"password":"long-enough"}`, nil, http.StatusOK},
		{"short password", `{"password":"short"}`, nil, http.StatusBadRequest},
		{"bad token", `{"password":"long-enough"}`, user.ErrInvalidResetToken, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{resetErr: tt.err}
			r := setupRouter(svc, jwt.NewManager("s", time.Hour))
			w := post(r, "/auth/reset-password/tok123", tt.body, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, []string{"tok123"}, svc.resetTokens)
				assert.Contains(t, w.Body.String(), "Password reset successful")
			}
		})
	}
}
