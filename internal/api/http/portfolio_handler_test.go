package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
)

type apiFixture struct {
	router   *gin.Engine
	store    *repository.MemoryStore
	repo     *repository.ProfileRepository
	provider *identity.MemoryProvider
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	repo := repository.NewProfileRepository(store, "users")
	provider := identity.NewMemoryProvider()
	profiles := service.NewProfileService(repo, provider)
	binder := identity.NewBinder(provider, identity.BinderOptions{})

	r := gin.New()
	api := r.Group("/api/v1")
	me := api.Group("/me")
	me.Use(binder.RequireAPI())
	NewPortfolioHandler(profiles).Register(api, me)

	return &apiFixture{router: r, store: store, repo: repo, provider: provider}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (f *apiFixture) register(t *testing.T, username, email string) string {
	t.Helper()
	w, _ := f.do(t, http.MethodPost, "/api/v1/auth/register", "", service.RegisterRequest{
		Fullname: "Ann Lee",
		Username: username,
		Email:    email,
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	token, err := f.provider.SignIn(context.Background(), email, "secret123")
	require.NoError(t, err)
	return token
}

func TestRegisterAndResolve(t *testing.T) {
	f := setupAPI(t)
	f.register(t, "annlee", "a@x.com")

	w, body := f.do(t, http.MethodGet, "/api/v1/portfolios/annlee", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	portfolio := body["portfolio"].(map[string]interface{})
	assert.Equal(t, "empty", portfolio["state"])
	assert.Equal(t, "Ann Lee", portfolio["display_name"])
	assert.Empty(t, portfolio["projects"])
}

func TestRegister_Errors(t *testing.T) {
	f := setupAPI(t)
	f.register(t, "annlee", "a@x.com")

	tests := []struct {
		name   string
		req    service.RegisterRequest
		status int
		msg    string
	}{
		{"username taken", service.RegisterRequest{Fullname: "B", Username: "annlee", Email: "b@x.com", Password: "secret123"}, http.StatusConflict, "This username is already taken"},
		{"email taken", service.RegisterRequest{Fullname: "B", Username: "other", Email: "a@x.com", Password: "secret123"}, http.StatusConflict, "This email is already registered"},
		{"weak password", service.RegisterRequest{Fullname: "B", Username: "other", Email: "b@x.com", Password: "123"}, http.StatusBadRequest, "Password should be at least 6 characters"},
		{"bad email", service.RegisterRequest{Fullname: "B", Username: "other", Email: "nope", Password: "secret123"}, http.StatusBadRequest, "Please enter a valid email address"},
		{"reserved username", service.RegisterRequest{Fullname: "B", Username: "dashboard", Email: "b@x.com", Password: "secret123"}, http.StatusConflict, "This username is already taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.req)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}

func TestGetPortfolio_NotFound(t *testing.T) {
	f := setupAPI(t)

	w, body := f.do(t, http.MethodGet, "/api/v1/portfolios/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "portfolio not found", body["error"])
}

func TestMyProfile(t *testing.T) {
	f := setupAPI(t)
	token := f.register(t, "annlee", "a@x.com")

	t.Run("requires a token", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/api/v1/me/profile", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("load seeds one project for editing", func(t *testing.T) {
		w, body := f.do(t, http.MethodGet, "/api/v1/me/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["exists"])
		profile := body["profile"].(map[string]interface{})
		assert.Len(t, profile["projects"], 1)
	})

	t.Run("put overwrites and pins the username", func(t *testing.T) {
		w, body := f.do(t, http.MethodPut, "/api/v1/me/profile", token, domain.ProfileRecord{
			Username: "hijack",
			Role:     "Backend Developer",
			Bio:      "hello",
			Projects: []domain.ProjectEntry{{Title: "Demo", Link: "https://demo.example"}},
		})
		require.Equal(t, http.StatusOK, w.Code)
		profile := body["profile"].(map[string]interface{})
		assert.Equal(t, "annlee", profile["username"])
		assert.Equal(t, "hello", profile["bio"])

		w, body = f.do(t, http.MethodGet, "/api/v1/portfolios/annlee", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		portfolio := body["portfolio"].(map[string]interface{})
		assert.Equal(t, "ready", portfolio["state"])
	})

	t.Run("invalid role", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPut, "/api/v1/me/profile", token, domain.ProfileRecord{Role: "Wizard"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		f.store.FailWith("set", errors.New("unavailable"))
		defer f.store.FailWith("set", nil)

		w, body := f.do(t, http.MethodPut, "/api/v1/me/profile", token, domain.ProfileRecord{Bio: "x"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Failed to save portfolio. Please try again.", body["error"])
	})
}
