package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/config"
	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
	"github.com/portfolio-builder/portfolio-backend/internal/ratelimit"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Firebase: config.FirebaseConfig{AuthDriver: config.AuthMemory},
		Store:    config.StoreConfig{Driver: config.StoreMemory, Collection: "users"},
	}
}

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	ctx := context.Background()
	cfg := memoryConfig()
	logger := zap.NewNop()

	app, err := OpenFirebase(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, app, "memory drivers need no firebase app")

	provider, err := OpenProvider(ctx, cfg, app, logger)
	require.NoError(t, err)
	docs, err := OpenDocuments(ctx, cfg, app, logger)
	require.NoError(t, err)
	t.Cleanup(docs.Close)

	profiles := service.NewProfileService(repository.NewProfileRepository(docs.Store, cfg.Store.Collection), provider)

	r, err := BuildRouter(RouterDeps{
		ServiceName:        "portfolio-backend",
		Version:            "test",
		Logger:             logger,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		Profiles:           profiles,
		Editor:             editor.NewService(profiles, editor.NewRedisSessionStore(client, time.Hour)),
		Binder:             identity.NewBinder(provider, identity.BinderOptions{SessionTTL: time.Hour}),
		AuthLimit:          ratelimit.New(100, 100),
		Health: map[string]httpapi.Pinger{
			"redis": httpapi.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() }),
			"store": docs.Pinger,
		},
	})
	require.NoError(t, err)
	return r
}

func TestBuildRouter(t *testing.T) {
	r := buildTestRouter(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/", http.StatusOK},
		{"/login", http.StatusOK},
		{"/register", http.StatusOK},
		{"/dashboard", http.StatusSeeOther},
		{"/ghost", http.StatusNotFound},
		{"/api/v1/portfolios/ghost", http.StatusNotFound},
		{"/api/v1/me/profile", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		})
	}
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	r := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me/profile", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenDocuments_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store.Driver = "mongo"

	_, err := OpenDocuments(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
