package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler("portfolio-backend", "1.2.3", map[string]Pinger{
		"redis": PingFunc(func(ctx context.Context) error { return nil }),
		"store": PingFunc(func(ctx context.Context) error { return errors.New("down") }),
		"db":    nil,
	})
	r := gin.New()
	h.RegisterRoutes(r)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, map[string]string{"redis": "up", "store": "down", "db": "disabled"}, resp.Dependencies)
	}
}

func TestErrorResponse_Unknown(t *testing.T) {
	status, msg := ErrorResponse(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, msg, "boom")
}
