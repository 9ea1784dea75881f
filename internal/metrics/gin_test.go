package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/:username", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/:username", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/annlee", nil))
	require.Equal(t, http.StatusOK, w.Code)

	after := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/:username", "200"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolio_http_requests_total")
}

func TestObserveProfileOp(t *testing.T) {
	before := testutil.ToFloat64(profileOps.WithLabelValues("save", "error"))
	ObserveProfileOp("save", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(profileOps.WithLabelValues("save", "error")))
}
