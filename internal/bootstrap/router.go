package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/api/http/middleware"
	"github.com/portfolio-builder/portfolio-backend/internal/api/http/routes"
	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/metrics"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
	"github.com/portfolio-builder/portfolio-backend/internal/ratelimit"
	"github.com/portfolio-builder/portfolio-backend/internal/web"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Logger      *zap.Logger

	CORSAllowedOrigins []string
	SecureCookies      bool
	Client             web.ClientConfig

	Profiles  *service.ProfileService
	Editor    *editor.Service
	Binder    *identity.Binder
	AuthLimit *ratelimit.Limiter
	Health    map[string]httpapi.Pinger
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(metrics.GinMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Health)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())

	var authLimit gin.HandlerFunc
	if dep.AuthLimit != nil {
		authLimit = dep.AuthLimit.Middleware()
	}

	// Added after health and metrics so probes skip it.
	if len(dep.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterV1(r, routes.V1Deps{
		Profiles:      dep.Profiles,
		Binder:        dep.Binder,
		RegisterLimit: authLimit,
	})

	pages := web.NewHandler(web.Deps{
		Profiles:      dep.Profiles,
		Editor:        dep.Editor,
		Binder:        dep.Binder,
		Client:        dep.Client,
		SecureCookies: dep.SecureCookies,
	})
	if err := pages.Register(r, authLimit); err != nil {
		return nil, err
	}

	return r, nil
}
