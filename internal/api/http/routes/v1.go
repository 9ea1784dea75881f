package routes

import (
	"github.com/gin-gonic/gin"

	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
)

type V1Deps struct {
	Profiles *service.ProfileService
	Binder   *identity.Binder
	// RegisterLimit throttles account creation; nil disables it.
	RegisterLimit gin.HandlerFunc
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	me := api.Group("/me")
	me.Use(dep.Binder.RequireAPI())

	public := api.Group("")
	if dep.RegisterLimit != nil {
		public.Use(limitPost(dep.RegisterLimit))
	}

	httpapi.NewPortfolioHandler(dep.Profiles).Register(public, me)
}

// limitPost applies limit to POST requests only, so public reads stay unthrottled.
func limitPost(limit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" {
			limit(c)
			return
		}
		c.Next()
	}
}
