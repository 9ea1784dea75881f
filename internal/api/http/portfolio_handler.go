package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/metrics"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
	"github.com/portfolio-builder/portfolio-backend/internal/render"
)

// PortfolioHandler serves the JSON API over the profile service.
type PortfolioHandler struct {
	profiles *service.ProfileService
}

func NewPortfolioHandler(profiles *service.ProfileService) *PortfolioHandler {
	return &PortfolioHandler{profiles: profiles}
}

// Register mounts the public routes on api and the identity-bound ones on me.
func (h *PortfolioHandler) Register(api gin.IRouter, me gin.IRouter) {
	api.GET("/portfolios/:username", h.getPortfolio)
	api.POST("/auth/register", h.register)

	me.GET("/profile", h.getMyProfile)
	me.PUT("/profile", h.putMyProfile)
}

func (h *PortfolioHandler) getPortfolio(c *gin.Context) {
	username := strings.TrimSpace(c.Param("username"))

	rec, err := h.profiles.Resolve(c.Request.Context(), username)
	if c.Request.Context().Err() != nil {
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolio": render.Portfolio(*rec)})
}

func (h *PortfolioHandler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	id, rec, err := h.profiles.Register(c.Request.Context(), req)
	metrics.ObserveProfileOp("register", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"uid": id.UID, "profile": rec})
}

func (h *PortfolioHandler) getMyProfile(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	res, err := h.profiles.Load(c.Request.Context(), id)
	if c.Request.Context().Err() != nil {
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": res.Record, "exists": res.Exists})
}

func (h *PortfolioHandler) putMyProfile(c *gin.Context) {
	id, ok := identity.FromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var rec domain.ProfileRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	saved, err := h.profiles.Save(c.Request.Context(), id.UID, rec)
	metrics.ObserveProfileOp("save", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": saved})
}

func respondError(c *gin.Context, err error) {
	status, msg := ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}
