package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
	"github.com/portfolio-builder/portfolio-backend/internal/render"
)

func (h *Handler) index(c *gin.Context) {
	id, signedIn := identity.FromGin(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":    "Freelancer Portfolio Builder",
		"SignedIn": signedIn,
		"Email":    id.Email,
	})
}

func (h *Handler) dashboard(c *gin.Context) {
	id, _ := identity.FromGin(c)

	res, err := h.profiles.Load(c.Request.Context(), id)
	if abandoned(c) {
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":    "Dashboard",
		"Email":    id.Email,
		"Username": res.Record.Username,
		"Exists":   res.Exists,
	})
}

// preview shows the stored record exactly as visitors will see it. A missing
// record gets its own page rather than a synthesized one.
func (h *Handler) preview(c *gin.Context) {
	id, _ := identity.FromGin(c)

	rec, err := h.profiles.Get(c.Request.Context(), id.UID)
	if abandoned(c) {
		return
	}
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		c.HTML(http.StatusOK, "preview.html", gin.H{
			"Title":     "Preview",
			"Portfolio": render.NotFound(""),
		})
		return
	case err != nil:
		renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "preview.html", gin.H{
		"Title":     "Preview",
		"Portfolio": render.Portfolio(*rec),
	})
}

func (h *Handler) public(c *gin.Context) {
	username := c.Param("username")

	rec, err := h.profiles.Resolve(c.Request.Context(), username)
	if abandoned(c) {
		return
	}
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		c.HTML(http.StatusNotFound, "not_found.html", gin.H{
			"Title":     "Not found",
			"Portfolio": render.NotFound(username),
		})
		return
	case err != nil:
		renderError(c, err)
		return
	}

	view := render.Portfolio(*rec)
	c.HTML(http.StatusOK, "public.html", gin.H{
		"Title":     view.DisplayName,
		"Portfolio": view,
	})
}
