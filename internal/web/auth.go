package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/metrics"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
)

const loginFailedMessage = "Invalid email or password"

func (h *Handler) registerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"Title": "Register"})
}

func (h *Handler) register(c *gin.Context) {
	req := service.RegisterRequest{
		Fullname: strings.TrimSpace(c.PostForm("fullname")),
		Username: strings.TrimSpace(c.PostForm("username")),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}

	_, _, err := h.profiles.Register(c.Request.Context(), req)
	metrics.ObserveProfileOp("register", err)
	if err != nil {
		status, msg := httpapi.ErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(c.Request.Context()).Error("registration failed", zap.Error(err))
			msg = identity.MessageFor(identity.KindUnknown)
		}
		c.HTML(status, "register.html", gin.H{
			"Title": "Register",
			"Error": msg,
			"Form":  req,
		})
		return
	}

	// Providers that check passwords on the server can sign the new user in
	// straight away; otherwise the browser SDK has to.
	if signer, ok := h.binder.Provider().(identity.PasswordSignIner); ok {
		if token, err := signer.SignIn(c.Request.Context(), req.Email, req.Password); err == nil {
			if err := h.binder.StartSession(c, token); err == nil {
				c.Redirect(http.StatusSeeOther, "/dashboard")
				return
			}
		}
	}
	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (h *Handler) loginPage(c *gin.Context) {
	_, serverSignIn := h.binder.Provider().(identity.PasswordSignIner)
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":        "Sign in",
		"ServerSignIn": serverSignIn,
		"Client":       h.client,
		"Registered":   c.Query("registered") != "",
		"Email":        "",
	})
}

// login accepts either an ID token minted by the browser SDK or, with a
// provider that supports it, an email and password.
func (h *Handler) login(c *gin.Context) {
	ctx := c.Request.Context()
	token := strings.TrimSpace(c.PostForm("idToken"))

	var err error
	if token == "" {
		signer, ok := h.binder.Provider().(identity.PasswordSignIner)
		if !ok {
			err = identity.ErrUnauthenticated
		} else {
			token, err = signer.SignIn(ctx, strings.TrimSpace(c.PostForm("email")), c.PostForm("password"))
		}
	}
	if err == nil {
		err = h.binder.StartSession(c, token)
	}
	if abandoned(c) {
		return
	}

	if err != nil {
		if !errors.Is(err, identity.ErrUnauthenticated) {
			logging.FromContext(ctx).Warn("sign-in rejected", zap.Error(err))
		}
		_, serverSignIn := h.binder.Provider().(identity.PasswordSignIner)
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Title":        "Sign in",
			"ServerSignIn": serverSignIn,
			"Client":       h.client,
			"Error":        loginFailedMessage,
			"Email":        c.PostForm("email"),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	id, _ := identity.FromGin(c)
	log := logging.FromContext(c.Request.Context())

	if err := h.editor.Discard(c.Request.Context(), id.UID); err != nil {
		log.Warn("discard drafts on logout failed", zap.Error(err))
	}
	h.clearEditSession(c)
	if err := h.binder.EndSession(c, id.UID); err != nil {
		log.Warn("token revocation failed", zap.Error(err))
	}

	c.Redirect(http.StatusSeeOther, "/login")
}
