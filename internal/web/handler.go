// Package web serves the server-rendered pages: landing, registration,
// sign-in, dashboard, editor, preview and public portfolios.
package web

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
)

const editSessionCookie = "edit_sid"

// ClientConfig is handed to the browser SDK on the sign-in page.
type ClientConfig struct {
	APIKey     string
	AuthDomain string
	ProjectID  string
}

type Handler struct {
	profiles *service.ProfileService
	editor   *editor.Service
	binder   *identity.Binder
	client   ClientConfig
	secure   bool
}

type Deps struct {
	Profiles *service.ProfileService
	Editor   *editor.Service
	Binder   *identity.Binder
	Client   ClientConfig
	// SecureCookies marks the edit-session cookie Secure.
	SecureCookies bool
}

func NewHandler(dep Deps) *Handler {
	return &Handler{
		profiles: dep.Profiles,
		editor:   dep.Editor,
		binder:   dep.Binder,
		client:   dep.Client,
		secure:   dep.SecureCookies,
	}
}

// Register installs the templates and page routes on r. authLimit, when not
// nil, guards the POST endpoints of the auth forms.
func (h *Handler) Register(r *gin.Engine, authLimit gin.HandlerFunc) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	if authLimit == nil {
		authLimit = func(c *gin.Context) { c.Next() }
	}

	r.GET("/", h.binder.Optional(), h.index)
	r.GET("/register", h.registerPage)
	r.POST("/register", authLimit, h.register)
	r.GET("/login", h.loginPage)
	r.POST("/login", authLimit, h.login)

	private := r.Group("")
	private.Use(h.binder.RequirePage())
	private.POST("/logout", h.logout)
	private.GET("/dashboard", h.dashboard)
	private.GET("/edit", h.editPage)
	private.POST("/edit", h.editSubmit)
	private.GET("/preview", h.preview)

	r.GET("/:username", h.public)
	return nil
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// abandoned reports whether the client went away; late results are dropped.
func abandoned(c *gin.Context) bool {
	return c.Request.Context().Err() != nil
}

// renderError shows the error page for failures that are not form errors.
func renderError(c *gin.Context, err error) {
	status, msg := httpapi.ErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("page failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.HTML(status, "error.html", gin.H{
		"Title":   "Something went wrong",
		"Message": msg,
	})
}
