package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
)

type webFixture struct {
	router *gin.Engine
	store  *repository.MemoryStore
	repo   *repository.ProfileRepository
}

func setupWeb(t *testing.T) *webFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	store := repository.NewMemoryStore()
	repo := repository.NewProfileRepository(store, "users")
	provider := identity.NewMemoryProvider()
	profiles := service.NewProfileService(repo, provider)

	h := NewHandler(Deps{
		Profiles: profiles,
		Editor:   editor.NewService(profiles, editor.NewRedisSessionStore(client, time.Hour)),
		Binder:   identity.NewBinder(provider, identity.BinderOptions{SessionTTL: time.Hour}),
	})

	r := gin.New()
	require.NoError(t, h.Register(r, nil))

	return &webFixture{router: r, store: store, repo: repo}
}

// browser keeps cookies between requests like a real client would.
type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (f *webFixture) browser(t *testing.T) *browser {
	return &browser{t: t, router: f.router, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) register(username, email string) {
	w := b.post("/register", url.Values{
		"fullname": {"Ann Lee"},
		"username": {username},
		"email":    {email},
		"password": {"secret123"},
	})
	require.Equal(b.t, http.StatusSeeOther, w.Code, w.Body.String())
	require.Equal(b.t, "/dashboard", w.Header().Get("Location"))
}

func TestRegisterThenVisitPublicPage(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)
	b.register("annlee", "a@x.com")

	visitor := f.browser(t)
	w := visitor.get("/annlee")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ann Lee")
	assert.Contains(t, w.Body.String(), "No projects added yet.")
	assert.NotContains(t, w.Body.String(), "Portfolio not found")
}

func TestRegister_ShowsProviderMessage(t *testing.T) {
	f := setupWeb(t)
	f.browser(t).register("annlee", "a@x.com")

	w := f.browser(t).post("/register", url.Values{
		"fullname": {"Other"},
		"username": {"other"},
		"email":    {"a@x.com"},
		"password": {"secret123"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "This email is already registered")
	assert.Contains(t, w.Body.String(), `value="other"`, "form keeps what was typed")
}

func TestProtectedPagesRedirect(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)

	for _, path := range []string{"/dashboard", "/edit", "/preview"} {
		w := b.get(path)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestPublicPage_NotFound(t *testing.T) {
	f := setupWeb(t)

	w := f.browser(t).get("/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Portfolio not found")
}

func TestEditSaveAndReload(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)
	b.register("annlee", "a@x.com")

	w := b.get("/edit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="projects.0.title"`)
	assert.NotContains(t, w.Body.String(), `name="projects.1.title"`)
	assert.NotContains(t, w.Body.String(), `value="remove-0"`, "single row cannot be removed")

	w = b.post("/edit", url.Values{
		"action":           {"save"},
		"role":             {"Backend Developer"},
		"projects.0.title": {"Demo"},
		"projects.0.link":  {"https://demo.example"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/preview", w.Header().Get("Location"))

	w = b.get("/edit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Demo"`)
	assert.NotContains(t, w.Body.String(), `name="projects.1.title"`)

	w = f.browser(t).get("/annlee")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Demo")
	assert.Contains(t, w.Body.String(), `target="_blank" rel="noopener noreferrer"`)
}

func TestEditAddAndRemoveProjects(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)
	b.register("annlee", "a@x.com")

	w := b.post("/edit", url.Values{"action": {"add"}, "projects.0.title": {"first"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = b.get("/edit")
	assert.Contains(t, w.Body.String(), `name="projects.1.title"`)
	assert.Contains(t, w.Body.String(), `value="remove-0"`)

	w = b.post("/edit", url.Values{"action": {"remove-0"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = b.get("/edit")
	assert.NotContains(t, w.Body.String(), `value="first"`)
	assert.NotContains(t, w.Body.String(), `name="projects.1.title"`)
}

func TestEditRejectsBadLink(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)
	b.register("annlee", "a@x.com")

	w := b.post("/edit", url.Values{"projects.0.link": {"javascript:alert(1)"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Project link must be an absolute http(s) URL")
}

func TestEditSaveFailureKeepsDraft(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)
	b.register("annlee", "a@x.com")

	f.store.FailWith("set", errors.New("unavailable"))
	w := b.post("/edit", url.Values{"action": {"save"}, "bio": {"unsaved work"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to save portfolio. Please try again.")
	assert.Contains(t, w.Body.String(), "unsaved work")

	f.store.FailWith("set", nil)
	w = b.post("/edit", url.Values{"action": {"save"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	rec, err := f.repo.GetByUID(context.Background(), uidOf(t, f, "annlee"))
	require.NoError(t, err)
	assert.Equal(t, "unsaved work", rec.Bio)
}

func TestPreview(t *testing.T) {
	f := setupWeb(t)
	b := f.browser(t)
	b.register("annlee", "a@x.com")

	w := b.get("/preview")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ann Lee")
	assert.NotContains(t, w.Body.String(), "No Portfolio Found")
}

func TestLoginAndLogout(t *testing.T) {
	f := setupWeb(t)
	f.browser(t).register("annlee", "a@x.com")

	b := f.browser(t)
	w := b.post("/login", url.Values{"email": {"a@x.com"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")

	w = b.post("/login", url.Values{"email": {"a@x.com"}, "password": {"secret123"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = b.get("/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@x.com")
	assert.Contains(t, w.Body.String(), `href="/annlee"`)

	w = b.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = b.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func uidOf(t *testing.T, f *webFixture, username string) string {
	t.Helper()
	matches, err := f.repo.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0].UID
}

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"index.html", "register.html", "login.html", "dashboard.html", "edit.html", "preview.html", "public.html", "not_found.html", "error.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}
