package identity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

const (
	CtxIdentity    = "identity"
	CtxFirebaseUID = "firebase_uid"
)

type identityKey struct{}

// Binder resolves the identity of a request from the session cookie or a
// bearer ID token. The binding is scoped to the request: once the request
// context is done nothing derived from it may be applied.
type Binder struct {
	provider   Provider
	cookieName string
	sessionTTL time.Duration
	secure     bool
	loginPath  string
}

type BinderOptions struct {
	CookieName string
	SessionTTL time.Duration
	Secure     bool
	LoginPath  string
}

func NewBinder(provider Provider, opt BinderOptions) *Binder {
	if opt.CookieName == "" {
		opt.CookieName = "__session"
	}
	if opt.LoginPath == "" {
		opt.LoginPath = "/login"
	}
	return &Binder{
		provider:   provider,
		cookieName: opt.CookieName,
		sessionTTL: opt.SessionTTL,
		secure:     opt.Secure,
		loginPath:  opt.LoginPath,
	}
}

func (b *Binder) Provider() Provider { return b.provider }

// Resolve returns the request's identity or ErrUnauthenticated.
func (b *Binder) Resolve(c *gin.Context) (*domain.Identity, error) {
	ctx := c.Request.Context()

	if cookie, err := c.Cookie(b.cookieName); err == nil && cookie != "" {
		if id, err := b.provider.VerifySession(ctx, cookie); err == nil {
			return id, nil
		}
	}

	if token := extractToken(c); token != "" {
		return b.provider.VerifyIDToken(ctx, token)
	}

	return nil, ErrUnauthenticated
}

// RequirePage redirects anonymous visitors to the sign-in page and stops the
// handler chain.
func (b *Binder) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := b.Resolve(c)
		if err != nil {
			c.Redirect(http.StatusSeeOther, b.loginPath)
			c.Abort()
			return
		}
		bind(c, id)
		c.Next()
	}
}

// RequireAPI answers 401 for anonymous API calls.
func (b *Binder) RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := b.Resolve(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}
		bind(c, id)
		c.Next()
	}
}

// Optional binds the identity when one is present and never blocks.
func (b *Binder) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := b.Resolve(c); err == nil {
			bind(c, id)
		}
		c.Next()
	}
}

// StartSession exchanges an ID token for a session cookie and sets it.
func (b *Binder) StartSession(c *gin.Context, idToken string) error {
	cookie, err := b.provider.CreateSession(c.Request.Context(), idToken, b.sessionTTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(b.cookieName, cookie, int(b.sessionTTL.Seconds()), "/", "", b.secure, true)
	return nil
}

// EndSession revokes the identity's tokens and clears the cookie. The cookie
// is cleared even when revocation fails.
func (b *Binder) EndSession(c *gin.Context, uid string) error {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(b.cookieName, "", -1, "/", "", b.secure, true)
	return b.provider.SignOut(c.Request.Context(), uid)
}

// FromGin returns the identity bound by one of the middlewares.
func FromGin(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// FromContext returns the identity bound to a request context.
func FromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

func bind(c *gin.Context, id *domain.Identity) {
	c.Set(CtxIdentity, *id)
	c.Set(CtxFirebaseUID, id.UID)

	ctx := context.WithValue(c.Request.Context(), identityKey{}, *id)
	ctx = logging.WithContext(ctx, logging.FromContext(ctx).With(zap.String("uid", id.UID)))
	c.Request = c.Request.WithContext(ctx)
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
