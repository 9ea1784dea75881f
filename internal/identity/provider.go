package identity

import (
	"context"
	"errors"
	"time"

	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// ErrUnauthenticated means no valid session or token accompanied the request.
var ErrUnauthenticated = errors.New("not authenticated")

// Provider is the external authentication service. Password sign-in happens
// in the browser SDK; the server only exchanges the resulting ID token for a
// session cookie.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*domain.Identity, error)
	CreateSession(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	VerifySession(ctx context.Context, cookie string) (*domain.Identity, error)
	VerifyIDToken(ctx context.Context, idToken string) (*domain.Identity, error)
	SignOut(ctx context.Context, uid string) error
	DeleteIdentity(ctx context.Context, uid string) error
}

// PasswordSignIner is implemented by providers that can check a password on
// the server. Only the in-memory provider does; the login page falls back to
// it when present.
type PasswordSignIner interface {
	SignIn(ctx context.Context, email, password string) (idToken string, err error)
}
