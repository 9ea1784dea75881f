package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/api/option"

	"github.com/portfolio-builder/portfolio-backend/config"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// InitializeFirebase initializes the Firebase Admin SDK app. The same app
// hands out the Auth and Firestore clients.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	return app, nil
}

// FirebaseProvider implements Provider with Firebase Authentication.
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(ctx context.Context, app *firebase.App) (*FirebaseProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (*domain.Identity, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	user, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return nil, classifyFirebaseError(err)
	}

	return &domain.Identity{
		UID:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

func (p *FirebaseProvider) CreateSession(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	if _, err := p.client.VerifyIDToken(ctx, idToken); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	cookie, err := p.client.SessionCookie(ctx, idToken, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to create session cookie: %w", err)
	}
	return cookie, nil
}

func (p *FirebaseProvider) VerifySession(ctx context.Context, cookie string) (*domain.Identity, error) {
	tok, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return identityFromToken(tok), nil
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*domain.Identity, error) {
	tok, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return identityFromToken(tok), nil
}

// SignOut revokes every refresh token of uid, which also invalidates
// outstanding session cookies.
func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

func (p *FirebaseProvider) DeleteIdentity(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func identityFromToken(tok *auth.Token) *domain.Identity {
	id := &domain.Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := tok.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	return id
}

func classifyFirebaseError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return NewAuthError(KindEmailAlreadyInUse, err)
	case auth.IsConfigurationNotFound(err), errorutils.IsPermissionDenied(err):
		return NewAuthError(KindOperationNotAllowed, err)
	case errorutils.IsInvalidArgument(err):
		if strings.Contains(strings.ToUpper(err.Error()), "PASSWORD") {
			return NewAuthError(KindWeakPassword, err)
		}
		return NewAuthError(KindInvalidEmail, err)
	default:
		return NewAuthError(KindUnknown, err)
	}
}
