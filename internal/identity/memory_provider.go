package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// MemoryProvider is an in-process Provider for local development
// (AUTH_DRIVER=memory) and tests. Tokens and sessions are opaque random ids.
type MemoryProvider struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[string]*memoryUser // by uid
	byEmail  map[string]string      // email -> uid
	tokens   map[string]string      // id token -> uid
	sessions map[string]memorySession
}

type memoryUser struct {
	identity     domain.Identity
	passwordHash []byte
}

type memorySession struct {
	uid       string
	expiresAt time.Time
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		now:      time.Now,
		users:    make(map[string]*memoryUser),
		byEmail:  make(map[string]string),
		tokens:   make(map[string]string),
		sessions: make(map[string]memorySession),
	}
}

func (p *MemoryProvider) SignUp(ctx context.Context, email, password, displayName string) (*domain.Identity, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, NewAuthError(KindUnknown, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, exists := p.byEmail[key]; exists {
		return nil, NewAuthError(KindEmailAlreadyInUse, nil)
	}

	u := &memoryUser{
		identity: domain.Identity{
			UID:         uuid.NewString(),
			Email:       strings.TrimSpace(email),
			DisplayName: displayName,
		},
		passwordHash: hash,
	}
	p.users[u.identity.UID] = u
	p.byEmail[key] = u.identity.UID

	id := u.identity
	return &id, nil
}

// SignIn checks the password and returns a fresh ID token.
func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uid, ok := p.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword(p.users[uid].passwordHash, []byte(password)); err != nil {
		return "", ErrUnauthenticated
	}

	token := uuid.NewString()
	p.tokens[token] = uid
	return token, nil
}

func (p *MemoryProvider) CreateSession(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uid, ok := p.tokens[idToken]
	if !ok {
		return "", ErrUnauthenticated
	}

	cookie := uuid.NewString()
	p.sessions[cookie] = memorySession{uid: uid, expiresAt: p.now().Add(ttl)}
	return cookie, nil
}

func (p *MemoryProvider) VerifySession(ctx context.Context, cookie string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[cookie]
	if !ok || p.now().After(s.expiresAt) {
		return nil, ErrUnauthenticated
	}
	return p.lookup(s.uid)
}

func (p *MemoryProvider) VerifyIDToken(ctx context.Context, idToken string) (*domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uid, ok := p.tokens[idToken]
	if !ok {
		return nil, ErrUnauthenticated
	}
	return p.lookup(uid)
}

func (p *MemoryProvider) SignOut(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for cookie, s := range p.sessions {
		if s.uid == uid {
			delete(p.sessions, cookie)
		}
	}
	for token, owner := range p.tokens {
		if owner == uid {
			delete(p.tokens, token)
		}
	}
	return nil
}

func (p *MemoryProvider) DeleteIdentity(ctx context.Context, uid string) error {
	p.mu.Lock()
	u, ok := p.users[uid]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("user %s not found", uid)
	}
	delete(p.users, uid)
	delete(p.byEmail, strings.ToLower(u.identity.Email))
	p.mu.Unlock()

	return p.SignOut(ctx, uid)
}

func (p *MemoryProvider) lookup(uid string) (*domain.Identity, error) {
	u, ok := p.users[uid]
	if !ok {
		return nil, ErrUnauthenticated
	}
	id := u.identity
	return &id, nil
}
