package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
)

// ProfileService owns the profile data lifecycle: read with defaulting,
// full-overwrite saves, registration and public username resolution.
type ProfileService struct {
	repo     *repository.ProfileRepository
	provider identity.Provider
	now      func() time.Time
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo *repository.ProfileRepository, provider identity.Provider) *ProfileService {
	return &ProfileService{
		repo:     repo,
		provider: provider,
		now:      time.Now,
	}
}

// LoadResult is what the dashboard and the editor start from.
type LoadResult struct {
	Record domain.ProfileRecord
	// Exists is false when Record was synthesized from the identity and has
	// not been saved yet.
	Exists bool
}

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Load reads the identity's record for editing. A missing record is
// synthesized in memory and not persisted.
func (s *ProfileService) Load(ctx context.Context, id domain.Identity) (*LoadResult, error) {
	if strings.TrimSpace(id.UID) == "" {
		return nil, domain.ErrInvalidIdentity
	}

	rec, err := s.repo.GetByUID(ctx, id.UID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	switch {
	case err == nil:
		return &LoadResult{Record: domain.ForEditing(*rec), Exists: true}, nil
	case errors.Is(err, domain.ErrProfileNotFound):
		return &LoadResult{Record: domain.NewRecordFor(id), Exists: false}, nil
	default:
		logging.FromContext(ctx).Error("load profile failed", zap.Error(err))
		return nil, err
	}
}

// Get returns the stored record as-is (decoded, without editor defaults) or
// domain.ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, uid string) (*domain.ProfileRecord, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, domain.ErrInvalidIdentity
	}

	rec, err := s.repo.GetByUID(ctx, uid)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			logging.FromContext(ctx).Error("get profile failed", zap.Error(err))
		}
		return nil, err
	}
	return rec, nil
}

// Save overwrites the whole document stored under uid with rec. Username,
// fullname, email and createdAt cannot change once a record exists; changes
// to them are ignored.
func (s *ProfileService) Save(ctx context.Context, uid string, rec domain.ProfileRecord) (*domain.ProfileRecord, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, domain.ErrInvalidIdentity
	}
	if err := domain.ValidateRecord(rec); err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	out := rec.Clone()

	existing, err := s.repo.GetByUID(ctx, uid)
	switch {
	case err == nil:
		if out.Username != existing.Username || out.Fullname != existing.Fullname || out.Email != existing.Email {
			log.Warn("ignoring changes to immutable profile fields",
				zap.String("stored_username", existing.Username),
				zap.String("submitted_username", out.Username))
		}
		out.Username = existing.Username
		out.Fullname = existing.Fullname
		out.Email = existing.Email
		out.CreatedAt = existing.CreatedAt
		if out.CreatedAt == "" {
			out.CreatedAt = s.timestamp()
		}
	case errors.Is(err, domain.ErrProfileNotFound):
		out.Username = domain.NormalizeUsername(out.Username)
		if out.Username != "" {
			if err := s.ensureUsernameFree(ctx, out.Username, uid); err != nil {
				return nil, err
			}
		}
		out.CreatedAt = s.timestamp()
	default:
		log.Error("save profile: read before write failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	if out.Projects == nil {
		out.Projects = []domain.ProjectEntry{}
	}

	if err := s.repo.Put(ctx, uid, out); err != nil {
		log.Error("save profile failed", zap.Error(err))
		return nil, err
	}

	log.Info("profile saved", zap.Int("projects", len(out.Projects)))
	return &out, nil
}

// Register creates the identity with the provider and persists its initial
// record. Usernames are checked for uniqueness before the identity exists.
func (s *ProfileService) Register(ctx context.Context, req RegisterRequest) (*domain.Identity, *domain.ProfileRecord, error) {
	log := logging.FromContext(ctx)

	username := domain.NormalizeUsername(req.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, nil, err
	}
	fullname := strings.TrimSpace(req.Fullname)
	if fullname == "" {
		return nil, nil, domain.ErrFullnameRequired
	}
	email := strings.TrimSpace(req.Email)
	if err := identity.ValidateCredentials(email, req.Password); err != nil {
		return nil, nil, err
	}

	if err := s.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, nil, err
	}

	id, err := s.provider.SignUp(ctx, email, req.Password, fullname)
	if err != nil {
		log.Warn("sign up rejected", zap.String("kind", string(identity.KindOf(err))), zap.Error(err))
		return nil, nil, err
	}

	rec := domain.ProfileRecord{
		Username:  username,
		Fullname:  fullname,
		Email:     email,
		Projects:  []domain.ProjectEntry{},
		CreatedAt: s.timestamp(),
	}

	if err := s.repo.Put(ctx, id.UID, rec); err != nil {
		log.Error("persist registered profile failed", zap.String("uid", id.UID), zap.Error(err))
		// The identity would otherwise exist without a profile and block the
		// email from registering again.
		if delErr := s.provider.DeleteIdentity(context.WithoutCancel(ctx), id.UID); delErr != nil {
			log.Error("rollback of identity failed", zap.String("uid", id.UID), zap.Error(delErr))
		}
		return nil, nil, err
	}

	log.Info("user registered", zap.String("uid", id.UID), zap.String("username", username))
	return id, &rec, nil
}

// Resolve maps a public username to its record. When several records share
// the username the first one in store order is returned.
func (s *ProfileService) Resolve(ctx context.Context, username string) (*domain.ProfileRecord, error) {
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}

	matches, err := s.repo.FindByUsername(ctx, username)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logging.FromContext(ctx).Error("resolve username failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	if len(matches) > 1 {
		logging.FromContext(ctx).Warn("username collision",
			zap.String("username", username),
			zap.Int("records", len(matches)),
			zap.String("served_uid", matches[0].UID))
	}

	rec := matches[0].Record
	return &rec, nil
}

// ensureUsernameFree fails with ErrUsernameTaken when a record other than
// ownerUID already uses username.
func (s *ProfileService) ensureUsernameFree(ctx context.Context, username, ownerUID string) error {
	matches, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.UID != ownerUID {
			return domain.ErrUsernameTaken
		}
	}
	return nil
}

func (s *ProfileService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
