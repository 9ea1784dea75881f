package editor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
)

// A session stuck in saving for longer than this is considered abandoned.
const staleSaveAfter = time.Minute

// Profiles is the slice of the profile service the editor needs.
type Profiles interface {
	Load(ctx context.Context, id domain.Identity) (*service.LoadResult, error)
	Save(ctx context.Context, uid string, rec domain.ProfileRecord) (*domain.ProfileRecord, error)
}

// Service runs edit sessions: loading → ready → saving → ready|failed.
type Service struct {
	profiles Profiles
	store    SessionStore
	now      func() time.Time
}

func NewService(profiles Profiles, store SessionStore) *Service {
	return &Service{profiles: profiles, store: store, now: time.Now}
}

// NewSessionID returns an id for a browser that has no edit session yet.
func NewSessionID() string {
	return uuid.NewString()
}

// Open returns the caller's session, loading a fresh draft from the profile
// store when none exists.
func (s *Service) Open(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	sess, err := s.store.Get(ctx, id.UID, sid)
	switch {
	case err == nil:
		if sess.State == StateSaving && s.now().Sub(sess.UpdatedAt) > staleSaveAfter {
			sess.State = StateFailed
			sess.LastError = SaveFailedMessage
			if err := s.store.Put(ctx, sess); err != nil {
				return nil, err
			}
		}
		return sess, nil
	case !errors.Is(err, ErrSessionNotFound):
		return nil, err
	}

	sess = &Session{ID: sid, UID: id.UID, State: StateLoading}

	res, err := s.profiles.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess.Draft = *domain.NewDraft(res.Record)
	sess.Exists = res.Exists
	sess.State = StateReady
	sess.UpdatedAt = s.now()

	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) SetField(ctx context.Context, id domain.Identity, sid, field, value string) (*Session, error) {
	return s.mutate(ctx, id, sid, func(d *domain.Draft) error {
		return d.SetField(field, value)
	})
}

func (s *Service) SetProjectField(ctx context.Context, id domain.Identity, sid string, index int, field, value string) (*Session, error) {
	return s.mutate(ctx, id, sid, func(d *domain.Draft) error {
		return d.SetProjectField(index, field, value)
	})
}

func (s *Service) AddProject(ctx context.Context, id domain.Identity, sid string) (*Session, error) {
	return s.mutate(ctx, id, sid, func(d *domain.Draft) error {
		d.AddProject()
		return nil
	})
}

// RemoveProject is a no-op when the draft has a single project left.
func (s *Service) RemoveProject(ctx context.Context, id domain.Identity, sid string, index int) (*Session, error) {
	return s.mutate(ctx, id, sid, func(d *domain.Draft) error {
		_, err := d.RemoveProject(index)
		return err
	})
}

// Apply runs several draft operations as one mutation, e.g. a whole form
// post. Nothing is stored when any of them fails.
func (s *Service) Apply(ctx context.Context, id domain.Identity, sid string, apply func(*domain.Draft) error) (*Session, error) {
	return s.mutate(ctx, id, sid, apply)
}

// Save writes the draft through the profile write path. On success the
// session is dropped; on failure it is kept in the failed state with the
// draft untouched.
func (s *Service) Save(ctx context.Context, id domain.Identity, sid string) (*domain.ProfileRecord, error) {
	log := logging.FromContext(ctx)

	sess, err := s.Open(ctx, id, sid)
	if err != nil {
		return nil, err
	}
	if !sess.Editable() {
		return nil, ErrSaveInProgress
	}

	sess.State = StateSaving
	sess.LastError = ""
	sess.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	saved, saveErr := s.profiles.Save(ctx, id.UID, sess.Draft.Record)

	// Session bookkeeping must land even if the request went away meanwhile.
	bctx := context.WithoutCancel(ctx)
	if saveErr != nil {
		log.Warn("draft save failed", zap.String("session", sid), zap.Error(saveErr))
		sess.State = StateFailed
		sess.LastError = SaveFailedMessage
		sess.UpdatedAt = s.now()
		if err := s.store.Put(bctx, sess); err != nil {
			log.Error("failed to record save failure", zap.Error(err))
		}
		return nil, saveErr
	}

	if err := s.store.Delete(bctx, id.UID, sid); err != nil {
		log.Error("failed to drop saved draft", zap.Error(err))
	}
	return saved, nil
}

// Discard drops every draft of the identity, e.g. on sign-out.
func (s *Service) Discard(ctx context.Context, uid string) error {
	return s.store.DeleteAll(ctx, uid)
}

func (s *Service) mutate(ctx context.Context, id domain.Identity, sid string, apply func(*domain.Draft) error) (*Session, error) {
	sess, err := s.Open(ctx, id, sid)
	if err != nil {
		return nil, err
	}
	if !sess.Editable() {
		return sess, ErrSaveInProgress
	}

	if err := apply(&sess.Draft); err != nil {
		return sess, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess.State = StateReady
	sess.LastError = ""
	sess.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
