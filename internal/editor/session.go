package editor

import (
	"errors"
	"time"

	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

// State of an edit session.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateSaving  State = "saving"
	StateFailed  State = "failed"
)

// SaveFailedMessage is shown when the write path rejects a save.
const SaveFailedMessage = "Failed to save portfolio. Please try again."

var (
	ErrSessionNotFound = errors.New("edit session not found")
	ErrSaveInProgress  = errors.New("a save is already in progress")
)

// Session is one browser's draft of a profile. It only lives in the draft
// store and is dropped after a successful save.
type Session struct {
	ID        string       `json:"id"`
	UID       string       `json:"uid"`
	State     State        `json:"state"`
	Draft     domain.Draft `json:"draft"`
	Exists    bool         `json:"exists"`
	LastError string       `json:"last_error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Editable reports whether the draft accepts mutations.
func (s *Session) Editable() bool {
	return s.State == StateReady || s.State == StateFailed
}

// CanRemoveProject mirrors the one-row floor so pages can hide the button.
func (s *Session) CanRemoveProject() bool {
	return len(s.Draft.Record.Projects) > 1
}
