// Package render projects stored profile records into what the public and
// preview pages display.
package render

import (
	"strings"

	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
)

type State string

const (
	StateReady    State = "ready"
	StateEmpty    State = "empty"
	StateNotFound State = "not_found"
)

// LinkRel is set on every outbound project link.
const LinkRel = "noopener noreferrer"

type ProjectView struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	HasLink     bool   `json:"has_link"`
}

type PortfolioView struct {
	State       State         `json:"state"`
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name"`
	Role        string        `json:"role"`
	Bio         string        `json:"bio"`
	Projects    []ProjectView `json:"projects"`
}

// Portfolio is a pure projection of rec. A record without projects renders
// as empty, never as not found.
func Portfolio(rec domain.ProfileRecord) PortfolioView {
	v := PortfolioView{
		State:       StateReady,
		Username:    rec.Username,
		DisplayName: DisplayName(rec),
		Role:        rec.Role,
		Bio:         rec.Bio,
		Projects:    make([]ProjectView, 0, len(rec.Projects)),
	}
	for _, p := range rec.Projects {
		link := strings.TrimSpace(p.Link)
		v.Projects = append(v.Projects, ProjectView{
			Title:       p.Title,
			Description: p.Description,
			Link:        link,
			HasLink:     link != "",
		})
	}
	if len(v.Projects) == 0 {
		v.State = StateEmpty
	}
	return v
}

// NotFound is the view for a username nobody owns.
func NotFound(username string) PortfolioView {
	return PortfolioView{State: StateNotFound, Username: username, Projects: []ProjectView{}}
}

// DisplayName prefers the registered full name and falls back to name.
func DisplayName(rec domain.ProfileRecord) string {
	if n := strings.TrimSpace(rec.Fullname); n != "" {
		return n
	}
	return strings.TrimSpace(rec.Name)
}
