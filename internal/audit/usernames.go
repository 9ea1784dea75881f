// Package audit reports profile records that break the username rules the
// write path enforces, e.g. documents written before uniqueness was checked.
package audit

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/domain"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
)

// Lister enumerates every stored profile.
type Lister interface {
	List(ctx context.Context) ([]repository.StoredProfile, error)
}

// Collision is a username shared by several records, in store order. The
// first uid is the one public pages currently serve.
type Collision struct {
	Username string   `json:"username"`
	UIDs     []string `json:"uids"`
}

type Report struct {
	Total      int         `json:"total"`
	Collisions []Collision `json:"collisions"`
	// Unnamed lists records without a username; they cannot be reached publicly.
	Unnamed []string `json:"unnamed"`
	// Invalid lists records whose username would be rejected at registration.
	Invalid []string `json:"invalid"`
}

func (r Report) Clean() bool {
	return len(r.Collisions) == 0 && len(r.Unnamed) == 0 && len(r.Invalid) == 0
}

// Usernames scans all records once and groups them by username.
func Usernames(ctx context.Context, lister Lister) (*Report, error) {
	profiles, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Total:      len(profiles),
		Collisions: []Collision{},
		Unnamed:    []string{},
		Invalid:    []string{},
	}

	owners := make(map[string][]string)
	for _, p := range profiles {
		name := p.Record.Username
		if name == "" {
			report.Unnamed = append(report.Unnamed, p.UID)
			continue
		}
		if domain.ValidateUsername(name) != nil {
			report.Invalid = append(report.Invalid, p.UID)
		}
		owners[name] = append(owners[name], p.UID)
	}

	for name, uids := range owners {
		if len(uids) > 1 {
			report.Collisions = append(report.Collisions, Collision{Username: name, UIDs: uids})
		}
	}
	sort.Slice(report.Collisions, func(i, j int) bool {
		return report.Collisions[i].Username < report.Collisions[j].Username
	})

	log := logging.FromContext(ctx)
	for _, col := range report.Collisions {
		log.Warn("username collision", zap.String("username", col.Username), zap.Strings("uids", col.UIDs))
	}
	log.Info("username audit finished",
		zap.Int("records", report.Total),
		zap.Int("collisions", len(report.Collisions)),
		zap.Int("unnamed", len(report.Unnamed)),
		zap.Int("invalid", len(report.Invalid)))

	return report, nil
}
