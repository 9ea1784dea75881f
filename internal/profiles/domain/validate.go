package domain

import (
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,30}$`)

// Route segments that would shadow pages if used as a public username.
var reservedUsernames = map[string]struct{}{
	"api": {}, "dashboard": {}, "edit": {}, "health": {}, "healthz": {}, "login": {},
	"logout": {}, "metrics": {}, "preview": {}, "register": {}, "static": {},
}

// NormalizeUsername lowercases and trims a chosen handle.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername checks an already normalized username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if _, reserved := reservedUsernames[username]; reserved {
		return ErrUsernameTaken
	}
	return nil
}

// ValidateRecord applies the editor's input rules to a whole record: the
// role must come from Roles and links must be absolute http(s) URLs.
func ValidateRecord(rec ProfileRecord) error {
	if !IsValidRole(rec.Role) {
		return ErrInvalidRole
	}
	for _, p := range rec.Projects {
		if err := validateLink(p.Link); err != nil {
			return err
		}
	}
	return nil
}
