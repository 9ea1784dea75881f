package domain

import (
	"net/url"
	"strings"
)

// Draft is the in-memory working copy of a ProfileRecord during an edit
// session. All mutations keep at least one project row.
type Draft struct {
	Record ProfileRecord `json:"record"`
}

// NewDraft copies rec and seeds the project list when it is empty.
func NewDraft(rec ProfileRecord) *Draft {
	return &Draft{Record: ForEditing(rec)}
}

// SetField replaces one editable scalar field.
func (d *Draft) SetField(field, value string) error {
	switch field {
	case FieldName:
		d.Record.Name = value
	case FieldRole:
		if !IsValidRole(value) {
			return ErrInvalidRole
		}
		d.Record.Role = value
	case FieldBio:
		d.Record.Bio = value
	case FieldUsername, FieldFullname, FieldEmail, FieldCreatedAt:
		return ErrReadOnlyField
	default:
		return ErrUnknownField
	}
	return nil
}

// SetProjectField replaces one field of the project at index, leaving the
// other fields and entries untouched.
func (d *Draft) SetProjectField(index int, field, value string) error {
	if index < 0 || index >= len(d.Record.Projects) {
		return ErrProjectIndex
	}

	p := &d.Record.Projects[index]
	switch field {
	case FieldTitle:
		p.Title = value
	case FieldDescription:
		p.Description = value
	case FieldLink:
		if err := validateLink(value); err != nil {
			return err
		}
		p.Link = value
	default:
		return ErrUnknownField
	}
	return nil
}

// AddProject appends one blank entry.
func (d *Draft) AddProject() {
	d.Record.Projects = append(d.Record.Projects, ProjectEntry{})
}

// RemoveProject splices out the entry at index. With a single entry left it
// is a no-op and reports false.
func (d *Draft) RemoveProject(index int) (bool, error) {
	if index < 0 || index >= len(d.Record.Projects) {
		return false, ErrProjectIndex
	}
	if len(d.Record.Projects) <= 1 {
		return false, nil
	}

	projects := make([]ProjectEntry, 0, len(d.Record.Projects)-1)
	projects = append(projects, d.Record.Projects[:index]...)
	projects = append(projects, d.Record.Projects[index+1:]...)
	d.Record.Projects = projects
	return true, nil
}

func validateLink(link string) error {
	if link == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidLink
	}
	return nil
}
