package domain

import "time"

// DecodeRecord turns an untyped stored document into a ProfileRecord.
// Missing or mistyped string fields become "", a missing or mistyped
// projects list becomes empty and non-object project entries are dropped.
// This is the only place raw documents are interpreted.
func DecodeRecord(doc map[string]interface{}) ProfileRecord {
	rec := ProfileRecord{
		Username:  stringField(doc, FieldUsername),
		Fullname:  stringField(doc, FieldFullname),
		Email:     stringField(doc, FieldEmail),
		Name:      stringField(doc, FieldName),
		Role:      stringField(doc, FieldRole),
		Bio:       stringField(doc, FieldBio),
		CreatedAt: timestampField(doc, FieldCreatedAt),
		Projects:  []ProjectEntry{},
	}

	switch raw := doc[FieldProjects].(type) {
	case []interface{}:
		for _, item := range raw {
			if p, ok := decodeProject(item); ok {
				rec.Projects = append(rec.Projects, p)
			}
		}
	case []map[string]interface{}:
		for _, item := range raw {
			p, _ := decodeProject(item)
			rec.Projects = append(rec.Projects, p)
		}
	}

	return rec
}

// EncodeRecord is the inverse of DecodeRecord. The full record is always
// written, never a subset of fields.
func EncodeRecord(rec ProfileRecord) map[string]interface{} {
	projects := make([]interface{}, 0, len(rec.Projects))
	for _, p := range rec.Projects {
		projects = append(projects, map[string]interface{}{
			FieldTitle:       p.Title,
			FieldDescription: p.Description,
			FieldLink:        p.Link,
		})
	}

	return map[string]interface{}{
		FieldUsername:  rec.Username,
		FieldFullname:  rec.Fullname,
		FieldEmail:     rec.Email,
		FieldName:      rec.Name,
		FieldRole:      rec.Role,
		FieldBio:       rec.Bio,
		FieldProjects:  projects,
		FieldCreatedAt: rec.CreatedAt,
	}
}

// ForEditing applies the editor defaults on top of a decoded record: an
// empty project list is seeded with a single blank entry.
func ForEditing(rec ProfileRecord) ProfileRecord {
	out := rec.Clone()
	if len(out.Projects) == 0 {
		out.Projects = []ProjectEntry{{}}
	}
	return out
}

// NewRecordFor synthesizes the in-memory record shown to an identity that
// has no stored document yet. It is not persisted by this call.
func NewRecordFor(id Identity) ProfileRecord {
	return ProfileRecord{
		Fullname: id.DisplayName,
		Email:    id.Email,
		Name:     id.DisplayName,
		Projects: []ProjectEntry{{}},
	}
}

func decodeProject(item interface{}) (ProjectEntry, bool) {
	m, ok := item.(map[string]interface{})
	if !ok {
		return ProjectEntry{}, false
	}
	return ProjectEntry{
		Title:       stringField(m, FieldTitle),
		Description: stringField(m, FieldDescription),
		Link:        stringField(m, FieldLink),
	}, true
}

func stringField(doc map[string]interface{}, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

// Firestore hands back native timestamps when a document was written by
// another client; those are normalized to RFC 3339.
func timestampField(doc map[string]interface{}, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	}
	return ""
}
