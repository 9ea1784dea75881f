package domain

// ProjectEntry is one showcased work item. Links open in a new browsing
// context when rendered.
type ProjectEntry struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Link        string `json:"link" firestore:"link"`
}

// ProfileRecord is the per-user portfolio document. It is keyed by the
// identity uid, which is never stored inside the record.
type ProfileRecord struct {
	Username  string         `json:"username" firestore:"username"`
	Fullname  string         `json:"fullname" firestore:"fullname"`
	Email     string         `json:"email" firestore:"email"`
	Name      string         `json:"name" firestore:"name"`
	Role      string         `json:"role" firestore:"role"`
	Bio       string         `json:"bio" firestore:"bio"`
	Projects  []ProjectEntry `json:"projects" firestore:"projects"`
	CreatedAt string         `json:"createdAt" firestore:"createdAt"`
}

// Identity is the authenticated principal handed over by the auth provider.
// Email and DisplayName may be empty.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Document field names.
const (
	FieldUsername    = "username"
	FieldFullname    = "fullname"
	FieldEmail       = "email"
	FieldName        = "name"
	FieldRole        = "role"
	FieldBio         = "bio"
	FieldProjects    = "projects"
	FieldCreatedAt   = "createdAt"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldLink        = "link"
)

// Roles is the fixed list offered by the editor. An empty role is also valid.
var Roles = []string{
	"Software Engineer",
	"Frontend Developer",
	"Backend Developer",
	"Full Stack Developer",
	"UI/UX Designer",
	"Product Manager",
	"Data Scientist",
	"DevOps Engineer",
	"Mobile Developer",
	"QA Engineer",
	"Other",
}

func IsValidRole(role string) bool {
	if role == "" {
		return true
	}
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so drafts never share the projects backing array.
func (r ProfileRecord) Clone() ProfileRecord {
	out := r
	out.Projects = make([]ProjectEntry, len(r.Projects))
	copy(out.Projects, r.Projects)
	return out
}
