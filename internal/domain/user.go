package domain

// User roles as carried in the auth token
const (
	RoleUser       = "user"
	RoleOrganizer  = "organizer"
	RoleSuperAdmin = "super_admin"
)

// Contact is the projection of a user needed to deliver notifications.
// Account management lives in a separate service; this module only reads.
type Contact struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}
