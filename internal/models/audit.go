package models

import "time"

// Activity log action identifiers.
const (
	ActivityLogin          = "LOGIN"
	ActivityLogout         = "LOGOUT"
	ActivityPasswordChange = "PASSWORD_CHANGE"
	ActivityCreate         = "CREATE"
	ActivityUpdate         = "UPDATE"
	ActivityDelete         = "DELETE"
)

// ActivityLog records who did what. Writes are fire-and-forget: a failed
// audit insert never fails the operation it describes.
type ActivityLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
