package models

import "time"

// Notice is a board entry visible to a role audience. An empty Audience
// means the notice is visible to everyone.
type Notice struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Audience  *Role     `db:"audience" json:"audience,omitempty"`
	PostedBy  string    `db:"posted_by" json:"posted_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NoticeFilter scopes notice listings.
type NoticeFilter struct {
	Audience  *Role
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
