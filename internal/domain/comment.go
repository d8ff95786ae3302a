package domain

import "time"

// UserType classifies a comment author or a viewer as internal or external.
type UserType string

const (
	UserTypeInternal UserType = "internal"
	UserTypeExternal UserType = "external"
)

// IsValid reports whether the user type is known.
func (u UserType) IsValid() bool {
	return u == UserTypeInternal || u == UserTypeExternal
}

// Comment is a threaded message on a ticket. Replies carry the id of their
// top-level parent; nesting is one level deep.
type Comment struct {
	ID          int64
	TicketID    string
	ParentID    *int64
	Author      string
	Content     string
	UserType    UserType
	Attachments []string
	CreatedAt   time.Time
	Replies     []Comment
}

// IsReply reports whether the comment is attached to a parent.
func (c Comment) IsReply() bool {
	return c.ParentID != nil
}
