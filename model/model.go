// Package model defines the portal's entities and the canonical numeric ID type.
package model

import (
	"strconv"
	"time"
)

// ID is an entity identifier. The backend may return ids as JSON numbers or as
// digit-only strings (json-server 1.x does the latter); both decode to the same
// numeric value so the rest of the portal only ever sees numeric ids.
type ID int64

// UnmarshalJSON accepts a JSON number or a digit-only string. Any other value
// decodes to 0 rather than failing the whole payload, so a record with a
// malformed id is still usable and its id is simply ignored wherever a maximum
// is computed.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*id = 0
		return nil
	}
	*id = ID(n)
	return nil
}

// User is a portal account. Users are seeded in the backing store and are
// read-only here; "logging in" just selects one.
type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Comment is a reply embedded in a news item. Comments have no identity
// outside their parent item.
type Comment struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	UserID    ID     `json:"user_id"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewsItem is a published article with its comments inline.
type NewsItem struct {
	ID       ID        `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	AuthorID ID        `json:"author_id"`
	Comments []Comment `json:"comments"`
}

// NextCommentID returns the id for a new comment: one past the highest
// existing id, or 1 for an empty collection. Ids that failed to parse decode
// to 0 and so never win the max.
func NextCommentID(existing []Comment) ID {
	var max ID
	for _, c := range existing {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// NewComment builds a comment authored by userID, stamped with the current
// time in RFC 3339 form.
func NewComment(existing []Comment, userID ID, text string) Comment {
	return Comment{
		ID:        NextCommentID(existing),
		Text:      text,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
