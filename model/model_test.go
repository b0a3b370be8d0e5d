package model

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `42`, 42},
		{"digit string", `"42"`, 42},
		{"non-numeric string", `"abc"`, 0},
		{"empty string", `""`, 0},
		{"negative number", `-3`, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.in, err)
			}
			if id != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, id, tt.want)
			}
		})
	}
}

func TestIDNormalizationNested(t *testing.T) {
	// json-server 1.x returns top-level ids as strings; the typed decode must
	// normalize them at every nesting level.
	raw := `{
		"id": "42",
		"title": "a",
		"body": "b",
		"author_id": 7,
		"comments": [
			{"id": "3", "text": "x", "user_id": "7"},
			{"id": 4, "text": "y", "user_id": 1}
		]
	}`

	var item NewsItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if item.ID != 42 {
		t.Errorf("ID = %d, want 42", item.ID)
	}
	if item.Comments[0].ID != 3 || item.Comments[0].UserID != 7 {
		t.Errorf("comment[0] ids = %d/%d, want 3/7", item.Comments[0].ID, item.Comments[0].UserID)
	}
	if item.Comments[1].ID != 4 {
		t.Errorf("comment[1].ID = %d, want 4", item.Comments[1].ID)
	}
}

func TestNextCommentID(t *testing.T) {
	if got := NextCommentID(nil); got != 1 {
		t.Errorf("NextCommentID(nil) = %d, want 1", got)
	}

	// "x" decodes to 0 and is ignored in the max.
	raw := `[{"id": 3}, {"id": "7"}, {"id": "x"}]`
	var comments []Comment
	if err := json.Unmarshal([]byte(raw), &comments); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := NextCommentID(comments); got != 8 {
		t.Errorf("NextCommentID = %d, want 8", got)
	}
}

func TestNewComment(t *testing.T) {
	existing := []Comment{{ID: 2}}
	c := NewComment(existing, 5, "hello")
	if c.ID != 3 {
		t.Errorf("ID = %d, want 3", c.ID)
	}
	if c.UserID != 5 {
		t.Errorf("UserID = %d, want 5", c.UserID)
	}
	if c.Timestamp == "" {
		t.Error("Timestamp should be set")
	}
}
