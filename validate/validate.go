// Package validate holds the input rules applied before any mutating call.
// The rules are advisory: nothing stops another client from writing invalid
// data straight to the backend.
package validate

import "strings"

const minBodyLength = 20

// News validates a news submission and returns human-readable problems,
// empty when the input is acceptable.
func News(title, body string) []string {
	var errs []string
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "News title cannot be empty.")
	}
	if len(strings.TrimSpace(body)) < minBodyLength {
		errs = append(errs, "News body must be at least 20 characters.")
	}
	return errs
}

// Comment validates a comment submission.
func Comment(text string) []string {
	var errs []string
	if strings.TrimSpace(text) == "" {
		errs = append(errs, "Comment text cannot be empty.")
	}
	return errs
}
