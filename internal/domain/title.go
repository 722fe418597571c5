package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Title limits, counted in characters.
const (
	MaxTaskTitleLength    = 200
	MinProjectTitleLength = 3
	MaxProjectTitleLength = 100
	MaxDescriptionLength  = 500
)

// Title is the human-readable identifier of a task.
// Titles are unique within a scheduling request and dependencies refer to them.
type Title string

// NewTitle creates a Title with validation
func NewTitle(value string) (Title, error) {
	t := Title(value)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// Validate checks if the title is usable as a task identifier
func (t Title) Validate() error {
	s := string(t)

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("task title cannot be empty")
	}

	if n := utf8.RuneCountInString(s); n > MaxTaskTitleLength {
		return fmt.Errorf("task title %q exceeds maximum length of %d characters", truncate(s, 40), MaxTaskTitleLength)
	}

	return nil
}

// String returns the string representation
func (t Title) String() string {
	return string(t)
}

// Equals checks if this title equals another
func (t Title) Equals(other Title) bool {
	return t == other
}

// ProjectTitle names a project.
type ProjectTitle string

// NewProjectTitle creates a ProjectTitle with validation
func NewProjectTitle(value string) (ProjectTitle, error) {
	p := ProjectTitle(value)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks the project title length
func (p ProjectTitle) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(string(p)))
	if n < MinProjectTitleLength || n > MaxProjectTitleLength {
		return fmt.Errorf("project title must be between %d and %d characters", MinProjectTitleLength, MaxProjectTitleLength)
	}
	return nil
}

// String returns the string representation
func (p ProjectTitle) String() string {
	return string(p)
}

// ValidateDescription checks an optional free-text description.
func ValidateDescription(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum length of %d characters", MaxDescriptionLength)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
