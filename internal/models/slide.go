package models

import "time"

// SlideStatus is the editing state of a group slide.
type SlideStatus string

const (
	StatusInProgress SlideStatus = "in-progress"
	StatusCompleted  SlideStatus = "completed"
)

// Valid reports whether s is a known status.
func (s SlideStatus) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// Slide is a single editable unit inside a group's deck.
type Slide struct {
	// ID is unique within the group ("slide_<ms>_<random>").
	ID string `json:"id"`

	Title string `json:"title"`

	// Owner is the user ID responsible for the slide, nil when unassigned.
	Owner *string `json:"owner"`

	Status SlideStatus `json:"status"`

	Content SlideContent `json:"content"`

	Comments []Comment `json:"comments"`

	// UpdatedAt is set when the slide content is saved from the editor.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// SlideContent holds the rendered and plain-text forms of a slide body.
type SlideContent struct {
	HTML string `json:"html,omitempty"`
	Text string `json:"text,omitempty"`
}

// Comment is one message in a slide's comment thread.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorID"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
