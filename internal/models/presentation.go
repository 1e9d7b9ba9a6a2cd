package models

import "time"

// Presentation is a standalone ("normal mode") deck owned by one user.
type Presentation struct {
	// ID is a UUID.
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Slides []DeckSlide `json:"slides"`

	// Date is the last time the presentation was saved.
	Date time.Time `json:"date"`
}

// DeckSlide is a slide inside a standalone presentation. It has no owner,
// status or comments; those only exist in group mode.
type DeckSlide struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
