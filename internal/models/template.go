package models

import "time"

// DefaultTemplateCategory is used when a template is created without a category.
const DefaultTemplateCategory = "general"

// Template describes a slide deck template. Read-mostly.
type Template struct {
	// ID is "TMP" + millisecond timestamp + 5 random base36 characters.
	ID           string    `json:"templateID"`
	Name         string    `json:"templateName"`
	PreviewImage string    `json:"previewImage"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TemplateFields are the caller-supplied fields for creating a template.
type TemplateFields struct {
	Name         string
	PreviewImage string
	Category     string
}

// TemplatePatch is a shallow update of a template.
type TemplatePatch struct {
	Name         *string
	PreviewImage *string
	Category     *string
}
