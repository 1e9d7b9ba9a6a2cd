package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/storage"
)

// Keys in the session-scoped store.
const (
	KeyLoadPresentation = "loadPresentation"
	KeyGroupID          = "groupID"
	KeySlideID          = "slideID"
	KeySelectedTemplate = "selectedTemplate"
)

// SlidePayload is what the editor receives when a group slide is opened.
type SlidePayload struct {
	ID      string              `json:"id"`
	Title   string              `json:"title"`
	Content models.SlideContent `json:"content"`
	GroupID string              `json:"groupID"`
	SlideID string              `json:"slideID"`
	Owner   *string             `json:"owner"`
	Status  models.SlideStatus  `json:"status"`
}

// Transfer is everything currently handed off. Payload holds the raw
// loadPresentation document, either a SlidePayload or a Presentation.
type Transfer struct {
	Payload          json.RawMessage `json:"payload,omitempty"`
	GroupID          string          `json:"groupID,omitempty"`
	SlideID          string          `json:"slideID,omitempty"`
	SelectedTemplate string          `json:"selectedTemplate,omitempty"`
}

// Handoff passes values between screens through a store that does not
// outlive the session. Keys are namespaced per viewer; use For to get the
// handoff of one viewer.
type Handoff struct {
	kv     storage.KeyValue
	prefix string
}

// NewHandoff creates a Handoff over the session-scoped store kv.
func NewHandoff(kv storage.KeyValue) *Handoff {
	return &Handoff{kv: kv}
}

// For returns the handoff of one viewer. Viewers never see each other's keys.
func (h *Handoff) For(owner string) *Handoff {
	return &Handoff{kv: h.kv, prefix: h.prefix + owner + "/"}
}

func (h *Handoff) key(name string) string {
	return h.prefix + name
}

// OpenGroupSlide hands a group slide to the editor and returns what it wrote.
func (h *Handoff) OpenGroupSlide(ctx context.Context, groupID string, slide *models.Slide) (*Transfer, error) {
	payload, err := json.Marshal(SlidePayload{
		ID:      slide.ID,
		Title:   slide.Title,
		Content: slide.Content,
		GroupID: groupID,
		SlideID: slide.ID,
		Owner:   slide.Owner,
		Status:  slide.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode slide: %w", err)
	}
	if err := h.kv.Set(ctx, h.key(KeyLoadPresentation), string(payload)); err != nil {
		return nil, fmt.Errorf("failed to hand off slide: %w", err)
	}
	if err := h.kv.Set(ctx, h.key(KeyGroupID), groupID); err != nil {
		return nil, fmt.Errorf("failed to hand off group: %w", err)
	}
	if err := h.kv.Set(ctx, h.key(KeySlideID), slide.ID); err != nil {
		return nil, fmt.Errorf("failed to hand off slide: %w", err)
	}
	return &Transfer{Payload: payload, GroupID: groupID, SlideID: slide.ID}, nil
}

// OpenPresentation hands a standalone presentation to the editor and drops
// any group context left from an earlier handoff.
func (h *Handoff) OpenPresentation(ctx context.Context, p *models.Presentation) (*Transfer, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode presentation: %w", err)
	}
	if err := h.kv.Set(ctx, h.key(KeyLoadPresentation), string(payload)); err != nil {
		return nil, fmt.Errorf("failed to hand off presentation: %w", err)
	}
	for _, name := range []string{KeyGroupID, KeySlideID} {
		if err := h.kv.Remove(ctx, h.key(name)); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return &Transfer{Payload: payload}, nil
}

// SelectTemplate records the template the next deck starts from.
func (h *Handoff) SelectTemplate(ctx context.Context, templateName string) error {
	if err := h.kv.Set(ctx, h.key(KeySelectedTemplate), templateName); err != nil {
		return fmt.Errorf("failed to hand off template: %w", err)
	}
	return nil
}

// Peek returns the pending transfer without consuming it.
func (h *Handoff) Peek(ctx context.Context) (*Transfer, error) {
	var t Transfer
	for key, dst := range map[string]*string{
		KeyGroupID:          &t.GroupID,
		KeySlideID:          &t.SlideID,
		KeySelectedTemplate: &t.SelectedTemplate,
	} {
		v, err := h.get(ctx, key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	raw, err := h.get(ctx, KeyLoadPresentation)
	if err != nil {
		return nil, err
	}
	if raw != "" && json.Valid([]byte(raw)) {
		t.Payload = json.RawMessage(raw)
	}
	return &t, nil
}

// Clear removes every handoff key.
func (h *Handoff) Clear(ctx context.Context) error {
	for _, name := range []string{KeyLoadPresentation, KeyGroupID, KeySlideID, KeySelectedTemplate} {
		if err := h.kv.Remove(ctx, h.key(name)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

func (h *Handoff) get(ctx context.Context, key string) (string, error) {
	entry, err := h.kv.Get(ctx, h.key(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, nil
}
