// Package api defines the messages exchanged with the slidemaker RPC
// services. Messages are plain structs encoded as JSON by Codec.
package api

import (
	"time"

	"github.com/mmynk/slidemaker/internal/models"
	"github.com/mmynk/slidemaker/internal/search"
	"github.com/mmynk/slidemaker/internal/session"
)

// User is the public view of an account. It never carries the password hash.
type User struct {
	UserID     string    `json:"userID"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	QRCodeData string    `json:"qrcodeData"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewUser converts a stored user to its public view.
func NewUser(u *models.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		UserID:     u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Avatar:     u.Avatar,
		QRCodeData: u.QRCodeData,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Empty is used by RPCs without parameters or results.
type Empty struct{}

// ============================================
// AuthService
// ============================================

type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	RememberDevice  bool   `json:"rememberDevice"`
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RememberDevice bool   `json:"rememberDevice"`
}

type DeviceLoginRequest struct {
	DeviceToken string `json:"deviceToken"`
}

// AuthResponse is returned by every successful sign-in. DeviceToken is set
// only when the device was asked to be remembered.
type AuthResponse struct {
	User        *User  `json:"user"`
	Token       string `json:"token"`
	DeviceToken string `json:"deviceToken,omitempty"`
}

type CurrentUserResponse struct {
	User  *User `json:"user"`
	Guest bool  `json:"guest"`
}

type RecentUsersResponse struct {
	Users []models.RecentUser `json:"users"`
}

type ForgetRecentUserRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest changes only the fields that are set.
type UpdateProfileRequest struct {
	FullName   *string `json:"fullName,omitempty"`
	Email      *string `json:"email,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
	QRCodeData *string `json:"qrcodeData,omitempty"`
}

type UserResponse struct {
	User *User `json:"user"`
}

// ============================================
// GroupService
// ============================================

type CreateGroupRequest struct {
	Name string `json:"groupName"`
}

type GroupRequest struct {
	GroupID string `json:"groupID"`
}

type RenameGroupRequest struct {
	GroupID string `json:"groupID"`
	Name    string `json:"groupName"`
}

type MemberRequest struct {
	GroupID string `json:"groupID"`
	UserID  string `json:"userID"`
}

type GroupResponse struct {
	Group *models.Group `json:"group"`
}

type ListGroupsRequest struct {
	// Limit > 0 returns the caller's recent groups, at most Limit of them.
	// Zero returns every group the caller belongs to.
	Limit int `json:"limit"`
}

type ListGroupsResponse struct {
	Groups []models.Group `json:"groups"`
}

type MembersResponse struct {
	Members []*User `json:"members"`
}

// ============================================
// SlideService
// ============================================

type SlideRequest struct {
	GroupID string `json:"groupID"`
	SlideID string `json:"slideID"`
}

type AssignOwnerRequest struct {
	GroupID string `json:"groupID"`
	SlideID string `json:"slideID"`
	// OwnerID nil unassigns the slide.
	OwnerID *string `json:"ownerID"`
}

type SetStatusRequest struct {
	GroupID string             `json:"groupID"`
	SlideID string             `json:"slideID"`
	Status  models.SlideStatus `json:"status"`
}

type SetTitleRequest struct {
	GroupID string `json:"groupID"`
	SlideID string `json:"slideID"`
	Title   string `json:"title"`
}

type SaveContentRequest struct {
	GroupID string `json:"groupID"`
	SlideID string `json:"slideID"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type AddCommentRequest struct {
	GroupID string `json:"groupID"`
	SlideID string `json:"slideID"`
	Text    string `json:"text"`
}

type SlidesResponse struct {
	Slides []models.Slide `json:"slides"`
}

type SlideResponse struct {
	Slide *models.Slide `json:"slide"`
}

type CommentResponse struct {
	Comment *models.Comment `json:"comment"`
}

type HandoffResponse struct {
	Transfer *session.Transfer `json:"transfer"`
}

// ============================================
// RecentsService
// ============================================

type RecentRequest struct {
	// Kind is one of "groups", "presentations", "templates".
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type LastActiveGroupRequest struct {
	// GroupID "" clears the last active group.
	GroupID string `json:"groupID"`
}

type RecentsResponse struct {
	Recents *models.Recents `json:"recents"`
}

// ============================================
// TemplateService
// ============================================

type ListTemplatesRequest struct {
	Category string `json:"category"`
}

type ListTemplatesResponse struct {
	Templates []models.Template `json:"templates"`
}

type CreateTemplateRequest struct {
	Name         string `json:"templateName"`
	PreviewImage string `json:"previewImage"`
	Category     string `json:"category"`
}

type UpdateTemplateRequest struct {
	TemplateID   string  `json:"templateID"`
	Name         *string `json:"templateName,omitempty"`
	PreviewImage *string `json:"previewImage,omitempty"`
	Category     *string `json:"category,omitempty"`
}

type TemplateRequest struct {
	TemplateID string `json:"templateID"`
}

type RecentTemplatesRequest struct {
	Limit int `json:"limit"`
}

type TemplateResponse struct {
	Template *models.Template `json:"template"`
}

// ============================================
// PresentationService
// ============================================

type PresentationRequest struct {
	ID string `json:"id"`
}

type SavePresentationRequest struct {
	Presentation models.Presentation `json:"presentation"`
}

type RenamePresentationRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type DeckSlideRequest struct {
	ID      string `json:"id"`
	SlideID string `json:"slideID"`
}

type UpdateDeckSlideRequest struct {
	ID      string  `json:"id"`
	SlideID string  `json:"slideID"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type PresentationResponse struct {
	Presentation *models.Presentation `json:"presentation"`
}

type ListPresentationsResponse struct {
	Presentations []models.Presentation `json:"presentations"`
}

type DeckSlideResponse struct {
	Slide *models.DeckSlide `json:"slide"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ============================================
// SearchService
// ============================================

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	Results *search.Results `json:"results"`
}
