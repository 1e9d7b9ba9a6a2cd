package models

import "time"

// Role names assigned to group members.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Activity types appended to Group.ActivityLog.
const (
	ActivityGroupCreated  = "group_created"
	ActivityGroupRenamed  = "group_renamed"
	ActivityMemberAdded   = "member_added"
	ActivityMemberRemoved = "member_removed"
	ActivitySlideCreated  = "slide_created"
	ActivitySlideUpdated  = "slide_updated"
	ActivitySlideDeleted  = "slide_deleted"
	ActivityCommentAdded  = "comment_added"
)

// Group is a shared workspace containing members, roles and a slide deck.
type Group struct {
	// ID is "GRP" + millisecond timestamp + 5 random base36 characters.
	ID string `json:"groupID"`

	// Name is the display name of the group.
	Name string `json:"groupName"`

	// CreatedBy is the user ID of the creator. It is always present in Members.
	CreatedBy string `json:"createdBy"`

	// Members is an ordered set of user IDs, in join order.
	Members []string `json:"members"`

	// Roles assigns a role to some or all members.
	Roles []Role `json:"roles"`

	// Slides is the group's deck, in display order.
	Slides []Slide `json:"slides"`

	// ActivityLog is append-only.
	ActivityLog []Activity `json:"activityLog"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// SlideIndex returns the position of the slide with the given ID, or -1.
func (g *Group) SlideIndex(slideID string) int {
	for i := range g.Slides {
		if g.Slides[i].ID == slideID {
			return i
		}
	}
	return -1
}

// Role binds a user to a role within a group.
type Role struct {
	UserID string `json:"userID"`
	Role   string `json:"role"`
}

// Activity is one entry of a group's activity log.
type Activity struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userID"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// GroupFields are the caller-supplied fields for creating a group.
type GroupFields struct {
	Name      string
	CreatedBy string
	Members   []string
	Roles     []Role
	Slides    []Slide
}

// GroupPatch is a shallow update: every non-nil field overwrites the stored value.
type GroupPatch struct {
	Name        *string
	Members     *[]string
	Roles       *[]Role
	Slides      *[]Slide
	ActivityLog *[]Activity
}
