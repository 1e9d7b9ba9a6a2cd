package models

// Recents holds a user's most-recently-used entity IDs, most recent first.
type Recents struct {
	RecentGroups        []string `json:"recentGroups"`
	RecentPresentations []string `json:"recentPresentations"`
	RecentTemplates     []string `json:"recentTemplates"`

	// LastActiveGroup is the group the user opened last, nil when none.
	LastActiveGroup *string `json:"lastActiveGroup"`
}

// RecentsPatch is a shallow update of a Recents record.
type RecentsPatch struct {
	RecentGroups        *[]string
	RecentPresentations *[]string
	RecentTemplates     *[]string
	LastActiveGroup     **string
}
