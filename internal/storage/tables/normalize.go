package tables

import "github.com/mmynk/slidemaker/internal/models"

// normalizeGroup gives a group its canonical shape: no nil slices, the
// creator among the members and only known slide statuses.
func normalizeGroup(g *models.Group) {
	if g.Members == nil {
		g.Members = []string{}
	}
	if g.CreatedBy != "" && !g.HasMember(g.CreatedBy) {
		g.Members = append([]string{g.CreatedBy}, g.Members...)
	}
	if g.Roles == nil {
		g.Roles = []models.Role{}
	}
	if g.Slides == nil {
		g.Slides = []models.Slide{}
	}
	if g.ActivityLog == nil {
		g.ActivityLog = []models.Activity{}
	}
	for i := range g.Slides {
		sl := &g.Slides[i]
		if !sl.Status.Valid() {
			sl.Status = models.StatusInProgress
		}
		if sl.Comments == nil {
			sl.Comments = []models.Comment{}
		}
	}
}

func normalizeRecents(r *models.Recents) {
	if r.RecentGroups == nil {
		r.RecentGroups = []string{}
	}
	if r.RecentPresentations == nil {
		r.RecentPresentations = []string{}
	}
	if r.RecentTemplates == nil {
		r.RecentTemplates = []string{}
	}
}
