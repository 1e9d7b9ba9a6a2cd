// Package models defines the core domain models for slidemaker.
//
// # Tables
//
// Every model below is persisted as part of one JSON document per table:
//   - User: registered account (table db_users)
//   - Group: shared workspace with members, roles, slides and an activity log (db_groups)
//   - Recents: per-user most-recently-used lists (db_recents, keyed by user ID)
//   - Template: slide deck template metadata (db_templates)
//
// Presentations (standalone decks) and RecentUser entries live under their own keys
// and are not part of the four tables.
//
// # Relationships
//
// Relationships are soft foreign keys: Group.Members, Slide.Owner and Comment.AuthorID
// hold user IDs that are resolved by lookup. Nothing enforces them, so readers must
// tolerate dangling references and filter them out.
//
// # Canonical shape
//
// Records are normalized once at the store boundary (nil slices become empty, unknown
// slide statuses become in-progress), so code above the store never has to check
// which optional fields are present.
package models
