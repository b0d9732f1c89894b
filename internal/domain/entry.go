package domain

import "time"

// ScheduledEntry is a persisted daily scheduled message. The fire time has
// no date component: the entry recurs every day at the same HH:MM until it
// is deactivated. Entries are never edited; an edit is modeled as
// deactivate + recreate.
type ScheduledEntry struct {
	ID       int64
	Chat     string // destination chat, opaque ("@channel" or a numeric id)
	FireTime FireTime
	Text     string
	Active   bool
}

// Note is an immutable per-user note. Only creation and listing are
// supported; notes are never visible across users.
type Note struct {
	ID        int64
	OwnerID   int64
	Content   string
	CreatedAt time.Time // UTC
}
