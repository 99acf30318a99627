// Package models defines the entities tripkeeper persists locally and the
// read-side views built from them.
package models

import "fmt"

// Status is the sync lifecycle of a trip log or fuel record.
//
//	DRAFT(-1) -> PENDING(0) -> SYNCED(1)
//
// Only finalize moves a record to PENDING and only the sync engine moves it to
// SYNCED. Nothing moves backward.
type Status int

const (
	StatusDraft   Status = -1
	StatusPending Status = 0
	StatusSynced  Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusPending:
		return "pending"
	case StatusSynced:
		return "synced"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPending || s == StatusSynced
}

// Revision identifies the version of a row that was sent to the server.
// Every local write bumps the stored revision, so a row edited while its
// batch was in flight no longer matches and stays PENDING.
type Revision struct {
	ID       int64
	Revision int64
}
