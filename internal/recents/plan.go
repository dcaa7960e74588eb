package recents

import (
	"time"

	"github.com/google/uuid"
)

// SavePlan is the result of planning a save against the current records:
// the record to insert and the ids of existing records to delete. Every
// backend applies a plan inside its own transactional boundary, so the
// replacement and eviction rules live here once and cannot drift between
// backends.
type SavePlan struct {
	Insert    Record
	DeleteIDs []string
	Replaced  bool
	Evicted   bool
}

// PlanSave computes the mutations for saving (name, payload) stamped with
// now into the given pre-save records under the given capacity.
//
// A record whose Name matches is deleted and reinserted, never duplicated.
// Replacement leaves the net count unchanged, so it never triggers
// eviction; only a net-new insertion that would push the count past
// capacity evicts, and then exactly one record: the oldest by SavedAt among
// the pre-insert survivors, ties broken by smallest ID.
func PlanSave(existing []Record, name string, payload []byte, now time.Time, capacity int) SavePlan {
	if capacity <= 0 {
		capacity = DefaultMaxRecents
	}
	plan := SavePlan{Insert: Record{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: payload,
		SavedAt: now,
	}}

	survivors := make([]Record, 0, len(existing))
	for _, r := range existing {
		if r.Name == name {
			plan.DeleteIDs = append(plan.DeleteIDs, r.ID)
			plan.Replaced = true
			continue
		}
		survivors = append(survivors, r)
	}

	if len(survivors)+1 > capacity {
		oldest := survivors[0]
		for _, r := range survivors[1:] {
			if r.SavedAt.Before(oldest.SavedAt) ||
				(r.SavedAt.Equal(oldest.SavedAt) && r.ID < oldest.ID) {
				oldest = r
			}
		}
		plan.DeleteIDs = append(plan.DeleteIDs, oldest.ID)
		plan.Evicted = true
	}
	return plan
}
