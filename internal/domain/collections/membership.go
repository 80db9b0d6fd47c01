package collections

import (
	"sort"

	"atelier-app/internal/domain/records"
)

// DeriveImplicitMemberships is the whole coupling between record status and
// the system collection: member iff the record is available.
func DeriveImplicitMemberships(status records.Status, systemCollectionID string) []string {
	if systemCollectionID == "" {
		return nil
	}
	if status == records.StatusAvailable {
		return []string{systemCollectionID}
	}
	return nil
}

// ComputeTarget builds the membership set a save must leave behind: the
// user's selection, with the system collection forced in or out by status.
// A user-selected system collection id is removed when status says so.
func ComputeTarget(selected []string, systemCollectionID string, status records.Status) []string {
	set := make(map[string]bool, len(selected)+1)
	for _, id := range selected {
		if id == "" || id == systemCollectionID {
			continue
		}
		set[id] = true
	}
	for _, id := range DeriveImplicitMemberships(status, systemCollectionID) {
		set[id] = true
	}

	target := make([]string, 0, len(set))
	for id := range set {
		target = append(target, id)
	}
	sort.Strings(target)
	return target
}
