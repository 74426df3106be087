// Package clients derives the active-client set from the client
// registries. Up to three independently-synchronizing registries are
// unioned; a client flagged inactive, disabled or deleted in its own
// registry is excluded from the union.
package clients

import (
	"github.com/contentops/taskflow/internal/store"
)

// ActivitySet holds the identities of currently active clients. Both the
// document id and the client name are members, so tasks can be gated by
// whichever reference they carry.
type ActivitySet map[string]struct{}

// Contains reports membership of a client id or name. The empty string
// is never a member.
func (s ActivitySet) Contains(idOrName string) bool {
	if idOrName == "" {
		return false
	}
	_, ok := s[idOrName]
	return ok
}

// Flags any registry may use to retire a client.
var inactiveFlags = []string{"inactive", "disabled", "deleted"}

// BuildActivity unions client registry snapshots into one activity set.
func BuildActivity(snapshots ...store.Snapshot) ActivitySet {
	active := make(ActivitySet)
	for _, snap := range snapshots {
		for id, doc := range snap {
			if retired(doc) {
				continue
			}
			active[id] = struct{}{}
			if name, _ := doc["name"].(string); name != "" {
				active[name] = struct{}{}
			}
			if name, _ := doc["clientName"].(string); name != "" {
				active[name] = struct{}{}
			}
		}
	}
	return active
}

func retired(doc store.Document) bool {
	for _, flag := range inactiveFlags {
		if b, _ := doc[flag].(bool); b {
			return true
		}
	}
	if status, _ := doc["status"].(string); status != "" {
		for _, flag := range inactiveFlags {
			if status == flag {
				return true
			}
		}
	}
	return false
}
