package clients

import (
	"testing"

	"github.com/contentops/taskflow/internal/store"
)

func TestBuildActivity_UnionsRegistries(t *testing.T) {
	general := store.Snapshot{
		"c1": {"name": "Acme"},
	}
	design := store.Snapshot{
		"c2": {"clientName": "Globex"},
	}

	active := BuildActivity(general, design)

	for _, member := range []string{"c1", "Acme", "c2", "Globex"} {
		if !active.Contains(member) {
			t.Errorf("Contains(%q) = false, want true", member)
		}
	}
}

func TestBuildActivity_ExcludesRetiredClients(t *testing.T) {
	tests := []struct {
		name string
		doc  store.Document
	}{
		{"inactive flag", store.Document{"name": "Acme", "inactive": true}},
		{"disabled flag", store.Document{"name": "Acme", "disabled": true}},
		{"deleted flag", store.Document{"name": "Acme", "deleted": true}},
		{"inactive status", store.Document{"name": "Acme", "status": "inactive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active := BuildActivity(store.Snapshot{"c1": tt.doc})
			if active.Contains("c1") || active.Contains("Acme") {
				t.Error("retired client must not be active")
			}
		})
	}
}

func TestBuildActivity_RetiredInOneRegistryActiveInAnother(t *testing.T) {
	// Each registry speaks only for its own records: deactivation in one
	// does not strip the union membership a second registry grants.
	a := store.Snapshot{"c1": {"name": "Acme", "inactive": true}}
	b := store.Snapshot{"c9": {"name": "Acme"}}

	active := BuildActivity(a, b)
	if !active.Contains("Acme") {
		t.Error("client active in a second registry must be in the union")
	}
	if active.Contains("c1") {
		t.Error("retired registry record must not contribute its id")
	}
}

func TestActivitySet_EmptyStringNeverMember(t *testing.T) {
	active := BuildActivity(store.Snapshot{"c1": {"name": "Acme"}})
	if active.Contains("") {
		t.Error("empty string must never be a member")
	}
}
