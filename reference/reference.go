// Package reference provides the value types used to point at knowledge-graph
// entities from search documents.
package reference

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Reference points at an entity by id and carries its display name and an
// optional version label.
type Reference struct {
	ID      string `json:"reference,omitempty"`
	Name    string `json:"value,omitempty"`
	Version string `json:"version,omitempty"`
}

// New creates a reference with the id normalised through UUID.
func New(id, name string) Reference {
	return Reference{ID: UUID(id), Name: name}
}

// Title returns the display string for the reference.
func (r Reference) Title() string {
	switch {
	case r.Name != "" && r.Version != "":
		return fmt.Sprintf("%s (%s)", r.Name, r.Version)
	case r.Name != "":
		return r.Name
	default:
		return r.ID
	}
}

// IsZero reports whether the reference carries neither id nor name.
func (r Reference) IsZero() bool {
	return r.ID == "" && r.Name == ""
}

// UUID extracts the stable identifier from a knowledge-graph id.
//
// Ids usually arrive as IRIs such as https://kg.ebrains.eu/api/instances/<uuid>.
// The trailing path segment is returned, canonicalised when it parses as a UUID.
func UUID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimRight(id, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

// Compare orders references case-insensitively by display value, then by id.
func Compare(a, b Reference) int {
	if c := strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title())); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Sort orders refs in place using Compare.
func Sort(refs []Reference) {
	slices.SortStableFunc(refs, Compare)
}

// Dedupe returns refs without repeated references, keeping first occurrences.
// References with an id are keyed by id, the rest by name.
func Dedupe(refs []Reference) []Reference {
	if len(refs) == 0 {
		return refs
	}
	seen := make(map[string]bool, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// Key identifies the reference for deduplication: the id when present, the
// name otherwise.
func (r Reference) Key() string {
	if r.ID != "" {
		return "id:" + r.ID
	}
	return "name:" + r.Name
}
