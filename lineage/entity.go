// Package lineage groups alternative versions of an entity and orders the
// groups into a best-effort release history.
//
// The three steps run in a fixed order over one batch of versions:
//
//	groups, err := lineage.GroupVersions(versions)
//	l := lineage.Sequence(groups)
//	for _, g := range l.Order {
//	    label := g.Label()
//	    ...
//	}
//
// Nothing in this package performs I/O or keeps state between batches, so
// independent batches can be processed concurrently.
package lineage

import (
	"slices"
	"strings"
	"sync"
)

// VersionedEntity is one released version of a dataset, model, software or
// brain atlas.
type VersionedEntity struct {
	ID           string
	VersionLabel string
	// AlternativeOf lists ids this version is an alternative expression of.
	// The relation is symmetric; it may be declared on either side.
	AlternativeOf []string
	// NewVersionOf is the id of the version this one directly supersedes.
	NewVersionOf string
}

// IsNewest reports whether the version declares no predecessor.
func (e VersionedEntity) IsNewest() bool {
	return e.NewVersionOf == ""
}

// Group is a set of versions that are alternative expressions of one release.
// Groups are created by GroupVersions and never merged afterwards.
type Group struct {
	Members []VersionedEntity

	labelOnce sync.Once
	label     Label
}

// NewGroup creates a group from members. It is mostly useful in tests; the
// normal path is GroupVersions.
func NewGroup(members ...VersionedEntity) *Group {
	return &Group{Members: members}
}

// Contains reports whether a member of the group has the given id.
func (g *Group) Contains(id string) bool {
	return slices.ContainsFunc(g.Members, func(m VersionedEntity) bool { return m.ID == id })
}

// IDs returns member ids in member order.
func (g *Group) IDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Label returns the reduced label of the group, computing it on first use.
func (g *Group) Label() Label {
	g.labelOnce.Do(func() {
		g.label = Reduce(g.Members)
	})
	return g.label
}

// Title is the display name of the group: the member's own version label for
// singletons, the reduced group label otherwise.
func (g *Group) Title() string {
	if len(g.Members) == 1 {
		return g.Members[0].VersionLabel
	}
	return g.Label().Group
}

// Name is the title with trailing separators removed, as used when naming
// the groups an entity appears in.
func (g *Group) Name() string {
	return strings.TrimRight(g.Title(), labelSeparators)
}

// String identifies the group in diagnostics.
func (g *Group) String() string {
	return "[" + strings.Join(g.IDs(), ", ") + "]"
}
