package hierarchy

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/semindex/lineage"
)

// VersionNodes creates the nodes of a version tree. Nil fields fall back to
// nodes carrying only key and title.
type VersionNodes[T any] struct {
	// Group creates the node standing for a group of alternative versions.
	Group func(g *lineage.Group) *Node[T]
	// Version creates the node for one version. title is the version label for
	// singleton groups and the reduced label inside a group.
	Version func(v lineage.VersionedEntity, title string) *Node[T]
}

// VersionTree attaches one child per lineage group to root, earliest first.
//
// A singleton group is represented by its version directly. Larger groups get
// a group node with a random key, titled by the reduced group label, whose
// children are the member versions sorted by version label.
func VersionTree[T any](root *Node[T], l lineage.Lineage, nodes VersionNodes[T]) *Node[T] {
	if nodes.Group == nil {
		nodes.Group = func(g *lineage.Group) *Node[T] {
			return &Node[T]{Key: uuid.NewString(), Title: g.Title()}
		}
	}
	if nodes.Version == nil {
		nodes.Version = func(v lineage.VersionedEntity, title string) *Node[T] {
			return &Node[T]{Key: v.ID, Title: title}
		}
	}

	for _, g := range l.Order {
		if len(g.Members) == 1 {
			v := g.Members[0]
			root.Children = append(root.Children, nodes.Version(v, v.VersionLabel))
			continue
		}

		gn := nodes.Group(g)
		label := g.Label()
		for _, v := range sortedByLabel(g.Members) {
			gn.Children = append(gn.Children, nodes.Version(v, label.Suffix[v.ID]))
		}
		root.Children = append(root.Children, gn)
	}
	return root
}

// VersionAnnotation names a version group an entity appears in. Versions lists
// the reduced labels of the referenced members when there is more than one.
type VersionAnnotation struct {
	Name     string   `json:"name"`
	Versions []string `json:"versionGroups,omitempty"`
}

// Annotate returns the version groups that contain any of the referenced
// version ids, ordered by group name. Unknown ids are ignored.
func Annotate(groups []*lineage.Group, referenced []string) []VersionAnnotation {
	if len(referenced) == 0 {
		return nil
	}
	want := make(map[string]bool, len(referenced))
	for _, id := range referenced {
		want[id] = true
	}

	var out []VersionAnnotation
	relevant := slices.Clone(groups)
	slices.SortStableFunc(relevant, func(a, b *lineage.Group) int { return strings.Compare(a.Name(), b.Name()) })
	for _, g := range relevant {
		var hits []lineage.VersionedEntity
		for _, m := range g.Members {
			if want[m.ID] {
				hits = append(hits, m)
			}
		}
		if len(hits) == 0 {
			continue
		}
		a := VersionAnnotation{Name: g.Name()}
		if len(hits) > 1 {
			label := g.Label()
			for _, v := range sortedByLabel(hits) {
				a.Versions = append(a.Versions, label.Suffix[v.ID])
			}
		}
		out = append(out, a)
	}
	return out
}

func sortedByLabel(members []lineage.VersionedEntity) []lineage.VersionedEntity {
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b lineage.VersionedEntity) int {
		return strings.Compare(a.VersionLabel, b.VersionLabel)
	})
	return sorted
}
