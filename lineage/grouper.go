package lineage

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/theodesp/unionfind"
)

// ErrInvalidEntity is returned when a version violates the input contract.
var ErrInvalidEntity = errors.New("invalid versioned entity")

type groupOptions struct {
	canonical bool
}

// GroupOption configures GroupVersions.
type GroupOption func(*groupOptions)

// WithCanonicalOrder sorts members by id and groups by their smallest member
// id, so the emitted order does not depend on input order.
func WithCanonicalOrder() GroupOption {
	return func(o *groupOptions) {
		o.canonical = true
	}
}

// GroupVersions partitions entities into connected components of the
// alternative-of relation.
//
// By default groups are emitted in the input position of their first member
// and members keep input order. Alternative ids that are not part of the batch
// are ignored. An empty or repeated id is reported as ErrInvalidEntity.
func GroupVersions(entities []VersionedEntity, opts ...GroupOption) ([]*Group, error) {
	var o groupOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(entities) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(entities))
	for i, e := range entities {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entity at position %d (%q) has no id", ErrInvalidEntity, i, e.VersionLabel)
		}
		if j, dup := index[e.ID]; dup {
			return nil, fmt.Errorf("%w: entity %q at position %d repeats position %d", ErrInvalidEntity, e.ID, i, j)
		}
		index[e.ID] = i
	}

	uf := unionfind.New(len(entities))
	for i, e := range entities {
		for _, alt := range e.AlternativeOf {
			if j, ok := index[alt]; ok && j != i {
				uf.Union(i, j)
			}
		}
	}

	byRoot := make(map[int]*Group)
	var groups []*Group
	for i, e := range entities {
		root := uf.Root(i)
		g, ok := byRoot[root]
		if !ok {
			g = &Group{}
			byRoot[root] = g
			groups = append(groups, g)
		}
		g.Members = append(g.Members, e)
	}

	if o.canonical {
		for _, g := range groups {
			slices.SortFunc(g.Members, func(a, b VersionedEntity) int { return strings.Compare(a.ID, b.ID) })
		}
		slices.SortFunc(groups, func(a, b *Group) int { return strings.Compare(a.Members[0].ID, b.Members[0].ID) })
	}
	return groups, nil
}
