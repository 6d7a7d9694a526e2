package hierarchy

import "fmt"

// Build turns entities into a forest.
//
// Nodes are created for all entities before any parent is resolved, so a
// parent may appear after its children. Parent ids that are not part of the
// batch are dropped, as is an entity naming itself as parent. An entity with no
// resolvable parent becomes a root; otherwise its node is appended to every
// resolved parent. Roots keep input order and so do children under a parent.
func Build[T any](entities []Entity[T]) ([]*Node[T], error) {
	lookup := make(map[string]*Node[T], len(entities))
	for i, e := range entities {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entity at position %d (%q) has no id", ErrInvalidEntity, i, e.Title)
		}
		if _, dup := lookup[e.ID]; dup {
			return nil, fmt.Errorf("%w: entity %q at position %d is declared twice", ErrInvalidEntity, e.ID, i)
		}
		lookup[e.ID] = &Node[T]{
			Key:   e.ID,
			Title: e.Title,
			Tag:   e.Tag,
			Data:  e.Data,
		}
	}

	var roots []*Node[T]
	for _, e := range entities {
		node := lookup[e.ID]
		attached := make(map[*Node[T]]bool, len(e.ParentIDs))
		for _, pid := range e.ParentIDs {
			parent, ok := lookup[pid]
			if !ok || parent == node || attached[parent] {
				continue
			}
			attached[parent] = true
			parent.Children = append(parent.Children, node)
		}
		if len(attached) == 0 {
			roots = append(roots, node)
		}
	}
	return roots, nil
}

// Unreached returns the ids of entities that no root leads to. Only parent
// cycles cut entities off this way, since Build promotes everything else.
func Unreached[T any](roots []*Node[T], entities []Entity[T]) []string {
	reached := make(map[string]bool, len(entities))
	Walk(roots, func(n *Node[T], _ int) bool {
		if reached[n.Key] {
			return false
		}
		reached[n.Key] = true
		return true
	})
	var ids []string
	for _, e := range entities {
		if !reached[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
