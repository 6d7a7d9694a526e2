// Package hierarchy builds labeled trees from flat lists of entities that
// reference their parents by id.
//
// A node may be listed as a child of more than one parent. Such a node is the
// same *Node value under every parent, so the result is a DAG rendered as
// nested lists. Consumers that traverse it should use Walk, which skips any
// node that would be its own ancestor.
package hierarchy

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors.
var (
	// ErrInvalidEntity is returned when an entity violates the input contract.
	ErrInvalidEntity = errors.New("invalid hierarchy entity")

	// ErrCycle is returned by Validate when a node is its own ancestor.
	ErrCycle = errors.New("hierarchy cycle")
)

// Node is one element of a built hierarchy.
type Node[T any] struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	// Tag is a presentation hint carried through unchanged.
	Tag      string     `json:"color,omitempty"`
	Data     T          `json:"data,omitempty"`
	Children []*Node[T] `json:"children,omitempty"`
	// Legend explains the tags used below the node. Only roots carry one.
	Legend []LegendEntry `json:"legend,omitempty"`
}

// LegendEntry names what a tag stands for.
type LegendEntry struct {
	Tag   string `json:"color"`
	Label string `json:"label"`
}

// Legend collects the tags used in the forest that label knows, one entry per
// tag, ordered by label.
func Legend[T any](roots []*Node[T], label func(tag string) (string, bool)) []LegendEntry {
	seen := make(map[string]bool)
	var out []LegendEntry
	Walk(roots, func(n *Node[T], _ int) bool {
		if n.Tag == "" || seen[n.Tag] {
			return true
		}
		seen[n.Tag] = true
		if l, ok := label(n.Tag); ok {
			out = append(out, LegendEntry{Tag: n.Tag, Label: l})
		}
		return true
	})
	slices.SortStableFunc(out, func(a, b LegendEntry) int { return strings.Compare(a.Label, b.Label) })
	return out
}

// Entity is the input to Build.
type Entity[T any] struct {
	ID        string
	Title     string
	Tag       string
	Data      T
	ParentIDs []string
}

// Walk visits every node occurrence depth-first. fn receives the node and its
// depth; returning false skips the node's children. A node found among its
// own ancestors is not visited again.
func Walk[T any](roots []*Node[T], fn func(n *Node[T], depth int) bool) {
	walk(roots, 0, make(map[*Node[T]]bool), fn, nil)
}

func walk[T any](nodes []*Node[T], depth int, path map[*Node[T]]bool, fn func(*Node[T], int) bool, onCycle func(*Node[T])) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if path[n] {
			if onCycle != nil {
				onCycle(n)
			}
			continue
		}
		if fn != nil && !fn(n, depth) {
			continue
		}
		path[n] = true
		walk(n.Children, depth+1, path, fn, onCycle)
		delete(path, n)
	}
}

// Validate reports every node that is reachable from itself.
func Validate[T any](roots []*Node[T]) error {
	var errs []error
	seen := make(map[*Node[T]]bool)
	walk(roots, 0, make(map[*Node[T]]bool), nil, func(n *Node[T]) {
		if seen[n] {
			return
		}
		seen[n] = true
		errs = append(errs, fmt.Errorf("%w: node %q is its own ancestor", ErrCycle, n.Key))
	})
	return errors.Join(errs...)
}

// Count returns how many times each key occurs in the forest.
func Count[T any](roots []*Node[T]) map[string]int {
	counts := make(map[string]int)
	Walk(roots, func(n *Node[T], _ int) bool {
		counts[n.Key]++
		return true
	})
	return counts
}

// SortChildren sorts the children of every node reachable from roots, and
// roots itself. Shared nodes are sorted once.
func SortChildren[T any](roots []*Node[T], cmp func(a, b *Node[T]) int) {
	slices.SortStableFunc(roots, cmp)
	done := make(map[*Node[T]]bool)
	Walk(roots, func(n *Node[T], _ int) bool {
		if done[n] {
			return false
		}
		done[n] = true
		slices.SortStableFunc(n.Children, cmp)
		return true
	})
}

// ByTitle orders nodes by title.
func ByTitle[T any](a, b *Node[T]) int {
	switch {
	case a.Title < b.Title:
		return -1
	case a.Title > b.Title:
		return 1
	}
	return 0
}
