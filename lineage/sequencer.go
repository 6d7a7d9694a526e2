package lineage

import (
	"fmt"
	"slices"
	"strings"
)

// Lineage is the ordered release history of a batch, earliest group first.
// Warnings carry contradictions within a group found while ordering; they
// never prevent a group from being placed. Notes record ambiguities across
// groups, such as several groups declaring no predecessor.
type Lineage struct {
	Order    []*Group
	Warnings []string
	Notes    []string
}

// Position returns the 1-based position of the group containing id and the
// number of groups. It returns 0 when no group contains id.
func (l Lineage) Position(id string) (int, int) {
	for i, g := range l.Order {
		if g.Contains(id) {
			return i + 1, len(l.Order)
		}
	}
	return 0, len(l.Order)
}

// Newest returns the last group of the lineage, or nil when empty.
func (l Lineage) Newest() *Group {
	if len(l.Order) == 0 {
		return nil
	}
	return l.Order[len(l.Order)-1]
}

// Sequence orders groups using their members' new-version-of links.
//
// Groups are visited in the given order. A member whose predecessor sits in an
// already placed group asks for the group to be inserted right after it; a
// member without predecessor marks the group as newest and asks for it to be
// appended. Members following different predecessors are reported and the
// group is appended. So are groups where several members claim to be newest
// while another follows a placed predecessor, and pure root groups after the
// first one. Only groups placed so far are consulted, so cyclic links cannot
// make the loop diverge.
func Sequence(groups []*Group) Lineage {
	var (
		l    Lineage
		root *Group
	)
	for _, g := range groups {
		p := l.placement(g)

		if len(p.positions) > 1 {
			l.Warnings = append(l.Warnings, fmt.Sprintf(
				"contradicting sorting order of version group %s: its versions follow different predecessors (%s)",
				g, p.describe(l.Order)))
			l.Order = append(l.Order, g)
			continue
		}
		if len(p.newest) > 1 && len(p.positions) == 1 {
			l.Warnings = append(l.Warnings, fmt.Sprintf(
				"contradicting information in version group %s: %s are meant to be newest but alternative versions follow %s",
				g, strings.Join(p.newest, ", "), l.Order[p.positions[0].index]))
		}
		if len(p.newest) == len(g.Members) {
			if root != nil {
				l.Notes = append(l.Notes, fmt.Sprintf(
					"ambiguous newest versions: version group %s declares no predecessor, as does %s",
					g, root))
			} else {
				root = g
			}
		}

		if len(p.newest) > 0 || len(p.positions) == 0 {
			l.Order = append(l.Order, g)
			continue
		}
		l.Order = slices.Insert(l.Order, p.positions[0].index+1, g)
	}
	return l
}

type candidate struct {
	member string
	index  int
}

type placement struct {
	// positions holds one candidate per distinct resolved predecessor index.
	positions []candidate
	newest    []string
}

func (l Lineage) placement(g *Group) placement {
	var p placement
	for _, m := range g.Members {
		if m.IsNewest() {
			p.newest = append(p.newest, m.ID)
			continue
		}
		idx := slices.IndexFunc(l.Order, func(placed *Group) bool { return placed.Contains(m.NewVersionOf) })
		if idx < 0 {
			continue
		}
		if !slices.ContainsFunc(p.positions, func(c candidate) bool { return c.index == idx }) {
			p.positions = append(p.positions, candidate{member: m.ID, index: idx})
		}
	}
	return p
}

func (p placement) describe(order []*Group) string {
	parts := make([]string, len(p.positions))
	for i, c := range p.positions {
		parts[i] = fmt.Sprintf("%s after %s", c.member, order[c.index])
	}
	return strings.Join(parts, "; ")
}
