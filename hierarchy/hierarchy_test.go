package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semindex/lineage"
)

type region struct {
	Definition string
}

func keys[T any](nodes []*Node[T]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Key
	}
	return out
}

func TestBuild(t *testing.T) {
	entities := []Entity[*region]{
		{ID: "amygdala", Title: "Amygdala", ParentIDs: []string{"cerebrum"}},
		{ID: "cerebrum", Title: "Cerebrum", ParentIDs: []string{"brain"}},
		{ID: "brain", Title: "Brain"},
		{ID: "lateral", Title: "Lateral nucleus", ParentIDs: []string{"amygdala", "outside-batch"}},
		{ID: "stray", Title: "Stray", ParentIDs: []string{"outside-batch"}},
	}

	roots, err := Build(entities)
	require.NoError(t, err)

	assert.Equal(t, []string{"brain", "stray"}, keys(roots))
	require.Len(t, roots[0].Children, 1)
	cerebrum := roots[0].Children[0]
	assert.Equal(t, "Cerebrum", cerebrum.Title)
	require.Len(t, cerebrum.Children, 1)
	assert.Equal(t, []string{"lateral"}, keys(cerebrum.Children[0].Children))
	assert.Empty(t, roots[1].Children)
}

func TestBuildCompleteness(t *testing.T) {
	entities := []Entity[*region]{
		{ID: "a"},
		{ID: "b", ParentIDs: []string{"a"}},
		{ID: "c", ParentIDs: []string{"a", "b", "missing"}},
		{ID: "d", ParentIDs: []string{"c", "c"}},
		{ID: "e", ParentIDs: []string{"e"}},
		{ID: "f", ParentIDs: []string{"missing"}},
	}
	roots, err := Build(entities)
	require.NoError(t, err)

	lookup := map[string]bool{}
	for _, e := range entities {
		lookup[e.ID] = true
	}

	// Each entity occurs once per resolved ancestor path, which for a forest
	// of distinct parents means: occurrences of the entity's parents summed,
	// or one for roots.
	counts := Count(roots)
	for _, e := range entities {
		expected := 0
		seen := map[string]bool{}
		for _, pid := range e.ParentIDs {
			if lookup[pid] && pid != e.ID && !seen[pid] {
				seen[pid] = true
				expected += counts[pid]
			}
		}
		if len(seen) == 0 {
			expected = 1
		}
		assert.Equal(t, expected, counts[e.ID], e.ID)
	}
	assert.Empty(t, Unreached(roots, entities))
	assert.NoError(t, Validate(roots))
}

func TestBuildDirectOccurrences(t *testing.T) {
	entities := []Entity[*region]{
		{ID: "p1"},
		{ID: "p2"},
		{ID: "child", ParentIDs: []string{"p1", "p2", "gone"}},
		{ID: "orphan", ParentIDs: []string{"gone"}},
	}
	roots, err := Build(entities)
	require.NoError(t, err)

	// Direct occurrences: len(resolvable parents), or 1 for roots.
	direct := map[string]int{}
	for _, r := range roots {
		direct[r.Key]++
		for _, c := range r.Children {
			direct[c.Key]++
		}
	}
	assert.Equal(t, map[string]int{"p1": 1, "p2": 1, "child": 2, "orphan": 1}, direct)
}

func TestBuildSharesNodesAcrossParents(t *testing.T) {
	shared := &region{Definition: "before"}
	roots, err := Build([]Entity[*region]{
		{ID: "p1", Title: "Parent 1"},
		{ID: "p2", Title: "Parent 2"},
		{ID: "child", Title: "Child", Data: shared, ParentIDs: []string{"p1", "p2"}},
	})
	require.NoError(t, err)
	require.Len(t, roots, 2)

	left := roots[0].Children[0]
	right := roots[1].Children[0]
	assert.Same(t, left, right)

	left.Data.Definition = "after"
	assert.Equal(t, "after", right.Data.Definition)

	left.Title = "Renamed"
	assert.Equal(t, "Renamed", right.Title)
}

func TestBuildContractErrors(t *testing.T) {
	_, err := Build([]Entity[*region]{{ID: "a"}, {Title: "nameless"}})
	require.ErrorIs(t, err, ErrInvalidEntity)
	assert.Contains(t, err.Error(), "nameless")

	_, err = Build([]Entity[*region]{{ID: "a"}, {ID: "a"}})
	require.ErrorIs(t, err, ErrInvalidEntity)
	assert.Contains(t, err.Error(), `"a"`)

	roots, err := Build[*region](nil)
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestParentCycle(t *testing.T) {
	entities := []Entity[*region]{
		{ID: "root"},
		{ID: "a", ParentIDs: []string{"b"}},
		{ID: "b", ParentIDs: []string{"a"}},
	}
	roots, err := Build(entities)
	require.NoError(t, err)

	assert.Equal(t, []string{"root"}, keys(roots))
	assert.Equal(t, []string{"a", "b"}, Unreached(roots, entities))

	// Hanging the cycle under a root makes it reachable; Walk must terminate.
	cyc := &Node[*region]{Key: "x"}
	cyc.Children = []*Node[*region]{cyc}
	roots[0].Children = append(roots[0].Children, cyc)

	visits := 0
	Walk(roots, func(*Node[*region], int) bool {
		visits++
		return true
	})
	assert.Equal(t, 2, visits)

	err = Validate(roots)
	require.ErrorIs(t, err, ErrCycle)
	assert.Contains(t, err.Error(), `"x"`)
}

func TestWalkDepthAndSkip(t *testing.T) {
	roots, err := Build([]Entity[*region]{
		{ID: "a"},
		{ID: "b", ParentIDs: []string{"a"}},
		{ID: "c", ParentIDs: []string{"b"}},
	})
	require.NoError(t, err)

	depths := map[string]int{}
	Walk(roots, func(n *Node[*region], depth int) bool {
		depths[n.Key] = depth
		return n.Key != "b"
	})
	assert.Equal(t, map[string]int{"a": 0, "b": 1}, depths)
}

func TestSortChildren(t *testing.T) {
	roots, err := Build([]Entity[*region]{
		{ID: "r2", Title: "zeta"},
		{ID: "r1", Title: "alpha"},
		{ID: "c2", Title: "b", ParentIDs: []string{"r1", "r2"}},
		{ID: "c1", Title: "a", ParentIDs: []string{"r1", "r2"}},
	})
	require.NoError(t, err)

	SortChildren(roots, ByTitle[*region])
	assert.Equal(t, []string{"r1", "r2"}, keys(roots))
	assert.Equal(t, []string{"c1", "c2"}, keys(roots[0].Children))
	assert.Equal(t, []string{"c1", "c2"}, keys(roots[1].Children))
}

func scenarioLineage(t *testing.T) lineage.Lineage {
	t.Helper()
	groups, err := lineage.GroupVersions([]lineage.VersionedEntity{
		{ID: "A", VersionLabel: "v1"},
		{ID: "B", VersionLabel: "v2.1", NewVersionOf: "A"},
		{ID: "C", VersionLabel: "v2.0", AlternativeOf: []string{"B"}},
	})
	require.NoError(t, err)
	l := lineage.Sequence(groups)
	require.Empty(t, l.Warnings)
	return l
}

func TestVersionTree(t *testing.T) {
	root := &Node[string]{Key: "root", Title: "Atlas"}
	tree := VersionTree(root, scenarioLineage(t), VersionNodes[string]{})

	require.Same(t, root, tree)
	require.Len(t, tree.Children, 2)

	assert.Equal(t, "A", tree.Children[0].Key)
	assert.Equal(t, "v1", tree.Children[0].Title)

	group := tree.Children[1]
	assert.Equal(t, "v2", group.Title)
	assert.NotEmpty(t, group.Key)
	assert.Equal(t, []string{"C", "B"}, keys(group.Children))
	assert.Equal(t, "0", group.Children[0].Title)
	assert.Equal(t, "1", group.Children[1].Title)
}

func TestVersionTreeCustomNodes(t *testing.T) {
	root := &Node[string]{Key: "root"}
	tree := VersionTree(root, scenarioLineage(t), VersionNodes[string]{
		Group: func(g *lineage.Group) *Node[string] {
			return &Node[string]{Key: "group", Title: g.Title(), Tag: "#ffbe00"}
		},
		Version: func(v lineage.VersionedEntity, title string) *Node[string] {
			return &Node[string]{Key: v.ID, Title: title, Tag: "#ffbe00", Data: v.VersionLabel}
		},
	})
	assert.Equal(t, "group", tree.Children[1].Key)
	assert.Equal(t, "v2.1", tree.Children[1].Children[1].Data)
}

func TestAnnotate(t *testing.T) {
	l := scenarioLineage(t)

	got := Annotate(l.Order, []string{"B", "C", "unknown"})
	assert.Equal(t, []VersionAnnotation{{Name: "v2", Versions: []string{"0", "1"}}}, got)

	got = Annotate(l.Order, []string{"A", "B"})
	assert.Equal(t, []VersionAnnotation{{Name: "v1"}, {Name: "v2"}}, got)

	assert.Nil(t, Annotate(l.Order, nil))

	// Singleton names lose trailing separators like reduced group labels do.
	trailing := []*lineage.Group{
		lineage.NewGroup(lineage.VersionedEntity{ID: "x", VersionLabel: "v1."}),
		lineage.NewGroup(lineage.VersionedEntity{ID: "y", VersionLabel: "v0/"}),
	}
	got = Annotate(trailing, []string{"x", "y"})
	assert.Equal(t, []VersionAnnotation{{Name: "v0"}, {Name: "v1"}}, got)
}

func TestLegend(t *testing.T) {
	shared := &Node[string]{Key: "s", Tag: "#b"}
	roots := []*Node[string]{
		{Key: "1", Tag: "#a", Children: []*Node[string]{shared, {Key: "2", Tag: "#unknown"}}},
		{Key: "3", Tag: "#c", Children: []*Node[string]{shared}},
		{Key: "4"},
	}
	labels := map[string]string{"#a": "Zebra", "#b": "Ant", "#c": "Moth"}
	got := Legend(roots, func(tag string) (string, bool) {
		l, ok := labels[tag]
		return l, ok
	})
	assert.Equal(t, []LegendEntry{
		{Tag: "#b", Label: "Ant"},
		{Tag: "#c", Label: "Moth"},
		{Tag: "#a", Label: "Zebra"},
	}, got)
	assert.Nil(t, Legend([]*Node[string]{{Key: "x"}}, func(string) (string, bool) { return "", false }))
}
