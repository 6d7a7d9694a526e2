package translate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semindex/graph"
	"github.com/c360studio/semindex/hierarchy"
	"github.com/c360studio/semindex/lineage"
	"github.com/c360studio/semindex/reference"
)

// BrainAtlas translates a brain atlas. Its versions are grouped into
// alternatives and ordered by lineage; its parcellation entities form the
// terminology tree, each annotated with the version groups it appears in.
func (t *Translator) BrainAtlas(rec graph.BrainAtlas) (doc *AtlasDocument, err error) {
	start := time.Now()
	id := reference.UUID(rec.ID)
	defer func() {
		var warnings []string
		if doc != nil {
			warnings = doc.Errors
		}
		t.observe(TypeBrainAtlas, id, start, warnings, err)
	}()

	if id == "" {
		return nil, recordError(TypeBrainAtlas, rec.FullName, fmt.Errorf("missing id"))
	}

	l, err := t.lineage(TypeBrainAtlas, id, rec.Versions)
	if err != nil {
		return nil, recordError(TypeBrainAtlas, id, err)
	}

	doc = &AtlasDocument{
		Meta: Meta{
			ID:       id,
			Type:     TypeBrainAtlas,
			Category: "Brain Atlas",
			Title:    rec.FullName,
			Errors:   slices.Clone(l.Warnings),
		},
		Versions: atlasVersionTree(rec, l),
	}

	terminology, warnings, err := parcellationTree(rec, l.Order)
	if err != nil {
		return nil, recordError(TypeBrainAtlas, id, err)
	}
	doc.ParcellationTerminology = terminology
	doc.Errors = append(doc.Errors, warnings...)

	return doc, nil
}

func atlasVersionTree(rec graph.BrainAtlas, l lineage.Lineage) *hierarchy.Node[*AtlasVersion] {
	byID := make(map[string]graph.Version, len(rec.Versions))
	for _, v := range rec.Versions {
		byID[reference.UUID(v.ID)] = v
	}

	root := &hierarchy.Node[*AtlasVersion]{Key: "root", Title: rec.FullName, Tag: TagRoot}
	return hierarchy.VersionTree(root, l, hierarchy.VersionNodes[*AtlasVersion]{
		Group: func(g *lineage.Group) *hierarchy.Node[*AtlasVersion] {
			return &hierarchy.Node[*AtlasVersion]{Key: uuid.NewString(), Title: g.Title(), Tag: TagVersion}
		},
		Version: func(v lineage.VersionedEntity, title string) *hierarchy.Node[*AtlasVersion] {
			data := &AtlasVersion{ID: v.ID, Title: v.VersionLabel}
			if src := byID[v.ID]; src.CoordinateSpace != nil {
				cs := src.CoordinateSpace.Reference()
				data.CoordinateSpace = &cs
			}
			return &hierarchy.Node[*AtlasVersion]{Key: v.ID, Title: title, Tag: TagVersion, Data: data}
		},
	})
}

// parcellationTree builds the terminology below a root titled with the atlas
// name. Entities are ordered by name, case-insensitively, before linking so
// roots and children come out in that order.
func parcellationTree(rec graph.BrainAtlas, groups []*lineage.Group) (*hierarchy.Node[*Terminology], []string, error) {
	root := &hierarchy.Node[*Terminology]{
		Key:   "root",
		Title: rec.FullName,
		Tag:   TagRoot,
		Data:  &Terminology{},
	}
	if len(rec.ParcellationEntities) == 0 {
		return root, nil, nil
	}

	sorted := slices.Clone(rec.ParcellationEntities)
	slices.SortStableFunc(sorted, func(a, b graph.ParcellationEntity) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	entities := make([]hierarchy.Entity[*Terminology], len(sorted))
	for i, pe := range sorted {
		versions := make([]string, len(pe.Versions))
		for j, v := range pe.Versions {
			versions[j] = reference.UUID(v)
		}
		parents := make([]string, len(pe.HasParent))
		for j, p := range pe.HasParent {
			parents[j] = reference.UUID(p)
		}
		entities[i] = hierarchy.Entity[*Terminology]{
			ID:    reference.UUID(pe.ID),
			Title: pe.Name,
			Tag:   TagParcellation,
			Data: &Terminology{
				Definition:    pe.Definition,
				VersionGroups: hierarchy.Annotate(groups, versions),
			},
			ParentIDs: parents,
		}
	}

	roots, err := hierarchy.Build(entities)
	if err != nil {
		return nil, nil, err
	}
	root.Children = roots
	root.Data.NumberOfParcellationEntities = strconv.Itoa(len(entities))

	var warnings []string
	for _, id := range hierarchy.Unreached(roots, entities) {
		warnings = append(warnings, fmt.Sprintf("parcellation entity %s is only reachable through a circular parent relation and is not shown", id))
	}
	return root, warnings, nil
}
