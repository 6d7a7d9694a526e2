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
	"github.com/c360studio/semindex/reference"
	"github.com/c360studio/semindex/specimen"
)

// DatasetVersion translates a dataset version and its studied specimens.
func (t *Translator) DatasetVersion(rec graph.DatasetVersion) (doc *DatasetVersionDocument, err error) {
	start := time.Now()
	id := reference.UUID(rec.ID)
	defer func() {
		var warnings []string
		if doc != nil {
			warnings = doc.Errors
		}
		t.observe(TypeDatasetVersion, id, start, warnings, err)
	}()

	if id == "" {
		return nil, recordError(TypeDatasetVersion, rec.FullName, fmt.Errorf("missing id"))
	}

	doc = &DatasetVersionDocument{
		Meta: Meta{
			ID:       id,
			Type:     TypeDatasetVersion,
			Category: "Dataset",
			Title:    rec.FullName,
		},
		Version: rec.VersionIdentifier,
	}

	tree, warnings, err := specimenTree(rec.StudiedSpecimen)
	if err != nil {
		return nil, recordError(TypeDatasetVersion, id, err)
	}
	doc.StudiedSpecimen = tree
	doc.Errors = warnings
	return doc, nil
}

// studied is a specimen taking part in the tree.
type studied struct {
	rec     graph.Specimen
	id      string
	kind    specimen.Kind
	parents []string
}

// collectSpecimens returns the explicitly listed specimens plus the members of
// groups and collections whose membership is implied. Members are implied
// only when none of them is listed explicitly; listing one is read as a
// selection. Part-of links pointing outside the listed specimens are dropped.
func collectSpecimens(listed []graph.Specimen) ([]studied, []string) {
	explicit := make(map[string]bool, len(listed))
	for _, s := range listed {
		explicit[reference.UUID(s.ID)] = true
	}

	var (
		out      []studied
		warnings []string
	)
	index := make(map[string]int)
	add := func(s graph.Specimen, container string) {
		id := reference.UUID(s.ID)
		if id == "" {
			warnings = append(warnings, fmt.Sprintf("specimen %q has no id and is not shown", s.InternalIdentifier))
			return
		}
		var parents []string
		for _, p := range s.IsPartOf {
			if pid := reference.UUID(p); explicit[pid] {
				parents = append(parents, pid)
			}
		}
		if container != "" && !slices.Contains(parents, container) {
			parents = append(parents, container)
		}

		if i, seen := index[id]; seen {
			for _, p := range parents {
				if !slices.Contains(out[i].parents, p) {
					out[i].parents = append(out[i].parents, p)
				}
			}
			return
		}

		kind, err := specimen.ParseKind(s.Type)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("specimen %s is not shown: %v", id, err))
			return
		}
		index[id] = len(out)
		out = append(out, studied{rec: s, id: id, kind: kind, parents: parents})
	}

	for _, s := range listed {
		add(s, "")
	}
	for _, s := range listed {
		if len(s.SubElements) == 0 {
			continue
		}
		selected := slices.ContainsFunc(s.SubElements, func(sub graph.Specimen) bool {
			return explicit[reference.UUID(sub.ID)]
		})
		if selected {
			continue
		}
		container := reference.UUID(s.ID)
		for _, sub := range s.SubElements {
			add(sub, container)
		}
	}
	return out, warnings
}

// specimenTree builds the studied specimen hierarchy below a "Specimen" root
// carrying the specimen summary. Specimens hang below the group or collection
// they are part of; specimens with more than one state get a node per state.
// Siblings are ordered by title.
func specimenTree(listed []graph.Specimen) (*hierarchy.Node[any], []string, error) {
	if len(listed) == 0 {
		return nil, nil, nil
	}

	specimens, warnings := collectSpecimens(listed)
	agg := specimen.NewAggregator()
	entities := make([]hierarchy.Entity[any], len(specimens))
	states := make(map[string][]*hierarchy.Node[any])

	for i, s := range specimens {
		data := specimenData(s)
		agg.CollectSpecimen(s.kind, s.id, specimen.Attributes{
			Species:            data.Species,
			Sex:                data.Sex,
			Strains:            data.Strains,
			GeneticStrainTypes: data.GeneticStrainTypes,
			Pathology:          data.Pathology,
		})
		if s.kind == specimen.KindTissueSample || s.kind == specimen.KindTissueSampleCollection {
			agg.AddAnatomicalLocations(data.AnatomicalLocations...)
		}

		title := specimenTitle(s)
		if len(s.rec.States) > 1 {
			states[s.id] = stateNodes(s, title)
		}
		entities[i] = hierarchy.Entity[any]{
			ID:        s.id,
			Title:     title,
			Tag:       s.kind.Tag(),
			Data:      data,
			ParentIDs: s.parents,
		}
	}

	roots, err := hierarchy.Build(entities)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range hierarchy.Unreached(roots, entities) {
		warnings = append(warnings, fmt.Sprintf("specimen %s is only reachable through a circular part-of relation and is not shown", id))
	}

	if len(states) > 0 {
		hierarchy.Walk(roots, func(n *hierarchy.Node[any], _ int) bool {
			if sn, ok := states[n.Key]; ok {
				n.Children = append(n.Children, sn...)
				delete(states, n.Key)
			}
			return true
		})
	}
	hierarchy.SortChildren(roots, hierarchy.ByTitle[any])
	countMembers(roots)

	return &hierarchy.Node[any]{
		Key:      "root",
		Title:    "Specimen",
		Tag:      TagRoot,
		Data:     agg.Flush(),
		Children: roots,
		Legend:   hierarchy.Legend(roots, specimen.TagLabel),
	}, warnings, nil
}

// countMembers rewrites the declared quantity of groups and collections of
// which only some members are shown, e.g. "3 of 10 used in this dataset".
func countMembers(roots []*hierarchy.Node[any]) {
	done := make(map[*hierarchy.Node[any]]bool)
	hierarchy.Walk(roots, func(n *hierarchy.Node[any], _ int) bool {
		data, ok := n.Data.(*Specimen)
		if !ok || done[n] {
			return true
		}
		done[n] = true

		count := 0
		for _, c := range n.Children {
			if _, member := c.Data.(*Specimen); member {
				count++
			}
		}
		if count == 0 {
			return true
		}
		used := strconv.Itoa(count)
		if data.NumberOfSubjects != "" && data.NumberOfSubjects != used {
			data.NumberOfSubjects = fmt.Sprintf("%d of %s used in this dataset", count, data.NumberOfSubjects)
		}
		if data.TissueSamples != "" && data.TissueSamples != used {
			data.TissueSamples = fmt.Sprintf("total: %s, used in this dataset: %d", data.TissueSamples, count)
		}
		return true
	})
}

func specimenData(s studied) *Specimen {
	data := &Specimen{
		ID:                  s.id,
		Kind:                string(s.kind),
		Species:             graph.References(s.rec.Species),
		Sex:                 graph.References(s.rec.Sex),
		Strains:             graph.References(s.rec.Strains),
		GeneticStrainTypes:  graph.References(s.rec.GeneticStrainTypes),
		Pathology:           graph.References(s.rec.Pathology),
		AnatomicalLocations: graph.References(s.rec.AnatomicalLocations),
	}
	for _, st := range s.rec.States {
		data.Pathology = append(data.Pathology, graph.References(st.Pathology)...)
		if st.AgeCategory != nil {
			data.AgeCategory = append(data.AgeCategory, st.AgeCategory.Reference())
		}
	}
	if q := s.rec.Quantity; q != nil {
		switch s.kind {
		case specimen.KindSubjectGroup:
			data.NumberOfSubjects = strconv.Itoa(*q)
		case specimen.KindTissueSampleCollection:
			data.TissueSamples = strconv.Itoa(*q)
		}
	}
	data.Pathology = reference.Dedupe(data.Pathology)
	data.AgeCategory = reference.Dedupe(data.AgeCategory)
	reference.Sort(data.AgeCategory)
	return data
}

// specimenTitle is the kind label followed by the internal identifier, or the
// id when there is none.
func specimenTitle(s studied) string {
	name := strings.TrimSpace(s.rec.InternalIdentifier)
	if name == "" {
		name = s.id
	}
	return s.kind.Label() + " " + name
}

func stateNodes(s studied, owner string) []*hierarchy.Node[any] {
	nodes := make([]*hierarchy.Node[any], len(s.rec.States))
	for i, st := range s.rec.States {
		label := "State " + stateLabel(i)
		key := reference.UUID(st.ID)
		if key == "" {
			key = uuid.NewString()
		}
		data := &SpecimenState{
			ID:        key,
			Title:     label + " of " + lowerFirst(owner),
			Pathology: graph.References(st.Pathology),
		}
		if st.AgeCategory != nil {
			data.AgeCategory = []reference.Reference{st.AgeCategory.Reference()}
		}
		nodes[i] = &hierarchy.Node[any]{Key: key, Title: label, Tag: s.kind.StateTag(), Data: data}
	}
	return nodes
}

// stateLabel names states A to Z, then by number.
func stateLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
