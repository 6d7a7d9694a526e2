package translate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semindex/graph"
	"github.com/c360studio/semindex/hierarchy"
	"github.com/c360studio/semindex/reference"
	"github.com/c360studio/semindex/specimen"
)

// lineageVersions is the release history used across tests: a and e are
// alternatives of the first release, b follows a, c follows b and d is an
// alternative of c.
func lineageVersions() []graph.Version {
	return []graph.Version{
		{ID: "https://kg.ebrains.eu/api/instances/a", VersionIdentifier: "2015, left"},
		{ID: "b", VersionIdentifier: "2017", IsNewVersionOf: "a"},
		{ID: "c", VersionIdentifier: "v4.0 left", IsNewVersionOf: "b", CoordinateSpace: &graph.Ref{ID: "whs", FullName: "Waxholm Space"}},
		{ID: "d", VersionIdentifier: "v4.0 right", IsAlternativeVersionOf: []string{"c"}},
		{ID: "e", VersionIdentifier: "2015, right", IsAlternativeVersionOf: []string{"https://kg.ebrains.eu/api/instances/a"}},
	}
}

func titles[T any](nodes []*hierarchy.Node[T]) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Title)
	}
	return out
}

func TestBrainAtlas(t *testing.T) {
	tr := New(Config{})
	doc, err := tr.BrainAtlas(graph.BrainAtlas{
		ID:       "https://kg.ebrains.eu/api/instances/4AC9F0BC-560D-47E0-8916-7B24DA9BB0CE",
		FullName: "Waxholm Space atlas of the Sprague Dawley rat brain",
		Versions: lineageVersions(),
		ParcellationEntities: []graph.ParcellationEntity{
			{ID: "hip", Name: "hippocampus"},
			{ID: "ca1", Name: "CA1", HasParent: []string{"hip"}, Versions: []string{"a", "e"}, Definition: "Cornu ammonis 1"},
			{ID: "amy", Name: "Amygdala", Versions: []string{"b"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "4ac9f0bc-560d-47e0-8916-7b24da9bb0ce", doc.ID)
	assert.Equal(t, TypeBrainAtlas, doc.Type)
	assert.Equal(t, "Brain Atlas", doc.Category)
	assert.Empty(t, doc.Errors)

	t.Run("version tree follows lineage", func(t *testing.T) {
		v := doc.Versions
		assert.Equal(t, "root", v.Key)
		assert.Equal(t, TagRoot, v.Tag)
		require.Len(t, v.Children, 3)
		assert.Equal(t, []string{"2015", "2017", "v4.0"}, titles(v.Children))

		first := v.Children[0]
		assert.Equal(t, TagVersion, first.Tag)
		assert.Equal(t, []string{"left", "right"}, titles(first.Children))
		assert.Equal(t, "a", first.Children[0].Key)
		assert.Equal(t, "2015, left", first.Children[0].Data.Title)

		single := v.Children[1]
		assert.Equal(t, "b", single.Key)
		assert.Empty(t, single.Children)

		last := v.Children[2]
		require.Len(t, last.Children, 2)
		require.NotNil(t, last.Children[0].Data.CoordinateSpace)
		assert.Equal(t, "Waxholm Space", last.Children[0].Data.CoordinateSpace.Name)
	})

	t.Run("terminology sorted and annotated", func(t *testing.T) {
		p := doc.ParcellationTerminology
		assert.Equal(t, "root", p.Key)
		assert.Equal(t, "3", p.Data.NumberOfParcellationEntities)
		assert.Equal(t, []string{"Amygdala", "hippocampus"}, titles(p.Children))

		amy := p.Children[0]
		assert.Equal(t, TagParcellation, amy.Tag)
		assert.Equal(t, []hierarchy.VersionAnnotation{{Name: "2017"}}, amy.Data.VersionGroups)

		require.Len(t, p.Children[1].Children, 1)
		ca1 := p.Children[1].Children[0]
		assert.Equal(t, "Cornu ammonis 1", ca1.Data.Definition)
		assert.Equal(t, []hierarchy.VersionAnnotation{{Name: "2015", Versions: []string{"left", "right"}}}, ca1.Data.VersionGroups)
	})
}

func TestBrainAtlasWarnings(t *testing.T) {
	tr := New(Config{})
	doc, err := tr.BrainAtlas(graph.BrainAtlas{
		ID:       "atlas",
		FullName: "Atlas",
		Versions: []graph.Version{
			{ID: "a", VersionIdentifier: "1"},
			{ID: "b", VersionIdentifier: "2"},
		},
		ParcellationEntities: []graph.ParcellationEntity{
			{ID: "x", Name: "x", HasParent: []string{"y"}},
			{ID: "y", Name: "y", HasParent: []string{"x"}},
		},
	})
	require.NoError(t, err)

	// Two independent roots are not an error; the entities cut off by their
	// parent cycle are.
	require.Len(t, doc.Errors, 2)
	assert.Contains(t, doc.Errors[0], "parcellation entity x")
	assert.Contains(t, doc.Errors[1], "parcellation entity y")
	assert.Empty(t, doc.ParcellationTerminology.Children)
	assert.Equal(t, "2", doc.ParcellationTerminology.Data.NumberOfParcellationEntities)
}

func TestBrainAtlasErrors(t *testing.T) {
	tr := New(Config{})

	_, err := tr.BrainAtlas(graph.BrainAtlas{FullName: "no id"})
	assert.Error(t, err)

	_, err = tr.BrainAtlas(graph.BrainAtlas{
		ID:       "atlas",
		Versions: []graph.Version{{ID: "a"}, {ID: "a"}},
	})
	assert.Error(t, err, "duplicate version ids")

	_, err = tr.BrainAtlas(graph.BrainAtlas{
		ID:                   "atlas",
		ParcellationEntities: []graph.ParcellationEntity{{ID: "p"}, {ID: "p"}},
	})
	assert.Error(t, err, "duplicate parcellation entity ids")
}

func TestResearchProduct(t *testing.T) {
	tr := New(Config{})
	doc, err := tr.ResearchProduct(graph.ResearchProduct{
		ID:       "model",
		Type:     graph.ProductModel,
		FullName: "Hippocampus CA1 model",
		Versions: lineageVersions(),
	})
	require.NoError(t, err)

	assert.Equal(t, "model", doc.Type)
	assert.Equal(t, "Model Overview", doc.Category)
	assert.Empty(t, doc.Errors)

	var got [][3]string
	for _, v := range doc.Versions {
		got = append(got, [3]string{v.ID, v.Group, v.Position})
	}
	assert.Equal(t, [][3]string{
		{"a", "2015", "version 1 of 3"},
		{"e", "2015", "version 1 of 3"},
		{"b", "", "version 2 of 3"},
		{"c", "v4.0", "version 3 of 3"},
		{"d", "v4.0", "version 3 of 3"},
	}, got)
	assert.Equal(t, "Hippocampus CA1 model (2017)", doc.Versions[2].Title())

	require.Len(t, doc.NewestVersions, 2)
	assert.Equal(t, "c", doc.NewestVersions[0].ID)
	assert.Equal(t, "d", doc.NewestVersions[1].ID)
}

func TestResearchProductUnknownType(t *testing.T) {
	_, err := New(Config{}).ResearchProduct(graph.ResearchProduct{ID: "x", Type: "organoid"})
	assert.ErrorContains(t, err, "unknown product type")
}

func TestCanonicalOrderIgnoresRecordOrder(t *testing.T) {
	versions := lineageVersions()
	reversed := make([]graph.Version, len(versions))
	for i, v := range versions {
		reversed[len(versions)-1-i] = v
	}

	tr := New(Config{CanonicalOrder: true})
	one, err := tr.ResearchProduct(graph.ResearchProduct{ID: "p", Type: graph.ProductSoftware, Versions: versions})
	require.NoError(t, err)
	two, err := tr.ResearchProduct(graph.ResearchProduct{ID: "p", Type: graph.ProductSoftware, Versions: reversed})
	require.NoError(t, err)

	assert.Equal(t, one.Versions, two.Versions)
}

func ref(id, name string) graph.Ref { return graph.Ref{ID: id, Name: name} }

func TestDatasetVersion(t *testing.T) {
	rat := ref("rat", "Rattus norvegicus")
	tr := New(Config{})
	doc, err := tr.DatasetVersion(graph.DatasetVersion{
		ID:                "dsv",
		FullName:          "Rat hippocampus recordings",
		VersionIdentifier: "v1",
		StudiedSpecimen: []graph.Specimen{
			{
				ID: "t1", Type: string(specimen.KindTissueSample), InternalIdentifier: "slice-1",
				Species:             []graph.Ref{rat},
				AnatomicalLocations: []graph.Ref{ref("ca1", "CA1")},
				// s1 is not listed, so the link is dropped
				IsPartOf: []string{"s1"},
			},
			{
				ID: "g", Type: "https://openminds.ebrains.eu/core/SubjectGroup", InternalIdentifier: "rats",
				Species: []graph.Ref{rat},
				SubElements: []graph.Specimen{
					{ID: "s2", Type: string(specimen.KindSubject), InternalIdentifier: "sub-02", Species: []graph.Ref{rat}, Sex: []graph.Ref{ref("f", "female")}},
					{ID: "s1", Type: string(specimen.KindSubject), InternalIdentifier: "sub-01", Species: []graph.Ref{rat}, Sex: []graph.Ref{ref("m", "male")},
						States: []graph.SpecimenState{
							{ID: "s1-a", AgeCategory: &graph.Ref{ID: "adult", Name: "adult"}},
							{ID: "s1-b", AgeCategory: &graph.Ref{ID: "juvenile", Name: "juvenile"}},
						}},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, doc.Errors)
	assert.Equal(t, "v1", doc.Version)

	root := doc.StudiedSpecimen
	require.NotNil(t, root)
	assert.Equal(t, "Specimen", root.Title)
	assert.Equal(t, []string{"Subject group rats", "Tissue sample slice-1"}, titles(root.Children))

	group := root.Children[0]
	assert.Equal(t, specimen.KindSubjectGroup.Tag(), group.Tag)
	assert.Equal(t, []string{"Subject sub-01", "Subject sub-02"}, titles(group.Children))

	s1 := group.Children[0]
	assert.Equal(t, []string{"State A", "State B"}, titles(s1.Children))
	state := s1.Children[0].Data.(*SpecimenState)
	assert.Equal(t, "State A of subject sub-01", state.Title)
	assert.Equal(t, specimen.KindSubject.StateTag(), s1.Children[0].Tag)
	data := s1.Data.(*Specimen)
	assert.Len(t, data.AgeCategory, 2)

	summary := root.Data.(specimen.Summary)
	assert.Equal(t, "2", summary.NumberOfSubjects)
	assert.Equal(t, "1", summary.NumberOfSubjectGroups)
	assert.Equal(t, "1", summary.NumberOfTissueSamples)
	assert.Empty(t, summary.NumberOfTissueSampleCollections)
	require.Len(t, summary.Species, 1)
	assert.Equal(t, []string{"2 subjects", "1 subject group", "1 tissue sample"}, summary.Species[0].Count)
	require.Len(t, summary.Sex, 2)
	assert.Equal(t, "female", summary.Sex[0].Name)
	assert.Equal(t, []reference.Reference{{ID: "ca1", Name: "CA1"}}, summary.AnatomicalLocations)
}

func TestDatasetVersionSelection(t *testing.T) {
	doc, err := New(Config{}).DatasetVersion(graph.DatasetVersion{
		ID: "dsv",
		StudiedSpecimen: []graph.Specimen{
			{ID: "g", Type: string(specimen.KindSubjectGroup), InternalIdentifier: "g",
				SubElements: []graph.Specimen{
					{ID: "s1", Type: string(specimen.KindSubject), IsPartOf: []string{"g"}},
					{ID: "s2", Type: string(specimen.KindSubject), IsPartOf: []string{"g"}},
				}},
			{ID: "s1", Type: string(specimen.KindSubject), InternalIdentifier: "sub-01", IsPartOf: []string{"g"}},
			{ID: "odd", Type: "organoid"},
		},
	})
	require.NoError(t, err)

	// Listing s1 selects it; s2 is not implied.
	counts := hierarchy.Count([]*hierarchy.Node[any]{doc.StudiedSpecimen})
	assert.Equal(t, 1, counts["s1"])
	assert.Zero(t, counts["s2"])
	require.Len(t, doc.StudiedSpecimen.Children, 1)
	assert.Equal(t, []string{"Subject sub-01"}, titles(doc.StudiedSpecimen.Children[0].Children))

	require.Len(t, doc.Errors, 1)
	assert.Contains(t, doc.Errors[0], "specimen odd is not shown")
}

func intPtr(n int) *int { return &n }

func nodeByKey(t *testing.T, root *hierarchy.Node[any], key string) *hierarchy.Node[any] {
	t.Helper()
	var found *hierarchy.Node[any]
	hierarchy.Walk([]*hierarchy.Node[any]{root}, func(n *hierarchy.Node[any], _ int) bool {
		if n.Key == key {
			found = n
		}
		return found == nil
	})
	require.NotNil(t, found, key)
	return found
}

func TestDatasetVersionGroupQuantities(t *testing.T) {
	doc, err := New(Config{}).DatasetVersion(graph.DatasetVersion{
		ID: "dsv",
		StudiedSpecimen: []graph.Specimen{
			{ID: "g", Type: string(specimen.KindSubjectGroup), InternalIdentifier: "cohort", Quantity: intPtr(10),
				SubElements: []graph.Specimen{
					{ID: "s1", Type: string(specimen.KindSubject), InternalIdentifier: "sub-01"},
					{ID: "s2", Type: string(specimen.KindSubject), InternalIdentifier: "sub-02"},
				}},
			{ID: "c", Type: string(specimen.KindTissueSampleCollection), InternalIdentifier: "all slices", Quantity: intPtr(2),
				SubElements: []graph.Specimen{
					{ID: "t1", Type: string(specimen.KindTissueSample)},
					{ID: "t2", Type: string(specimen.KindTissueSample)},
				}},
			{ID: "c2", Type: string(specimen.KindTissueSampleCollection), InternalIdentifier: "some slices", Quantity: intPtr(5),
				SubElements: []graph.Specimen{
					{ID: "t3", Type: string(specimen.KindTissueSample)},
					{ID: "t4", Type: string(specimen.KindTissueSample)},
				}},
			{ID: "t3", Type: string(specimen.KindTissueSample), InternalIdentifier: "slice-3", IsPartOf: []string{"c2"}},
			{ID: "empty", Type: string(specimen.KindSubjectGroup), Quantity: intPtr(4)},
		},
	})
	require.NoError(t, err)

	tests := []struct {
		key              string
		numberOfSubjects string
		tissueSamples    string
	}{
		{key: "g", numberOfSubjects: "2 of 10 used in this dataset"},
		{key: "c", tissueSamples: "2"},
		{key: "c2", tissueSamples: "total: 5, used in this dataset: 1"},
		{key: "empty", numberOfSubjects: "4"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			data := nodeByKey(t, doc.StudiedSpecimen, tt.key).Data.(*Specimen)
			assert.Equal(t, tt.numberOfSubjects, data.NumberOfSubjects)
			assert.Equal(t, tt.tissueSamples, data.TissueSamples)
		})
	}
}

func TestDatasetVersionLegend(t *testing.T) {
	doc, err := New(Config{}).DatasetVersion(graph.DatasetVersion{
		ID: "dsv",
		StudiedSpecimen: []graph.Specimen{
			{ID: "g", Type: string(specimen.KindSubjectGroup),
				SubElements: []graph.Specimen{
					{ID: "s1", Type: string(specimen.KindSubject), States: []graph.SpecimenState{{ID: "a"}, {ID: "b"}}},
				}},
			{ID: "t1", Type: string(specimen.KindTissueSample)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []hierarchy.LegendEntry{
		{Tag: specimen.KindSubject.Tag(), Label: "Subject"},
		{Tag: specimen.KindSubjectGroup.Tag(), Label: "Subject group"},
		{Tag: specimen.KindSubject.StateTag(), Label: "Subject state"},
		{Tag: specimen.KindTissueSample.Tag(), Label: "Tissue sample"},
	}, doc.StudiedSpecimen.Legend)
	for _, child := range doc.StudiedSpecimen.Children {
		assert.Nil(t, child.Legend)
	}

	data, err := json.Marshal(doc.StudiedSpecimen)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"legend":[{"color":"#ffbe00","label":"Subject"}`)
}

func TestUnlinkedReleasesAreNotAnError(t *testing.T) {
	doc, err := New(Config{}).ResearchProduct(graph.ResearchProduct{
		ID:       "sw",
		Type:     graph.ProductSoftware,
		FullName: "Viewer",
		Versions: []graph.Version{
			{ID: "v1", VersionIdentifier: "1.0"},
			{ID: "v2", VersionIdentifier: "2.0"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, doc.Errors)
	assert.Len(t, doc.Versions, 2)
	assert.Len(t, doc.NewestVersions, 2)
}

func TestDatasetVersionWithoutSpecimens(t *testing.T) {
	doc, err := New(Config{}).DatasetVersion(graph.DatasetVersion{ID: "dsv"})
	require.NoError(t, err)
	assert.Nil(t, doc.StudiedSpecimen)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "studiedSpecimen")
}

func TestBatch(t *testing.T) {
	tr := New(Config{})
	docs, err := tr.Batch(context.Background(), graph.Batch{
		BrainAtlases:     []graph.BrainAtlas{{ID: "atlas", FullName: "Atlas"}},
		ResearchProducts: []graph.ResearchProduct{{ID: "p", Type: "organoid"}, {ID: "d", Type: graph.ProductDataset}},
		DatasetVersions:  []graph.DatasetVersion{{ID: "dsv"}},
	})
	assert.ErrorContains(t, err, "unknown product type")

	var types []string
	for _, d := range docs {
		types = append(types, d.Metadata().Type)
	}
	assert.Equal(t, []string{TypeBrainAtlas, "dataset", TypeDatasetVersion}, types)
}

func TestBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs, err := New(Config{}).Batch(ctx, graph.Batch{BrainAtlases: []graph.BrainAtlas{{ID: "atlas"}}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, docs)
}

func TestDocumentJSON(t *testing.T) {
	doc, err := New(Config{}).ResearchProduct(graph.ResearchProduct{
		ID: "p", Type: graph.ProductDataset, FullName: "P",
		Versions: []graph.Version{{ID: "v", VersionIdentifier: "1.0"}},
	})
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "p", decoded["id"])
	assert.Equal(t, "Dataset Overview", decoded["category"])
	assert.NotContains(t, decoded, "errors")
	versions := decoded["versions"].([]any)
	require.Len(t, versions, 1)
	assert.Equal(t, map[string]any{"reference": "v", "value": "P", "version": "1.0", "position": "version 1 of 1"}, versions[0])
}
