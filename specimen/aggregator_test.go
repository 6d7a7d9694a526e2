package specimen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semindex/reference"
)

var (
	rat    = reference.Reference{ID: "rat", Name: "Rattus norvegicus"}
	mouse  = reference.Reference{ID: "mouse", Name: "Mus musculus"}
	male   = reference.Reference{ID: "male", Name: "male"}
	female = reference.Reference{ID: "female", Name: "female"}
)

func TestCollectIsIdempotent(t *testing.T) {
	a := NewAggregator()
	a.Collect("s1", CategorySpecies, []reference.Reference{rat}, "subject")
	a.Collect("s1", CategorySpecies, []reference.Reference{rat}, "subject")

	s := a.Flush()
	require.Len(t, s.Species, 1)
	assert.Equal(t, rat, s.Species[0].Reference)
	assert.Equal(t, []string{"1 subject"}, s.Species[0].Count)
}

func TestCountsPerKind(t *testing.T) {
	a := NewAggregator()
	a.Collect("s1", CategorySpecies, []reference.Reference{rat}, KindSubject.Label())
	a.Collect("ts1", CategorySpecies, []reference.Reference{rat}, KindTissueSample.Label())

	s := a.Flush()
	require.Len(t, s.Species, 1)
	assert.Equal(t, []string{"1 subject", "1 tissue sample"}, s.Species[0].Count)
	assert.Equal(t, "1 subject, 1 tissue sample", s.Species[0].CountLabel())
}

func TestPluralization(t *testing.T) {
	tests := []struct {
		label string
		n     int
		want  string
	}{
		{"Subject", 1, "1 subject"},
		{"Subject", 3, "3 subjects"},
		{"Subject group", 2, "2 subject groups"},
		{"Tissue sample collection", 2, "2 tissue sample collections"},
		{"Series", 2, "2 series"},
		{"mouse", 2, "2 mouses"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			a := NewAggregator()
			for i := 0; i < tt.n; i++ {
				a.Collect(string(rune('a'+i)), CategorySex, []reference.Reference{male}, tt.label)
			}
			s := a.Flush()
			require.Len(t, s.Sex, 1)
			assert.Equal(t, []string{tt.want}, s.Sex[0].Count)
		})
	}
}

func TestFlushSortsAndSplitsCategories(t *testing.T) {
	a := NewAggregator()
	a.CollectSpecimen(KindSubject, "s1", Attributes{
		Species: []reference.Reference{rat},
		Sex:     []reference.Reference{male},
	})
	a.CollectSpecimen(KindSubject, "s2", Attributes{
		Species: []reference.Reference{mouse},
		Sex:     []reference.Reference{female, male},
	})
	a.Collect("s2", "handedness", []reference.Reference{{Name: "left"}}, KindSubject.Label())

	s := a.Flush()
	assert.Equal(t, "2", s.NumberOfSubjects)
	assert.Empty(t, s.NumberOfTissueSamples)

	require.Len(t, s.Species, 2)
	assert.Equal(t, "Mus musculus", s.Species[0].Name)
	assert.Equal(t, "Rattus norvegicus", s.Species[1].Name)

	require.Len(t, s.Sex, 2)
	assert.Equal(t, "female", s.Sex[0].Name)
	assert.Equal(t, []string{"2 subjects"}, s.Sex[1].Count)

	assert.Nil(t, s.Strains)
	assert.Nil(t, s.Pathology)
	require.Contains(t, s.Other, "handedness")
	assert.Equal(t, "left", s.Other["handedness"][0].Name)
}

func TestIgnoredInput(t *testing.T) {
	a := NewAggregator()
	a.Collect("", CategorySpecies, []reference.Reference{rat}, "Subject")
	a.Collect("s1", CategorySpecies, nil, "Subject")
	a.Collect("s1", CategorySpecies, []reference.Reference{{}}, "Subject")
	a.AddSpecimen(KindSubject, "")

	s := a.Flush()
	assert.Nil(t, s.Species)
	assert.Empty(t, s.NumberOfSubjects)
	assert.Empty(t, a.AllSpecimenIDs())
}

func TestZeroCountsAreAbsent(t *testing.T) {
	a := NewAggregator()
	a.AddSpecimen(KindTissueSample, "ts1")

	data, err := json.Marshal(a.Flush())
	require.NoError(t, err)
	assert.JSONEq(t, `{"numberOfTissueSamples":"1"}`, string(data))

	data, err = json.Marshal(NewAggregator().Flush())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestFlushIsRepeatable(t *testing.T) {
	a := NewAggregator()
	a.CollectSpecimen(KindSubject, "s1", Attributes{Species: []reference.Reference{rat}})

	first := a.Flush()
	assert.Equal(t, first, a.Flush())

	a.CollectSpecimen(KindTissueSample, "ts1", Attributes{Species: []reference.Reference{rat}})
	a.CollectSpecimen(KindTissueSample, "ts2", Attributes{Species: []reference.Reference{rat}})
	a.AddAnatomicalLocations(reference.Reference{ID: "ca1", Name: "CA1"}, reference.Reference{ID: "ca1", Name: "CA1"})

	second := a.Flush()
	assert.Equal(t, "1", second.NumberOfSubjects)
	assert.Equal(t, "2", second.NumberOfTissueSamples)
	require.Len(t, second.Species, 1)
	assert.Equal(t, []string{"1 subject", "2 tissue samples"}, second.Species[0].Count)
	assert.Len(t, second.AnatomicalLocations, 1)
}

func TestAllSpecimenIDs(t *testing.T) {
	a := NewAggregator()
	a.AddSpecimen(KindTissueSample, "b")
	a.AddSpecimen(KindSubject, "a")
	a.AddSpecimen(KindSubjectGroup, "a")
	assert.Equal(t, []string{"a", "b"}, a.AllSpecimenIDs())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("tissueSample")
	require.NoError(t, err)
	assert.Equal(t, KindTissueSample, k)

	k, err = ParseKind("https://openminds.ebrains.eu/core/SubjectGroup")
	require.NoError(t, err)
	assert.Equal(t, KindSubjectGroup, k)
	assert.Equal(t, "Subject group", k.Label())

	_, err = ParseKind("organoid")
	assert.Error(t, err)
	assert.False(t, Kind("organoid").Valid())

	for _, k := range Kinds() {
		assert.True(t, k.Valid())
		assert.NotEmpty(t, k.Tag())
		assert.NotEmpty(t, k.StateTag())
	}
}

func TestTagLabel(t *testing.T) {
	tests := []struct {
		tag   string
		label string
		ok    bool
	}{
		{tag: "#ffbe00", label: "Subject", ok: true},
		{tag: "#e68d0d", label: "Subject state", ok: true},
		{tag: "#393ac6", label: "Tissue sample state", ok: true},
		// Groups share one tag for specimen and state; the specimen label wins.
		{tag: "#8a1f0d", label: "Subject group", ok: true},
		{tag: "#000000"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			label, ok := TagLabel(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.label, label)
		})
	}
}
