// Package specimen folds subjects, subject groups, tissue samples and tissue
// sample collections into a deduplicated, counted overview.
package specimen

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/c360studio/semindex/reference"
)

// Attribute categories collected from specimen records.
const (
	CategorySpecies            = "species"
	CategorySex                = "sex"
	CategoryStrains            = "strains"
	CategoryGeneticStrainTypes = "geneticStrainTypes"
	CategoryPathology          = "pathology"
)

// Attributes are the categorised references of one specimen record.
type Attributes struct {
	Species            []reference.Reference
	Sex                []reference.Reference
	Strains            []reference.Reference
	GeneticStrainTypes []reference.Reference
	Pathology          []reference.Reference
}

// Summary is the externally visible overview. Counts are decimal strings and
// empty when zero; empty categories are nil.
type Summary struct {
	NumberOfSubjects                string `json:"numberOfSubjects,omitempty"`
	NumberOfSubjectGroups           string `json:"numberOfSubjectGroups,omitempty"`
	NumberOfTissueSamples           string `json:"numberOfTissueSamples,omitempty"`
	NumberOfTissueSampleCollections string `json:"numberOfTissueSampleCollections,omitempty"`

	Species            []reference.Counted `json:"species,omitempty"`
	Sex                []reference.Counted `json:"sex,omitempty"`
	Strains            []reference.Counted `json:"strains,omitempty"`
	GeneticStrainTypes []reference.Counted `json:"geneticStrainTypes,omitempty"`
	Pathology          []reference.Counted `json:"pathology,omitempty"`

	AnatomicalLocations []reference.Reference `json:"anatomicalLocationsOfTissueSamples,omitempty"`

	// Other holds categories outside the fixed set.
	Other map[string][]reference.Counted `json:"other,omitempty"`
}

type contribution struct {
	ref reference.Reference
	// sources maps kind label to contributing source ids.
	sources map[string]map[string]struct{}
}

// Aggregator accumulates specimen data for one dataset version. It is not safe
// for concurrent use; each batch gets its own Aggregator.
type Aggregator struct {
	collected map[string]map[string]*contribution
	specimens map[Kind]map[string]struct{}
	locations map[string]reference.Reference
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		collected: make(map[string]map[string]*contribution),
		specimens: make(map[Kind]map[string]struct{}),
		locations: make(map[string]reference.Reference),
	}
}

// Collect records that sourceID, of the kind labelled kindLabel, contributed
// refs to category. Repeated calls union into the same sets.
func (a *Aggregator) Collect(sourceID, category string, refs []reference.Reference, kindLabel string) {
	if sourceID == "" || len(refs) == 0 {
		return
	}
	byRef, ok := a.collected[category]
	if !ok {
		byRef = make(map[string]*contribution)
		a.collected[category] = byRef
	}
	for _, r := range refs {
		if r.IsZero() {
			continue
		}
		c, ok := byRef[r.Key()]
		if !ok {
			c = &contribution{ref: r, sources: make(map[string]map[string]struct{})}
			byRef[r.Key()] = c
		}
		ids, ok := c.sources[kindLabel]
		if !ok {
			ids = make(map[string]struct{})
			c.sources[kindLabel] = ids
		}
		ids[sourceID] = struct{}{}
	}
}

// AddSpecimen records a distinct specimen id of the given kind.
func (a *Aggregator) AddSpecimen(kind Kind, id string) {
	if id == "" {
		return
	}
	ids, ok := a.specimens[kind]
	if !ok {
		ids = make(map[string]struct{})
		a.specimens[kind] = ids
	}
	ids[id] = struct{}{}
}

// CollectSpecimen adds the specimen and collects every attribute category
// under the kind's label.
func (a *Aggregator) CollectSpecimen(kind Kind, id string, attrs Attributes) {
	a.AddSpecimen(kind, id)
	label := kind.Label()
	a.Collect(id, CategorySpecies, attrs.Species, label)
	a.Collect(id, CategorySex, attrs.Sex, label)
	a.Collect(id, CategoryStrains, attrs.Strains, label)
	a.Collect(id, CategoryGeneticStrainTypes, attrs.GeneticStrainTypes, label)
	a.Collect(id, CategoryPathology, attrs.Pathology, label)
}

// AddAnatomicalLocations records where tissue samples were taken from.
func (a *Aggregator) AddAnatomicalLocations(refs ...reference.Reference) {
	for _, r := range refs {
		if !r.IsZero() {
			a.locations[r.Key()] = r
		}
	}
}

// Flush renders the accumulated state. It does not consume anything, so
// collecting more and flushing again yields the cumulative result.
func (a *Aggregator) Flush() Summary {
	s := Summary{
		NumberOfSubjects:                a.count(KindSubject),
		NumberOfSubjectGroups:           a.count(KindSubjectGroup),
		NumberOfTissueSamples:           a.count(KindTissueSample),
		NumberOfTissueSampleCollections: a.count(KindTissueSampleCollection),
	}
	for category := range a.collected {
		refs := a.flush(category)
		switch category {
		case CategorySpecies:
			s.Species = refs
		case CategorySex:
			s.Sex = refs
		case CategoryStrains:
			s.Strains = refs
		case CategoryGeneticStrainTypes:
			s.GeneticStrainTypes = refs
		case CategoryPathology:
			s.Pathology = refs
		default:
			if refs == nil {
				continue
			}
			if s.Other == nil {
				s.Other = make(map[string][]reference.Counted)
			}
			s.Other[category] = refs
		}
	}
	if len(a.locations) > 0 {
		for _, r := range a.locations {
			s.AnatomicalLocations = append(s.AnatomicalLocations, r)
		}
		reference.Sort(s.AnatomicalLocations)
	}
	return s
}

// AllSpecimenIDs returns every recorded specimen id, sorted.
func (a *Aggregator) AllSpecimenIDs() []string {
	var ids []string
	for _, set := range a.specimens {
		for id := range set {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (a *Aggregator) count(kind Kind) string {
	n := len(a.specimens[kind])
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func (a *Aggregator) flush(category string) []reference.Counted {
	byRef := a.collected[category]
	if len(byRef) == 0 {
		return nil
	}
	out := make([]reference.Counted, 0, len(byRef))
	for _, c := range byRef {
		labels := make([]string, 0, len(c.sources))
		for label := range c.sources {
			labels = append(labels, label)
		}
		slices.Sort(labels)

		counted := reference.Counted{Reference: c.ref}
		for _, label := range labels {
			n := len(c.sources[label])
			counted.Count = append(counted.Count, strconv.Itoa(n)+" "+kindName(label, n > 1))
		}
		out = append(out, counted)
	}
	slices.SortFunc(out, func(x, y reference.Counted) int { return reference.Compare(x.Reference, y.Reference) })
	return out
}

// kindName lower-cases the first letter of label and appends "s" for plurals
// unless it already ends in one.
func kindName(label string, plural bool) string {
	if r, size := utf8.DecodeRuneInString(label); size > 0 {
		label = string(unicode.ToLower(r)) + label[size:]
	}
	if plural && !strings.HasSuffix(label, "s") {
		label += "s"
	}
	return label
}
