package graph

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semindex/specimen"
	"github.com/c360studio/semindex/vocabulary/openminds"
)

// subject collects the predicate values of one triple subject in arrival
// order.
type subject struct {
	id     string
	values map[string][]string
}

func (s *subject) first(pred string) string {
	if v := s.values[pred]; len(v) > 0 {
		return v[0]
	}
	return ""
}

type index struct {
	order    []string
	subjects map[string]*subject
}

func newIndex(triples []message.Triple) *index {
	idx := &index{subjects: make(map[string]*subject)}
	for _, t := range triples {
		if t.Subject == "" || t.Predicate == "" {
			continue
		}
		s, ok := idx.subjects[t.Subject]
		if !ok {
			s = &subject{id: t.Subject, values: make(map[string][]string)}
			idx.subjects[t.Subject] = s
			idx.order = append(idx.order, t.Subject)
		}
		s.values[t.Predicate] = append(s.values[t.Predicate], objectStrings(t.Object)...)
	}
	return idx
}

func (idx *index) ofType(types ...string) []*subject {
	var out []*subject
	for _, id := range idx.order {
		s := idx.subjects[id]
		for _, typ := range types {
			if s.first(openminds.EntityType) == typ {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ref resolves an object id to a reference, using the display name of the
// referenced subject when the triples describe it.
func (idx *index) ref(id string) Ref {
	r := Ref{ID: id}
	if s, ok := idx.subjects[id]; ok {
		r.FullName = s.first(openminds.FullName)
		r.Name = s.first(openminds.Name)
	}
	return r
}

func (idx *index) refs(ids []string) []Ref {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Ref, len(ids))
	for i, id := range ids {
		out[i] = idx.ref(id)
	}
	return out
}

func (idx *index) version(id string) Version {
	v := Version{ID: id}
	s, ok := idx.subjects[id]
	if !ok {
		return v
	}
	v.FullName = s.first(openminds.FullName)
	v.VersionIdentifier = s.first(openminds.VersionIdentifier)
	v.IsAlternativeVersionOf = s.values[openminds.IsAlternativeVersionOf]
	v.IsNewVersionOf = s.first(openminds.IsNewVersionOf)
	if cs := s.first(openminds.CoordinateSpace); cs != "" {
		r := idx.ref(cs)
		v.CoordinateSpace = &r
	}
	return v
}

func (idx *index) versions(s *subject) []Version {
	ids := s.values[openminds.HasVersion]
	if len(ids) == 0 {
		return nil
	}
	out := make([]Version, len(ids))
	for i, id := range ids {
		out[i] = idx.version(id)
	}
	return out
}

func (idx *index) specimen(id string) Specimen {
	sp := Specimen{ID: id}
	s, ok := idx.subjects[id]
	if !ok {
		return sp
	}
	sp.Type = s.first(openminds.EntityType)
	sp.InternalIdentifier = s.first(openminds.InternalIdentifier)
	sp.Species = idx.refs(s.values[openminds.Species])
	sp.Sex = idx.refs(s.values[openminds.Sex])
	sp.Strains = idx.refs(s.values[openminds.Strain])
	sp.GeneticStrainTypes = idx.refs(s.values[openminds.GeneticStrainType])
	sp.Pathology = idx.refs(s.values[openminds.Pathology])
	sp.AnatomicalLocations = idx.refs(s.values[openminds.AnatomicalLocation])
	sp.IsPartOf = s.values[openminds.IsPartOf]
	if q, err := strconv.Atoi(s.first(openminds.Quantity)); err == nil {
		sp.Quantity = &q
	}
	return sp
}

// DecodeTriples builds typed records from openMINDS triples.
//
// Brain atlases, research products and dataset versions are recognised by
// their EntityType; versions, parcellation entities and specimens are pulled
// in through the relationship predicates. Triples about unknown types are
// ignored.
func DecodeTriples(triples []message.Triple) Batch {
	idx := newIndex(triples)
	var b Batch

	for _, s := range idx.ofType(openminds.TypeBrainAtlas) {
		atlas := BrainAtlas{
			ID:       s.id,
			FullName: s.first(openminds.FullName),
			Versions: idx.versions(s),
		}
		for _, pid := range s.values[openminds.HasTerminologyEntity] {
			pe := ParcellationEntity{ID: pid}
			if ps, ok := idx.subjects[pid]; ok {
				pe.Name = ps.first(openminds.Name)
				pe.Definition = ps.first(openminds.Definition)
				pe.HasParent = ps.values[openminds.HasParent]
				pe.Versions = ps.values[openminds.AppearsIn]
			}
			atlas.ParcellationEntities = append(atlas.ParcellationEntities, pe)
		}
		b.BrainAtlases = append(b.BrainAtlases, atlas)
	}

	productTypes := map[string]ProductType{
		openminds.TypeDataset:       ProductDataset,
		openminds.TypeModel:         ProductModel,
		openminds.TypeSoftware:      ProductSoftware,
		openminds.TypeMetaDataModel: ProductMetaDataModel,
	}
	for _, s := range idx.ofType(openminds.TypeDataset, openminds.TypeModel, openminds.TypeSoftware, openminds.TypeMetaDataModel) {
		b.ResearchProducts = append(b.ResearchProducts, ResearchProduct{
			ID:       s.id,
			Type:     productTypes[s.first(openminds.EntityType)],
			FullName: s.first(openminds.FullName),
			Versions: idx.versions(s),
		})
	}

	for _, s := range idx.ofType(openminds.TypeDatasetVersion) {
		dv := DatasetVersion{
			ID:                s.id,
			FullName:          s.first(openminds.FullName),
			VersionIdentifier: s.first(openminds.VersionIdentifier),
		}
		studied := make(map[string]bool)
		for _, sid := range s.values[openminds.StudiedSpecimen] {
			studied[sid] = true
			dv.StudiedSpecimen = append(dv.StudiedSpecimen, idx.specimen(sid))
		}
		// Members of a studied group or collection, declared through IsPartOf
		// on the member side.
		for i := range dv.StudiedSpecimen {
			group := &dv.StudiedSpecimen[i]
			if k, err := specimen.ParseKind(group.Type); err != nil || (k != specimen.KindSubjectGroup && k != specimen.KindTissueSampleCollection) {
				continue
			}
			for _, id := range idx.order {
				if studied[id] {
					continue
				}
				for _, parent := range idx.subjects[id].values[openminds.IsPartOf] {
					if parent == group.ID {
						group.SubElements = append(group.SubElements, idx.specimen(id))
						break
					}
				}
			}
		}
		b.DatasetVersions = append(b.DatasetVersions, dv)
	}
	return b
}

// objectStrings flattens a triple object into string values.
func objectStrings(obj any) []string {
	switch v := obj.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, objectStrings(item)...)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// Decoded returns a copy of b whose entity payloads are decoded and merged
// into the typed record lists.
func (b Batch) Decoded() Batch {
	out := Batch{
		BrainAtlases:     slices.Clone(b.BrainAtlases),
		ResearchProducts: slices.Clone(b.ResearchProducts),
		DatasetVersions:  slices.Clone(b.DatasetVersions),
	}
	if len(b.Entities) == 0 {
		return out
	}
	var triples []message.Triple
	for _, e := range b.Entities {
		triples = append(triples, e.TripleData...)
	}
	out.Merge(DecodeTriples(triples))
	return out
}
