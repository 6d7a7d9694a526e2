// Package graph holds the knowledge-graph side of semindex: the record shapes
// read from query results or triples, and publishing of translated documents.
package graph

import (
	"github.com/c360studio/semindex/lineage"
	"github.com/c360studio/semindex/reference"
)

// Ref is a reference to another knowledge-graph instance.
type Ref struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Reference converts r into a display reference.
func (r Ref) Reference() reference.Reference {
	name := r.FullName
	if name == "" {
		name = r.Name
	}
	return reference.New(r.ID, name)
}

// References converts refs, skipping empty entries.
func References(refs []Ref) []reference.Reference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]reference.Reference, 0, len(refs))
	for _, r := range refs {
		if ref := r.Reference(); !ref.IsZero() {
			out = append(out, ref)
		}
	}
	return out
}

// Version is one released version of a product or brain atlas.
type Version struct {
	ID                     string   `json:"id"`
	FullName               string   `json:"fullName,omitempty"`
	VersionIdentifier      string   `json:"versionIdentifier"`
	IsAlternativeVersionOf []string `json:"isAlternativeVersionOf,omitempty"`
	IsNewVersionOf         string   `json:"isNewVersionOf,omitempty"`
	CoordinateSpace        *Ref     `json:"coordinateSpace,omitempty"`
}

// Entity returns the version as lineage input. Ids are normalised so that
// IRIs and bare UUIDs referring to the same instance match.
func (v Version) Entity() lineage.VersionedEntity {
	e := lineage.VersionedEntity{
		ID:           reference.UUID(v.ID),
		VersionLabel: v.VersionIdentifier,
	}
	if v.IsNewVersionOf != "" {
		e.NewVersionOf = reference.UUID(v.IsNewVersionOf)
	}
	for _, alt := range v.IsAlternativeVersionOf {
		e.AlternativeOf = append(e.AlternativeOf, reference.UUID(alt))
	}
	return e
}

// BrainAtlas is a brain atlas with its versions and parcellation terminology.
type BrainAtlas struct {
	ID                   string               `json:"id"`
	FullName             string               `json:"fullName"`
	Versions             []Version            `json:"brainAtlasVersions,omitempty"`
	ParcellationEntities []ParcellationEntity `json:"parcellationEntities,omitempty"`
}

// ParcellationEntity is one region of an atlas terminology.
type ParcellationEntity struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Definition string   `json:"definition,omitempty"`
	HasParent  []string `json:"hasParent,omitempty"`
	// Versions lists the brain atlas version ids the entity appears in.
	Versions []string `json:"versions,omitempty"`
}

// ProductType is the kind of a research product.
type ProductType string

// Research product types.
const (
	ProductDataset       ProductType = "dataset"
	ProductModel         ProductType = "model"
	ProductSoftware      ProductType = "software"
	ProductMetaDataModel ProductType = "metaDataModel"
)

// ResearchProduct is a dataset, model, software or metadata model with its
// versions.
type ResearchProduct struct {
	ID       string      `json:"id"`
	Type     ProductType `json:"type"`
	FullName string      `json:"fullName"`
	Versions []Version   `json:"versions,omitempty"`
}

// DatasetVersion is one dataset version with its studied specimens.
type DatasetVersion struct {
	ID                string     `json:"id"`
	FullName          string     `json:"fullName,omitempty"`
	VersionIdentifier string     `json:"versionIdentifier,omitempty"`
	StudiedSpecimen   []Specimen `json:"studiedSpecimen,omitempty"`
}

// Specimen is a subject, subject group, tissue sample or tissue sample
// collection studied by a dataset version.
type Specimen struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	InternalIdentifier string `json:"internalIdentifier,omitempty"`

	Species             []Ref `json:"species,omitempty"`
	Sex                 []Ref `json:"biologicalSex,omitempty"`
	Strains             []Ref `json:"strains,omitempty"`
	GeneticStrainTypes  []Ref `json:"geneticStrainTypes,omitempty"`
	Pathology           []Ref `json:"pathology,omitempty"`
	AnatomicalLocations []Ref `json:"anatomicalLocations,omitempty"`

	IsPartOf []string `json:"isPartOf,omitempty"`
	// Quantity is the declared number of members of a group or collection.
	Quantity *int `json:"quantity,omitempty"`
	// SubElements are the members of a group or collection as known to the
	// graph, whether or not the dataset version lists them.
	SubElements []Specimen      `json:"subElements,omitempty"`
	States      []SpecimenState `json:"studiedStates,omitempty"`
}

// SpecimenState is a specimen at one point of a study.
type SpecimenState struct {
	ID          string `json:"id"`
	LookupLabel string `json:"lookupLabel,omitempty"`
	AgeCategory *Ref   `json:"ageCategory,omitempty"`
	Pathology   []Ref  `json:"pathology,omitempty"`
}

// Batch is one unit of translator input. Entities carry triple-encoded
// records that are decoded into the typed lists before translation.
type Batch struct {
	BrainAtlases     []BrainAtlas      `json:"brainAtlases,omitempty"`
	ResearchProducts []ResearchProduct `json:"researchProducts,omitempty"`
	DatasetVersions  []DatasetVersion  `json:"datasetVersions,omitempty"`
	Entities         []EntityPayload   `json:"entities,omitempty"`
}

// Merge appends the records of other to b.
func (b *Batch) Merge(other Batch) {
	b.BrainAtlases = append(b.BrainAtlases, other.BrainAtlases...)
	b.ResearchProducts = append(b.ResearchProducts, other.ResearchProducts...)
	b.DatasetVersions = append(b.DatasetVersions, other.DatasetVersions...)
	b.Entities = append(b.Entities, other.Entities...)
}

// Len returns the number of typed records in the batch.
func (b Batch) Len() int {
	return len(b.BrainAtlases) + len(b.ResearchProducts) + len(b.DatasetVersions)
}
