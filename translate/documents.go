package translate

import (
	"github.com/c360studio/semindex/hierarchy"
	"github.com/c360studio/semindex/reference"
)

// Document types.
const (
	TypeBrainAtlas     = "brainAtlas"
	TypeDatasetVersion = "datasetVersion"
)

// Node tags.
const (
	TagRoot         = "#e3dcdc"
	TagVersion      = "#ffbe00"
	TagParcellation = "#8a1f0d"
)

// Meta is shared by all documents.
type Meta struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Title    string `json:"title"`
	// Errors are the warnings raised while translating the record.
	Errors []string `json:"errors,omitempty"`
}

// Metadata returns m. Documents embed Meta, which makes them Documents.
func (m *Meta) Metadata() *Meta { return m }

// Document is a translated search-index document.
type Document interface {
	Metadata() *Meta
}

// AtlasVersion is the data of a version node in an atlas version tree.
type AtlasVersion struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	CoordinateSpace *reference.Reference `json:"coordinateSpace,omitempty"`
}

// Terminology is the data of a parcellation terminology node. The root node
// carries the entity count, entity nodes the rest.
type Terminology struct {
	NumberOfParcellationEntities string                        `json:"numberOfParcellationEntities,omitempty"`
	Definition                   string                        `json:"definition,omitempty"`
	VersionGroups                []hierarchy.VersionAnnotation `json:"versionGroups,omitempty"`
}

// AtlasDocument is the document of a brain atlas.
type AtlasDocument struct {
	Meta
	Versions                *hierarchy.Node[*AtlasVersion] `json:"versions"`
	ParcellationTerminology *hierarchy.Node[*Terminology]  `json:"parcellationTerminology"`
}

// VersionRef points at one version of a research product.
type VersionRef struct {
	reference.Reference
	// Group is the shared label of the alternative versions this one belongs to.
	Group    string `json:"group,omitempty"`
	Position string `json:"position,omitempty"`
}

// ProductDocument is the overview document of a dataset, model, software or
// metadata model.
type ProductDocument struct {
	Meta
	Versions       []VersionRef          `json:"versions,omitempty"`
	NewestVersions []reference.Reference `json:"newestVersions,omitempty"`
}

// Specimen is the data of a specimen node.
type Specimen struct {
	ID                  string                `json:"id"`
	Kind                string                `json:"kind"`
	Species             []reference.Reference `json:"species,omitempty"`
	Sex                 []reference.Reference `json:"sex,omitempty"`
	Strains             []reference.Reference `json:"strains,omitempty"`
	GeneticStrainTypes  []reference.Reference `json:"geneticStrainTypes,omitempty"`
	Pathology           []reference.Reference `json:"pathology,omitempty"`
	AnatomicalLocations []reference.Reference `json:"anatomicalLocations,omitempty"`
	AgeCategory         []reference.Reference `json:"ageCategory,omitempty"`
	// NumberOfSubjects is set on subject groups that declare a quantity.
	NumberOfSubjects string `json:"numberOfSubjects,omitempty"`
	// TissueSamples is set on tissue sample collections that declare a
	// quantity.
	TissueSamples string `json:"tissueSamples,omitempty"`
}

// SpecimenState is the data of a state node.
type SpecimenState struct {
	ID          string                `json:"id,omitempty"`
	Title       string                `json:"title"`
	AgeCategory []reference.Reference `json:"ageCategory,omitempty"`
	Pathology   []reference.Reference `json:"pathology,omitempty"`
}

// DatasetVersionDocument is the document of a dataset version. The root of
// the specimen tree carries the specimen summary as data, specimen nodes carry
// *Specimen and state nodes *SpecimenState.
type DatasetVersionDocument struct {
	Meta
	Version         string               `json:"version,omitempty"`
	StudiedSpecimen *hierarchy.Node[any] `json:"studiedSpecimen,omitempty"`
}
