package openminds

import "github.com/c360studio/semstreams/vocabulary"

// Namespace for openMINDS vocabulary terms.
const Namespace = "https://openminds.ebrains.eu/vocab/"

// EntityType is the predicate carrying the openMINDS type of a subject.
// Values: the Type* constants below.
const EntityType = "openminds.entity.type"

// Entity type values.
const (
	TypeBrainAtlas             = "brainAtlas"
	TypeBrainAtlasVersion      = "brainAtlasVersion"
	TypeParcellationEntity     = "parcellationEntity"
	TypeDataset                = "dataset"
	TypeDatasetVersion         = "datasetVersion"
	TypeModel                  = "model"
	TypeModelVersion           = "modelVersion"
	TypeSoftware               = "software"
	TypeSoftwareVersion        = "softwareVersion"
	TypeMetaDataModel          = "metaDataModel"
	TypeMetaDataModelVersion   = "metaDataModelVersion"
	TypeSubject                = "subject"
	TypeSubjectGroup           = "subjectGroup"
	TypeTissueSample           = "tissueSample"
	TypeTissueSampleCollection = "tissueSampleCollection"
)

// Identity predicates.
const (
	// FullName is the display name of a product or atlas.
	FullName = "openminds.identity.full_name"

	// Name is the short name of a parcellation entity.
	Name = "openminds.identity.name"

	// Definition is the free-text definition of a parcellation entity.
	Definition = "openminds.identity.definition"

	// InternalIdentifier is the lab-internal label of a specimen.
	InternalIdentifier = "openminds.identity.internal_identifier"
)

// Version predicates.
const (
	// VersionIdentifier is the version label, e.g. "v1.2".
	VersionIdentifier = "openminds.version.identifier"

	// IsAlternativeVersionOf links a version to a sibling expression of the
	// same release. Symmetric.
	IsAlternativeVersionOf = "openminds.version.is_alternative_of"

	// IsNewVersionOf links a version to the version it supersedes.
	IsNewVersionOf = "openminds.version.is_new_version_of"

	// CoordinateSpace links a brain atlas version to its coordinate space.
	CoordinateSpace = "openminds.version.coordinate_space"
)

// Relationship predicates.
const (
	// HasVersion links a product or atlas to one of its versions.
	HasVersion = "openminds.relationship.has_version"

	// HasTerminologyEntity links a brain atlas to a parcellation entity.
	HasTerminologyEntity = "openminds.relationship.has_terminology_entity"

	// HasParent links a parcellation entity to a parent entity.
	HasParent = "openminds.relationship.has_parent"

	// AppearsIn links a parcellation entity to a brain atlas version.
	AppearsIn = "openminds.relationship.appears_in"

	// StudiedSpecimen links a dataset version to a specimen.
	StudiedSpecimen = "openminds.relationship.studied_specimen"

	// IsPartOf links a specimen to the group or collection containing it.
	IsPartOf = "openminds.relationship.is_part_of"
)

// Specimen attribute predicates. Objects are entity ids; the referenced
// entity carries its display name under Name.
const (
	Species            = "openminds.specimen.species"
	Sex                = "openminds.specimen.biological_sex"
	Strain             = "openminds.specimen.strain"
	GeneticStrainType  = "openminds.specimen.genetic_strain_type"
	Pathology          = "openminds.specimen.pathology"
	AnatomicalLocation = "openminds.specimen.anatomical_location"
	// Quantity is the declared number of members of a subject group or tissue
	// sample collection.
	Quantity = "openminds.specimen.quantity"
)

func init() {
	vocabulary.Register(EntityType,
		vocabulary.WithDescription("openMINDS type of the entity"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"))

	// Identity
	vocabulary.Register(FullName,
		vocabulary.WithDescription("Display name of a product or atlas"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcTitle))
	vocabulary.Register(Name,
		vocabulary.WithDescription("Short name of an entity"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"name"))
	vocabulary.Register(Definition,
		vocabulary.WithDescription("Definition of a parcellation entity"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"definition"))
	vocabulary.Register(InternalIdentifier,
		vocabulary.WithDescription("Lab-internal identifier of a specimen"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"internalIdentifier"))

	// Versions
	vocabulary.Register(VersionIdentifier,
		vocabulary.WithDescription("Version label of a released version"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"versionIdentifier"))
	vocabulary.Register(IsAlternativeVersionOf,
		vocabulary.WithDescription("Links a version to an alternative expression of the same release"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"isAlternativeVersionOf"))
	vocabulary.Register(IsNewVersionOf,
		vocabulary.WithDescription("Links a version to the version it supersedes"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"isNewVersionOf"))
	vocabulary.Register(CoordinateSpace,
		vocabulary.WithDescription("Coordinate space of a brain atlas version"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"coordinateSpace"))

	// Relationships
	vocabulary.Register(HasVersion,
		vocabulary.WithDescription("Links a product or atlas to one of its versions"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"hasVersion"))
	vocabulary.Register(HasTerminologyEntity,
		vocabulary.WithDescription("Links a brain atlas to a parcellation entity of its terminology"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"hasEntity"))
	vocabulary.Register(HasParent,
		vocabulary.WithDescription("Links a parcellation entity to a parent entity"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"hasParent"))
	vocabulary.Register(AppearsIn,
		vocabulary.WithDescription("Links a parcellation entity to a brain atlas version it appears in"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"appearsIn"))
	vocabulary.Register(StudiedSpecimen,
		vocabulary.WithDescription("Links a dataset version to a studied specimen"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"studiedSpecimen"))
	vocabulary.Register(IsPartOf,
		vocabulary.WithDescription("Links a specimen to the group or collection containing it"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"isPartOf"))

	// Specimen attributes
	vocabulary.Register(Species,
		vocabulary.WithDescription("Species of a specimen"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"species"))
	vocabulary.Register(Sex,
		vocabulary.WithDescription("Biological sex of a specimen"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"biologicalSex"))
	vocabulary.Register(Strain,
		vocabulary.WithDescription("Strain of a specimen"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"strain"))
	vocabulary.Register(GeneticStrainType,
		vocabulary.WithDescription("Genetic strain type of a specimen"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"geneticStrainType"))
	vocabulary.Register(Pathology,
		vocabulary.WithDescription("Pathology or phenotype of a specimen"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"pathology"))
	vocabulary.Register(AnatomicalLocation,
		vocabulary.WithDescription("Anatomical location a tissue sample was taken from"),
		vocabulary.WithDataType("entity_id"),
		vocabulary.WithIRI(Namespace+"anatomicalLocation"))
	vocabulary.Register(Quantity,
		vocabulary.WithDescription("Declared number of members of a group or collection"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"quantity"))
}
