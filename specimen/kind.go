package specimen

import (
	"fmt"
	"strings"
)

// Kind is the type of a specimen record.
type Kind string

// Specimen kinds.
const (
	KindSubject                Kind = "subject"
	KindSubjectGroup           Kind = "subjectGroup"
	KindTissueSample           Kind = "tissueSample"
	KindTissueSampleCollection Kind = "tissueSampleCollection"
)

type kindInfo struct {
	label    string
	typeIRI  string
	tag      string
	stateTag string
}

var kinds = map[Kind]kindInfo{
	KindSubject:                {"Subject", "https://openminds.ebrains.eu/core/Subject", "#ffbe00", "#e68d0d"},
	KindSubjectGroup:           {"Subject group", "https://openminds.ebrains.eu/core/SubjectGroup", "#8a1f0d", "#8a1f0d"},
	KindTissueSample:           {"Tissue sample", "https://openminds.ebrains.eu/core/TissueSample", "#3176e1", "#393ac6"},
	KindTissueSampleCollection: {"Tissue sample collection", "https://openminds.ebrains.eu/core/TissueSampleCollection", "#78b5b5", "#497d7d"},
}

// Kinds lists all kinds in display order.
func Kinds() []Kind {
	return []Kind{KindSubject, KindSubjectGroup, KindTissueSample, KindTissueSampleCollection}
}

// ParseKind accepts a kind key ("tissueSample") or an openMINDS type IRI.
func ParseKind(s string) (Kind, error) {
	if _, ok := kinds[Kind(s)]; ok {
		return Kind(s), nil
	}
	for k, info := range kinds {
		if strings.EqualFold(s, info.typeIRI) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown specimen kind: %q", s)
}

// Label is the display name used in count strings, e.g. "Tissue sample".
func (k Kind) Label() string {
	return kinds[k].label
}

// Tag is the presentation hint for specimen nodes of this kind.
func (k Kind) Tag() string {
	return kinds[k].tag
}

// StateTag is the presentation hint for state nodes of this kind.
func (k Kind) StateTag() string {
	return kinds[k].stateTag
}

// TagLabel names the kind a node tag stands for: the kind label for specimen
// tags, "<label> state" for state tags. Kinds sharing one tag for specimens and
// states resolve to the specimen label.
func TagLabel(tag string) (string, bool) {
	for _, k := range Kinds() {
		if kinds[k].tag == tag {
			return kinds[k].label, true
		}
	}
	for _, k := range Kinds() {
		if kinds[k].stateTag == tag {
			return kinds[k].label + " state", true
		}
	}
	return "", false
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}
