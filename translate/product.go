package translate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/c360studio/semindex/graph"
	"github.com/c360studio/semindex/lineage"
	"github.com/c360studio/semindex/reference"
)

var productCategories = map[graph.ProductType]string{
	graph.ProductDataset:       "Dataset Overview",
	graph.ProductModel:         "Model Overview",
	graph.ProductSoftware:      "Software Overview",
	graph.ProductMetaDataModel: "Meta Data Model Overview",
}

// ResearchProduct translates the overview of a dataset, model, software or
// metadata model. Versions are listed in lineage order, earliest first, with
// alternatives next to each other.
func (t *Translator) ResearchProduct(rec graph.ResearchProduct) (doc *ProductDocument, err error) {
	start := time.Now()
	id := reference.UUID(rec.ID)
	docType := string(rec.Type)
	defer func() {
		var warnings []string
		if doc != nil {
			warnings = doc.Errors
		}
		t.observe(docType, id, start, warnings, err)
	}()

	category, ok := productCategories[rec.Type]
	if !ok {
		docType = "unknown"
		return nil, recordError("research product", rec.ID, fmt.Errorf("unknown product type %q", rec.Type))
	}
	if id == "" {
		return nil, recordError(docType, rec.FullName, fmt.Errorf("missing id"))
	}

	l, err := t.lineage(docType, id, rec.Versions)
	if err != nil {
		return nil, recordError(docType, id, err)
	}

	byID := make(map[string]graph.Version, len(rec.Versions))
	for _, v := range rec.Versions {
		byID[reference.UUID(v.ID)] = v
	}
	ref := func(id string) reference.Reference {
		v := byID[id]
		name := v.FullName
		if name == "" {
			name = rec.FullName
		}
		return reference.Reference{ID: id, Name: name, Version: v.VersionIdentifier}
	}

	doc = &ProductDocument{
		Meta: Meta{
			ID:       id,
			Type:     docType,
			Category: category,
			Title:    rec.FullName,
			Errors:   slices.Clone(l.Warnings),
		},
	}

	for _, g := range l.Order {
		members := slices.Clone(g.Members)
		slices.SortStableFunc(members, func(a, b lineage.VersionedEntity) int {
			return strings.Compare(a.VersionLabel, b.VersionLabel)
		})
		for _, m := range members {
			n, total := l.Position(m.ID)
			vr := VersionRef{
				Reference: ref(m.ID),
				Position:  fmt.Sprintf("version %d of %d", n, total),
			}
			if len(g.Members) > 1 {
				vr.Group = g.Title()
			}
			doc.Versions = append(doc.Versions, vr)
		}
	}

	if newest := l.Newest(); newest != nil {
		for _, id := range newest.IDs() {
			doc.NewestVersions = append(doc.NewestVersions, ref(id))
		}
		reference.Sort(doc.NewestVersions)
	}

	return doc, nil
}
