// Package translate assembles search-index documents from knowledge-graph
// records.
//
// A Translator resolves version lineages, builds the hierarchies shown on a
// document and folds specimen data into summaries. Problems in the source data
// never stop a document from being produced: they are logged and attached to
// the document's Errors list.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/c360studio/semindex/graph"
	"github.com/c360studio/semindex/lineage"
)

// Config configures a Translator.
type Config struct {
	// CanonicalOrder makes version grouping independent of record order.
	CanonicalOrder bool

	Logger *slog.Logger
}

// Translator turns records into documents. It holds no per-record state and
// is safe for concurrent use.
type Translator struct {
	groupOpts []lineage.GroupOption
	logger    *slog.Logger
}

// New creates a Translator.
func New(cfg Config) *Translator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := &Translator{logger: logger}
	if cfg.CanonicalOrder {
		t.groupOpts = append(t.groupOpts, lineage.WithCanonicalOrder())
	}
	return t
}

// Batch translates every record of b. Records that cannot be translated are
// skipped and reported in the joined error; the documents of all other records
// are still returned.
func (t *Translator) Batch(ctx context.Context, b graph.Batch) (docs []Document, err error) {
	ctx, span := tracer.Start(ctx, "translate.Batch",
		trace.WithAttributes(
			attribute.Int("brain_atlases", len(b.BrainAtlases)),
			attribute.Int("research_products", len(b.ResearchProducts)),
			attribute.Int("dataset_versions", len(b.DatasetVersions)),
		),
	)
	defer func() {
		span.SetAttributes(attribute.Int("documents", len(docs)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch translated with failures")
		}
		span.End()
	}()

	var errs []error
	add := func(doc Document, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		docs = append(docs, doc)
	}

	for _, rec := range b.BrainAtlases {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		add(t.BrainAtlas(rec))
	}
	for _, rec := range b.ResearchProducts {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		add(t.ResearchProduct(rec))
	}
	for _, rec := range b.DatasetVersions {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		add(t.DatasetVersion(rec))
	}

	return docs, errors.Join(errs...)
}

// lineage groups and orders versions. Ambiguities that are not contradictions
// are logged, not attached to the document.
func (t *Translator) lineage(docType, id string, versions []graph.Version) (lineage.Lineage, error) {
	entities := make([]lineage.VersionedEntity, len(versions))
	for i, v := range versions {
		entities[i] = v.Entity()
	}
	groups, err := lineage.GroupVersions(entities, t.groupOpts...)
	if err != nil {
		return lineage.Lineage{}, err
	}
	l := lineage.Sequence(groups)
	for _, note := range l.Notes {
		t.logger.Debug("Version lineage ambiguity",
			slog.String("document_type", docType),
			slog.String("entity_id", id),
			slog.String("note", note))
	}
	return l, nil
}

// observe records metrics and logs the outcome of one record.
func (t *Translator) observe(docType, id string, start time.Time, warnings []string, err error) {
	translateDuration.WithLabelValues(docType).Observe(time.Since(start).Seconds())
	if err != nil {
		documentsTotal.WithLabelValues(docType, "error").Inc()
		t.logger.Error("Translation failed",
			slog.String("document_type", docType),
			slog.String("entity_id", id),
			slog.String("error", err.Error()))
		return
	}

	documentsTotal.WithLabelValues(docType, "ok").Inc()
	warningsTotal.WithLabelValues(docType).Add(float64(len(warnings)))
	for _, w := range warnings {
		t.logger.Warn("Translation warning",
			slog.String("document_type", docType),
			slog.String("entity_id", id),
			slog.String("warning", w))
	}
}

func recordError(docType, id string, err error) error {
	return fmt.Errorf("translate %s %s: %w", docType, id, err)
}
