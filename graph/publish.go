package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DocumentSubject is the subject prefix for translated documents. The document
// type is appended: search.ingest.document.datasetVersion.
const DocumentSubject = "search.ingest.document"

// DocumentMessage is the envelope published for every translated document.
type DocumentMessage struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Document  json.RawMessage `json:"document"`
	Errors    []string        `json:"errors,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StreamPublisher is the part of jetstream.JetStream the Publisher uses.
type StreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes translated documents to JetStream.
type Publisher struct {
	js      StreamPublisher
	subject string
	logger  *slog.Logger
}

// NewPublisher creates a Publisher. An empty subject selects DocumentSubject.
func NewPublisher(js StreamPublisher, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DocumentSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{js: js, subject: subject, logger: logger}
}

// Subject returns the subject a document of docType is published on.
func (p *Publisher) Subject(docType string) string {
	return p.subject + "." + docType
}

// Publish sends one document. A nil Publisher or one without a stream
// connection skips publishing.
func (p *Publisher) Publish(ctx context.Context, docType, id string, doc any, errs []string) error {
	if p == nil || p.js == nil {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", docType, id, err)
	}
	data, err := json.Marshal(DocumentMessage{
		ID:        id,
		Type:      docType,
		Document:  body,
		Errors:    errs,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	subject := p.Subject(docType)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish %s %s: %w", docType, id, err)
	}
	p.logger.Debug("Published document",
		slog.String("subject", subject),
		slog.String("id", id))
	return nil
}
