package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semindex/config"
	"github.com/c360studio/semindex/graph"
	"github.com/c360studio/semindex/source"
	"github.com/c360studio/semindex/storage"
	"github.com/c360studio/semindex/translate"
)

// App wires configuration, translation and the document sinks together.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	translator *translate.Translator

	outMu sync.Mutex
	out   *json.Encoder

	// NATS (nil when nats.url is empty)
	natsConn  *nats.Conn
	publisher *graph.Publisher
	store     *storage.Store

	metrics *http.Server

	// documents remembers which documents each batch file produced, so they
	// can be removed from the store when the file goes away.
	docMu     sync.Mutex
	documents map[string][]storage.DocumentID
}

// NewApp creates a new application instance. Documents are written to out as
// JSON lines.
func NewApp(cfg *config.Config, logger *slog.Logger, out io.Writer) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		translator: translate.New(translate.Config{
			CanonicalOrder: cfg.Lineage.CanonicalOrder,
			Logger:         logger,
		}),
		out:       json.NewEncoder(out),
		documents: make(map[string][]storage.DocumentID),
	}
}

// Start connects to NATS and starts the metrics endpoint when configured.
// Whatever was started is shut down again when Start fails.
func (a *App) Start(ctx context.Context) (err error) {
	if a.cfg.Metrics.Addr != "" {
		a.startMetrics()
	}
	defer func() {
		if err != nil {
			a.Shutdown(time.Second)
		}
	}()

	if a.cfg.NATS.URL == "" {
		a.logger.Debug("NATS not configured, documents are only written to stdout")
		return nil
	}

	conn, err := nats.Connect(a.cfg.NATS.URL, nats.Name(appName))
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", a.cfg.NATS.URL, err)
	}
	a.natsConn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.publisher = graph.NewPublisher(js, a.cfg.NATS.Subject, a.logger)

	if a.cfg.NATS.Bucket != "" {
		store, err := storage.NewStore(ctx, js, a.cfg.NATS.Bucket)
		if err != nil {
			return fmt.Errorf("initialize storage: %w", err)
		}
		a.store = store
	}

	a.logger.Info("Connected to NATS",
		"url", a.cfg.NATS.URL,
		"subject", a.cfg.NATS.Subject,
		"bucket", a.cfg.NATS.Bucket)
	return nil
}

func (a *App) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "addr", a.cfg.Metrics.Addr, "error", err)
		}
	}()
	a.logger.Info("Serving metrics", "addr", a.cfg.Metrics.Addr)
}

// Shutdown stops the metrics endpoint and drains the NATS connection.
func (a *App) Shutdown(timeout time.Duration) {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.logger.Warn("Metrics server shutdown", "error", err)
		}
		cancel()
	}

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.logger.Warn("NATS drain failed", "error", err)
		}
		a.natsConn.Close()
		a.natsConn = nil
	}
}

// TranslateAll loads every batch file matching the configured patterns and
// emits their documents. Files are translated concurrently. Files that fail to
// load or translate are logged and reported in the returned error after all
// others are processed.
func (a *App) TranslateAll(ctx context.Context) error {
	files, failed, err := source.LoadAll(a.cfg.Source.Patterns)
	if err != nil {
		return err
	}

	var (
		errMu sync.Mutex
		errs  []error
	)
	for path, err := range failed {
		a.logger.Error("Failed to load batch", "path", path, "error", err)
		errs = append(errs, err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		g.Go(func() error {
			if err := a.Process(ctx, f); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	a.logger.Info("Translation finished",
		"files", len(files),
		"failed", len(failed))
	return errors.Join(errs...)
}

// Process translates one batch file and emits its documents.
func (a *App) Process(ctx context.Context, f *source.BatchFile) error {
	docs, translateErr := a.translator.Batch(ctx, f.Batch)
	if translateErr != nil {
		a.logger.Error("Batch translated with failures", "path", f.Path, "error", translateErr)
	}

	ids := make([]storage.DocumentID, 0, len(docs))
	var errs []error
	for _, doc := range docs {
		if err := a.emit(ctx, doc); err != nil {
			errs = append(errs, err)
			continue
		}
		meta := doc.Metadata()
		ids = append(ids, storage.DocumentID{Type: meta.Type, ID: meta.ID})
	}

	a.docMu.Lock()
	previous := a.documents[f.Path]
	a.documents[f.Path] = ids
	a.docMu.Unlock()
	if a.store != nil {
		a.removeStale(ctx, previous, ids)
	}

	a.logger.Debug("Batch processed",
		"path", f.Path,
		"records", f.Batch.Len(),
		"documents", len(docs))

	if translateErr != nil {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, translateErr))
	}
	return errors.Join(errs...)
}

// emit writes a document to stdout, the ingest stream and the store.
func (a *App) emit(ctx context.Context, doc translate.Document) error {
	meta := doc.Metadata()

	a.outMu.Lock()
	err := a.out.Encode(doc)
	a.outMu.Unlock()
	if err != nil {
		return fmt.Errorf("write %s %s: %w", meta.Type, meta.ID, err)
	}

	if err := a.publisher.Publish(ctx, meta.Type, meta.ID, doc, meta.Errors); err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.Put(ctx, storage.DocumentID{Type: meta.Type, ID: meta.ID}, doc, meta.Errors); err != nil {
			return fmt.Errorf("store %s %s: %w", meta.Type, meta.ID, err)
		}
	}
	return nil
}

// removeStale deletes the previous documents of a batch file that are not
// among its current ones.
func (a *App) removeStale(ctx context.Context, previous, current []storage.DocumentID) {
	keep := make(map[storage.DocumentID]bool, len(current))
	for _, id := range current {
		keep[id] = true
	}
	for _, id := range previous {
		if keep[id] {
			continue
		}
		if err := a.store.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("Failed to delete stale document", "id", id.String(), "error", err)
		}
	}
}

// Watch translates all batch files, then re-translates files as they change
// until ctx is cancelled.
func (a *App) Watch(ctx context.Context) error {
	w, err := source.NewWatcher(source.WatcherConfig{
		Patterns:      a.cfg.Source.Patterns,
		DebounceDelay: a.cfg.Source.Debounce,
		Logger:        a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	files, failed, err := source.LoadAll(a.cfg.Source.Patterns)
	if err != nil {
		return err
	}
	for path, err := range failed {
		a.logger.Error("Failed to load batch", "path", path, "error", err)
	}
	for _, f := range files {
		w.SetHash(f.Path, f.Hash)
		if err := a.Process(ctx, f); err != nil {
			a.logger.Error("Failed to process batch", "path", f.Path, "error", err)
		}
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Received shutdown signal")
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.handleEvent(ctx, ev)
		}
	}
}

func (a *App) handleEvent(ctx context.Context, ev source.WatchEvent) {
	switch {
	case ev.Error != nil:
		a.logger.Error("Failed to load batch", "path", ev.Path, "error", ev.Error)
	case ev.Operation == source.OpDelete:
		a.logger.Info("Batch removed", "path", ev.Path)
		a.docMu.Lock()
		previous := a.documents[ev.Path]
		delete(a.documents, ev.Path)
		a.docMu.Unlock()
		if a.store != nil {
			a.removeStale(ctx, previous, nil)
		}
	case ev.File != nil:
		a.logger.Info("Batch changed", "path", ev.Path, "op", ev.Operation)
		if err := a.Process(ctx, ev.File); err != nil {
			a.logger.Error("Failed to process batch", "path", ev.Path, "error", err)
		}
	}
}
