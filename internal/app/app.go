// Package app wires the wordsmith components together. An Application owns
// the configuration, logger, metrics, notifier, document store and analyzer,
// and keeps the registry of open editing sessions.
package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/wordsmith/internal/analyzer"
	"github.com/dshills/wordsmith/internal/config"
	"github.com/dshills/wordsmith/internal/engine"
	"github.com/dshills/wordsmith/internal/engine/suggestion"
	"github.com/dshills/wordsmith/internal/notify"
	"github.com/dshills/wordsmith/internal/store"
)

// saveTimeout bounds each document save.
const saveTimeout = 5 * time.Second

// Application is the central coordinator for all wordsmith components.
type Application struct {
	mu sync.RWMutex

	cfg      *config.Config
	logger   *Logger
	metrics  *Metrics
	notifier *notify.Notifier
	store    store.Store
	analyzer analyzer.Analyzer

	ownsStore bool
	sessions  map[string]*Session
	closed    bool
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the logger instead of building one from the config.
func WithLogger(l *Logger) Option {
	return func(app *Application) {
		app.logger = l
	}
}

// WithStore sets the document store instead of opening the configured one.
// The caller keeps ownership and closes it.
func WithStore(s store.Store) Option {
	return func(app *Application) {
		app.store = s
	}
}

// WithAnalyzer sets the analyzer instead of building the configured backend.
func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(app *Application) {
		app.analyzer = a
	}
}

// WithNotifier sets the notifier.
func WithNotifier(n *notify.Notifier) Option {
	return func(app *Application) {
		app.notifier = n
	}
}

// New creates an Application from cfg. Components not supplied through
// options are built from the configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	app := &Application{
		cfg:      cfg,
		metrics:  NewMetrics(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.logger == nil {
		app.logger = NewLogger(LoggerConfig{
			Level:  ParseLogLevel(cfg.Logging.Level),
			Format: LogFormat(cfg.Logging.Format),
		})
	}
	if app.analyzer == nil {
		a, err := buildAnalyzer(cfg, app.logger)
		if err != nil {
			return nil, &OperationError{Op: "init", Target: "analyzer", Err: errors.Join(ErrInitialization, err)}
		}
		app.analyzer = a
	}

	if app.store == nil {
		s, err := store.Open(ctx, store.Config{
			Driver: cfg.Storage.Driver,
			Path:   cfg.Storage.Path,
			Logger: app.logger.WithComponent("store"),
		})
		if err != nil {
			return nil, &OperationError{Op: "init", Target: "store", Err: errors.Join(ErrInitialization, err)}
		}
		app.store = s
		app.ownsStore = true
	}

	if app.notifier == nil {
		app.notifier = notify.New(notify.WithAsync(64))
	}

	app.logger.Info("application initialized",
		"analyzer", cfg.Analyzer.Backend,
		"storage", cfg.Storage.Driver,
	)
	return app, nil
}

func buildAnalyzer(cfg *config.Config, logger *Logger) (analyzer.Analyzer, error) {
	switch cfg.Analyzer.Backend {
	case "http":
		return analyzer.NewHTTPAnalyzer(cfg.Analyzer.Endpoint, analyzer.WithTimeout(cfg.Analyzer.Timeout.Duration)), nil
	case "openai", "":
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return analyzer.NewOpenAIAnalyzer(analyzer.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
		}, logger.WithComponent("analyzer")), nil
	default:
		return nil, fmt.Errorf("unknown analyzer backend %q", cfg.Analyzer.Backend)
	}
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.logger }

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics { return app.metrics }

// Notifier returns the notifier sessions post to.
func (app *Application) Notifier() *notify.Notifier { return app.notifier }

// Store returns the document store.
func (app *Application) Store() store.Store { return app.store }

// Analyze runs the analyzer once on text, outside any session.
func (app *Application) Analyze(ctx context.Context, text string) ([]suggestion.Raw, error) {
	started := time.Now()
	raw, err := app.analyzer.Analyze(ctx, text)

	out := analyzer.Outcome{State: analyzer.StateApplying, Published: len(raw), Latency: time.Since(started), Err: err}
	if err != nil {
		out.State = analyzer.StateFailed
		app.logger.Warn("analysis failed", "error", err)
	}
	app.metrics.ObserveOutcome(out)
	return raw, err
}

// OpenRequest describes the session to open.
type OpenRequest struct {
	// DocumentID names the stored document. Empty creates a new document.
	DocumentID string
	// Title sets the document title. Empty keeps the stored title.
	Title string
	// Content, when set, replaces the stored content. When nil the document
	// is loaded from the store.
	Content *string
}

// OpenSession opens a session on a new or stored document.
func (app *Application) OpenSession(ctx context.Context, req OpenRequest) (*Session, error) {
	app.mu.RLock()
	closed, cfg := app.closed, app.cfg
	app.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	docID, title := req.DocumentID, req.Title
	var content string
	var stored bool

	switch {
	case req.Content != nil:
		content = *req.Content
		if docID == "" {
			docID = uuid.NewString()
		} else if title == "" {
			if doc, err := app.store.Load(ctx, docID); err == nil {
				title = doc.Title
			}
		}
	case docID != "":
		doc, err := app.store.Load(ctx, docID)
		if err != nil {
			return nil, NewOperationError("open", docID, err)
		}
		content, stored = doc.Content, true
		if title == "" {
			title = doc.Title
		}
	default:
		docID = uuid.NewString()
	}

	s := &Session{
		id:         uuid.NewString(),
		documentID: docID,
		title:      title,
		app:        app,
	}
	s.logger = app.logger.With("session", s.id, "document", docID)
	s.doc = engine.New(
		engine.WithContent(content),
		engine.WithLogger(s.logger),
		engine.WithContextRadius(cfg.Analyzer.ContextRadius),
	)
	s.client = analyzer.NewClient(app.analyzer, s,
		analyzer.WithDebounce(cfg.Analyzer.Debounce.Duration),
		analyzer.WithRequestTimeout(cfg.Analyzer.Timeout.Duration),
		analyzer.WithClientLogger(s.logger.With("component", "analyzer")),
		analyzer.WithObserver(s.observe),
	)

	if stored {
		s.savedVersion = s.doc.Version()
	} else {
		_ = s.persist(ctx)
	}

	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		s.client.Close()
		return nil, ErrClosed
	}
	app.sessions[s.id] = s
	app.mu.Unlock()

	app.metrics.SessionOpened()
	app.logger.Info("session opened", "session", s.id, "document", docID, "characters", s.doc.Snapshot().Stats.Characters)

	s.client.Notify()
	return s, nil
}

// Session returns the open session id.
func (app *Application) Session(id string) (*Session, error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	s, ok := app.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Sessions returns the open sessions ordered by id.
func (app *Application) Sessions() []*Session {
	app.mu.RLock()
	defer app.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(app.sessions))
	out := make([]*Session, len(ids))
	for i, id := range ids {
		out[i] = app.sessions[id]
	}
	return out
}

// CloseSession stops analysis for session id and saves its content.
func (app *Application) CloseSession(ctx context.Context, id string) error {
	app.mu.Lock()
	s, ok := app.sessions[id]
	delete(app.sessions, id)
	app.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	app.metrics.SessionClosed()
	app.logger.Info("session closed", "session", id)
	return s.close(ctx)
}

// Reload applies a new configuration. The log level and debounce window
// change immediately; other settings take effect on restart.
func (app *Application) Reload(cfg *config.Config) {
	app.mu.Lock()
	app.cfg = cfg
	sessions := slices.Collect(maps.Values(app.sessions))
	app.mu.Unlock()

	app.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	for _, s := range sessions {
		s.client.SetDebounce(cfg.Analyzer.Debounce.Duration)
	}
	app.logger.Info("configuration applied",
		"log_level", cfg.Logging.Level,
		"debounce", cfg.Analyzer.Debounce.Duration,
	)
}

// Close closes every session, saving their content, then releases the
// notifier and the store. Close is idempotent.
func (app *Application) Close(ctx context.Context) error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	sessions := app.sessions
	app.sessions = make(map[string]*Session)
	app.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		app.metrics.SessionClosed()
		if err := s.close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	app.notifier.Close()
	if app.ownsStore {
		if err := app.store.Close(); err != nil {
			errs = append(errs, NewOperationError("close", "store", err))
		}
	}

	app.logger.Info("application stopped")
	return errors.Join(errs...)
}
