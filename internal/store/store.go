// Package store persists documents.
//
// Three backends implement Store: an in-process map, an embedded BadgerDB
// keyspace and a SQLite database. All of them keep the same Document shape
// and the same not-found semantics so callers can switch drivers through
// configuration alone.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/wordsmith/internal/engine/buffer"
)

// Errors returned by stores.
var (
	// ErrNotFound indicates no document exists with the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID indicates an empty document id.
	ErrInvalidID = errors.New("invalid document id")

	// ErrClosed indicates the store was closed.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownDriver indicates an unsupported storage driver.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// DefaultTitle is the title of documents saved without one.
const DefaultTitle = "Untitled Document"

// Driver names.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Document is a stored document.
type Document struct {
	ID        string       `json:"id" msgpack:"id"`
	Title     string       `json:"title" msgpack:"title"`
	Content   string       `json:"content" msgpack:"content"`
	Stats     buffer.Stats `json:"stats" msgpack:"stats"`
	CreatedAt time.Time    `json:"createdAt" msgpack:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" msgpack:"updated_at"`
}

// normalized returns d with its timestamps in UTC.
func (d Document) normalized() Document {
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d
}

// Store saves and loads documents by id.
// Implementations are safe for concurrent use.
type Store interface {
	// Save creates or replaces the content of document id.
	Save(ctx context.Context, id, content string, opts ...SaveOption) (Document, error)
	// Load returns document id, or ErrNotFound.
	Load(ctx context.Context, id string) (Document, error)
	// Delete removes document id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns all documents, most recently updated first.
	List(ctx context.Context) ([]Document, error)
	// Close releases the store's resources.
	Close() error
}

// SaveOption configures a Save.
type SaveOption func(*saveOptions)

type saveOptions struct {
	title string
}

// WithTitle sets the document title. Without it an existing title is kept
// and new documents get DefaultTitle.
func WithTitle(title string) SaveOption {
	return func(o *saveOptions) {
		o.title = title
	}
}

// Config selects and configures a backend.
type Config struct {
	// Driver is one of DriverMemory, DriverBadger or DriverSQLite.
	Driver string
	// Path is the badger directory or SQLite file.
	// Empty keeps the data in memory.
	Path string
	// Logger receives backend diagnostics.
	Logger *slog.Logger
}

// Open opens the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverBadger:
		return OpenBadger(BadgerConfig{Path: cfg.Path, InMemory: cfg.Path == "", SyncWrites: cfg.Path != "", Logger: cfg.Logger})
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("open store %q: %w", cfg.Driver, ErrUnknownDriver)
	}
}

// revise applies a save to prev, the stored document or nil.
func revise(prev *Document, id, content string, opts []SaveOption, now time.Time) Document {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}

	doc := Document{
		ID:        id,
		Title:     o.title,
		Content:   content,
		Stats:     buffer.ComputeStats(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		doc.CreatedAt = prev.CreatedAt
		if doc.Title == "" {
			doc.Title = prev.Title
		}
	}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}
	return doc
}

func checkID(op, id string) error {
	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidID)
	}
	return nil
}
