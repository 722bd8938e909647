package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

var documentPrefix = []byte("document/")

// BadgerConfig holds configuration for a BadgerDB-backed store.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger is the logger for BadgerDB operations.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Badger is a Store backed by an embedded BadgerDB. Documents are encoded
// with msgpack under the "document/" key prefix.
type Badger struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadger opens a BadgerDB store.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db, now: time.Now}, nil
}

func documentKey(id string) []byte {
	return append(append([]byte(nil), documentPrefix...), id...)
}

// Save implements Store.
func (b *Badger) Save(ctx context.Context, id, content string, opts ...SaveOption) (Document, error) {
	if err := checkID("save", id); err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var doc Document
	err := b.db.Update(func(txn *badger.Txn) error {
		prev, err := getDocument(txn, id)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			prev = nil
		case err != nil:
			return err
		}

		doc = revise(prev, id, content, opts, b.now().UTC())
		data, err := msgpack.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		return txn.Set(documentKey(id), data)
	})
	if err != nil {
		return Document{}, fmt.Errorf("save %s: %w", id, mapBadgerErr(err))
	}
	return doc, nil
}

// Load implements Store.
func (b *Badger) Load(ctx context.Context, id string) (Document, error) {
	var doc *Document
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getDocument(txn, id)
		return err
	})
	if err != nil {
		return Document{}, fmt.Errorf("load %s: %w", id, mapBadgerErr(err))
	}
	return *doc, nil
}

// Delete implements Store.
func (b *Badger) Delete(ctx context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(documentKey(id)); err != nil {
			return err
		}
		return txn.Delete(documentKey(id))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, mapBadgerErr(err))
	}
	return nil
}

// List implements Store.
func (b *Badger) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = documentPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var doc Document
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &doc)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			docs = append(docs, doc.normalized())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list: %w", mapBadgerErr(err))
	}
	sortRecent(docs)
	return docs, nil
}

// Close implements Store.
func (b *Badger) Close() error {
	return b.db.Close()
}

func getDocument(txn *badger.Txn, id string) (*Document, error) {
	item, err := txn.Get(documentKey(id))
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &doc)
	}); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc = doc.normalized()
	return &doc, nil
}

func mapBadgerErr(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
