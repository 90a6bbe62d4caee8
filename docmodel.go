package docmodel

import (
	"context"
	"fmt"

	"github.com/sanskrit-coders/docmodel/pkg/config"
	"github.com/sanskrit-coders/docmodel/pkg/logger"
	"github.com/sanskrit-coders/docmodel/pkg/models"
	"github.com/sanskrit-coders/docmodel/pkg/registry"
	"github.com/sanskrit-coders/docmodel/pkg/store"
	"github.com/sanskrit-coders/docmodel/pkg/store/memory"
	"github.com/sanskrit-coders/docmodel/pkg/store/postgres"
	"github.com/sanskrit-coders/docmodel/pkg/user"
)

// DB is a store opened from a Config together with the logger and the type
// registry its documents are decoded with.
type DB struct {
	store store.Store
	close func() error
	log   *logger.LogData
	reg   *registry.Registry
}

// Open validates cfg, opens its backend and creates the indexes of every
// registered type. The models package logs through the configured logger
// until the DB is closed.
func Open(ctx context.Context, cfg *config.Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := cfg.Logger()
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	db := &DB{log: l, reg: registry.Default}
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := postgres.New(ctx, cfg.PostgresDSN,
			postgres.WithTable(cfg.PostgresTable),
			postgres.WithFrontendName(cfg.FrontendName),
			postgres.WithExternalFileStore(cfg.ExternalFileStore),
		)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			l.Close()
			return nil, fmt.Errorf("migrating %s: %w", cfg.PostgresTable, err)
		}
		db.store, db.close = pg, pg.Close
	default:
		db.store = memory.New(
			memory.WithFrontendName(cfg.FrontendName),
			memory.WithExternalFileStore(cfg.ExternalFileStore),
		)
		db.close = func() error { return nil }
	}

	if err := db.addIndexes(ctx); err != nil {
		db.Close()
		return nil, err
	}
	models.SetLogger(l)
	l.Debug("store opened", "backend", cfg.Backend, "frontend", cfg.FrontendName)
	return db, nil
}

func (db *DB) addIndexes(ctx context.Context) error {
	for _, name := range db.reg.Names() {
		entry, err := db.reg.Resolve(name)
		if err != nil {
			return err
		}
		doc, ok := entry.New().(models.Document)
		if !ok {
			continue
		}
		if err := models.AddIndexes(ctx, db.store, doc); err != nil {
			return fmt.Errorf("indexing %s: %w", name, err)
		}
	}
	return nil
}

// Close releases the backend and the log file.
func (db *DB) Close() error {
	models.SetLogger(logger.Nop())
	err := db.close()
	if cerr := db.log.Close(); err == nil {
		err = cerr
	}
	return err
}

func (db *DB) Store() store.Store {
	return db.store
}

func (db *DB) Logger() *logger.LogData {
	return db.log
}

func (db *DB) options() []models.Option {
	return []models.Option{models.WithRegistry(db.reg)}
}

// Put validates and stores doc on behalf of actor, nil for a trusted
// backend, and returns the stored document.
func (db *DB) Put(ctx context.Context, doc models.Document, actor user.User) (models.Document, error) {
	stored, err := models.Persist(ctx, doc, db.store, actor, db.options()...)
	if err != nil {
		db.log.Warn("rejected document", "type", doc.TypeTag(), "error", err.Error())
		return nil, err
	}
	return stored, nil
}

// Get returns the stored document with identifier id, or nil.
func (db *DB) Get(ctx context.Context, id string) (models.Document, error) {
	return models.FromID(ctx, id, db.store, db.options()...)
}

// Find returns every stored document matching filter.
func (db *DB) Find(ctx context.Context, filter map[string]any) ([]models.Document, error) {
	rows, err := store.Collect(db.store.Find(ctx, filter))
	if err != nil {
		return nil, err
	}
	return models.FromMaps(rows, db.options()...)
}

// Delete removes the stored document with identifier id when actor may
// delete it. Deleting an absent document is not an error.
func (db *DB) Delete(ctx context.Context, id string, actor user.User) error {
	doc, err := db.Get(ctx, id)
	if err != nil || doc == nil {
		return err
	}
	return models.DeleteIfSafe(ctx, doc, db.store, actor, db.options()...)
}
