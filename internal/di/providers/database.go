package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/openshelf/openshelf-server/internal/config"
	"github.com/openshelf/openshelf-server/internal/domain"
	"github.com/openshelf/openshelf-server/internal/logger"
	"github.com/openshelf/openshelf-server/internal/service"
	"github.com/openshelf/openshelf-server/internal/store"
	"github.com/openshelf/openshelf-server/internal/store/sqlite"
)

// CatalogStore is the full persistence surface of a storage backend:
// the genre lifecycle operations plus the book write side used by
// seeding and tests. Both backends implement it.
type CatalogStore interface {
	service.GenreStore

	CreateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error
	GetBookGenres(ctx context.Context, bookID string) ([]string, error)

	Close() error
}

// StoreHandle wraps the selected store backend with shutdown capability.
type StoreHandle struct {
	CatalogStore
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the catalog store selected by configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		db  CatalogStore
		err error
	)
	switch cfg.Store.Driver {
	case "badger":
		db, err = store.Open(cfg.Store.Path, log.Logger)
	default:
		db, err = sqlite.Open(cfg.Store.Path, log.Logger)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Store.Driver, "path", cfg.Store.Path)

	return &StoreHandle{CatalogStore: db}, nil
}
