package bootstrap

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/config"
	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
)

// Documents is an opened document store plus what the health check and
// shutdown need from it.
type Documents struct {
	Store repository.DocumentStore
	// Pinger is nil for stores without a remote backend.
	Pinger httpapi.Pinger
	Close  func()
}

// OpenFirebase initializes the Firebase app when either the identity
// provider or the document store needs it, and returns nil otherwise.
func OpenFirebase(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if cfg.Firebase.AuthDriver != config.AuthFirebase && cfg.Store.Driver != config.StoreFirestore {
		return nil, nil
	}
	return identity.InitializeFirebase(ctx, &cfg.Firebase)
}

func OpenProvider(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) (identity.Provider, error) {
	switch cfg.Firebase.AuthDriver {
	case config.AuthFirebase:
		if app == nil {
			return nil, fmt.Errorf("firebase app is not initialized")
		}
		return identity.NewFirebaseProvider(ctx, app)
	case config.AuthMemory:
		logger.Warn("using in-memory identity provider; accounts are lost on restart")
		return identity.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown auth driver %q", cfg.Firebase.AuthDriver)
	}
}

func OpenDocuments(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) (*Documents, error) {
	switch cfg.Store.Driver {
	case config.StoreFirestore:
		if app == nil {
			return nil, fmt.Errorf("firebase app is not initialized")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Firestore client: %w", err)
		}
		store := repository.NewFirestoreStore(client)
		return &Documents{
			Store:  store,
			Pinger: store,
			Close: func() {
				if err := store.Close(); err != nil {
					logger.Warn("firestore close failed", zap.Error(err))
				}
			},
		}, nil

	case config.StorePostgres:
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      cfg.Database.DSN,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return nil, err
		}
		store := repository.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &Documents{Store: store, Pinger: store, Close: pool.Close}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory document store; profiles are lost on restart")
		return &Documents{Store: repository.NewMemoryStore(), Close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
