package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/partify/internal/config"
	"github.com/Skotchmaster/partify/internal/db"
	"github.com/Skotchmaster/partify/internal/mongodb"
	"github.com/Skotchmaster/partify/internal/repo"
	"github.com/Skotchmaster/partify/internal/service"
)

// Store is the persistence surface shared by the gorm and mongo backends.
type Store interface {
	service.ProductRepo
	service.OrderRepo
	service.UserRepo
	Ping(ctx context.Context) error
}

var (
	_ Store = (*repo.GormRepo)(nil)
	_ Store = (*repo.MongoRepo)(nil)
)

// Open connects the backend selected by cfg.StoreDriver and prepares its
// schema. The returned close func releases the connection.
func Open(ctx context.Context, cfg config.Config) (Store, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres, config.DriverSQLite:
		gdb, err := openGorm(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
		return &repo.GormRepo{DB: gdb}, func(context.Context) error { return db.Close(gdb) }, nil

	case config.DriverMongo:
		m, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			_ = m.Disconnect(context.Background())
			return nil, nil, err
		}
		return &repo.MongoRepo{DB: m}, m.Disconnect, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openGorm(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		return db.OpenSQLite(cfg.DatabaseURL)
	}
	return db.Open(ctx, cfg.DatabaseURL)
}
