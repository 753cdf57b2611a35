package db

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"coursemarket/internal/config"
	"coursemarket/internal/repository"
	"coursemarket/internal/repository/mongostore"
)

const mongoConnectTimeout = 10 * time.Second

// Open connects the backend named by cfg.StoreDriver and prepares its schema.
// With cfg.ResetDB the MySQL tables are dropped first.
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*repository.Store, error) {
	if cfg.StoreDriver == config.StoreMongo {
		connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
		defer cancel()
		ms, err := mongostore.NewStore(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return ms.Repositories(), nil
	}

	gormDB, err := NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := Reset(gormDB); err != nil {
			return nil, err
		}
	}
	if err := Migrate(gormDB); err != nil {
		return nil, err
	}
	log.Info("mysql store ready")
	return repository.NewGormStore(gormDB), nil
}
