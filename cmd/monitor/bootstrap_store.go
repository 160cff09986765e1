package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
	"github.com/NordCoder/uptimed/internal/domain/record"
	"github.com/NordCoder/uptimed/internal/obs"
	"github.com/NordCoder/uptimed/internal/obs/retry"
	"github.com/NordCoder/uptimed/internal/repository/filestore"
	pg "github.com/NordCoder/uptimed/internal/repository/postgres"
)

type storeHandle struct {
	record.Store
	ping  obs.HealthFunc
	close func()
}

func initStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storeHandle, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		var db *pg.DB
		err := retry.Do(ctx, func() error {
			var err error
			db, err = pg.NewDB(ctx, cfg.DB)
			return err
		}, retry.StartupPolicy("postgres", logger))
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		return &storeHandle{Store: pg.NewRecordRepo(db), ping: db.Ping, close: db.Close}, nil
	default:
		fs, err := filestore.New(cfg.Store.Dir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		return &storeHandle{Store: fs, ping: fs.Ping, close: func() {}}, nil
	}
}
