package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AntonTsoy/book-catalog/internal/cache"
	"github.com/AntonTsoy/book-catalog/internal/db"
	"github.com/AntonTsoy/book-catalog/pkg/config"
	"go.uber.org/zap"
)

type Infra struct {
	DB    *sql.DB
	Redis *cache.Client
}

func setupInfra(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Infra, error) {
	sqlDB, err := db.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("database ready")

	redisClient, err := cache.New(ctx, cache.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
	}, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Infra{DB: sqlDB, Redis: redisClient}, nil
}

func (i *Infra) Close() error {
	return errors.Join(i.DB.Close(), i.Redis.Close())
}
