// Package storage implementa los almacenamientos clave/valor donde persiste la sesión del cliente.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
	"github.com/jhoicas/lxhallazgos/pkg/config"
)

// Store almacenamiento con cierre explícito.
type Store interface {
	repository.KeyValueStore
	Close() error
}

// Open construye el backend indicado por la configuración.
func Open(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedis(rdb, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("backend de sesión desconocido: %q", cfg.Backend)
	}
}
