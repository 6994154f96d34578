package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

var _ repository.KeyValueStore = (*Redis)(nil)

// Redis almacenamiento compartido entre procesos. Cada proceso ve los cambios de los
// demás en su siguiente lectura; no hay notificación activa.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis envuelve un cliente existente. prefix separa las claves de varias instalaciones.
func NewRedis(rdb redis.UniversalClient, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get devuelve el valor de key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set guarda value en key sin expiración; la ventana de validez la controla el cliente.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove borra key; no falla si no existe.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close cierra el cliente.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
