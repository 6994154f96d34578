package repository

import "context"

// KeyValueStore almacenamiento clave/valor donde vive la sesión persistida.
// Get devuelve ok=false cuando la clave no existe; los errores son del backend.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
