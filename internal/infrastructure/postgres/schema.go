package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS empresas (
	id     BIGSERIAL PRIMARY KEY,
	nombre TEXT      NOT NULL,
	nit    TEXT      NOT NULL DEFAULT '',
	activa BOOLEAN   NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS usuarios (
	id            BIGSERIAL PRIMARY KEY,
	empresa_id    BIGINT    NOT NULL REFERENCES empresas(id),
	nombre        TEXT      NOT NULL,
	apellido      TEXT      NOT NULL DEFAULT '',
	correo        TEXT      NOT NULL,
	password_hash TEXT      NOT NULL,
	rol           TEXT      NOT NULL,
	puede_editar  BOOLEAN   NOT NULL DEFAULT false,
	zona          TEXT      NOT NULL DEFAULT '',
	activo        BOOLEAN   NOT NULL DEFAULT true,
	UNIQUE (empresa_id, correo)
);

CREATE TABLE IF NOT EXISTS hallazgos (
	id                  TEXT        PRIMARY KEY,
	empresa_id          BIGINT      NOT NULL REFERENCES empresas(id),
	usuario_id          BIGINT      NOT NULL,
	zona                TEXT        NOT NULL DEFAULT '',
	estado              TEXT        NOT NULL,
	cerrado_por         BIGINT,
	proyecto            TEXT        NOT NULL,
	evaluador           TEXT        NOT NULL,
	departamento        TEXT        NOT NULL DEFAULT '',
	actividad           TEXT        NOT NULL DEFAULT '',
	resultado           TEXT        NOT NULL DEFAULT '',
	observaciones       TEXT        NOT NULL DEFAULT '',
	comentario_cierre   TEXT        NOT NULL DEFAULT '',
	motivo_reapertura   TEXT        NOT NULL DEFAULT '',
	fecha_inspeccion    TIMESTAMPTZ,
	fecha_creacion      TIMESTAMPTZ NOT NULL DEFAULT now(),
	fecha_actualizacion TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureSchema crea las tablas del backend de desarrollo si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("crear esquema: %w", err)
	}
	log.Info().Str("dsn", redactDSN(pool.Config().ConnString())).Msg("esquema verificado")
	return nil
}
