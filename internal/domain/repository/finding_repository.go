package repository

import (
	"context"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// FindingRepository define el puerto de persistencia para hallazgos.
type FindingRepository interface {
	Create(ctx context.Context, f *entity.Finding) error
	GetByID(ctx context.Context, id string) (*entity.Finding, error)
	Update(ctx context.Context, f *entity.Finding) error
	Delete(ctx context.Context, id string) error
}
