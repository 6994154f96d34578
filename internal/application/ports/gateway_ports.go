package ports

import (
	"context"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// FindingsGateway operaciones remotas sobre hallazgos (ya autorizadas por el llamador).
type FindingsGateway interface {
	Get(ctx context.Context, id string) (*entity.Finding, error)
	Create(ctx context.Context, in dto.CreateFindingRequest) (*entity.Finding, error)
	Update(ctx context.Context, id string, in dto.UpdateFindingRequest) (*entity.Finding, error)
	Close(ctx context.Context, id, comment string) (*entity.Finding, error)
	Reopen(ctx context.Context, id, reason string) (*entity.Finding, error)
	Delete(ctx context.Context, id string) error
	CloseAll(ctx context.Context, ids []string, comment string) ([]*entity.Finding, error)
}

// UsersGateway operaciones remotas de gestión de usuarios.
type UsersGateway interface {
	Get(ctx context.Context, id int64) (*entity.User, error)
	Create(ctx context.Context, in dto.CreateUserRequest) (*entity.User, error)
	Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) (*entity.User, error)
	UpdateProfile(ctx context.Context, in dto.UpdateProfileRequest) (*entity.User, error)
	ChangePassword(ctx context.Context, current, next string) error
}
