package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/authz"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

// MinPasswordLength longitud mínima de contraseña en el backend.
const MinPasswordLength = 6

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo       repository.UserRepository
	companies  repository.CompanyRepository
	bcryptCost int
	log        zerolog.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, companies repository.CompanyRepository, bcryptCost int, log zerolog.Logger) *UserUseCase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserUseCase{repo: repo, companies: companies, bcryptCost: bcryptCost, log: log}
}

// actor carga el usuario autenticado. Un usuario inexistente o inactivo no opera.
func actor(ctx context.Context, repo repository.UserRepository, id int64) (*entity.User, error) {
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, domain.ErrUnauthorized
	}
	return u, nil
}

// target carga un usuario de la misma empresa que el actor; los de otras empresas no existen
// para él.
func (uc *UserUseCase) target(ctx context.Context, actor *entity.User, id int64) (*entity.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.CompanyID != actor.CompanyID {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func parseAssignableRole(raw string) (entity.Role, error) {
	if raw == "" {
		return entity.RoleUsuario, nil
	}
	role, ok := entity.ParseRole(raw)
	if !ok {
		return "", fmt.Errorf("%w: rol %q desconocido", domain.ErrValidation, raw)
	}
	if role == entity.RoleSuperAdmin {
		return "", fmt.Errorf("%w: no se puede asignar rol Super Admin", domain.ErrValidation)
	}
	return role, nil
}

func (uc *UserUseCase) hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, MinPasswordLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (uc *UserUseCase) payload(ctx context.Context, u *entity.User) (*dto.UserPayload, error) {
	company, err := uc.companies.GetByID(ctx, u.CompanyID)
	if err != nil {
		return nil, err
	}
	return dto.UserFromEntity(u, company), nil
}

// Get devuelve un usuario de la empresa del actor. Solo administradores.
func (uc *UserUseCase) Get(ctx context.Context, actorID, id int64) (*dto.UserPayload, error) {
	a, err := actor(ctx, uc.repo, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageUsers(a) {
		return nil, domain.ErrForbidden
	}
	u, err := uc.target(ctx, a, id)
	if err != nil {
		return nil, err
	}
	return uc.payload(ctx, u)
}

// Create crea un usuario en la empresa del actor.
func (uc *UserUseCase) Create(ctx context.Context, actorID int64, in dto.CreateUserRequest) (*dto.UserPayload, error) {
	a, err := actor(ctx, uc.repo, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreateUser(a) {
		return nil, domain.ErrForbidden
	}
	role, err := parseAssignableRole(in.Role)
	if err != nil {
		return nil, err
	}
	name, lastName, email := strings.TrimSpace(in.Name), strings.TrimSpace(in.LastName), strings.TrimSpace(in.Email)
	if name == "" || lastName == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: nombre, apellido, correo y contraseña son obligatorios", domain.ErrValidation)
	}
	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		CompanyID:    a.CompanyID,
		Name:         name,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CanEdit:      in.CanEdit,
		Zone:         strings.TrimSpace(in.Zone),
		Active:       true,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", u.ID).Int64("actor_id", a.ID).Str("rol", string(role)).Msg("usuario creado")
	return uc.payload(ctx, u)
}

// Update reemplaza los datos del usuario id. Password vacío conserva la actual.
func (uc *UserUseCase) Update(ctx context.Context, actorID, id int64, in dto.UpdateUserRequest) (*dto.UserPayload, error) {
	a, err := actor(ctx, uc.repo, actorID)
	if err != nil {
		return nil, err
	}
	u, err := uc.target(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditUser(a, u) {
		return nil, domain.ErrForbidden
	}
	name, lastName, email := strings.TrimSpace(in.Name), strings.TrimSpace(in.LastName), strings.TrimSpace(in.Email)
	if name == "" || lastName == "" || email == "" {
		return nil, fmt.Errorf("%w: nombre, apellido y correo son obligatorios", domain.ErrValidation)
	}
	if in.Role != "" {
		role, err := parseAssignableRole(in.Role)
		if err != nil {
			return nil, err
		}
		u.Role = role
	}
	if in.Password != "" {
		if u.PasswordHash, err = uc.hash(in.Password); err != nil {
			return nil, err
		}
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	u.Name, u.LastName, u.Email = name, lastName, email
	u.CanEdit = in.CanEdit
	u.Zone = strings.TrimSpace(in.Zone)
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", u.ID).Int64("actor_id", a.ID).Msg("usuario actualizado")
	return uc.payload(ctx, u)
}

// Delete desactiva el usuario id (los hallazgos conservan su dueño).
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id int64) error {
	a, err := actor(ctx, uc.repo, actorID)
	if err != nil {
		return err
	}
	u, err := uc.target(ctx, a, id)
	if err != nil {
		return err
	}
	if !authz.CanDeleteUser(a, u) {
		return domain.ErrForbidden
	}
	u.Active = false
	if err := uc.repo.Update(ctx, u); err != nil {
		return err
	}
	uc.log.Info().Int64("user_id", u.ID).Int64("actor_id", a.ID).Msg("usuario desactivado")
	return nil
}

// SetActive activa o desactiva el usuario id. Nadie se desactiva a sí mismo.
func (uc *UserUseCase) SetActive(ctx context.Context, actorID, id int64, active bool) (*dto.UserPayload, error) {
	a, err := actor(ctx, uc.repo, actorID)
	if err != nil {
		return nil, err
	}
	u, err := uc.target(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditUser(a, u) {
		return nil, domain.ErrForbidden
	}
	if !active && u.ID == a.ID {
		return nil, fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrValidation)
	}
	u.Active = active
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", u.ID).Int64("actor_id", a.ID).Bool("activo", active).Msg("estado de usuario cambiado")
	return uc.payload(ctx, u)
}

// UpdateProfile cambia los datos propios. Rol, zona y permisos no se tocan.
// Con CurrentPassword se exige que coincida (ErrWrongPassword si no).
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID int64, in dto.UpdateProfileRequest) (*dto.UserPayload, error) {
	u, err := actor(ctx, uc.repo, userID)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		u.Name = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		u.LastName = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		u.Email = v
	}
	if in.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			uc.log.Warn().Int64("user_id", u.ID).Msg("contraseña actual incorrecta")
			return nil, domain.ErrWrongPassword
		}
	}
	if in.Password != "" {
		if u.PasswordHash, err = uc.hash(in.Password); err != nil {
			return nil, err
		}
	}
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", u.ID).Msg("perfil actualizado")
	return uc.payload(ctx, u)
}
