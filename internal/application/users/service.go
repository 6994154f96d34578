// Package users aplica la compuerta de autorización y las validaciones locales a la gestión
// de usuarios y al perfil propio.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/authz"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 6

// Service operaciones protegidas de usuarios.
type Service struct {
	store   *session.Store
	gateway ports.UsersGateway
	log     zerolog.Logger
}

// NewService construye el servicio.
func NewService(store *session.Store, gateway ports.UsersGateway, log zerolog.Logger) *Service {
	return &Service{store: store, gateway: gateway, log: log.With().Str("component", "users").Logger()}
}

func (s *Service) actor(ctx context.Context) (*entity.User, error) {
	sess := s.store.Load(ctx)
	if !sess.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return sess.User, nil
}

func (s *Service) deny(u *entity.User, op string, target int64) error {
	s.log.Warn().Int64("user_id", u.ID).Str("rol", string(u.Role)).Str("operacion", op).Int64("objetivo", target).
		Msg("operación denegada")
	return fmt.Errorf("%w: %s", domain.ErrForbidden, op)
}

// validateRole rol conocido y distinto de super_admin. Vacío se trata como usuario.
func validateRole(raw string) (entity.Role, error) {
	if raw == "" {
		return entity.RoleUsuario, nil
	}
	role, ok := entity.ParseRole(raw)
	if !ok {
		return "", fmt.Errorf("%w: rol %q desconocido", domain.ErrValidation, raw)
	}
	if role == entity.RoleSuperAdmin {
		return "", fmt.Errorf("%w: no se puede asignar rol Super Admin desde la interfaz", domain.ErrValidation)
	}
	return role, nil
}

// Create crea un usuario en la empresa del administrador.
func (s *Service) Create(ctx context.Context, in dto.CreateUserRequest) (*entity.User, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreateUser(u) {
		return nil, s.deny(u, "crear usuario", 0)
	}
	role, err := validateRole(in.Role)
	if err != nil {
		return nil, err
	}
	in.Role = string(role)
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: todos los campos obligatorios deben ser completados", domain.ErrValidation)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, MinPasswordLength)
	}
	created, err := s.gateway.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", created.ID).Str("rol", string(created.Role)).Msg("usuario creado")
	return created, nil
}

// Get trae el usuario id del backend. Solo administradores; un usuario de otra empresa no
// existe para el actor.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return s.target(ctx, u, id, "ver usuario")
}

// target carga el usuario real sobre el que se va a operar; las reglas de autorización se
// evalúan contra lo que devuelve el backend, nunca contra datos armados por el llamador.
func (s *Service) target(ctx context.Context, u *entity.User, id int64, op string) (*entity.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID de usuario requerido", domain.ErrValidation)
	}
	if !authz.CanManageUsers(u) {
		return nil, s.deny(u, op, id)
	}
	t, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CompanyID != u.CompanyID {
		return nil, domain.ErrUserNotFound
	}
	return t, nil
}

// Update actualiza el usuario id. Password vacío conserva la actual.
func (s *Service) Update(ctx context.Context, id int64, in dto.UpdateUserRequest) (*entity.User, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if in.Role != "" {
		if _, err := validateRole(in.Role); err != nil {
			return nil, err
		}
	}
	in.Name = strings.TrimSpace(in.Name)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.LastName == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: nombre, apellido y correo son obligatorios", domain.ErrValidation)
	}
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, MinPasswordLength)
	}
	target, err := s.target(ctx, u, id, "editar usuario")
	if err != nil {
		return nil, err
	}
	if !authz.CanEditUser(u, target) {
		return nil, s.deny(u, "editar usuario", id)
	}
	out, err := s.gateway.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", id).Int64("actor_id", u.ID).Msg("usuario actualizado")
	return out, nil
}

// Delete desactiva el usuario id. Nunca a sí mismo ni a un super_admin.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.actor(ctx)
	if err != nil {
		return err
	}
	target, err := s.target(ctx, u, id, "eliminar usuario")
	if err != nil {
		return err
	}
	if !authz.CanDeleteUser(u, target) {
		return s.deny(u, "eliminar usuario", id)
	}
	if err := s.gateway.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", id).Int64("actor_id", u.ID).Msg("usuario desactivado")
	return nil
}

// SetActive activa o desactiva el usuario id con la regla de edición. Nadie se desactiva a
// sí mismo.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*entity.User, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.target(ctx, u, id, "cambiar estado de usuario")
	if err != nil {
		return nil, err
	}
	if !authz.CanEditUser(u, target) {
		return nil, s.deny(u, "cambiar estado de usuario", id)
	}
	if !active && target.ID == u.ID {
		return nil, fmt.Errorf("%w: no puede desactivarse a sí mismo", domain.ErrValidation)
	}
	out, err := s.gateway.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", id).Int64("actor_id", u.ID).Bool("activo", active).Msg("estado de usuario cambiado")
	return out, nil
}

// ChangePassword cambia la contraseña propia. Ambas son obligatorias y la nueva debe tener
// al menos MinPasswordLength caracteres; si la actual no coincide devuelve domain.ErrWrongPassword.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	u, err := s.actor(ctx)
	if err != nil {
		return err
	}
	if !authz.CanUpdateProfile(u) {
		return s.deny(u, "cambiar contraseña", u.ID)
	}
	if current == "" || next == "" {
		return fmt.Errorf("%w: contraseña actual y nueva son requeridas", domain.ErrValidation)
	}
	if len(next) < MinPasswordLength {
		return fmt.Errorf("%w: la nueva contraseña debe tener al menos %d caracteres", domain.ErrValidation, MinPasswordLength)
	}
	if err := s.gateway.ChangePassword(ctx, current, next); err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			s.log.Warn().Int64("user_id", u.ID).Msg("contraseña actual incorrecta")
		}
		return err
	}
	s.log.Info().Int64("user_id", u.ID).Msg("contraseña cambiada")
	return nil
}

// UpdateProfile actualiza los datos propios y guarda el usuario resultante en la sesión.
func (s *Service) UpdateProfile(ctx context.Context, in dto.UpdateProfileRequest) (*entity.User, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.CanUpdateProfile(u) {
		return nil, s.deny(u, "actualizar perfil", u.ID)
	}
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrValidation, MinPasswordLength)
	}
	updated, err := s.gateway.UpdateProfile(ctx, in)
	if err != nil {
		return nil, err
	}
	merged := mergeProfile(u, updated)
	if !s.store.UpdateUser(ctx, merged) {
		s.log.Warn().Int64("user_id", u.ID).Msg("perfil actualizado pero la sesión no se pudo persistir")
	}
	s.log.Info().Int64("user_id", u.ID).Msg("perfil actualizado")
	return merged, nil
}

// mergeProfile superpone sobre el usuario de la sesión los campos que devolvió el backend.
func mergeProfile(current, updated *entity.User) *entity.User {
	out := current.Clone()
	if updated == nil {
		return out
	}
	if updated.Name != "" {
		out.Name = updated.Name
	}
	if updated.LastName != "" {
		out.LastName = updated.LastName
	}
	if updated.Email != "" {
		out.Email = updated.Email
	}
	if updated.Zone != "" {
		out.Zone = updated.Zone
	}
	if updated.Role.Valid() {
		out.Role = updated.Role
		out.CanEdit = updated.CanEdit
	}
	return out
}
