// Package findings aplica la compuerta de autorización y las validaciones locales antes de
// delegar cada operación sobre hallazgos al backend.
package findings

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/authz"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// MinCommentLength mínimo de caracteres (sin espacios en los extremos) del comentario de
// cierre y del motivo de reapertura.
const MinCommentLength = 10

// Service operaciones protegidas sobre hallazgos.
type Service struct {
	store   *session.Store
	gateway ports.FindingsGateway
	log     zerolog.Logger
}

// NewService construye el servicio.
func NewService(store *session.Store, gateway ports.FindingsGateway, log zerolog.Logger) *Service {
	return &Service{store: store, gateway: gateway, log: log.With().Str("component", "findings").Logger()}
}

// actor usuario de la sesión persistida.
func (s *Service) actor(ctx context.Context) (*entity.User, error) {
	sess := s.store.Load(ctx)
	if !sess.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}
	return sess.User, nil
}

func (s *Service) deny(u *entity.User, op, id string) error {
	s.log.Warn().Int64("user_id", u.ID).Str("rol", string(u.Role)).Str("operacion", op).Str("hallazgo_id", id).
		Msg("operación denegada")
	return fmt.Errorf("%w: %s", domain.ErrForbidden, op)
}

// Capabilities permisos del usuario de la sesión sobre f.
func (s *Service) Capabilities(ctx context.Context, f *entity.Finding) authz.FindingCapabilities {
	u, err := s.actor(ctx)
	if err != nil {
		return authz.FindingCapabilities{}
	}
	return authz.Capabilities(u, f)
}

// Get trae el hallazgo id del backend. Si el usuario no puede verlo se responde ErrForbidden
// aunque el backend lo haya devuelto.
func (s *Service) Get(ctx context.Context, id string) (*entity.Finding, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: ID del hallazgo es requerido", domain.ErrValidation)
	}
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(u, f) {
		return nil, s.deny(u, "ver", id)
	}
	return f, nil
}

// Create crea un hallazgo. Proyecto y evaluador son obligatorios.
func (s *Service) Create(ctx context.Context, in dto.CreateFindingRequest) (*entity.Finding, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreate(u) {
		return nil, s.deny(u, "crear", "")
	}
	in.Project = strings.TrimSpace(in.Project)
	in.Evaluator = strings.TrimSpace(in.Evaluator)
	if in.Project == "" || in.Evaluator == "" {
		return nil, fmt.Errorf("%w: proyecto y evaluador son campos obligatorios", domain.ErrValidation)
	}
	f, err := s.gateway.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", u.ID).Msg("hallazgo creado")
	return f, nil
}

// Update modifica los campos indicados de f. El cierre tiene su propia operación.
func (s *Service) Update(ctx context.Context, f *entity.Finding, in dto.UpdateFindingRequest) (*entity.Finding, error) {
	if f == nil || f.ID == "" {
		return nil, fmt.Errorf("%w: ID del hallazgo es requerido", domain.ErrValidation)
	}
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.CanEdit(u, f) {
		return nil, s.deny(u, "editar", f.ID)
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}
	if in.Zone != nil {
		moved := *f
		moved.Zone = strings.TrimSpace(*in.Zone)
		if !authz.CanEdit(u, &moved) {
			return nil, s.deny(u, "mover de zona", f.ID)
		}
	}
	out, err := s.gateway.Update(ctx, f.ID, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", u.ID).Msg("hallazgo actualizado")
	return out, nil
}

func validateUpdate(in dto.UpdateFindingRequest) error {
	if in.Project != nil && strings.TrimSpace(*in.Project) == "" {
		return fmt.Errorf("%w: el proyecto no puede quedar vacío", domain.ErrValidation)
	}
	if in.Evaluator != nil && strings.TrimSpace(*in.Evaluator) == "" {
		return fmt.Errorf("%w: el evaluador no puede quedar vacío", domain.ErrValidation)
	}
	if in.State != nil {
		switch entity.FindingState(*in.State) {
		case entity.FindingPending, entity.FindingInProgress:
		case entity.FindingClosed:
			return fmt.Errorf("%w: use la operación de cierre para cerrar un hallazgo", domain.ErrValidation)
		default:
			return fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, *in.State)
		}
	}
	return nil
}

// Close cierra f con un comentario de al menos MinCommentLength caracteres.
func (s *Service) Close(ctx context.Context, f *entity.Finding, comment string) (*entity.Finding, error) {
	if f == nil || f.ID == "" {
		return nil, fmt.Errorf("%w: ID del hallazgo es requerido", domain.ErrValidation)
	}
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.CanClose(u, f) {
		return nil, s.deny(u, "cerrar", f.ID)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) < MinCommentLength {
		return nil, fmt.Errorf("%w: el comentario de cierre debe tener al menos %d caracteres", domain.ErrValidation, MinCommentLength)
	}
	out, err := s.gateway.Close(ctx, f.ID, comment)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", u.ID).Msg("hallazgo cerrado")
	return out, nil
}

// CloseAll cierra en bloque los hallazgos ids con un mismo comentario. Cada hallazgo se trae
// del backend y debe poder cerrarse; si alguno falla no se envía nada.
func (s *Service) CloseAll(ctx context.Context, ids []string, comment string) ([]*entity.Finding, error) {
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) < MinCommentLength {
		return nil, fmt.Errorf("%w: el comentario de cierre debe tener al menos %d caracteres", domain.ErrValidation, MinCommentLength)
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: indique al menos un hallazgo", domain.ErrValidation)
	}
	for _, id := range ids {
		f, err := s.gateway.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !authz.CanClose(u, f) {
			return nil, s.deny(u, "cerrar", id)
		}
	}
	out, err := s.gateway.CloseAll(ctx, ids, comment)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("cerrados", len(out)).Int64("user_id", u.ID).Msg("cierre en bloque")
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; id == "" || dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Reopen reabre f con un motivo de al menos MinCommentLength caracteres.
func (s *Service) Reopen(ctx context.Context, f *entity.Finding, reason string) (*entity.Finding, error) {
	if f == nil || f.ID == "" {
		return nil, fmt.Errorf("%w: ID del hallazgo es requerido", domain.ErrValidation)
	}
	u, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if !authz.CanReopen(u, f) {
		return nil, s.deny(u, "reabrir", f.ID)
	}
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < MinCommentLength {
		return nil, fmt.Errorf("%w: el motivo de reapertura debe tener al menos %d caracteres", domain.ErrValidation, MinCommentLength)
	}
	out, err := s.gateway.Reopen(ctx, f.ID, reason)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", u.ID).Msg("hallazgo reabierto")
	return out, nil
}

// Delete elimina f. Solo administradores.
func (s *Service) Delete(ctx context.Context, f *entity.Finding) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("%w: ID del hallazgo es requerido", domain.ErrValidation)
	}
	u, err := s.actor(ctx)
	if err != nil {
		return err
	}
	if !authz.CanDelete(u) {
		return s.deny(u, "eliminar", f.ID)
	}
	if err := s.gateway.Delete(ctx, f.ID); err != nil {
		return err
	}
	s.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", u.ID).Msg("hallazgo eliminado")
	return nil
}
