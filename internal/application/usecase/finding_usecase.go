package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/authz"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

// MinCommentLength mínimo de caracteres del comentario de cierre y del motivo de reapertura.
const MinCommentLength = 10

// FindingUseCase ciclo de vida de hallazgos con la misma matriz de permisos que el cliente.
type FindingUseCase struct {
	repo  repository.FindingRepository
	users repository.UserRepository
	now   func() time.Time
	log   zerolog.Logger
}

// NewFindingUseCase construye el caso de uso.
func NewFindingUseCase(repo repository.FindingRepository, users repository.UserRepository, log zerolog.Logger) *FindingUseCase {
	return &FindingUseCase{repo: repo, users: users, now: time.Now, log: log}
}

// load busca el hallazgo dentro de la empresa del actor.
func (uc *FindingUseCase) load(ctx context.Context, a *entity.User, id string) (*entity.Finding, error) {
	f, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil || f.CompanyID != a.CompanyID {
		return nil, domain.ErrNotFound
	}
	return f, nil
}

func trimmedComment(s, field string) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < MinCommentLength {
		return "", fmt.Errorf("%w: %s debe tener al menos %d caracteres", domain.ErrValidation, field, MinCommentLength)
	}
	return s, nil
}

// Get devuelve el hallazgo si el actor puede verlo.
func (uc *FindingUseCase) Get(ctx context.Context, actorID int64, id string) (*dto.FindingPayload, error) {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return nil, err
	}
	f, err := uc.load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(a, f) {
		return nil, domain.ErrForbidden
	}
	return dto.FindingFromEntity(f), nil
}

// Create registra un hallazgo pendiente a nombre del actor.
func (uc *FindingUseCase) Create(ctx context.Context, actorID int64, in dto.CreateFindingRequest) (*dto.FindingPayload, error) {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreate(a) {
		return nil, domain.ErrForbidden
	}
	project, evaluator := strings.TrimSpace(in.Project), strings.TrimSpace(in.Evaluator)
	if project == "" || evaluator == "" {
		return nil, fmt.Errorf("%w: proyecto y evaluador son campos obligatorios", domain.ErrValidation)
	}
	now := uc.now()
	f := &entity.Finding{
		ID:           uuid.New().String(),
		CompanyID:    a.CompanyID,
		OwnerUserID:  a.ID,
		Zone:         strings.TrimSpace(in.Zone),
		State:        entity.FindingPending,
		Project:      project,
		Evaluator:    evaluator,
		Department:   in.Department,
		Activity:     in.Activity,
		Result:       in.Result,
		Observations: in.Observations,
		InspectedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.InspectedAt != nil {
		f.InspectedAt = *in.InspectedAt
	}
	if f.Zone == "" {
		f.Zone = a.Zone
	}
	if err := uc.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	uc.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", a.ID).Msg("hallazgo creado")
	return dto.FindingFromEntity(f), nil
}

// Update aplica los campos presentes. El cierre solo se hace vía Close.
func (uc *FindingUseCase) Update(ctx context.Context, actorID int64, id string, in dto.UpdateFindingRequest) (*dto.FindingPayload, error) {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return nil, err
	}
	f, err := uc.load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanEdit(a, f) {
		return nil, domain.ErrForbidden
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&f.Project, in.Project)
	set(&f.Evaluator, in.Evaluator)
	set(&f.Zone, in.Zone)
	// Un editor con zona no puede mover el hallazgo fuera de ella.
	if in.Zone != nil && !authz.CanEdit(a, f) {
		return nil, domain.ErrForbidden
	}
	set(&f.Department, in.Department)
	set(&f.Activity, in.Activity)
	set(&f.Result, in.Result)
	set(&f.Observations, in.Observations)
	if f.Project == "" || f.Evaluator == "" {
		return nil, fmt.Errorf("%w: proyecto y evaluador son campos obligatorios", domain.ErrValidation)
	}
	if in.State != nil {
		switch st := entity.FindingState(*in.State); st {
		case entity.FindingPending, entity.FindingInProgress:
			if f.IsClosed() {
				return nil, fmt.Errorf("%w: use reabrir para un hallazgo cerrado", domain.ErrValidation)
			}
			f.State = st
		default:
			return nil, fmt.Errorf("%w: estado %q no permitido", domain.ErrValidation, *in.State)
		}
	}
	f.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	uc.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", a.ID).Msg("hallazgo actualizado")
	return dto.FindingFromEntity(f), nil
}

// Close cierra el hallazgo registrando quién lo cerró y el comentario.
func (uc *FindingUseCase) Close(ctx context.Context, actorID int64, id, comment string) (*dto.FindingPayload, error) {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return nil, err
	}
	f, err := uc.load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanClose(a, f) {
		return nil, domain.ErrForbidden
	}
	if f.CloseComment, err = trimmedComment(comment, "el comentario de cierre"); err != nil {
		return nil, err
	}
	closer := a.ID
	f.State = entity.FindingClosed
	f.ClosedByUserID = &closer
	f.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	uc.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", a.ID).Msg("hallazgo cerrado")
	return dto.FindingFromEntity(f), nil
}

// CloseAll cierra todos los hallazgos ids con el mismo comentario. Si alguno no existe o el
// actor no puede cerrarlo no se cierra ninguno.
func (uc *FindingUseCase) CloseAll(ctx context.Context, actorID int64, ids []string, comment string) (*dto.CloseAllFindingsResponse, error) {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return nil, err
	}
	comment, err = trimmedComment(comment, "el comentario de cierre")
	if err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: indique al menos un hallazgo", domain.ErrValidation)
	}
	list := make([]*entity.Finding, 0, len(ids))
	for _, id := range ids {
		f, err := uc.load(ctx, a, id)
		if err != nil {
			return nil, err
		}
		if !authz.CanClose(a, f) {
			return nil, fmt.Errorf("%w: hallazgo %s", domain.ErrForbidden, id)
		}
		list = append(list, f)
	}

	now := uc.now()
	closer := a.ID
	out := &dto.CloseAllFindingsResponse{Findings: make([]*dto.FindingPayload, 0, len(list))}
	for _, f := range list {
		f.State = entity.FindingClosed
		f.ClosedByUserID = &closer
		f.CloseComment = comment
		f.UpdatedAt = now
		if err := uc.repo.Update(ctx, f); err != nil {
			return nil, err
		}
		out.Findings = append(out.Findings, dto.FindingFromEntity(f))
	}
	out.Closed = len(out.Findings)
	uc.log.Info().Int("cerrados", out.Closed).Int64("user_id", a.ID).Msg("cierre en bloque")
	return out, nil
}

// uniqueIDs recorta espacios, descarta vacíos y repetidos conservando el orden.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Reopen vuelve a pendiente un hallazgo cerrado.
func (uc *FindingUseCase) Reopen(ctx context.Context, actorID int64, id, reason string) (*dto.FindingPayload, error) {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return nil, err
	}
	f, err := uc.load(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanReopen(a, f) {
		return nil, domain.ErrForbidden
	}
	if f.ReopenReason, err = trimmedComment(reason, "el motivo de reapertura"); err != nil {
		return nil, err
	}
	f.State = entity.FindingPending
	f.ClosedByUserID = nil
	f.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	uc.log.Info().Str("hallazgo_id", f.ID).Int64("user_id", a.ID).Msg("hallazgo reabierto")
	return dto.FindingFromEntity(f), nil
}

// Delete elimina el hallazgo.
func (uc *FindingUseCase) Delete(ctx context.Context, actorID int64, id string) error {
	a, err := actor(ctx, uc.users, actorID)
	if err != nil {
		return err
	}
	if !authz.CanDelete(a) {
		return domain.ErrForbidden
	}
	if _, err := uc.load(ctx, a, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("hallazgo_id", id).Int64("user_id", a.ID).Msg("hallazgo eliminado")
	return nil
}
