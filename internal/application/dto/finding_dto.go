package dto

import (
	"time"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// FindingPayload salida de un hallazgo.
type FindingPayload struct {
	ID           string     `json:"id"`
	CompanyID    int64      `json:"empresa_id"`
	OwnerUserID  int64      `json:"usuario_id"`
	Zone         string     `json:"zona"`
	State        string     `json:"estado"`
	ClosedBy     *int64     `json:"cerrado_por,omitempty"`
	Project      string     `json:"proyecto"`
	Evaluator    string     `json:"evaluador"`
	Department   string     `json:"departamento,omitempty"`
	Activity     string     `json:"actividad,omitempty"`
	Result       string     `json:"resultado,omitempty"`
	Observations string     `json:"observaciones,omitempty"`
	CloseComment string     `json:"comentario_cierre,omitempty"`
	ReopenReason string     `json:"motivo_reapertura,omitempty"`
	InspectedAt  *time.Time `json:"fecha_inspeccion,omitempty"`
	CreatedAt    *time.Time `json:"fecha_creacion,omitempty"`
	UpdatedAt    *time.Time `json:"fecha_actualizacion,omitempty"`
}

// FindingFromEntity convierte la entidad al formato JSON.
func FindingFromEntity(f *entity.Finding) *FindingPayload {
	if f == nil {
		return nil
	}
	return &FindingPayload{
		ID:           f.ID,
		CompanyID:    f.CompanyID,
		OwnerUserID:  f.OwnerUserID,
		Zone:         f.Zone,
		State:        string(f.State),
		ClosedBy:     f.ClosedByUserID,
		Project:      f.Project,
		Evaluator:    f.Evaluator,
		Department:   f.Department,
		Activity:     f.Activity,
		Result:       f.Result,
		Observations: f.Observations,
		CloseComment: f.CloseComment,
		ReopenReason: f.ReopenReason,
		InspectedAt:  timePtr(f.InspectedAt),
		CreatedAt:    timePtr(f.CreatedAt),
		UpdatedAt:    timePtr(f.UpdatedAt),
	}
}

// ToEntity convierte el payload a entidad.
func (p *FindingPayload) ToEntity() *entity.Finding {
	if p == nil {
		return nil
	}
	f := &entity.Finding{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		OwnerUserID:    p.OwnerUserID,
		Zone:           p.Zone,
		State:          entity.FindingState(p.State),
		ClosedByUserID: p.ClosedBy,
		Project:        p.Project,
		Evaluator:      p.Evaluator,
		Department:     p.Department,
		Activity:       p.Activity,
		Result:         p.Result,
		Observations:   p.Observations,
		CloseComment:   p.CloseComment,
		ReopenReason:   p.ReopenReason,
	}
	if p.InspectedAt != nil {
		f.InspectedAt = *p.InspectedAt
	}
	if p.CreatedAt != nil {
		f.CreatedAt = *p.CreatedAt
	}
	if p.UpdatedAt != nil {
		f.UpdatedAt = *p.UpdatedAt
	}
	return f
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// CreateFindingRequest entrada para crear un hallazgo. Proyecto y evaluador son obligatorios.
type CreateFindingRequest struct {
	Project      string     `json:"proyecto"`
	Evaluator    string     `json:"evaluador"`
	Zone         string     `json:"zona"`
	Department   string     `json:"departamento,omitempty"`
	Activity     string     `json:"actividad,omitempty"`
	Result       string     `json:"resultado,omitempty"`
	Observations string     `json:"observaciones,omitempty"`
	InspectedAt  *time.Time `json:"fecha_inspeccion,omitempty"`
}

// UpdateFindingRequest campos opcionales; nil = sin cambio.
type UpdateFindingRequest struct {
	Project      *string `json:"proyecto,omitempty"`
	Evaluator    *string `json:"evaluador,omitempty"`
	Zone         *string `json:"zona,omitempty"`
	Department   *string `json:"departamento,omitempty"`
	Activity     *string `json:"actividad,omitempty"`
	Result       *string `json:"resultado,omitempty"`
	Observations *string `json:"observaciones,omitempty"`
	State        *string `json:"estado,omitempty"`
}

// CloseFindingRequest comentario obligatorio de cierre.
type CloseFindingRequest struct {
	Comment string `json:"comentario_cierre"`
}

// ReopenFindingRequest motivo obligatorio de reapertura.
type ReopenFindingRequest struct {
	Reason string `json:"motivo_reapertura"`
}

// CloseAllFindingsRequest cierre en bloque con un único comentario.
type CloseAllFindingsRequest struct {
	IDs     []string `json:"ids"`
	Comment string   `json:"comentario_cierre"`
}

// CloseAllFindingsResponse hallazgos cerrados por un cierre en bloque.
type CloseAllFindingsResponse struct {
	Closed   int               `json:"cerrados"`
	Findings []*FindingPayload `json:"hallazgos"`
}
