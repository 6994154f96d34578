package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

var _ repository.FindingRepository = (*FindingRepo)(nil)

const findingColumns = `id, empresa_id, usuario_id, zona, estado, cerrado_por, proyecto, evaluador,
	departamento, actividad, resultado, observaciones, comentario_cierre, motivo_reapertura,
	fecha_inspeccion, fecha_creacion, fecha_actualizacion`

// FindingRepo implementación del puerto FindingRepository sobre PostgreSQL.
type FindingRepo struct {
	q Querier
}

// NewFindingRepository construye el adaptador de persistencia para hallazgos.
func NewFindingRepository(q Querier) *FindingRepo {
	return &FindingRepo{q: q}
}

// Create persiste un hallazgo nuevo.
func (r *FindingRepo) Create(ctx context.Context, f *entity.Finding) error {
	const query = `INSERT INTO hallazgos (` + findingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.CompanyID, f.OwnerUserID, f.Zone, f.State, f.ClosedByUserID, f.Project, f.Evaluator,
		f.Department, f.Activity, f.Result, f.Observations, f.CloseComment, f.ReopenReason,
		nullTime(f.InspectedAt), f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert finding: %w", err)
	}
	return nil
}

// GetByID obtiene un hallazgo por ID.
func (r *FindingRepo) GetByID(ctx context.Context, id string) (*entity.Finding, error) {
	var (
		f         entity.Finding
		inspected *time.Time
	)
	err := r.q.QueryRow(ctx, `SELECT `+findingColumns+` FROM hallazgos WHERE id = $1`, id).Scan(
		&f.ID, &f.CompanyID, &f.OwnerUserID, &f.Zone, &f.State, &f.ClosedByUserID, &f.Project, &f.Evaluator,
		&f.Department, &f.Activity, &f.Result, &f.Observations, &f.CloseComment, &f.ReopenReason,
		&inspected, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get finding: %w", err)
	}
	if inspected != nil {
		f.InspectedAt = *inspected
	}
	return &f, nil
}

// Update reemplaza los campos mutables del hallazgo.
func (r *FindingRepo) Update(ctx context.Context, f *entity.Finding) error {
	const query = `
		UPDATE hallazgos SET zona = $2, estado = $3, cerrado_por = $4, proyecto = $5, evaluador = $6,
		       departamento = $7, actividad = $8, resultado = $9, observaciones = $10,
		       comentario_cierre = $11, motivo_reapertura = $12, fecha_inspeccion = $13,
		       fecha_actualizacion = $14
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		f.ID, f.Zone, f.State, f.ClosedByUserID, f.Project, f.Evaluator,
		f.Department, f.Activity, f.Result, f.Observations,
		f.CloseComment, f.ReopenReason, nullTime(f.InspectedAt), f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update finding: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un hallazgo.
func (r *FindingRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM hallazgos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete finding: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Upsert inserta el hallazgo si su ID aún no existe.
func (r *FindingRepo) Upsert(ctx context.Context, f *entity.Finding) error {
	const query = `INSERT INTO hallazgos (` + findingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.CompanyID, f.OwnerUserID, f.Zone, f.State, f.ClosedByUserID, f.Project, f.Evaluator,
		f.Department, f.Activity, f.Result, f.Observations, f.CloseComment, f.ReopenReason,
		nullTime(f.InspectedAt), f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert finding %s: %w", f.ID, err)
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
