package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

// Seed carga empresas, usuarios y hallazgos iniciales en una transacción, solo si la tabla de
// empresas está vacía. Los IDs de empresa se reasignan y los usuarios y hallazgos se reapuntan.
func Seed(ctx context.Context, runner *TxRunner, companies []*entity.Company, users []*entity.User,
	findings []*entity.Finding, log zerolog.Logger) error {
	return runner.Run(ctx, func(cr *CompanyRepo, ur repository.UserRepository, fr *FindingRepo) error {
		n, err := cr.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Debug().Int("empresas", n).Msg("directorio ya poblado, se omite la semilla")
			return nil
		}

		companyIDs := make(map[int64]int64, len(companies))
		for _, c := range companies {
			cp := c.Clone()
			if err := cr.Create(ctx, cp); err != nil {
				return err
			}
			companyIDs[c.ID] = cp.ID
		}
		userIDs := make(map[int64]int64, len(users))
		for _, u := range users {
			cp := *u
			cp.CompanyID = companyIDs[u.CompanyID]
			if err := ur.Create(ctx, &cp); err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			userIDs[u.ID] = cp.ID
		}
		for _, f := range findings {
			cp := *f
			cp.CompanyID = companyIDs[f.CompanyID]
			cp.OwnerUserID = userIDs[f.OwnerUserID]
			if f.ClosedByUserID != nil {
				id := userIDs[*f.ClosedByUserID]
				cp.ClosedByUserID = &id
			}
			if err := fr.Upsert(ctx, &cp); err != nil {
				return err
			}
		}
		log.Info().Int("empresas", len(companies)).Int("usuarios", len(users)).Int("hallazgos", len(findings)).
			Msg("datos semilla cargados")
		return nil
	})
}
