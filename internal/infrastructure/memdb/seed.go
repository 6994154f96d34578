package memdb

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// SeedCompanies empresas iniciales del directorio público.
func SeedCompanies() []*entity.Company {
	return []*entity.Company{
		{ID: 1, Name: "Empresa1", TaxID: "900123456-1", Active: true},
		{ID: 2, Name: "Empresa2", TaxID: "900654321-2", Active: true},
		{ID: 3, Name: "Empresa3", TaxID: "901111222-3", Active: true},
	}
}

type seedUser struct {
	user     entity.User
	password string
}

var seedUsers = []seedUser{
	{entity.User{ID: 1, CompanyID: 1, Name: "Administrador", Email: "admin@empresa1.com",
		Role: entity.RoleAdmin, CanEdit: true, Active: true}, "1234"},
	{entity.User{ID: 2, CompanyID: 2, Name: "Editor", Email: "editor@empresa2.com",
		Role: entity.RoleEditor, CanEdit: true, Active: true}, "abcd"},
	{entity.User{ID: 3, CompanyID: 1, Name: "Paola", LastName: "Vargas", Email: "usuario@empresa1.com",
		Role: entity.RoleUsuario, Active: true}, "pass"},
	{entity.User{ID: 4, CompanyID: 1, Name: "Javier", LastName: "Gandola", Email: "usuario2@empresa1.com",
		Role: entity.RoleUsuario, Active: true}, "pass"},
}

// SeedUsers usuarios iniciales con su contraseña ya hasheada. cost suele ser bcrypt.MinCost
// para que el arranque del backend de desarrollo sea inmediato.
func SeedUsers(cost int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(seedUsers))
	for _, s := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", s.user.Email, err)
		}
		u := s.user
		u.PasswordHash = string(hash)
		out = append(out, &u)
	}
	return out, nil
}

// SeedFindings hallazgos iniciales.
func SeedFindings() []*entity.Finding {
	day := func(d int, h, m int) time.Time {
		return time.Date(2025, time.January, d, h, m, 0, 0, time.UTC)
	}
	closer := int64(4)
	return []*entity.Finding{
		{
			ID: "218659943", CompanyID: 1, OwnerUserID: 3, Zone: "Acuario", State: entity.FindingPending,
			Project: "Proyecto Alpha", Evaluator: "Paola Vargas", Department: "MANTENIMIENTO CORRECTIVO",
			Activity: "Corte de Suministro BT", Result: "NC", Observations: "Requiere atención inmediata",
			InspectedAt: day(6, 0, 0), CreatedAt: day(6, 11, 45), UpdatedAt: day(6, 11, 45),
		},
		{
			ID: "219581583", CompanyID: 1, OwnerUserID: 3, Zone: "Metro", State: entity.FindingPending,
			Project: "Proyecto Beta", Evaluator: "Paola Vargas", Department: "MANTENIMIENTO CORRECTIVO",
			Activity: "Línea caída", Result: "NC", Observations: "Línea en el suelo",
			InspectedAt: day(8, 0, 0), CreatedAt: day(8, 12, 25), UpdatedAt: day(8, 12, 25),
		},
		{
			ID: "218662660", CompanyID: 1, OwnerUserID: 4, Zone: "Oeste 1", State: entity.FindingClosed,
			ClosedByUserID: &closer, Project: "Proyecto Gamma", Evaluator: "Javier Gandola",
			Department: "MEDIDAS", Activity: "Suspensión de suministro por no pago (corte)", Result: "NC",
			Observations: "Cliente moroso", CloseComment: "Procedimiento de corte ejecutado",
			InspectedAt: day(27, 0, 0), CreatedAt: day(27, 11, 49), UpdatedAt: day(27, 11, 49),
		},
		{
			ID: "220123456", CompanyID: 1, OwnerUserID: 1, Zone: "Centro", State: entity.FindingPending,
			Project: "Proyecto Delta", Evaluator: "Admin Test", Department: "SUPERVISION",
			Activity: "Inspección general", Result: "C", Observations: "Todo correcto",
			InspectedAt: day(10, 0, 0), CreatedAt: day(10, 10, 30), UpdatedAt: day(10, 10, 30),
		},
	}
}
