package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, empresa_id, nombre, apellido, correo, password_hash, rol, puede_editar, zona, activo`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Name, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &u.CanEdit, &u.Zone, &u.Active)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario y asigna su ID.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const query = `
		INSERT INTO usuarios (empresa_id, nombre, apellido, correo, password_hash, rol, puede_editar, zona, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		u.CompanyID, u.Name, u.LastName, u.Email, u.PasswordHash, u.Role, u.CanEdit, u.Zone, u.Active,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmailAndCompany obtiene un usuario por correo (sin distinguir mayúsculas) y empresa.
func (r *UserRepo) GetByEmailAndCompany(ctx context.Context, email string, companyID int64) (*entity.User, error) {
	const query = `SELECT ` + userColumns + ` FROM usuarios WHERE lower(correo) = lower($1) AND empresa_id = $2`
	u, err := scanUser(r.q.QueryRow(ctx, query, email, companyID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email and company: %w", err)
	}
	return u, nil
}

// ListByCompany lista los usuarios de una empresa.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID int64) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM usuarios WHERE empresa_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	const query = `
		UPDATE usuarios SET nombre = $2, apellido = $3, correo = $4, password_hash = $5, rol = $6,
		       puede_editar = $7, zona = $8, activo = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		u.ID, u.Name, u.LastName, u.Email, u.PasswordHash, u.Role, u.CanEdit, u.Zone, u.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
