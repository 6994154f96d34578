// Package memdb implementa los repositorios del backend de desarrollo en memoria.
// Es el directorio por defecto cuando no hay base de datos configurada.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.FindingRepository = (*FindingRepo)(nil)
)

// CompanyRepo directorio de empresas en memoria.
type CompanyRepo struct {
	mu   sync.RWMutex
	byID map[int64]*entity.Company
}

// NewCompanyRepository crea el repositorio con las empresas dadas.
func NewCompanyRepository(list []*entity.Company) *CompanyRepo {
	r := &CompanyRepo{byID: make(map[int64]*entity.Company, len(list))}
	for _, c := range list {
		r.byID[c.ID] = c.Clone()
	}
	return r
}

// GetByID devuelve (nil, nil) si la empresa no existe.
func (r *CompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id].Clone(), nil
}

// List empresas activas ordenadas por ID.
func (r *CompanyRepo) List(_ context.Context) ([]*entity.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Company, 0, len(r.byID))
	for _, c := range r.byID {
		if c.Active {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UserRepo usuarios en memoria. Los IDs nuevos siguen al mayor existente.
type UserRepo struct {
	mu     sync.RWMutex
	byID   map[int64]*entity.User
	nextID int64
}

// NewUserRepository crea el repositorio con los usuarios dados (con hash de contraseña).
func NewUserRepository(list []*entity.User) *UserRepo {
	r := &UserRepo{byID: make(map[int64]*entity.User, len(list))}
	for _, u := range list {
		cp := *u
		r.byID[u.ID] = &cp
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *UserRepo) emailTaken(email string, companyID, exceptID int64) bool {
	for _, u := range r.byID {
		if u.ID != exceptID && u.CompanyID == companyID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Create asigna ID y persiste. Correo duplicado en la empresa => ErrEmailAlreadyExists.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, u.CompanyID, 0) {
		return domain.ErrEmailAlreadyExists
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

// GetByID devuelve una copia (con hash) o (nil, nil).
func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetByEmailAndCompany búsqueda sin distinguir mayúsculas.
func (r *UserRepo) GetByEmailAndCompany(_ context.Context, email string, companyID int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.sortedIDs() {
		u := r.byID[id]
		if u.CompanyID == companyID && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// ListByCompany usuarios de la empresa ordenados por ID.
func (r *UserRepo) ListByCompany(_ context.Context, companyID int64) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.User
	for _, id := range r.sortedIDs() {
		if u := r.byID[id]; u.CompanyID == companyID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Update reemplaza el usuario completo.
func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if r.emailTaken(u.Email, u.CompanyID, u.ID) {
		return domain.ErrEmailAlreadyExists
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *UserRepo) sortedIDs() []int64 {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FindingRepo hallazgos en memoria.
type FindingRepo struct {
	mu   sync.RWMutex
	byID map[string]*entity.Finding
}

// NewFindingRepository crea el repositorio con los hallazgos dados.
func NewFindingRepository(list []*entity.Finding) *FindingRepo {
	r := &FindingRepo{byID: make(map[string]*entity.Finding, len(list))}
	for _, f := range list {
		r.byID[f.ID] = cloneFinding(f)
	}
	return r
}

// Create falla con ErrValidation si el ID ya existe.
func (r *FindingRepo) Create(_ context.Context, f *entity.Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[f.ID]; ok {
		return domain.ErrValidation
	}
	r.byID[f.ID] = cloneFinding(f)
	return nil
}

// GetByID devuelve una copia o (nil, nil).
func (r *FindingRepo) GetByID(_ context.Context, id string) (*entity.Finding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneFinding(f), nil
}

// Update reemplaza el hallazgo; ErrNotFound si no existe.
func (r *FindingRepo) Update(_ context.Context, f *entity.Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[f.ID] = cloneFinding(f)
	return nil
}

// Delete elimina el hallazgo; ErrNotFound si no existe.
func (r *FindingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneFinding(f *entity.Finding) *entity.Finding {
	cp := *f
	if f.ClosedByUserID != nil {
		id := *f.ClosedByUserID
		cp.ClosedByUserID = &id
	}
	return &cp
}
