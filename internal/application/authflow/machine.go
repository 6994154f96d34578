// Package authflow implementa el login progresivo: primero la empresa, después las credenciales.
//
// La máquina guarda su estado tras un mutex y llama a los colaboradores (directorio de
// empresas, credenciales) fuera del lock, marcando los flags de ocupado antes y después.
// Cada cambio de estado se publica a los suscriptores de la instancia.
package authflow

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/application/ports"
	"github.com/jhoicas/lxhallazgos/internal/application/session"
	"github.com/jhoicas/lxhallazgos/internal/application/token"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
)

// Mensajes visibles del flujo.
const (
	MsgCompanyRequired   = "Ingrese el nombre, NIT o ID de la empresa"
	MsgCompanyNotFound   = "Empresa no encontrada. Verifique el nombre, NIT o ID."
	MsgCompanyConnection = "Error de conexión. Intente nuevamente."
	MsgCompanyValid      = "Empresa válida"
	MsgNoCompany         = "Debe seleccionar una empresa primero"
	MsgLoginOK           = "Login exitoso"
	MsgLoggedOut         = "Sesión cerrada"
	MsgNoSession         = "No hay sesión activa"
)

// SessionVerifier verificación local de la sesión persistida.
type SessionVerifier interface {
	Verify(ctx context.Context) token.VerifyResult
}

// Result resultado de una operación de la interfaz. Las operaciones de UI nunca devuelven error:
// Err queda disponible para quien quiera distinguir la causa con errors.Is/As.
type Result struct {
	Success bool
	Message string
	Company *entity.Company
	User    *entity.User
	Err     error
}

// Deps colaboradores de la máquina.
type Deps struct {
	Store       *session.Store
	Verifier    SessionVerifier
	Directory   ports.CompanyDirectory
	Credentials ports.Credentials
}

type subscriber struct {
	id int
	fn func(entity.FlowState)
}

// Machine máquina de estados del login progresivo.
type Machine struct {
	store      *session.Store
	verifier   SessionVerifier
	directory  ports.CompanyDirectory
	creds      ports.Credentials
	now        func() time.Time
	revalidate bool
	log        zerolog.Logger

	mu     sync.Mutex
	state  entity.FlowState
	cached bool // ValidatedCompany salió del almacenamiento, no de una validación en esta ejecución
	subs   []subscriber
	nextID int
}

// Option configura la máquina.
type Option func(*Machine)

// WithClock inyecta el reloj usado para la hora de login.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLogger asigna el logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithCompanyRevalidation vuelve a consultar el directorio antes del login cuando la empresa
// proviene de la caché (recordada o actual).
func WithCompanyRevalidation(enabled bool) Option {
	return func(m *Machine) { m.revalidate = enabled }
}

// New construye la máquina en el paso de empresa. Llamar a Start para resolver la sesión persistida.
func New(deps Deps, opts ...Option) *Machine {
	m := &Machine{
		store:     deps.Store,
		verifier:  deps.Verifier,
		directory: deps.Directory,
		creds:     deps.Credentials,
		now:       time.Now,
		log:       zerolog.Nop(),
		state:     entity.FlowState{Step: entity.StepCompany},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("component", "authflow").Logger()
	return m
}

// State devuelve una copia del estado actual.
func (m *Machine) State() entity.FlowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Subscribe registra fn para cada cambio de estado. Devuelve la función para darse de baja.
// fn se invoca fuera del lock, en la goroutine que produjo el cambio.
func (m *Machine) Subscribe(fn func(entity.FlowState)) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// update aplica fn bajo el lock y publica el resultado.
func (m *Machine) update(fn func(*entity.FlowState)) entity.FlowState {
	snap, subs := m.apply(fn)
	for _, s := range subs {
		s.fn(snap.Clone())
	}
	return snap
}

func (m *Machine) apply(fn func(*entity.FlowState)) (entity.FlowState, []subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	return m.state.Clone(), subs
}

// Start resuelve el estado inicial a partir del almacenamiento, en orden de prioridad:
// sesión válida, empresa recordada, empresa actual, paso de empresa.
// Ante un pánico durante la resolución se borra todo lo persistido y se arranca de cero.
func (m *Machine) Start(ctx context.Context) (st entity.FlowState) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("fallo resolviendo el estado inicial, se reinicia el flujo")
			m.store.Purge(ctx)
			st = m.update(func(s *entity.FlowState) {
				*s = entity.FlowState{Step: entity.StepCompany}
			})
		}
	}()
	return m.resolve(ctx)
}

func (m *Machine) resolve(ctx context.Context) entity.FlowState {
	sess := m.store.Load(ctx)

	if sess.IsAuthenticated() {
		if v := m.verifier.Verify(ctx); v.Valid {
			m.log.Info().Int64("user_id", v.User.ID).Msg("sesión restaurada")
			return m.update(func(s *entity.FlowState) {
				*s = entity.FlowState{
					Step:              entity.StepAuthenticated,
					CurrentUser:       v.User,
					ValidatedCompany:  sess.Company,
					RememberedCompany: sess.RememberedCompany,
				}
				m.cached = true
			})
		}
		m.log.Info().Msg("sesión inválida o expirada, se limpia")
		m.store.Clear(ctx)
		sess.CurrentCompany = nil
	}

	switch {
	case sess.RememberedCompany != nil:
		m.log.Info().Int64("empresa_id", sess.RememberedCompany.ID).Msg("empresa recordada")
		return m.update(func(s *entity.FlowState) {
			*s = entity.FlowState{
				Step:              entity.StepCredentials,
				ValidatedCompany:  sess.RememberedCompany,
				RememberedCompany: sess.RememberedCompany,
			}
			m.cached = true
		})
	case sess.CurrentCompany != nil:
		m.log.Info().Int64("empresa_id", sess.CurrentCompany.ID).Msg("empresa actual encontrada")
		return m.update(func(s *entity.FlowState) {
			*s = entity.FlowState{
				Step:             entity.StepCredentials,
				ValidatedCompany: sess.CurrentCompany,
			}
			m.cached = true
		})
	default:
		return m.update(func(s *entity.FlowState) {
			*s = entity.FlowState{Step: entity.StepCompany}
		})
	}
}

// ValidateCompany busca la empresa por ID, nombre o NIT. Si existe la guarda como empresa
// actual y pasa al paso de credenciales.
func (m *Machine) ValidateCompany(ctx context.Context, input string) Result {
	input = strings.TrimSpace(input)
	if input == "" {
		m.update(func(s *entity.FlowState) { s.CompanyError = MsgCompanyRequired })
		return Result{Message: MsgCompanyRequired, Err: domain.ErrValidation}
	}

	m.update(func(s *entity.FlowState) {
		s.IsValidatingCompany = true
		s.CompanyError = ""
	})

	company, err := m.directory.Lookup(ctx, input)
	if err != nil {
		msg := MsgCompanyNotFound
		if errors.Is(err, domain.ErrTransport) {
			msg = MsgCompanyConnection
		}
		m.log.Warn().Err(err).Str("entrada", input).Msg("validación de empresa fallida")
		m.update(func(s *entity.FlowState) {
			s.IsValidatingCompany = false
			s.CompanyError = msg
		})
		return Result{Message: msg, Err: err}
	}

	if !m.store.SaveCurrentCompany(ctx, company) {
		m.log.Warn().Int64("empresa_id", company.ID).Msg("no se pudo persistir la empresa actual")
	}
	m.log.Info().Int64("empresa_id", company.ID).Str("nombre", company.Name).Msg("empresa válida")
	m.update(func(s *entity.FlowState) {
		s.Step = entity.StepCredentials
		s.ValidatedCompany = company.Clone()
		s.IsValidatingCompany = false
		s.CompanyError = ""
		m.cached = false
	})
	return Result{Success: true, Message: MsgCompanyValid, Company: company.Clone()}
}

// companyForLogin empresa validada, si no la recordada, si no la actual persistida.
// cached indica que no viene de una validación hecha en esta ejecución.
func (m *Machine) companyForLogin(ctx context.Context) (c *entity.Company, cached bool) {
	m.mu.Lock()
	validated, remembered, fromStore := m.state.ValidatedCompany.Clone(), m.state.RememberedCompany.Clone(), m.cached
	m.mu.Unlock()

	switch {
	case validated != nil:
		return validated, fromStore
	case remembered != nil:
		return remembered, true
	}
	if cur := m.store.Load(ctx).CurrentCompany; cur != nil {
		return cur, true
	}
	return nil, false
}

// Login autentica las credenciales contra la empresa resuelta. remember decide si la empresa
// queda recordada para el próximo arranque.
func (m *Machine) Login(ctx context.Context, email, password string, remember bool) Result {
	company, cached := m.companyForLogin(ctx)
	if company == nil {
		m.update(func(s *entity.FlowState) { s.LoginError = MsgNoCompany })
		return Result{Message: MsgNoCompany, Err: domain.ErrNoCompanySelected}
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		msg := domain.LoginMessage(domain.ErrValidation)
		m.update(func(s *entity.FlowState) { s.LoginError = msg })
		return Result{Message: msg, Err: domain.ErrValidation}
	}

	m.update(func(s *entity.FlowState) {
		s.IsLoggingIn = true
		s.LoginError = ""
	})

	if m.revalidate && cached {
		fresh, res, ok := m.revalidateCompany(ctx, company)
		if !ok {
			return res
		}
		company = fresh
	}

	grant, err := m.creds.Login(ctx, email, password, company.ID)
	if err == nil && (grant == nil || grant.Token == "" || grant.User == nil) {
		err = domain.ErrInvalidResponse
	}
	if err != nil {
		msg := domain.LoginMessage(err)
		m.log.Warn().Err(err).Int64("empresa_id", company.ID).Msg("login rechazado")
		m.update(func(s *entity.FlowState) {
			s.Step = entity.StepCredentials
			s.IsLoggingIn = false
			s.LoginError = msg
		})
		return Result{Message: msg, Company: company, Err: err}
	}

	now := m.now()
	sessCompany := grant.Company
	if sessCompany == nil {
		sessCompany = company
	}
	if !m.store.Save(ctx, entity.Session{Token: grant.Token, User: grant.User, Company: sessCompany, LoginTime: &now}) {
		m.log.Warn().Msg("login correcto pero la sesión no se pudo persistir")
	}
	var remembered *entity.Company
	if remember {
		m.store.RememberCompany(ctx, company)
		remembered = company
	} else {
		m.store.ForgetCompany(ctx)
	}

	m.log.Info().Int64("user_id", grant.User.ID).Int64("empresa_id", company.ID).Bool("recordar", remember).Msg("login exitoso")
	m.update(func(s *entity.FlowState) {
		s.Step = entity.StepAuthenticated
		s.CurrentUser = grant.User.Clone()
		s.ValidatedCompany = company.Clone()
		s.RememberedCompany = remembered.Clone()
		s.IsLoggingIn = false
		s.LoginError = ""
		s.CompanyError = ""
		m.cached = false
	})

	msg := grant.Message
	if msg == "" {
		msg = MsgLoginOK
	}
	return Result{Success: true, Message: msg, Company: company.Clone(), User: grant.User.Clone()}
}

// revalidateCompany consulta la empresa cacheada por ID antes de usarla. Si ya no existe se
// descarta y el flujo vuelve al paso de empresa.
func (m *Machine) revalidateCompany(ctx context.Context, cached *entity.Company) (*entity.Company, Result, bool) {
	fresh, err := m.directory.Lookup(ctx, strconv.FormatInt(cached.ID, 10))
	if err == nil && fresh.ID == cached.ID {
		return fresh, Result{}, true
	}
	if err != nil && errors.Is(err, domain.ErrTransport) {
		msg := domain.LoginMessage(err)
		m.update(func(s *entity.FlowState) {
			s.IsLoggingIn = false
			s.LoginError = msg
		})
		return nil, Result{Message: msg, Company: cached, Err: err}, false
	}

	m.log.Warn().Int64("empresa_id", cached.ID).Msg("la empresa cacheada ya no existe en el directorio")
	m.store.ClearCurrentCompany(ctx)
	m.store.ForgetCompany(ctx)
	m.update(func(s *entity.FlowState) {
		*s = entity.FlowState{Step: entity.StepCompany, CompanyError: MsgCompanyNotFound}
		m.cached = false
	})
	if err == nil {
		err = domain.ErrCompanyNotFound
	}
	return nil, Result{Message: MsgCompanyNotFound, Err: err}, false
}

// Logout cierra la sesión. La empresa recordada se lee antes de limpiar: con ella se vuelve
// al paso de credenciales, sin ella al de empresa. El cierre remoto es best-effort.
func (m *Machine) Logout(ctx context.Context) Result {
	sess := m.store.Load(ctx)
	remembered := sess.RememberedCompany

	if !sess.IsAuthenticated() && m.State().Step != entity.StepAuthenticated {
		return Result{Success: true, Message: MsgNoSession}
	}

	if sess.Token != "" {
		if err := m.creds.Logout(ctx); err != nil {
			m.log.Warn().Err(err).Msg("logout remoto fallido, se continúa con el local")
		}
	}
	m.store.Clear(ctx)

	m.log.Info().Bool("empresa_recordada", remembered != nil).Msg("sesión cerrada")
	m.update(func(s *entity.FlowState) {
		m.cached = remembered != nil
		if remembered != nil {
			*s = entity.FlowState{
				Step:              entity.StepCredentials,
				ValidatedCompany:  remembered,
				RememberedCompany: remembered,
			}
			return
		}
		*s = entity.FlowState{Step: entity.StepCompany}
	})
	return Result{Success: true, Message: MsgLoggedOut, Company: remembered}
}

// ChangeCompany olvida la empresa actual y la recordada y vuelve al paso de empresa.
func (m *Machine) ChangeCompany(ctx context.Context) {
	m.store.ClearCurrentCompany(ctx)
	m.store.ForgetCompany(ctx)
	m.log.Info().Msg("cambio de empresa")
	m.update(func(s *entity.FlowState) {
		*s = entity.FlowState{Step: entity.StepCompany}
		m.cached = false
	})
}

// ForgetCompany borra solo la empresa recordada; el paso no cambia.
func (m *Machine) ForgetCompany(ctx context.Context) {
	m.store.ForgetCompany(ctx)
	m.update(func(s *entity.FlowState) { s.RememberedCompany = nil })
}

// RefreshPermissions recarga el usuario actual desde el backend y lo persiste.
// Solo aplica con sesión autenticada.
func (m *Machine) RefreshPermissions(ctx context.Context) bool {
	if m.State().Step != entity.StepAuthenticated {
		return false
	}
	u, err := m.creds.CurrentUser(ctx)
	if err != nil || u == nil {
		m.log.Warn().Err(err).Msg("no se pudieron recargar los permisos")
		return false
	}
	if !m.store.UpdateUser(ctx, u) {
		m.log.Warn().Int64("user_id", u.ID).Msg("permisos recargados pero no persistidos")
	}
	m.update(func(s *entity.FlowState) { s.CurrentUser = u.Clone() })
	m.log.Info().Int64("user_id", u.ID).Str("rol", string(u.Role)).Msg("permisos actualizados")
	return true
}
