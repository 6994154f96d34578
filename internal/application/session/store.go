// Package session mantiene la sesión persistida del cliente sobre un almacenamiento clave/valor.
//
// La sesión ocupa cuatro claves: authToken (texto plano), userSession (JSON con el usuario,
// la empresa y la hora de login), currentCompany y rememberedCompany (JSON {id, nombre}).
// Ninguna operación devuelve error ni entra en pánico: las lecturas corruptas se borran y
// las escrituras fallidas se informan con false.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
)

// Claves de almacenamiento; compatibles con las que usaba la aplicación web.
const (
	KeyAuthToken         = "authToken"
	KeyUserSession       = "userSession"
	KeyCurrentCompany    = "currentCompany"
	KeyRememberedCompany = "rememberedCompany"
)

// Store envoltorio tipado sobre el almacenamiento de la sesión.
type Store struct {
	kv  repository.KeyValueStore
	log zerolog.Logger
}

// NewStore construye el store sobre kv.
func NewStore(kv repository.KeyValueStore, log zerolog.Logger) *Store {
	return &Store{kv: kv, log: log.With().Str("component", "session").Logger()}
}

// Load lee las cuatro claves y arma la sesión. Nunca falla: lo ilegible se trata como ausente.
// Solo hay sesión autenticada si existen token y blob, y el blob está marcado como
// autenticado y trae currentUser.
func (s *Store) Load(ctx context.Context) entity.Session {
	var out entity.Session

	token := s.Token(ctx)
	var blob dto.UserSession
	hasBlob := s.readJSON(ctx, KeyUserSession, &blob)

	if token != "" && hasBlob && blob.IsAuthenticated && blob.CurrentUser != nil {
		out.Token = token
		out.User = blob.CurrentUser.ToEntity()
		out.Company = blob.Company.ToEntity()
		out.LoginTime = parseLoginTime(blob.LoginTime)
	}

	out.CurrentCompany = s.readCompany(ctx, KeyCurrentCompany)
	out.RememberedCompany = s.readCompany(ctx, KeyRememberedCompany)
	return out
}

// Save escribe authToken y userSession. Solo escribe si la sesión tiene token y usuario.
func (s *Store) Save(ctx context.Context, sess entity.Session) bool {
	if !sess.IsAuthenticated() {
		s.log.Warn().Msg("se intentó guardar una sesión sin token o sin usuario")
		return false
	}
	blob := dto.UserSession{
		CurrentUser:     dto.UserFromEntity(sess.User, sess.Company),
		Company:         dto.CompanyFromEntity(sess.Company),
		Token:           sess.Token,
		IsAuthenticated: true,
	}
	if sess.LoginTime != nil {
		blob.LoginTime = sess.LoginTime.UTC().Format(time.RFC3339Nano)
	}
	if !s.set(ctx, KeyAuthToken, sess.Token) {
		return false
	}
	if !s.writeJSON(ctx, KeyUserSession, blob) {
		// sin blob el token suelto no forma sesión; se retira para no dejar estado a medias
		s.remove(ctx, KeyAuthToken)
		return false
	}
	return true
}

// SaveCurrentCompany guarda la última empresa validada, con o sin autenticación.
func (s *Store) SaveCurrentCompany(ctx context.Context, c *entity.Company) bool {
	return s.writeCompany(ctx, KeyCurrentCompany, c)
}

// RememberCompany guarda la empresa elegida con "recordar empresa"; sobrevive al logout.
func (s *Store) RememberCompany(ctx context.Context, c *entity.Company) bool {
	return s.writeCompany(ctx, KeyRememberedCompany, c)
}

// ForgetCompany borra la empresa recordada. Idempotente.
func (s *Store) ForgetCompany(ctx context.Context) bool {
	return s.remove(ctx, KeyRememberedCompany)
}

// ClearCurrentCompany borra la empresa actual.
func (s *Store) ClearCurrentCompany(ctx context.Context) bool {
	return s.remove(ctx, KeyCurrentCompany)
}

// Clear borra authToken, userSession y currentCompany. La empresa recordada se conserva.
func (s *Store) Clear(ctx context.Context) bool {
	ok := s.remove(ctx, KeyAuthToken)
	ok = s.remove(ctx, KeyUserSession) && ok
	ok = s.remove(ctx, KeyCurrentCompany) && ok
	return ok
}

// Purge borra las cuatro claves; se usa al recuperar un arranque fallido.
func (s *Store) Purge(ctx context.Context) bool {
	ok := s.Clear(ctx)
	return s.ForgetCompany(ctx) && ok
}

// Token lee authToken ("" si no existe o el backend falla).
func (s *Store) Token(ctx context.Context) string {
	v, ok, err := s.kv.Get(ctx, KeyAuthToken)
	if err != nil {
		s.log.Error().Err(err).Str("key", KeyAuthToken).Msg("error leyendo almacenamiento")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// UpdateToken reemplaza el token en authToken y en el blob userSession, si existe.
func (s *Store) UpdateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	if !s.set(ctx, KeyAuthToken, token) {
		return false
	}
	var blob dto.UserSession
	if !s.readJSON(ctx, KeyUserSession, &blob) {
		return true
	}
	blob.Token = token
	return s.writeJSON(ctx, KeyUserSession, blob)
}

// UpdateUser reemplaza currentUser en el blob de una sesión autenticada.
func (s *Store) UpdateUser(ctx context.Context, u *entity.User) bool {
	if u == nil {
		return false
	}
	var blob dto.UserSession
	if !s.readJSON(ctx, KeyUserSession, &blob) || !blob.IsAuthenticated {
		return false
	}
	blob.CurrentUser = dto.UserFromEntity(u, blob.Company.ToEntity())
	return s.writeJSON(ctx, KeyUserSession, blob)
}

func parseLoginTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil
	}
	return &t
}

func (s *Store) readCompany(ctx context.Context, key string) *entity.Company {
	var p dto.CompanyPayload
	if !s.readJSON(ctx, key, &p) {
		return nil
	}
	c := p.ToEntity()
	if c == nil {
		s.log.Warn().Err(domain.ErrCorruptedState).Str("key", key).Msg("empresa sin id, se descarta")
		s.remove(ctx, key)
	}
	return c
}

func (s *Store) writeCompany(ctx context.Context, key string, c *entity.Company) bool {
	if c == nil || c.ID <= 0 {
		return false
	}
	return s.writeJSON(ctx, key, dto.CompanyPayload{ID: c.ID, Name: c.Name, TaxID: c.TaxID})
}

// readJSON devuelve false si la clave no existe o no se pudo leer. Un JSON inválido se borra.
func (s *Store) readJSON(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("error leyendo almacenamiento")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn().Err(domain.ErrCorruptedState).Str("key", key).AnErr("parse", err).Msg("valor corrupto, se elimina")
		s.remove(ctx, key)
		return false
	}
	return true
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("error serializando")
		return false
	}
	return s.set(ctx, key, string(raw))
}

func (s *Store) set(ctx context.Context, key, value string) bool {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("error escribiendo almacenamiento")
		return false
	}
	return true
}

func (s *Store) remove(ctx context.Context, key string) bool {
	if err := s.kv.Remove(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("error borrando del almacenamiento")
		return false
	}
	return true
}
