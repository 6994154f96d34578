// Package auth casos de uso de autenticación del backend de desarrollo: login, renovación de
// token y consulta del usuario actual.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/domain"
	"github.com/jhoicas/lxhallazgos/internal/domain/entity"
	"github.com/jhoicas/lxhallazgos/internal/domain/repository"
	"github.com/jhoicas/lxhallazgos/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret       string
	ExpMinutes   int
	Issuer       string
	RefreshGrace time.Duration // cuánto después de expirar se acepta todavía un token para renovarlo
}

// AuthUseCase casos de uso de autenticación.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	jwtCfg      JWTConfig
	log         zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	if jwtCfg.RefreshGrace <= 0 {
		jwtCfg.RefreshGrace = 24 * time.Hour
	}
	return &AuthUseCase{userRepo: userRepo, companyRepo: companyRepo, jwtCfg: jwtCfg, log: log}
}

// Login verifica correo/contraseña dentro de la empresa elegida, genera JWT y retorna token +
// usuario con su empresa anidada.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" || in.CompanyID <= 0 {
		return nil, fmt.Errorf("%w: correo, contraseña y empresa son requeridos", domain.ErrValidation)
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.Active {
		return nil, domain.ErrUserNotFound
	}
	user, err := uc.userRepo.GetByEmailAndCompany(ctx, email, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Int64("user_id", user.ID).Int64("empresa_id", in.CompanyID).Msg("contraseña incorrecta")
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Int64("empresa_id", company.ID).Str("rol", string(user.Role)).Msg("login exitoso")
	return &dto.LoginResponse{
		Success: true,
		Token:   token,
		User:    dto.UserFromEntity(user, company),
		Message: "Login exitoso",
	}, nil
}

// Refresh emite un token nuevo a partir de uno vigente o expirado hace menos de RefreshGrace.
func (uc *AuthUseCase) Refresh(ctx context.Context, tokenString string) (*dto.RefreshResponse, error) {
	claims, err := jwt.ParseForRefresh(uc.jwtCfg.Secret, tokenString, uc.jwtCfg.RefreshGrace)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || user.CompanyID != claims.CompanyID {
		return nil, domain.ErrUnauthorized
	}
	token, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Int64("user_id", user.ID).Msg("token renovado")
	return &dto.RefreshResponse{Success: true, Token: token}, nil
}

// Me devuelve el usuario vigente con su empresa (rol y zona actualizados).
func (uc *AuthUseCase) Me(ctx context.Context, userID int64) (*dto.MeResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, domain.ErrUnauthorized
	}
	company, err := uc.companyRepo.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{User: dto.UserFromEntity(user, company)}, nil
}

func (uc *AuthUseCase) issue(u *entity.User) (string, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, u.ID, u.CompanyID, string(u.Role), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return "", fmt.Errorf("generar token: %w", err)
	}
	return token, nil
}
