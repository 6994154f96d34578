package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrRefreshWindowExceeded el token expiró hace más tiempo del permitido para renovarlo.
var ErrRefreshWindowExceeded = errors.New("jwt: ventana de renovación excedida")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Se añade Role para que el middleware pueda tomar decisiones sin consultar el directorio.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"empresa_id"`
	Role      string `json:"rol"`
}

// Generate genera un token JWT firmado que incluye userID, companyID y role.
func Generate(secret string, userID, companyID int64, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	return parse(secret, tokenString)
}

// ParseForRefresh valida la firma pero acepta tokens expirados hace menos de grace.
// Lo usa el endpoint de renovación: el cliente llega ahí justamente con un 401.
func ParseForRefresh(secret, tokenString string, grace time.Duration) (*Claims, error) {
	claims, err := parse(secret, tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && time.Since(claims.ExpiresAt.Time) > grace {
		return nil, ErrRefreshWindowExceeded
	}
	return claims, nil
}

func parse(secret, tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
