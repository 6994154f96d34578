package dto

// LoginRequest entrada para login: credenciales más la empresa validada en el primer paso.
type LoginRequest struct {
	Email     string `json:"correo"`
	Password  string `json:"password"`
	CompanyID int64  `json:"empresa_id"`
}

// LoginResponse salida con token JWT y usuario.
type LoginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *UserPayload `json:"user"`
	Message string       `json:"message,omitempty"`
}

// RefreshResponse salida de /api/auth/refresh.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// MeResponse salida de /api/auth/me.
type MeResponse struct {
	User *UserPayload `json:"user"`
}

// UserSession blob persistido en la clave userSession.
// LoginTime es RFC3339; si falta o no se puede interpretar la sesión no es verificable.
type UserSession struct {
	CurrentUser     *UserPayload    `json:"currentUser"`
	Company         *CompanyPayload `json:"empresa"`
	Token           string          `json:"token"`
	IsAuthenticated bool            `json:"isAuthenticated"`
	LoginTime       string          `json:"loginTime,omitempty"`
}
