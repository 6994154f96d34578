package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends de almacenamiento de sesión soportados.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config agrupa la configuración del cliente y del backend de desarrollo (lectura vía Viper).
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// APIConfig configuración del cliente HTTP hacia el backend de hallazgos.
type APIConfig struct {
	BaseURL   string
	TimeoutMS int
}

// Timeout devuelve el timeout de red como duración.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// SessionConfig configuración del almacenamiento persistente de la sesión.
type SessionConfig struct {
	Backend           string // memory, sqlite, redis
	SQLitePath        string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	KeyPrefix         string
	MaxAgeHours       int  // ventana local de validez del token (24h por defecto)
	RevalidateCompany bool // revalida la empresa cacheada contra el directorio antes del login
}

// MaxAge devuelve la ventana de validez local de la sesión.
func (c SessionConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeHours) * time.Hour
}

// DBConfig configuración de PostgreSQL para el directorio del backend de desarrollo.
// Vacío = directorio en memoria con los datos semilla.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// Enabled informa si hay una base de datos configurada.
func (c DBConfig) Enabled() bool {
	return c.DatabaseURL != "" || c.Host != ""
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT del backend de desarrollo.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP del backend de desarrollo.
type HTTPConfig struct {
	Host     string
	Port     int
	DocsPath string // swagger.json; vacío = sin /docs
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, SESSION_BACKEND, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v), nil
}

// FromViper construye la configuración desde una instancia de Viper ya poblada.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "lx-hallazgos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:   getString(v, "API_BASE_URL", "http://localhost:8080"),
			TimeoutMS: getInt(v, "API_TIMEOUT_MS", 10000),
		},
		Session: SessionConfig{
			Backend:           strings.ToLower(getString(v, "SESSION_BACKEND", BackendSQLite)),
			SQLitePath:        getString(v, "SESSION_SQLITE_PATH", "hallazgos-session.db"),
			RedisAddr:         getString(v, "REDIS_ADDR", "localhost:6379"),
			RedisPassword:     getString(v, "REDIS_PASSWORD", ""),
			RedisDB:           getInt(v, "REDIS_DB", 0),
			KeyPrefix:         getString(v, "SESSION_KEY_PREFIX", "hallazgos"),
			MaxAgeHours:       getInt(v, "SESSION_MAX_AGE_HOURS", 24),
			RevalidateCompany: getBool(v, "SESSION_REVALIDATE_COMPANY", false),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", ""),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "hallazgos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "lx-hallazgos"),
		},
		HTTP: HTTPConfig{
			Host:     getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:     getInt(v, "HTTP_PORT", 8080),
			DocsPath: getString(v, "DOCS_PATH", ""),
		},
	}
}

// Validate revisa los valores que el cliente necesita para arrancar.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL no es una URL válida: %q", c.API.BaseURL))
	}
	if c.API.TimeoutMS < 1000 {
		errs = append(errs, errors.New("API_TIMEOUT_MS debe ser mayor o igual a 1000"))
	}
	switch c.App.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL debe ser trace, debug, info, warn o error: %q", c.App.LogLevel))
	}
	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite:
		if strings.TrimSpace(c.Session.SQLitePath) == "" {
			errs = append(errs, errors.New("SESSION_SQLITE_PATH es requerido con el backend sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND desconocido: %q", c.Session.Backend))
	}
	if c.Session.MaxAgeHours <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE_HOURS debe ser positivo"))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}
