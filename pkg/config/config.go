package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	EFactura EFacturaConfig
}

// Entornos ANAF SPV.
const (
	EFacturaEnvTest = "test"
	EFacturaEnvProd = "prod"
)

const (
	efacturaTestBaseURL = "https://api.anaf.ro/test/FCTEL/rest"
	efacturaProdBaseURL = "https://api.anaf.ro/prod/FCTEL/rest"
)

// EFacturaConfig configuración de la integración con ANAF e-Factura (SPV).
type EFacturaConfig struct {
	Env           string        // "test" | "prod"
	BaseURL       string        // vacío = derivado de Env; útil para sandboxes
	EncryptionKey string        // clave de la bóveda; 64 hex = clave cruda, otro valor = passphrase
	CertDir       string        // directorio base para rutas relativas de certificados
	ChannelCache  bool          // reutilizar canales mTLS por empresa
	HTTPTimeout   time.Duration // 0 = sin timeout explícito
	SyncInterval  time.Duration // 0 = sincronización periódica deshabilitada
}

// ResolveBaseURL devuelve la URL base REST del SPV según el entorno o el override.
func (c EFacturaConfig) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Env == EFacturaEnvProd {
		return efacturaProdBaseURL
	}
	return efacturaTestBaseURL
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string // LOG_LEVEL, info por defecto
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
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

// JWTConfig configuración de JWT. Los tokens se emiten en otro servicio; aquí solo se verifican.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, EFACTURA_ENV, etc.
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

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "efactura-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "efactura"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", ""),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		EFactura: EFacturaConfig{
			Env:           strings.ToLower(getString(v, "EFACTURA_ENV", EFacturaEnvTest)),
			BaseURL:       getString(v, "EFACTURA_BASE_URL", ""),
			EncryptionKey: getString(v, "EFACTURA_ENCRYPTION_KEY", ""),
			CertDir:       getString(v, "EFACTURA_CERT_DIR", "./certs"),
			ChannelCache:  getBool(v, "EFACTURA_CHANNEL_CACHE", false),
			HTTPTimeout:   getDuration(v, "EFACTURA_HTTP_TIMEOUT", 0),
			SyncInterval:  getDuration(v, "EFACTURA_SYNC_INTERVAL", 0),
		},
	}

	if cfg.EFactura.Env != EFacturaEnvTest && cfg.EFactura.Env != EFacturaEnvProd {
		return nil, fmt.Errorf("config: EFACTURA_ENV inválido %q (use test o prod)", cfg.EFactura.Env)
	}
	return cfg, nil
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
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

// getDuration acepta "90s", "5m" o un entero en segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return def
}
