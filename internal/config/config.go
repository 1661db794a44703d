package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	CRM          CRMConfig
	Policy       PolicyConfig
	Cache        CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HTTPConfig holds edge settings for the Fiber app.
type HTTPConfig struct {
	CORSOrigins        string
	RateLimitPerMinute int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Service string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// CRMMode selects the backend implementation.
type CRMMode string

const (
	CRMModeHTTP   CRMMode = "http"
	CRMModeMemory CRMMode = "memory"
)

// CRMConfig lists the endpoints of the external CRM backend.
type CRMConfig struct {
	Mode           CRMMode
	TimeoutSeconds int
	SeedFile       string
	Endpoints      CRMEndpoints
}

// CRMEndpoints holds one URL per backend operation. Empty means not configured.
type CRMEndpoints struct {
	Login            string
	ListStaff        string
	AddStaff         string
	EditStaff        string
	DeleteStaff      string
	FetchIncidents   string
	FetchIncident    string
	UpdateIncident   string
	DeleteIncident   string
	SubmitIncident   string
	ConfirmIncident  string
	RetrieveMessages string
	PostMessage      string
}

// PolicyConfig configures client-side form validation.
type PolicyConfig struct {
	AllowedEmailDomain string
	MinPasswordLength  int
}

// CacheConfig controls the staff directory cache.
type CacheConfig struct {
	StaffTTLSeconds      int
	StaffRefreshSchedule string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "incident-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			CORSOrigins:        getEnv("HTTP_CORS_ORIGINS", "http://localhost:5173"),
			RateLimitPerMinute: getEnvAsInt("HTTP_RATE_LIMIT_PER_MINUTE", 200),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("APP_NAME", "incident-portal"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		CRM: CRMConfig{
			TimeoutSeconds: getEnvAsInt("CRM_TIMEOUT_SECONDS", 20),
			SeedFile:       os.Getenv("CRM_SEED_FILE"),
			Endpoints: CRMEndpoints{
				Login:            os.Getenv("LOGIN_API_URL"),
				ListStaff:        os.Getenv("LIST_STAFF_API_URL"),
				AddStaff:         os.Getenv("ADD_STAFF_API_URL"),
				EditStaff:        os.Getenv("EDIT_STAFF_API_URL"),
				DeleteStaff:      os.Getenv("DELETE_STAFF_API_URL"),
				FetchIncidents:   os.Getenv("FETCH_INCIDENTS_API_URL"),
				FetchIncident:    os.Getenv("FETCH_INCIDENT_API_URL"),
				UpdateIncident:   os.Getenv("UPDATE_INCIDENT_API_URL"),
				DeleteIncident:   os.Getenv("DELETE_INCIDENT_API_URL"),
				SubmitIncident:   os.Getenv("SUBMIT_INCIDENT_API_URL"),
				ConfirmIncident:  os.Getenv("CONFIRM_INCIDENT_API_URL"),
				RetrieveMessages: os.Getenv("RETRIEVE_MESSAGES_API_URL"),
				PostMessage:      os.Getenv("POST_MESSAGE_API_URL"),
			},
		},
		Policy: PolicyConfig{
			AllowedEmailDomain: getEnv("POLICY_ALLOWED_EMAIL_DOMAIN", ""),
			MinPasswordLength:  getEnvAsInt("POLICY_MIN_PASSWORD_LENGTH", 8),
		},
		Cache: CacheConfig{
			StaffTTLSeconds:      getEnvAsInt("STAFF_CACHE_TTL_SECONDS", 30),
			StaffRefreshSchedule: getEnv("STAFF_REFRESH_SCHEDULE", "@every 5m"),
		},
	}

	mode := CRMMode(strings.ToLower(getEnv("CRM_MODE", "")))
	switch mode {
	case CRMModeHTTP, CRMModeMemory:
	case "":
		mode = CRMModeHTTP
		if !cfg.CRM.Endpoints.AnyConfigured() {
			mode = CRMModeMemory
		}
	default:
		return nil, fmt.Errorf("invalid CRM_MODE %q", mode)
	}
	cfg.CRM.Mode = mode

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call CRM timeout.
func (c CRMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AnyConfigured reports whether at least one endpoint URL is set.
func (e CRMEndpoints) AnyConfigured() bool {
	for _, url := range []string{
		e.Login, e.ListStaff, e.AddStaff, e.EditStaff, e.DeleteStaff,
		e.FetchIncidents, e.FetchIncident, e.UpdateIncident, e.DeleteIncident,
		e.SubmitIncident, e.ConfirmIncident, e.RetrieveMessages, e.PostMessage,
	} {
		if url != "" {
			return true
		}
	}
	return false
}

// StaffTTL returns the staff cache lifetime.
func (c CacheConfig) StaffTTL() time.Duration {
	if c.StaffTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StaffTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
