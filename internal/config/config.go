package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/subosito/gotenv"
)

const (
	BackendMySQL  = "mysql"
	BackendMemory = "memory"

	AuthSession  = "session"
	AuthFirebase = "firebase"
	AuthDev      = "dev"
)

type Config struct {
	// HTTP server
	Port           string
	AppEnv         string
	RequestTimeout time.Duration
	AllowedOrigins []string

	// Logging
	LogLevel string
	LogDir   string

	// Storage
	DataBackend     string
	DBUser          string
	DBPass          string
	DBHost          string
	DBPort          string
	DBName          string
	FullDSN         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Statistics
	MaxDateRangeDays int

	// Identity
	AuthProvider           string
	FirebaseProjectID      string
	FirebaseCredentialFile string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}
	return FromEnv(), nil
}

func FromEnv() *Config {
	return &Config{
		Port:           getEnv("APP_PORT", "8080"),
		AppEnv:         strings.ToLower(getEnv("APP_ENV", "development")),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", ""),

		DataBackend:     strings.ToLower(getEnv("DATA_BACKEND", BackendMySQL)),
		DBUser:          getEnv("DB_USER", ""),
		DBPass:          getEnv("DB_PASS", ""),
		DBHost:          getEnv("DB_HOST", ""),
		DBPort:          getEnv("DB_PORT", "3306"),
		DBName:          getEnv("DB_NAME", "budget_insights"),
		FullDSN:         getEnv("FULL_DSN", ""),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		MaxDateRangeDays: getEnvInt("MAX_DATE_RANGE_DAYS", 90),

		AuthProvider:           strings.ToLower(getEnv("AUTH_PROVIDER", AuthSession)),
		FirebaseProjectID:      getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendMySQL:
		if c.FullDSN == "" && (c.DBUser == "" || c.DBPass == "" || c.DBHost == "" || c.DBPort == "") {
			problems = append(problems, "missing required DB environment variables: set FULL_DSN or DB_USER, DB_PASS, DB_HOST and DB_PORT")
		}
		if c.FullDSN != "" {
			if _, err := mysql.ParseDSN(c.FullDSN); err != nil {
				problems = append(problems, fmt.Sprintf("invalid FULL_DSN: %v", err))
			}
		}
		if c.MaxOpenConns < 1 {
			problems = append(problems, fmt.Sprintf("invalid DB_MAX_OPEN_CONNS %d: must be at least 1", c.MaxOpenConns))
		}
		if c.MaxIdleConns < 0 {
			problems = append(problems, fmt.Sprintf("invalid DB_MAX_IDLE_CONNS %d: must not be negative", c.MaxIdleConns))
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendMySQL, BackendMemory))
	}

	if c.MaxDateRangeDays < 1 {
		problems = append(problems, fmt.Sprintf("invalid MAX_DATE_RANGE_DAYS %d: must be at least 1", c.MaxDateRangeDays))
	}

	switch c.AuthProvider {
	case AuthSession:
	case AuthFirebase:
		if c.FirebaseProjectID == "" && c.FirebaseCredentialFile == "" {
			problems = append(problems, "firebase auth requires FIREBASE_PROJECT_ID or GOOGLE_APPLICATION_CREDENTIALS")
		}
	case AuthDev:
		if c.IsProduction() {
			problems = append(problems, "dev auth provider is not allowed in production")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid auth provider '%s': must be one of [%s %s %s]", c.AuthProvider, AuthSession, AuthFirebase, AuthDev))
	}

	if c.AuthProvider == AuthSession && c.DataBackend == BackendMemory && c.IsProduction() {
		problems = append(problems, "session auth on the memory backend is not allowed in production")
	}

	if c.RequestTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid REQUEST_TIMEOUT %v: must be at least 1 second", c.RequestTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// MySQLDSN returns the DSN for the application database. parseTime is forced on
// because DATE columns are scanned into time.Time.
func (c *Config) MySQLDSN() string {
	if c.FullDSN != "" {
		parsed, err := mysql.ParseDSN(c.FullDSN)
		if err != nil {
			return c.FullDSN
		}
		parsed.ParseTime = true
		return parsed.FormatDSN()
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// MySQLAdminDSN points at the server without selecting a schema; it is used to
// create the database on first start.
func (c *Config) MySQLAdminDSN() string {
	if c.FullDSN != "" {
		idx := strings.LastIndex(c.FullDSN, "/")
		if idx < 0 {
			return c.FullDSN
		}
		rest := c.FullDSN[idx+1:]
		params := ""
		if q := strings.Index(rest, "?"); q >= 0 {
			params = rest[q:]
		}
		return c.FullDSN[:idx+1] + params
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
