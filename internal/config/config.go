package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port          int
	DBDSN         string
	DBMigrate     bool
	RedisURL      string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	JWTSecret     string
	CookieSecret  string
	AllowOrigins  []string
	LogLevel      string
	LogFormat     string

	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig

	Security   SecurityConfig
	Storage    StorageConfig
	Monitoring MonitoringConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// SecurityConfig liga as cadeias opcionais de middleware.
type SecurityConfig struct {
	CheckOrigin        bool
	GenerateCSRF       bool
	ValidateCSRF       bool
	SecurityHeadersLog bool
}

// StorageConfig descreve o bucket de fotos dos itens.
type StorageConfig struct {
	Provider   string
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	PublicHost string
}

// MonitoringConfig controla os jobs agendados.
type MonitoringConfig struct {
	Enabled         bool
	Schedule        string
	PurgeSchedule   string
	SlackWebhookURL string
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = resolveDSN()
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}
	cfg.DBMigrate = parseBoolEnv("DB_MIGRATE", true)

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTRefreshTTL, err = parseDurationEnv("JWT_REFRESH_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	cfg.CookieSecret = strings.TrimSpace(getEnv("COOKIE_SECRET", ""))
	if cfg.CookieSecret == "" {
		cfg.CookieSecret = cfg.JWTSecret
	}
	if len(cfg.CookieSecret) < 32 {
		return nil, errors.New("COOKIE_SECRET deve ter pelo menos 32 caracteres")
	}

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", "console")))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.Security = SecurityConfig{
		CheckOrigin:        parseBoolEnv("CHECK_ORIGIN", false),
		GenerateCSRF:       parseBoolEnv("GENERATE_CSRF", false),
		ValidateCSRF:       parseBoolEnv("VALIDATE_CSRF", false),
		SecurityHeadersLog: parseBoolEnv("SECURITY_HEADERS_LOG", false),
	}

	cfg.Storage = StorageConfig{
		Provider:   strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", "minio"))),
		Endpoint:   strings.TrimSpace(getEnv("MINIO_ENDPOINT", "http://localhost:9000")),
		Region:     strings.TrimSpace(getEnv("MINIO_REGION", "us-east-1")),
		Bucket:     strings.TrimSpace(getEnv("MINIO_BUCKET_NAME", "solidarios")),
		AccessKey:  strings.TrimSpace(getEnv("MINIO_ACCESS_KEY", "")),
		SecretKey:  strings.TrimSpace(getEnv("MINIO_SECRET_KEY", "")),
		PublicHost: strings.TrimSpace(getEnv("API_BASE_URL", "")),
	}

	cfg.Monitoring = MonitoringConfig{
		Enabled:         parseBoolEnv("INVENTORY_MONITOR_ENABLED", false),
		Schedule:        strings.TrimSpace(getEnv("INVENTORY_MONITOR_SCHEDULE", "@every 30m")),
		PurgeSchedule:   strings.TrimSpace(getEnv("REFRESH_PURGE_SCHEDULE", "@daily")),
		SlackWebhookURL: strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", "")),
	}

	return cfg, nil
}

// resolveDSN aceita DB_DSN, DATABASE_URL ou as variáveis DB_* separadas.
func resolveDSN() string {
	if dsn := strings.TrimSpace(getEnv("DB_DSN", "")); dsn != "" {
		return dsn
	}
	if dsn := strings.TrimSpace(getEnv("DATABASE_URL", "")); dsn != "" {
		return dsn
	}
	host := strings.TrimSpace(getEnv("DB_HOST", ""))
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnv("DB_USERNAME", "postgres"), getEnv("DB_PASSWORD", "postgres")),
		Host:   fmt.Sprintf("%s:%s", host, getEnv("DB_PORT", "5432")),
		Path:   "/" + getEnv("DB_DATABASE", "solidarios"),
	}
	q := u.Query()
	q.Set("sslmode", getEnv("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseBoolEnv(key string, def bool) bool {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
