package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	OCR       OCRConfig
	Classify  ClassifyConfig
	Extractor ExtractorConfig
	RefData   RefDataConfig
	Queue     QueueConfig
	Export    ExportConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds per-client request rate limit settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// OCRConfig holds OCR reader settings.
type OCRConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	Engine      string `mapstructure:"engine"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ClassifyConfig holds document type classification settings.
type ClassifyConfig struct {
	FormLanguage  string  `mapstructure:"form_language"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

// ExtractorProviderConfig holds settings for a single LLM extractor provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds LLM extraction settings.
type ExtractorConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Samples is the number of concurrent extraction passes per document.
	Samples int `mapstructure:"samples"`
	// ReconcileMode selects how samples are merged: "statistical" or "model".
	ReconcileMode  string `mapstructure:"reconcile_mode"`
	ReconcileModel string `mapstructure:"reconcile_model"`

	MaxRetries     int `mapstructure:"max_retries"`
	RetryDelaySecs int `mapstructure:"retry_delay_secs"`

	// FallbackProvider, when set, names a second provider tried whenever the
	// primary fails or is rate limited.
	FallbackProvider string `mapstructure:"fallback_provider"`
	FallbackAPIKey   string `mapstructure:"fallback_api_key"`
	FallbackModel    string `mapstructure:"fallback_model"`
}

// ProviderConfig returns the extractor settings as a provider config.
func (e *ExtractorConfig) ProviderConfig() *ExtractorProviderConfig {
	return &ExtractorProviderConfig{
		Provider:     e.Provider,
		APIKey:       e.APIKey,
		DefaultModel: e.DefaultModel,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// FallbackProviderConfig returns the settings for the fallback provider, or
// nil when none is configured.
func (e *ExtractorConfig) FallbackProviderConfig() *ExtractorProviderConfig {
	if e.FallbackProvider == "" {
		return nil
	}
	return &ExtractorProviderConfig{
		Provider:     e.FallbackProvider,
		APIKey:       e.FallbackAPIKey,
		DefaultModel: e.FallbackModel,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// RefDataConfig holds reference workbook locations.
type RefDataConfig struct {
	EmployeesFile string `mapstructure:"employees_file"`
	ProjectsFile  string `mapstructure:"projects_file"`
	CitiesFile    string `mapstructure:"cities_file"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// ExportConfig holds monthly export settings.
type ExportConfig struct {
	Recipient     string `mapstructure:"recipient"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// Load reads configuration from environment variables with the FELDBELEG_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FELDBELEG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "feldbeleg")
	v.SetDefault("db.password", "feldbeleg_secret")
	v.SetDefault("db.name", "feldbeleg_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "feldbeleg")

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "feldbeleg-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	// OCR defaults
	v.SetDefault("ocr.endpoint", "http://localhost:8884")
	v.SetDefault("ocr.engine", "paddleocr")
	v.SetDefault("ocr.timeout_secs", 60)

	// Classification defaults
	v.SetDefault("classify.form_language", "de")
	v.SetDefault("classify.min_similarity", 0.15)

	// Extractor defaults
	v.SetDefault("extractor.provider", "openai")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "gpt-4o")
	v.SetDefault("extractor.timeout_secs", 120)
	v.SetDefault("extractor.samples", 3)
	v.SetDefault("extractor.reconcile_mode", "statistical")
	v.SetDefault("extractor.reconcile_model", "")
	v.SetDefault("extractor.max_retries", 3)
	v.SetDefault("extractor.retry_delay_secs", 1)
	v.SetDefault("extractor.fallback_provider", "")
	v.SetDefault("extractor.fallback_api_key", "")
	v.SetDefault("extractor.fallback_model", "")

	// Reference data defaults
	v.SetDefault("refdata.employees_file", "refdata/employees.xlsx")
	v.SetDefault("refdata.projects_file", "refdata/projects.xlsx")
	v.SetDefault("refdata.cities_file", "refdata/cities.xlsx")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 5)

	// Export defaults
	v.SetDefault("export.recipient", "")
	v.SetDefault("export.subject_prefix", "Monthly timesheet export")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@feldbeleg.local")
	v.SetDefault("email.from_name", "Feldbeleg")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "FELDBELEG_SERVER_PORT",
		"server.read_timeout":            "FELDBELEG_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "FELDBELEG_SERVER_WRITE_TIMEOUT",
		"server.environment":             "FELDBELEG_SERVER_ENVIRONMENT",
		"db.host":                        "FELDBELEG_DB_HOST",
		"db.port":                        "FELDBELEG_DB_PORT",
		"db.user":                        "FELDBELEG_DB_USER",
		"db.password":                    "FELDBELEG_DB_PASSWORD",
		"db.name":                        "FELDBELEG_DB_NAME",
		"db.sslmode":                     "FELDBELEG_DB_SSLMODE",
		"db.max_open":                    "FELDBELEG_DB_MAX_OPEN",
		"db.max_idle":                    "FELDBELEG_DB_MAX_IDLE",
		"jwt.secret":                     "FELDBELEG_JWT_SECRET",
		"jwt.access_expiry":              "FELDBELEG_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":             "FELDBELEG_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                     "FELDBELEG_JWT_ISSUER",
		"s3.region":                      "FELDBELEG_S3_REGION",
		"s3.bucket":                      "FELDBELEG_S3_BUCKET",
		"s3.endpoint":                    "FELDBELEG_S3_ENDPOINT",
		"s3.access_key":                  "FELDBELEG_S3_ACCESS_KEY",
		"s3.secret_key":                  "FELDBELEG_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "FELDBELEG_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "FELDBELEG_S3_PRESIGN_EXPIRY",
		"log.level":                      "FELDBELEG_LOG_LEVEL",
		"log.format":                     "FELDBELEG_LOG_FORMAT",
		"cors.allowed_origins":           "FELDBELEG_CORS_ALLOWED_ORIGINS",
		"rate_limit.requests_per_second": "FELDBELEG_RATE_LIMIT_REQUESTS_PER_SECOND",
		"rate_limit.burst":               "FELDBELEG_RATE_LIMIT_BURST",
		"ocr.endpoint":                   "FELDBELEG_OCR_ENDPOINT",
		"ocr.engine":                     "FELDBELEG_OCR_ENGINE",
		"ocr.timeout_secs":               "FELDBELEG_OCR_TIMEOUT_SECS",
		"classify.form_language":         "FELDBELEG_CLASSIFY_FORM_LANGUAGE",
		"classify.min_similarity":        "FELDBELEG_CLASSIFY_MIN_SIMILARITY",
		"extractor.provider":             "FELDBELEG_EXTRACTOR_PROVIDER",
		"extractor.api_key":              "FELDBELEG_EXTRACTOR_API_KEY",
		"extractor.default_model":        "FELDBELEG_EXTRACTOR_DEFAULT_MODEL",
		"extractor.timeout_secs":         "FELDBELEG_EXTRACTOR_TIMEOUT_SECS",
		"extractor.samples":              "FELDBELEG_EXTRACTOR_SAMPLES",
		"extractor.reconcile_mode":       "FELDBELEG_EXTRACTOR_RECONCILE_MODE",
		"extractor.reconcile_model":      "FELDBELEG_EXTRACTOR_RECONCILE_MODEL",
		"extractor.max_retries":          "FELDBELEG_EXTRACTOR_MAX_RETRIES",
		"extractor.retry_delay_secs":     "FELDBELEG_EXTRACTOR_RETRY_DELAY_SECS",
		"extractor.fallback_provider":    "FELDBELEG_EXTRACTOR_FALLBACK_PROVIDER",
		"extractor.fallback_api_key":     "FELDBELEG_EXTRACTOR_FALLBACK_API_KEY",
		"extractor.fallback_model":       "FELDBELEG_EXTRACTOR_FALLBACK_MODEL",
		"refdata.employees_file":         "FELDBELEG_REFDATA_EMPLOYEES_FILE",
		"refdata.projects_file":          "FELDBELEG_REFDATA_PROJECTS_FILE",
		"refdata.cities_file":            "FELDBELEG_REFDATA_CITIES_FILE",
		"queue.poll_interval_secs":       "FELDBELEG_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":              "FELDBELEG_QUEUE_MAX_RETRIES",
		"queue.concurrency":              "FELDBELEG_QUEUE_CONCURRENCY",
		"export.recipient":               "FELDBELEG_EXPORT_RECIPIENT",
		"export.subject_prefix":          "FELDBELEG_EXPORT_SUBJECT_PREFIX",
		"email.provider":                 "FELDBELEG_EMAIL_PROVIDER",
		"email.region":                   "FELDBELEG_EMAIL_REGION",
		"email.from_address":             "FELDBELEG_EMAIL_FROM_ADDRESS",
		"email.from_name":                "FELDBELEG_EMAIL_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FELDBELEG_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FELDBELEG_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("rate_limit.requests_per_second"),
		Burst:             v.GetInt("rate_limit.burst"),
	}
	cfg.OCR = OCRConfig{
		Endpoint:    v.GetString("ocr.endpoint"),
		Engine:      v.GetString("ocr.engine"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Classify = ClassifyConfig{
		FormLanguage:  v.GetString("classify.form_language"),
		MinSimilarity: v.GetFloat64("classify.min_similarity"),
	}
	cfg.Extractor = ExtractorConfig{
		Provider:       v.GetString("extractor.provider"),
		APIKey:         v.GetString("extractor.api_key"),
		DefaultModel:   v.GetString("extractor.default_model"),
		TimeoutSecs:    v.GetInt("extractor.timeout_secs"),
		Samples:        v.GetInt("extractor.samples"),
		ReconcileMode:  v.GetString("extractor.reconcile_mode"),
		ReconcileModel: v.GetString("extractor.reconcile_model"),
		MaxRetries:     v.GetInt("extractor.max_retries"),
		RetryDelaySecs: v.GetInt("extractor.retry_delay_secs"),

		FallbackProvider: v.GetString("extractor.fallback_provider"),
		FallbackAPIKey:   v.GetString("extractor.fallback_api_key"),
		FallbackModel:    v.GetString("extractor.fallback_model"),
	}
	cfg.RefData = RefDataConfig{
		EmployeesFile: v.GetString("refdata.employees_file"),
		ProjectsFile:  v.GetString("refdata.projects_file"),
		CitiesFile:    v.GetString("refdata.cities_file"),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Export = ExportConfig{
		Recipient:     v.GetString("export.recipient"),
		SubjectPrefix: v.GetString("export.subject_prefix"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	return cfg, nil
}
