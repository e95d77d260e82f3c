package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Risk        RiskConfig
	OpenAI      OpenAIConfig
	Storage     StorageConfig
	Moderation  ModerationConfig
	Dispatch    DispatchConfig
	Translation TranslationConfig
	Worker      WorkerConfig
	Log         LogConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type RiskConfig struct {
	Provider string
	BaseURL  string
	Timeout  time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type StorageConfig struct {
	Driver       string
	SupabaseURL  string
	SupabaseKey  string
	Bucket       string
	Timeout      time.Duration
	SignedURLTTL time.Duration
}

type ModerationConfig struct {
	RiskRejectThreshold       int
	MinReasonLength           int
	MinAppealLength           int
	FanOutLimit               int
	AllowAppealAfterRejection bool
}

type DispatchConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

type TranslationConfig struct {
	Languages []string
}

type WorkerConfig struct {
	CascadeSweepSchedule string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	RiskProviderHTTP   = "http"
	RiskProviderOpenAI = "openai"
)

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_CONNECT_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ACCESS_EXPIRES_IN", 15*time.Minute)
	v.SetDefault("RISK_PROVIDER", RiskProviderHTTP)
	v.SetDefault("RISK_TIMEOUT", 8*time.Second)
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("STORAGE_BUCKET", "moderation-evidence")
	v.SetDefault("STORAGE_TIMEOUT", 15*time.Second)
	v.SetDefault("SIGNED_URL_TTL", 10*time.Minute)
	v.SetDefault("MODERATION_RISK_REJECT_THRESHOLD", 70)
	v.SetDefault("MODERATION_MIN_REASON_LENGTH", 10)
	v.SetDefault("MODERATION_MIN_APPEAL_LENGTH", 50)
	v.SetDefault("MODERATION_FANOUT_LIMIT", 50)
	v.SetDefault("MODERATION_ALLOW_APPEAL_AFTER_REJECTION", false)
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 1024)
	v.SetDefault("DISPATCH_TASK_TIMEOUT", 10*time.Second)
	v.SetDefault("TRANSLATION_LANGUAGES", "ms,zh")
	v.SetDefault("CASCADE_SWEEP_SCHEDULE", "@every 10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			missing = append(missing, key)
		}
		return s
	}
	opt := func(key string) string {
		return strings.TrimSpace(v.GetString(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("DB_HOST"),
		DBPort:                opt("DB_PORT"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBSSLMode:             opt("DB_SSL_MODE"),
		ConnectTimeout:        v.GetDuration("DB_CONNECT_TIMEOUT"),
		PoolMaxConns:          v.GetInt32("DB_POOL_MAX_CONNS"),
		PoolMinConns:          v.GetInt32("DB_POOL_MIN_CONNS"),
		PoolMaxConnLifetime:   v.GetDuration("DB_POOL_MAX_CONN_LIFETIME"),
		PoolMaxConnIdleTime:   v.GetDuration("DB_POOL_MAX_CONN_IDLE_TIME"),
		PoolHealthCheckPeriod: v.GetDuration("DB_POOL_HEALTH_CHECK_PERIOD"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: v.GetDuration("JWT_ACCESS_EXPIRES_IN"),
	}

	cfg.Risk = RiskConfig{
		Provider: strings.ToLower(opt("RISK_PROVIDER")),
		BaseURL:  opt("RISK_BASE_URL"),
		Timeout:  v.GetDuration("RISK_TIMEOUT"),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:  opt("OPENAI_API_KEY"),
		Model:   opt("OPENAI_MODEL"),
		BaseURL: opt("OPENAI_BASE_URL"),
	}

	cfg.Storage = StorageConfig{
		Driver:       strings.ToLower(opt("STORAGE_DRIVER")),
		SupabaseURL:  opt("SUPABASE_URL"),
		SupabaseKey:  opt("SUPABASE_KEY"),
		Bucket:       opt("STORAGE_BUCKET"),
		Timeout:      v.GetDuration("STORAGE_TIMEOUT"),
		SignedURLTTL: v.GetDuration("SIGNED_URL_TTL"),
	}

	cfg.Moderation = ModerationConfig{
		RiskRejectThreshold:       v.GetInt("MODERATION_RISK_REJECT_THRESHOLD"),
		MinReasonLength:           v.GetInt("MODERATION_MIN_REASON_LENGTH"),
		MinAppealLength:           v.GetInt("MODERATION_MIN_APPEAL_LENGTH"),
		FanOutLimit:               v.GetInt("MODERATION_FANOUT_LIMIT"),
		AllowAppealAfterRejection: v.GetBool("MODERATION_ALLOW_APPEAL_AFTER_REJECTION"),
	}

	cfg.Dispatch = DispatchConfig{
		Workers:     v.GetInt("DISPATCH_WORKERS"),
		QueueSize:   v.GetInt("DISPATCH_QUEUE_SIZE"),
		TaskTimeout: v.GetDuration("DISPATCH_TASK_TIMEOUT"),
	}

	cfg.Translation = TranslationConfig{Languages: splitList(opt("TRANSLATION_LANGUAGES"))}
	cfg.Worker = WorkerConfig{CascadeSweepSchedule: opt("CASCADE_SWEEP_SCHEDULE")}
	cfg.Log = LogConfig{Level: opt("LOG_LEVEL"), Format: strings.ToLower(opt("LOG_FORMAT"))}

	if cfg.Storage.Driver != StorageDriverPostgres && cfg.Storage.Driver != StorageDriverMemory {
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Risk.Provider != RiskProviderHTTP && cfg.Risk.Provider != RiskProviderOpenAI {
		return Config{}, fmt.Errorf("invalid RISK_PROVIDER %q", cfg.Risk.Provider)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	env := strings.ToLower(c.App.Environment)
	return env == "development" || env == "dev" || env == "local"
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
