package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string `validate:"oneof=local dev prod"`
	DB       DB
	Server   Server
	Logger   Logger
	Redis    Redis
	Share    Share
	RMM      Upstream
	EDR      Upstream
	Upstream Limits
	Sync     Sync
	Session  Session
}

type DB struct {
	DatabaseURI string `validate:"required"`
}

type Server struct {
	RunAddress string `validate:"required"`
}

type Logger struct {
	LogLevel string
}

type Redis struct {
	Address  string
	Password string
	DB       int `validate:"gte=0"`
}

type Share struct {
	Secret        string `validate:"required,min=16"`
	PublicBaseURL string `validate:"required,url"`
}

// Upstream описывает эндпоинт одного провайдера. Пустой URL отключает
// провайдера.
type Upstream struct {
	URL    string `validate:"omitempty,url"`
	APIKey string `validate:"required_with=URL"`
}

type Limits struct {
	Timeout time.Duration `validate:"gt=0"`
	RPS     float64       `validate:"gt=0"`
	Burst   int           `validate:"gte=1"`
}

type Sync struct {
	Interval    time.Duration `validate:"gt=0"`
	Loop        bool
	MaxDevices  int           `validate:"gte=0"`
	Concurrency int           `validate:"gte=1"`
	CacheTTL    time.Duration `validate:"gt=0"`
}

type Session struct {
	TTL time.Duration `validate:"gt=0"`
}

// Enabled сообщает, настроен ли провайдер.
func (u Upstream) Enabled() bool {
	return u.URL != ""
}

func setDefaults() {
	viper.SetDefault("app_env", EnvLocal)
	viper.SetDefault("run_address", ":8080")
	viper.SetDefault("database_uri", "sqlite://fleetreport.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("redis_db", 0)
	viper.SetDefault("public_base_url", "http://localhost:8080")
	viper.SetDefault("upstream_timeout", 30*time.Second)
	viper.SetDefault("upstream_rps", 10.0)
	viper.SetDefault("upstream_burst", 5)
	viper.SetDefault("sync_interval", 5*time.Minute)
	viper.SetDefault("sync_loop", true)
	viper.SetDefault("sync_max_devices", 30)
	viper.SetDefault("sync_concurrency", 8)
	viper.SetDefault("cache_ttl", 5*time.Minute)
	viper.SetDefault("session_ttl", 24*time.Hour)
}

// Load читает .env (если есть) и окружение процесса.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	setDefaults()

	cfg := &Config{
		Env:    strings.ToLower(viper.GetString("app_env")),
		DB:     DB{DatabaseURI: viper.GetString("database_uri")},
		Server: Server{RunAddress: viper.GetString("run_address")},
		Logger: Logger{LogLevel: viper.GetString("log_level")},
		Redis: Redis{
			Address:  viper.GetString("redis_address"),
			Password: viper.GetString("redis_password"),
			DB:       viper.GetInt("redis_db"),
		},
		Share: Share{
			Secret:        viper.GetString("share_secret"),
			PublicBaseURL: strings.TrimRight(viper.GetString("public_base_url"), "/"),
		},
		RMM: Upstream{URL: viper.GetString("rmm_url"), APIKey: viper.GetString("rmm_api_key")},
		EDR: Upstream{URL: viper.GetString("edr_url"), APIKey: viper.GetString("edr_api_key")},
		Upstream: Limits{
			Timeout: viper.GetDuration("upstream_timeout"),
			RPS:     viper.GetFloat64("upstream_rps"),
			Burst:   viper.GetInt("upstream_burst"),
		},
		Sync: Sync{
			Interval:    viper.GetDuration("sync_interval"),
			Loop:        viper.GetBool("sync_loop"),
			MaxDevices:  viper.GetInt("sync_max_devices"),
			Concurrency: viper.GetInt("sync_concurrency"),
			CacheTTL:    viper.GetDuration("cache_ttl"),
		},
		Session: Session{TTL: viper.GetDuration("session_ttl")},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalln(err)
	}
	return cfg
}

// Dialect возвращает "postgres" или "sqlite" в зависимости от DATABASE_URI.
func (d DB) Dialect() string {
	if strings.HasPrefix(d.DatabaseURI, "postgres://") || strings.HasPrefix(d.DatabaseURI, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// SQLitePath отрезает схему sqlite:// или file:.
func (d DB) SQLitePath() string {
	path := strings.TrimPrefix(d.DatabaseURI, "sqlite://")
	return strings.TrimPrefix(path, "file:")
}
