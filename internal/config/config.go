package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the runtime configuration of the API server.
type Config struct {
	Env           string `mapstructure:"env" json:"env" validate:"oneof=development production"`
	Port          string `mapstructure:"port" json:"port" validate:"required,numeric"`
	StorageDriver string `mapstructure:"storage_driver" json:"storage_driver" validate:"oneof=postgres memory"`

	DB struct {
		Host            string        `mapstructure:"host" json:"host" validate:"required"`
		Port            string        `mapstructure:"port" json:"port"`
		User            string        `mapstructure:"user" json:"user"`
		Password        string        `mapstructure:"password" json:"-"`
		Name            string        `mapstructure:"name" json:"name"`
		SSLMode         string        `mapstructure:"sslmode" json:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
		MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns" validate:"min=1"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns" validate:"min=0"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`
	} `mapstructure:"db" json:"db"`

	Redis struct {
		Enabled bool `mapstructure:"enabled" json:"enabled"`
		// URL, when set, replaces host, port, password and db.
		URL      string `mapstructure:"url" json:"-" validate:"omitempty,url"`
		Host     string `mapstructure:"host" json:"host"`
		Port     string `mapstructure:"port" json:"port"`
		Password string `mapstructure:"password" json:"-"`
		DB       int    `mapstructure:"db" json:"db" validate:"min=0,max=15"`
		PoolSize int    `mapstructure:"pool_size" json:"pool_size" validate:"min=1"`
	} `mapstructure:"redis" json:"redis"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret" json:"-" validate:"required,min=16"`
		Issuer    string        `mapstructure:"issuer" json:"issuer" validate:"required"`
		TokenTTL  time.Duration `mapstructure:"token_ttl" json:"token_ttl" validate:"gt=0"`
	} `mapstructure:"auth" json:"auth"`

	Log struct {
		Level      string `mapstructure:"level" json:"level" validate:"oneof=debug info warn error"`
		File       string `mapstructure:"file" json:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days"`
	} `mapstructure:"log" json:"log"`

	RateLimit struct {
		Requests int           `mapstructure:"requests" json:"requests" validate:"min=1"`
		Window   time.Duration `mapstructure:"window" json:"window" validate:"gt=0"`
	} `mapstructure:"rate_limit" json:"rate_limit"`

	Worker struct {
		QueueSize int `mapstructure:"queue_size" json:"queue_size" validate:"min=1"`
	} `mapstructure:"worker" json:"worker"`

	Snapshot struct {
		Backend    string `mapstructure:"backend" json:"backend" validate:"oneof=postgres sqlite"`
		SQLitePath string `mapstructure:"sqlite_path" json:"sqlite_path"`
		CodeLength int    `mapstructure:"code_length" json:"code_length" validate:"min=6,max=32"`
	} `mapstructure:"snapshot" json:"snapshot"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins"`
	} `mapstructure:"cors" json:"cors"`
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("storage_driver", "postgres")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "kanso")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 25)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "kanso-study-engine")
	v.SetDefault("auth.token_ttl", 72*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("worker.queue_size", 100)

	v.SetDefault("snapshot.backend", "postgres")
	v.SetDefault("snapshot.sqlite_path", "snapshots.db")
	v.SetDefault("snapshot.code_length", 10)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Load reads the configuration from defaults, an optional config file given
// with --config, a .env file and the environment, in increasing priority.
// Environment keys use underscores for nesting: DB_HOST, AUTH_JWT_SECRET.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("kanso", pflag.ContinueOnError)
	configFile := fs.String("config", "", "path to a config file (yaml, json or toml)")
	envFile := fs.String("env-file", ".env", "dotenv file to load if present")
	fs.String("port", "", "listening port")
	fs.String("env", "", "runtime environment, 'development' or 'production'")
	fs.String("log.level", "", "logging level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *envFile != "" {
		// a missing .env is fine, the environment may already be set
		_ = godotenv.Load(*envFile)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for _, name := range []string{"port", "env", "log.level"} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			v.Set(name, f.Value.String())
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindLegacyEnv keeps the short variable names used by docker-compose files.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("auth.issuer", "AUTH_ISSUER", "JWT_ISSUER")
}

// Validate checks struct tags and returns every violation in one error.
func Validate(cfg *Config) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	var msg []string
	for _, field := range verrs {
		namespace := field.Namespace()
		fieldName := namespace[strings.IndexByte(namespace, '.')+1:]
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", fieldName))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
		default:
			msg = append(msg, fmt.Sprintf("%s failed %s=%s", fieldName, field.Tag(), field.Param()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msg, "; "))
}
