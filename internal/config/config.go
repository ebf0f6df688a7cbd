package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string   `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	CORSOrigins []string `yaml:"cors-origins" env:"CORS_ORIGINS" env-default:"*"`

	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	JWT      JWT      `yaml:"jwt"`
	Stats    Stats    `yaml:"stats"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"tictactoe"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Name     string `yaml:"name" env:"POSTGRES_DB" env-default:"tictactoe"`
	SSLMode  string `yaml:"ssl-mode" env:"POSTGRES_SSL_MODE" env-default:"disable"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type JWT struct {
	SecretKey string        `yaml:"secret-key" env:"JWT_SECRET_KEY"`
	TokenTTL  time.Duration `yaml:"token-ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

type Stats struct {
	CacheTTL time.Duration `yaml:"cache-ttl" env:"STATS_CACHE_TTL" env-default:"30s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Postgres) GetDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		that.Host, that.User, that.Password, that.Name, that.Port, that.SSLMode)
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
