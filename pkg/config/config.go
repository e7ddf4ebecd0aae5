package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "MHSFASHION_APP_ENV"
	EnvPort       = "MHSFASHION_APP_PORT"
	EnvMongoURI   = "MHSFASHION_MONGO_URI"
	EnvDBUser     = "MHSFASHION_DB_USER"
	EnvDBPassword = "MHSFASHION_DB_PASSWORD"
	EnvRedisURL   = "MHSFASHION_REDIS_URL"
)

var legacyMongoEnvVars = []string{EnvDBUser, EnvDBPassword}

type Config struct {
	App   AppConfig
	Mongo MongoConfig
	Redis RedisConfig
	Cache CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Mongo.ensureURI(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MHSFASHION_APP_ENV" required:"true"`
	Port         string `envconfig:"MHSFASHION_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"MHSFASHION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MHSFASHION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MongoConfig struct {
	URI      string `envconfig:"MHSFASHION_MONGO_URI"`
	Database string `envconfig:"MHSFASHION_MONGO_DATABASE" default:"MHSfashion"`

	LegacyUser     string `envconfig:"MHSFASHION_DB_USER"`
	LegacyPassword string `envconfig:"MHSFASHION_DB_PASSWORD"`
	LegacyCluster  string `envconfig:"MHSFASHION_DB_CLUSTER" default:"cluster0.4zcowrs.mongodb.net"`
	LegacyAppName  string `envconfig:"MHSFASHION_DB_APP_NAME" default:"Cluster0"`

	ConnectTimeout         time.Duration `envconfig:"MHSFASHION_MONGO_CONNECT_TIMEOUT" default:"10s"`
	ServerSelectionTimeout time.Duration `envconfig:"MHSFASHION_MONGO_SERVER_SELECTION_TIMEOUT" default:"5s"`
	MaxPoolSize            uint64        `envconfig:"MHSFASHION_MONGO_MAX_POOL_SIZE" default:"100"`
	MinPoolSize            uint64        `envconfig:"MHSFASHION_MONGO_MIN_POOL_SIZE" default:"10"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MHSFASHION_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MHSFASHION_REDIS_ADDR"`
	Password     string        `envconfig:"MHSFASHION_REDIS_PASSWORD"`
	DB           int           `envconfig:"MHSFASHION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MHSFASHION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MHSFASHION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MHSFASHION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MHSFASHION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MHSFASHION_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	CountsTTL time.Duration `envconfig:"MHSFASHION_CACHE_COUNTS_TTL" default:"5m"`
}

func (m *MongoConfig) ensureURI() error {
	if m.URI != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBUser:     m.LegacyUser,
		EnvDBPassword: m.LegacyPassword,
	}
	for _, env := range legacyMongoEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvMongoURI, strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "mongodb+srv",
		User:   url.UserPassword(m.LegacyUser, m.LegacyPassword),
		Host:   m.LegacyCluster,
		Path:   "/",
	}

	q := u.Query()
	q.Set("retryWrites", "true")
	q.Set("w", "majority")
	q.Set("appName", m.LegacyAppName)
	u.RawQuery = q.Encode()

	m.URI = u.String()
	return nil
}
