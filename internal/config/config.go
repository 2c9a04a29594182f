package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Skills   SkillsConfig   `mapstructure:"skills"`
	Import   ImportConfig   `mapstructure:"import"`
}

type AppConfig struct {
	AppName     string `mapstructure:"name"`
	Environment string `mapstructure:"env"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

type StoreConfig struct {
	Driver             string        `mapstructure:"driver"`
	OpTimeout          time.Duration `mapstructure:"op-timeout"`
	WorkerPartitions   int           `mapstructure:"worker-partitions"`
	ScatterConcurrency int           `mapstructure:"scatter-concurrency"`
}

type DatabaseConfig struct {
	DBHost     string `mapstructure:"host"`
	DBPort     string `mapstructure:"port"`
	DBName     string `mapstructure:"name"`
	DBUser     string `mapstructure:"user"`
	DBPassword string `mapstructure:"password"`
	DBSSLMode  string `mapstructure:"ssl-mode"`

	ConnectTimeout        time.Duration `mapstructure:"connect-timeout"`
	PoolMaxConns          int32         `mapstructure:"pool-max-conns"`
	PoolMinConns          int32         `mapstructure:"pool-min-conns"`
	PoolMaxConnLifetime   time.Duration `mapstructure:"pool-max-conn-lifetime"`
	PoolMaxConnIdleTime   time.Duration `mapstructure:"pool-max-conn-idle-time"`
	PoolHealthCheckPeriod time.Duration `mapstructure:"pool-health-check-period"`
}

type SQLiteConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ScoringConfig struct {
	WeightSkill    float64 `mapstructure:"weight-skill"`
	WeightLocation float64 `mapstructure:"weight-location"`
}

type SkillsConfig struct {
	// Synonyms is filled from SynonymFile and replaces the built-in table
	// when non-empty.
	Synonyms    map[string]string `mapstructure:"-"`
	SynonymFile string            `mapstructure:"synonym-file"`
}

type ImportConfig struct {
	Workers       int `mapstructure:"workers"`
	RatePerSecond int `mapstructure:"rate-per-second"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// envKeys keeps the environment names the deployment already uses.
var envKeys = map[string]string{
	"app.name":                          "APP_NAME",
	"app.env":                           "APP_ENV",
	"log.json":                          "LOG_JSON",
	"log.debug":                         "LOG_DEBUG",
	"store.driver":                      "STORE_DRIVER",
	"store.op-timeout":                  "STORE_OP_TIMEOUT",
	"store.worker-partitions":           "STORE_WORKER_PARTITIONS",
	"store.scatter-concurrency":         "STORE_SCATTER_CONCURRENCY",
	"database.host":                     "DB_HOST",
	"database.port":                     "DB_PORT",
	"database.name":                     "DB_NAME",
	"database.user":                     "DB_USER",
	"database.password":                 "DB_PASSWORD",
	"database.ssl-mode":                 "DB_SSL_MODE",
	"database.connect-timeout":          "DB_CONNECT_TIMEOUT",
	"database.pool-max-conns":           "DB_POOL_MAX_CONNS",
	"database.pool-min-conns":           "DB_POOL_MIN_CONNS",
	"database.pool-max-conn-lifetime":   "DB_POOL_MAX_CONN_LIFETIME",
	"database.pool-max-conn-idle-time":  "DB_POOL_MAX_CONN_IDLE_TIME",
	"database.pool-health-check-period": "DB_POOL_HEALTH_CHECK_PERIOD",
	"sqlite.dsn":                        "SQLITE_DSN",
	"redis.enabled":                     "REDIS_ENABLED",
	"redis.host":                        "REDIS_HOST",
	"redis.port":                        "REDIS_PORT",
	"redis.password":                    "REDIS_PASSWORD",
	"redis.db":                          "REDIS_DB",
	"scoring.weight-skill":              "SCORING_WEIGHT_SKILL",
	"scoring.weight-location":           "SCORING_WEIGHT_LOCATION",
	"skills.synonym-file":               "SKILLS_SYNONYM_FILE",
	"import.workers":                    "IMPORT_WORKERS",
	"import.rate-per-second":            "IMPORT_RATE_PER_SECOND",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "workboard")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)

	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.op-timeout", 5*time.Second)
	v.SetDefault("store.worker-partitions", 8)
	v.SetDefault("store.scatter-concurrency", 8)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl-mode", "disable")
	v.SetDefault("database.connect-timeout", 5*time.Second)
	v.SetDefault("database.pool-max-conns", 10)
	v.SetDefault("database.pool-min-conns", 0)
	v.SetDefault("database.pool-max-conn-lifetime", time.Hour)
	v.SetDefault("database.pool-max-conn-idle-time", 30*time.Minute)
	v.SetDefault("database.pool-health-check-period", time.Minute)

	v.SetDefault("sqlite.dsn", "workboard.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("scoring.weight-skill", 0.7)
	v.SetDefault("scoring.weight-location", 0.3)

	v.SetDefault("skills.synonym-file", "")

	v.SetDefault("import.workers", 4)
	v.SetDefault("import.rate-per-second", 0)
}

// Load reads defaults, an optional config file, a .env file in the working
// directory and the process environment, in increasing precedence.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Skills.SynonymFile != "" {
		syn, err := loadSynonymFile(cfg.Skills.SynonymFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Skills.Synonyms = syn
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadSynonymFile uses a non-dot key delimiter because skill names such as
// "node.js" contain dots.
func loadSynonymFile(path string) (map[string]string, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading synonym file %s: %w", path, err)
	}
	raw := v.GetStringMapString("synonyms")
	if len(raw) == 0 {
		return nil, fmt.Errorf("synonym file %s has no synonyms table", path)
	}
	return raw, nil
}

func (c Config) Validate() error {
	var missing []string
	req := func(env, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, env)
		}
	}

	switch c.Store.Driver {
	case DriverPostgres:
		req("DB_HOST", c.Database.DBHost)
		req("DB_PORT", c.Database.DBPort)
		req("DB_NAME", c.Database.DBName)
		req("DB_USER", c.Database.DBUser)
	case DriverSQLite:
		req("SQLITE_DSN", c.SQLite.DSN)
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	if c.Store.WorkerPartitions <= 0 {
		return fmt.Errorf("store.worker-partitions must be positive, got %d", c.Store.WorkerPartitions)
	}
	if c.Store.OpTimeout <= 0 {
		return fmt.Errorf("store.op-timeout must be positive, got %s", c.Store.OpTimeout)
	}
	return nil
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}
