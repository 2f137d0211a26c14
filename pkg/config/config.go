package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	configHolder atomic.Value
	backend      = "consul"
	backendAddr  = "127.0.0.1:8500"
	backendPath  = "development" // e.g., app/<env>/<service_name>
	configType   = "yaml"
)

type Config struct {
	AppEnv        string `mapstructure:"APP_ENV"`
	AppName       string `mapstructure:"APP_NAME"`
	AppVersion    string `mapstructure:"APP_VERSION"`
	SnowflakeNode int64  `mapstructure:"SNOWFLAKE_NODE"`
	TLS           struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Cache struct {
		TTL   time.Duration `mapstructure:"TTL"`
		Local bool          `mapstructure:"LOCAL"`
	} `mapstructure:"CACHE"`
	Kafka struct {
		Addrs string `mapstructure:"ADDR"`
		Topic string `mapstructure:"TOPIC"`
		// How long librdkafka keeps retrying one message before dropping it.
		MessageTimeout time.Duration `mapstructure:"MESSAGE_TIMEOUT"`
	} `mapstructure:"KAFKA"`
	Worker struct {
		Concurrency int `mapstructure:"CONCURRENCY"`
	} `mapstructure:"WORKER"`
	Game struct {
		URL          string        `mapstructure:"URL"`
		Queue        string        `mapstructure:"QUEUE"`
		QueryTimeout time.Duration `mapstructure:"QUERY_TIMEOUT"`
		RetryCount   int           `mapstructure:"RETRY_COUNT"`
		// Retries of the grant task on the authority's queue.
		GrantMaxRetry int `mapstructure:"GRANT_MAX_RETRY"`
		// Callback queue the authority enqueues result tasks on.
		CallbackQueue string `mapstructure:"CALLBACK_QUEUE"`
		// Base URL of this service, called by the authority to mark a grant
		// as processing.
		CallbackURL string `mapstructure:"CALLBACK_URL"`
	} `mapstructure:"GAME"`
	RateLimit struct {
		RewardRequestPerMinute int `mapstructure:"REWARD_REQUEST_PER_MINUTE"`
	} `mapstructure:"RATE_LIMIT"`
	Simulator struct {
		DefaultValue float64            `mapstructure:"DEFAULT_VALUE"`
		Fields       map[string]float64 `mapstructure:"FIELDS"`
		ResultDelay  time.Duration      `mapstructure:"RESULT_DELAY"`
		FailureRate  float64            `mapstructure:"FAILURE_RATE"`
		// Timeout of the synchronous processing callback.
		CallbackTimeout time.Duration `mapstructure:"CALLBACK_TIMEOUT"`
	} `mapstructure:"SIMULATOR"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))
var RemoteModule = fx.Module("remote.config", fx.Provide(LoadRemote))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

// SetDefaults registers the default value of every key so that environment
// variables can override keys that are absent from config.yaml.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "promotion")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("SNOWFLAKE_NODE", 1)

	v.SetDefault("TLS.ENABLE", false)
	v.SetDefault("TLS.CERT_PATH", "")
	v.SetDefault("TLS.KEY_PATH", "")
	v.SetDefault("OTEL.ADDR", "")
	v.SetDefault("OTEL.PROTOCOL", "http")
	v.SetDefault("PYROSCOPE.ADDR", "")

	v.SetDefault("HTTP_SERVER.ADDR", "8080")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)

	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", "5432")
	v.SetDefault("DATABASE.DBNAME", "promotion")
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("DATABASE.TIMEZONE", "UTC")
	v.SetDefault("DATABASE.AUTO_MIGRATE", true)
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_IDLE_CONN", 10)
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS", 50)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_IDLE_TIME", 10*time.Minute)

	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.POOL_SIZE", 20)
	v.SetDefault("REDIS.POOL_TIMEOUT", 4*time.Second)

	v.SetDefault("CACHE.TTL", 5*time.Minute)
	v.SetDefault("CACHE.LOCAL", true)

	v.SetDefault("KAFKA.ADDR", "")
	v.SetDefault("KAFKA.TOPIC", "promotion.reward-request.status")
	v.SetDefault("KAFKA.MESSAGE_TIMEOUT", 30*time.Second)

	v.SetDefault("WORKER.CONCURRENCY", 10)

	v.SetDefault("GAME.URL", "http://localhost:8090")
	v.SetDefault("GAME.QUEUE", "game")
	v.SetDefault("GAME.QUERY_TIMEOUT", 3*time.Second)
	v.SetDefault("GAME.RETRY_COUNT", 2)
	v.SetDefault("GAME.GRANT_MAX_RETRY", 5)
	v.SetDefault("GAME.CALLBACK_QUEUE", "promotion")
	v.SetDefault("GAME.CALLBACK_URL", "http://localhost:8080")

	v.SetDefault("RATE_LIMIT.REWARD_REQUEST_PER_MINUTE", 30)

	v.SetDefault("SIMULATOR.DEFAULT_VALUE", 7)
	v.SetDefault("SIMULATOR.FIELDS", map[string]float64{})
	v.SetDefault("SIMULATOR.RESULT_DELAY", 5*time.Second)
	v.SetDefault("SIMULATOR.FAILURE_RATE", 0.1)
	v.SetDefault("SIMULATOR.CALLBACK_TIMEOUT", 5*time.Second)
}

// Load reads config.yaml (if present) and the environment into a Config.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType(configType)
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func LoadConfig(p Params) *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		zap.L().Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}

	if p.Vault != nil {
		applySecrets(p.Vault, cfg)
	}

	return cfg
}

func LoadRemote(p Params) *Config {
	if p.Vault == nil {
		zap.L().Error("vault can't provide")
		os.Exit(1)
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok {
		backend = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_ADDR"); ok {
		backendAddr = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_PATH"); ok {
		backendPath = v
	}

	remote := viper.New()
	SetDefaults(remote)
	remote.SetConfigType(configType)
	if err := remote.AddRemoteProvider(backend, backendAddr, backendPath); err != nil {
		zap.L().Error("failed to add remote config provider", zap.String("backend", backend), zap.Error(err))
		os.Exit(1)
	}

	if err := remote.ReadRemoteConfig(); err != nil {
		zap.L().Error("failed to read remote config", zap.String("path", backendPath), zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := remote.Unmarshal(&cfg); err != nil {
		os.Exit(1)
	}
	configHolder.Store(&cfg)

	go func() {
		for {
			time.Sleep(time.Second * 5)

			if err := remote.WatchRemoteConfig(); err != nil {
				zap.L().Error("unable to read remote config", zap.Error(err))
				continue
			}

			var newcfg Config
			if err := remote.Unmarshal(&newcfg); err != nil {
				zap.L().Error("unable to decode remote config", zap.Error(err))
				continue
			}
			configHolder.Store(&newcfg)
		}
	}()

	applySecrets(p.Vault, &cfg)

	return &cfg
}

// Current returns the latest remote config, if remote loading is in use.
func Current() (*Config, bool) {
	cfg, ok := configHolder.Load().(*Config)
	return cfg, ok
}

func applySecrets(client *vault.Client, cfg *Config) {
	ctx := context.Background()

	zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		zap.L().Error("failed get secret from vault", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("Success Get Secret")

	get := func(key, fallback string) string {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			return val
		}
		return fallback
	}

	cfg.Database.User = get("postgres_user", cfg.Database.User)
	cfg.Database.Password = get("postgres_password", cfg.Database.Password)
	cfg.Redis.Password = get("redis_password", cfg.Redis.Password)
}
