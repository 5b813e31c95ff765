package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "STOREFRONT_CONFIG_FILE"
	envPrefix         = "STOREFRONT"
	dotEnvFile        = ".env"
)

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverBbolt  = "bbolt"
	CacheDriverSQL    = "sql"
)

var cacheDrivers = []string{
	CacheDriverMemory, CacheDriverRedis, CacheDriverBbolt, CacheDriverSQL,
}

type catalog struct {
	CacheDriver     string        `mapstructure:"cache_driver"`
	CacheKey        string        `mapstructure:"cache_key"`
	CacheRetries    int           `mapstructure:"cache_retries"`
	CacheRetryDelay time.Duration `mapstructure:"cache_retry_delay"`
	SeedFile        string        `mapstructure:"seed_file"`
}

type redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type bbolt struct {
	Path string `mapstructure:"path"`
}

type consumers struct {
	TrendingGroup string `mapstructure:"trending_group"`
}

type topics struct {
	SearchEvents string `mapstructure:"search_events"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type Broker struct {
	Enabled            bool      `mapstructure:"enabled"`
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
	TLS                brokerTLS `mapstructure:"tls"`
	User               string    `mapstructure:"user"`
	Pass               string    `mapstructure:"pass"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	Catalog        catalog    `mapstructure:"catalog"`
	Redis          redis      `mapstructure:"redis"`
	Bbolt          bbolt      `mapstructure:"bbolt"`
	Broker         Broker     `mapstructure:"broker"`
}

// Load reads the config file named by the --config flag or
// STOREFRONT_CONFIG_FILE and exits the process on failure.
func Load() Config {
	if err := LoadDotEnv(); err != nil {
		die(err)
	}

	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile decodes the config at path over the defaults.
// Empty path uses defaults and environment only.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("sql_db", "")

	v.SetDefault("catalog.cache_driver", CacheDriverMemory)
	v.SetDefault("catalog.cache_key", "storefront_products_cache")
	v.SetDefault("catalog.cache_retries", 3)
	v.SetDefault("catalog.cache_retry_delay", "50ms")
	v.SetDefault("catalog.seed_file", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.prefix", "storefront:")
	v.SetDefault("redis.ttl", "0s")

	v.SetDefault("bbolt.path", "storefront.db")

	v.SetDefault("broker.enabled", false)
	v.SetDefault("broker.seed_brokers", []string{"localhost:9092"})
	v.SetDefault("broker.schema_registry_urls", []string{"http://localhost:8081"})
	v.SetDefault("broker.topics.search_events", "storefront-search-events")
	v.SetDefault("broker.consumers.trending_group", "storefront-trending")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
	v.SetDefault("broker.user", "")
	v.SetDefault("broker.pass", "")
}

func (c Config) validate() error {
	if !slices.Contains(cacheDrivers, c.Catalog.CacheDriver) {
		return fmt.Errorf(
			"catalog.cache_driver %q is not one of %s",
			c.Catalog.CacheDriver, strings.Join(cacheDrivers, ", "),
		)
	}
	if c.Catalog.CacheDriver == CacheDriverSQL && c.SQLDB == "" {
		return errors.New("sql_db is required by the sql cache driver")
	}
	if c.Catalog.CacheRetries < 1 {
		return errors.New("catalog.cache_retries must be positive")
	}

	if !c.Broker.Enabled {
		return nil
	}
	if len(c.Broker.SeedBrokers) == 0 {
		return errors.New("broker.seed_brokers is required")
	}
	if len(c.Broker.SchemaRegistryURLs) == 0 {
		return errors.New("broker.schema_registry_urls is required")
	}
	if c.Broker.Topics.SearchEvents == "" {
		return errors.New("broker.topics.search_events is required")
	}
	if c.Broker.Consumers.TrendingGroup == "" {
		return errors.New("broker.consumers.trending_group is required")
	}
	return nil
}

// LoadDotEnv exports the variables of .env in the working directory.
// A missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load(dotEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// FilePath returns STOREFRONT_CONFIG_FILE when set, otherwise flagValue.
func FilePath(flagValue string) string {
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return flagValue
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	return FilePath(*arg)
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q

	Catalog:
	CacheDriver=%q
	CacheKey=%q
	CacheRetries=%d
	CacheRetryDelay=%q
	SeedFile=%q

	BrokerConfig:
	Enabled=%t
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		SearchEvents=%q
	Consumers:
		TrendingGroup=%q
	TLS=%t
	SASL=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Catalog.CacheDriver,
		c.Catalog.CacheKey,
		c.Catalog.CacheRetries,
		c.Catalog.CacheRetryDelay,
		c.Catalog.SeedFile,
		c.Broker.Enabled,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.SearchEvents,
		c.Broker.Consumers.TrendingGroup,
		c.Broker.TLS.CA != "",
		c.Broker.User != "",
	)
}
