package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "FARMSTORE_CONFIG_FILE"

type store struct {
	Driver    string `mapstructure:"driver" validate:"oneof=memory file redis postgres"`
	Key       string `mapstructure:"key"`
	FileDir   string `mapstructure:"file_dir" validate:"required_if=Driver file"`
	RedisAddr string `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
	SQLDB     string `mapstructure:"sql_db" validate:"required_if=Driver postgres"`

	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" validate:"gte=0"`
}

type catalog struct {
	APIURL          string        `mapstructure:"api_url" validate:"required,url"`
	IDField         string        `mapstructure:"id_field" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gte=0"`
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
}

type checkout struct {
	StoreName        string `mapstructure:"store_name"`
	CurrencySymbol   string `mapstructure:"currency_symbol"`
	MessagingBaseURL string `mapstructure:"messaging_base_url" validate:"required,url"`
	DestinationID    string `mapstructure:"destination_id" validate:"required"`
	PhoneRegion      string `mapstructure:"phone_region" validate:"len=2"`
}

type topics struct {
	Orders string `mapstructure:"orders" validate:"required"`
}

type brokerTLS struct {
	CAFile   string `mapstructure:"ca_file" validate:"required_with=CertFile KeyFile"`
	CertFile string `mapstructure:"cert_file" validate:"required_with=KeyFile"`
	KeyFile  string `mapstructure:"key_file" validate:"required_with=CertFile"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls" validate:"dive,url"`
	Topics             topics    `mapstructure:"topics"`
	TLS                brokerTLS `mapstructure:"tls"`
}

// Enabled reports whether order events are published.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel       slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr string        `mapstructure:"http_server_addr" validate:"required"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout" validate:"gte=0"`
	Store          store         `mapstructure:"store"`
	Catalog        catalog       `mapstructure:"catalog"`
	Checkout       checkout      `mapstructure:"checkout"`
	Broker         broker        `mapstructure:"broker"`
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads, decodes and validates the config file at path.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
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

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	if cfg.Broker.Enabled() && len(cfg.Broker.SchemaRegistryURLs) == 0 {
		return Config{}, errors.New("broker.schema_registry_urls is required with broker.seed_brokers")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("handler_timeout", "5s")
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.key", "farm_cart")
	v.SetDefault("store.file_dir", ".")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.sql_db", "")
	v.SetDefault("store.session_idle_timeout", "30m")
	v.SetDefault("catalog.id_field", "_id")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.refresh_interval", "5m")
	v.SetDefault("catalog.max_attempts", 3)
	v.SetDefault("checkout.store_name", "SATESMA FOUNTAIN VENTURES")
	v.SetDefault("checkout.currency_symbol", "₦")
	v.SetDefault("checkout.messaging_base_url", "https://wa.me")
	v.SetDefault("checkout.phone_region", "NG")
	v.SetDefault("broker.topics.orders", "orders")
	v.SetDefault("broker.tls.ca_file", "")
	v.SetDefault("broker.tls.cert_file", "")
	v.SetDefault("broker.tls.key_file", "")
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HandlerTimeout=%q

	Store:
	Driver=%q
	Key=%q
	FileDir=%q
	RedisAddr=%q
	SQLDB=%q
	SessionIdleTimeout=%q

	Catalog:
	APIURL=%q
	IDField=%q
	Timeout=%q
	RefreshInterval=%q
	MaxAttempts=%d

	Checkout:
	StoreName=%q
	CurrencySymbol=%q
	MessagingBaseURL=%q
	DestinationID=%q
	PhoneRegion=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		Orders=%q
	TLS:
		CAFile=%q
		CertFile=%q
		KeyFile=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HandlerTimeout,
		c.Store.Driver,
		c.Store.Key,
		c.Store.FileDir,
		c.Store.RedisAddr,
		redact(c.Store.SQLDB),
		c.Store.SessionIdleTimeout,
		c.Catalog.APIURL,
		c.Catalog.IDField,
		c.Catalog.Timeout,
		c.Catalog.RefreshInterval,
		c.Catalog.MaxAttempts,
		c.Checkout.StoreName,
		c.Checkout.CurrencySymbol,
		c.Checkout.MessagingBaseURL,
		c.Checkout.DestinationID,
		c.Checkout.PhoneRegion,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.Orders,
		c.Broker.TLS.CAFile,
		c.Broker.TLS.CertFile,
		c.Broker.TLS.KeyFile,
	)
}

// redact hides the DSN, which may carry a password.
func redact(dsn string) string {
	if dsn == "" {
		return ""
	}
	return "<set>"
}
