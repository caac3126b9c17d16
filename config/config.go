package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database         DatabaseConfigs `toml:"database"`
	ApiServer        APIServerConfigs `toml:"api_server"`
	PrometheusServer ServerConfigs    `toml:"prometheus_server"`
	Auth             AuthConfigs      `toml:"auth"`
	Kafka            KafkaConfigs     `toml:"kafka"`
	Ledger           LedgerConfigs    `toml:"ledger"`
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// ConnectionString returns the DSN for the configured driver. An explicit
// DSN always wins over the discrete fields.
func (d *DatabaseConfigs) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	if d.Driver == "sqlite" {
		return d.Database
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit       int      `toml:"max_limit"`
	DefaultLimit   int      `toml:"default_limit"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`
}

type TokenConfigs struct {
	Name       string   `toml:"name"`
	Expiration Duration `toml:"expiration"`
}

type KafkaConfigs struct {
	Addr              string `toml:"addr"`
	NotificationTopic string `toml:"notification_topic"`
}

type LedgerConfigs struct {
	// ValueTolerance is the accepted gap between total_value and
	// token_price * total_tokens.
	ValueTolerance   decimal.Decimal `toml:"value_tolerance"`
	ActivateInterval Duration        `toml:"activate_interval"`
}

// Duration decodes TOML strings like "15m" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver:   "sqlite",
			Database: "rwa.db",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs:  ServerConfigs{Port: "8080"},
			MaxLimit:       50,
			DefaultLimit:   10,
			AllowedOrigins: []string{"*"},
		},
		PrometheusServer: ServerConfigs{Port: "9090"},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: Duration{24 * time.Hour},
			},
		},
		Kafka: KafkaConfigs{NotificationTopic: "notification"},
		Ledger: LedgerConfigs{
			ValueTolerance:   decimal.New(1, -2),
			ActivateInterval: Duration{time.Minute},
		},
	}
}

// Load reads the TOML file at path on top of the default configs. A missing
// file is not an error. DB_DSN and TOKEN_SECRET override the file.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Configs{}, fmt.Errorf("cannot decode %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Configs{}, err
		}
	}

	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.Auth.TokenSecret = secret
	}

	if cfg.Auth.TokenSecret == "" {
		return Configs{}, fmt.Errorf("auth.token_secret must be set")
	}

	return cfg, nil
}
