package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// FaucetBalance seeds every newly registered player account.
	FaucetBalance int64 `env:"FAUCET_BALANCE" envDefault:"100000000"`

	JanitorIntervalSecs int `env:"JANITOR_INTERVAL_SECONDS" envDefault:"60"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
