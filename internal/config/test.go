package config

import "github.com/caarlos0/env/v11"

// TestConfig points DB-backed tests at a disposable database. Tests create
// and drop a schema per run, so the DSN user needs DDL rights.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
