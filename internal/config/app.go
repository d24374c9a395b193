package config

// AppConfig bundles everything the wager server reads from the environment.
type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

// LoadApp parses the log section first so logging can come up before the
// stricter server section (required POSTGRES_DSN) gets a chance to fail.
func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
	}, nil
}
