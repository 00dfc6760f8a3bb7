package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/carverauto/srql/internal/db"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// TranslatorConfig holds the external translator endpoint settings.
type TranslatorConfig struct {
	URL     string
	Timeout time.Duration
}

// EngineConfig holds query-engine routing settings. StructuredEntities is
// the allow-list of entities eligible for the structured path.
type EngineConfig struct {
	StructuredEnabled  bool
	StructuredEntities []string
}

// Config is the full service configuration.
type Config struct {
	Database   db.Config
	Server     ServerConfig
	Translator TranslatorConfig
	Engine     EngineConfig
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Database: db.DefaultConfig(),
		Server:   ServerConfig{Addr: ":8080"},
		Translator: TranslatorConfig{
			URL:     "http://localhost:9090",
			Timeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			StructuredEnabled:  true,
			StructuredEntities: []string{"devices", "events"},
		},
	}
}

// Load reads config.yaml from configPath and applies environment overrides
// (prefix SRQL, e.g. SRQL_DATABASE_HOST).
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("SRQL")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("translator.url")
	v.BindEnv("engine.structured_enabled")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env vars still apply.
		fmt.Println("No config.yaml found, using defaults and env vars")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("translator.url") {
		cfg.Translator.URL = v.GetString("translator.url")
	}
	if v.IsSet("translator.timeout") {
		cfg.Translator.Timeout = v.GetDuration("translator.timeout")
	}
	if v.IsSet("engine.structured_enabled") {
		cfg.Engine.StructuredEnabled = v.GetBool("engine.structured_enabled")
	}
	if v.IsSet("engine.structured_entities") {
		cfg.Engine.StructuredEntities = v.GetStringSlice("engine.structured_entities")
	}

	return cfg, nil
}
