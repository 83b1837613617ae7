package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN,required,notEmpty"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	CommandCacheDir       string   `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	YouTubeAPIKey string  `env:"YOUTUBE_API_KEY"`
	YouTubeProxy  string  `env:"YOUTUBE_PROXY"`
	ResolverRPS   float64 `env:"RESOLVER_RPS" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// New reads the configuration from the environment.
func New() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.ResolverRPS <= 0 {
		cfg.ResolverRPS = 1
	}
	return &cfg, nil
}

// Storage reads only what is needed to open the settings store, so tools that
// never talk to Discord do not need a token.
func Storage() (string, error) {
	var cfg struct {
		StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	}
	if err := env.Parse(&cfg); err != nil {
		return "", fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg.StoragePath, nil
}
