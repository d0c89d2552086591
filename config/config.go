// Package config loads process settings from the environment, after an
// optional .env file.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"game-ledger/utils"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"5200"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	StoreDriver    string   `env:"STORE_DRIVER" envDefault:"postgres"`
	ServiceToken   string   `env:"GAME_SERVICE_TOKEN,required,notEmpty"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RegistrationTTL time.Duration `env:"TOURNAMENT_REGISTRATION_TTL" envDefault:"72h"`
	StaleCheckEvery time.Duration `env:"STALE_TOURNAMENT_CHECK_INTERVAL" envDefault:"5m"`

	DepositFeedURL      string        `env:"DEPOSIT_FEED_URL"`
	DepositPollInterval time.Duration `env:"DEPOSIT_POLL_INTERVAL" envDefault:"10s"`

	ProfileSyncURL      string        `env:"SYNC_SERVICE_URL"`
	ProfileSyncInterval time.Duration `env:"PROFILE_SYNC_INTERVAL" envDefault:"1m"`

	ArchiveEvery     time.Duration `env:"REPLAY_ARCHIVE_INTERVAL" envDefault:"10m"`
	ArchiveBatchSize int           `env:"REPLAY_ARCHIVE_BATCH" envDefault:"50"`

	R2 R2
}

type R2 struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

func (r R2) Settings() utils.R2Config {
	return utils.R2Config{
		AccountID:       r.AccountID,
		AccessKeyID:     r.AccessKeyID,
		AccessKeySecret: r.AccessKeySecret,
		Bucket:          r.Bucket,
		CDNBaseURL:      r.CDNBaseURL,
	}
}

// Load reads .env if present, then parses and validates the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	for i, origin := range c.AllowedOrigins {
		c.AllowedOrigins[i] = strings.TrimSpace(origin)
	}
	return nil
}
