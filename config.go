package main

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
)

// Config is read from the environment; .env is loaded first by godotenv.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DBPath       string `env:"DB_PATH" envDefault:"folio.db"`
	ProjectsFile string `env:"PROJECTS_FILE" envDefault:"data/projects.yaml"`
	Templates    string `env:"TEMPLATES_GLOB" envDefault:"templates/*"`

	SMTPHost string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	ToEmail  string `env:"TO_EMAIL"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// Skip SMTP and pretend every message was sent after a short wait.
	SimulateContact bool          `env:"CONTACT_SIMULATE" envDefault:"false"`
	SimulateDelay   time.Duration `env:"CONTACT_SIMULATE_DELAY" envDefault:"2s"`

	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MaxSessions int           `env:"MAX_SESSIONS" envDefault:"5000"`

	Hero HeroConfig `envPrefix:"HERO_"`
}

type HeroConfig struct {
	TitleSpeed    time.Duration `env:"TITLE_SPEED" envDefault:"80ms"`
	TitleDelay    time.Duration `env:"TITLE_DELAY" envDefault:"500ms"`
	SubtitleSpeed time.Duration `env:"SUBTITLE_SPEED" envDefault:"30ms"`
	SubtitleDelay time.Duration `env:"SUBTITLE_DELAY" envDefault:"1s"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if gin.Mode() == gin.DebugMode {
		if cfg.AdminUsername == "admin" {
			log.Println("WARNING: Using default admin username. Set ADMIN_USERNAME environment variable.")
		}
		if cfg.AdminPassword == "admin123" {
			log.Println("WARNING: Using default admin password. Set ADMIN_PASSWORD environment variable.")
		}
	}
	return cfg, nil
}
