// Command termfolio shows the portfolio in a terminal.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/caarlos0/env/v11"
	"github.com/gdamore/tcell/v2"

	"github.com/Zachkp/folio/internal/contact"
	"github.com/Zachkp/folio/internal/portfolio"
	"github.com/Zachkp/folio/internal/termui"
)

type config struct {
	ProjectsFile  string        `env:"PROJECTS_FILE" envDefault:"data/projects.yaml"`
	SimulateDelay time.Duration `env:"CONTACT_SIMULATE_DELAY" envDefault:"2s"`
	LogFile       string        `env:"TERMFOLIO_LOG" envDefault:"termfolio.log"`

	TitleSpeed    time.Duration `env:"HERO_TITLE_SPEED" envDefault:"80ms"`
	TitleDelay    time.Duration `env:"HERO_TITLE_DELAY" envDefault:"500ms"`
	SubtitleSpeed time.Duration `env:"HERO_SUBTITLE_SPEED" envDefault:"30ms"`
	SubtitleDelay time.Duration `env:"HERO_SUBTITLE_DELAY" envDefault:"1s"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	projects, err := portfolio.LoadProjects(cfg.ProjectsFile)
	if err != nil {
		log.Fatal("Failed to load projects: ", err)
	}

	// the screen owns the terminal, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatal("Failed to open log file: ", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal("Failed to create screen: ", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal("Failed to init screen: ", err)
	}
	defer screen.Fini()

	submitter := contact.Simulated{Delay: cfg.SimulateDelay}
	app, err := termui.New(screen, projects, submitter, termui.Options{
		TitleSpeed:    cfg.TitleSpeed,
		TitleDelay:    cfg.TitleDelay,
		SubtitleSpeed: cfg.SubtitleSpeed,
		SubtitleDelay: cfg.SubtitleDelay,
	})
	if err != nil {
		screen.Fini()
		log.Fatal("Failed to start: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Exited with error: %v", err)
	}
}
