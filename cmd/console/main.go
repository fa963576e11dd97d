package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jit-rpg/engine/internal/config"
	"github.com/jit-rpg/engine/internal/logger"
	"github.com/jit-rpg/engine/internal/storage"
	"github.com/jit-rpg/engine/pkg/content"
	"github.com/jit-rpg/engine/pkg/session"
)

func main() {
	cfg := config.Load()

	// The UI owns stdout, so logs go to a file.
	logFile, err := os.OpenFile("jit.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.Setup(cfg, logFile)

	bundle, err := content.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load game content: %v\n", err)
		os.Exit(1)
	}

	store := pickStore(cfg, log)

	sess, err := session.New(session.Config{
		Items:      bundle,
		Quests:     bundle,
		Dialogs:    bundle,
		Entities:   bundle,
		Maps:       bundle,
		Pathfinder: linePath{},
		FOV:        rayFOV{},
		Store:      store,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(sess, bundle, store),
		tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// pickStore prefers Redis when configured and reachable, and falls
// back to in-memory saves otherwise.
func pickStore(cfg *config.Config, log *slog.Logger) session.SaveStore {
	if cfg.RedisAddr == "" {
		return storage.NewMemoryStore()
	}

	rs := storage.NewRedisStore(cfg.RedisAddr, log)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		log.Warn("Redis unreachable, using in-memory saves", "addr", cfg.RedisAddr, "error", err)
		return storage.NewMemoryStore()
	}
	return rs
}
