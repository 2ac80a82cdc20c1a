// Command book-extractor extracts a zip archive where it belongs: single
// documents into the configured output folder, everything else beside the
// archive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/Jeff-411/book-extractor/internal/adapters/driven/archive/zipfile"
	"github.com/Jeff-411/book-extractor/internal/adapters/driven/config/dotenv"
	"github.com/Jeff-411/book-extractor/internal/adapters/driven/config/file"
	"github.com/Jeff-411/book-extractor/internal/adapters/driven/inspect/docx"
	"github.com/Jeff-411/book-extractor/internal/adapters/driven/storage/sqlite"
	"github.com/Jeff-411/book-extractor/internal/adapters/driven/tracelog"
	"github.com/Jeff-411/book-extractor/internal/adapters/driving/cli"
	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driving"
	"github.com/Jeff-411/book-extractor/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetFactories(newSettings, newServices)

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(domain.ExitCode(err))
	}
}

func newSettings(rootDir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(rootDir)
	if err != nil {
		return nil, err
	}
	env, err := dotenv.Load(rootDir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(rootDir, store, env), nil
}

func newServices(cfg domain.Config) (*cli.Services, error) {
	var (
		history driven.HistoryStore
		closer  func() error
	)
	if cfg.HistoryEnabled {
		store, err := sqlite.NewStore(cfg.HistoryDBPath())
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		history = store
		closer = store.Close
	}

	extractor := services.NewExtractionService(
		cfg,
		zipfile.NewReader(),
		docx.New(),
		tracelog.NewFromConfig(cfg),
		history,
		uuid.NewString,
	)

	return &cli.Services{
		Extractor: extractor,
		History:   services.NewHistoryService(history),
		Close:     closer,
	}, nil
}
