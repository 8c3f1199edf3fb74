package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/crediscope/internal/analyses"
	"github.com/JaimeStill/crediscope/internal/config"
	"github.com/JaimeStill/crediscope/internal/infrastructure"
	"github.com/JaimeStill/crediscope/internal/prompts"
	"github.com/JaimeStill/crediscope/internal/workflow"
)

// session is a started infrastructure and the analyses system built on it.
type session struct {
	cfg      *config.Config
	infra    *infrastructure.Infrastructure
	analyses analyses.System
}

func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return config.LoadFile(rootFlags.configPath)
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if rootFlags.quiet {
		return slog.New(slog.DiscardHandler)
	}
	return infrastructure.NewLogger(&cfg.Logging, cmd.ErrOrStderr())
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	infra, err := infrastructure.NewWithLogger(cfg, newLogger(cmd, cfg))
	if err != nil {
		return nil, err
	}
	if err := infra.Start(); err != nil {
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	source := prompts.Defaults()
	if db := infra.DB(); db != nil {
		source = prompts.New(db, infra.Logger, cfg.API.Pagination)
	}

	svc, err := workflow.Build(cmd.Context(), cfg, infra.Results, source, infra.HTTPClient, infra.Logger)
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return nil, err
	}

	deps := analyses.Deps{
		DB:            infra.DB(),
		Normalizer:    svc.Normalizer,
		Engine:        svc.Engine,
		Logger:        infra.Logger,
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
	}
	if svc.Extractor != nil {
		deps.Extractor = svc.Extractor
	}

	return &session{cfg: cfg, infra: infra, analyses: analyses.New(deps)}, nil
}

func (s *session) close() {
	if err := s.infra.Lifecycle.Shutdown(s.cfg.ShutdownTimeoutDuration()); err != nil {
		s.infra.Logger.Warn("shutdown incomplete", "error", err)
	}
}

func writeResult(w io.Writer, resp *analyses.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp.Result)
}
