package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/feedback"
	"github.com/fyrsmithlabs/contentd/internal/generator"
	"github.com/fyrsmithlabs/contentd/internal/httpapi"
	"github.com/fyrsmithlabs/contentd/internal/knowledge"
	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"github.com/fyrsmithlabs/contentd/internal/outputstore"
	"github.com/fyrsmithlabs/contentd/internal/retriever"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the contentd HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, index, corpus, err := openIndex(cfg, logger)
	if err != nil {
		return err
	}
	defer index.Close()

	// The daemon has nothing to ground generations in without a corpus.
	if !corpus.Ready() {
		return fmt.Errorf("knowledge corpus is empty at %s: run `contentd ingest` first", cfg.Store.Path)
	}

	storeDir, err := expandPath(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("resolving store path: %w", err)
	}
	outputs, err := outputstore.New(ctx, storeDir, index, logger)
	if err != nil {
		return fmt.Errorf("opening output store: %w", err)
	}
	if q := outputs.Quarantined(); len(q) > 0 {
		logger.Warn("some outputs are quarantined and will not be served",
			zap.Strings("output_ids", q),
		)
	}

	gen, err := generator.New(generator.Config{
		BaseURL:       cfg.OpenAI.BaseURL,
		Model:         cfg.Generator.Model,
		APIKey:        cfg.OpenAI.APIKey.Value(),
		Temperature:   cfg.Generator.Temperature,
		RatePerMinute: cfg.Generator.RatePerMinute,
	})
	if err != nil {
		return fmt.Errorf("initializing generator: %w", err)
	}

	examples := retriever.New(outputs, logger)
	svc := orchestrator.New(gen, corpus, examples, outputs, cfg.Knowledge.RetrievalK, logger)
	fbctl := feedback.New(outputs, svc, logger)

	brochure, err := expandPath(cfg.Knowledge.BrochurePath)
	if err != nil {
		return fmt.Errorf("resolving brochure path: %w", err)
	}
	links := cfg.Knowledge.LinksPath
	if links != "" {
		if links, err = expandPath(links); err != nil {
			return fmt.Errorf("resolving links path: %w", err)
		}
	}

	server, err := httpapi.NewServer(svc, fbctl, corpus, logger, &httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		Sources: knowledge.Sources{
			BrochurePath: brochure,
			LinksPath:    links,
			CompanyURL:   cfg.Knowledge.CompanyURL,
		},
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	logger.Info("starting contentd",
		zap.String("version", version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("outputs", outputs.Len()),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
