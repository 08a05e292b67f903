package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/knowledge"
	"github.com/fyrsmithlabs/contentd/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build or rebuild the knowledge corpus",
	Long: `Ingest reads the configured brand sources (brochure PDF, links JSON,
company website), chunks them, and indexes them into the knowledge corpus.
The brochure is required; missing links or an unreachable website are
skipped with a warning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context())
	},
}

func runIngest(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	if cfg.Knowledge.BrochurePath == "" {
		return fmt.Errorf("knowledge.brochure_path is required for ingest")
	}

	_, index, corpus, err := openIndex(cfg, logger)
	if err != nil {
		return err
	}
	defer index.Close()

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

	if err := corpus.Rebuild(ctx, knowledge.Sources{
		BrochurePath: brochure,
		LinksPath:    links,
		CompanyURL:   cfg.Knowledge.CompanyURL,
	}); err != nil {
		return fmt.Errorf("rebuilding knowledge corpus: %w", err)
	}

	logger.Info("ingest complete", zap.String("store", cfg.Store.Path))
	return nil
}
