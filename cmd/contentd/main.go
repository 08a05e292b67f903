// Contentd is a social media content generation daemon with an SEO feedback
// loop.
//
// It serves an HTTP API that generates platform copy, content strategies,
// and posting calendars grounded in a brand knowledge corpus and in past
// outputs users rated highly. Generated outputs are validated against SEO
// heuristics and stored for retrieval; user feedback on them steers future
// generations.
//
// Usage:
//
//	# Build the knowledge corpus, then start the daemon
//	contentd ingest --config ~/.config/contentd/config.yaml
//	contentd serve
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/config"
	"github.com/fyrsmithlabs/contentd/internal/embeddings"
	"github.com/fyrsmithlabs/contentd/internal/knowledge"
	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contentd",
	Short: "Social media content generation daemon with an SEO feedback loop",
	Long: `contentd generates social media content, strategies, and calendars
grounded in a brand knowledge corpus, validates every output against SEO
heuristics, and learns from user feedback on past outputs.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contentd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/contentd/config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, logger, nil
}

// openIndex builds the embedding service and opens the persistent similarity
// index both commands need.
func openIndex(cfg *config.Config, logger *zap.Logger) (*embeddings.Service, *vectorstore.ChromemStore, *knowledge.Index, error) {
	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.OpenAI.APIKey.Value(),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing embeddings: %w", err)
	}

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       cfg.Store.Path,
		VectorSize: cfg.Embeddings.VectorSize,
	}, embedder, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening similarity index: %w", err)
	}

	idx := knowledge.NewIndex(store, cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap, logger)
	return embedder, store, idx, nil
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
