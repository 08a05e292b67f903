package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/vectorstore"
)

// Collection is the similarity index collection holding the brand corpus.
// It is distinct from the output store's collection: it holds reference
// material, not past generations.
const Collection = "knowledge"

// Sources lists what a rebuild ingests. BrochurePath is required; the
// others are optional.
type Sources struct {
	BrochurePath string
	LinksPath    string
	CompanyURL   string
}

// Index is the background corpus consumed by context assembly.
type Index struct {
	store        vectorstore.Store
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// NewIndex wraps the vector store's knowledge collection.
func NewIndex(store vectorstore.Store, chunkSize, chunkOverlap int, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Ready reports whether the corpus has been ingested. The daemon refuses to
// start serving without it.
func (i *Index) Ready() bool {
	return i.store.Count(Collection) > 0
}

// Search returns the content of up to k corpus chunks nearest to the query.
func (i *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	results, err := i.store.Search(ctx, Collection, query, k, nil)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge corpus: %w", err)
	}
	passages := make([]string, len(results))
	for j, r := range results {
		passages[j] = r.Content
	}
	return passages, nil
}

// Context joins retrieved passages into the prompt context block.
func Context(passages []string) string {
	return strings.Join(passages, "\n")
}

// Rebuild drops the collection and re-ingests all sources. The brochure is
// required; a missing links file or unreachable website is logged and
// skipped, matching how a marketing site outage should not block a rebuild.
func (i *Index) Rebuild(ctx context.Context, src Sources) error {
	if src.BrochurePath == "" {
		return fmt.Errorf("brochure path is required")
	}

	var sources []SourceDocument

	brochure, err := LoadPDF(src.BrochurePath)
	if err != nil {
		return fmt.Errorf("loading brochure: %w", err)
	}
	sources = append(sources, *brochure)

	if src.LinksPath != "" {
		linkDocs, err := LoadJSON(src.LinksPath)
		if err != nil {
			i.logger.Warn("skipping links file", zap.String("path", src.LinksPath), zap.Error(err))
		} else {
			sources = append(sources, linkDocs...)
		}
	}

	if src.CompanyURL != "" {
		webDoc, err := LoadWebsite(ctx, src.CompanyURL)
		if err != nil {
			i.logger.Warn("skipping website", zap.String("url", src.CompanyURL), zap.Error(err))
		} else {
			sources = append(sources, *webDoc)
		}
	}

	var docs []vectorstore.Document
	for _, source := range sources {
		chunks, err := SplitText(source.Content, i.chunkSize, i.chunkOverlap)
		if err != nil {
			return fmt.Errorf("splitting %s: %w", source.Source, err)
		}
		for n, chunk := range chunks {
			docs = append(docs, vectorstore.Document{
				ID:      fmt.Sprintf("%s#chunk%d", source.Source, n),
				Content: chunk,
				Metadata: map[string]interface{}{
					"source": source.Source,
				},
			})
		}
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents extracted from sources")
	}

	if err := i.store.DeleteCollection(ctx, Collection); err != nil {
		return fmt.Errorf("dropping knowledge collection: %w", err)
	}
	if _, err := i.store.AddDocuments(ctx, Collection, docs); err != nil {
		return fmt.Errorf("indexing knowledge corpus: %w", err)
	}

	i.logger.Info("knowledge corpus rebuilt",
		zap.Int("sources", len(sources)),
		zap.Int("chunks", len(docs)),
	)
	return nil
}
