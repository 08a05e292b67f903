// Package retriever surfaces past high-performing outputs as few-shot
// grounding for new generations.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/outputstore"
)

// DefaultK is how many examples a generation request is grounded with.
const DefaultK = 3

// Feedback retrieves relevant past outputs from the output store. It is used
// purely to build few-shot context: finding nothing is not an error and
// never gates generation.
type Feedback struct {
	store  *outputstore.Store
	logger *zap.Logger
}

// New creates a feedback retriever.
func New(store *outputstore.Store, logger *zap.Logger) *Feedback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feedback{store: store, logger: logger}
}

// RetrieveRelevant returns up to k past outputs semantically close to the
// query, restricted to the platform and to outputs labeled high-engagement.
// k <= 0 means DefaultK.
func (f *Feedback) RetrieveRelevant(ctx context.Context, query string, platform outputstore.Platform, k int) ([]outputstore.GeneratedOutput, error) {
	if k <= 0 {
		k = DefaultK
	}

	matches, err := f.store.SimilaritySearch(ctx, query, k, func(m *outputstore.Metadata) bool {
		return m.Platform == platform && m.FeedbackLabel() == outputstore.LabelHighEngagement
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving examples: %w", err)
	}

	f.logger.Debug("retrieved feedback examples",
		zap.String("platform", string(platform)),
		zap.Int("k", k),
		zap.Int("found", len(matches)),
	)
	return matches, nil
}

// FewShotContext renders examples into the prompt block fed to the
// generator. Empty input yields an empty string and the prompt proceeds
// without examples.
func FewShotContext(examples []outputstore.GeneratedOutput) string {
	if len(examples) == 0 {
		return ""
	}
	var b strings.Builder
	for i, ex := range examples {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		b.WriteString(ex.Content)
	}
	return b.String()
}
