package retriever_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/outputstore"
	"github.com/fyrsmithlabs/contentd/internal/retriever"
	"github.com/fyrsmithlabs/contentd/internal/vectorstore"
)

type testEmbedder struct{ vectorSize int }

func (e *testEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.makeEmbedding(text)
	}
	return embeddings, nil
}

func (e *testEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.makeEmbedding(text), nil
}

func (e *testEmbedder) makeEmbedding(text string) []float32 {
	embedding := make([]float32, e.vectorSize)
	hash := 0
	for _, c := range text {
		hash = (hash*31 + int(c)) % 1000
	}
	var sumSq float32
	for i := range embedding {
		embedding[i] = float32((hash+i)%100) / 100.0
		sumSq += embedding[i] * embedding[i]
	}
	if sumSq > 0 {
		norm := 1.0 / sqrt32(sumSq)
		for i := range embedding {
			embedding[i] *= norm
		}
	}
	return embedding
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	z := x / 2
	for i := 0; i < 10; i++ {
		z = (z + x/z) / 2
	}
	return z
}

func newStore(t *testing.T) *outputstore.Store {
	t.Helper()
	dir := t.TempDir()
	index, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{Path: filepath.Join(dir, "vectors"), VectorSize: 64},
		&testEmbedder{vectorSize: 64},
		zap.NewNop(),
	)
	require.NoError(t, err)
	store, err := outputstore.New(context.Background(), dir, index, zap.NewNop())
	require.NoError(t, err)
	return store
}

func storeWithFeedback(t *testing.T, store *outputstore.Store, id string, platform outputstore.Platform, rating int) {
	t.Helper()
	ctx := context.Background()
	meta := outputstore.Metadata{
		OutputID:  id,
		Platform:  platform,
		UseCase:   "content",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, store.Store(ctx, "post "+id+" about seo and conversions", meta))

	record, err := store.Get(ctx, id)
	require.NoError(t, err)
	record.Metadata.Feedback = &outputstore.Feedback{
		Rating: &rating,
		Label:  outputstore.DeriveLabel(&rating, nil),
	}
	require.NoError(t, store.Update(ctx, id, *record))
}

func TestRetrieveRelevant_FiltersPlatformAndLabel(t *testing.T) {
	store := newStore(t)
	f := retriever.New(store, zap.NewNop())
	ctx := context.Background()

	storeWithFeedback(t, store, "insta-good", outputstore.PlatformInstagram, 5)
	storeWithFeedback(t, store, "insta-bad", outputstore.PlatformInstagram, 2)
	storeWithFeedback(t, store, "linked-good", outputstore.PlatformLinkedIn, 5)

	results, err := f.RetrieveRelevant(ctx, "seo", outputstore.PlatformInstagram, 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "insta-good", results[0].Metadata.OutputID)
}

func TestRetrieveRelevant_EmptyIsNotAnError(t *testing.T) {
	store := newStore(t)
	f := retriever.New(store, zap.NewNop())

	results, err := f.RetrieveRelevant(context.Background(), "seo", outputstore.PlatformFacebook, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFewShotContext(t *testing.T) {
	assert.Empty(t, retriever.FewShotContext(nil))

	examples := []outputstore.GeneratedOutput{
		{Content: "first example"},
		{Content: "second example"},
	}
	got := retriever.FewShotContext(examples)
	assert.Contains(t, got, "first example")
	assert.Contains(t, got, "second example")
	assert.Contains(t, got, "---")
}
