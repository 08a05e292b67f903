package vectorstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/vectorstore"
)

// testEmbedder returns deterministic normalized vectors derived from a text
// hash, so tests run without a network embedding endpoint.
type testEmbedder struct {
	vectorSize int
}

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

func newTestStore(t *testing.T) *vectorstore.ChromemStore {
	t.Helper()
	store, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{Path: t.TempDir(), VectorSize: 64},
		&testEmbedder{vectorSize: 64},
		zap.NewNop(),
	)
	require.NoError(t, err)
	return store
}

func TestChromemConfig_Validate(t *testing.T) {
	cfg := vectorstore.ChromemConfig{Path: "", VectorSize: 64}
	assert.ErrorIs(t, cfg.Validate(), vectorstore.ErrInvalidConfig)

	cfg = vectorstore.ChromemConfig{Path: "/tmp/x", VectorSize: 0}
	assert.ErrorIs(t, cfg.Validate(), vectorstore.ErrInvalidConfig)

	cfg = vectorstore.ChromemConfig{Path: "/tmp/x", VectorSize: 64}
	assert.NoError(t, cfg.Validate())
}

func TestNewChromemStore_RequiresEmbedder(t *testing.T) {
	_, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{Path: t.TempDir(), VectorSize: 64},
		nil,
		zap.NewNop(),
	)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)
}

func TestChromemStore_AddAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	docs := []vectorstore.Document{
		{ID: "a", Content: "seo tips for small businesses", Metadata: map[string]interface{}{"platform": "linkedin"}},
		{ID: "b", Content: "holiday cake recipes", Metadata: map[string]interface{}{"platform": "instagram"}},
	}
	ids, err := store.AddDocuments(ctx, "test", docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, 2, store.Count("test"))

	results, err := store.Search(ctx, "test", "seo tips for small businesses", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "seo tips for small businesses", results[0].Content)
	assert.Equal(t, "linkedin", results[0].Metadata["platform"])
}

func TestChromemStore_SearchWithFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, "test", []vectorstore.Document{
		{ID: "a", Content: "post one", Metadata: map[string]interface{}{"platform": "linkedin"}},
		{ID: "b", Content: "post two", Metadata: map[string]interface{}{"platform": "instagram"}},
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "test", "post", 2, map[string]interface{}{"platform": "instagram"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestChromemStore_SearchCapsKAtCollectionSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, "test", []vectorstore.Document{
		{ID: "only", Content: "one doc"},
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "test", "anything", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStore_SearchEmptyCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Unknown collection is an error, an existing but empty one is not.
	_, err := store.Search(ctx, "missing", "query", 3, nil)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestChromemStore_GetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, "test", []vectorstore.Document{
		{ID: "a", Content: "hello", Metadata: map[string]interface{}{"k": "v"}},
	})
	require.NoError(t, err)

	doc, err := store.GetByID(ctx, "test", "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Content)
	assert.Equal(t, "v", doc.Metadata["k"])

	_, err = store.GetByID(ctx, "test", "nope")
	assert.ErrorIs(t, err, vectorstore.ErrDocumentNotFound)
}

func TestChromemStore_DeleteDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, "test", []vectorstore.Document{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "second"},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocuments(ctx, "test", []string{"a"}))
	assert.Equal(t, 1, store.Count("test"))

	_, err = store.GetByID(ctx, "test", "a")
	assert.ErrorIs(t, err, vectorstore.ErrDocumentNotFound)
}

func TestChromemStore_AddEmptyDocuments(t *testing.T) {
	store := newTestStore(t)
	_, err := store.AddDocuments(context.Background(), "test", nil)
	assert.ErrorIs(t, err, vectorstore.ErrEmptyDocuments)
}

func TestChromemStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	embedder := &testEmbedder{vectorSize: 64}

	store, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{Path: dir, VectorSize: 64}, embedder, zap.NewNop())
	require.NoError(t, err)

	_, err = store.AddDocuments(ctx, "test", []vectorstore.Document{
		{ID: "a", Content: "durable doc"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := vectorstore.NewChromemStore(
		vectorstore.ChromemConfig{Path: dir, VectorSize: 64}, embedder, zap.NewNop())
	require.NoError(t, err)

	doc, err := reopened.GetByID(ctx, "test", "a")
	require.NoError(t, err)
	assert.Equal(t, "durable doc", doc.Content)
}
