// Package vectorstore provides the embedded similarity index used by the
// output store and the knowledge corpus.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDocumentNotFound is returned when a document ID is absent.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Document represents a document to be stored in the vector store.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the text content of the document.
	Content string

	// Metadata contains additional key-value pairs for filtering.
	Metadata map[string]interface{}
}

// SearchResult represents a search result from the vector store.
type SearchResult struct {
	// ID is the document identifier.
	ID string

	// Content is the document text content.
	Content string

	// Score is the similarity score (higher = more similar).
	Score float32

	// Metadata contains the document metadata.
	Metadata map[string]interface{}
}

// Store is the interface for similarity index operations.
//
// Collections are namespaces: contentd keeps past generations in one
// collection ("outputs") and brand reference material in another
// ("knowledge"). Implementations persist every mutation to stable storage
// before returning.
type Store interface {
	// AddDocuments embeds and stores documents in the named collection,
	// creating it on first use. Returns the stored document IDs.
	AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error)

	// Search returns up to k documents from the collection nearest to the
	// query, restricted to documents whose metadata matches every filter
	// entry. Fewer than k results is valid; an empty collection yields an
	// empty slice.
	Search(ctx context.Context, collection, query string, k int, filters map[string]interface{}) ([]SearchResult, error)

	// GetByID returns the stored document with the given ID, or
	// ErrDocumentNotFound.
	GetByID(ctx context.Context, collection, id string) (*Document, error)

	// DeleteDocuments removes documents by ID from the collection.
	DeleteDocuments(ctx context.Context, collection string, ids []string) error

	// Count returns the number of documents in the collection; zero if the
	// collection does not exist yet.
	Count(collection string) int

	// DeleteCollection removes a collection and all its documents. Deleting
	// a collection that does not exist is not an error.
	DeleteCollection(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}
