package outputstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/contentd/internal/vectorstore"
)

// Collection is the similarity index collection holding past generations.
const Collection = "outputs"

// tableFile is the lookup table snapshot next to the vector database.
const tableFile = "outputs.json"

// Filter restricts similarity search results. A nil Filter accepts
// everything.
type Filter func(*Metadata) bool

// Store pairs a JSON lookup table keyed by output ID with a similarity
// collection. All mutations run under a single writer lock and persist both
// sides before returning; the table snapshot is written atomically
// (temp file + rename) so a crash cannot leave it half-written.
type Store struct {
	mu     sync.RWMutex
	table  map[string]*GeneratedOutput
	path   string
	index  vectorstore.Store
	logger *zap.Logger

	// quarantined holds IDs the table and index disagreed about at load.
	quarantined map[string]struct{}
}

// New opens the store rooted at dir, loading the table snapshot if present
// and reconciling it against the similarity index. Records present in the
// table but missing from the index are quarantined: Get returns
// ErrIndexInconsistency for them rather than partial data. Vectors with no
// table entry cannot be enumerated, but a count mismatch is logged.
func New(ctx context.Context, dir string, index vectorstore.Store, logger *zap.Logger) (*Store, error) {
	if index == nil {
		return nil, fmt.Errorf("similarity index is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		table:       make(map[string]*GeneratedOutput),
		path:        filepath.Join(dir, tableFile),
		index:       index,
		logger:      logger,
		quarantined: make(map[string]struct{}),
	}

	if err := s.loadTable(); err != nil {
		return nil, err
	}
	s.reconcile(ctx)
	return s, nil
}

func (s *Store) loadTable() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading output table %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, &s.table); err != nil {
		return fmt.Errorf("parsing output table %s: %w", s.path, err)
	}
	return nil
}

// reconcile verifies every table entry has its vector. Divergent records are
// quarantined, not silently dropped: the snapshot on disk keeps them for
// operator inspection.
func (s *Store) reconcile(ctx context.Context) {
	for id := range s.table {
		if _, err := s.index.GetByID(ctx, Collection, id); err != nil {
			s.quarantined[id] = struct{}{}
			s.logger.Error("output missing from similarity index, quarantining",
				zap.String("output_id", id),
				zap.Error(err),
			)
		}
	}

	indexCount := s.index.Count(Collection)
	tableCount := len(s.table) - len(s.quarantined)
	if indexCount > tableCount {
		s.logger.Warn("similarity index holds vectors with no table entry",
			zap.Int("index_count", indexCount),
			zap.Int("table_count", tableCount),
		)
	}
}

// Store writes a new output. The ID comes from the metadata; the caller is
// responsible for generating it. The vector is written first, then the table
// snapshot; if the snapshot fails the vector is rolled back.
func (s *Store) Store(ctx context.Context, content string, meta Metadata) error {
	if meta.OutputID == "" {
		return fmt.Errorf("metadata has no output_id")
	}
	if !meta.Platform.Valid() {
		return fmt.Errorf("invalid platform %q", meta.Platform)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &GeneratedOutput{Content: content, Metadata: meta}

	if _, err := s.index.AddDocuments(ctx, Collection, []vectorstore.Document{indexDoc(record)}); err != nil {
		return fmt.Errorf("indexing output %s: %w", meta.OutputID, err)
	}

	s.table[meta.OutputID] = record.clone()
	if err := s.persistTable(); err != nil {
		delete(s.table, meta.OutputID)
		if derr := s.index.DeleteDocuments(ctx, Collection, []string{meta.OutputID}); derr != nil {
			s.logger.Error("rollback of index write failed",
				zap.String("output_id", meta.OutputID),
				zap.Error(derr),
			)
		}
		return err
	}

	s.logger.Info("stored output",
		zap.String("output_id", meta.OutputID),
		zap.String("platform", string(meta.Platform)),
		zap.String("use_case", meta.UseCase),
	)
	return nil
}

// Get returns the record for the given output ID.
func (s *Store) Get(ctx context.Context, id string) (*GeneratedOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, bad := s.quarantined[id]; bad {
		return nil, fmt.Errorf("%w: %s", ErrIndexInconsistency, id)
	}
	record, ok := s.table[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record.clone(), nil
}

// Update replaces the record under the same ID: the table entry is swapped
// and the similarity entry re-indexed (delete old vector, insert new).
func (s *Store) Update(ctx context.Context, id string, record GeneratedOutput) error {
	if record.Metadata.OutputID != id {
		return fmt.Errorf("record output_id %q does not match %q", record.Metadata.OutputID, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, bad := s.quarantined[id]; bad {
		return fmt.Errorf("%w: %s", ErrIndexInconsistency, id)
	}
	old, ok := s.table[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.index.DeleteDocuments(ctx, Collection, []string{id}); err != nil {
		return fmt.Errorf("removing old vector for %s: %w", id, err)
	}
	if _, err := s.index.AddDocuments(ctx, Collection, []vectorstore.Document{indexDoc(&record)}); err != nil {
		return fmt.Errorf("re-indexing output %s: %w", id, err)
	}

	s.table[id] = record.clone()
	if err := s.persistTable(); err != nil {
		s.table[id] = old
		return err
	}

	s.logger.Info("updated output", zap.String("output_id", id))
	return nil
}

// SimilaritySearch returns up to k records nearest to the query whose
// metadata satisfies the filter. Fewer than k results is valid when the
// filtered pool is small; an empty store yields an empty slice.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int, filter Filter) ([]GeneratedOutput, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	// Fetch the whole ranked collection and filter against the
	// authoritative table metadata. The output corpus is one brand's
	// generation history; exhaustive ranking is what the similarity
	// index does internally anyway.
	total := s.index.Count(Collection)
	if total == 0 {
		return []GeneratedOutput{}, nil
	}

	results, err := s.index.Search(ctx, Collection, query, total, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]GeneratedOutput, 0, k)
	for _, r := range results {
		if _, bad := s.quarantined[r.ID]; bad {
			continue
		}
		record, ok := s.table[r.ID]
		if !ok {
			// Orphan vector: the index knows an ID the table does not.
			s.logger.Warn("similarity index returned unknown output",
				zap.String("output_id", r.ID),
			)
			continue
		}
		if filter != nil && !filter(&record.Metadata) {
			continue
		}
		matches = append(matches, *record.clone())
		if len(matches) == k {
			break
		}
	}
	return matches, nil
}

// Len returns the number of servable records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table) - len(s.quarantined)
}

// Quarantined returns the IDs excluded at load due to index inconsistency,
// sorted for stable output.
func (s *Store) Quarantined() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.quarantined))
	for id := range s.quarantined {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// persistTable writes the table snapshot atomically: marshal, write to a
// temp file in the same directory, fsync, rename over the old snapshot.
func (s *Store) persistTable() error {
	data, err := json.MarshalIndent(s.table, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output table: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, tableFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp table file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp table file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp table file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp table file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming table snapshot: %w", err)
	}
	return nil
}

// indexDoc flattens a record into the similarity index document. The index
// carries only the filterable fields; the table stays authoritative.
func indexDoc(record *GeneratedOutput) vectorstore.Document {
	meta := map[string]interface{}{
		"platform": string(record.Metadata.Platform),
		"use_case": record.Metadata.UseCase,
	}
	if label := record.Metadata.FeedbackLabel(); label != "" {
		meta["feedback_label"] = label
	}
	return vectorstore.Document{
		ID:       record.Metadata.OutputID,
		Content:  record.Content,
		Metadata: meta,
	}
}
