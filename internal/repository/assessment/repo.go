package assessment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/recommender/internal/db"
	"github.com/kailas-cloud/recommender/internal/domain"
)

// KeyPrefix namespaces every key the service writes.
const KeyPrefix = "recommender:"

// DefaultBatchSize bounds one HSET pipeline during Rebuild.
const DefaultBatchSize = 100

const (
	vectorField   = "__vector"
	vectorAlias   = "vector"
	documentField = "__document"
)

// metadataFields are returned with every KNN hit.
var metadataFields = []string{
	"name", "url", "description", "duration", "languages",
	"job_level", "remote_testing", "adaptive_irt_support", "test_type", "source_tab",
}

// store is the consumer interface for the vector index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores assessment entries in one FT index over hashes.
type Repo struct {
	store      store
	collection string
	dim        int
	hnsw       HNSWConfig
}

// New creates a repository for collection with vectors of dim dimensions.
func New(s store, collection string, dim int) *Repo {
	return &Repo{store: s, collection: collection, dim: dim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// IndexName is the FT index backing the collection.
func (r *Repo) IndexName() string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, r.collection)
}

func (r *Repo) keyPrefix() string {
	return fmt.Sprintf("%s%s:", KeyPrefix, r.collection)
}

// Rebuild drops the collection with its documents, recreates the index and
// loads entries in batches of batchSize.
func (r *Repo) Rebuild(ctx context.Context, entries []domain.IndexEntry, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for i := range entries {
		if err := domain.CheckDimensions(r.dim, entries[i].Vector); err != nil {
			return fmt.Errorf("entry %s: %w", entries[i].ID, err)
		}
	}

	def, err := r.indexDefinition()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.DropIndex(ctx, def.Name, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", def.Name, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}

	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))
		items := make([]db.HashSetItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, r.toHash(&entries[i]))
		}
		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("load entries %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// Search returns up to k entries nearest to vector, ascending by distance.
// A collection that was never built yields domain.ErrIndexNotBuilt.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.Neighbor, error) {
	ok, err := r.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrIndexNotBuilt
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.IndexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: metadataFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrIndexNotBuilt
		}
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}

	return r.toNeighbors(sr, k), nil
}

// Exists reports whether the index has been built, even if empty.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.collection, err)
	}
	return ok, nil
}

// Count returns the number of indexed entries.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.IndexName(), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, domain.ErrIndexNotBuilt
		}
		return 0, fmt.Errorf("count %s: %w", r.collection, err)
	}
	return n, nil
}

func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	// valkey-search has no TEXT fields; tags and numerics only
	return db.NewIndex(r.IndexName()).
		Prefix(r.keyPrefix()).
		Tag("test_type", "remote_testing", "adaptive_irt_support").
		Numeric("source_tab").
		Vector(vectorField, vectorAlias, db.VectorHNSW, r.dim, db.DistanceCosine).
		HNSW(r.hnsw.M, r.hnsw.EFConstruct).
		Build()
}

func (r *Repo) toHash(e *domain.IndexEntry) db.HashSetItem {
	fields := make(map[string]string, len(e.Metadata)+2)
	for k, v := range e.Metadata {
		fields[k] = v
	}
	fields[documentField] = e.Document
	fields[vectorField] = vectorToBytes(e.Vector)
	return db.HashSetItem{Key: r.keyPrefix() + e.ID, Fields: fields}
}

func (r *Repo) toNeighbors(sr *db.SearchResult, k int) []domain.Neighbor {
	if sr == nil || len(sr.Entries) == 0 {
		return []domain.Neighbor{}
	}

	prefix := r.keyPrefix()
	out := make([]domain.Neighbor, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		n := domain.Neighbor{ID: strings.TrimPrefix(e.Key, prefix), Metadata: e.Fields}
		if e.HasScore {
			d := e.Score
			n.Distance = &d
		}
		if n.Metadata == nil {
			n.Metadata = map[string]string{}
		}
		out = append(out, n)
	}

	// engines return KNN hits sorted, but not all of them promise it
	sort.SliceStable(out, func(i, j int) bool {
		return distanceOrInf(out[i].Distance) < distanceOrInf(out[j].Distance)
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func distanceOrInf(d *float64) float64 {
	if d == nil {
		return math.Inf(1)
	}
	return *d
}
