package assessment

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/recommender/internal/db"
	"github.com/kailas-cloud/recommender/internal/domain"
)

func makeEntries(n int) []domain.IndexEntry {
	entries := make([]domain.IndexEntry, n)
	for i := range entries {
		id := strconv.Itoa(i)
		entries[i] = domain.IndexEntry{
			ID:       id,
			Vector:   testVector(float32(i)),
			Document: "doc " + id,
			Metadata: map[string]string{"name": "item " + id, "url": "https://x/" + id},
		}
	}
	return entries
}

func TestRebuild_DropsCreatesAndBatches(t *testing.T) {
	repo, ms := newTestRepo(t)

	var calls []string
	ms.dropIndexFn = func(_ context.Context, name string, deleteDocs bool) error {
		calls = append(calls, "drop")
		if name != "recommender:shl_assessments:idx" {
			t.Errorf("drop name = %q", name)
		}
		if !deleteDocs {
			t.Error("expected documents to be dropped with the index")
		}
		return db.ErrIndexNotFound
	}
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		calls = append(calls, "create")
		if len(def.Prefixes) != 1 || def.Prefixes[0] != "recommender:shl_assessments:" {
			t.Errorf("prefixes = %v", def.Prefixes)
		}
		v := def.Fields[len(def.Fields)-1]
		if v.Type != db.IndexFieldVector || v.Alias != "vector" || v.VectorDim != testDim ||
			v.VectorDistance != db.DistanceCosine || v.VectorM != 16 {
			t.Errorf("unexpected vector field %+v", v)
		}
		return nil
	}
	var batches []int
	var first db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		calls = append(calls, "hset")
		if len(batches) == 0 {
			first = items[0]
		}
		batches = append(batches, len(items))
		return nil
	}

	if err := repo.Rebuild(context.Background(), makeEntries(250), 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(calls); got != 5 || calls[0] != "drop" || calls[1] != "create" {
		t.Fatalf("calls = %v", calls)
	}
	if len(batches) != 3 || batches[0] != 100 || batches[1] != 100 || batches[2] != 50 {
		t.Errorf("batches = %v, want [100 100 50]", batches)
	}
	if first.Key != "recommender:shl_assessments:0" {
		t.Errorf("key = %q", first.Key)
	}
	if first.Fields["name"] != "item 0" || first.Fields["__document"] != "doc 0" {
		t.Errorf("fields = %v", first.Fields)
	}
	if v := bytesToVector(first.Fields["__vector"]); len(v) != testDim {
		t.Errorf("vector decoded to %v", v)
	}
}

func TestRebuild_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	created := false
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
		created = true
		return nil
	}
	ms.hsetMultiFn = func(context.Context, []db.HashSetItem) error {
		t.Error("no HSET expected")
		return nil
	}

	if err := repo.Rebuild(context.Background(), nil, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("an empty index must still exist after rebuild")
	}
}

func TestRebuild_DimMismatch(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.dropIndexFn = func(context.Context, string, bool) error {
		t.Error("index must not be touched")
		return nil
	}
	entries := makeEntries(2)
	entries[1].Vector = []float32{1}

	err := repo.Rebuild(context.Background(), entries, 100)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestRebuild_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(ms *mockStore)
	}{
		{"drop", func(ms *mockStore) {
			ms.dropIndexFn = func(context.Context, string, bool) error { return boom }
		}},
		{"create", func(ms *mockStore) {
			ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return boom }
		}},
		{"hset", func(ms *mockStore) {
			ms.hsetMultiFn = func(context.Context, []db.HashSetItem) error { return boom }
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			tt.setup(ms)
			if err := repo.Rebuild(context.Background(), makeEntries(3), 2); !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}
		})
	}
}

func TestSearch_NotBuilt(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, nil }
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		t.Error("search must not run")
		return nil, nil
	}

	_, err := repo.Search(context.Background(), testVector(1), 10)
	if !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Fatalf("expected ErrIndexNotBuilt, got %v", err)
	}
}

func TestSearch_DroppedBetweenCalls(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}
	if _, err := repo.Search(context.Background(), testVector(1), 10); !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Fatalf("expected ErrIndexNotBuilt, got %v", err)
	}
}

func TestSearch_SortsAndTrims(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.K != 2 || q.IndexName != "recommender:shl_assessments:idx" {
			t.Errorf("unexpected query %+v", q)
		}
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			{Key: "recommender:shl_assessments:7", Fields: map[string]string{"name": "no score"}},
			{Key: "recommender:shl_assessments:2", Score: 0.4, HasScore: true, Fields: map[string]string{"name": "far"}},
			{Key: "recommender:shl_assessments:5", Score: 0.1, HasScore: true},
		}}, nil
	}

	got, err := repo.Search(context.Background(), testVector(1), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "5" || *got[0].Distance != 0.1 || got[0].Metadata == nil {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].ID != "2" || got[1].Metadata["name"] != "far" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestSearch_MissingScoreKeepsNilDistance(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{Key: "recommender:shl_assessments:0"}}}, nil
	}

	got, err := repo.Search(context.Background(), testVector(1), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Distance != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.Search(context.Background(), testVector(1), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchCountFn = func(_ context.Context, index, query string) (int, error) {
		if index != "recommender:shl_assessments:idx" || query != "*" {
			t.Errorf("unexpected count args %q %q", index, query)
		}
		return 42, nil
	}
	n, err := repo.Count(context.Background())
	if err != nil || n != 42 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	ms.searchCountFn = func(context.Context, string, string) (int, error) { return 0, db.ErrIndexNotFound }
	if _, err := repo.Count(context.Background()); !errors.Is(err, domain.ErrIndexNotBuilt) {
		t.Fatalf("expected ErrIndexNotBuilt, got %v", err)
	}
}

func TestWithHNSW(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.WithHNSW(HNSWConfig{M: 32})
	if repo.hnsw.M != 32 || repo.hnsw.EFConstruct != 200 {
		t.Errorf("hnsw = %+v", repo.hnsw)
	}
}
