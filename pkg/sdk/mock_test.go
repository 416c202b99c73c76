package recommender

import (
	"context"

	"github.com/kailas-cloud/recommender/internal/domain"
	healthuc "github.com/kailas-cloud/recommender/internal/usecase/health"
	indexuc "github.com/kailas-cloud/recommender/internal/usecase/index"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
)

// --- indexUseCase mock ---

type mockIndexUC struct {
	buildFn    func(ctx context.Context, records []domain.Assessment) (int, error)
	snapshotFn func(ctx context.Context, path string) (indexuc.Report, error)
	countFn    func(ctx context.Context) (int, error)
}

func (m *mockIndexUC) Build(ctx context.Context, records []domain.Assessment) (int, error) {
	return m.buildFn(ctx, records)
}

func (m *mockIndexUC) BuildFromSnapshot(ctx context.Context, path string) (indexuc.Report, error) {
	return m.snapshotFn(ctx, path)
}

func (m *mockIndexUC) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

// --- recommendUseCase mock ---

type mockRecommendUC struct {
	recommendFn func(ctx context.Context, req recommenduc.Request) ([]domain.Recommendation, error)
}

func (m *mockRecommendUC) Recommend(
	ctx context.Context, req recommenduc.Request,
) ([]domain.Recommendation, error) {
	return m.recommendFn(ctx, req)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- store mock ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }
func (m *mockStore) Close()                       { m.closed = true }

// --- embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

// --- helpers ---

func testClient(indexSvc indexUseCase, recSvc recommendUseCase, healthSvc healthUseCase) *Client {
	return &Client{
		store:        &mockStore{},
		indexSvc:     indexSvc,
		recommendSvc: recSvc,
		healthSvc:    healthSvc,
	}
}
