package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EmbeddingStore persists embedding vectors keyed by model and normalized text.
// It satisfies embedding.VectorStore.
type EmbeddingStore struct {
	db *DB
}

// NewEmbeddingStore returns a vector store backed by db
func NewEmbeddingStore(db *DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// Get returns the stored vector, or nil if none exists
func (s *EmbeddingStore) Get(ctx context.Context, model, text string) ([]float32, error) {
	var vec []float32
	err := s.db.pool.QueryRow(ctx,
		`SELECT vector FROM skill_embeddings WHERE model = $1 AND text = $2`,
		model, text,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get embedding for %q: %w", text, err)
	}
	return vec, nil
}

// Put stores vec, replacing any previous vector for the same model and text
func (s *EmbeddingStore) Put(ctx context.Context, model, text string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("refusing to store empty embedding for %q", text)
	}
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO skill_embeddings (model, text, dimension, vector)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (model, text) DO UPDATE SET dimension = $3, vector = $4, updated_at = NOW()`,
		model, text, len(vec), vec,
	)
	if err != nil {
		return fmt.Errorf("failed to save embedding for %q: %w", text, err)
	}
	return nil
}

// Count returns the number of vectors stored for model
func (s *EmbeddingStore) Count(ctx context.Context, model string) (int, error) {
	var n int
	err := s.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM skill_embeddings WHERE model = $1`, model,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

// Purge deletes every vector stored for model
func (s *EmbeddingStore) Purge(ctx context.Context, model string) (int64, error) {
	tag, err := s.db.pool.Exec(ctx, `DELETE FROM skill_embeddings WHERE model = $1`, model)
	if err != nil {
		return 0, fmt.Errorf("failed to purge embeddings: %w", err)
	}
	return tag.RowsAffected(), nil
}
