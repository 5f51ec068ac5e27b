package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storyweft/personae/internal/domain"
)

// ChunkRepository persists raw document chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

// Insert stores a chunk and fills in the store-assigned identity and
// creation time. Chunks are immutable after this point.
func (r *ChunkRepository) Insert(ctx context.Context, c *domain.Chunk) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO chunks (run_id, sequence_index, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.RunID, c.SequenceIndex, c.Text,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.Chunk, error) {
	var c domain.Chunk
	err := r.db.QueryRow(ctx,
		`SELECT id, run_id, sequence_index, content, created_at
		 FROM chunks WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.RunID, &c.SequenceIndex, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunkNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByRun returns a run's chunks in sequence order.
func (r *ChunkRepository) ListByRun(ctx context.Context, runID string) ([]*domain.Chunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, run_id, sequence_index, content, created_at
		 FROM chunks WHERE run_id = $1
		 ORDER BY sequence_index`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.RunID, &c.SequenceIndex, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}
