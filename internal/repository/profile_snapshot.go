package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storyweft/personae/internal/domain"
)

// ProfileSnapshotRepository persists per-chunk character profile snapshots.
// The table is append-only: snapshots are inserted, never updated.
type ProfileSnapshotRepository struct {
	db dbtx
}

func NewProfileSnapshotRepository(pool *pgxpool.Pool) *ProfileSnapshotRepository {
	return &ProfileSnapshotRepository{db: pool}
}

// Insert appends one snapshot keyed by the chunk that produced it and
// returns the store-assigned identity.
func (r *ProfileSnapshotRepository) Insert(ctx context.Context, chunkID string, profile domain.Profile) (string, error) {
	doc, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}

	var id string
	err = r.db.QueryRow(ctx,
		`INSERT INTO chunk_character_profiles (chunk_id, profile)
		 VALUES ($1, $2)
		 RETURNING id`,
		chunkID, doc,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListByChunk returns all snapshots produced from a chunk, oldest first.
func (r *ProfileSnapshotRepository) ListByChunk(ctx context.Context, chunkID string) ([]*domain.ProfileSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, chunk_id, profile, created_at
		 FROM chunk_character_profiles
		 WHERE chunk_id = $1
		 ORDER BY created_at`,
		chunkID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// ListByName returns every snapshot for a character name across all chunks,
// in chunk order. Name matching is exact on the stored profile document.
func (r *ProfileSnapshotRepository) ListByName(ctx context.Context, name string) ([]*domain.ProfileSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.chunk_id, p.profile, p.created_at
		 FROM chunk_character_profiles p
		 JOIN chunks c ON c.id = p.chunk_id
		 WHERE p.profile->>'name' = $1
		 ORDER BY c.sequence_index, p.created_at`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// CountByChunk reports how many snapshots a chunk produced.
func (r *ProfileSnapshotRepository) CountByChunk(ctx context.Context, chunkID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunk_character_profiles WHERE chunk_id = $1`,
		chunkID,
	).Scan(&count)
	return count, err
}

type snapshotRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSnapshots(rows snapshotRows) ([]*domain.ProfileSnapshot, error) {
	var snapshots []*domain.ProfileSnapshot
	for rows.Next() {
		var s domain.ProfileSnapshot
		var doc []byte
		if err := rows.Scan(&s.ID, &s.ChunkID, &doc, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, &s.Profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile document: %w", err)
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}
