package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// ChunkRepository persists generations of chunks per file and searches them by embedding similarity
type ChunkRepository interface {
	Replace(ctx context.Context, fileID string, chunks []*entity.Chunk) (int64, error)
	FetchByFiles(ctx context.Context, fileIDs []string) ([]*entity.Chunk, error)
	SearchSimilar(ctx context.Context, query []float32, fileIDs []string, threshold float64, limit int) ([]*entity.ScoredChunk, error)
	DeleteByFile(ctx context.Context, fileID string) error
}

var _ ChunkRepository = &ChunkPostgres{}

var chunkCopyColumns = []string{
	"file_id", "generation", "chunk_index", "content", "char_start", "char_end", "metadata", "embedding",
}

// latestGenerations restricts reads to the newest generation of every requested file
const latestGenerations = `
	latest AS (
		SELECT file_id, max(generation) AS generation
		FROM document_chunks
		WHERE file_id = ANY($1)
		GROUP BY file_id
	)`

// ChunkPostgres implements ChunkRepository using PostgreSQL with pgvector
type ChunkPostgres struct {
	db *pgxpool.Pool
}

func NewChunkPostgres(db *pgxpool.Pool) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

// Replace stores chunks as a new generation of fileID and drops every older generation.
// Replacements of one file are serialized by an advisory lock, and the new generation is
// inserted before the old one is removed, all in one transaction.
func (r *ChunkPostgres) Replace(ctx context.Context, fileID string, chunks []*entity.Chunk) (int64, error) {
	fid, err := toPgUUID(fileID)
	if err != nil {
		return 0, fmt.Errorf("parse file ID: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, uuidString(fid)); err != nil {
		return 0, fmt.Errorf("lock file chunks: %w", err)
	}

	var generation int64
	if err := tx.QueryRow(ctx, `SELECT nextval('chunk_generation_seq')`).Scan(&generation); err != nil {
		return 0, fmt.Errorf("allocate chunk generation: %w", err)
	}

	rows := make([][]any, 0, len(chunks))
	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return 0, fmt.Errorf("encode chunk metadata: %w", err)
		}

		rows = append(rows, []any{
			fid,
			generation,
			int32(chunk.Index),
			chunk.Content,
			int32(chunk.CharStart),
			int32(chunk.CharEnd),
			metadata,
			pgvector.NewVector(chunk.Embedding),
		})
	}

	if len(rows) > 0 {
		inserted, err := tx.CopyFrom(ctx, pgx.Identifier{"document_chunks"}, chunkCopyColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("insert chunks: %w", err)
		}
		if inserted != int64(len(rows)) {
			return 0, fmt.Errorf("insert chunks: copied %d of %d rows", inserted, len(rows))
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE file_id = $1 AND generation < $2`, fid, generation)
	if err != nil {
		return 0, fmt.Errorf("delete previous chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit chunk replacement: %w", err)
	}

	for _, chunk := range chunks {
		chunk.Generation = generation
	}

	ctxzap.Debug(ctx, "chunk generation replaced",
		zap.String("file_id", fileID),
		zap.Int64("generation", generation),
		zap.Int("inserted", len(rows)),
		zap.Int64("deleted", tag.RowsAffected()),
	)

	return generation, nil
}

// FetchByFiles returns the latest generation of every file ordered by file id, then chunk index
func (r *ChunkPostgres) FetchByFiles(ctx context.Context, fileIDs []string) ([]*entity.Chunk, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}

	ids, err := toPgUUIDs(fileIDs)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		WITH `+latestGenerations+`
		SELECT c.file_id, c.generation, c.chunk_index, c.content, c.char_start, c.char_end, c.metadata, c.created_at
		FROM document_chunks c
		JOIN latest l ON l.file_id = c.file_id AND l.generation = c.generation
		ORDER BY c.file_id, c.chunk_index`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[chunkRow])
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}

	chunks := make([]*entity.Chunk, 0, len(results))
	for _, result := range results {
		chunk, err := toEntityChunk(result)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// SearchSimilar ranks the latest chunks of fileIDs by cosine similarity to query,
// keeping matches at or above threshold
func (r *ChunkPostgres) SearchSimilar(ctx context.Context, query []float32, fileIDs []string, threshold float64, limit int) ([]*entity.ScoredChunk, error) {
	if len(fileIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	ids, err := toPgUUIDs(fileIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearchFailed, err)
	}

	rows, err := r.db.Query(ctx, `
		WITH `+latestGenerations+`
		SELECT c.file_id, c.chunk_index, c.content, 1 - (c.embedding <=> $2) AS similarity
		FROM document_chunks c
		JOIN latest l ON l.file_id = c.file_id AND l.generation = c.generation
		WHERE 1 - (c.embedding <=> $2) >= $3
		ORDER BY c.embedding <=> $2, c.file_id, c.chunk_index
		LIMIT $4`,
		ids, pgvector.NewVector(query), threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearchFailed, err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[scoredChunkRow])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSearchFailed, err)
	}

	matches := make([]*entity.ScoredChunk, 0, len(results))
	for _, result := range results {
		matches = append(matches, toEntityScoredChunk(result))
	}

	return matches, nil
}

// DeleteByFile removes every generation of fileID
func (r *ChunkPostgres) DeleteByFile(ctx context.Context, fileID string) error {
	fid, err := toPgUUID(fileID)
	if err != nil {
		return fmt.Errorf("parse file ID: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Wait for an in-flight replacement so it cannot resurrect the file's chunks
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, uuidString(fid)); err != nil {
		return fmt.Errorf("lock file chunks: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE file_id = $1`, fid); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chunk deletion: %w", err)
	}

	return nil
}
