package repository

import (
	"encoding/json"
	"fmt"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type sourceFileRow struct {
	ID          pgtype.UUID        `db:"id"`
	RoomID      pgtype.UUID        `db:"room_id"`
	Name        string             `db:"name"`
	StoragePath string             `db:"storage_path"`
	MimeType    string             `db:"mime_type"`
	Size        int64              `db:"size"`
	CreatedAt   pgtype.Timestamptz `db:"created_at"`
}

type chunkRow struct {
	FileID     pgtype.UUID        `db:"file_id"`
	Generation int64              `db:"generation"`
	ChunkIndex int32              `db:"chunk_index"`
	Content    string             `db:"content"`
	CharStart  int32              `db:"char_start"`
	CharEnd    int32              `db:"char_end"`
	Metadata   []byte             `db:"metadata"`
	CreatedAt  pgtype.Timestamptz `db:"created_at"`
}

type scoredChunkRow struct {
	FileID     pgtype.UUID `db:"file_id"`
	ChunkIndex int32       `db:"chunk_index"`
	Content    string      `db:"content"`
	Similarity float64     `db:"similarity"`
}

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func toPgUUIDs(ids []string) ([]pgtype.UUID, error) {
	out := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		pgID, err := toPgUUID(id)
		if err != nil {
			return nil, fmt.Errorf("parse file ID %q: %w", id, err)
		}
		out = append(out, pgID)
	}
	return out, nil
}

func uuidString(id pgtype.UUID) string {
	return uuid.UUID(id.Bytes).String()
}

func toEntitySourceFile(row *sourceFileRow) *entity.SourceFile {
	return &entity.SourceFile{
		ID:          uuidString(row.ID),
		RoomID:      uuidString(row.RoomID),
		Name:        row.Name,
		StoragePath: row.StoragePath,
		MimeType:    row.MimeType,
		Size:        row.Size,
		CreatedAt:   row.CreatedAt.Time,
	}
}

func toEntityChunk(row *chunkRow) (*entity.Chunk, error) {
	chunk := &entity.Chunk{
		FileID:     uuidString(row.FileID),
		Index:      int(row.ChunkIndex),
		Content:    row.Content,
		CharStart:  int(row.CharStart),
		CharEnd:    int(row.CharEnd),
		Generation: row.Generation,
		CreatedAt:  row.CreatedAt.Time,
	}

	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("decode chunk metadata: %w", err)
		}
	}

	return chunk, nil
}

func toEntityScoredChunk(row *scoredChunkRow) *entity.ScoredChunk {
	return &entity.ScoredChunk{
		FileID:     uuidString(row.FileID),
		Index:      int(row.ChunkIndex),
		Content:    row.Content,
		Similarity: row.Similarity,
	}
}
