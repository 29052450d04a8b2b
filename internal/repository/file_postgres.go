package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/studyroom-rag/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepository defines the interface for source file metadata persistence
type FileRepository interface {
	Create(ctx context.Context, file entity.SourceFile) (*entity.SourceFile, error)
	Get(ctx context.Context, id string) (*entity.SourceFile, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.SourceFile, error)
	Delete(ctx context.Context, id string) error
}

var _ FileRepository = &FilePostgres{}

const sourceFileColumns = `id, room_id, name, storage_path, mime_type, size, created_at`

// FilePostgres implements FileRepository using PostgreSQL
type FilePostgres struct {
	db *pgxpool.Pool
}

func NewFilePostgres(db *pgxpool.Pool) *FilePostgres {
	return &FilePostgres{db: db}
}

func (r *FilePostgres) Create(ctx context.Context, file entity.SourceFile) (*entity.SourceFile, error) {
	fileID, err := toPgUUID(file.ID)
	if err != nil {
		return nil, fmt.Errorf("parse file ID: %w", err)
	}

	roomID, err := toPgUUID(file.RoomID)
	if err != nil {
		return nil, fmt.Errorf("parse room ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO source_files (id, room_id, name, storage_path, mime_type, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sourceFileColumns,
		fileID, roomID, file.Name, file.StoragePath, file.MimeType, file.Size,
	)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[sourceFileRow])
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	return toEntitySourceFile(result), nil
}

func (r *FilePostgres) Get(ctx context.Context, id string) (*entity.SourceFile, error) {
	fileID, err := toPgUUID(id)
	if err != nil {
		return nil, fmt.Errorf("parse file ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+sourceFileColumns+` FROM source_files WHERE id = $1`, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	result, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[sourceFileRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrFileNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return toEntitySourceFile(result), nil
}

func (r *FilePostgres) ListByRoom(ctx context.Context, roomID string) ([]*entity.SourceFile, error) {
	rid, err := toPgUUID(roomID)
	if err != nil {
		return nil, fmt.Errorf("parse room ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+sourceFileColumns+`
		FROM source_files
		WHERE room_id = $1
		ORDER BY created_at, id`,
		rid,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[sourceFileRow])
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]*entity.SourceFile, 0, len(results))
	for _, result := range results {
		files = append(files, toEntitySourceFile(result))
	}

	return files, nil
}

func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	fileID, err := toPgUUID(id)
	if err != nil {
		return fmt.Errorf("parse file ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM source_files WHERE id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrFileNotFound
	}

	return nil
}
