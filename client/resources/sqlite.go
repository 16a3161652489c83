package resources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	size INTEGER NOT NULL,
	stored_at INTEGER NOT NULL
);
`

// SQLiteBlobStore keeps zstd compressed blobs in a sqlite database.
type SQLiteBlobStore struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewSQLiteBlobStore(ctx context.Context, path string) (*SQLiteBlobStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %v", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %v", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %v", err)
	}

	return &SQLiteBlobStore{
		db:      db,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (s *SQLiteBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	q := `
	SELECT data, size FROM blobs WHERE key = ?;
	`
	var compressed []byte
	var size int
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&compressed, &size); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan blob: %v", err)
	}

	data, err := s.decoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress blob %s: %v", key, err)
	}
	return data, nil
}

func (s *SQLiteBlobStore) Put(ctx context.Context, key string, data []byte) error {
	q := `
	INSERT OR REPLACE INTO blobs (key, data, size, stored_at)
	VALUES (?, ?, ?, ?);
	`
	compressed := s.encoder.EncodeAll(data, nil)
	if _, err := s.db.ExecContext(ctx, q, key, compressed, len(data), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert blob: %v", err)
	}
	return nil
}

func (s *SQLiteBlobStore) Close() error {
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.db.Close()
		return fmt.Errorf("failed to close encoder: %v", err)
	}
	return s.db.Close()
}
