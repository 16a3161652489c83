package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cbodonnell/skirmish/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	statements, err := readMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range statements {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveScores(ctx context.Context, scores []models.Score) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	INSERT INTO scores (client_id, name, ship_image_url, kills, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (client_id) DO UPDATE SET
		name = excluded.name,
		ship_image_url = excluded.ship_image_url,
		kills = excluded.kills,
		updated_at = excluded.updated_at;
	`
	for _, score := range scores {
		_, err := tx.ExecContext(ctx, q, score.ClientID, score.Name, score.ShipImageURL, score.Kills, score.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save score for %s: %v", score.ClientID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) GetScore(ctx context.Context, clientID string) (*models.Score, error) {
	q := `
	SELECT client_id, name, ship_image_url, kills, updated_at FROM scores WHERE client_id = ?;
	`
	score := &models.Score{}
	err := r.db.QueryRowContext(ctx, q, clientID).Scan(&score.ClientID, &score.Name, &score.ShipImageURL, &score.Kills, &score.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{ClientID: clientID}
		}
		return nil, fmt.Errorf("failed to scan score: %v", err)
	}

	return score, nil
}

func (r *SQLiteRepository) ListTopScores(ctx context.Context, limit int) ([]models.Score, error) {
	q := `
	SELECT client_id, name, ship_image_url, kills, updated_at FROM scores
	ORDER BY kills DESC, updated_at ASC
	LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %v", err)
	}
	defer rows.Close()

	scores := []models.Score{}
	for rows.Next() {
		var score models.Score
		if err := rows.Scan(&score.ClientID, &score.Name, &score.ShipImageURL, &score.Kills, &score.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %v", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %v", err)
	}

	return scores, nil
}
