package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	statements, err := readMigrations("postgres")
	if err != nil {
		conn.Close(ctx)
		return nil, err
	}
	for i, migration := range statements {
		if _, err := conn.Exec(ctx, migration); err != nil {
			conn.Close(ctx)
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveScores(ctx context.Context, scores []models.Score) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	INSERT INTO scores (client_id, name, ship_image_url, kills, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (client_id) DO UPDATE SET
		name = $2, ship_image_url = $3, kills = $4, updated_at = $5;
	`
	for _, score := range scores {
		_, err := tx.Exec(ctx, q, score.ClientID, score.Name, score.ShipImageURL, score.Kills, score.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save score for %s: %v", score.ClientID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) GetScore(ctx context.Context, clientID string) (*models.Score, error) {
	q := `
	SELECT client_id, name, ship_image_url, kills, updated_at FROM scores WHERE client_id = $1;
	`
	score := &models.Score{}
	err := r.conn.QueryRow(ctx, q, clientID).Scan(&score.ClientID, &score.Name, &score.ShipImageURL, &score.Kills, &score.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{ClientID: clientID}
		}
		return nil, fmt.Errorf("failed to scan score: %v", err)
	}

	return score, nil
}

func (r *PostgresRepository) ListTopScores(ctx context.Context, limit int) ([]models.Score, error) {
	q := `
	SELECT client_id, name, ship_image_url, kills, updated_at FROM scores
	ORDER BY kills DESC, updated_at ASC
	LIMIT $1;
	`
	rows, err := r.conn.Query(ctx, q, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %v", err)
	}
	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Score, error) {
		var score models.Score
		err := row.Scan(&score.ClientID, &score.Name, &score.ShipImageURL, &score.Kills, &score.UpdatedAt)
		return score, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan scores: %v", err)
	}

	return scores, nil
}
