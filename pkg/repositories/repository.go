package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/cbodonnell/skirmish/pkg/repositories/models"
)

// DefaultScoreLimit is the number of scores listed when no limit is given
const DefaultScoreLimit = 10

//go:embed migrations
var migrations embed.FS

type Repository interface {
	Close(ctx context.Context) error
	// SaveScores upserts scores by client ID in a single transaction.
	SaveScores(ctx context.Context, scores []models.Score) error
	// GetScore returns ErrNotFound for an unknown client ID.
	GetScore(ctx context.Context, clientID string) (*models.Score, error)
	// ListTopScores returns at most limit scores, most kills first.
	ListTopScores(ctx context.Context, limit int) ([]models.Score, error)
}

// readMigrations returns the migrations of a dialect in file name order.
func readMigrations(dialect string) ([]string, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	statements := make([]string, 0, len(names))
	for _, name := range names {
		b, err := fs.ReadFile(migrations, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", name, err)
		}
		statements = append(statements, string(b))
	}
	return statements, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultScoreLimit
	}
	return limit
}
