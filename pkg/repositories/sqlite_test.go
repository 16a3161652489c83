package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/skirmish/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRepository(t *testing.T) Repository {
	t.Helper()
	ctx := context.Background()
	repository, err := NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(ctx) })
	return repository
}

func TestSQLiteRepository_SaveScores(t *testing.T) {
	ctx := context.Background()
	repository := newTestSQLiteRepository(t)

	require.NoError(t, repository.SaveScores(ctx, []models.Score{
		{ClientID: "a", Name: "Ace", Kills: 2, UpdatedAt: 10},
		{ClientID: "b", Name: "Bee", ShipImageURL: "http://x/b.png", Kills: 5, UpdatedAt: 20},
	}))
	require.NoError(t, repository.SaveScores(ctx, []models.Score{
		{ClientID: "a", Name: "Ace", Kills: 7, UpdatedAt: 30},
	}))

	score, err := repository.GetScore(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, &models.Score{ClientID: "a", Name: "Ace", Kills: 7, UpdatedAt: 30}, score)

	_, err = repository.GetScore(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestSQLiteRepository_ListTopScores(t *testing.T) {
	ctx := context.Background()
	repository := newTestSQLiteRepository(t)

	scores, err := repository.ListTopScores(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, scores)

	require.NoError(t, repository.SaveScores(ctx, []models.Score{
		{ClientID: "a", Name: "Ace", Kills: 3, UpdatedAt: 2},
		{ClientID: "b", Name: "Bee", Kills: 5, UpdatedAt: 1},
		{ClientID: "c", Name: "Cee", Kills: 3, UpdatedAt: 1},
	}))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "default limit", limit: 0, want: []string{"b", "c", "a"}},
		{name: "limited", limit: 2, want: []string{"b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := repository.ListTopScores(ctx, tt.limit)
			require.NoError(t, err)
			ids := make([]string, len(scores))
			for i, score := range scores {
				ids[i] = score.ClientID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestReadMigrations(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres"} {
		statements, err := readMigrations(dialect)
		require.NoError(t, err)
		assert.NotEmpty(t, statements, dialect)
	}
	_, err := readMigrations("mysql")
	assert.Error(t, err)
}
