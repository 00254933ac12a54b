package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMovie(title string) *entity.Movie {
	now := time.Now()
	return &entity.Movie{
		Base:              entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Title:             title,
		DurationInMinutes: 120,
		ReleaseDate:       now,
	}
}

func TestStore_WithTxCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	movie := newMovie("Commit")

	err := store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		return tx.Movie.Create(ctx, movie)
	})
	require.NoError(t, err)

	got, err := store.Repos().Movie.FindByID(ctx, movie.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Commit", got.Title)
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	movie := newMovie("Rollback")
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		require.NoError(t, tx.Movie.Create(ctx, movie))

		// visible inside the transaction
		inside, err := tx.Movie.FindByID(ctx, movie.ID)
		require.NoError(t, err)
		assert.NotNil(t, inside)

		// not visible outside before commit
		outside, err := store.Repos().Movie.FindByID(ctx, movie.ID)
		require.NoError(t, err)
		assert.Nil(t, outside)

		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Repos().Movie.FindByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_WithTxHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().WithTx(ctx, func(context.Context, *repository.Repository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_ConcurrentTransactionsAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Now()
	cinema := &entity.Cinema{Base: entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, Name: "Main", City: "Jakarta"}
	require.NoError(t, store.Repos().Cinema.Create(ctx, cinema))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
				return tx.Cinema.IncrementHalls(ctx, cinema.ID)
			})
		}()
	}
	wg.Wait()

	got, err := store.Repos().Cinema.FindByID(ctx, cinema.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.TotalHalls)
}

func TestMovieRepo_SoftDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	movie := newMovie("Gone")
	require.NoError(t, store.Repos().Movie.Create(ctx, movie))

	require.NoError(t, store.Repos().Movie.Delete(ctx, movie.ID))

	got, err := store.Repos().Movie.FindByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err := store.Repos().Movie.CountAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Error(t, store.Repos().Movie.Delete(ctx, movie.ID))
}
