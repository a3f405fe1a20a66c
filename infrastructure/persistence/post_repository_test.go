package persistence

import (
	"context"
	"testing"
	"time"

	"socialflow/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{"id", "user_id", "content", "target_platforms", "media", "scheduled_at", "status", "error_message", "published_at", "created_at", "updated_at"}

func TestPostRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostRepository(db)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	post := &model.Post{
		ID:              "p-1",
		UserID:          "u-1",
		Content:         "hello",
		TargetPlatforms: []model.Platform{model.PlatformInstagram, model.PlatformTikTok},
		Status:          model.PostStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs("p-1", "u-1", "hello", sqlmock.AnyArg(), nil, nil, "draft", nil, nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), post))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostRepository(db)

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	scheduled := created.Add(time.Hour)
	rows := sqlmock.NewRows(postRowColumns).
		AddRow("p-1", "u-1", "hi", "{Instagram,YouTube}", `{"url":"https://cdn/x.jpg","kind":"image","byte_size":10}`, scheduled, "scheduled", nil, nil, created, created)
	mock.ExpectQuery(`SELECT .* FROM posts WHERE id=\$1`).WithArgs("p-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, []model.Platform{model.PlatformInstagram, model.PlatformYouTube}, got.TargetPlatforms)
	assert.Equal(t, model.PostStatusScheduled, got.Status)
	require.NotNil(t, got.Media)
	assert.Equal(t, "https://cdn/x.jpg", got.Media.URL)
	require.NotNil(t, got.ScheduledAt)
	assert.True(t, scheduled.Equal(*got.ScheduledAt))
	assert.Nil(t, got.ErrorMessage)

	mock.ExpectQuery(`SELECT .* FROM posts WHERE id=\$1`).WithArgs("missing").WillReturnRows(sqlmock.NewRows(postRowColumns))
	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrPostNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpdateStatusGuardsFromStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostRepository(db)

	post := &model.Post{ID: "p-1", Status: model.PostStatusPublished, UpdatedAt: time.Now().UTC()}

	mock.ExpectExec(`UPDATE posts SET status=\$1`).
		WithArgs("published", nil, nil, nil, post.UpdatedAt, "p-1", "scheduled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.UpdateStatus(context.Background(), post, model.PostStatusScheduled)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(`UPDATE posts SET status=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.UpdateStatus(context.Background(), post, model.PostStatusScheduled)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_FetchDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostRepository(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(postRowColumns).
		AddRow("p-1", "u-1", "a", "{TikTok}", nil, now.Add(-time.Minute), "scheduled", nil, nil, now, now).
		AddRow("p-2", "u-2", "b", "{YouTube}", nil, now, "scheduled", nil, nil, now, now)
	mock.ExpectQuery(`FROM posts WHERE status=\$1 AND scheduled_at <= \$2`).
		WithArgs("scheduled", now, 10).
		WillReturnRows(rows)

	due, err := repo.FetchDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "p-1", due[0].ID)
	assert.Nil(t, due[0].Media)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM posts`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("draft", 2).
			AddRow("published", 3).
			AddRow("failed", 1))

	stats, err := repo.CountByStatus(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, model.PostStats{Total: 6, Draft: 2, Published: 3, Failed: 1}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}
