package persistence

import (
	"context"
	"testing"

	"socialflow/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestNewsletterRepository_Create(t *testing.T) {
	gormDB, mock := newMockGorm(t)
	repo := NewNewsletterRepository(gormDB)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `newsletter_subscriptions`").
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `newsletter_subscriptions`").
		WillReturnResult(sqlmock.NewResult(5, 1))

	sub := &model.NewsletterSubscription{Email: "a@b.co", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), sub))
	assert.Equal(t, uint(5), sub.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterRepository_Duplicate(t *testing.T) {
	gormDB, mock := newMockGorm(t)
	repo := NewNewsletterRepository(gormDB)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `newsletter_subscriptions`").
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Create(context.Background(), &model.NewsletterSubscription{Email: "a@b.co"})
	require.ErrorIs(t, err, model.ErrAlreadySubscribed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryNewsletterRepository(t *testing.T) {
	repo := NewMemoryNewsletterRepository()
	first := &model.NewsletterSubscription{Email: "x@y.io"}
	require.NoError(t, repo.Create(context.Background(), first))
	assert.Equal(t, uint(1), first.ID)
	assert.False(t, first.SubscribedAt.IsZero())
	require.ErrorIs(t, repo.Create(context.Background(), &model.NewsletterSubscription{Email: "x@y.io"}), model.ErrAlreadySubscribed)
}
