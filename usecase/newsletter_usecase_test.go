package usecase

import (
	"context"
	"testing"

	"socialflow/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewsletterUsecase_Subscribe(t *testing.T) {
	repo := new(MockNewsletterRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.NewsletterSubscription) bool {
		return s.Email == "jane@example.com" && s.IsActive
	})).Return(nil).Once()

	sub, err := NewNewsletterUsecase(repo).Subscribe(context.Background(), "  Jane@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", sub.Email)
	repo.AssertExpectations(t)
}

func TestNewsletterUsecase_Rejects(t *testing.T) {
	repo := new(MockNewsletterRepository)
	uc := NewNewsletterUsecase(repo)

	for _, email := range []string{"", "plain", "a@b", "a b@example.com"} {
		_, err := uc.Subscribe(context.Background(), email)
		assert.ErrorIs(t, err, model.ErrInvalidEmail, email)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	repo.On("Create", mock.Anything, mock.Anything).Return(model.ErrAlreadySubscribed)
	_, err := uc.Subscribe(context.Background(), "dup@example.com")
	assert.ErrorIs(t, err, model.ErrAlreadySubscribed)
}
