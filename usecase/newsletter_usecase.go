package usecase

import (
	"context"
	"regexp"
	"strings"

	"socialflow/domain/model"
	"socialflow/domain/repository"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

type INewsletterUsecase interface {
	Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error)
}

type newsletterUsecase struct {
	repo repository.INewsletter
}

func NewNewsletterUsecase(repo repository.INewsletter) INewsletterUsecase {
	return &newsletterUsecase{repo: repo}
}

func (u *newsletterUsecase) Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, model.ErrInvalidEmail
	}
	sub := &model.NewsletterSubscription{Email: email, IsActive: true}
	if err := u.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
