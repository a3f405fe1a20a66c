package persistence

import (
	"context"
	"errors"
	"strings"

	"socialflow/domain/model"
	"socialflow/domain/repository"

	"gorm.io/gorm"
)

// NewsletterRepository stores newsletter subscriptions through gorm.
type NewsletterRepository struct{ db *gorm.DB }

var _ repository.INewsletter = (*NewsletterRepository)(nil)

func NewNewsletterRepository(db *gorm.DB) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

// AutoMigrate creates the subscriptions table.
func (r *NewsletterRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&model.NewsletterSubscription{})
}

func (r *NewsletterRepository) Create(ctx context.Context, sub *model.NewsletterSubscription) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.NewsletterSubscription{}).Where("email = ?", sub.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return model.ErrAlreadySubscribed
	}
	err := r.db.WithContext(ctx).Create(sub).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || (err != nil && strings.Contains(err.Error(), "Duplicate entry")) {
		return model.ErrAlreadySubscribed
	}
	return err
}
