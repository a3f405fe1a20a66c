package repository

import (
	"context"
	"time"

	"socialflow/domain/model"
)

// IPost persists submitted posts.
type IPost interface {
	Save(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Post, error)
	// FetchDue returns scheduled posts whose scheduled time is at or before now, oldest first.
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.Post, error)
	// UpdateStatus moves a post from one status to another. It returns false when the
	// stored status no longer equals from.
	UpdateStatus(ctx context.Context, post *model.Post, from model.PostStatus) (bool, error)
	CountByStatus(ctx context.Context, userID string) (model.PostStats, error)
}

// IPostAudit is an append-only log of status transitions.
type IPostAudit interface {
	Record(ctx context.Context, audit *model.PostAudit) error
}
