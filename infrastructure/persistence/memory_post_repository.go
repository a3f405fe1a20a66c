package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
)

// MemoryPostRepository keeps posts in process memory. Used when Postgres is not configured.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]model.Post
}

func NewMemoryPostRepository() repository.IPost {
	return &MemoryPostRepository{posts: map[string]model.Post{}}
}

func (r *MemoryPostRepository) Save(_ context.Context, p *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = clonePost(p)
	return nil
}

func (r *MemoryPostRepository) GetByID(_ context.Context, id string) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	c := clonePost(&p)
	return &c, nil
}

func (r *MemoryPostRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*model.Post, error) {
	r.mu.RLock()
	var list []*model.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			c := clonePost(&p)
			list = append(list, &c)
		}
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *MemoryPostRepository) FetchDue(_ context.Context, now time.Time, limit int) ([]*model.Post, error) {
	r.mu.RLock()
	var due []*model.Post
	for _, p := range r.posts {
		if p.Due(now) {
			c := clonePost(&p)
			due = append(due, &c)
		}
	}
	r.mu.RUnlock()
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(*due[j].ScheduledAt) })
	if limit > 0 && limit < len(due) {
		due = due[:limit]
	}
	return due, nil
}

func (r *MemoryPostRepository) UpdateStatus(_ context.Context, p *model.Post, from model.PostStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	r.posts[p.ID] = clonePost(p)
	return true, nil
}

func (r *MemoryPostRepository) CountByStatus(_ context.Context, userID string) (model.PostStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats model.PostStats
	for _, p := range r.posts {
		if p.UserID == userID {
			stats.Add(p.Status, 1)
		}
	}
	return stats, nil
}

func clonePost(p *model.Post) model.Post {
	c := *p
	c.TargetPlatforms = append([]model.Platform(nil), p.TargetPlatforms...)
	if p.Media != nil {
		m := *p.Media
		c.Media = &m
	}
	return c
}
