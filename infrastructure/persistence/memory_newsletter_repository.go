package persistence

import (
	"context"
	"sync"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
)

type memoryNewsletter struct {
	mu     sync.Mutex
	nextID uint
	byMail map[string]*model.NewsletterSubscription
}

// NewMemoryNewsletterRepository is used when MySQL is not configured.
func NewMemoryNewsletterRepository() repository.INewsletter {
	return &memoryNewsletter{byMail: map[string]*model.NewsletterSubscription{}}
}

func (m *memoryNewsletter) Create(_ context.Context, sub *model.NewsletterSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byMail[sub.Email]; ok {
		return model.ErrAlreadySubscribed
	}
	m.nextID++
	sub.ID = m.nextID
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now().UTC()
	}
	stored := *sub
	m.byMail[sub.Email] = &stored
	return nil
}
