package model

import "time"

// NewsletterSubscription is a marketing newsletter sign-up.
type NewsletterSubscription struct {
	ID           uint      `json:"id"            gorm:"primaryKey"`
	Email        string    `json:"email"         gorm:"uniqueIndex;size:320"`
	IsActive     bool      `json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at" gorm:"autoCreateTime;index"`
}
