package model

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus is the lifecycle state of a submitted post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPublished PostStatus = "published"
	PostStatusFailed    PostStatus = "failed"
)

var transitions = map[PostStatus][]PostStatus{
	PostStatusDraft:     {PostStatusScheduled, PostStatusPublished},
	PostStatusScheduled: {PostStatusPublished, PostStatusFailed},
}

// CanTransition reports whether a post may move from one status to another.
func CanTransition(from, to PostStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s PostStatus) Terminal() bool {
	return s == PostStatusPublished || s == PostStatusFailed
}

// DraftPost is the validated output of the composer, ready to become a Post.
type DraftPost struct {
	Content         string     `json:"content"`
	TargetPlatforms []Platform `json:"target_platforms"`
	Media           *MediaRef  `json:"media,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
}

// Post is a submitted post record.
type Post struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Content         string     `json:"content"`
	TargetPlatforms []Platform `json:"target_platforms"`
	Media           *MediaRef  `json:"media,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Status          PostStatus `json:"status"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewPost builds a post from a draft with a fresh id and the given initial status.
func NewPost(userID string, draft DraftPost, status PostStatus, now time.Time) *Post {
	targets := make([]Platform, len(draft.TargetPlatforms))
	copy(targets, draft.TargetPlatforms)
	var media *MediaRef
	if draft.Media != nil {
		m := *draft.Media
		media = &m
	}
	var scheduledAt *time.Time
	if draft.ScheduledAt != nil {
		t := draft.ScheduledAt.UTC()
		scheduledAt = &t
	}
	return &Post{
		ID:              uuid.NewString(),
		UserID:          userID,
		Content:         draft.Content,
		TargetPlatforms: targets,
		Media:           media,
		ScheduledAt:     scheduledAt,
		Status:          status,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
}

// Due reports whether a scheduled post has reached its publish time.
func (p *Post) Due(now time.Time) bool {
	return p.Status == PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now)
}

// PostAudit is an append-only record of a status transition.
type PostAudit struct {
	PostID       string     `json:"post_id"       bson:"post_id"`
	UserID       string     `json:"user_id"       bson:"user_id"`
	From         PostStatus `json:"from"          bson:"from"`
	To           PostStatus `json:"to"            bson:"to"`
	Platforms    []Platform `json:"platforms"     bson:"platforms"`
	ErrorMessage *string    `json:"error_message" bson:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"    bson:"created_at"`
}

// PostEvent is published whenever a post changes status.
type PostEvent struct {
	Type         string     `json:"type"`
	PostID       string     `json:"post_id"`
	UserID       string     `json:"user_id"`
	Status       PostStatus `json:"status"`
	Platforms    []Platform `json:"platforms"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// NewPostEvent snapshots p into an event.
func NewPostEvent(p *Post, now time.Time) PostEvent {
	return PostEvent{
		Type:         "post_status",
		PostID:       p.ID,
		UserID:       p.UserID,
		Status:       p.Status,
		Platforms:    p.TargetPlatforms,
		ScheduledAt:  p.ScheduledAt,
		ErrorMessage: p.ErrorMessage,
		OccurredAt:   now.UTC(),
	}
}

// PostStats holds per-status post counts for a user's dashboard.
type PostStats struct {
	Total     int `json:"total_posts"`
	Draft     int `json:"draft_posts"`
	Scheduled int `json:"scheduled_posts"`
	Published int `json:"published_posts"`
	Failed    int `json:"failed_posts"`
}

// Add counts one post of status s.
func (s *PostStats) Add(status PostStatus, n int) {
	s.Total += n
	switch status {
	case PostStatusDraft:
		s.Draft += n
	case PostStatusScheduled:
		s.Scheduled += n
	case PostStatusPublished:
		s.Published += n
	case PostStatusFailed:
		s.Failed += n
	}
}

// DeliveryRequest is handed to the delivery service once per target platform.
type DeliveryRequest struct {
	PostID      string    `json:"post_id"`
	UserID      string    `json:"user_id"`
	Platform    Platform  `json:"platform"`
	Content     string    `json:"content"`
	Media       *MediaRef `json:"media,omitempty"`
	AccessToken string    `json:"access_token"`
	ExternalID  string    `json:"external_id,omitempty"`
}
