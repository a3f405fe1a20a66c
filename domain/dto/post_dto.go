package dto

import (
	"time"

	"socialflow/domain/model"
)

// ContentRequest replaces the draft content.
type ContentRequest struct {
	Content string `json:"content"`
}

// ScheduleRequest carries a date (2006-01-02) and time (15:04) pair.
// Leaving either empty clears the schedule.
type ScheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// SubmitRequest submits the current draft.
type SubmitRequest struct {
	SaveAsDraft bool `json:"save_as_draft"`
}

// PlatformCount is the character counter rendered next to each selected platform.
type PlatformCount struct {
	Platform  model.Platform `json:"platform"`
	Count     int            `json:"count"`
	Limit     int            `json:"limit"`
	OverLimit bool           `json:"over_limit"`
}

// DraftResponse is the composer state returned after every mutation.
type DraftResponse struct {
	Content     string            `json:"content"`
	Platforms   []model.Platform  `json:"platforms"`
	Media       *model.MediaRef   `json:"media,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	Counts      []PlatformCount   `json:"counts"`
	Violations  []model.Violation `json:"violations"`
	Submittable bool              `json:"submittable"`
}

// CallbackRequest carries the query parameters the provider redirected back with.
type CallbackRequest struct {
	Code  string `json:"code"  form:"code"`
	State string `json:"state" form:"state"`
	Error string `json:"error" form:"error"`
}

// NewsletterRequest subscribes an email address.
type NewsletterRequest struct {
	Email string `json:"email"`
}
