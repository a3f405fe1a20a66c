package usecase

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"socialflow/domain/dto"
	"socialflow/domain/model"
)

const (
	scheduleDateLayout = "2006-01-02"
	scheduleTimeLayout = "15:04"
)

// PostComposer holds the in-progress post of one user and derives its validation state.
// Selected platforms are rechecked against the registry on every validation.
type PostComposer struct {
	mu        sync.Mutex
	registry  *ConnectionRegistry
	location  *time.Location
	now       func() time.Time
	content   string
	selected  []model.Platform
	overLimit map[model.Platform]bool
	media     *model.MediaRef
	schedule  *time.Time
}

// NewPostComposer returns an empty composer reading connections from registry.
// Schedule date/time pairs are interpreted in loc (UTC when nil).
func NewPostComposer(registry *ConnectionRegistry, loc *time.Location) *PostComposer {
	if loc == nil {
		loc = time.UTC
	}
	return &PostComposer{
		registry:  registry,
		location:  loc,
		now:       time.Now,
		overLimit: map[model.Platform]bool{},
	}
}

// SetContent replaces the content and recomputes the over-limit flags.
func (c *PostComposer) SetContent(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
	c.recomputeLocked()
}

// SelectPlatform adds platform to the targets. It must be connected right now.
func (c *PostComposer) SelectPlatform(platform model.Platform) error {
	conn, err := c.registry.Get(platform)
	if err != nil {
		return err
	}
	if !conn.Connected {
		return model.ErrPlatformNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isSelectedLocked(platform) {
		return nil
	}
	c.selected = append(c.selected, platform)
	c.recomputeLocked()
	return nil
}

// DeselectPlatform removes platform from the targets if present.
func (c *PostComposer) DeselectPlatform(platform model.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.selected {
		if p == platform {
			c.selected = append(c.selected[:i], c.selected[i+1:]...)
			break
		}
	}
	c.recomputeLocked()
}

// AttachMedia replaces the media reference. The upload service has already checked it.
func (c *PostComposer) AttachMedia(ref model.MediaRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = &ref
}

// ClearMedia drops the media reference.
func (c *PostComposer) ClearMedia() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = nil
}

// SetSchedule combines a date and a time into the publish instant. An empty date or
// time clears the schedule.
func (c *PostComposer) SetSchedule(date, clock string) error {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		c.ClearSchedule()
		return nil
	}
	at, err := ParseSchedule(date, clock, c.location)
	if err != nil {
		return err
	}
	return c.SetScheduleAt(at)
}

// SetScheduleAt sets the publish instant. It must be strictly after now.
func (c *PostComposer) SetScheduleAt(at time.Time) error {
	if !at.After(c.now()) {
		return model.ErrScheduleInPast
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := at
	c.schedule = &t
	return nil
}

// ClearSchedule removes the publish instant.
func (c *PostComposer) ClearSchedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = nil
}

// Validate lists everything preventing submission. An empty result means submittable.
func (c *PostComposer) Validate() []model.Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

// ToDraftPost returns the draft when it is valid.
func (c *PostComposer) ToDraftPost() (model.DraftPost, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if violations := c.validateLocked(); len(violations) > 0 {
		return model.DraftPost{}, &model.InvalidDraftError{Violations: violations}
	}
	draft := model.DraftPost{
		Content:         c.content,
		TargetPlatforms: append([]model.Platform(nil), c.selected...),
	}
	if c.media != nil {
		m := *c.media
		draft.Media = &m
	}
	if c.schedule != nil {
		t := *c.schedule
		draft.ScheduledAt = &t
	}
	return draft, nil
}

// Snapshot renders the composer state.
func (c *PostComposer) Snapshot() dto.DraftResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := utf8.RuneCountInString(c.content)
	res := dto.DraftResponse{
		Content:    c.content,
		Platforms:  append([]model.Platform{}, c.selected...),
		Counts:     make([]dto.PlatformCount, 0, len(c.selected)),
		Violations: c.validateLocked(),
	}
	if c.media != nil {
		m := *c.media
		res.Media = &m
	}
	if c.schedule != nil {
		t := *c.schedule
		res.ScheduledAt = &t
	}
	for _, p := range c.selected {
		res.Counts = append(res.Counts, dto.PlatformCount{
			Platform:  p,
			Count:     count,
			Limit:     p.CharacterLimit(),
			OverLimit: c.overLimit[p],
		})
	}
	res.Submittable = len(res.Violations) == 0
	return res
}

// Reset clears every field.
func (c *PostComposer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = ""
	c.selected = nil
	c.overLimit = map[model.Platform]bool{}
	c.media = nil
	c.schedule = nil
}

func (c *PostComposer) validateLocked() []model.Violation {
	violations := []model.Violation{}
	if strings.TrimSpace(c.content) == "" {
		violations = append(violations, model.Violation{Kind: model.ViolationEmptyContent})
	}
	if len(c.selected) == 0 {
		violations = append(violations, model.Violation{Kind: model.ViolationNoPlatformSelected})
	}
	for _, p := range c.selected {
		if !c.registry.IsConnected(p) {
			violations = append(violations, model.Violation{Kind: model.ViolationPlatformDisconnectedSinceSelection, Platform: p})
		}
	}
	for _, p := range c.selected {
		if c.overLimit[p] {
			violations = append(violations, model.Violation{Kind: model.ViolationOverLimit, Platform: p})
		}
	}
	return violations
}

func (c *PostComposer) recomputeLocked() {
	flags := make(map[model.Platform]bool, len(c.selected))
	for _, p := range c.selected {
		flags[p] = p.Exceeds(c.content)
	}
	c.overLimit = flags
}

func (c *PostComposer) isSelectedLocked(platform model.Platform) bool {
	for _, p := range c.selected {
		if p == platform {
			return true
		}
	}
	return false
}

// ParseSchedule combines a 2006-01-02 date and a 15:04 (or 15:04:05) time in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	layout := scheduleDateLayout + "T" + scheduleTimeLayout
	if strings.Count(clock, ":") == 2 {
		layout += ":05"
	}
	at, err := time.ParseInLocation(layout, date+"T"+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", model.ErrInvalidSchedule, err)
	}
	return at, nil
}
