package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"
	"socialflow/infrastructure/metrics"
	"socialflow/infrastructure/utils"

	"golang.org/x/sync/errgroup"
)

// ICredentialSource resolves the current connection of a user for delivery.
type ICredentialSource interface {
	Credentials(ctx context.Context, userID string, platform model.Platform) (model.PlatformConnection, error)
}

// IPostLifecycle governs the status of submitted posts.
type IPostLifecycle interface {
	Submit(ctx context.Context, userID string, draft model.DraftPost, saveAsDraft bool) (*model.Post, error)
	Schedule(ctx context.Context, userID, postID string, at time.Time) (*model.Post, error)
	Publish(ctx context.Context, userID, postID string) (*model.Post, error)
	Dispatch(ctx context.Context, postID string) (*model.Post, error)
	DispatchDue(ctx context.Context, limit int) (int, error)
	Get(ctx context.Context, userID, postID string) (*model.Post, error)
	List(ctx context.Context, userID string, limit, offset int) ([]*model.Post, error)
	Stats(ctx context.Context, userID string) (model.PostStats, error)
}

// PostLifecycle creates posts from drafts and moves them through
// draft -> scheduled -> published | failed. A status only changes after the
// delivery it depends on has returned.
type PostLifecycle struct {
	posts       repository.IPost
	delivery    repository.IDelivery
	credentials ICredentialSource
	audit       repository.IPostAudit
	events      repository.IPostEvents
	queue       repository.IDispatchQueue
	broadcast   func(*model.Post)
	now         func() time.Time

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewPostLifecycle wires the lifecycle. audit, events and queue may be nil.
func NewPostLifecycle(posts repository.IPost, delivery repository.IDelivery, credentials ICredentialSource, audit repository.IPostAudit, events repository.IPostEvents, queue repository.IDispatchQueue) *PostLifecycle {
	return &PostLifecycle{
		posts:       posts,
		delivery:    delivery,
		credentials: credentials,
		audit:       audit,
		events:      events,
		queue:       queue,
		now:         utils.GetCurrentTime,
		inflight:    map[string]struct{}{},
	}
}

// WithBroadcaster registers a callback notified of every status change.
func (l *PostLifecycle) WithBroadcaster(fn func(*model.Post)) *PostLifecycle {
	l.broadcast = fn
	return l
}

// Submit turns a validated draft into a post. saveAsDraft keeps it as a draft; a set
// schedule makes it scheduled; otherwise it is delivered now to every target platform.
func (l *PostLifecycle) Submit(ctx context.Context, userID string, draft model.DraftPost, saveAsDraft bool) (*model.Post, error) {
	if len(draft.TargetPlatforms) == 0 {
		return nil, &model.InvalidDraftError{Violations: []model.Violation{{Kind: model.ViolationNoPlatformSelected}}}
	}
	now := l.now()
	switch {
	case saveAsDraft:
		post := model.NewPost(userID, draft, model.PostStatusDraft, now)
		l.save(ctx, post)
		l.transitioned(ctx, post, "")
		return post, nil
	case draft.ScheduledAt != nil:
		if !draft.ScheduledAt.After(now) {
			return nil, model.ErrScheduleInPast
		}
		post := model.NewPost(userID, draft, model.PostStatusScheduled, now)
		l.save(ctx, post)
		l.enqueue(ctx, post)
		l.transitioned(ctx, post, "")
		return post, nil
	default:
		post := model.NewPost(userID, draft, model.PostStatusDraft, now)
		l.save(ctx, post)
		l.transitioned(ctx, post, "")
		return l.publishDraft(ctx, post)
	}
}

// Schedule moves a draft to scheduled. at is checked against the clock again here.
func (l *PostLifecycle) Schedule(ctx context.Context, userID, postID string, at time.Time) (*model.Post, error) {
	post, err := l.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(post.Status, model.PostStatusScheduled) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, post.Status, model.PostStatusScheduled)
	}
	now := l.now()
	if !at.After(now) {
		return nil, model.ErrScheduleInPast
	}
	scheduledAt := at.UTC()
	post.ScheduledAt = &scheduledAt
	post.ErrorMessage = nil
	if err := l.move(ctx, post, model.PostStatusScheduled, now); err != nil {
		return nil, err
	}
	l.enqueue(ctx, post)
	return post, nil
}

// Publish delivers a draft immediately.
func (l *PostLifecycle) Publish(ctx context.Context, userID, postID string) (*model.Post, error) {
	post, err := l.Get(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(post.Status, model.PostStatusPublished) || post.Status != model.PostStatusDraft {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, post.Status, model.PostStatusPublished)
	}
	return l.publishDraft(ctx, post)
}

// Dispatch delivers a due scheduled post. Posts that are not scheduled or not yet due
// are returned unchanged.
func (l *PostLifecycle) Dispatch(ctx context.Context, postID string) (*model.Post, error) {
	if !l.acquire(postID) {
		return nil, nil
	}
	defer l.release(postID)

	post, err := l.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.ErrPostNotFound
	}
	now := l.now()
	if !post.Due(now) {
		return post, nil
	}
	next := model.PostStatusPublished
	if err := l.deliverAll(ctx, post); err != nil {
		msg := err.Error()
		post.ErrorMessage = &msg
		next = model.PostStatusFailed
	} else {
		published := now.UTC()
		post.PublishedAt = &published
	}
	if err := l.move(ctx, post, next, l.now()); err != nil {
		return nil, err
	}
	return post, nil
}

// DispatchDue dispatches up to limit due posts and returns how many left the scheduled
// state. Posts skipped because they are in flight or no longer due are not counted.
func (l *PostLifecycle) DispatchDue(ctx context.Context, limit int) (int, error) {
	due, err := l.posts.FetchDue(ctx, l.now(), limit)
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, p := range due {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		from := p.Status
		out, err := l.Dispatch(ctx, p.ID)
		if err != nil {
			logger.GetLogger().WithField("post_id", p.ID).WithField("error", err).Error("dispatch failed")
			continue
		}
		if out != nil && out.Status != from {
			processed++
		}
	}
	return processed, nil
}

// Get returns a post owned by userID.
func (l *PostLifecycle) Get(ctx context.Context, userID, postID string) (*model.Post, error) {
	post, err := l.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, model.ErrPostNotFound
	}
	return post, nil
}

func (l *PostLifecycle) List(ctx context.Context, userID string, limit, offset int) ([]*model.Post, error) {
	return l.posts.ListByUser(ctx, userID, limit, offset)
}

func (l *PostLifecycle) Stats(ctx context.Context, userID string) (model.PostStats, error) {
	return l.posts.CountByStatus(ctx, userID)
}

func (l *PostLifecycle) publishDraft(ctx context.Context, post *model.Post) (*model.Post, error) {
	now := l.now()
	if post.ScheduledAt != nil && post.ScheduledAt.After(now) {
		post.ScheduledAt = nil
	}
	if err := l.deliverAll(ctx, post); err != nil {
		msg := err.Error()
		post.ErrorMessage = &msg
		post.UpdatedAt = l.now().UTC()
		l.save(ctx, post)
		return post, fmt.Errorf("%w: %v", model.ErrDeliveryFailed, err)
	}
	published := l.now().UTC()
	post.PublishedAt = &published
	post.ErrorMessage = nil
	if err := l.move(ctx, post, model.PostStatusPublished, published); err != nil {
		return nil, err
	}
	return post, nil
}

// deliverAll calls the delivery service exactly once per target platform and joins
// the failures. Any failure fails the whole post.
func (l *PostLifecycle) deliverAll(ctx context.Context, post *model.Post) error {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		failures []string
	)
	for _, platform := range post.TargetPlatforms {
		platform := platform
		g.Go(func() error {
			err := l.deliverOne(ctx, post, platform)
			outcome := "success"
			if err != nil {
				outcome = "failure"
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", platform, err))
				mu.Unlock()
			}
			metrics.Delivery(platform, outcome)
			return nil
		})
	}
	_ = g.Wait()
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, "; "))
}

func (l *PostLifecycle) deliverOne(ctx context.Context, post *model.Post, platform model.Platform) error {
	conn, err := l.credentials.Credentials(ctx, post.UserID, platform)
	if err != nil {
		return err
	}
	if !conn.Connected {
		return model.ErrPlatformNotConnected
	}
	req := model.DeliveryRequest{
		PostID:      post.ID,
		UserID:      post.UserID,
		Platform:    platform,
		Content:     post.Content,
		Media:       post.Media,
		AccessToken: conn.AccessToken,
	}
	if conn.UserInfo != nil {
		req.ExternalID = conn.UserInfo.ExternalID
	}
	return l.delivery.Deliver(ctx, req)
}

func (l *PostLifecycle) move(ctx context.Context, post *model.Post, to model.PostStatus, now time.Time) error {
	from := post.Status
	if !model.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, from, to)
	}
	post.Status = to
	post.UpdatedAt = now.UTC()
	if ok, err := l.posts.UpdateStatus(ctx, post, from); err != nil {
		logger.GetLogger().WithField("post_id", post.ID).WithField("error", err).Error("persist post status failed")
	} else if !ok {
		logger.GetLogger().WithField("post_id", post.ID).WithField("from", from).Warn("post status changed concurrently")
	}
	l.transitioned(ctx, post, from)
	return nil
}

func (l *PostLifecycle) save(ctx context.Context, post *model.Post) {
	if err := l.posts.Save(ctx, post); err != nil {
		logger.GetLogger().WithField("post_id", post.ID).WithField("error", err).Error("persist post failed")
	}
}

func (l *PostLifecycle) enqueue(ctx context.Context, post *model.Post) {
	if l.queue == nil || post.ScheduledAt == nil {
		return
	}
	if err := l.queue.Enqueue(ctx, post.ID, *post.ScheduledAt); err != nil {
		logger.GetLogger().WithField("post_id", post.ID).WithField("error", err).Warn("enqueue scheduled post failed; sweep will pick it up")
	}
}

func (l *PostLifecycle) transitioned(ctx context.Context, post *model.Post, from model.PostStatus) {
	metrics.PostTransition(from, post.Status)
	now := l.now()
	if l.audit != nil {
		audit := &model.PostAudit{
			PostID:       post.ID,
			UserID:       post.UserID,
			From:         from,
			To:           post.Status,
			Platforms:    post.TargetPlatforms,
			ErrorMessage: post.ErrorMessage,
			CreatedAt:    now.UTC(),
		}
		if err := l.audit.Record(ctx, audit); err != nil {
			logger.GetLogger().WithField("post_id", post.ID).WithField("error", err).Warn("post audit failed")
		}
	}
	if l.events != nil {
		if err := l.events.Publish(ctx, model.NewPostEvent(post, now)); err != nil {
			logger.GetLogger().WithField("post_id", post.ID).WithField("error", err).Warn("post event publish failed")
		}
	}
	if l.broadcast != nil {
		l.broadcast(post)
	}
}

func (l *PostLifecycle) acquire(postID string) bool {
	l.inflightMu.Lock()
	defer l.inflightMu.Unlock()
	if _, busy := l.inflight[postID]; busy {
		return false
	}
	l.inflight[postID] = struct{}{}
	return true
}

func (l *PostLifecycle) release(postID string) {
	l.inflightMu.Lock()
	delete(l.inflight, postID)
	l.inflightMu.Unlock()
}
