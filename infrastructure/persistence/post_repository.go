package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"

	"github.com/lib/pq"
)

const postColumns = `id, user_id, content, target_platforms, media, scheduled_at, status, error_message, published_at, created_at, updated_at`

// PostRepository stores posts in PostgreSQL.
type PostRepository struct{ db *sql.DB }

func NewPostRepository(db *sql.DB) repository.IPost { return &PostRepository{db: db} }

func (r *PostRepository) Save(ctx context.Context, p *model.Post) error {
	media, err := encodeMedia(p.Media)
	if err != nil {
		return err
	}
	q := `INSERT INTO posts (` + postColumns + `)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		  ON CONFLICT (id) DO UPDATE SET
			content=EXCLUDED.content,
			target_platforms=EXCLUDED.target_platforms,
			media=EXCLUDED.media,
			scheduled_at=EXCLUDED.scheduled_at,
			status=EXCLUDED.status,
			error_message=EXCLUDED.error_message,
			published_at=EXCLUDED.published_at,
			updated_at=EXCLUDED.updated_at`
	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.Content, pq.Array(platformStrings(p.TargetPlatforms)), media,
		p.ScheduledAt, string(p.Status), p.ErrorMessage, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id=$1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	return p, err
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) FetchDue(ctx context.Context, now time.Time, limit int) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts WHERE status=$1 AND scheduled_at <= $2 ORDER BY scheduled_at ASC LIMIT $3`,
		string(model.PostStatusScheduled), now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) UpdateStatus(ctx context.Context, p *model.Post, from model.PostStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status=$1, error_message=$2, published_at=$3, scheduled_at=$4, updated_at=$5 WHERE id=$6 AND status=$7`,
		string(p.Status), p.ErrorMessage, p.PublishedAt, p.ScheduledAt, p.UpdatedAt, p.ID, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostRepository) CountByStatus(ctx context.Context, userID string) (model.PostStats, error) {
	var stats model.PostStats
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM posts WHERE user_id=$1 GROUP BY status`, userID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, err
		}
		stats.Add(model.PostStatus(status), n)
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*model.Post, error) {
	var (
		p           model.Post
		platforms   []string
		media       []byte
		scheduledAt sql.NullTime
		errMsg      sql.NullString
		publishedAt sql.NullTime
		status      string
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Content, pq.Array(&platforms), &media, &scheduledAt, &status, &errMsg, &publishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = model.PostStatus(status)
	for _, name := range platforms {
		platform, err := model.ParsePlatform(name)
		if err != nil {
			logger.GetLogger().WithField("post_id", p.ID).WithField("platform", name).Warn("skipping unknown stored platform")
			continue
		}
		p.TargetPlatforms = append(p.TargetPlatforms, platform)
	}
	if len(media) > 0 {
		var m model.MediaRef
		if err := json.Unmarshal(media, &m); err != nil {
			return nil, err
		}
		p.Media = &m
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		p.ScheduledAt = &t
	}
	if errMsg.Valid {
		v := errMsg.String
		p.ErrorMessage = &v
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func collectPosts(rows *sql.Rows) ([]*model.Post, error) {
	var list []*model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// encodeMedia returns nil for a post without media so the column is NULL.
func encodeMedia(m *model.MediaRef) (any, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func platformStrings(ps []model.Platform) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}
