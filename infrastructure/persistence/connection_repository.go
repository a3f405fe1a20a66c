package persistence

import (
	"context"
	"database/sql"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
	"socialflow/infrastructure/logger"
)

// ConnectionRepository stores platform connections in PostgreSQL.
type ConnectionRepository struct{ db *sql.DB }

func NewConnectionRepository(db *sql.DB) repository.IConnection { return &ConnectionRepository{db: db} }

func (r *ConnectionRepository) Upsert(ctx context.Context, c *model.StoredConnection) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	q := `INSERT INTO platform_connections (user_id, platform, access_token, refresh_token, expires_at, external_id, username, avatar_url, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			external_id=EXCLUDED.external_id,
			username=EXCLUDED.username,
			avatar_url=EXCLUDED.avatar_url,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, c.UserID, c.Platform.Slug(), c.AccessToken, c.RefreshToken, c.ExpiresAt,
		c.ExternalID, c.Username, c.AvatarURL, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]*model.StoredConnection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, external_id, username, avatar_url, created_at, updated_at FROM platform_connections WHERE user_id=$1 ORDER BY platform`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConnections(rows)
}

func (r *ConnectionRepository) Delete(ctx context.Context, userID string, platform model.Platform) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM platform_connections WHERE user_id=$1 AND platform=$2`, userID, platform.Slug())
	return err
}

func scanConnection(s rowScanner) (*model.StoredConnection, error) {
	c := &model.StoredConnection{}
	var (
		platform   string
		exp        sql.NullTime
		externalID sql.NullString
		username   sql.NullString
		avatar     sql.NullString
	)
	if err := s.Scan(&c.ID, &c.UserID, &platform, &c.AccessToken, &c.RefreshToken, &exp, &externalID, &username, &avatar, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := model.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}
	c.Platform = p
	if exp.Valid {
		t := exp.Time
		c.ExpiresAt = &t
	}
	c.ExternalID = nullString(externalID)
	c.Username = nullString(username)
	c.AvatarURL = nullString(avatar)
	return c, nil
}

func collectConnections(rows *sql.Rows) ([]*model.StoredConnection, error) {
	var list []*model.StoredConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("skipping unreadable stored connection")
			continue
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
