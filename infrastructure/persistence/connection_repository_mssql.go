package persistence

import (
	"context"
	"database/sql"
	"time"

	"socialflow/domain/model"
	"socialflow/domain/repository"
)

// ConnectionRepositoryMSSQL is the SQL Server variant of the connection store.
type ConnectionRepositoryMSSQL struct{ db *sql.DB }

func NewConnectionRepositoryMSSQL(db *sql.DB) repository.IConnection {
	return &ConnectionRepositoryMSSQL{db: db}
}

func (r *ConnectionRepositoryMSSQL) Upsert(ctx context.Context, c *model.StoredConnection) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	var exp sql.NullTime
	if c.ExpiresAt != nil {
		exp = sql.NullTime{Time: *c.ExpiresAt, Valid: true}
	}
	q := `MERGE dbo.[platform_connections] AS target
USING (VALUES (@p1, @p2)) AS src(user_id, platform)
ON target.user_id = src.user_id AND target.platform = src.platform
WHEN MATCHED THEN UPDATE SET
    access_token=@p3,
    refresh_token=@p4,
    expires_at=@p5,
    external_id=@p6,
    username=@p7,
    avatar_url=@p8,
    updated_at=@p10
WHEN NOT MATCHED THEN
    INSERT (user_id, platform, access_token, refresh_token, expires_at, external_id, username, avatar_url, created_at, updated_at)
    VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9,@p10);`
	_, err := r.db.ExecContext(ctx, q,
		c.UserID, c.Platform.Slug(),
		c.AccessToken,
		c.RefreshToken,
		exp,
		toNullString(c.ExternalID),
		toNullString(c.Username),
		toNullString(c.AvatarURL),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *ConnectionRepositoryMSSQL) ListByUser(ctx context.Context, userID string) ([]*model.StoredConnection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, external_id, username, avatar_url, created_at, updated_at FROM dbo.[platform_connections] WHERE user_id=@p1 ORDER BY platform`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConnections(rows)
}

func (r *ConnectionRepositoryMSSQL) Delete(ctx context.Context, userID string, platform model.Platform) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dbo.[platform_connections] WHERE user_id=@p1 AND platform=@p2`, userID, platform.Slug())
	return err
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
