package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		target_platforms TEXT[] NOT NULL,
		media JSONB NULL,
		scheduled_at TIMESTAMPTZ NULL,
		status TEXT NOT NULL,
		error_message TEXT NULL,
		published_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_due ON posts (scheduled_at) WHERE status = 'scheduled'`,
	`CREATE TABLE IF NOT EXISTS platform_connections (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NULL,
		external_id TEXT NULL,
		username TEXT NULL,
		avatar_url TEXT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, platform)
	)`,
}

// EnsureSchema creates the posts and platform_connections tables in Postgres.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ddl := range postgresSchema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// EnsureConnectionSchemaMSSQL creates platform_connections for SQL Server if it does not exist.
func EnsureConnectionSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.platform_connections') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[platform_connections] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(32) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        refresh_token NVARCHAR(MAX) NOT NULL,
        expires_at DATETIME2 NULL,
        external_id NVARCHAR(255) NULL,
        username NVARCHAR(255) NULL,
        avatar_url NVARCHAR(1024) NULL,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_platform_connections_user_platform ON dbo.[platform_connections](user_id, platform);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create platform_connections (mssql): %w", err)
	}
	return nil
}
