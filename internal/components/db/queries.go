package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Session struct {
	Profile          string
	AccessToken      string
	AccessExpiresAt  int64
	RefreshToken     string
	RefreshExpiresAt int64
	UserID           string
	UserEmail        string
	UpdatedAt        int64
}

const getSession = `SELECT profile, access_token, access_expires_at, refresh_token, refresh_expires_at, user_id, user_email, updated_at
FROM session
WHERE profile = ?`

func (q *Queries) GetSession(ctx context.Context, profile string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, profile)
	var s Session
	err := row.Scan(
		&s.Profile,
		&s.AccessToken,
		&s.AccessExpiresAt,
		&s.RefreshToken,
		&s.RefreshExpiresAt,
		&s.UserID,
		&s.UserEmail,
		&s.UpdatedAt,
	)
	return s, err
}

const setSession = `INSERT INTO session (profile, access_token, access_expires_at, refresh_token, refresh_expires_at, user_id, user_email, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (profile) DO UPDATE SET
    access_token = excluded.access_token,
    access_expires_at = excluded.access_expires_at,
    refresh_token = excluded.refresh_token,
    refresh_expires_at = excluded.refresh_expires_at,
    user_id = excluded.user_id,
    user_email = excluded.user_email,
    updated_at = excluded.updated_at`

func (q *Queries) SetSession(ctx context.Context, s Session) error {
	_, err := q.db.ExecContext(
		ctx, setSession,
		s.Profile,
		s.AccessToken,
		s.AccessExpiresAt,
		s.RefreshToken,
		s.RefreshExpiresAt,
		s.UserID,
		s.UserEmail,
		s.UpdatedAt,
	)
	return err
}

const deleteSession = `DELETE FROM session WHERE profile = ?`

func (q *Queries) DeleteSession(ctx context.Context, profile string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, profile)
	return err
}
