package store

import (
	"context"
	"database/sql"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"datasources-client/internal/components/db"
	"errors"
	"time"
)

// SqlitePersister keeps one session row per profile in the session table.
type SqlitePersister struct {
	qry     *db.Queries
	profile string
	time    chrono.TimeAPI
}

func NewSqlitePersister(database db.DBTX, profile string, clock chrono.TimeAPI) SqlitePersister {
	assert.NotNil(database)
	assert.NotEmptyStr(profile)
	assert.NotNil(clock)

	return SqlitePersister{
		qry:     db.New(database),
		profile: profile,
		time:    clock,
	}
}

func (p SqlitePersister) Load(ctx context.Context) (Session, error) {
	row, err := p.qry.GetSession(ctx, p.profile)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	return Session{
		Tokens: Tokens{
			AccessToken:      row.AccessToken,
			AccessExpiresAt:  fromUnix(row.AccessExpiresAt),
			RefreshToken:     row.RefreshToken,
			RefreshExpiresAt: fromUnix(row.RefreshExpiresAt),
		},
		User: User{
			ID:    row.UserID,
			Email: row.UserEmail,
		},
	}, nil
}

func (p SqlitePersister) Save(ctx context.Context, session Session) error {
	return p.qry.SetSession(ctx, db.Session{
		Profile:          p.profile,
		AccessToken:      session.Tokens.AccessToken,
		AccessExpiresAt:  toUnix(session.Tokens.AccessExpiresAt),
		RefreshToken:     session.Tokens.RefreshToken,
		RefreshExpiresAt: toUnix(session.Tokens.RefreshExpiresAt),
		UserID:           session.User.ID,
		UserEmail:        session.User.Email,
		UpdatedAt:        p.time.Now().Unix(),
	})
}

func (p SqlitePersister) Clear(ctx context.Context) error {
	return p.qry.DeleteSession(ctx, p.profile)
}

// zero times are stored as 0 so they survive the round trip
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
