package store

import (
	"context"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersister keeps the session of a profile as a JSON value under
// `datasources:session:<profile>`. The key expires together with the refresh
// token when its expiry is known.
type RedisPersister struct {
	client  redis.Cmdable
	key     string
	timeout time.Duration
	time    chrono.TimeAPI
}

func NewRedisPersister(client redis.Cmdable, profile string, clock chrono.TimeAPI) RedisPersister {
	assert.NotNil(client)
	assert.NotEmptyStr(profile)
	assert.NotNil(clock)

	return RedisPersister{
		client:  client,
		key:     "datasources:session:" + profile,
		timeout: 3 * time.Second,
		time:    clock,
	}
}

func (p RedisPersister) Load(ctx context.Context) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	val, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}

	var session Session
	err = json.Unmarshal(val, &session)
	if err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (p RedisPersister) Save(ctx context.Context, session Session) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	serialized, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// 0 means no expiration
	var ttl time.Duration
	if !session.Tokens.RefreshExpiresAt.IsZero() {
		ttl = session.Tokens.RefreshExpiresAt.Sub(p.time.Now())
		if ttl <= 0 {
			return p.Clear(ctx)
		}
	}
	return p.client.Set(ctx, p.key, serialized, ttl).Err()
}

func (p RedisPersister) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.client.Del(ctx, p.key).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
