package uniqueness

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"formflow/pkg/domain"
	"formflow/pkg/platform/sentinel"
	textutil "formflow/pkg/platform/strings"
)

// claimScript sets the owner unless a different application holds the value.
var claimScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], ARGV[1])
if current and current ~= ARGV[2] then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// releaseScript deletes the value only when the caller owns it.
var releaseScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
	return redis.call("HDEL", KEYS[1], ARGV[1])
end
return 0
`)

// RedisIndex keeps one hash per question field: folded value to owning
// application ID.
type RedisIndex struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisIndex {
	return &RedisIndex{client: client}
}

func (r *RedisIndex) Owner(ctx context.Context, questionID domain.QuestionID, field, value string) (domain.ApplicationID, bool, error) {
	raw, err := r.client.HGet(ctx, Key(questionID, field), textutil.Fold(value)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ApplicationID{}, false, nil
	}
	if err != nil {
		return domain.ApplicationID{}, false, fmt.Errorf("redis hget: %w", err)
	}
	owner, err := domain.ParseApplicationID(raw)
	if err != nil {
		return domain.ApplicationID{}, false, fmt.Errorf("corrupt owner %q for %s: %w", raw, Key(questionID, field), err)
	}
	return owner, true, nil
}

func (r *RedisIndex) Claim(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error {
	ok, err := claimScript.Run(ctx, r.client, []string{Key(questionID, field)}, textutil.Fold(value), applicationID.String()).Int()
	if err != nil {
		return fmt.Errorf("redis claim: %w", err)
	}
	if ok == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (r *RedisIndex) Release(ctx context.Context, applicationID domain.ApplicationID, questionID domain.QuestionID, field, value string) error {
	if err := releaseScript.Run(ctx, r.client, []string{Key(questionID, field)}, textutil.Fold(value), applicationID.String()).Err(); err != nil {
		return fmt.Errorf("redis release: %w", err)
	}
	return nil
}
