package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/jarvisgate/internal/auth/entity"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/goerror"
	"github.com/shandysiswandi/jarvisgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ARGV[1] failure time in ms, ARGV[2] window in ms.
var incrLoginFailureScript = redis.NewScript(`
local last = redis.call('HGET', KEYS[1], 'last_failure_at')
if last and (tonumber(ARGV[1]) - tonumber(last)) >= tonumber(ARGV[2]) then
	redis.call('HSET', KEYS[1], 'count', 0)
end
local n = redis.call('HINCRBY', KEYS[1], 'count', 1)
redis.call('HSET', KEYS[1], 'last_failure_at', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return n
`)

var incrChallengeAttemptsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('HINCRBY', KEYS[1], 'attempts', 1)
`)

// Redis shares auth state between instances.
type Redis struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (s *Redis) GetLoginAttempt(ctx context.Context, key string) (_ *entity.LoginAttempt, err error) {
	ctx, span := s.startSpan(ctx, "GetLoginAttempt")
	defer func() { s.endSpan(span, err) }()

	values, err := s.client.HGetAll(ctx, attemptPrefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	return &entity.LoginAttempt{
		Count:         parseInt(values[fieldCount]),
		LastFailureAt: fromMillis(parseInt(values[fieldLastFail])),
		BlockedUntil:  fromMillis(parseInt(values[fieldBlocked])),
	}, nil
}

func (s *Redis) IncrLoginFailure(ctx context.Context, key string, at time.Time, window time.Duration) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "IncrLoginFailure")
	defer func() { s.endSpan(span, err) }()

	return incrLoginFailureScript.Run(ctx, s.client,
		[]string{attemptPrefix + key},
		toMillis(at), window.Milliseconds(),
	).Int64()
}

func (s *Redis) BlockLogin(ctx context.Context, key string, until time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "BlockLogin")
	defer func() { s.endSpan(span, err) }()

	k := attemptPrefix + key
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldBlocked, toMillis(until))
		pipe.PExpireAt(ctx, k, until)
		return nil
	})
	return err
}

func (s *Redis) ResetLoginAttempt(ctx context.Context, key string) (err error) {
	ctx, span := s.startSpan(ctx, "ResetLoginAttempt")
	defer func() { s.endSpan(span, err) }()

	return s.client.Del(ctx, attemptPrefix+key).Err()
}

func (s *Redis) SaveChallenge(ctx context.Context, ch entity.Challenge, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "SaveChallenge")
	defer func() { s.endSpan(span, err) }()

	k := challengeKey + entity.CurrentChallenge
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			fieldTokenHash, ch.TokenHash,
			fieldAttempts, ch.Attempts,
			fieldExpiresAt, toMillis(ch.ExpiresAt),
		)
		pipe.PExpire(ctx, k, ttl)
		return nil
	})
	return err
}

func (s *Redis) GetChallenge(ctx context.Context) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallenge")
	defer func() { s.endSpan(span, err) }()

	values, err := s.client.HGetAll(ctx, challengeKey+entity.CurrentChallenge).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	return &entity.Challenge{
		TokenHash: values[fieldTokenHash],
		Attempts:  parseInt(values[fieldAttempts]),
		ExpiresAt: fromMillis(parseInt(values[fieldExpiresAt])),
	}, nil
}

func (s *Redis) IncrChallengeAttempts(ctx context.Context) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "IncrChallengeAttempts")
	defer func() { s.endSpan(span, err) }()

	n, err := incrChallengeAttemptsScript.Run(ctx, s.client,
		[]string{challengeKey + entity.CurrentChallenge},
	).Int64()
	if err != nil {
		return 0, err
	}
	if n == missingSentinel {
		return 0, goerror.ErrNotFound
	}

	return n, nil
}

func (s *Redis) DeleteChallenge(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	return s.client.Del(ctx, challengeKey+entity.CurrentChallenge).Err()
}

func (s *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.store").Start(ctx, name)
}

func (s *Redis) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
