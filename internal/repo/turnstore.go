// Package repo holds persistence adapters for conversation state.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/hvacops-nlq/server/internal/core/error"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// RedisTurnStore persists the bounded per-session turn history in a Redis
// list, newest at the tail. Used for multi-process deployments; single-node
// runs use the in-memory store in the conversation package.
type RedisTurnStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisTurnStore(rdb redis.Cmdable, ttl time.Duration) *RedisTurnStore {
	return &RedisTurnStore{rdb: rdb, ttl: ttl}
}

func (r *RedisTurnStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("nlq:session:%s:turns", sessionID)
}

func (r *RedisTurnStore) Append(ctx context.Context, sessionID string, turn model.ConversationTurn, maxTurns int) error {
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("sessionID", sessionID).Msg("failed to marshal turn")
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := r.sessionKey(sessionID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push turn to redis")
		return errx.WrapRedis(err)
	}
	// keep only the newest maxTurns entries
	if maxTurns > 0 {
		if err := r.rdb.LTrim(ctx, key, int64(-maxTurns), -1).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to trim turn history")
			return errx.WrapRedis(err)
		}
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on session key")
		}
	}
	return nil
}

func (r *RedisTurnStore) History(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	key := r.sessionKey(sessionID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ConversationTurn{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load turn history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.ConversationTurn, 0, len(rows))
	for i, s := range rows {
		var turn model.ConversationTurn
		if err := json.Unmarshal([]byte(s), &turn); err != nil {
			logx.Error().Err(err).Str("sessionID", sessionID).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (r *RedisTurnStore) Clear(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete turn history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.TurnStore = (*RedisTurnStore)(nil)
