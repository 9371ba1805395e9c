// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/wanderly/internal/platform/constants"
)

// RedisRevocationList implements [RevocationList] with one Redis key per
// revoked jti. Each key expires together with its token, so the list prunes
// itself.
type RedisRevocationList struct {
	client redis.Cmdable
	clock  func() time.Time
}

// NewRevocationList creates a new Redis-backed RevocationList.
func NewRevocationList(client redis.Cmdable) *RedisRevocationList {
	return &RedisRevocationList{client: client, clock: time.Now}
}

/*
Revoke stores jti until expiresAt.

A token that is already past its expiry is rejected by signature checks
anyway and is not stored.
*/
func (list *RedisRevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(list.clock())
	if ttl <= 0 {
		return nil
	}

	if err := list.client.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}

	return nil
}

// IsRevoked reports whether a key exists for jti.
func (list *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := list.client.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_exists_failed: %w", err)
	}

	return count > 0, nil
}

func revokedKey(jti string) string {
	return constants.RedisPrefixRevokedJTI + jti
}
