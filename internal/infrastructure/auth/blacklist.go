package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
)

// TokenBlacklist remembers logged out tokens until they would have expired anyway
type TokenBlacklist struct {
	kv     driver.KeyValueDB
	prefix string
}

func NewTokenBlacklist(kv driver.KeyValueDB) *TokenBlacklist {
	return &TokenBlacklist{kv: kv, prefix: "token:revoked:"}
}

func (tb *TokenBlacklist) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tb.prefix + hex.EncodeToString(sum[:])
}

// Revoke blacklist token for ttl, non-positive ttl is a no-op
func (tb *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return tb.kv.SetEX(ctx, tb.key(token), "1", ttl)
}

// IsRevoked check whether token was revoked
func (tb *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return tb.kv.Exists(ctx, tb.key(token))
}
