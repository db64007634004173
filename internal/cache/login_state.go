package cache

import (
	"context"
	"time"
)

// Login state nonces are single-use: stored when the user is redirected to
// the identity provider and consumed exactly once on callback. This is not a
// data cache; durable state stays in the database.

const (
	loginStatePrefix = "oauth:state:"
	loginStateTTL    = 10 * time.Minute
)

// StoreLoginState records a login state nonce with a short TTL.
// A nil client is a no-op; the caller falls back to cookie comparison.
func StoreLoginState(ctx context.Context, state string) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, loginStatePrefix+state, "1", loginStateTTL).Err()
}

// ConsumeLoginState removes the nonce and reports whether it existed.
// Each nonce can be consumed at most once.
func ConsumeLoginState(ctx context.Context, state string) (bool, error) {
	if client == nil {
		return false, nil
	}
	res, err := client.GetDel(ctx, loginStatePrefix+state).Result()
	if err != nil {
		// redis.Nil means the nonce was never stored or already used
		return false, nil
	}
	return res != "", nil
}

// Available reports whether a Redis client is connected.
func Available() bool {
	return client != nil
}
