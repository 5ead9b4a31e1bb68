package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// DefaultBankruptcyKey is the key holding the institution bankruptcy flag.
const DefaultBankruptcyKey = "ledger:institution:bankrupt"

// BankruptcyFlag implements usecase.BankruptcyAdmin on a single Redis key.
// A missing key means the institution is solvent, so the flag is shared by
// every server process pointing at the same Redis.
type BankruptcyFlag struct {
	client *redis.Client
	key    string
}

// NewBankruptcyFlag creates a new BankruptcyFlag. An empty key selects
// DefaultBankruptcyKey.
func NewBankruptcyFlag(client *redis.Client, key string) *BankruptcyFlag {
	if key == "" {
		key = DefaultBankruptcyKey
	}
	return &BankruptcyFlag{client: client, key: key}
}

// IsInstitutionBankrupt reports whether the flag is set.
func (f *BankruptcyFlag) IsInstitutionBankrupt(ctx context.Context) (bool, error) {
	val, err := f.client.Get(ctx, f.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return val == "1", nil
}

// SetInstitutionBankrupt sets or clears the flag.
func (f *BankruptcyFlag) SetInstitutionBankrupt(ctx context.Context, bankrupt bool) error {
	if !bankrupt {
		return f.client.Del(ctx, f.key).Err()
	}
	return f.client.Set(ctx, f.key, "1", 0).Err()
}
