package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/bankledger/internal/usecase"
)

type idempotencyRecord struct {
	value     []byte
	expiresAt time.Time
}

// IdempotencyStore implements usecase.IdempotencyStore in process. Keys are
// visible to this process only.
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]idempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore creates an empty store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: make(map[string]idempotencyRecord),
		now:     time.Now,
	}
}

// CheckAndSet stores the key if it is absent or expired. Otherwise it reports
// the stored value.
func (s *IdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := response
	if value == nil {
		value = []byte(usecase.IdempotencyProcessing)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if rec, ok := s.records[key]; ok && now.Before(rec.expiresAt) {
		return true, append([]byte(nil), rec.value...), nil
	}

	s.purgeExpired(now)
	s.records[key] = idempotencyRecord{value: append([]byte(nil), value...), expiresAt: now.Add(ttl)}
	return false, nil, nil
}

// Update overwrites the key with the final response.
func (s *IdempotencyStore) Update(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = idempotencyRecord{value: append([]byte(nil), response...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Release removes a key.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Len returns the number of stored keys, expired ones included.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// purgeExpired drops expired keys. Caller holds mu.
func (s *IdempotencyStore) purgeExpired(now time.Time) {
	for key, rec := range s.records {
		if !now.Before(rec.expiresAt) {
			delete(s.records, key)
		}
	}
}
