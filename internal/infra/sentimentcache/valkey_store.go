package sentimentcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/ecomly/support-ai/internal/domain/sentiment"
)

// ValkeyStore caches sentiment results in a Valkey-compatible database
// so identical messages skip the completion provider across replicas.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "sentiment"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (sentiment.Result, bool, error) {
	if key == "" {
		return sentiment.Result{}, false, nil
	}
	cmd := s.client.B().Get().Key(s.entryKey(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return sentiment.Result{}, false, nil
		}
		return sentiment.Result{}, false, err
	}
	var result sentiment.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return sentiment.Result{}, false, err
	}
	return result, true, nil
}

func (s *ValkeyStore) Save(ctx context.Context, key string, result sentiment.Result, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

var _ sentiment.Store = (*ValkeyStore)(nil)
