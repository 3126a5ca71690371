package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rmax-ai/docgraph/pkg/blob"
)

const (
	keyPrefix = "docgraph:blob:"
	keysSet   = "docgraph:blobs"
)

// RedisBlobStore keeps artifacts as plain string values, tracking known keys
// in a set so List avoids SCAN.
type RedisBlobStore struct {
	client *redis.Client
}

func NewRedisBlobStore(client *redis.Client) *RedisBlobStore {
	return &RedisBlobStore{client: client}
}

func (s *RedisBlobStore) makeKey(key string) string {
	return keyPrefix + key
}

// Put writes the value and registers the key in one MULTI/EXEC transaction.
func (s *RedisBlobStore) Put(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read blob content: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.makeKey(key), data, 0)
		pipe.SAdd(ctx, keysSet, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to SET blob %s: %w", key, err)
	}
	return nil
}

func (s *RedisBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.client.Get(ctx, s.makeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to GET blob %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *RedisBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	members, err := s.client.SMembers(ctx, keysSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to SMEMBERS %s: %w", keysSet, err)
	}
	keys := []string{}
	for _, k := range members {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisBlobStore) Delete(ctx context.Context, key string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.makeKey(key))
		pipe.SRem(ctx, keysSet, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to DEL blob %s: %w", key, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, key)
	}
	return nil
}
