// Package search signals the host catalog's indexer when a dataset's
// search document must be refreshed, e.g. after an allow-list change
// that did not touch any other indexed field.
package search

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Indexer requests a visibility-index refresh for a dataset.
type Indexer interface {
	RequestReindex(ctx context.Context, packageID string) error
}

// RedisIndexer queues package ids on a redis list consumed by the host
// index worker. Duplicate entries are harmless; reindexing is
// idempotent on the host side.
type RedisIndexer struct {
	client   *redis.Client
	queueKey string
}

// NewRedisIndexer initiates a redis-backed indexer signal queue
func NewRedisIndexer(client *redis.Client, queueKey string) *RedisIndexer {
	return &RedisIndexer{
		client:   client,
		queueKey: queueKey,
	}
}

// RequestReindex pushes the package id onto the reindex queue.
func (i *RedisIndexer) RequestReindex(ctx context.Context, packageID string) error {
	return i.client.RPush(ctx, i.queueKey, packageID).Err()
}
