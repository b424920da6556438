package storage

import (
	"context"
	"time"
)

// Client is a key/value store for short-lived bot state such as clarification drafts.
type Client interface {
	Read(ctx context.Context, key string) (raw []byte, found bool, err error)
	Write(ctx context.Context, key string, raw []byte, exp time.Duration) error
	Delete(ctx context.Context, key string) error
	Load(ctx context.Context, key string, target interface{}) (found bool, err error)
	Save(ctx context.Context, key string, data interface{}, validity time.Duration) error
	FindKeys(ctx context.Context, pattern string) (keys []string, err error)
	Close() error
}
