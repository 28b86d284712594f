// Package storage keeps the client session on the local machine.
package storage

import "context"

// Keys under which the session is persisted.
const (
	KeyUser  = "user"
	KeyToken = "token"
)

// Store is a small durable key-value store. Get reports ok=false when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
