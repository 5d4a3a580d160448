// Package kvstore is the durable per-user key-value store behind likes,
// drafts, published snapshots and library projects. Values are JSON documents
// stored under string keys. Mutations are read-modify-write without version
// checks: two writers racing on the same key keep the last write.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

// Store holds raw JSON documents by key.
type Store interface {
	GetRaw(ctx context.Context, key string) ([]byte, error)
	SetRaw(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Get decodes the value under key into dst. A missing key leaves dst
// untouched and returns ErrNotFound.
func Get(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	err = json.Unmarshal(raw, dst)
	if err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Set encodes v as JSON and stores it under key.
func Set(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetRaw(ctx, key, raw)
}

// List returns the JSON array stored under key; a missing key is an empty list.
func List[T any](ctx context.Context, s Store, key string) ([]T, error) {
	var items []T
	err := Get(ctx, s, key, &items)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Append reads the array under key, appends item and writes the whole array back.
func Append[T any](ctx context.Context, s Store, key string, item T) ([]T, error) {
	items, err := List[T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	items = append(items, item)
	err = Set(ctx, s, key, items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Scoped prefixes every key with "user:{id}:", the server-side equivalent of
// an origin-scoped browser store.
func Scoped(s Store, userID string) Store {
	return &scoped{Store: s, prefix: "user:" + userID + ":"}
}

type scoped struct {
	Store
	prefix string
}

func (s *scoped) GetRaw(ctx context.Context, key string) ([]byte, error) {
	return s.Store.GetRaw(ctx, s.prefix+key)
}

func (s *scoped) SetRaw(ctx context.Context, key string, value []byte) error {
	return s.Store.SetRaw(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.Store.Delete(ctx, s.prefix+key)
}
