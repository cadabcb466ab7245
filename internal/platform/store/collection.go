package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validator is implemented by records that check their own invariants before a write.
type Validator interface {
	Validate() error
}

// Collection is a typed view over one repository collection.
type Collection[T any] struct {
	repo Repository
	name string
	id   func(*T) *string
}

// NewCollection binds name to T. id returns a pointer to the record's id field.
func NewCollection[T any](repo Repository, name string, id func(*T) *string) *Collection[T] {
	return &Collection[T]{repo: repo, name: name, id: id}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// NewID returns "<first four letters of the collection>-<uuid>".
func (c *Collection[T]) NewID() string {
	prefix := c.name
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return prefix + "-" + uuid.NewString()
}

func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	raws, err := c.repo.FetchAll(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.name, err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	raw, err := c.repo.Get(ctx, c.name, id)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return item, nil
}

// Create assigns an id when the record has none and stores it.
func (c *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	idRef := c.id(&item)
	if *idRef == "" {
		*idRef = c.NewID()
	}
	if err := check(item); err != nil {
		return item, err
	}
	body, err := json.Marshal(item)
	if err != nil {
		return item, err
	}
	if err := c.repo.SaveNew(ctx, c.name, *idRef, body); err != nil {
		return item, err
	}
	return item, nil
}

func (c *Collection[T]) Update(ctx context.Context, item T) (T, error) {
	if err := check(item); err != nil {
		return item, err
	}
	body, err := json.Marshal(item)
	if err != nil {
		return item, err
	}
	if err := c.repo.Update(ctx, c.name, *c.id(&item), body); err != nil {
		return item, err
	}
	return item, nil
}

// Save updates item, creating it when it does not exist yet.
func (c *Collection[T]) Save(ctx context.Context, item T) (T, error) {
	if *c.id(&item) == "" {
		return c.Create(ctx, item)
	}
	saved, err := c.Update(ctx, item)
	if errors.Is(err, ErrNotFound) {
		return c.Create(ctx, item)
	}
	return saved, err
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.repo.Delete(ctx, c.name, id)
}

// Patch applies field patches atomically. Unknown ids are skipped.
func (c *Collection[T]) Patch(ctx context.Context, patches []Patch) error {
	if len(patches) == 0 {
		return nil
	}
	return c.repo.BatchUpdate(ctx, c.name, patches)
}

// Field encodes v for use in a Patch.
func Field(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

func check(item any) error {
	if v, ok := item.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Objects is a typed view over an object store: entries keyed by string.
type Objects[T any] struct {
	repo Repository
	key  string
}

func NewObjects[T any](repo Repository, key string) *Objects[T] {
	return &Objects[T]{repo: repo, key: key}
}

func (o *Objects[T]) All(ctx context.Context) (map[string]T, error) {
	raws, err := o.repo.FetchObjectStore(ctx, o.key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", o.key, err)
	}
	out := make(map[string]T, len(raws))
	for k, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode %s[%s]: %w", o.key, k, err)
		}
		out[k] = item
	}
	return out, nil
}

// Get reports whether entryKey is present.
func (o *Objects[T]) Get(ctx context.Context, entryKey string) (T, bool, error) {
	var zero T
	all, err := o.All(ctx)
	if err != nil {
		return zero, false, err
	}
	item, ok := all[entryKey]
	return item, ok, nil
}

func (o *Objects[T]) Put(ctx context.Context, entryKey string, item T) error {
	if err := check(item); err != nil {
		return err
	}
	body, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return o.repo.PutObjectEntry(ctx, o.key, entryKey, body)
}

func (o *Objects[T]) ReplaceAll(ctx context.Context, items map[string]T) error {
	raws := make(map[string]json.RawMessage, len(items))
	for k, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return err
		}
		raws[k] = body
	}
	return o.repo.UpdateObjectStore(ctx, o.key, raws)
}
