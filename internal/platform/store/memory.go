package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

type memoryDoc struct {
	id   string
	body json.RawMessage
}

// Memory keeps collections in insertion order. It backs tests and runs without DATABASE_URL.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]memoryDoc
	objects     map[string]map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{
		collections: map[string][]memoryDoc{},
		objects:     map[string]map[string]json.RawMessage{},
	}
}

func (m *Memory) FetchAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.collections[collection]
	out := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		out = append(out, slices.Clone(doc.body))
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexOf(collection, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return slices.Clone(m.collections[collection][idx].body), nil
}

func (m *Memory) SaveNew(ctx context.Context, collection, id string, body json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(collection, id) >= 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDuplicateID)
	}
	m.collections[collection] = append(m.collections[collection], memoryDoc{id: id, body: slices.Clone(body)})
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, body json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(collection, id)
	if idx < 0 {
		return ErrNotFound
	}
	m.collections[collection][idx].body = slices.Clone(body)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(collection, id)
	if idx < 0 {
		return nil
	}
	m.collections[collection] = slices.Delete(m.collections[collection], idx, idx+1)
	return nil
}

func (m *Memory) BatchUpdate(ctx context.Context, collection string, patches []Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := slices.Clone(m.collections[collection])
	for _, patch := range patches {
		idx := slices.IndexFunc(docs, func(d memoryDoc) bool { return d.id == patch.ID })
		if idx < 0 {
			continue
		}
		merged, err := mergeFields(docs[idx].body, patch.Fields)
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, patch.ID, err)
		}
		docs[idx].body = merged
	}
	m.collections[collection] = docs
	return nil
}

func (m *Memory) FetchObjectStore(ctx context.Context, key string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(m.objects[key]))
	for k, v := range m.objects[key] {
		out[k] = slices.Clone(v)
	}
	return out, nil
}

func (m *Memory) UpdateObjectStore(ctx context.Context, key string, data map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]json.RawMessage, len(data))
	for k, v := range data {
		copied[k] = slices.Clone(v)
	}
	m.objects[key] = copied
	return nil
}

func (m *Memory) PutObjectEntry(ctx context.Context, key, entryKey string, body json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[key] == nil {
		m.objects[key] = map[string]json.RawMessage{}
	}
	m.objects[key][entryKey] = slices.Clone(body)
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) indexOf(collection, id string) int {
	return slices.IndexFunc(m.collections[collection], func(d memoryDoc) bool { return d.id == id })
}
