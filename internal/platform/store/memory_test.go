package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Paid   bool    `json:"paid"`
}

func (w widget) Validate() error {
	if w.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestCollectionCreateAssignsPrefixedID(t *testing.T) {
	ctx := context.Background()
	widgets := NewCollection(NewMemory(), "widgets", func(w *widget) *string { return &w.ID })

	created, err := widgets.Create(ctx, widget{Name: "a"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(created.ID, "widg-"))

	got, err := widgets.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCollectionRejectsInvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	widgets := NewCollection(NewMemory(), "widgets", func(w *widget) *string { return &w.ID })

	_, err := widgets.Create(ctx, widget{})
	require.Error(t, err)

	_, err = widgets.Create(ctx, widget{ID: "w1", Name: "a"})
	require.NoError(t, err)
	_, err = widgets.Create(ctx, widget{ID: "w1", Name: "b"})
	require.ErrorIs(t, err, ErrDuplicateID)

	all, err := widgets.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCollectionKeepsInsertionOrderAndDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	widgets := NewCollection(NewMemory(), "widgets", func(w *widget) *string { return &w.ID })
	for _, id := range []string{"c", "a", "b"} {
		_, err := widgets.Create(ctx, widget{ID: id, Name: id})
		require.NoError(t, err)
	}
	require.NoError(t, widgets.Delete(ctx, "a"))
	require.NoError(t, widgets.Delete(ctx, "a"))

	all, err := widgets.All(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, []string{all[0].ID, all[1].ID})
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	widgets := NewCollection(NewMemory(), "widgets", func(w *widget) *string { return &w.ID })
	_, err := widgets.Update(context.Background(), widget{ID: "zz", Name: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatchMergesFieldsAndSkipsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	widgets := NewCollection(NewMemory(), "widgets", func(w *widget) *string { return &w.ID })
	_, err := widgets.Create(ctx, widget{ID: "w1", Name: "a", Amount: 10})
	require.NoError(t, err)

	err = widgets.Patch(ctx, []Patch{
		{ID: "w1", Fields: map[string]json.RawMessage{"paid": Field(true)}},
		{ID: "ghost", Fields: map[string]json.RawMessage{"paid": Field(true)}},
	})
	require.NoError(t, err)

	got, err := widgets.Get(ctx, "w1")
	require.NoError(t, err)
	require.True(t, got.Paid)
	require.Equal(t, 10.0, got.Amount)
	require.Equal(t, "a", got.Name)
}

func TestObjectsPutKeepsOtherEntries(t *testing.T) {
	ctx := context.Background()
	entries := NewObjects[widget](NewMemory(), "entries")

	require.NoError(t, entries.Put(ctx, "2025-01", widget{Name: "jan"}))
	require.NoError(t, entries.Put(ctx, "2025-02", widget{Name: "feb"}))

	all, err := entries.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, ok, err := entries.Get(ctx, "2025-02")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "feb", got.Name)

	_, ok, err = entries.Get(ctx, "2024-12")
	require.NoError(t, err)
	require.False(t, ok)
}
