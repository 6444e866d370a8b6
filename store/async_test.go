package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/store"
)

func TestAsync(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	a := store.NewAsync(s)

	res := <-a.Put(ctx, "a.json", settings{Theme: "dark", FontSize: 10})
	require.NoError(t, res.Err)

	raw := <-a.Get(ctx, "a.json")
	require.NoError(t, raw.Err)
	assert.Contains(t, string(raw.Value), `"theme": "dark"`)

	var got settings
	require.NoError(t, (<-a.GetInto(ctx, "a.json", &got)).Err)
	assert.Equal(t, 10, got.FontSize)

	typed := <-store.GetAsAsync[settings](ctx, s, "a.json")
	require.NoError(t, typed.Err)
	assert.Equal(t, "dark", typed.Value.Theme)

	exists := <-a.Exists(ctx, "a.json")
	require.NoError(t, exists.Err)
	assert.True(t, exists.Value)

	require.NoError(t, (<-a.PutRaw(ctx, "b.json", []byte(`{}`))).Err)
	keys := <-a.List(ctx, "")
	require.NoError(t, keys.Err)
	assert.Equal(t, []string{"a.json", "b.json"}, keys.Value)

	require.NoError(t, (<-a.Delete(ctx, "a.json")).Err)
	missing := <-a.Get(ctx, "a.json")
	assert.True(t, errors.IsNotFound(missing.Err))
}

func TestAsync_ChannelClosesAfterResult(t *testing.T) {
	ch := store.NewAsync(store.NewMemory()).Exists(context.Background(), "x.json")
	_, ok := <-ch
	assert.True(t, ok)
	_, ok = <-ch
	assert.False(t, ok)
}
