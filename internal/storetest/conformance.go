package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/store"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

type profile struct {
	Name  string   `json:"name"`
	Age   int      `json:"age"`
	Tags  []string `json:"tags,omitempty"`
	Admin bool     `json:"admin"`
}

// Run exercises the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing.json")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err), "got %v", err)
	})

	t.Run("typed round trip", func(t *testing.T) {
		s := newStore(t)
		want := profile{Name: "Ada", Age: 36, Tags: []string{"math"}, Admin: true}
		require.NoError(t, s.Put(ctx, "profile.json", want))

		got, err := store.GetAs[profile](ctx, s, "profile.json")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("raw bytes preserved", func(t *testing.T) {
		s := newStore(t)
		raw := []byte(`{"b":2,"a":1}`)
		require.NoError(t, s.PutRaw(ctx, "raw.json", raw))

		got, err := s.Get(ctx, "raw.json")
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "doc.json", profile{Name: "v1"}))
		require.NoError(t, s.Put(ctx, "doc.json", profile{Name: "v2"}))

		got, err := store.GetAs[profile](ctx, s, "doc.json")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Name)
	})

	t.Run("nested keys", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, "users/ada/profile.json", profile{Name: "Ada"}))

		got, err := store.GetAs[profile](ctx, s, "users/ada/profile.json")
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
	})

	t.Run("exists", func(t *testing.T) {
		s := newStore(t)
		ok, err := s.Exists(ctx, "doc.json")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.PutRaw(ctx, "doc.json", []byte(`1`)))
		ok, err = s.Exists(ctx, "doc.json")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutRaw(ctx, "doc.json", []byte(`1`)))
		require.NoError(t, s.Delete(ctx, "doc.json"))

		_, err := s.Get(ctx, "doc.json")
		assert.True(t, errors.IsNotFound(err), "got %v", err)

		ok, err := s.Exists(ctx, "doc.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete missing fails", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.Delete(ctx, "never.json"))
	})

	t.Run("list root", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutRaw(ctx, "b.json", []byte(`2`)))
		require.NoError(t, s.PutRaw(ctx, "a.json", []byte(`1`)))
		require.NoError(t, s.PutRaw(ctx, "notes.txt", []byte(`x`)))
		require.NoError(t, s.PutRaw(ctx, "nested/c.json", []byte(`3`)))

		keys, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.json", "b.json"}, keys)
	})

	t.Run("list dir", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutRaw(ctx, "dir/b.json", []byte(`2`)))
		require.NoError(t, s.PutRaw(ctx, "dir/a.json", []byte(`1`)))
		require.NoError(t, s.PutRaw(ctx, "dir/sub/c.json", []byte(`3`)))
		require.NoError(t, s.PutRaw(ctx, "other.json", []byte(`4`)))

		keys, err := s.List(ctx, "dir")
		require.NoError(t, err)
		assert.Equal(t, []string{"dir/a.json", "dir/b.json"}, keys)
	})

	t.Run("list missing dir", func(t *testing.T) {
		s := newStore(t)
		_, err := s.List(ctx, "nope")
		require.Error(t, err)
		assert.Equal(t, errors.CodeDirectoryNotFound, errors.GetCode(err))
	})

	t.Run("decode failure", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.PutRaw(ctx, "broken.json", []byte(`{"name":`)))

		var p profile
		err := s.GetInto(ctx, "broken.json", &p)
		require.Error(t, err)
		assert.Equal(t, errors.CodeDecodeFailed, errors.GetCode(err))
	})

	t.Run("encode failure writes nothing", func(t *testing.T) {
		s := newStore(t)
		err := s.Put(ctx, "chan.json", make(chan int))
		require.Error(t, err)
		assert.Equal(t, errors.CodeEncodeFailed, errors.GetCode(err))

		ok, err := s.Exists(ctx, "chan.json")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
