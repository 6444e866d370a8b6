package store

import (
	"context"
)

// Result carries the outcome of an asynchronous operation.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs Store operations on their own goroutines.
//
// Each method returns a channel that receives exactly one Result and is
// then closed. The channel is buffered so the goroutine finishes even if
// the caller never reads it.
type Async struct {
	store Store
}

// NewAsync wraps s.
func NewAsync(s Store) *Async {
	return &Async{store: s}
}

func run[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

// Get is the asynchronous form of Store.Get.
func (a *Async) Get(ctx context.Context, key string) <-chan Result[[]byte] {
	return run(func() ([]byte, error) { return a.store.Get(ctx, key) })
}

// GetInto is the asynchronous form of Store.GetInto. v must not be read
// until the result arrives.
func (a *Async) GetInto(ctx context.Context, key string, v any) <-chan Result[struct{}] {
	return run(func() (struct{}, error) { return struct{}{}, a.store.GetInto(ctx, key, v) })
}

// Put is the asynchronous form of Store.Put.
func (a *Async) Put(ctx context.Context, key string, v any) <-chan Result[struct{}] {
	return run(func() (struct{}, error) { return struct{}{}, a.store.Put(ctx, key, v) })
}

// PutRaw is the asynchronous form of Store.PutRaw.
func (a *Async) PutRaw(ctx context.Context, key string, data []byte) <-chan Result[struct{}] {
	return run(func() (struct{}, error) { return struct{}{}, a.store.PutRaw(ctx, key, data) })
}

// Exists is the asynchronous form of Store.Exists.
func (a *Async) Exists(ctx context.Context, key string) <-chan Result[bool] {
	return run(func() (bool, error) { return a.store.Exists(ctx, key) })
}

// Delete is the asynchronous form of Store.Delete.
func (a *Async) Delete(ctx context.Context, key string) <-chan Result[struct{}] {
	return run(func() (struct{}, error) { return struct{}{}, a.store.Delete(ctx, key) })
}

// List is the asynchronous form of Store.List.
func (a *Async) List(ctx context.Context, dir string) <-chan Result[[]string] {
	return run(func() ([]string, error) { return a.store.List(ctx, dir) })
}

// GetAsAsync is the asynchronous form of GetAs.
func GetAsAsync[T any](ctx context.Context, s Store, key string) <-chan Result[T] {
	return run(func() (T, error) { return GetAs[T](ctx, s, key) })
}
