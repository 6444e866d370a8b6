package storetest

import (
	"context"

	"github.com/roncuevas/LocalJSON/errors"
	"github.com/roncuevas/LocalJSON/store"
)

// Failing is a store whose every operation returns Err.
type Failing struct {
	Err error
}

// NewFailing returns a store that always fails with a retryable
// CodeStorage error.
func NewFailing() *Failing {
	return &Failing{Err: errors.New(errors.CodeStorage, "backend unavailable")}
}

func (f *Failing) Get(context.Context, string) ([]byte, error)    { return nil, f.Err }
func (f *Failing) GetInto(context.Context, string, any) error     { return f.Err }
func (f *Failing) Put(context.Context, string, any) error         { return f.Err }
func (f *Failing) PutRaw(context.Context, string, []byte) error   { return f.Err }
func (f *Failing) Exists(context.Context, string) (bool, error)   { return false, f.Err }
func (f *Failing) Delete(context.Context, string) error           { return f.Err }
func (f *Failing) List(context.Context, string) ([]string, error) { return nil, f.Err }

var _ store.Store = (*Failing)(nil)
