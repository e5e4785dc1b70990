package consolelog

import (
	"context"
)

// Source supplies the browser log accumulated since the previous call.
// Whether entries are consumed on read is up to the implementation.
type Source interface {
	GetLog(ctx context.Context) ([]Entry, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Entry, error)

func (f SourceFunc) GetLog(ctx context.Context) ([]Entry, error) {
	return f(ctx)
}
