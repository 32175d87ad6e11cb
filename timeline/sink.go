package timeline

import (
	"context"
)

// Sink receives every appended Entry for export outside the process.
// Export failures never affect the in-memory history.
type Sink interface {
	Export(ctx context.Context, entry Entry) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, entry Entry) error

func (f SinkFunc) Export(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}
