package application

import "context"

// Worker is a long-running loop such as the price watcher or the history writer.
// Start blocks until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
