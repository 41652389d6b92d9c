package ports

import "context"

// Messenger is the outbound transport. The engine only interprets
// success/failure, never transport payloads.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}
