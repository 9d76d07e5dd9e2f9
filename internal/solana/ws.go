package solana

import "context"

// WSClient defines the WebSocket subscription interface used to observe
// confirmed transactions touching a program.
type WSClient interface {
	// SubscribeProgram subscribes to log notifications for transactions
	// mentioning the program. Only one subscription per client.
	SubscribeProgram(ctx context.Context, programID string) (<-chan ProgramNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// ProgramNotification is one confirmed transaction mentioning the
// subscribed program.
type ProgramNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
