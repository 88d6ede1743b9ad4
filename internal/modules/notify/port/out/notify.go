package out

import (
	"context"

	"shotwatch/internal/modules/notify/domain"
)

// Sink delivers messages to the team channel. UploadMedia returns a handle
// usable by SendVideo; an error means no handle is available.
type Sink interface {
	SendText(ctx context.Context, message string) error
	UploadMedia(ctx context.Context, path string) (string, error)
	SendVideo(ctx context.Context, handle, caption string) error
}

// Directory lists the groups the sink can address.
type Directory interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
}

// Ledger keeps the history of delivered messages, newest first on List.
type Ledger interface {
	Record(ctx context.Context, delivery domain.Delivery) error
	List(ctx context.Context, limit int) ([]domain.Delivery, error)
}
