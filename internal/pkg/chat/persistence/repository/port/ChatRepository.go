package port

import (
	"context"
	"errors"

	"github.com/pouyadh/chat-app-server/internal/pkg/chat/domain"
)

// ErrNotFound is returned by adapters when no document matches the id.
var ErrNotFound = errors.New("chat repository: not found")

// GroupChatRepository persists group chat documents keyed by id.
// Save writes the whole document; callers mutate the aggregate in memory
// and persist it back.
type GroupChatRepository interface {
	GetByID(ctx context.Context, id string) (*domain.GroupChat, error)
	Save(ctx context.Context, gc *domain.GroupChat) error
	Delete(ctx context.Context, id string) error
}

// ChannelRepository persists channel documents keyed by id.
type ChannelRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	Save(ctx context.Context, ch *domain.Channel) error
	Delete(ctx context.Context, id string) error
}
