package port

import (
	"context"
	"errors"

	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
)

// ErrNotFound is returned by adapters when no user matches the lookup.
var ErrNotFound = errors.New("user repository: not found")

// UserRepository persists user documents. Username and email lookups serve
// signin and signup uniqueness checks; everything else goes through the id.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}
