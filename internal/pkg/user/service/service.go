// Package service implements account operations, contacts, folders and the
// private messaging state machine, including the dual-write repair path.
package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	queueport "github.com/pouyadh/chat-app-server/internal/infrastructure/queue/port"
	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	"github.com/pouyadh/chat-app-server/internal/pkg/content"
	"github.com/pouyadh/chat-app-server/internal/pkg/session"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
	userport "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

// EventUserService is the envelope name for user-scoped events.
const EventUserService = "UserService"

// EventAppAction is the envelope name for client-state pushes (new private
// message, delivery/seen updates, private-chat deletions).
const EventAppAction = "appAction"

// UserService owns the user document: accounts, contacts, folders and both
// sides of every private conversation.
type UserService struct {
	users      userport.UserRepository
	contents   content.Repository
	sessions   session.Directory
	issuer     *auth.TokenIssuer
	tokens     *auth.TokenStore
	queue      queueport.Client
	log        *logrus.Logger
	webBaseURL string
}

func NewUserService(
	users userport.UserRepository,
	contents content.Repository,
	sessions session.Directory,
	issuer *auth.TokenIssuer,
	tokens *auth.TokenStore,
	queue queueport.Client,
	log *logrus.Logger,
	webBaseURL string,
) *UserService {
	return &UserService{
		users:      users,
		contents:   contents,
		sessions:   sessions,
		issuer:     issuer,
		tokens:     tokens,
		queue:      queue,
		log:        log,
		webBaseURL: webBaseURL,
	}
}

func (s *UserService) getUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Validation("userId is required")
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, userport.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ResolveIdentity verifies an access token (with or without the Bearer
// schema) and returns the caller identity.
func (s *UserService) ResolveIdentity(accessToken string) (auth.Identity, error) {
	if accessToken == "" {
		return auth.Identity{}, apperror.Unauthorized("missing access token")
	}
	return s.issuer.Parse(auth.TokenAccess, auth.TrimBearer(accessToken))
}
