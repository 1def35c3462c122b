// Package socket exposes the realtime RPC surface: authenticated websocket
// sessions carrying service/method call frames, dispatched through static
// per-service tables.
package socket

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	chatservice "github.com/pouyadh/chat-app-server/internal/pkg/chat/service"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

// Handler serves one socket-callable method for an authenticated caller.
type Handler func(ctx context.Context, callerID string, arg json.RawMessage) (any, error)

// Table is the closed set of methods one service exposes over the socket.
// Anything not listed here is unreachable from the wire.
type Table map[string]Handler

// Dispatcher routes inbound call frames to service handlers.
type Dispatcher struct {
	tables map[string]Table
}

// NewDispatcher builds the dispatch tables for the three socket-facing
// services.
func NewDispatcher(
	users *userservice.UserService,
	groupChats *chatservice.GroupChatService,
	channels *chatservice.ChannelService,
) *Dispatcher {
	return &Dispatcher{tables: map[string]Table{
		userservice.EventUserService:      userTable(users),
		chatservice.EventGroupChatService: groupChatTable(groupChats),
		chatservice.EventChannelService:   channelTable(channels),
	}}
}

// Dispatch resolves and invokes the handler for one call frame. Unknown
// services, unknown methods and underscore-prefixed names are rejected
// without touching any service.
func (d *Dispatcher) Dispatch(ctx context.Context, callerID, service, method string, arg json.RawMessage) (any, error) {
	table, ok := d.tables[service]
	if !ok {
		return nil, apperror.BadRequest("invalid-service")
	}
	if method == "" || strings.HasPrefix(method, "_") {
		return nil, apperror.BadRequest("invalid-method")
	}
	handler, ok := table[method]
	if !ok {
		return nil, apperror.BadRequest("invalid-method")
	}
	return handler(ctx, callerID, arg)
}

func decode(arg json.RawMessage, dst any) error {
	if len(arg) == 0 || string(arg) == "null" {
		return nil
	}
	if err := json.Unmarshal(arg, dst); err != nil {
		return apperror.BadRequest("malformed arg")
	}
	return nil
}

// call adapts a service method returning a result.
func call[F, R any](fn func(context.Context, string, F) (R, error)) Handler {
	return func(ctx context.Context, callerID string, arg json.RawMessage) (any, error) {
		var form F
		if err := decode(arg, &form); err != nil {
			return nil, err
		}
		return fn(ctx, callerID, form)
	}
}

// run adapts a service method with no result payload.
func run[F any](fn func(context.Context, string, F) error) Handler {
	return func(ctx context.Context, callerID string, arg json.RawMessage) (any, error) {
		var form F
		if err := decode(arg, &form); err != nil {
			return nil, err
		}
		return nil, fn(ctx, callerID, form)
	}
}
