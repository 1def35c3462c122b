package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/infrastructure/realtime"
	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	chatservice "github.com/pouyadh/chat-app-server/internal/pkg/chat/service"
	"github.com/pouyadh/chat-app-server/internal/pkg/socket"
	userhttp "github.com/pouyadh/chat-app-server/internal/pkg/user/presentation/http"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

// Deps carries the wired services the v1 surface mounts.
type Deps struct {
	Users      *userservice.UserService
	GroupChats *chatservice.GroupChatService
	Channels   *chatservice.ChannelService
	Issuer     *auth.TokenIssuer
	Realtime   *realtime.Router
	Log        *logrus.Logger
}

// RegisterRoutes mounts all version 1 API routes under /api/v1: the REST
// account surface and the websocket RPC endpoint.
func RegisterRoutes(r *gin.Engine, d Deps) {
	v1 := r.Group("/api/v1")

	userhttp.RegisterRoutes(v1.Group("/user"), d.Users, d.Issuer, d.Log)

	dispatcher := socket.NewDispatcher(d.Users, d.GroupChats, d.Channels)
	socketCtl := socket.NewController(d.Realtime, d.Users, dispatcher, d.Log)
	v1.GET("/socket", socketCtl.Handle())
}
