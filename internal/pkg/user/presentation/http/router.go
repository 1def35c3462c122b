package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

// RegisterRoutes mounts the account endpoints under the given group.
func RegisterRoutes(g *gin.RouterGroup, users *userservice.UserService, issuer *auth.TokenIssuer, log *logrus.Logger) {
	ctl := NewUserController(users, issuer, log)
	authed := RequireAuth(users)

	g.POST("/signup", ctl.Signup)
	g.POST("/signin", ctl.Signin)
	g.DELETE("/signout", authed, ctl.Signout)
	g.GET("/token", ctl.RefreshToken)
	g.POST("/forgot-password", ctl.ForgotPassword)
	g.PATCH("/reset-password", ctl.ResetPassword)

	g.GET("", authed, ctl.GetOwnUser)
	g.GET("/u/:username", ctl.GetProfile)
	g.POST("/profiles", ctl.GetProfiles)
	g.PATCH("/update", authed, ctl.UpdateProfile)
	g.PATCH("/credential", authed, ctl.UpdateCredential)
	g.DELETE("/delete", authed, ctl.DeleteOwnUser)
}
