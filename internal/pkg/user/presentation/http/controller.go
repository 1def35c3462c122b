// Package http exposes the account surface over REST: signup/signin,
// session cookies, password recovery and profile management. Everything
// conversational lives on the socket instead.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

// UserController binds the user service to gin handlers.
type UserController struct {
	users  *userservice.UserService
	issuer *auth.TokenIssuer
	log    *logrus.Logger
}

func NewUserController(users *userservice.UserService, issuer *auth.TokenIssuer, log *logrus.Logger) *UserController {
	return &UserController{users: users, issuer: issuer, log: log}
}

func respondError(c *gin.Context, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		c.JSON(ae.Status, gin.H{"error": ae.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// Cookies carry the raw token; the Bearer schema only appears on the wire
// in Authorization headers.
func (ctl *UserController) setTokenCookie(c *gin.Context, name, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(name, auth.TrimBearer(token), int(ttl.Seconds()), "/", "", true, true)
}

func (ctl *UserController) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie("accessToken", "", -1, "/", "", true, true)
	c.SetCookie("refreshToken", "", -1, "/", "", true, true)
}

func (ctl *UserController) Signup(c *gin.Context) {
	var form userservice.SignupForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	id, err := ctl.users.Signup(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (ctl *UserController) Signin(c *gin.Context) {
	var form userservice.SigninForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	res, err := ctl.users.Signin(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	ctl.setTokenCookie(c, "accessToken", res.AccessToken, ctl.issuer.TTL(auth.TokenAccess))
	ctl.setTokenCookie(c, "refreshToken", res.RefreshToken, ctl.issuer.TTL(auth.TokenRefresh))
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"username":  res.User.Username,
		"email":     res.User.Email,
		"name":      res.User.Name,
		"avatarUrl": res.User.AvatarURL,
	}})
}

func (ctl *UserController) Signout(c *gin.Context) {
	if err := ctl.users.Signout(c.Request.Context(), CallerIdentity(c).ID); err != nil {
		respondError(c, err)
		return
	}
	ctl.clearTokenCookies(c)
	c.Status(http.StatusOK)
}

// RefreshToken exchanges the refreshToken cookie for a fresh access cookie.
func (ctl *UserController) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refreshToken")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}
	access, err := ctl.users.RefreshAccessToken(c.Request.Context(), userservice.RefreshAccessTokenForm{
		RefreshToken: refreshToken,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ctl.setTokenCookie(c, "accessToken", access, ctl.issuer.TTL(auth.TokenAccess))
	c.Status(http.StatusCreated)
}

func (ctl *UserController) GetOwnUser(c *gin.Context) {
	u, err := ctl.users.GetUserData(c.Request.Context(), CallerIdentity(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (ctl *UserController) GetProfile(c *gin.Context) {
	profile, err := ctl.users.GetPublicProfile(c.Request.Context(), userservice.PublicProfileForm{
		Username: c.Param("username"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (ctl *UserController) GetProfiles(c *gin.Context) {
	var form userservice.PublicProfilesForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	profiles, err := ctl.users.GetPublicProfilesByID(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": profiles})
}

func (ctl *UserController) UpdateProfile(c *gin.Context) {
	var form userservice.UpdateProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := ctl.users.UpdateProfile(c.Request.Context(), CallerIdentity(c).ID, form); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (ctl *UserController) UpdateCredential(c *gin.Context) {
	var form userservice.UpdateCredentialForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := ctl.users.UpdateCredential(c.Request.Context(), CallerIdentity(c).ID, form); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (ctl *UserController) DeleteOwnUser(c *gin.Context) {
	var form userservice.DeleteAccountForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := ctl.users.DeleteAccount(c.Request.Context(), CallerIdentity(c).ID, form); err != nil {
		respondError(c, err)
		return
	}
	ctl.clearTokenCookies(c)
	c.Status(http.StatusCreated)
}

// ForgotPassword mints the reset link. Mail delivery is out of scope, so
// the link only reaches the log.
func (ctl *UserController) ForgotPassword(c *gin.Context) {
	var form userservice.ForgotPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	link, err := ctl.users.SendResetPasswordLink(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	ctl.log.WithField("link", link).Info("reset password link issued")
	c.Status(http.StatusCreated)
}

func (ctl *UserController) ResetPassword(c *gin.Context) {
	var form userservice.ResetPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := ctl.users.ResetPassword(c.Request.Context(), form); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}
