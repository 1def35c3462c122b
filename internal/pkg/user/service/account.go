package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
	userport "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

const bearerSchema = "Bearer "

// SignupForm registers a new account.
type SignupForm struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	AvatarURL string `json:"avatarUrl"`
}

// Signup creates the user document. Duplicate username or email conflicts.
func (s *UserService) Signup(ctx context.Context, form SignupForm) (string, error) {
	if form.Username == "" || form.Password == "" || form.Email == "" {
		return "", apperror.Validation("username, password and email are required")
	}
	if _, err := s.users.GetByUsername(ctx, form.Username); !errors.Is(err, userport.ErrNotFound) {
		if err != nil {
			return "", err
		}
		return "", apperror.Conflict("username or email already exists")
	}
	if _, err := s.users.GetByEmail(ctx, form.Email); !errors.Is(err, userport.ErrNotFound) {
		if err != nil {
			return "", err
		}
		return "", apperror.Conflict("username or email already exists")
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:             uuid.NewString(),
		Username:       form.Username,
		Email:          form.Email,
		Name:           form.Name,
		AvatarURL:      form.AvatarURL,
		HashedPassword: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Save(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

// SigninForm exchanges credentials for tokens.
type SigninForm struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Persistent bool   `json:"persistent"`
}

// SigninResult carries the signed tokens and the user document.
type SigninResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Signin verifies credentials, mints access+refresh tokens and registers
// the refresh token as the user's live one.
func (s *UserService) Signin(ctx context.Context, form SigninForm) (*SigninResult, error) {
	if form.Username == "" || form.Password == "" {
		return nil, apperror.Validation("username and password are required")
	}
	u, err := s.users.GetByUsername(ctx, form.Username)
	if errors.Is(err, userport.ErrNotFound) {
		return nil, apperror.Forbidden("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyPassword(u.HashedPassword, form.Password); err != nil {
		return nil, apperror.Forbidden("invalid credentials")
	}

	identity := auth.Identity{ID: u.ID, Username: u.Username, Name: u.Name}
	access, err := s.issuer.Sign(auth.TokenAccess, identity)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.Sign(auth.TokenRefresh, identity)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SaveRefreshToken(ctx, u.ID, refresh, s.issuer.TTL(auth.TokenRefresh)); err != nil {
		return nil, err
	}
	return &SigninResult{
		User:         u,
		AccessToken:  bearerSchema + access,
		RefreshToken: bearerSchema + refresh,
	}, nil
}

// Signout revokes the caller's live refresh token.
func (s *UserService) Signout(ctx context.Context, callerID string) error {
	return s.tokens.RevokeRefreshToken(ctx, callerID)
}

// RefreshAccessTokenForm exchanges a refresh token for a new access token.
type RefreshAccessTokenForm struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshAccessToken verifies the refresh token against both its signature
// and the token store, then mints a fresh access token.
func (s *UserService) RefreshAccessToken(ctx context.Context, form RefreshAccessTokenForm) (string, error) {
	if form.RefreshToken == "" {
		return "", apperror.Unauthorized("missing refresh token")
	}
	raw := auth.TrimBearer(form.RefreshToken)
	identity, err := s.issuer.Parse(auth.TokenRefresh, raw)
	if err != nil {
		return "", err
	}
	live, err := s.tokens.CheckRefreshToken(ctx, identity.ID, raw)
	if err != nil {
		return "", err
	}
	if !live {
		return "", apperror.Unauthorized("refresh token revoked")
	}
	access, err := s.issuer.Sign(auth.TokenAccess, identity)
	if err != nil {
		return "", err
	}
	return bearerSchema + access, nil
}

// ForgotPasswordForm requests a reset link for an email address.
type ForgotPasswordForm struct {
	Email string `json:"email" binding:"required,email"`
}

// SendResetPasswordLink mints a reset-password token and returns the link
// the mailer would deliver. Email transport stays out of scope.
func (s *UserService) SendResetPasswordLink(ctx context.Context, form ForgotPasswordForm) (string, error) {
	if form.Email == "" {
		return "", apperror.Validation("email is required")
	}
	u, err := s.users.GetByEmail(ctx, form.Email)
	if errors.Is(err, userport.ErrNotFound) {
		return "", apperror.NotFound("no account for that email")
	}
	if err != nil {
		return "", err
	}
	token, err := s.issuer.Sign(auth.TokenResetPassword, auth.Identity{ID: u.ID, Username: u.Username, Name: u.Name})
	if err != nil {
		return "", err
	}
	return s.webBaseURL + "/reset-password?token=" + token, nil
}

// ResetPasswordForm sets a new password using a reset token.
type ResetPasswordForm struct {
	NewPassword        string `json:"newPassword" binding:"required"`
	ResetPasswordToken string `json:"resetPasswordToken" binding:"required"`
}

// ResetPassword burns the single-use reset token, replaces the password
// hash and revokes any live refresh token.
func (s *UserService) ResetPassword(ctx context.Context, form ResetPasswordForm) error {
	if form.NewPassword == "" || form.ResetPasswordToken == "" {
		return apperror.Validation("newPassword and resetPasswordToken are required")
	}
	identity, err := s.issuer.Parse(auth.TokenResetPassword, form.ResetPasswordToken)
	if err != nil {
		return err
	}
	fresh, err := s.tokens.MarkResetTokenUsed(ctx, form.ResetPasswordToken, s.issuer.TTL(auth.TokenResetPassword))
	if err != nil {
		return err
	}
	if !fresh {
		return apperror.Unauthorized("reset token already used")
	}

	u, err := s.getUser(ctx, identity.ID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(form.NewPassword)
	if err != nil {
		return err
	}
	u.HashedPassword = hash
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}
	return s.tokens.RevokeRefreshToken(ctx, u.ID)
}

// PublicProfileForm looks up one profile by exactly one of username/userId.
type PublicProfileForm struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// GetPublicProfile returns the public projection of one user. Exactly one
// of username/userId must be given.
func (s *UserService) GetPublicProfile(ctx context.Context, form PublicProfileForm) (domain.PublicProfile, error) {
	if (form.Username == "") == (form.UserID == "") {
		return domain.PublicProfile{}, apperror.Validation("exactly one of username, userId is required")
	}
	var (
		u   *domain.User
		err error
	)
	if form.UserID != "" {
		u, err = s.users.GetByID(ctx, form.UserID)
	} else {
		u, err = s.users.GetByUsername(ctx, form.Username)
	}
	if errors.Is(err, userport.ErrNotFound) {
		return domain.PublicProfile{}, apperror.NotFound("user not found")
	}
	if err != nil {
		return domain.PublicProfile{}, err
	}
	return u.PublicProfile(), nil
}

// PublicProfilesForm looks up a batch of profiles by id.
type PublicProfilesForm struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

// GetPublicProfilesByID returns public projections for every id found.
func (s *UserService) GetPublicProfilesByID(ctx context.Context, form PublicProfilesForm) ([]domain.PublicProfile, error) {
	if len(form.UserIDs) == 0 {
		return nil, apperror.Validation("userIds is required")
	}
	users, err := s.users.GetByIDs(ctx, form.UserIDs)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}
	return profiles, nil
}

// ProfileUpdates carries the editable profile fields.
type ProfileUpdates struct {
	AvatarURL *string `json:"avatarUrl"`
	Name      *string `json:"name"`
}

// UpdateProfileForm patches the caller's profile.
type UpdateProfileForm struct {
	Updates ProfileUpdates `json:"updates" binding:"required"`
}

// UpdateProfile patches avatar and/or display name.
func (s *UserService) UpdateProfile(ctx context.Context, callerID string, form UpdateProfileForm) error {
	if form.Updates.AvatarURL == nil && form.Updates.Name == nil {
		return apperror.Validation("at least one of avatarUrl, name is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	if form.Updates.AvatarURL != nil {
		u.AvatarURL = *form.Updates.AvatarURL
	}
	if form.Updates.Name != nil {
		u.Name = *form.Updates.Name
	}
	return s.users.Save(ctx, u)
}

// CredentialUpdates carries exactly one of a new password or email.
type CredentialUpdates struct {
	Password *string `json:"password"`
	Email    *string `json:"email"`
}

// UpdateCredentialForm changes password or email behind a password gate.
type UpdateCredentialForm struct {
	Password string            `json:"password" binding:"required"`
	Updates  CredentialUpdates `json:"updates" binding:"required"`
}

// UpdateCredential verifies the current password, then replaces either the
// password hash or the email (unique across accounts).
func (s *UserService) UpdateCredential(ctx context.Context, callerID string, form UpdateCredentialForm) error {
	if (form.Updates.Password == nil) == (form.Updates.Email == nil) {
		return apperror.Validation("exactly one of updates.password, updates.email is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.HashedPassword, form.Password); err != nil {
		return apperror.Forbidden("invalid credentials")
	}

	if form.Updates.Password != nil {
		hash, err := auth.HashPassword(*form.Updates.Password)
		if err != nil {
			return err
		}
		u.HashedPassword = hash
		return s.users.Save(ctx, u)
	}

	email := *form.Updates.Email
	if u.Email == email {
		return nil
	}
	if _, err := s.users.GetByEmail(ctx, email); !errors.Is(err, userport.ErrNotFound) {
		if err != nil {
			return err
		}
		return apperror.Conflict("email already in use")
	}
	u.Email = email
	return s.users.Save(ctx, u)
}

// DeleteAccountForm removes the caller's account behind a password gate.
type DeleteAccountForm struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount verifies the password, removes the user document and
// revokes the refresh token.
func (s *UserService) DeleteAccount(ctx context.Context, callerID string, form DeleteAccountForm) error {
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.HashedPassword, form.Password); err != nil {
		return apperror.Forbidden("invalid credentials")
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return err
	}
	return s.tokens.RevokeRefreshToken(ctx, u.ID)
}
