package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/chat/domain"
	chatport "github.com/pouyadh/chat-app-server/internal/pkg/chat/persistence/repository/port"
	"github.com/pouyadh/chat-app-server/internal/pkg/content"
	"github.com/pouyadh/chat-app-server/internal/pkg/session"
	userport "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

// EventChannelService is the envelope name for channel room events.
const EventChannelService = "ChannelService"

// ChannelService orchestrates channel mutations the same way
// GroupChatService does for group chats, against the channel catalog.
type ChannelService struct {
	channels chatport.ChannelRepository
	users    userport.UserRepository
	contents content.Repository
	sessions session.Directory
	log      *logrus.Logger
}

func NewChannelService(
	channels chatport.ChannelRepository,
	users userport.UserRepository,
	contents content.Repository,
	sessions session.Directory,
	log *logrus.Logger,
) *ChannelService {
	return &ChannelService{
		channels: channels,
		users:    users,
		contents: contents,
		sessions: sessions,
		log:      log,
	}
}

// GetAllPermissions returns the full channel permission catalog.
func (s *ChannelService) GetAllPermissions() map[domain.Permission]string {
	return domain.ChannelAllPermissions
}

func (s *ChannelService) getChannel(ctx context.Context, id string) (*domain.Channel, error) {
	if id == "" {
		return nil, apperror.Validation("channelId is required")
	}
	ch, err := s.channels.GetByID(ctx, id)
	if errors.Is(err, chatport.ErrNotFound) {
		return nil, apperror.NotFound("channel not found")
	}
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *ChannelService) checkPermission(ch *domain.Channel, userID string, perm domain.Permission) error {
	if !ch.HasPermission(userID, perm) {
		return apperror.Forbidden(fmt.Sprintf("missing %s permission", perm))
	}
	return nil
}

func (s *ChannelService) broadcast(ch *domain.Channel, method string, arg any) {
	s.sessions.SendToRoom(ch.ID, session.Event{Name: EventChannelService, Method: method, Arg: arg})
}

// CreateChannelForm names the channel and seeds its subscriber list.
type CreateChannelForm struct {
	Name          string   `json:"name" binding:"required"`
	AvatarURL     string   `json:"avatarUrl"`
	Description   string   `json:"description"`
	SubscriberIDs []string `json:"subscriberUserIds"`
}

// CreateChannel builds a channel owned by the caller, records the creation
// activity, links it into every subscriber's document and joins their live
// sessions to the room.
func (s *ChannelService) CreateChannel(ctx context.Context, callerID string, form CreateChannelForm) (string, error) {
	if form.Name == "" {
		return "", apperror.Validation("name is required")
	}

	ch := domain.NewChannel(uuid.NewString(), domain.ChatInfo{
		Name:        form.Name,
		AvatarURL:   form.AvatarURL,
		Description: form.Description,
	}, callerID, form.SubscriberIDs)
	ch.AddActivity(uuid.NewString(), domain.ActivityItem{
		Committer: callerID,
		Type:      domain.ActivityCreateChannel,
	})

	if err := s.channels.Save(ctx, ch); err != nil {
		return "", err
	}

	for _, subscriberID := range ch.SubscriberIDs() {
		u, err := s.users.GetByID(ctx, subscriberID)
		if err != nil {
			s.log.WithError(err).WithField("userId", subscriberID).Warn("channel create: link subscriber")
			continue
		}
		u.AddChannel(ch.ID)
		if err := s.users.Save(ctx, u); err != nil {
			s.log.WithError(err).WithField("userId", subscriberID).Warn("channel create: save subscriber")
			continue
		}
		s.sessions.JoinRoom(subscriberID, ch.ID)
	}

	s.broadcast(ch, "createChannel", map[string]any{
		"channelId":     ch.ID,
		"info":          ch.Info,
		"subscriberIds": ch.SubscriberIDs(),
	})
	return ch.ID, nil
}

// DeleteChannelForm identifies the channel to remove.
type DeleteChannelForm struct {
	ChannelID string `json:"channelId" binding:"required"`
}

// DeleteChannel removes the channel document and kicks every session out
// of its room.
func (s *ChannelService) DeleteChannel(ctx context.Context, callerID string, form DeleteChannelForm) error {
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermDeleteChannel); err != nil {
		return err
	}
	if err := s.channels.Delete(ctx, ch.ID); err != nil {
		return err
	}
	s.sessions.KickRoom(ch.ID)
	return nil
}

// GetChannelInfoForm identifies the channel to describe.
type GetChannelInfoForm struct {
	ChannelID string `json:"channelId" binding:"required"`
}

// GetInfo returns the channel descriptor when the caller may see it.
func (s *ChannelService) GetInfo(ctx context.Context, callerID string, form GetChannelInfoForm) (domain.ChatInfo, error) {
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return domain.ChatInfo{}, err
	}
	if err := s.checkPermission(ch, callerID, domain.PermSeeChannelInfo); err != nil {
		return domain.ChatInfo{}, err
	}
	return ch.Info, nil
}

// SubscriberForm targets one user within one channel.
type SubscriberForm struct {
	ChannelID string `json:"channelId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
}

// AddSubscriber appends a base-role subscription record.
func (s *ChannelService) AddSubscriber(ctx context.Context, callerID string, form SubscriberForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermAddSubscribers); err != nil {
		return err
	}
	if !ch.AddSubscriber(form.UserID) {
		return apperror.Conflict("already a subscriber")
	}
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "addSubscriber", form)
	return nil
}

// RemoveSubscriber removes a base-role subscriber. Admins and the owner
// are not removable through this path; demote first.
func (s *ChannelService) RemoveSubscriber(ctx context.Context, callerID string, form SubscriberForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermRemoveSubscribers); err != nil {
		return err
	}
	if !ch.RemoveSubscriber(form.UserID) {
		return apperror.NotFound("no removable subscriber")
	}
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "removeSubscriber", form)
	return nil
}

// AddChannelAdminForm promotes a subscriber with optional overrides and
// title.
type AddChannelAdminForm struct {
	ChannelID           string               `json:"channelId" binding:"required"`
	UserID              string               `json:"userId" binding:"required"`
	PermissionOverrides domain.PermissionSet `json:"permissionOverrides"`
	CustomTitle         string               `json:"customTitle"`
}

// AddAdmin promotes an existing subscriber to admin.
func (s *ChannelService) AddAdmin(ctx context.Context, callerID string, form AddChannelAdminForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermAddNewAdmins); err != nil {
		return err
	}
	auth := ch.Authorize(form.UserID)
	if auth.Role == domain.ChannelRoleAdmin {
		return apperror.Conflict("already an admin")
	}
	subscriber := ch.GetSubscriber(form.UserID)
	if subscriber == nil {
		return apperror.Unprocessable("user must subscribe before being promoted")
	}
	if err := checkEditableKeys(form.PermissionOverrides, domain.ChannelEditablePermissions[domain.ChannelRoleAdmin]); err != nil {
		return err
	}
	subscriber.Role = domain.ChannelRoleAdmin
	subscriber.PermissionOverrides = form.PermissionOverrides
	if subscriber.PermissionOverrides == nil {
		subscriber.PermissionOverrides = domain.PermissionSet{}
	}
	subscriber.CustomTitle = form.CustomTitle
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "addAdmin", form)
	return nil
}

// RemoveAdmin demotes an admin back to the base subscriber role, clearing
// overrides and custom title.
func (s *ChannelService) RemoveAdmin(ctx context.Context, callerID string, form SubscriberForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermRemoveAdmins); err != nil {
		return err
	}
	subscriber := ch.GetSubscriber(form.UserID)
	if subscriber == nil || subscriber.Role != domain.ChannelRoleAdmin {
		return apperror.BadRequest("user is not an admin")
	}
	subscriber.Role = domain.ChannelRoleSubscriber
	subscriber.PermissionOverrides = domain.PermissionSet{}
	subscriber.CustomTitle = ""
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "removeAdmin", form)
	return nil
}

// UpdateAdminPermissionsForm replaces an admin's override map.
type UpdateAdminPermissionsForm struct {
	ChannelID           string               `json:"channelId" binding:"required"`
	UserID              string               `json:"userId" binding:"required"`
	PermissionOverrides domain.PermissionSet `json:"permissionOverrides" binding:"required"`
}

// UpdateAdminPermissions replaces an admin's override map with keys from
// the admin-editable subset.
func (s *ChannelService) UpdateAdminPermissions(ctx context.Context, callerID string, form UpdateAdminPermissionsForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermUpdateAdminsPermissions); err != nil {
		return err
	}
	subscriber := ch.GetSubscriber(form.UserID)
	if subscriber == nil || subscriber.Role != domain.ChannelRoleAdmin {
		return apperror.BadRequest("user is not an admin")
	}
	if err := checkEditableKeys(form.PermissionOverrides, domain.ChannelEditablePermissions[domain.ChannelRoleAdmin]); err != nil {
		return err
	}
	subscriber.PermissionOverrides = form.PermissionOverrides
	if subscriber.PermissionOverrides == nil {
		subscriber.PermissionOverrides = domain.PermissionSet{}
	}
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "updateAdminPermissions", form)
	return nil
}

// UpdateChannelInfoForm patches the channel descriptor.
type UpdateChannelInfoForm struct {
	ChannelID string      `json:"channelId" binding:"required"`
	Updates   InfoUpdates `json:"updates" binding:"required"`
}

// UpdateInfo patches name/avatar/description. At least one field required.
func (s *ChannelService) UpdateInfo(ctx context.Context, callerID string, form UpdateChannelInfoForm) error {
	if form.Updates.empty() {
		return apperror.Validation("at least one of name, avatarUrl, description is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(ch, callerID, domain.PermChangeChannelInfo); err != nil {
		return err
	}
	form.Updates.apply(&ch.Info)
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "updateChannelInfo", form)
	return nil
}

// PostMessageForm posts one text message to the channel.
type PostMessageForm struct {
	ChannelID string `json:"channelId" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// PostMessage writes the content document, appends the ledger entry and
// broadcasts to the room.
func (s *ChannelService) PostMessage(ctx context.Context, callerID string, form PostMessageForm) (string, error) {
	if form.Text == "" {
		return "", apperror.Validation("text is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return "", err
	}
	if err := s.checkPermission(ch, callerID, domain.PermPostMessages); err != nil {
		return "", err
	}

	body := content.New(uuid.NewString(), form.Text)
	if err := s.contents.Save(ctx, body); err != nil {
		return "", err
	}
	messageID := uuid.NewString()
	ch.AddMessage(messageID, callerID, body.ID)
	if err := s.channels.Save(ctx, ch); err != nil {
		return "", err
	}

	s.broadcast(ch, "postMessage", map[string]any{
		"channelId": ch.ID,
		"messageId": messageID,
		"contentId": body.ID,
		"sender":    callerID,
		"text":      form.Text,
	})
	return messageID, nil
}

// DeleteChannelMessageForm removes or hides one ledger message.
type DeleteChannelMessageForm struct {
	ChannelID         string `json:"channelId" binding:"required"`
	MessageID         string `json:"messageId" binding:"required"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
}

// DeleteMessage removes a message. Own messages need deleteOwnMessage and
// honor the for-everyone flag; others' need deleteMessagesOfOthers and are
// always hard-removed.
func (s *ChannelService) DeleteMessage(ctx context.Context, callerID string, form DeleteChannelMessageForm) error {
	if form.MessageID == "" {
		return apperror.Validation("messageId is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	item := ch.GetMessage(form.MessageID)
	if item == nil {
		return apperror.NotFound("message not found")
	}

	if item.Message.Sender == callerID {
		if err := s.checkPermission(ch, callerID, domain.PermDeleteOwnMessage); err != nil {
			return err
		}
		if !form.DeleteForEveryone {
			item.Message.HideFor(callerID)
			return s.channels.Save(ctx, ch)
		}
	} else {
		if err := s.checkPermission(ch, callerID, domain.PermDeleteMessagesOfOthers); err != nil {
			return err
		}
	}

	ch.DeleteMessage(form.MessageID)
	if err := s.channels.Save(ctx, ch); err != nil {
		return err
	}
	s.broadcast(ch, "deleteMessage", form)
	return nil
}

// EditMessageForm rewrites one message body.
type EditMessageForm struct {
	ChannelID string `json:"channelId" binding:"required"`
	MessageID string `json:"messageId" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// EditMessage rewrites the content document behind a ledger message and
// marks it edited. Own messages need editOwnMessage, others' need
// editMessagesOfOthers.
func (s *ChannelService) EditMessage(ctx context.Context, callerID string, form EditMessageForm) error {
	if form.MessageID == "" {
		return apperror.Validation("messageId is required")
	}
	if form.Text == "" {
		return apperror.Validation("text is required")
	}
	ch, err := s.getChannel(ctx, form.ChannelID)
	if err != nil {
		return err
	}
	item := ch.GetMessage(form.MessageID)
	if item == nil {
		return apperror.NotFound("message not found")
	}

	perm := domain.PermEditOwnMessage
	if item.Message.Sender != callerID {
		perm = domain.PermEditMessagesOfOthers
	}
	if err := s.checkPermission(ch, callerID, perm); err != nil {
		return err
	}

	body, err := s.contents.GetByID(ctx, item.Message.ContentID)
	if errors.Is(err, content.ErrNotFound) {
		return apperror.NotFound("message content not found")
	}
	if err != nil {
		return err
	}
	body.Text = form.Text
	body.Edited = true
	if err := s.contents.Save(ctx, body); err != nil {
		return err
	}
	s.broadcast(ch, "editMessage", form)
	return nil
}
