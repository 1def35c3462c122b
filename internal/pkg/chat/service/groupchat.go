// Package service implements the group-chat and channel operations. Every
// mutation is gated by an effective-permission check before the first
// write; room broadcasts mirror the inbound method/arg shape.
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

// EventGroupChatService is the envelope name for group-chat room events.
const EventGroupChatService = "GroupChatService"

// GroupChatService orchestrates group-chat mutations: permission gating,
// ledger writes, membership changes and room fan-out.
type GroupChatService struct {
	chats    chatport.GroupChatRepository
	users    userport.UserRepository
	contents content.Repository
	sessions session.Directory
	log      *logrus.Logger
}

func NewGroupChatService(
	chats chatport.GroupChatRepository,
	users userport.UserRepository,
	contents content.Repository,
	sessions session.Directory,
	log *logrus.Logger,
) *GroupChatService {
	return &GroupChatService{
		chats:    chats,
		users:    users,
		contents: contents,
		sessions: sessions,
		log:      log,
	}
}

// GetAllPermissions returns the full group-chat permission catalog.
func (s *GroupChatService) GetAllPermissions() map[domain.Permission]string {
	return domain.GroupChatAllPermissions
}

func (s *GroupChatService) getChat(ctx context.Context, id string) (*domain.GroupChat, error) {
	if id == "" {
		return nil, apperror.Validation("groupChatId is required")
	}
	gc, err := s.chats.GetByID(ctx, id)
	if errors.Is(err, chatport.ErrNotFound) {
		return nil, apperror.NotFound("group chat not found")
	}
	if err != nil {
		return nil, err
	}
	return gc, nil
}

func (s *GroupChatService) checkPermission(gc *domain.GroupChat, userID string, perm domain.Permission) error {
	if !gc.HasPermission(userID, perm) {
		return apperror.Forbidden(fmt.Sprintf("missing %s permission", perm))
	}
	return nil
}

func (s *GroupChatService) broadcast(gc *domain.GroupChat, method string, arg any) {
	s.sessions.SendToRoom(gc.ID, session.Event{Name: EventGroupChatService, Method: method, Arg: arg})
}

// CreateGroupChatForm names the chat and seeds its member list.
type CreateGroupChatForm struct {
	Name        string   `json:"name" binding:"required"`
	AvatarURL   string   `json:"avatarUrl"`
	Description string   `json:"description"`
	MemberIDs   []string `json:"memberIds"`
}

// CreateGroupChat builds a chat owned by the caller, records the creation
// activity, links the chat into every seeded member's document and joins
// their live sessions to the room.
func (s *GroupChatService) CreateGroupChat(ctx context.Context, callerID string, form CreateGroupChatForm) (string, error) {
	if form.Name == "" {
		return "", apperror.Validation("name is required")
	}

	gc := domain.NewGroupChat(uuid.NewString(), domain.ChatInfo{
		Name:        form.Name,
		AvatarURL:   form.AvatarURL,
		Description: form.Description,
	}, callerID, form.MemberIDs)
	gc.AddActivity(uuid.NewString(), domain.ActivityItem{
		Committer: callerID,
		Type:      domain.ActivityCreateGroupChat,
	})

	if err := s.chats.Save(ctx, gc); err != nil {
		return "", err
	}

	for _, memberID := range gc.MemberIDs() {
		u, err := s.users.GetByID(ctx, memberID)
		if err != nil {
			s.log.WithError(err).WithField("userId", memberID).Warn("group chat create: link member")
			continue
		}
		u.AddGroupChat(gc.ID)
		if err := s.users.Save(ctx, u); err != nil {
			s.log.WithError(err).WithField("userId", memberID).Warn("group chat create: save member")
			continue
		}
		s.sessions.JoinRoom(memberID, gc.ID)
	}

	s.broadcast(gc, "createGroupChat", map[string]any{
		"groupChatId": gc.ID,
		"info":        gc.Info,
		"memberIds":   gc.MemberIDs(),
	})
	return gc.ID, nil
}

// DeleteGroupChatForm identifies the chat to remove.
type DeleteGroupChatForm struct {
	GroupChatID string `json:"groupChatId" binding:"required"`
}

// DeleteGroupChat removes the chat document and kicks every session out of
// its room. Connections stay open; only room-scoped events stop.
func (s *GroupChatService) DeleteGroupChat(ctx context.Context, callerID string, form DeleteGroupChatForm) error {
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermDeleteGroup); err != nil {
		return err
	}
	if err := s.chats.Delete(ctx, gc.ID); err != nil {
		return err
	}
	s.sessions.KickRoom(gc.ID)
	return nil
}

// GetInfoForm identifies the chat to describe.
type GetInfoForm struct {
	GroupChatID string `json:"groupChatId" binding:"required"`
}

// GetInfo returns the chat descriptor when the caller (or the public, for
// an empty caller id) may see it.
func (s *GroupChatService) GetInfo(ctx context.Context, callerID string, form GetInfoForm) (domain.ChatInfo, error) {
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return domain.ChatInfo{}, err
	}
	if err := s.checkPermission(gc, callerID, domain.PermSeeGroupInfo); err != nil {
		return domain.ChatInfo{}, err
	}
	return gc.Info, nil
}

// MemberForm targets one user within one chat.
type MemberForm struct {
	GroupChatID string `json:"groupChatId" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
}

// AddMember appends a base-role membership record.
func (s *GroupChatService) AddMember(ctx context.Context, callerID string, form MemberForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermAddMembers); err != nil {
		return err
	}
	if !gc.AddMember(form.UserID) {
		return apperror.Conflict("already a member")
	}
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "addMember", form)
	return nil
}

// KickMember removes a base-role member. Admins and the owner are not
// removable through this path; demote first.
func (s *GroupChatService) KickMember(ctx context.Context, callerID string, form MemberForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermKickMembers); err != nil {
		return err
	}
	if !gc.RemoveMember(form.UserID) {
		return apperror.NotFound("no removable member")
	}
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "kickMember", form)
	return nil
}

// AddAdminForm promotes a member with optional overrides and title.
type AddAdminForm struct {
	GroupChatID         string               `json:"groupChatId" binding:"required"`
	UserID              string               `json:"userId" binding:"required"`
	PermissionOverrides domain.PermissionSet `json:"permissionOverrides"`
	CustomTitle         string               `json:"customTitle"`
}

// AddAdmin promotes an existing member to admin. Promoting an admin again
// is a conflict; promoting someone without a membership record is an
// invalid state transition.
func (s *GroupChatService) AddAdmin(ctx context.Context, callerID string, form AddAdminForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermAddNewAdmins); err != nil {
		return err
	}
	auth := gc.Authorize(form.UserID)
	if auth.Role == domain.GroupRoleAdmin {
		return apperror.Conflict("already an admin")
	}
	member := gc.GetMember(form.UserID)
	if member == nil {
		return apperror.Unprocessable("user must join before being promoted")
	}
	if err := checkEditableKeys(form.PermissionOverrides, domain.GroupChatEditablePermissions[domain.GroupRoleAdmin]); err != nil {
		return err
	}
	member.Role = domain.GroupRoleAdmin
	member.PermissionOverrides = form.PermissionOverrides
	if member.PermissionOverrides == nil {
		member.PermissionOverrides = domain.PermissionSet{}
	}
	member.CustomTitle = form.CustomTitle
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "addAdmin", form)
	return nil
}

// RemoveAdmin demotes an admin back to the base member role, clearing the
// overrides and custom title they held as admin.
func (s *GroupChatService) RemoveAdmin(ctx context.Context, callerID string, form MemberForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermRemoveAdmins); err != nil {
		return err
	}
	member := gc.GetMember(form.UserID)
	if member == nil || member.Role != domain.GroupRoleAdmin {
		return apperror.BadRequest("user is not an admin")
	}
	member.Role = domain.GroupRoleMember
	member.PermissionOverrides = domain.PermissionSet{}
	member.CustomTitle = ""
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "removeAdmin", form)
	return nil
}

// UpdateMemberPermissionsForm replaces a member's override map.
type UpdateMemberPermissionsForm struct {
	GroupChatID         string               `json:"groupChatId" binding:"required"`
	UserID              string               `json:"userId" binding:"required"`
	PermissionOverrides domain.PermissionSet `json:"permissionOverrides" binding:"required"`
}

// UpdateMemberPermissions replaces the override map of a base-role member.
// Only keys from the member-editable subset are accepted.
func (s *GroupChatService) UpdateMemberPermissions(ctx context.Context, callerID string, form UpdateMemberPermissionsForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermUpdateMemberPermissionOverrides); err != nil {
		return err
	}
	member := gc.GetMember(form.UserID)
	if member == nil || member.Role != domain.GroupRoleMember {
		return apperror.BadRequest("user is not a member")
	}
	if err := checkEditableKeys(form.PermissionOverrides, domain.GroupChatEditablePermissions[domain.GroupRoleMember]); err != nil {
		return err
	}
	member.PermissionOverrides = form.PermissionOverrides
	if member.PermissionOverrides == nil {
		member.PermissionOverrides = domain.PermissionSet{}
	}
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "updateMemberPermissions", form)
	return nil
}

// InfoUpdates carries the editable descriptor fields; at least one must be
// present.
type InfoUpdates struct {
	Name        *string `json:"name"`
	AvatarURL   *string `json:"avatarUrl"`
	Description *string `json:"description"`
}

func (u InfoUpdates) empty() bool {
	return u.Name == nil && u.AvatarURL == nil && u.Description == nil
}

func (u InfoUpdates) apply(info *domain.ChatInfo) {
	if u.Name != nil {
		info.Name = *u.Name
	}
	if u.AvatarURL != nil {
		info.AvatarURL = *u.AvatarURL
	}
	if u.Description != nil {
		info.Description = *u.Description
	}
}

// UpdateInfoForm patches the chat descriptor.
type UpdateInfoForm struct {
	GroupChatID string      `json:"groupChatId" binding:"required"`
	Updates     InfoUpdates `json:"updates" binding:"required"`
}

// UpdateInfo patches name/avatar/description. At least one field required.
func (s *GroupChatService) UpdateInfo(ctx context.Context, callerID string, form UpdateInfoForm) error {
	if form.Updates.empty() {
		return apperror.Validation("at least one of name, avatarUrl, description is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	if err := s.checkPermission(gc, callerID, domain.PermChangeGroupInfo); err != nil {
		return err
	}
	form.Updates.apply(&gc.Info)
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "updateGroupInfo", form)
	return nil
}

// SendMessageForm posts one text message to the chat.
type SendMessageForm struct {
	GroupChatID string `json:"groupChatId" binding:"required"`
	Text        string `json:"text" binding:"required"`
}

// SendMessage writes the content document, appends the ledger entry and
// broadcasts to the room.
func (s *GroupChatService) SendMessage(ctx context.Context, callerID string, form SendMessageForm) (string, error) {
	if form.Text == "" {
		return "", apperror.Validation("text is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return "", err
	}
	if err := s.checkPermission(gc, callerID, domain.PermSendMessage); err != nil {
		return "", err
	}

	body := content.New(uuid.NewString(), form.Text)
	if err := s.contents.Save(ctx, body); err != nil {
		return "", err
	}
	messageID := uuid.NewString()
	gc.AddMessage(messageID, callerID, body.ID)
	if err := s.chats.Save(ctx, gc); err != nil {
		return "", err
	}

	s.broadcast(gc, "sendMessage", map[string]any{
		"groupChatId": gc.ID,
		"messageId":   messageID,
		"contentId":   body.ID,
		"sender":      callerID,
		"text":        form.Text,
	})
	return messageID, nil
}

// DeleteMessageForm removes or hides one ledger message.
type DeleteMessageForm struct {
	GroupChatID       string `json:"groupChatId" binding:"required"`
	MessageID         string `json:"messageId" binding:"required"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
}

// DeleteMessage removes a message. Own messages need deleteOwnMessage and
// honor the for-everyone flag (hide-for-self otherwise, no broadcast);
// others' messages need deleteMessages and are always hard-removed.
func (s *GroupChatService) DeleteMessage(ctx context.Context, callerID string, form DeleteMessageForm) error {
	if form.MessageID == "" {
		return apperror.Validation("messageId is required")
	}
	gc, err := s.getChat(ctx, form.GroupChatID)
	if err != nil {
		return err
	}
	item := gc.GetMessage(form.MessageID)
	if item == nil {
		return apperror.NotFound("message not found")
	}

	if item.Message.Sender == callerID {
		if err := s.checkPermission(gc, callerID, domain.PermDeleteOwnMessage); err != nil {
			return err
		}
		if !form.DeleteForEveryone {
			item.Message.HideFor(callerID)
			return s.chats.Save(ctx, gc)
		}
	} else {
		if err := s.checkPermission(gc, callerID, domain.PermDeleteMessages); err != nil {
			return err
		}
	}

	gc.DeleteMessage(form.MessageID)
	if err := s.chats.Save(ctx, gc); err != nil {
		return err
	}
	s.broadcast(gc, "deleteMessage", form)
	return nil
}

// checkEditableKeys rejects override keys outside the role's editable
// subset before any mutation.
func checkEditableKeys(overrides domain.PermissionSet, editable []domain.Permission) error {
	if len(overrides) == 0 {
		return nil
	}
	allowed := make(map[domain.Permission]struct{}, len(editable))
	for _, p := range editable {
		allowed[p] = struct{}{}
	}
	for key := range overrides {
		if _, ok := allowed[key]; !ok {
			return apperror.Validation(fmt.Sprintf("permission %s is not editable", key))
		}
	}
	return nil
}
