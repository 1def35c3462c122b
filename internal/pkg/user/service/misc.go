package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/content"
	"github.com/pouyadh/chat-app-server/internal/pkg/session"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
	userport "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

// AddContactForm saves a contact by username with an optional local name.
type AddContactForm struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name"`
}

// AddContact resolves the username and appends a contact entry.
func (s *UserService) AddContact(ctx context.Context, callerID string, form AddContactForm) (*domain.Contact, error) {
	if form.Username == "" {
		return nil, apperror.Validation("username is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.GetByUsername(ctx, form.Username)
	if errors.Is(err, userport.ErrNotFound) {
		return nil, apperror.NotFound("username does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !u.AddContact(form.Name, target.ID) {
		return nil, apperror.Conflict("contact already exists")
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return &domain.Contact{Name: form.Name, UserID: target.ID}, nil
}

// RemoveContactForm drops a contact by user id.
type RemoveContactForm struct {
	UserID string `json:"userId" binding:"required"`
}

// RemoveContact drops the contact entry.
func (s *UserService) RemoveContact(ctx context.Context, callerID string, form RemoveContactForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	if !u.RemoveContact(form.UserID) {
		return apperror.NotFound("contact not found")
	}
	return s.users.Save(ctx, u)
}

// GetContacts returns the caller's contact list.
func (s *UserService) GetContacts(ctx context.Context, callerID string) ([]domain.Contact, error) {
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return u.Contacts, nil
}

// CreateFolderForm creates a named chat grouping.
type CreateFolderForm struct {
	Name  string           `json:"name" binding:"required"`
	Chats []domain.ChatRef `json:"chats"`
}

// CreateFolder appends a folder and returns its id.
func (s *UserService) CreateFolder(ctx context.Context, callerID string, form CreateFolderForm) (string, error) {
	if form.Name == "" {
		return "", apperror.Validation("name is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return "", err
	}
	folderID := uuid.NewString()
	u.CreateFolder(folderID, form.Name, form.Chats)
	if err := s.users.Save(ctx, u); err != nil {
		return "", err
	}
	return folderID, nil
}

// AddChatToFolderForm files one chat reference into a folder.
type AddChatToFolderForm struct {
	FolderID string         `json:"folderId" binding:"required"`
	Chat     domain.ChatRef `json:"chat" binding:"required"`
}

// AddChatToFolder appends the reference to the folder.
func (s *UserService) AddChatToFolder(ctx context.Context, callerID string, form AddChatToFolderForm) error {
	if form.FolderID == "" || form.Chat.ID == "" {
		return apperror.Validation("folderId and chat are required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	folder := u.FolderByID(form.FolderID)
	if folder == nil {
		return apperror.NotFound("folder not found")
	}
	folder.Chats = append(folder.Chats, form.Chat)
	return s.users.Save(ctx, u)
}

// RemoveFolderForm drops a whole folder.
type RemoveFolderForm struct {
	FolderID string `json:"folderId" binding:"required"`
}

// RemoveFolder drops the folder.
func (s *UserService) RemoveFolder(ctx context.Context, callerID string, form RemoveFolderForm) error {
	if form.FolderID == "" {
		return apperror.Validation("folderId is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	if !u.RemoveFolder(form.FolderID) {
		return apperror.NotFound("folder not found")
	}
	return s.users.Save(ctx, u)
}

// RemoveChatFromFolderForm unfiles one chat reference.
type RemoveChatFromFolderForm struct {
	FolderID string `json:"folderId" binding:"required"`
	ChatID   string `json:"chatId" binding:"required"`
}

// RemoveChatFromFolder drops the reference from the folder.
func (s *UserService) RemoveChatFromFolder(ctx context.Context, callerID string, form RemoveChatFromFolderForm) error {
	if form.FolderID == "" || form.ChatID == "" {
		return apperror.Validation("folderId and chatId are required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	folder := u.FolderByID(form.FolderID)
	if folder == nil {
		return apperror.NotFound("folder not found")
	}
	kept := folder.Chats[:0]
	for _, ref := range folder.Chats {
		if ref.ID != form.ChatID {
			kept = append(kept, ref)
		}
	}
	if len(kept) == len(folder.Chats) {
		return apperror.NotFound("chat not in folder")
	}
	folder.Chats = kept
	return s.users.Save(ctx, u)
}

// Seen stamps the caller's last-seen time.
func (s *UserService) Seen(ctx context.Context, callerID string) error {
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	u.LastSeen = time.Now().UTC()
	return s.users.Save(ctx, u)
}

// TypingForm targets exactly one of a user, group chat or channel.
type TypingForm struct {
	UserID      string `json:"userId"`
	GroupChatID string `json:"groupChatId"`
	ChannelID   string `json:"channelId"`
}

func (f TypingForm) target() (string, bool) {
	targets := 0
	var target string
	for _, id := range []string{f.UserID, f.GroupChatID, f.ChannelID} {
		if id != "" {
			targets++
			target = id
		}
	}
	return target, targets == 1
}

// Typing broadcasts an isTyping event to the target user or room.
func (s *UserService) Typing(ctx context.Context, callerID string, form TypingForm) error {
	target, ok := form.target()
	if !ok {
		return apperror.Validation("exactly one of userId, groupChatId, channelId is required")
	}
	event := session.Event{
		Name:   EventUserService,
		Method: "isTyping",
		Arg: map[string]any{
			"userId":      form.UserID,
			"groupChatId": form.GroupChatID,
			"channelId":   form.ChannelID,
			"from":        callerID,
		},
	}
	if form.UserID != "" {
		s.sessions.SendToUser(target, event)
	} else {
		s.sessions.SendToRoom(target, event)
	}
	return nil
}

// GetContentsForm fetches content bodies in bulk.
type GetContentsForm struct {
	ContentIDs []string `json:"contentIds" binding:"required"`
}

// GetContents returns every content document found for the given ids.
func (s *UserService) GetContents(ctx context.Context, form GetContentsForm) ([]content.Content, error) {
	if len(form.ContentIDs) == 0 {
		return nil, apperror.Validation("contentIds is required")
	}
	return s.contents.GetByIDs(ctx, form.ContentIDs)
}
