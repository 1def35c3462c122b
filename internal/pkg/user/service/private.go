package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/content"
	"github.com/pouyadh/chat-app-server/internal/pkg/session"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
)

// SendPrivateMessageForm posts one text message to a peer.
type SendPrivateMessageForm struct {
	UserID string `json:"userId" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// SendPrivateMessageResult echoes the created message and content back to
// the sender.
type SendPrivateMessageResult struct {
	UserID  string              `json:"userId"`
	Message domain.MessageEntry `json:"message"`
	Content content.Content     `json:"content"`
}

// SendPrivateMessage appends the same logical message to both
// participants' documents. The recipient's liveness is probed before
// persisting: an online recipient gets the copy pushed and the message
// starts as delivered, otherwise as sent. If the recipient-side write
// fails after the sender-side write committed, the inconsistency is logged
// and a reconcile task is enqueued instead of failing the send.
func (s *UserService) SendPrivateMessage(ctx context.Context, callerID string, form SendPrivateMessageForm) (*SendPrivateMessageResult, error) {
	if form.UserID == "" || form.Text == "" {
		return nil, apperror.Validation("userId and text are required")
	}
	sender, err := s.getUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.getUser(ctx, form.UserID)
	if err != nil {
		return nil, err
	}

	body := content.New(uuid.NewString(), form.Text)
	if err := s.contents.Save(ctx, body); err != nil {
		return nil, err
	}

	status := domain.StatusSent
	if s.sessions.IsUserOnline(recipient.ID) {
		status = domain.StatusDelivered
	}
	message := domain.MessageEntry{
		ID:        uuid.NewString(),
		Sender:    callerID,
		Status:    status,
		ContentID: body.ID,
		SentAt:    time.Now().UTC(),
	}

	if status == domain.StatusDelivered {
		s.sessions.SendToUser(recipient.ID, session.Event{
			Name:   EventAppAction,
			Method: "addMessageToPrivateChat",
			Arg: map[string]any{
				"userId":  callerID,
				"message": message,
				"content": body,
			},
		})
	}

	sender.EnsurePrivateChatWith(recipient.ID).Append(message)
	if err := s.users.Save(ctx, sender); err != nil {
		return nil, err
	}

	recipient.EnsurePrivateChatWith(callerID).Append(message)
	if err := s.users.Save(ctx, recipient); err != nil {
		s.reportSplitWrite(ctx, err, callerID, recipient.ID, message.ID)
	}

	return &SendPrivateMessageResult{UserID: recipient.ID, Message: message, Content: *body}, nil
}

// MarkMessageForm advances message statuses in one chat up to a reference
// message (empty means the whole tail).
type MarkMessageForm struct {
	Chat      domain.ChatRef `json:"chat" binding:"required"`
	MessageID string         `json:"messageId"`
}

// MarkMessageAsSeen advances the caller's received copies to seen, mirrors
// the transition onto the peer's sent copies and notifies the peer when
// online. Only user chats track per-message status.
func (s *UserService) MarkMessageAsSeen(ctx context.Context, callerID string, form MarkMessageForm) error {
	return s.markMessages(ctx, callerID, form, domain.StatusSeen, "markMessageAsSeen")
}

// MarkMessageAsDelivered advances the caller's received copies to
// delivered and mirrors to the peer the same way.
func (s *UserService) MarkMessageAsDelivered(ctx context.Context, callerID string, form MarkMessageForm) error {
	return s.markMessages(ctx, callerID, form, domain.StatusDelivered, "markMessageAsDelivered")
}

func (s *UserService) markMessages(ctx context.Context, callerID string, form MarkMessageForm, target domain.MessageStatus, method string) error {
	if form.Chat.ID == "" {
		return apperror.Validation("chat.id is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	if form.Chat.Type != domain.ChatRefUser {
		// group/channel ledgers carry no per-message status
		return nil
	}
	pv := u.PrivateChatWith(form.Chat.ID)
	if pv == nil {
		return apperror.NotFound("private chat not found")
	}
	pv.AdvanceStatus(callerID, form.MessageID, target, domain.ScopeExceptOwn)
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	s.mirrorStatus(ctx, callerID, form.Chat.ID, form.MessageID, target, method)
	return nil
}

// mirrorStatus applies the same transition to the peer's copy and notifies
// the peer's sessions. A failure here leaves the two copies askew, so it is
// logged and queued for repair rather than surfaced.
func (s *UserService) mirrorStatus(ctx context.Context, callerID, peerID, messageID string, target domain.MessageStatus, method string) {
	peer, err := s.getUser(ctx, peerID)
	if err != nil {
		s.reportSplitWrite(ctx, err, callerID, peerID, messageID)
		return
	}
	peerPv := peer.PrivateChatWith(callerID)
	if peerPv == nil {
		return
	}
	peerPv.AdvanceStatus(peer.ID, messageID, target, domain.ScopeOwn)
	if err := s.users.Save(ctx, peer); err != nil {
		s.reportSplitWrite(ctx, err, callerID, peerID, messageID)
		return
	}
	s.sessions.SendToUser(peerID, session.Event{
		Name:   EventAppAction,
		Method: method,
		Arg: map[string]any{
			"chat":      domain.ChatRef{Type: domain.ChatRefUser, ID: callerID},
			"messageId": messageID,
			"sender":    string(domain.ScopeOwn),
		},
	})
}

// DeletePrivateChatForm removes a whole conversation side.
type DeletePrivateChatForm struct {
	UserID               string `json:"userId" binding:"required"`
	DeleteForOtherPerson bool   `json:"deleteForOtherPerson"`
}

// DeletePrivateChat drops the caller's side unconditionally. With
// deleteForOtherPerson the caller's messages are also stripped from the
// peer's copy; the peer keeps what they authored themselves.
func (s *UserService) DeletePrivateChat(ctx context.Context, callerID string, form DeletePrivateChatForm) error {
	if form.UserID == "" {
		return apperror.Validation("userId is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	u.RemovePrivateChatWith(form.UserID)
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	if !form.DeleteForOtherPerson {
		return nil
	}
	peer, err := s.getUser(ctx, form.UserID)
	if err != nil {
		return err
	}
	peerPv := peer.PrivateChatWith(callerID)
	if peerPv == nil {
		return apperror.NotFound("private chat not found")
	}
	peerPv.KeepOnlyFrom(peer.ID)
	if err := s.users.Save(ctx, peer); err != nil {
		return err
	}
	s.sessions.SendToUser(form.UserID, session.Event{
		Name:   EventAppAction,
		Method: "deleteUserMessagesFromPrivateChat",
		Arg:    map[string]any{"user": callerID},
	})
	return nil
}

// DeletePrivateMessageForm removes one message from a conversation.
type DeletePrivateMessageForm struct {
	UserID               string `json:"userId" binding:"required"`
	MessageID            string `json:"messageId" binding:"required"`
	DeleteForOtherPerson bool   `json:"deleteForOtherPerson"`
}

// DeleteMessageFromPrivateChat removes the message from the caller's copy
// and, when requested, from the peer's copy with a push naming the removed
// message.
func (s *UserService) DeleteMessageFromPrivateChat(ctx context.Context, callerID string, form DeletePrivateMessageForm) error {
	if form.UserID == "" || form.MessageID == "" {
		return apperror.Validation("userId and messageId are required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return err
	}
	pv := u.PrivateChatWith(form.UserID)
	if pv == nil {
		return apperror.NotFound("private chat not found")
	}
	pv.RemoveMessage(form.MessageID)
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	if !form.DeleteForOtherPerson {
		return nil
	}
	peer, err := s.getUser(ctx, form.UserID)
	if err != nil {
		return err
	}
	peerPv := peer.PrivateChatWith(callerID)
	if peerPv == nil {
		return apperror.NotFound("private chat not found")
	}
	peerPv.RemoveMessage(form.MessageID)
	if err := s.users.Save(ctx, peer); err != nil {
		return err
	}
	s.sessions.SendToUser(form.UserID, session.Event{
		Name:   EventAppAction,
		Method: "deleteUserMessagesFromPrivateChat",
		Arg:    map[string]any{"user": callerID, "message": form.MessageID},
	})
	return nil
}

// PreviousMessagesForm pages backward through one conversation.
type PreviousMessagesForm struct {
	UserID    string `json:"userId" binding:"required"`
	Limit     int    `json:"limit" binding:"required"`
	MessageID string `json:"messageId"`
}

// PreviousMessagesResult carries the entries and their content bodies.
type PreviousMessagesResult struct {
	Messages []domain.MessageEntry `json:"messages"`
	Contents []content.Content     `json:"contents"`
}

// GetPreviousPrivateMessages returns up to limit entries strictly before
// the anchor message (or the tail), with their content documents.
func (s *UserService) GetPreviousPrivateMessages(ctx context.Context, callerID string, form PreviousMessagesForm) (*PreviousMessagesResult, error) {
	if form.UserID == "" {
		return nil, apperror.Validation("userId is required")
	}
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	pv := u.PrivateChatWith(form.UserID)
	if pv == nil {
		return nil, apperror.NotFound("private chat not found")
	}
	messages := pv.History(form.Limit, form.MessageID)

	contentIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		contentIDs = append(contentIDs, m.ContentID)
	}
	bodies, err := s.contents.GetByIDs(ctx, contentIDs)
	if err != nil {
		return nil, err
	}
	return &PreviousMessagesResult{Messages: messages, Contents: bodies}, nil
}

// GetUserData returns the caller's full document. As a side effect every
// private conversation is swept to delivered on both sides — fetching the
// document means the client has received everything — and online peers are
// notified.
func (s *UserService) GetUserData(ctx context.Context, callerID string) (*domain.User, error) {
	u, err := s.getUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	for i := range u.PrivateChats {
		pv := &u.PrivateChats[i]
		pv.AdvanceStatus(u.ID, "", domain.StatusDelivered, domain.ScopeExceptOwn)
		s.mirrorStatus(ctx, callerID, pv.PeerID, "", domain.StatusDelivered, "markMessageAsDelivered")
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
