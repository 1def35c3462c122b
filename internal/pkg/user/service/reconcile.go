package service

import (
	"context"
	"encoding/json"
	"time"

	queueport "github.com/pouyadh/chat-app-server/internal/infrastructure/queue/port"
)

// TaskReconcilePrivateChat repairs an asymmetric private conversation by
// replaying the sender's copy onto the recipient's.
const TaskReconcilePrivateChat = "user:reconcile_private_chat"

// reconcilePayload identifies one logical message across both documents.
type reconcilePayload struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	MessageID   string `json:"messageId"`
}

// reportSplitWrite records a failed recipient-side write and queues a
// repair. The sender's copy is authoritative; losing the task only delays
// repair until the next sweep touching the message.
func (s *UserService) reportSplitWrite(ctx context.Context, cause error, senderID, recipientID, messageID string) {
	s.log.WithError(cause).WithFields(map[string]any{
		"senderId":    senderID,
		"recipientId": recipientID,
		"messageId":   messageID,
	}).Error("private chat: recipient-side write failed, scheduling reconcile")

	payload, err := json.Marshal(reconcilePayload{
		SenderID:    senderID,
		RecipientID: recipientID,
		MessageID:   messageID,
	})
	if err != nil {
		s.log.WithError(err).Error("private chat: encode reconcile payload")
		return
	}
	if _, err := s.queue.Enqueue(ctx, queueport.Task{
		Type:    TaskReconcilePrivateChat,
		Payload: payload,
	}, queueport.EnqueueOption{
		Queue:     "repair",
		MaxRetry:  10,
		UniqueTTL: time.Minute,
	}); err != nil {
		s.log.WithError(err).Error("private chat: enqueue reconcile")
	}
}

// HandleReconcilePrivateChat is the queue handler. It is idempotent: the
// recipient's copy converges to the sender's for the named message, whether
// the entry was missing or stale.
func (s *UserService) HandleReconcilePrivateChat(ctx context.Context, task queueport.Task) error {
	var payload reconcilePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		s.log.WithError(err).Error("reconcile: bad payload, dropping task")
		return nil
	}
	return s.ReconcilePrivateChat(ctx, payload.SenderID, payload.RecipientID, payload.MessageID)
}

// ReconcilePrivateChat replays the sender's copy of one message onto the
// recipient's document.
func (s *UserService) ReconcilePrivateChat(ctx context.Context, senderID, recipientID, messageID string) error {
	sender, err := s.getUser(ctx, senderID)
	if err != nil {
		return err
	}
	senderPv := sender.PrivateChatWith(recipientID)
	if senderPv == nil {
		// sender deleted the chat meanwhile; nothing authoritative remains
		return nil
	}
	authoritative := senderPv.FindMessage(messageID)
	if authoritative == nil {
		return nil
	}

	recipient, err := s.getUser(ctx, recipientID)
	if err != nil {
		return err
	}
	recipientPv := recipient.EnsurePrivateChatWith(senderID)
	if existing := recipientPv.FindMessage(messageID); existing != nil {
		if existing.Status.AtLeast(authoritative.Status) {
			return nil
		}
		existing.Status = authoritative.Status
	} else {
		recipientPv.Append(*authoritative)
	}
	return s.users.Save(ctx, recipient)
}

// RegisterTasks binds the service's queue handlers.
func (s *UserService) RegisterTasks(server queueport.Server) {
	server.Register(TaskReconcilePrivateChat, s.HandleReconcilePrivateChat)
}
