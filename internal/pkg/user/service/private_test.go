package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

func newPrivateFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixture(
		seedUser(t, alice, "alice", "pw"),
		seedUser(t, bob, "bob", "pw"),
	)
}

func send(t *testing.T, fx *fixture, from, to, text string) *SendPrivateMessageResult {
	t.Helper()
	res, err := fx.svc.SendPrivateMessage(context.Background(), from, SendPrivateMessageForm{
		UserID: to,
		Text:   text,
	})
	require.NoError(t, err)
	return res
}

func chatWith(t *testing.T, fx *fixture, ownerID, peerID string) *domain.PrivateChat {
	t.Helper()
	u, err := fx.users.GetByID(context.Background(), ownerID)
	require.NoError(t, err)
	return u.PrivateChatWith(peerID)
}

func TestSendPrivateMessageOfflineRecipient(t *testing.T) {
	fx := newPrivateFixture(t)

	res := send(t, fx, alice, bob, "hi")
	require.Equal(t, domain.StatusSent, res.Message.Status)
	require.Equal(t, "hi", res.Content.Text)

	for _, owner := range []string{alice, bob} {
		peer := bob
		if owner == bob {
			peer = alice
		}
		pv := chatWith(t, fx, owner, peer)
		require.NotNil(t, pv)
		require.Len(t, pv.Messages, 1)
		require.Equal(t, domain.StatusSent, pv.Messages[0].Status)
		require.Equal(t, alice, pv.Messages[0].Sender)
	}
	require.Empty(t, fx.dir.userEvents(bob))
}

func TestSendPrivateMessageOnlineRecipient(t *testing.T) {
	fx := newPrivateFixture(t)
	fx.dir.online[bob] = true

	res := send(t, fx, alice, bob, "hi")
	require.Equal(t, domain.StatusDelivered, res.Message.Status)

	pv := chatWith(t, fx, bob, alice)
	require.Equal(t, domain.StatusDelivered, pv.Messages[0].Status)

	ev := fx.dir.lastUserEvent(bob)
	require.NotNil(t, ev)
	require.Equal(t, EventAppAction, ev.Name)
	require.Equal(t, "addMessageToPrivateChat", ev.Method)
	arg := ev.Arg.(map[string]any)
	require.Equal(t, alice, arg["userId"])
}

func TestSendPrivateMessageUnknownRecipient(t *testing.T) {
	fx := newPrivateFixture(t)
	_, err := fx.svc.SendPrivateMessage(context.Background(), alice, SendPrivateMessageForm{
		UserID: "ghost",
		Text:   "hi",
	})
	require.Equal(t, 404, apperror.StatusOf(err))
}

func TestMarkMessageAsSeenMirrorsToSender(t *testing.T) {
	fx := newPrivateFixture(t)
	send(t, fx, bob, alice, "one")
	send(t, fx, bob, alice, "two")

	err := fx.svc.MarkMessageAsSeen(context.Background(), alice, MarkMessageForm{
		Chat: domain.ChatRef{Type: domain.ChatRefUser, ID: bob},
	})
	require.NoError(t, err)

	for _, m := range chatWith(t, fx, alice, bob).Messages {
		require.Equal(t, domain.StatusSeen, m.Status)
	}
	for _, m := range chatWith(t, fx, bob, alice).Messages {
		require.Equal(t, domain.StatusSeen, m.Status)
	}

	ev := fx.dir.lastUserEvent(bob)
	require.NotNil(t, ev)
	require.Equal(t, "markMessageAsSeen", ev.Method)
	arg := ev.Arg.(map[string]any)
	require.Equal(t, "own", arg["sender"])
}

func TestMarkMessageAsSeenStopsAtAnchor(t *testing.T) {
	fx := newPrivateFixture(t)
	first := send(t, fx, bob, alice, "one")
	send(t, fx, bob, alice, "two")

	err := fx.svc.MarkMessageAsSeen(context.Background(), alice, MarkMessageForm{
		Chat:      domain.ChatRef{Type: domain.ChatRefUser, ID: bob},
		MessageID: first.Message.ID,
	})
	require.NoError(t, err)

	pv := chatWith(t, fx, alice, bob)
	require.Equal(t, domain.StatusSeen, pv.Messages[0].Status)
	require.Equal(t, domain.StatusSent, pv.Messages[1].Status)
}

func TestMarkMessageIgnoresNonUserChats(t *testing.T) {
	fx := newPrivateFixture(t)
	err := fx.svc.MarkMessageAsDelivered(context.Background(), alice, MarkMessageForm{
		Chat: domain.ChatRef{Type: domain.ChatRefGroup, ID: "g1"},
	})
	require.NoError(t, err)
}

func TestMarkMessageUnknownChat(t *testing.T) {
	fx := newPrivateFixture(t)
	err := fx.svc.MarkMessageAsSeen(context.Background(), alice, MarkMessageForm{
		Chat: domain.ChatRef{Type: domain.ChatRefUser, ID: bob},
	})
	require.Equal(t, 404, apperror.StatusOf(err))
}

func TestDeletePrivateChatForSelfOnly(t *testing.T) {
	fx := newPrivateFixture(t)
	send(t, fx, alice, bob, "hi")

	err := fx.svc.DeletePrivateChat(context.Background(), alice, DeletePrivateChatForm{UserID: bob})
	require.NoError(t, err)

	require.Nil(t, chatWith(t, fx, alice, bob))
	require.NotNil(t, chatWith(t, fx, bob, alice))
}

func TestDeletePrivateChatForOtherPersonKeepsPeerMessages(t *testing.T) {
	fx := newPrivateFixture(t)
	send(t, fx, alice, bob, "from alice")
	send(t, fx, bob, alice, "from bob")

	err := fx.svc.DeletePrivateChat(context.Background(), alice, DeletePrivateChatForm{
		UserID:               bob,
		DeleteForOtherPerson: true,
	})
	require.NoError(t, err)

	require.Nil(t, chatWith(t, fx, alice, bob))
	pv := chatWith(t, fx, bob, alice)
	require.Len(t, pv.Messages, 1)
	require.Equal(t, bob, pv.Messages[0].Sender)

	ev := fx.dir.lastUserEvent(bob)
	require.NotNil(t, ev)
	require.Equal(t, "deleteUserMessagesFromPrivateChat", ev.Method)
	require.Equal(t, alice, ev.Arg.(map[string]any)["user"])
}

func TestDeleteMessageFromPrivateChat(t *testing.T) {
	fx := newPrivateFixture(t)
	first := send(t, fx, alice, bob, "one")
	send(t, fx, alice, bob, "two")

	err := fx.svc.DeleteMessageFromPrivateChat(context.Background(), alice, DeletePrivateMessageForm{
		UserID:               bob,
		MessageID:            first.Message.ID,
		DeleteForOtherPerson: true,
	})
	require.NoError(t, err)

	for _, owner := range []string{alice, bob} {
		peer := bob
		if owner == bob {
			peer = alice
		}
		pv := chatWith(t, fx, owner, peer)
		require.Len(t, pv.Messages, 1)
		require.NotEqual(t, first.Message.ID, pv.Messages[0].ID)
	}

	ev := fx.dir.lastUserEvent(bob)
	require.NotNil(t, ev)
	require.Equal(t, "deleteUserMessagesFromPrivateChat", ev.Method)
	require.Equal(t, first.Message.ID, ev.Arg.(map[string]any)["message"])
}

func TestGetPreviousPrivateMessages(t *testing.T) {
	fx := newPrivateFixture(t)
	send(t, fx, alice, bob, "one")
	second := send(t, fx, alice, bob, "two")
	third := send(t, fx, alice, bob, "three")

	res, err := fx.svc.GetPreviousPrivateMessages(context.Background(), alice, PreviousMessagesForm{
		UserID:    bob,
		Limit:     2,
		MessageID: third.Message.ID,
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)
	require.Equal(t, second.Message.ID, res.Messages[1].ID)
	require.Len(t, res.Contents, 2)
}

func TestGetUserDataSweepsToDelivered(t *testing.T) {
	fx := newPrivateFixture(t)
	send(t, fx, bob, alice, "hi")

	u, err := fx.svc.GetUserData(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, alice, u.ID)
	require.Equal(t, domain.StatusDelivered, u.PrivateChatWith(bob).Messages[0].Status)

	require.Equal(t, domain.StatusDelivered, chatWith(t, fx, alice, bob).Messages[0].Status)
	require.Equal(t, domain.StatusDelivered, chatWith(t, fx, bob, alice).Messages[0].Status)

	ev := fx.dir.lastUserEvent(bob)
	require.NotNil(t, ev)
	require.Equal(t, "markMessageAsDelivered", ev.Method)
}

func TestSendPrivateMessageSplitWriteEnqueuesReconcile(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()
	fx.users.failSaveFor[bob] = true

	res := send(t, fx, alice, bob, "hi")
	require.NotNil(t, chatWith(t, fx, alice, bob))
	require.Nil(t, chatWith(t, fx, bob, alice))

	require.Len(t, fx.queue.tasks, 1)
	task := fx.queue.tasks[0]
	require.Equal(t, TaskReconcilePrivateChat, task.Type)

	// once the store recovers, replaying the task repairs the recipient copy
	fx.users.failSaveFor[bob] = false
	require.NoError(t, fx.svc.HandleReconcilePrivateChat(ctx, task))
	pv := chatWith(t, fx, bob, alice)
	require.Len(t, pv.Messages, 1)
	require.Equal(t, res.Message.ID, pv.Messages[0].ID)

	// replaying again is a no-op
	require.NoError(t, fx.svc.HandleReconcilePrivateChat(ctx, task))
	require.Len(t, chatWith(t, fx, bob, alice).Messages, 1)
}

func TestReconcileNeverRegressesStatus(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()
	msg := send(t, fx, alice, bob, "hi")

	// recipient copy races ahead of the sender's
	u, err := fx.users.GetByID(ctx, bob)
	require.NoError(t, err)
	u.PrivateChatWith(alice).Messages[0].Status = domain.StatusSeen
	require.NoError(t, fx.users.Save(ctx, u))

	require.NoError(t, fx.svc.ReconcilePrivateChat(ctx, alice, bob, msg.Message.ID))
	require.Equal(t, domain.StatusSeen, chatWith(t, fx, bob, alice).Messages[0].Status)
}
