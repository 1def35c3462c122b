package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
)

func TestContacts(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()

	c, err := fx.svc.AddContact(ctx, alice, AddContactForm{Username: "bob", Name: "Bobby"})
	require.NoError(t, err)
	require.Equal(t, bob, c.UserID)

	_, err = fx.svc.AddContact(ctx, alice, AddContactForm{Username: "bob"})
	require.Equal(t, 409, apperror.StatusOf(err))

	_, err = fx.svc.AddContact(ctx, alice, AddContactForm{Username: "ghost"})
	require.Equal(t, 404, apperror.StatusOf(err))

	contacts, err := fx.svc.GetContacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.Equal(t, "Bobby", contacts[0].Name)

	require.NoError(t, fx.svc.RemoveContact(ctx, alice, RemoveContactForm{UserID: bob}))
	err = fx.svc.RemoveContact(ctx, alice, RemoveContactForm{UserID: bob})
	require.Equal(t, 404, apperror.StatusOf(err))
}

func TestFolders(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()

	folderID, err := fx.svc.CreateFolder(ctx, alice, CreateFolderForm{Name: "Work"})
	require.NoError(t, err)
	require.NotEmpty(t, folderID)

	chat := domain.ChatRef{Type: domain.ChatRefGroup, ID: "g1"}
	require.NoError(t, fx.svc.AddChatToFolder(ctx, alice, AddChatToFolderForm{FolderID: folderID, Chat: chat}))

	err = fx.svc.AddChatToFolder(ctx, alice, AddChatToFolderForm{FolderID: "missing", Chat: chat})
	require.Equal(t, 404, apperror.StatusOf(err))

	err = fx.svc.RemoveChatFromFolder(ctx, alice, RemoveChatFromFolderForm{FolderID: folderID, ChatID: "other"})
	require.Equal(t, 404, apperror.StatusOf(err))

	require.NoError(t, fx.svc.RemoveChatFromFolder(ctx, alice, RemoveChatFromFolderForm{FolderID: folderID, ChatID: "g1"}))

	u, err := fx.users.GetByID(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, u.FolderByID(folderID).Chats)

	require.NoError(t, fx.svc.RemoveFolder(ctx, alice, RemoveFolderForm{FolderID: folderID}))
	err = fx.svc.RemoveFolder(ctx, alice, RemoveFolderForm{FolderID: folderID})
	require.Equal(t, 404, apperror.StatusOf(err))
}

func TestSeen(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()

	before, err := fx.users.GetByID(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, fx.svc.Seen(ctx, alice))

	after, err := fx.users.GetByID(ctx, alice)
	require.NoError(t, err)
	require.True(t, after.LastSeen.After(before.LastSeen))
}

func TestTyping(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()

	err := fx.svc.Typing(ctx, alice, TypingForm{})
	require.Equal(t, 422, apperror.StatusOf(err))
	err = fx.svc.Typing(ctx, alice, TypingForm{UserID: bob, GroupChatID: "g1"})
	require.Equal(t, 422, apperror.StatusOf(err))

	require.NoError(t, fx.svc.Typing(ctx, alice, TypingForm{UserID: bob}))
	ev := fx.dir.lastUserEvent(bob)
	require.NotNil(t, ev)
	require.Equal(t, EventUserService, ev.Name)
	require.Equal(t, "isTyping", ev.Method)
	require.Equal(t, alice, ev.Arg.(map[string]any)["from"])

	require.NoError(t, fx.svc.Typing(ctx, alice, TypingForm{GroupChatID: "g1"}))
	require.Len(t, fx.dir.toRoom["g1"], 1)
}

func TestGetContents(t *testing.T) {
	fx := newPrivateFixture(t)
	ctx := context.Background()

	_, err := fx.svc.GetContents(ctx, GetContentsForm{})
	require.Equal(t, 422, apperror.StatusOf(err))

	res := send(t, fx, alice, bob, "hello")
	bodies, err := fx.svc.GetContents(ctx, GetContentsForm{ContentIDs: []string{res.Content.ID, "missing"}})
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	require.Equal(t, "hello", bodies[0].Text)
}
