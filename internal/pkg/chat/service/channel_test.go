package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pouyadh/chat-app-server/internal/pkg/apperror"
	"github.com/pouyadh/chat-app-server/internal/pkg/chat/domain"
	userdomain "github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
)

type channelFixture struct {
	svc      *ChannelService
	repo     *memChannelRepo
	users    *memUserRepo
	contents *memContentRepo
	dir      *fakeDirectory
}

func newChannelFixture(t *testing.T) (*channelFixture, string) {
	t.Helper()
	fx := &channelFixture{
		repo:     newMemChannelRepo(),
		contents: newMemContentRepo(),
		users: newMemUserRepo(
			&userdomain.User{ID: owner, Username: "owner"},
			&userdomain.User{ID: memberA, Username: "a"},
			&userdomain.User{ID: memberB, Username: "b"},
		),
		dir: newFakeDirectory(owner, memberA),
	}
	fx.svc = NewChannelService(fx.repo, fx.users, fx.contents, fx.dir, testLogger())

	id, err := fx.svc.CreateChannel(context.Background(), owner, CreateChannelForm{
		Name:          "announcements",
		SubscriberIDs: []string{memberA, memberB},
	})
	require.NoError(t, err)
	return fx, id
}

// grant seeds permission overrides on a stored subscriber record. The
// default tables grant no role updateAdminsPermissions or editOwnMessage;
// those arrive only as overrides.
func (fx *channelFixture) grant(t *testing.T, channelID, userID string, perms ...domain.Permission) {
	t.Helper()
	ctx := context.Background()
	ch, err := fx.repo.GetByID(ctx, channelID)
	require.NoError(t, err)
	sub := ch.GetSubscriber(userID)
	require.NotNil(t, sub)
	for _, p := range perms {
		sub.PermissionOverrides[p] = true
	}
	require.NoError(t, fx.repo.Save(ctx, ch))
}

func TestCreateChannel(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()

	ch, err := fx.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelRoleOwner, ch.Authorize(owner).Role)
	assert.Equal(t, domain.ChannelRoleSubscriber, ch.Authorize(memberA).Role)
	require.Len(t, ch.Contents, 1)
	assert.Equal(t, domain.ActivityCreateChannel, ch.Contents[0].Activity.Type)

	u, err := fx.users.GetByID(ctx, memberB)
	require.NoError(t, err)
	assert.Contains(t, u.Channels, id)
}

func TestSubscribersCannotPost(t *testing.T) {
	fx, id := newChannelFixture(t)
	_, err := fx.svc.PostMessage(context.Background(), memberA, PostMessageForm{ChannelID: id, Text: "hi"})
	assert.Equal(t, 403, apperror.StatusOf(err))
}

func TestPostMessageAsOwner(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()

	msgID, err := fx.svc.PostMessage(ctx, owner, PostMessageForm{ChannelID: id, Text: "launch"})
	require.NoError(t, err)

	ch, _ := fx.repo.GetByID(ctx, id)
	item := ch.GetMessage(msgID)
	require.NotNil(t, item)
	assert.Equal(t, owner, item.Message.Sender)
	assert.Equal(t, "postMessage", fx.dir.lastRoomEvent(id).Method)
}

func TestAddRemoveSubscriber(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()

	err := fx.svc.AddSubscriber(ctx, owner, SubscriberForm{ChannelID: id, UserID: memberA})
	assert.Equal(t, 409, apperror.StatusOf(err))

	require.NoError(t, fx.svc.AddSubscriber(ctx, owner, SubscriberForm{ChannelID: id, UserID: stranger}))
	require.NoError(t, fx.svc.RemoveSubscriber(ctx, owner, SubscriberForm{ChannelID: id, UserID: stranger}))

	// owner is not base-role removable
	err = fx.svc.RemoveSubscriber(ctx, owner, SubscriberForm{ChannelID: id, UserID: owner})
	assert.Equal(t, 404, apperror.StatusOf(err))
}

func TestChannelAdminLifecycle(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()
	fx.grant(t, id, owner, domain.PermUpdateAdminsPermissions)

	err := fx.svc.AddAdmin(ctx, owner, AddChannelAdminForm{ChannelID: id, UserID: stranger})
	assert.Equal(t, 422, apperror.StatusOf(err))

	require.NoError(t, fx.svc.AddAdmin(ctx, owner, AddChannelAdminForm{ChannelID: id, UserID: memberA}))
	err = fx.svc.AddAdmin(ctx, owner, AddChannelAdminForm{ChannelID: id, UserID: memberA})
	assert.Equal(t, 409, apperror.StatusOf(err))

	// admins can post once promoted
	_, err = fx.svc.PostMessage(ctx, memberA, PostMessageForm{ChannelID: id, Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.UpdateAdminPermissions(ctx, owner, UpdateAdminPermissionsForm{
		ChannelID:           id,
		UserID:              memberA,
		PermissionOverrides: domain.PermissionSet{domain.PermPostMessages: false},
	}))
	_, err = fx.svc.PostMessage(ctx, memberA, PostMessageForm{ChannelID: id, Text: "hello"})
	assert.Equal(t, 403, apperror.StatusOf(err))

	require.NoError(t, fx.svc.RemoveAdmin(ctx, owner, SubscriberForm{ChannelID: id, UserID: memberA}))
	ch, _ := fx.repo.GetByID(ctx, id)
	sub := ch.GetSubscriber(memberA)
	require.NotNil(t, sub)
	assert.Equal(t, domain.ChannelRoleSubscriber, sub.Role)
	assert.Empty(t, sub.PermissionOverrides)
}

func TestUpdateAdminPermissionsRoleMismatch(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()
	form := UpdateAdminPermissionsForm{
		ChannelID:           id,
		UserID:              memberA,
		PermissionOverrides: domain.PermissionSet{},
	}

	// the gate answers before the role check
	err := fx.svc.UpdateAdminPermissions(ctx, owner, form)
	assert.Equal(t, 403, apperror.StatusOf(err))

	fx.grant(t, id, owner, domain.PermUpdateAdminsPermissions)
	err = fx.svc.UpdateAdminPermissions(ctx, owner, form)
	assert.Equal(t, 400, apperror.StatusOf(err))
}

func TestEditMessage(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()
	fx.grant(t, id, owner, domain.PermEditOwnMessage)

	msgID, err := fx.svc.PostMessage(ctx, owner, PostMessageForm{ChannelID: id, Text: "v1"})
	require.NoError(t, err)

	// subscribers may not edit others' messages
	err = fx.svc.EditMessage(ctx, memberA, EditMessageForm{ChannelID: id, MessageID: msgID, Text: "x"})
	assert.Equal(t, 403, apperror.StatusOf(err))

	require.NoError(t, fx.svc.EditMessage(ctx, owner, EditMessageForm{ChannelID: id, MessageID: msgID, Text: "v2"}))

	ch, _ := fx.repo.GetByID(ctx, id)
	item := ch.GetMessage(msgID)
	require.NotNil(t, item)
	body, err := fx.contents.GetByID(ctx, item.Message.ContentID)
	require.NoError(t, err)
	assert.Equal(t, "v2", body.Text)
	assert.True(t, body.Edited)
	assert.Equal(t, "editMessage", fx.dir.lastRoomEvent(id).Method)
}

func TestChannelDeleteMessage(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()

	msgID, err := fx.svc.PostMessage(ctx, owner, PostMessageForm{ChannelID: id, Text: "temp"})
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteMessage(ctx, owner, DeleteChannelMessageForm{
		ChannelID: id, MessageID: msgID,
	}))
	ch, _ := fx.repo.GetByID(ctx, id)
	item := ch.GetMessage(msgID)
	require.NotNil(t, item)
	assert.True(t, item.Message.HiddenForUser(owner))

	require.NoError(t, fx.svc.DeleteMessage(ctx, owner, DeleteChannelMessageForm{
		ChannelID: id, MessageID: msgID, DeleteForEveryone: true,
	}))
	ch, _ = fx.repo.GetByID(ctx, id)
	assert.Nil(t, ch.GetMessage(msgID))
}

func TestDeleteChannel(t *testing.T) {
	fx, id := newChannelFixture(t)
	ctx := context.Background()

	err := fx.svc.DeleteChannel(ctx, memberA, DeleteChannelForm{ChannelID: id})
	assert.Equal(t, 403, apperror.StatusOf(err))

	require.NoError(t, fx.svc.DeleteChannel(ctx, owner, DeleteChannelForm{ChannelID: id}))
	assert.Contains(t, fx.dir.kicked, id)
}
