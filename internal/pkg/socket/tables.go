package socket

import (
	"context"
	"encoding/json"

	chatservice "github.com/pouyadh/chat-app-server/internal/pkg/chat/service"
	userservice "github.com/pouyadh/chat-app-server/internal/pkg/user/service"
)

func userTable(s *userservice.UserService) Table {
	return Table{
		"getUserData": func(ctx context.Context, callerID string, _ json.RawMessage) (any, error) {
			return s.GetUserData(ctx, callerID)
		},
		"signout": func(ctx context.Context, callerID string, _ json.RawMessage) (any, error) {
			return nil, s.Signout(ctx, callerID)
		},
		"deleteAccount":    run(s.DeleteAccount),
		"updateProfile":    run(s.UpdateProfile),
		"updateCredential": run(s.UpdateCredential),
		"getPublicProfile": func(ctx context.Context, _ string, arg json.RawMessage) (any, error) {
			var form userservice.PublicProfileForm
			if err := decode(arg, &form); err != nil {
				return nil, err
			}
			return s.GetPublicProfile(ctx, form)
		},
		"getPublicProfilesById": func(ctx context.Context, _ string, arg json.RawMessage) (any, error) {
			var form userservice.PublicProfilesForm
			if err := decode(arg, &form); err != nil {
				return nil, err
			}
			return s.GetPublicProfilesByID(ctx, form)
		},
		"addContact":    call(s.AddContact),
		"removeContact": run(s.RemoveContact),
		"getContacts": func(ctx context.Context, callerID string, _ json.RawMessage) (any, error) {
			return s.GetContacts(ctx, callerID)
		},
		"sendPrivateMessage":           call(s.SendPrivateMessage),
		"markMessageAsSeen":            run(s.MarkMessageAsSeen),
		"markMessageAsDelivered":       run(s.MarkMessageAsDelivered),
		"getPreviousPrivateMessages":   call(s.GetPreviousPrivateMessages),
		"deletePrivateChat":            run(s.DeletePrivateChat),
		"deleteMessageFromPrivateChat": run(s.DeleteMessageFromPrivateChat),
		"seen": func(ctx context.Context, callerID string, _ json.RawMessage) (any, error) {
			return nil, s.Seen(ctx, callerID)
		},
		"typing":               run(s.Typing),
		"createFolder":         call(s.CreateFolder),
		"addChatToFolder":      run(s.AddChatToFolder),
		"removeFolder":         run(s.RemoveFolder),
		"removeChatFromFolder": run(s.RemoveChatFromFolder),
		"getContents": func(ctx context.Context, _ string, arg json.RawMessage) (any, error) {
			var form userservice.GetContentsForm
			if err := decode(arg, &form); err != nil {
				return nil, err
			}
			return s.GetContents(ctx, form)
		},
	}
}

func groupChatTable(s *chatservice.GroupChatService) Table {
	return Table{
		"getAllPermissions": func(context.Context, string, json.RawMessage) (any, error) {
			return s.GetAllPermissions(), nil
		},
		"createGroup":             call(s.CreateGroupChat),
		"deleteGroup":             run(s.DeleteGroupChat),
		"getInfo":                 call(s.GetInfo),
		"addMember":               run(s.AddMember),
		"kickMember":              run(s.KickMember),
		"addAdmin":                run(s.AddAdmin),
		"removeAdmin":             run(s.RemoveAdmin),
		"updateMemberPermissions": run(s.UpdateMemberPermissions),
		"updateInfo":              run(s.UpdateInfo),
		"sendMessage":             call(s.SendMessage),
		"deleteMessage":           run(s.DeleteMessage),
	}
}

func channelTable(s *chatservice.ChannelService) Table {
	return Table{
		"getAllPermissions": func(context.Context, string, json.RawMessage) (any, error) {
			return s.GetAllPermissions(), nil
		},
		"createChannel":          call(s.CreateChannel),
		"deleteChannel":          run(s.DeleteChannel),
		"getInfo":                call(s.GetInfo),
		"addSubscriber":          run(s.AddSubscriber),
		"removeSubscriber":       run(s.RemoveSubscriber),
		"addAdmin":               run(s.AddAdmin),
		"removeAdmin":            run(s.RemoveAdmin),
		"updateAdminPermissions": run(s.UpdateAdminPermissions),
		"updateInfo":             run(s.UpdateInfo),
		"postMessage":            call(s.PostMessage),
		"deleteMessage":          run(s.DeleteMessage),
		"editMessage":            run(s.EditMessage),
	}
}
