package domain

// Permission identifies a single grantable action inside a group chat or
// channel. The two catalogs are independent; a group permission key is
// meaningless on a channel and vice versa.
type Permission string

// PermissionSet maps permission keys to explicit grants. Absent keys
// resolve to false.
type PermissionSet map[Permission]bool

// Group chat permissions.
const (
	// user
	PermJoinGroup       Permission = "joinGroup"
	PermLeaveGroup      Permission = "leaveGroup"
	PermSeeGroupInfo    Permission = "seeGroupInfo"
	PermSeeGroupMembers Permission = "seeGroupMembers"
	// member
	PermSendMessage       Permission = "sendMessage"
	PermSendPhotos        Permission = "sendPhotos"
	PermSendVideoFiles    Permission = "sendVideoFiles"
	PermSendVideoMessages Permission = "sendVideoMessages"
	PermSendMusic         Permission = "sendMusic"
	PermSendVoiceMessage  Permission = "sendVoiceMessage"
	PermSendFiles         Permission = "sendFiles"
	PermAddMembers        Permission = "addMembers"
	PermPinMessages       Permission = "pinMessages"
	PermChangeGroupInfo   Permission = "changeGroupInfo"
	PermDeleteOwnMessage  Permission = "deleteOwnMessage"
	// admin
	PermDeleteMessages                  Permission = "deleteMessages"
	PermBanUsers                        Permission = "banUsers"
	PermInviteUsersViaLink              Permission = "inviteUsersViaLink"
	PermManageVideoChats                Permission = "manageVideoChats"
	PermRemainAnonymous                 Permission = "remainAnonymous"
	PermAddNewAdmins                    Permission = "addNewAdmins"
	PermRemoveAdmins                    Permission = "removeAdmins"
	PermKickMembers                     Permission = "kickMembers"
	PermUpdateMemberPermissionOverrides Permission = "updateMemberPermissionOverrides"
	// owner
	PermTransferOwnership Permission = "transferOwnership"
	PermDeleteGroup       Permission = "deleteGroup"
)

// Channel permissions. Keys shared with the group catalog (pinMessages,
// deleteOwnMessage, addNewAdmins, removeAdmins, transferOwnership) are
// still channel-scoped grants; the catalogs never mix.
const (
	// user
	PermJoinChannel           Permission = "joinChannel"
	PermLeaveChannel          Permission = "leaveChannel"
	PermSeeChannelInfo        Permission = "seeChannelInfo"
	PermSeeChannelSubscribers Permission = "seeChannelSubscribers"
	// subscriber
	PermSeeMessages Permission = "seeMessages"
	// admin
	PermChangeChannelInfo      Permission = "changeChannelInfo"
	PermPostMessages           Permission = "postMessages"
	PermEditMessagesOfOthers   Permission = "editMessagesOfOthers"
	PermDeleteMessagesOfOthers Permission = "deleteMessagesOfOthers"
	PermAddSubscribers         Permission = "addSubscribers"
	PermManageLiveStreams      Permission = "manageLiveStreams"
	PermRemoveSubscribers      Permission = "removeSubscribers"
	PermEditOwnMessage         Permission = "editOwnMessage"
	// owner
	PermUpdateAdminsPermissions Permission = "updateAdminsPermissions"
	PermDeleteChannel           Permission = "deleteChannel"
)

// GroupChatAllPermissions is the full group-chat catalog with human labels.
var GroupChatAllPermissions = map[Permission]string{
	PermJoinGroup:                       "Join group",
	PermLeaveGroup:                      "leave group",
	PermSeeGroupInfo:                    "See group info",
	PermSeeGroupMembers:                 "See group members",
	PermSendMessage:                     "Send message",
	PermSendPhotos:                      "Send photos",
	PermSendVideoFiles:                  "Send video files",
	PermSendVideoMessages:               "Send video messages",
	PermSendMusic:                       "Send music",
	PermSendVoiceMessage:                "Send voice message",
	PermSendFiles:                       "Send files",
	PermAddMembers:                      "Add members",
	PermPinMessages:                     "Pin messages",
	PermChangeGroupInfo:                 "Change group info",
	PermDeleteOwnMessage:                "Delete own message",
	PermDeleteMessages:                  "Delete Messages",
	PermBanUsers:                        "Ban users",
	PermInviteUsersViaLink:              "Invite users via link",
	PermManageVideoChats:                "Manage video chats",
	PermRemainAnonymous:                 "Remain anonymous",
	PermAddNewAdmins:                    "Add new admins",
	PermRemoveAdmins:                    "Remove admins",
	PermKickMembers:                     "Kick members",
	PermUpdateMemberPermissionOverrides: "Update member permission overrides",
	PermTransferOwnership:               "Transfer Ownership",
	PermDeleteGroup:                     "Delete group",
}

// ChannelAllPermissions is the full channel catalog with human labels.
var ChannelAllPermissions = map[Permission]string{
	PermJoinChannel:             "Join channel",
	PermLeaveChannel:            "leave channel",
	PermSeeChannelInfo:          "See channel info",
	PermSeeChannelSubscribers:   "See channel subscribers",
	PermSeeMessages:             "See messages",
	PermPinMessages:             "Pin messages",
	PermDeleteOwnMessage:        "Delete own message",
	PermChangeChannelInfo:       "Change channel info",
	PermPostMessages:            "Post messages",
	PermEditMessagesOfOthers:    "Edit messages of others",
	PermDeleteMessagesOfOthers:  "Delete messages of others",
	PermAddSubscribers:          "Add subscribers",
	PermManageLiveStreams:       "Manage live streams",
	PermAddNewAdmins:            "Add new admins",
	PermRemoveSubscribers:       "Remove subscribers",
	PermRemoveAdmins:            "Remove admins",
	PermEditOwnMessage:          "Edit own Message",
	PermUpdateAdminsPermissions: "Update admins permissions",
	PermTransferOwnership:       "Transfer Ownership",
	PermDeleteChannel:           "Delete channel",
}

// GroupChatRole is a role within a group chat. "user" is an authenticated
// non-member; "guest" is anyone without a membership record.
type GroupChatRole string

const (
	GroupRoleOwner  GroupChatRole = "owner"
	GroupRoleAdmin  GroupChatRole = "admin"
	GroupRoleMember GroupChatRole = "member"
	GroupRoleUser   GroupChatRole = "user"
	GroupRoleGuest  GroupChatRole = "guest"
)

// ChannelRole is a role within a channel.
type ChannelRole string

const (
	ChannelRoleOwner      ChannelRole = "owner"
	ChannelRoleAdmin      ChannelRole = "admin"
	ChannelRoleSubscriber ChannelRole = "subscriber"
	ChannelRoleUser       ChannelRole = "user"
	ChannelRoleGuest      ChannelRole = "guest"
)

// GroupChatDefaultPermissions is the hand-curated default grant table per
// group role. The tables are not strictly nested across roles; they must be
// kept exactly as-is rather than derived.
var GroupChatDefaultPermissions = map[GroupChatRole]PermissionSet{
	GroupRoleOwner: {
		PermLeaveGroup:         true,
		PermSeeGroupInfo:       true,
		PermSeeGroupMembers:    true,
		PermSendMessage:        true,
		PermSendPhotos:         true,
		PermSendVideoFiles:     true,
		PermSendMusic:          true,
		PermSendVoiceMessage:   true,
		PermSendFiles:          true,
		PermAddMembers:         true,
		PermPinMessages:        true,
		PermChangeGroupInfo:    true,
		PermDeleteMessages:     true,
		PermBanUsers:           true,
		PermInviteUsersViaLink: true,
		PermManageVideoChats:   true,
		PermRemainAnonymous:    true,
		PermAddNewAdmins:       true,
		PermTransferOwnership:  true,
	},
	GroupRoleAdmin: {
		PermLeaveGroup:         true,
		PermSeeGroupInfo:       true,
		PermSeeGroupMembers:    true,
		PermSendMessage:        true,
		PermSendPhotos:         true,
		PermSendVideoFiles:     true,
		PermSendMusic:          true,
		PermSendVoiceMessage:   true,
		PermSendFiles:          true,
		PermAddMembers:         true,
		PermPinMessages:        true,
		PermChangeGroupInfo:    true,
		PermDeleteMessages:     true,
		PermBanUsers:           true,
		PermInviteUsersViaLink: true,
		PermManageVideoChats:   true,
		PermRemainAnonymous:    false,
		PermAddNewAdmins:       false,
	},
	GroupRoleMember: {
		PermLeaveGroup:        true,
		PermSeeGroupInfo:      true,
		PermSeeGroupMembers:   true,
		PermSendMessage:       true,
		PermSendPhotos:        true,
		PermSendVideoFiles:    true,
		PermSendMusic:         true,
		PermSendVoiceMessage:  true,
		PermSendFiles:         true,
		PermAddMembers:        true,
		PermPinMessages:       true,
		PermChangeGroupInfo:   true,
	},
	GroupRoleUser: {
		PermJoinGroup:       true,
		PermSeeGroupInfo:    true,
		PermSeeGroupMembers: false,
	},
	GroupRoleGuest: {
		PermSeeGroupInfo: true,
	},
}

// ChannelDefaultPermissions is the hand-curated default grant table per
// channel role.
var ChannelDefaultPermissions = map[ChannelRole]PermissionSet{
	ChannelRoleOwner: {
		PermSeeChannelInfo:         true,
		PermSeeChannelSubscribers:  true,
		PermPostMessages:           true,
		PermAddSubscribers:         true,
		PermPinMessages:            true,
		PermChangeChannelInfo:      true,
		PermDeleteMessagesOfOthers: true,
		PermEditMessagesOfOthers:   true,
		PermDeleteChannel:          true,
		PermDeleteOwnMessage:       true,
		PermRemoveSubscribers:      true,
		PermManageLiveStreams:      true,
		PermRemoveAdmins:           true,
		PermSeeMessages:            true,
		PermAddNewAdmins:           true,
		PermTransferOwnership:      true,
	},
	ChannelRoleAdmin: {
		PermLeaveChannel:           true,
		PermSeeChannelInfo:         true,
		PermSeeChannelSubscribers:  true,
		PermPostMessages:           true,
		PermAddSubscribers:         true,
		PermPinMessages:            true,
		PermChangeChannelInfo:      true,
		PermDeleteMessagesOfOthers: true,
		PermEditMessagesOfOthers:   true,
		PermDeleteChannel:          true,
		PermDeleteOwnMessage:       true,
		PermRemoveSubscribers:      true,
		PermManageLiveStreams:      true,
		PermRemoveAdmins:           true,
		PermSeeMessages:            true,
	},
	ChannelRoleSubscriber: {
		PermLeaveChannel:          true,
		PermSeeChannelInfo:        true,
		PermSeeChannelSubscribers: true,
		PermSeeMessages:           true,
	},
	ChannelRoleUser: {
		PermJoinChannel:    true,
		PermSeeChannelInfo: true,
	},
	ChannelRoleGuest: {
		PermSeeChannelInfo: true,
	},
}

// GroupChatEditablePermissions lists, per role, the permission keys a
// superior may touch when editing that role's overrides. Enforced by
// callers, not here.
var GroupChatEditablePermissions = map[GroupChatRole][]Permission{
	GroupRoleAdmin: {
		PermChangeGroupInfo,
		PermDeleteMessages,
		PermBanUsers,
		PermInviteUsersViaLink,
		PermPinMessages,
		PermManageVideoChats,
		PermRemainAnonymous,
		PermAddNewAdmins,
	},
	GroupRoleMember: {
		PermSendMessage,
		PermSendPhotos,
		PermSendVideoFiles,
		PermSendVideoMessages,
		PermSendMusic,
		PermSendVoiceMessage,
		PermSendFiles,
		PermAddMembers,
		PermPinMessages,
		PermChangeGroupInfo,
	},
}

// ChannelEditablePermissions lists the channel-admin override keys an owner
// may edit.
var ChannelEditablePermissions = map[ChannelRole][]Permission{
	ChannelRoleAdmin: {
		PermChangeChannelInfo,
		PermPostMessages,
		PermEditMessagesOfOthers,
		PermDeleteMessagesOfOthers,
		PermAddSubscribers,
		PermManageLiveStreams,
		PermAddNewAdmins,
	},
}

// merge layers overrides on top of defaults without mutating either.
func merge(defaults, overrides PermissionSet) PermissionSet {
	out := make(PermissionSet, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
