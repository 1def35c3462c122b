package domain

import "time"

// ChatInfo is the public descriptor shared by group chats and channels.
type ChatInfo struct {
	AvatarURL   string `json:"avatarUrl"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GroupChatMember is one membership record. At most one record exists per
// user id within a chat.
type GroupChatMember struct {
	Role                GroupChatRole `json:"role"`
	UserID              string        `json:"userId"`
	PermissionOverrides PermissionSet `json:"permissionOverrides"`
	CustomTitle         string        `json:"customTitle,omitempty"`
}

// GroupChat is the group-chat document: info, membership directory,
// per-chat permission tables and the content ledger. All methods are pure
// over in-memory state; the caller persists afterwards.
type GroupChat struct {
	ID               string            `json:"id"`
	Info             ChatInfo          `json:"info"`
	Members          []GroupChatMember `json:"members"`
	AdminPermissions PermissionSet     `json:"adminPermissions"`
	MemberPermissions PermissionSet    `json:"memberPermissions"`
	GuestPermissions PermissionSet     `json:"guestPermissions"`
	Contents         []ContentItem     `json:"contents"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// GroupChatAuthorization is the resolved role + effective permission set
// for one user.
type GroupChatAuthorization struct {
	Role        GroupChatRole
	Permissions PermissionSet
}

// NewGroupChat builds a group chat owned by creatorID with the given
// members seeded at the base role.
func NewGroupChat(id string, info ChatInfo, creatorID string, memberIDs []string) *GroupChat {
	g := &GroupChat{
		ID:   id,
		Info: info,
		Members: []GroupChatMember{
			{Role: GroupRoleOwner, UserID: creatorID, PermissionOverrides: PermissionSet{}},
		},
		AdminPermissions:  merge(GroupChatDefaultPermissions[GroupRoleAdmin], nil),
		MemberPermissions: merge(GroupChatDefaultPermissions[GroupRoleMember], nil),
		GuestPermissions:  merge(GroupChatDefaultPermissions[GroupRoleGuest], nil),
		CreatedAt:         time.Now().UTC(),
	}
	for _, id := range memberIDs {
		if id == creatorID || id == "" {
			continue
		}
		g.AddMember(id)
	}
	return g
}

// Authorize resolves the role and effective permissions for userID. A user
// without a membership record (including the empty "public" id) resolves to
// guest with this chat's own guest override map layered over nothing.
func (g *GroupChat) Authorize(userID string) GroupChatAuthorization {
	m := g.GetMember(userID)
	if m == nil {
		return GroupChatAuthorization{
			Role:        GroupRoleGuest,
			Permissions: merge(nil, g.GuestPermissions),
		}
	}
	return GroupChatAuthorization{
		Role:        m.Role,
		Permissions: merge(GroupChatDefaultPermissions[m.Role], m.PermissionOverrides),
	}
}

// HasPermission reports whether userID's effective grant for permission is
// exactly true. Unknown keys are false.
func (g *GroupChat) HasPermission(userID string, permission Permission) bool {
	return g.Authorize(userID).Permissions[permission]
}

// IsAdmin reports whether userID resolves to the admin role.
func (g *GroupChat) IsAdmin(userID string) bool {
	return g.Authorize(userID).Role == GroupRoleAdmin
}

// IsMember reports whether userID resolves to the base member role.
// Owners and admins are deliberately excluded.
func (g *GroupChat) IsMember(userID string) bool {
	return g.Authorize(userID).Role == GroupRoleMember
}

// GetMember returns the membership record for userID, or nil.
func (g *GroupChat) GetMember(userID string) *GroupChatMember {
	if userID == "" {
		return nil
	}
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// AddMember appends a base-role membership record. Returns false without
// mutation when a record already exists.
func (g *GroupChat) AddMember(userID string) bool {
	if g.GetMember(userID) != nil {
		return false
	}
	g.Members = append(g.Members, GroupChatMember{
		Role:                GroupRoleMember,
		UserID:              userID,
		PermissionOverrides: PermissionSet{},
	})
	return true
}

// RemoveMember removes userID's record only when their resolved role is the
// base member role. Admins and the owner cannot be removed through this
// path; they must be demoted first.
func (g *GroupChat) RemoveMember(userID string) bool {
	if !g.IsMember(userID) {
		return false
	}
	kept := g.Members[:0]
	for _, m := range g.Members {
		if m.UserID == userID {
			continue
		}
		kept = append(kept, m)
	}
	g.Members = kept
	return true
}

// MemberIDs returns all user ids holding a membership record.
func (g *GroupChat) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// AddMessage appends a message ledger entry.
func (g *GroupChat) AddMessage(messageID, sender, contentID string) {
	l := ledger(g.Contents)
	l.addMessage(messageID, sender, contentID)
	g.Contents = l
}

// AddActivity appends an activity ledger entry.
func (g *GroupChat) AddActivity(activityID string, item ActivityItem) {
	l := ledger(g.Contents)
	l.addActivity(activityID, item)
	g.Contents = l
}

// GetMessage returns the message ledger entry with the given id, or nil.
func (g *GroupChat) GetMessage(messageID string) *ContentItem {
	return ledger(g.Contents).getMessage(messageID)
}

// DeleteMessage hard-removes the message ledger entry with the given id.
func (g *GroupChat) DeleteMessage(messageID string) {
	l := ledger(g.Contents)
	l.deleteMessage(messageID)
	g.Contents = l
}
