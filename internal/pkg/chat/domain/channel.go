package domain

import "time"

// ChannelSubscriber is one subscription record. At most one record exists
// per user id within a channel.
type ChannelSubscriber struct {
	Role                ChannelRole   `json:"role"`
	UserID              string        `json:"userId"`
	PermissionOverrides PermissionSet `json:"permissionOverrides"`
	CustomTitle         string        `json:"customTitle,omitempty"`
}

// Channel is the broadcast-channel document. Same shape as GroupChat but
// with its own role set and permission catalog.
type Channel struct {
	ID               string              `json:"id"`
	Info             ChatInfo            `json:"info"`
	Subscribers      []ChannelSubscriber `json:"subscribers"`
	GuestPermissions PermissionSet       `json:"guestPermissions"`
	Contents         []ContentItem       `json:"contents"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// ChannelAuthorization is the resolved role + effective permission set for
// one user.
type ChannelAuthorization struct {
	Role        ChannelRole
	Permissions PermissionSet
}

// NewChannel builds a channel owned by creatorID with the given subscribers
// seeded at the base role.
func NewChannel(id string, info ChatInfo, creatorID string, subscriberIDs []string) *Channel {
	c := &Channel{
		ID:   id,
		Info: info,
		Subscribers: []ChannelSubscriber{
			{Role: ChannelRoleOwner, UserID: creatorID, PermissionOverrides: PermissionSet{}},
		},
		GuestPermissions: merge(ChannelDefaultPermissions[ChannelRoleGuest], nil),
		CreatedAt:        time.Now().UTC(),
	}
	for _, id := range subscriberIDs {
		if id == creatorID || id == "" {
			continue
		}
		c.AddSubscriber(id)
	}
	return c
}

// Authorize resolves the role and effective permissions for userID. A user
// without a subscription record (including the empty "public" id) resolves
// to guest with this channel's own guest override map.
func (c *Channel) Authorize(userID string) ChannelAuthorization {
	s := c.GetSubscriber(userID)
	if s == nil {
		return ChannelAuthorization{
			Role:        ChannelRoleGuest,
			Permissions: merge(nil, c.GuestPermissions),
		}
	}
	return ChannelAuthorization{
		Role:        s.Role,
		Permissions: merge(ChannelDefaultPermissions[s.Role], s.PermissionOverrides),
	}
}

// HasPermission reports whether userID's effective grant for permission is
// exactly true. Unknown keys are false.
func (c *Channel) HasPermission(userID string, permission Permission) bool {
	return c.Authorize(userID).Permissions[permission]
}

// IsAdmin reports whether userID resolves to the admin role.
func (c *Channel) IsAdmin(userID string) bool {
	return c.Authorize(userID).Role == ChannelRoleAdmin
}

// IsSubscriber reports whether userID resolves to the base subscriber role.
// Owners and admins are deliberately excluded.
func (c *Channel) IsSubscriber(userID string) bool {
	return c.Authorize(userID).Role == ChannelRoleSubscriber
}

// GetSubscriber returns the subscription record for userID, or nil.
func (c *Channel) GetSubscriber(userID string) *ChannelSubscriber {
	if userID == "" {
		return nil
	}
	for i := range c.Subscribers {
		if c.Subscribers[i].UserID == userID {
			return &c.Subscribers[i]
		}
	}
	return nil
}

// AddSubscriber appends a base-role subscription record. Returns false
// without mutation when a record already exists.
func (c *Channel) AddSubscriber(userID string) bool {
	if c.GetSubscriber(userID) != nil {
		return false
	}
	c.Subscribers = append(c.Subscribers, ChannelSubscriber{
		Role:                ChannelRoleSubscriber,
		UserID:              userID,
		PermissionOverrides: PermissionSet{},
	})
	return true
}

// RemoveSubscriber removes userID's record only when their resolved role is
// the base subscriber role. Admins and the owner cannot be removed through
// this path; they must be demoted first.
func (c *Channel) RemoveSubscriber(userID string) bool {
	if !c.IsSubscriber(userID) {
		return false
	}
	kept := c.Subscribers[:0]
	for _, s := range c.Subscribers {
		if s.UserID == userID {
			continue
		}
		kept = append(kept, s)
	}
	c.Subscribers = kept
	return true
}

// SubscriberIDs returns all user ids holding a subscription record.
func (c *Channel) SubscriberIDs() []string {
	ids := make([]string, 0, len(c.Subscribers))
	for _, s := range c.Subscribers {
		ids = append(ids, s.UserID)
	}
	return ids
}

// AddMessage appends a message ledger entry.
func (c *Channel) AddMessage(messageID, sender, contentID string) {
	l := ledger(c.Contents)
	l.addMessage(messageID, sender, contentID)
	c.Contents = l
}

// AddActivity appends an activity ledger entry.
func (c *Channel) AddActivity(activityID string, item ActivityItem) {
	l := ledger(c.Contents)
	l.addActivity(activityID, item)
	c.Contents = l
}

// GetMessage returns the message ledger entry with the given id, or nil.
func (c *Channel) GetMessage(messageID string) *ContentItem {
	return ledger(c.Contents).getMessage(messageID)
}

// DeleteMessage hard-removes the message ledger entry with the given id.
func (c *Channel) DeleteMessage(messageID string) {
	l := ledger(c.Contents)
	l.deleteMessage(messageID)
	c.Contents = l
}
