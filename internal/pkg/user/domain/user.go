package domain

import "time"

// Contact is a saved reference to another user with an optional local name.
type Contact struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

// ChatRefType discriminates folder chat references.
type ChatRefType string

const (
	ChatRefUser    ChatRefType = "user"
	ChatRefGroup   ChatRefType = "group"
	ChatRefChannel ChatRefType = "channel"
)

// ChatRef points at a conversation of any kind. Purely organizational.
type ChatRef struct {
	Type ChatRefType `json:"type"`
	ID   string      `json:"id"`
}

// Folder is a user-owned named grouping of chat references.
type Folder struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Chats []ChatRef `json:"chats"`
}

// User is the full user document: account fields plus the user's side of
// every private conversation and their chat/folder bookkeeping.
type User struct {
	ID             string        `json:"id"`
	Username       string        `json:"username"`
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	AvatarURL      string        `json:"avatarUrl"`
	HashedPassword string        `json:"-"`
	Contacts       []Contact     `json:"contacts"`
	GroupChats     []string      `json:"groupChats"`
	Channels       []string      `json:"channels"`
	PrivateChats   []PrivateChat `json:"privateChats"`
	Folders        []Folder      `json:"folders"`
	LastSeen       time.Time     `json:"lastSeen"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// PublicProfile is the subset of a user document visible to anyone.
type PublicProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// PublicProfile projects the public fields.
func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

// PrivateChatWith returns the conversation side with peerID, or nil.
func (u *User) PrivateChatWith(peerID string) *PrivateChat {
	for i := range u.PrivateChats {
		if u.PrivateChats[i].PeerID == peerID {
			return &u.PrivateChats[i]
		}
	}
	return nil
}

// EnsurePrivateChatWith returns the conversation side with peerID, creating
// an empty one lazily.
func (u *User) EnsurePrivateChatWith(peerID string) *PrivateChat {
	if pv := u.PrivateChatWith(peerID); pv != nil {
		return pv
	}
	u.PrivateChats = append(u.PrivateChats, PrivateChat{PeerID: peerID})
	return &u.PrivateChats[len(u.PrivateChats)-1]
}

// RemovePrivateChatWith drops the whole conversation side with peerID.
// Returns false when absent.
func (u *User) RemovePrivateChatWith(peerID string) bool {
	for i := range u.PrivateChats {
		if u.PrivateChats[i].PeerID == peerID {
			u.PrivateChats = append(u.PrivateChats[:i], u.PrivateChats[i+1:]...)
			return true
		}
	}
	return false
}

// ContactWith returns the contact entry for userID, or nil.
func (u *User) ContactWith(userID string) *Contact {
	for i := range u.Contacts {
		if u.Contacts[i].UserID == userID {
			return &u.Contacts[i]
		}
	}
	return nil
}

// AddContact appends a contact. Returns false when one already exists.
func (u *User) AddContact(name, userID string) bool {
	if u.ContactWith(userID) != nil {
		return false
	}
	u.Contacts = append(u.Contacts, Contact{Name: name, UserID: userID})
	return true
}

// RemoveContact drops the contact entry for userID. Returns false when
// absent.
func (u *User) RemoveContact(userID string) bool {
	for i := range u.Contacts {
		if u.Contacts[i].UserID == userID {
			u.Contacts = append(u.Contacts[:i], u.Contacts[i+1:]...)
			return true
		}
	}
	return false
}

// AddGroupChat records membership in a group chat, once.
func (u *User) AddGroupChat(groupChatID string) {
	for _, id := range u.GroupChats {
		if id == groupChatID {
			return
		}
	}
	u.GroupChats = append(u.GroupChats, groupChatID)
}

// AddChannel records a channel subscription, once.
func (u *User) AddChannel(channelID string) {
	for _, id := range u.Channels {
		if id == channelID {
			return
		}
	}
	u.Channels = append(u.Channels, channelID)
}

// RemoveGroupChat drops a group chat reference.
func (u *User) RemoveGroupChat(groupChatID string) {
	for i, id := range u.GroupChats {
		if id == groupChatID {
			u.GroupChats = append(u.GroupChats[:i], u.GroupChats[i+1:]...)
			return
		}
	}
}

// RemoveChannel drops a channel reference.
func (u *User) RemoveChannel(channelID string) {
	for i, id := range u.Channels {
		if id == channelID {
			u.Channels = append(u.Channels[:i], u.Channels[i+1:]...)
			return
		}
	}
}

// CreateFolder appends a new folder.
func (u *User) CreateFolder(id, name string, chats []ChatRef) {
	if chats == nil {
		chats = []ChatRef{}
	}
	u.Folders = append(u.Folders, Folder{ID: id, Name: name, Chats: chats})
}

// FolderByID returns the folder with the given id, or nil.
func (u *User) FolderByID(folderID string) *Folder {
	for i := range u.Folders {
		if u.Folders[i].ID == folderID {
			return &u.Folders[i]
		}
	}
	return nil
}

// RemoveFolder drops the folder with the given id. Returns false when
// absent.
func (u *User) RemoveFolder(folderID string) bool {
	for i := range u.Folders {
		if u.Folders[i].ID == folderID {
			u.Folders = append(u.Folders[:i], u.Folders[i+1:]...)
			return true
		}
	}
	return false
}
