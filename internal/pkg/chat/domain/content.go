package domain

import "encoding/json"

// ContentItemType discriminates ledger entries.
type ContentItemType string

const (
	ContentItemMessage  ContentItemType = "message"
	ContentItemActivity ContentItemType = "activity"
)

// ActivityType names the recorded chat activities.
type ActivityType string

const (
	ActivityCreateGroupChat  ActivityType = "createGroupChat"
	ActivityCreateChannel    ActivityType = "createChannel"
	ActivityAddSubscriber    ActivityType = "addSubscriber"
	ActivityRemoveSubscriber ActivityType = "removeSubscriber"
)

// MessageItem is the message variant of a ledger entry. ContentID points at
// the shared Content document; HiddenFor lists users that soft-deleted it
// for themselves.
type MessageItem struct {
	Sender    string   `json:"sender"`
	ContentID string   `json:"contentId"`
	HiddenFor []string `json:"hiddenFor"`
}

// ActivityItem is the log-only variant of a ledger entry. Activities are
// never removed by message-delete operations.
type ActivityItem struct {
	Committer string          `json:"committer"`
	Type      ActivityType    `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ContentItem is a tagged union: exactly one of Message/Activity is set,
// matching Type.
type ContentItem struct {
	ID       string          `json:"id"`
	Type     ContentItemType `json:"type"`
	Message  *MessageItem    `json:"message,omitempty"`
	Activity *ActivityItem   `json:"activity,omitempty"`
}

// HiddenForUser reports whether userID soft-deleted this message item.
func (m *MessageItem) HiddenForUser(userID string) bool {
	for _, id := range m.HiddenFor {
		if id == userID {
			return true
		}
	}
	return false
}

// HideFor appends userID to the hidden set, once.
func (m *MessageItem) HideFor(userID string) {
	if !m.HiddenForUser(userID) {
		m.HiddenFor = append(m.HiddenFor, userID)
	}
}

// ledger is the ordered, append-mostly content list shared by group chats
// and channels.
type ledger []ContentItem

func (l *ledger) addMessage(id, sender, contentID string) {
	*l = append(*l, ContentItem{
		ID:   id,
		Type: ContentItemMessage,
		Message: &MessageItem{
			Sender:    sender,
			ContentID: contentID,
			HiddenFor: []string{},
		},
	})
}

func (l *ledger) addActivity(id string, item ActivityItem) {
	*l = append(*l, ContentItem{
		ID:       id,
		Type:     ContentItemActivity,
		Activity: &item,
	})
}

// getMessage returns the message item with the given ledger id, or nil.
// Activity entries are invisible to message lookups.
func (l ledger) getMessage(messageID string) *ContentItem {
	for i := range l {
		if l[i].Type == ContentItemMessage && l[i].ID == messageID {
			return &l[i]
		}
	}
	return nil
}

// deleteMessage hard-removes the message item with the given id. Activity
// entries survive unconditionally.
func (l *ledger) deleteMessage(messageID string) {
	kept := (*l)[:0]
	for _, item := range *l {
		if item.Type == ContentItemMessage && item.ID == messageID {
			continue
		}
		kept = append(kept, item)
	}
	*l = kept
}
