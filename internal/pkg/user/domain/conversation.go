package domain

import "time"

// MessageStatus tracks the recipient's viewing state of one message copy.
// Transitions only move forward: sent -> delivered -> seen.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusSeen      MessageStatus = "seen"
)

var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusSeen:      2,
}

// AtLeast reports whether s is at or past target.
func (s MessageStatus) AtLeast(target MessageStatus) bool {
	return statusRank[s] >= statusRank[target]
}

// MessageEntry is one private-chat message copy. The same logical message
// exists once in each participant's document; the two copies may carry
// different statuses.
type MessageEntry struct {
	ID        string        `json:"id"`
	Sender    string        `json:"sender"`
	Status    MessageStatus `json:"status"`
	ContentID string        `json:"contentId"`
	SentAt    time.Time     `json:"sentAt"`
}

// SenderScope selects which entries a status sweep touches, relative to the
// document owner.
type SenderScope string

const (
	// ScopeOwn touches messages the document owner sent.
	ScopeOwn SenderScope = "own"
	// ScopeExceptOwn touches messages the document owner received.
	ScopeExceptOwn SenderScope = "except-own"
)

func (s SenderScope) matches(ownerID, senderID string) bool {
	if s == ScopeOwn {
		return senderID == ownerID
	}
	return senderID != ownerID
}

// PrivateChat is one side of a user-pair conversation, owned by a single
// user document.
type PrivateChat struct {
	PeerID   string         `json:"peerId"`
	Messages []MessageEntry `json:"messages"`
}

// Append adds a message copy to the tail.
func (pv *PrivateChat) Append(m MessageEntry) {
	pv.Messages = append(pv.Messages, m)
}

// FindMessage returns the entry with the given id, or nil.
func (pv *PrivateChat) FindMessage(messageID string) *MessageEntry {
	for i := range pv.Messages {
		if pv.Messages[i].ID == messageID {
			return &pv.Messages[i]
		}
	}
	return nil
}

// AdvanceStatus bulk-advances message copies to target, walking backward
// from refMessageID (or the tail when empty) toward the start. Only entries
// matching scope are considered; the walk stops at the first matching entry
// already at or past target, since everything earlier was advanced by a
// previous sweep. Returns the ids of entries that changed. Never regresses
// a status.
func (pv *PrivateChat) AdvanceStatus(ownerID, refMessageID string, target MessageStatus, scope SenderScope) []string {
	start := len(pv.Messages) - 1
	if refMessageID != "" {
		idx := -1
		for i := len(pv.Messages) - 1; i >= 0; i-- {
			if pv.Messages[i].ID == refMessageID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil
		}
		start = idx
	}

	var changed []string
	for i := start; i >= 0; i-- {
		m := &pv.Messages[i]
		if !scope.matches(ownerID, m.Sender) {
			continue
		}
		if m.Status.AtLeast(target) {
			break
		}
		m.Status = target
		changed = append(changed, m.ID)
	}
	return changed
}

// RemoveMessage deletes the entry with the given id. Returns false when
// absent.
func (pv *PrivateChat) RemoveMessage(messageID string) bool {
	for i := range pv.Messages {
		if pv.Messages[i].ID == messageID {
			pv.Messages = append(pv.Messages[:i], pv.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// KeepOnlyFrom drops every entry not authored by senderID. Used when a peer
// deletes the conversation "for the other person": the owner keeps only
// their own sent messages.
func (pv *PrivateChat) KeepOnlyFrom(senderID string) {
	kept := pv.Messages[:0]
	for _, m := range pv.Messages {
		if m.Sender == senderID {
			kept = append(kept, m)
		}
	}
	pv.Messages = kept
}

// History returns up to limit entries strictly before the anchor message
// (or the tail when anchor is empty). A limit below 1 yields an empty
// result; an unknown anchor yields an empty result.
func (pv *PrivateChat) History(limit int, anchorMessageID string) []MessageEntry {
	if limit < 1 {
		return []MessageEntry{}
	}
	end := len(pv.Messages)
	if anchorMessageID != "" {
		end = -1
		for i := range pv.Messages {
			if pv.Messages[i].ID == anchorMessageID {
				end = i
				break
			}
		}
		if end == -1 {
			return []MessageEntry{}
		}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]MessageEntry, end-start)
	copy(out, pv.Messages[start:end])
	return out
}
