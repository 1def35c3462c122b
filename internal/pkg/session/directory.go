// Package session defines the port services use to reach live realtime
// sessions. The realtime infrastructure owns the implementation; services
// receive a Directory by injection and never touch a global.
package session

// Event is the wire envelope pushed to clients: an event name with a
// method/arg payload, mirroring the service-call shape clients send.
type Event struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Arg    any    `json:"arg"`
}

// Directory maps user ids to zero or more live sessions and chat ids to
// rooms, and fans typed events out to them.
type Directory interface {
	// SendToUser pushes the event to every live session of the user.
	// Returns false when the user has no session.
	SendToUser(userID string, event Event) bool

	// SendToUsers pushes the event to every live session of each user.
	SendToUsers(userIDs []string, event Event)

	// SendToRoom pushes the event to every session joined to the room.
	SendToRoom(roomKey string, event Event)

	// JoinRoom attaches every live session of the user to the room.
	JoinRoom(userID, roomKey string)

	// LeaveRoom detaches every live session of the user from the room.
	LeaveRoom(userID, roomKey string)

	// KickRoom detaches all sessions from the room; connections stay open
	// but stop receiving room-scoped events.
	KickRoom(roomKey string)

	// IsUserOnline reports whether the user has at least one live session.
	IsUserOnline(userID string) bool
}
