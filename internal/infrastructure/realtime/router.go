package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/pkg/session"
)

// Router tracks websocket sessions and logical rooms (chat ids). A user may
// hold any number of sessions; pushes to a user hit all of them. Router
// implements session.Directory for the service layer.
type Router struct {
	log *logrus.Logger

	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]map[string]*Connection // userID -> sessionID -> connection
	rooms        map[string]map[string]*Connection // roomKey -> sessionID -> connection
	sessionRooms map[string]map[string]struct{}    // sessionID -> set of roomKeys
}

var _ session.Directory = (*Router)(nil)

// NewRouter constructs an initialized Router.
func NewRouter(log *logrus.Logger) *Router {
	return &Router{
		log:          log,
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]map[string]*Connection),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection and starts its write loop.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	byUser := r.userSessions[conn.UserID]
	if byUser == nil {
		byUser = make(map[string]*Connection)
		r.userSessions[conn.UserID] = byUser
	}
	byUser[conn.ID] = conn
	r.sessionRooms[conn.ID] = make(map[string]struct{})
	r.mu.Unlock()

	conn.Start()
}

// Detach removes a connection if it is still tracked.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// JoinRoom attaches every live session of the user to the room.
func (r *Router) JoinRoom(userID, roomKey string) {
	r.mu.Lock()
	for _, conn := range r.userSessions[userID] {
		r.joinLocked(roomKey, conn)
	}
	r.mu.Unlock()
}

// JoinConn attaches a single session to the room.
func (r *Router) JoinConn(roomKey string, conn *Connection) {
	r.mu.Lock()
	if _, ok := r.sessions[conn.ID]; ok {
		r.joinLocked(roomKey, conn)
	}
	r.mu.Unlock()
}

// LeaveRoom detaches every live session of the user from the room.
func (r *Router) LeaveRoom(userID, roomKey string) {
	r.mu.Lock()
	for _, conn := range r.userSessions[userID] {
		r.leaveLocked(roomKey, conn.ID)
	}
	r.mu.Unlock()
}

// KickRoom detaches all sessions from the room without closing them.
func (r *Router) KickRoom(roomKey string) {
	r.mu.Lock()
	for sessionID := range r.rooms[roomKey] {
		r.leaveLocked(roomKey, sessionID)
	}
	r.mu.Unlock()
}

// IsUserOnline reports whether the user has at least one live session.
func (r *Router) IsUserOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.userSessions[userID]) > 0
}

// SendToUser pushes the event to every live session of the user. Returns
// false when the user has no session.
func (r *Router) SendToUser(userID string, event session.Event) bool {
	payload, err := encodeEvent(event)
	if err != nil {
		r.log.WithError(err).Error("realtime: encode event")
		return false
	}

	r.mu.RLock()
	conns := collect(r.userSessions[userID])
	r.mu.RUnlock()

	if len(conns) == 0 {
		return false
	}
	for _, conn := range conns {
		_ = conn.Send(payload)
	}
	return true
}

// SendToUsers pushes the event to every live session of each user.
func (r *Router) SendToUsers(userIDs []string, event session.Event) {
	for _, id := range userIDs {
		r.SendToUser(id, event)
	}
}

// SendToRoom pushes the event to every session joined to the room.
func (r *Router) SendToRoom(roomKey string, event session.Event) {
	payload, err := encodeEvent(event)
	if err != nil {
		r.log.WithError(err).Error("realtime: encode event")
		return
	}

	r.mu.RLock()
	conns := collect(r.rooms[roomKey])
	r.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Send(payload)
	}
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	conns := collect(r.sessions)
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]map[string]*Connection)
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) joinLocked(roomKey string, conn *Connection) {
	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomKey] = room
	}
	room[conn.ID] = conn

	memberships := r.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.ID] = memberships
	}
	memberships[roomKey] = struct{}{}
}

func (r *Router) detachLocked(sessionID string) {
	conn, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if byUser, ok := r.userSessions[conn.UserID]; ok {
		delete(byUser, sessionID)
		if len(byUser) == 0 {
			delete(r.userSessions, conn.UserID)
		}
	}

	for roomKey := range r.sessionRooms[sessionID] {
		r.leaveLocked(roomKey, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(roomKey string, sessionID string) {
	room := r.rooms[roomKey]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomKey)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, roomKey)
	}
}

func encodeEvent(event session.Event) ([]byte, error) {
	return json.Marshal(struct {
		Event  string `json:"event"`
		Method string `json:"method"`
		Arg    any    `json:"arg"`
	}{Event: event.Name, Method: event.Method, Arg: event.Arg})
}

func collect(m map[string]*Connection) []*Connection {
	out := make([]*Connection, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}
