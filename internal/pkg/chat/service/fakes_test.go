package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/pkg/chat/domain"
	chatport "github.com/pouyadh/chat-app-server/internal/pkg/chat/persistence/repository/port"
	"github.com/pouyadh/chat-app-server/internal/pkg/content"
	"github.com/pouyadh/chat-app-server/internal/pkg/session"
	userdomain "github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
	userport "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

// deepCopy isolates stored fake state from returned aggregates.
func deepCopy[T any](src *T) *T {
	raw, err := json.Marshal(src)
	if err != nil {
		panic(err)
	}
	dst := new(T)
	if err := json.Unmarshal(raw, dst); err != nil {
		panic(err)
	}
	return dst
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type memGroupChatRepo struct {
	mu    sync.Mutex
	chats map[string]*domain.GroupChat
}

func newMemGroupChatRepo() *memGroupChatRepo {
	return &memGroupChatRepo{chats: make(map[string]*domain.GroupChat)}
}

func (r *memGroupChatRepo) GetByID(_ context.Context, id string) (*domain.GroupChat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	gc, ok := r.chats[id]
	if !ok {
		return nil, chatport.ErrNotFound
	}
	return deepCopy(gc), nil
}

func (r *memGroupChatRepo) Save(_ context.Context, gc *domain.GroupChat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[gc.ID] = deepCopy(gc)
	return nil
}

func (r *memGroupChatRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[id]; !ok {
		return chatport.ErrNotFound
	}
	delete(r.chats, id)
	return nil
}

type memChannelRepo struct {
	mu       sync.Mutex
	channels map[string]*domain.Channel
}

func newMemChannelRepo() *memChannelRepo {
	return &memChannelRepo{channels: make(map[string]*domain.Channel)}
}

func (r *memChannelRepo) GetByID(_ context.Context, id string) (*domain.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, chatport.ErrNotFound
	}
	return deepCopy(ch), nil
}

func (r *memChannelRepo) Save(_ context.Context, ch *domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[ch.ID] = deepCopy(ch)
	return nil
}

func (r *memChannelRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[id]; !ok {
		return chatport.ErrNotFound
	}
	delete(r.channels, id)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*userdomain.User
}

func newMemUserRepo(users ...*userdomain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*userdomain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, userport.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []string) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userdomain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, userport.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, userport.ErrNotFound
}

func (r *memUserRepo) Save(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = copyUser(u)
	return nil
}

// copyUser deep-copies a user, preserving the hash the public JSON tags
// hide.
func copyUser(u *userdomain.User) *userdomain.User {
	cp := deepCopy(u)
	cp.HashedPassword = u.HashedPassword
	return cp
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return userport.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memContentRepo struct {
	mu       sync.Mutex
	contents map[string]content.Content
}

func newMemContentRepo() *memContentRepo {
	return &memContentRepo{contents: make(map[string]content.Content)}
}

func (r *memContentRepo) GetByID(_ context.Context, id string) (*content.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contents[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &c, nil
}

func (r *memContentRepo) GetByIDs(_ context.Context, ids []string) ([]content.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []content.Content
	for _, id := range ids {
		if c, ok := r.contents[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memContentRepo) Save(_ context.Context, c *content.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contents[c.ID] = *c
	return nil
}

func (r *memContentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contents, id)
	return nil
}

// fakeDirectory records pushes and room membership instead of delivering.
type fakeDirectory struct {
	mu     sync.Mutex
	online map[string]bool
	rooms  map[string][]string // roomKey -> joined userIDs
	kicked []string
	toUser map[string][]session.Event
	toRoom map[string][]session.Event
}

func newFakeDirectory(onlineUsers ...string) *fakeDirectory {
	d := &fakeDirectory{
		online: make(map[string]bool),
		rooms:  make(map[string][]string),
		toUser: make(map[string][]session.Event),
		toRoom: make(map[string][]session.Event),
	}
	for _, id := range onlineUsers {
		d.online[id] = true
	}
	return d
}

var _ session.Directory = (*fakeDirectory)(nil)

func (d *fakeDirectory) SendToUser(userID string, event session.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toUser[userID] = append(d.toUser[userID], event)
	return d.online[userID]
}

func (d *fakeDirectory) SendToUsers(userIDs []string, event session.Event) {
	for _, id := range userIDs {
		d.SendToUser(id, event)
	}
}

func (d *fakeDirectory) SendToRoom(roomKey string, event session.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toRoom[roomKey] = append(d.toRoom[roomKey], event)
}

func (d *fakeDirectory) JoinRoom(userID, roomKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[roomKey] = append(d.rooms[roomKey], userID)
}

func (d *fakeDirectory) LeaveRoom(userID, roomKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.rooms[roomKey][:0]
	for _, id := range d.rooms[roomKey] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	d.rooms[roomKey] = kept
}

func (d *fakeDirectory) KickRoom(roomKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kicked = append(d.kicked, roomKey)
	delete(d.rooms, roomKey)
}

func (d *fakeDirectory) IsUserOnline(userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online[userID]
}

func (d *fakeDirectory) roomEvents(roomKey string) []session.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]session.Event(nil), d.toRoom[roomKey]...)
}

func (d *fakeDirectory) lastRoomEvent(roomKey string) *session.Event {
	events := d.roomEvents(roomKey)
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}
