package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pouyadh/chat-app-server/internal/config"
	cacheport "github.com/pouyadh/chat-app-server/internal/infrastructure/cache/port"
	queueport "github.com/pouyadh/chat-app-server/internal/infrastructure/queue/port"
	"github.com/pouyadh/chat-app-server/internal/pkg/auth"
	"github.com/pouyadh/chat-app-server/internal/pkg/content"
	"github.com/pouyadh/chat-app-server/internal/pkg/session"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
	userport "github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testIssuer() *auth.TokenIssuer {
	var cfg config.Config
	cfg.Token.Access = config.TokenConfig{Secret: "a-secret", ExpiresIn: time.Hour}
	cfg.Token.Refresh = config.TokenConfig{Secret: "r-secret", ExpiresIn: time.Hour}
	cfg.Token.ResetPassword = config.TokenConfig{Secret: "p-secret", ExpiresIn: time.Hour}
	return auth.NewTokenIssuer(cfg)
}

func copyUser(u *domain.User) *domain.User {
	raw, err := json.Marshal(u)
	if err != nil {
		panic(err)
	}
	cp := &domain.User{}
	if err := json.Unmarshal(raw, cp); err != nil {
		panic(err)
	}
	cp.HashedPassword = u.HashedPassword
	return cp
}

// memUserRepo is an in-process user store. failSaveFor simulates a failed
// write for specific user ids.
type memUserRepo struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	failSaveFor map[string]bool
}

func newMemUserRepo(users ...*domain.User) *memUserRepo {
	r := &memUserRepo{
		users:       make(map[string]*domain.User),
		failSaveFor: make(map[string]bool),
	}
	for _, u := range users {
		r.users[u.ID] = copyUser(u)
	}
	return r
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, userport.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, userport.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, userport.ErrNotFound
}

func (r *memUserRepo) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSaveFor[u.ID] {
		return errors.New("simulated write failure")
	}
	r.users[u.ID] = copyUser(u)
	return nil
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

type fakeDirectory struct {
	mu     sync.Mutex
	online map[string]bool
	toUser map[string][]session.Event
	toRoom map[string][]session.Event
}

func newFakeDirectory(onlineUsers ...string) *fakeDirectory {
	d := &fakeDirectory{
		online: make(map[string]bool),
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

func (d *fakeDirectory) JoinRoom(string, string) {}
func (d *fakeDirectory) LeaveRoom(string, string) {}
func (d *fakeDirectory) KickRoom(string)          {}

func (d *fakeDirectory) IsUserOnline(userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online[userID]
}

func (d *fakeDirectory) userEvents(userID string) []session.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]session.Event(nil), d.toUser[userID]...)
}

func (d *fakeDirectory) lastUserEvent(userID string) *session.Event {
	events := d.userEvents(userID)
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []queueport.Task
}

var _ queueport.Client = (*fakeQueue)(nil)

func (q *fakeQueue) Enqueue(_ context.Context, t queueport.Task, _ ...queueport.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return "task-1", nil
}

func (q *fakeQueue) Close() error { return nil }

type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache { return &memCache{values: make(map[string]string)} }

var _ cacheport.Cache = (*memCache)(nil)

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			n++
		}
	}
	return n, nil
}

func (m *memCache) Ping(context.Context) error { return nil }
func (m *memCache) Close() error               { return nil }

// fixture wires a UserService against in-memory collaborators.
type fixture struct {
	svc      *UserService
	users    *memUserRepo
	contents *memContentRepo
	dir      *fakeDirectory
	queue    *fakeQueue
}

func newFixture(users ...*domain.User) *fixture {
	fx := &fixture{
		users:    newMemUserRepo(users...),
		contents: newMemContentRepo(),
		dir:      newFakeDirectory(),
		queue:    &fakeQueue{},
	}
	issuer := testIssuer()
	fx.svc = NewUserService(
		fx.users,
		fx.contents,
		fx.dir,
		issuer,
		auth.NewTokenStore(newMemCache()),
		fx.queue,
		testLogger(),
		"http://client.test",
	)
	return fx
}
