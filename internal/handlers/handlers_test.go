package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"hivedesk/internal/database"
	"hivedesk/internal/engine"
	"hivedesk/internal/middleware"
	"hivedesk/internal/models"
	"hivedesk/internal/storage"
	"hivedesk/internal/utils"
	"hivedesk/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory database.Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*models.Message
	profiles map[uuid.UUID]*models.Profile
	activity map[uuid.UUID][]*models.ActivityEntry
	notes    map[uuid.UUID]*models.Note
	events   map[uuid.UUID]*models.Event
	tasks    map[uuid.UUID]*models.Task
}

var _ database.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		messages: make(map[uuid.UUID]*models.Message),
		profiles: make(map[uuid.UUID]*models.Profile),
		activity: make(map[uuid.UUID][]*models.ActivityEntry),
		notes:    make(map[uuid.UUID]*models.Note),
		events:   make(map[uuid.UUID]*models.Event),
		tasks:    make(map[uuid.UUID]*models.Task),
	}
}

func (m *memStore) Close(ctx context.Context) error { return nil }

func (m *memStore) SaveMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *msg
	m.messages[msg.ID] = &copied
	return nil
}

func (m *memStore) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, nil
	}
	copied := *msg
	return &copied, nil
}

func (m *memStore) GetAllMessages(ctx context.Context) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		copied := *msg
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return utils.NewNotFoundError("message")
	}
	msg.IsRead = true
	return nil
}

func (m *memStore) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[id]; !ok {
		return utils.NewNotFoundError("message")
	}
	delete(m.messages, id)
	return nil
}

func (m *memStore) SaveProfile(ctx context.Context, profile *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *profile
	m.profiles[profile.ID] = &copied
	return nil
}

func (m *memStore) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("profile")
}

func (m *memStore) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, utils.NewNotFoundError("profile")
	}
	copied := *p
	return &copied, nil
}

func (m *memStore) UpdateProfilePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return utils.NewNotFoundError("profile")
	}
	p.HashedPassword = hashedPassword
	return nil
}

func (m *memStore) UpdateProfileAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return utils.NewNotFoundError("profile")
	}
	p.AvatarURL = avatarURL
	return nil
}

func (m *memStore) SaveActivity(ctx context.Context, entry *models.ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.activity[entry.ProfileID] = append(m.activity[entry.ProfileID], &copied)
	return nil
}

func (m *memStore) GetActivityByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]*models.ActivityEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.activity[profileID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]*models.ActivityEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *memStore) SaveNote(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *note
	m.notes[note.ID] = &copied
	return nil
}

func (m *memStore) GetNotesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Note
	for _, n := range m.notes {
		if n.OwnerID == ownerID {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) DeleteNote(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.OwnerID != ownerID {
		return utils.NewNotFoundError("note")
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) SaveEvent(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *event
	m.events[event.ID] = &copied
	return nil
}

func (m *memStore) GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Event
	for _, e := range m.events {
		if e.OwnerID == ownerID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) DeleteEvent(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok || e.OwnerID != ownerID {
		return utils.NewNotFoundError("event")
	}
	delete(m.events, id)
	return nil
}

func (m *memStore) SaveTask(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *memStore) GetTasksByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Task
	for _, task := range m.tasks {
		if task.OwnerID == ownerID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memStore) SetTaskDone(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, done bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return utils.NewNotFoundError("task")
	}
	task.Done = done
	return nil
}

func (m *memStore) DeleteTask(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return utils.NewNotFoundError("task")
	}
	delete(m.tasks, id)
	return nil
}

// newTestServer wires a Server with an in-memory store and a live actor system.
func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	store := newMemStore()
	hub := websocket.NewHub()
	go hub.Run()

	eng := engine.NewEngine(system, metrics, store, store, hub)
	auth := middleware.NewAuthManager("test-secret", time.Hour)
	objects := storage.NewMemoryStore("http://localhost:8080/objects")

	return NewServer(system, eng, metrics, store, hub, auth, objects), store
}

// authedRequest builds a request carrying a caller identity, the way the JWT
// middleware would after validating a token.
func authedRequest(method, target string, body interface{}, identity *middleware.Identity) *http.Request {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if identity != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), identity))
	}
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}
