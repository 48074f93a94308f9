package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hivedesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesCRUD(t *testing.T) {
	s, _ := newTestServer(t)
	alice := identityFor("alice@x.com")

	// Create
	req := authedRequest(http.MethodPost, "/notes", map[string]string{
		"title": "Meeting notes",
		"body":  "agenda",
	}, alice)
	rr := httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var note models.Note
	decodeBody(t, rr, &note)
	assert.Equal(t, alice.ProfileID, note.OwnerID)

	// Update in place
	req = authedRequest(http.MethodPut, "/notes", map[string]string{
		"id":    note.ID.String(),
		"title": "Meeting notes",
		"body":  "revised agenda",
	}, alice)
	rr = httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// List shows the single note
	req = authedRequest(http.MethodGet, "/notes", nil, alice)
	rr = httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	var notes []*models.Note
	decodeBody(t, rr, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, "revised agenda", notes[0].Body)

	// Delete
	req = authedRequest(http.MethodDelete, "/notes?id="+note.ID.String(), nil, alice)
	rr = httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestNotesAreOwnerScoped(t *testing.T) {
	s, _ := newTestServer(t)
	alice := identityFor("alice@x.com")
	bob := identityFor("bob@x.com")

	req := authedRequest(http.MethodPost, "/notes", map[string]string{"title": "private"}, alice)
	rr := httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	var note models.Note
	decodeBody(t, rr, &note)

	// Another profile cannot see or delete it.
	req = authedRequest(http.MethodGet, "/notes", nil, bob)
	rr = httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	var notes []*models.Note
	decodeBody(t, rr, &notes)
	assert.Empty(t, notes)

	req = authedRequest(http.MethodDelete, "/notes?id="+note.ID.String(), nil, bob)
	rr = httptest.NewRecorder()
	s.HandleNotes()(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventsRejectInvertedInterval(t *testing.T) {
	s, _ := newTestServer(t)
	alice := identityFor("alice@x.com")

	now := time.Now()
	req := authedRequest(http.MethodPost, "/events", map[string]interface{}{
		"title":    "Backwards",
		"startsAt": now,
		"endsAt":   now.Add(-time.Hour),
	}, alice)
	rr := httptest.NewRecorder()
	s.HandleEvents()(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEventsCreateAndList(t *testing.T) {
	s, _ := newTestServer(t)
	alice := identityFor("alice@x.com")

	now := time.Now()
	req := authedRequest(http.MethodPost, "/events", map[string]interface{}{
		"title":    "Standup",
		"startsAt": now,
		"endsAt":   now.Add(30 * time.Minute),
	}, alice)
	rr := httptest.NewRecorder()
	s.HandleEvents()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	req = authedRequest(http.MethodGet, "/events", nil, alice)
	rr = httptest.NewRecorder()
	s.HandleEvents()(rr, req)
	var events []*models.Event
	decodeBody(t, rr, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup", events[0].Title)
}

func TestTasksToggleDone(t *testing.T) {
	s, _ := newTestServer(t)
	alice := identityFor("alice@x.com")

	req := authedRequest(http.MethodPost, "/tasks", map[string]interface{}{
		"title": "Review PR",
	}, alice)
	rr := httptest.NewRecorder()
	s.HandleTasks()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var task models.Task
	decodeBody(t, rr, &task)
	assert.False(t, task.Done)

	req = authedRequest(http.MethodPatch, "/tasks", map[string]interface{}{
		"id":   task.ID.String(),
		"done": true,
	}, alice)
	rr = httptest.NewRecorder()
	s.HandleTasks()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = authedRequest(http.MethodGet, "/tasks", nil, alice)
	rr = httptest.NewRecorder()
	s.HandleTasks()(rr, req)
	var tasks []*models.Task
	decodeBody(t, rr, &tasks)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Done)
}

func TestTasksPatchOtherOwnerFails(t *testing.T) {
	s, _ := newTestServer(t)
	alice := identityFor("alice@x.com")
	bob := identityFor("bob@x.com")

	req := authedRequest(http.MethodPost, "/tasks", map[string]interface{}{"title": "mine"}, alice)
	rr := httptest.NewRecorder()
	s.HandleTasks()(rr, req)
	var task models.Task
	decodeBody(t, rr, &task)

	req = authedRequest(http.MethodPatch, "/tasks", map[string]interface{}{
		"id":   task.ID.String(),
		"done": true,
	}, bob)
	rr = httptest.NewRecorder()
	s.HandleTasks()(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
