package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hivedesk/internal/middleware"
	"hivedesk/internal/models"
	"hivedesk/internal/utils"

	"github.com/google/uuid"
)

// Workspace CRUD goes straight to the store; unlike the inbox there is no
// realtime coupling and no cross-profile access, so no actor sits in between.

// HandleNotes handles note create/update, list and delete for the caller
func (s *Server) HandleNotes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		caller, ok := s.identity(r)
		if !ok {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut:
			var req struct {
				ID    string `json:"id,omitempty"`
				Title string `json:"title"`
				Body  string `json:"body"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, utils.NewValidationError("invalid request body"))
				return
			}
			if req.Title == "" {
				s.writeError(w, utils.NewValidationError("title is required"))
				return
			}

			now := time.Now()
			note := &models.Note{
				ID:        uuid.New(),
				OwnerID:   caller.ProfileID,
				Title:     req.Title,
				Body:      req.Body,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if req.ID != "" {
				id, err := uuid.Parse(req.ID)
				if err != nil {
					s.writeError(w, utils.NewValidationError("invalid note id"))
					return
				}
				note.ID = id
			}

			if err := s.Store.SaveNote(r.Context(), note); err != nil {
				s.writeError(w, utils.NewAppError(utils.ErrDatabase, "failed to save note", err))
				return
			}
			s.writeJSON(w, http.StatusOK, note)

		case http.MethodGet:
			notes, err := s.Store.GetNotesByOwner(r.Context(), caller.ProfileID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, notes)

		case http.MethodDelete:
			s.deleteOwned(w, r, caller, s.Store.DeleteNote)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleEvents handles calendar event create/update, list and delete
func (s *Server) HandleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		caller, ok := s.identity(r)
		if !ok {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut:
			var req struct {
				ID       string    `json:"id,omitempty"`
				Title    string    `json:"title"`
				StartsAt time.Time `json:"startsAt"`
				EndsAt   time.Time `json:"endsAt"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, utils.NewValidationError("invalid request body"))
				return
			}
			if req.Title == "" {
				s.writeError(w, utils.NewValidationError("title is required"))
				return
			}
			if !req.EndsAt.After(req.StartsAt) {
				s.writeError(w, utils.NewValidationError("endsAt must be after startsAt"))
				return
			}

			event := &models.Event{
				ID:        uuid.New(),
				OwnerID:   caller.ProfileID,
				Title:     req.Title,
				StartsAt:  req.StartsAt,
				EndsAt:    req.EndsAt,
				CreatedAt: time.Now(),
			}
			if req.ID != "" {
				id, err := uuid.Parse(req.ID)
				if err != nil {
					s.writeError(w, utils.NewValidationError("invalid event id"))
					return
				}
				event.ID = id
			}

			if err := s.Store.SaveEvent(r.Context(), event); err != nil {
				s.writeError(w, utils.NewAppError(utils.ErrDatabase, "failed to save event", err))
				return
			}
			s.writeJSON(w, http.StatusOK, event)

		case http.MethodGet:
			events, err := s.Store.GetEventsByOwner(r.Context(), caller.ProfileID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, events)

		case http.MethodDelete:
			s.deleteOwned(w, r, caller, s.Store.DeleteEvent)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleTasks handles task create/update, list, completion toggling and delete
func (s *Server) HandleTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		caller, ok := s.identity(r)
		if !ok {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut:
			var req struct {
				ID    string     `json:"id,omitempty"`
				Title string     `json:"title"`
				Done  bool       `json:"done"`
				DueAt *time.Time `json:"dueAt,omitempty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, utils.NewValidationError("invalid request body"))
				return
			}
			if req.Title == "" {
				s.writeError(w, utils.NewValidationError("title is required"))
				return
			}

			task := &models.Task{
				ID:        uuid.New(),
				OwnerID:   caller.ProfileID,
				Title:     req.Title,
				Done:      req.Done,
				DueAt:     req.DueAt,
				CreatedAt: time.Now(),
			}
			if req.ID != "" {
				id, err := uuid.Parse(req.ID)
				if err != nil {
					s.writeError(w, utils.NewValidationError("invalid task id"))
					return
				}
				task.ID = id
			}

			if err := s.Store.SaveTask(r.Context(), task); err != nil {
				s.writeError(w, utils.NewAppError(utils.ErrDatabase, "failed to save task", err))
				return
			}
			s.writeJSON(w, http.StatusOK, task)

		case http.MethodGet:
			tasks, err := s.Store.GetTasksByOwner(r.Context(), caller.ProfileID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, tasks)

		case http.MethodPatch:
			var req struct {
				ID   string `json:"id"`
				Done bool   `json:"done"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, utils.NewValidationError("invalid request body"))
				return
			}
			id, err := uuid.Parse(req.ID)
			if err != nil {
				s.writeError(w, utils.NewValidationError("invalid task id"))
				return
			}
			if err := s.Store.SetTaskDone(r.Context(), id, caller.ProfileID, req.Done); err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})

		case http.MethodDelete:
			s.deleteOwned(w, r, caller, s.Store.DeleteTask)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type ownedDeleteFunc func(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error

// deleteOwned parses the id query parameter and runs an owner-scoped delete.
func (s *Server) deleteOwned(w http.ResponseWriter, r *http.Request, caller *middleware.Identity, del ownedDeleteFunc) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, utils.NewValidationError("invalid id"))
		return
	}
	if err := del(r.Context(), id, caller.ProfileID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
