package handlers

import (
	"encoding/json"
	"net/http"

	"hivedesk/internal/engine/actors"
	"hivedesk/internal/utils"

	"github.com/google/uuid"
)

// SendMessageRequest represents a request to send a new inbox message
type SendMessageRequest struct {
	ReceiverEmail string `json:"receiverEmail"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ReplyMessageRequest represents a request to reply to an existing message
type ReplyMessageRequest struct {
	ParentID      string `json:"parentId"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// HandleMessages handles sending, listing and deleting inbox messages
func (s *Server) HandleMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		caller, ok := s.identity(r)
		if !ok || caller.Email == "" {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		switch r.Method {
		case http.MethodPost:
			var req SendMessageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.writeError(w, utils.NewValidationError("invalid request body"))
				return
			}

			// Structural validation happens before anything is persisted.
			if !validEmail(req.ReceiverEmail) {
				s.writeError(w, utils.NewValidationError("receiverEmail must be a valid email address"))
				return
			}
			if req.Subject == "" || req.Body == "" {
				s.writeError(w, utils.NewValidationError("subject and body are required"))
				return
			}

			result, err := s.requestInbox(&actors.SendMessageMsg{
				SenderEmail:   caller.Email,
				ReceiverEmail: req.ReceiverEmail,
				Subject:       req.Subject,
				Body:          req.Body,
				CorrelationID: req.CorrelationID,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, result)

		case http.MethodGet:
			result, err := s.requestInbox(&actors.ListInboxMsg{ReceiverEmail: caller.Email})
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, result)

		case http.MethodDelete:
			messageID, err := uuid.Parse(r.URL.Query().Get("id"))
			if err != nil {
				s.writeError(w, utils.NewValidationError("invalid message id"))
				return
			}

			result, err := s.requestInbox(&actors.DeleteMessageMsg{
				MessageID:   messageID,
				CallerEmail: caller.Email,
			})
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": result.(bool)})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleReply creates a reply threaded under an existing message. The
// receiver is derived server-side from the parent's sender.
func (s *Server) HandleReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := s.identity(r)
		if !ok || caller.Email == "" {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		var req ReplyMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, utils.NewValidationError("invalid request body"))
			return
		}

		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			s.writeError(w, utils.NewValidationError("invalid parentId"))
			return
		}
		if req.Subject == "" || req.Body == "" {
			s.writeError(w, utils.NewValidationError("subject and body are required"))
			return
		}

		result, err := s.requestInbox(&actors.ReplyMessageMsg{
			SenderEmail:   caller.Email,
			ParentID:      parentID,
			Subject:       req.Subject,
			Body:          req.Body,
			CorrelationID: req.CorrelationID,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// HandleMessage fetches a single message by id, including its parent when the
// message is a reply. An unknown id yields a JSON null, not an error.
func (s *Server) HandleMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		messageID, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			s.writeError(w, utils.NewValidationError("invalid message id"))
			return
		}

		result, err := s.requestInbox(&actors.GetMessageMsg{MessageID: messageID})
		if err != nil {
			if utils.IsErrorCode(err, utils.ErrNotFound) {
				s.writeJSON(w, http.StatusOK, nil)
				return
			}
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// HandleMarkRead marks a message as read
func (s *Server) HandleMarkRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			MessageID string `json:"messageId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, utils.NewValidationError("invalid request body"))
			return
		}

		messageID, err := uuid.Parse(req.MessageID)
		if err != nil {
			s.writeError(w, utils.NewValidationError("invalid messageId"))
			return
		}

		result, err := s.requestInbox(&actors.MarkReadMsg{MessageID: messageID})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// HandleSearch filters the caller's inbox by a case-insensitive subject
// substring. An empty filter returns the full inbox.
func (s *Server) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncrementRequests()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		caller, ok := s.identity(r)
		if !ok || caller.Email == "" {
			s.writeError(w, utils.NewUnauthorizedError("no caller identity"))
			return
		}

		result, err := s.requestInbox(&actors.SearchInboxMsg{
			ReceiverEmail: caller.Email,
			SubjectFilter: r.URL.Query().Get("subject"),
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}
