package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"hivedesk/internal/database"
	"hivedesk/internal/engine"
	"hivedesk/internal/middleware"
	"hivedesk/internal/storage"
	"hivedesk/internal/utils"
	"hivedesk/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	Hub            *websocket.Hub
	Auth           *middleware.AuthManager
	Objects        storage.ObjectStore
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	hub *websocket.Hub,
	auth *middleware.AuthManager,
	objects storage.ObjectStore,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Store:          store,
		Hub:            hub,
		Auth:           auth,
		Objects:        objects,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// requestInbox dispatches a typed message to the inbox actor and unwraps the
// response, converting actor-level AppErrors back into Go errors.
func (s *Server) requestInbox(msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(s.Engine.GetInboxActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewAppError(utils.ErrActorTimeout, "inbox actor did not respond", err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

// identity extracts the authenticated caller from the request context.
func (s *Server) identity(r *http.Request) (*middleware.Identity, bool) {
	return middleware.IdentityFromContext(r.Context())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps AppErrors onto HTTP statuses; anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.Metrics.IncrementErrors()
	if appErr, ok := err.(*utils.AppError); ok {
		s.writeJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
			"code":  appErr.Code,
			"error": appErr.Message,
		})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"code":  utils.ErrDatabase,
		"error": "internal error",
	})
}

// validEmail reports whether s is a structurally valid address.
func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// HandleHealth reports basic liveness plus a metrics snapshot.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"metrics": s.Metrics.GetSnapshot(),
		})
	}
}
