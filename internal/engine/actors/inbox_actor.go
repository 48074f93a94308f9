package actors

import (
	stdctx "context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"hivedesk/internal/database"
	"hivedesk/internal/models"
	"hivedesk/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for InboxActor
type (
	SendMessageMsg struct {
		SenderEmail   string `json:"senderEmail"`
		ReceiverEmail string `json:"receiverEmail"`
		Subject       string `json:"subject"`
		Body          string `json:"body"`
		CorrelationID string `json:"correlationId,omitempty"`
	}

	ReplyMessageMsg struct {
		SenderEmail   string    `json:"senderEmail"`
		ParentID      uuid.UUID `json:"parentId"`
		Subject       string    `json:"subject"`
		Body          string    `json:"body"`
		CorrelationID string    `json:"correlationId,omitempty"`
	}

	ListInboxMsg struct {
		ReceiverEmail string `json:"receiverEmail"`
	}

	GetMessageMsg struct {
		MessageID uuid.UUID `json:"messageId"`
	}

	MarkReadMsg struct {
		MessageID uuid.UUID `json:"messageId"`
	}

	DeleteMessageMsg struct {
		MessageID   uuid.UUID `json:"messageId"`
		CallerEmail string    `json:"callerEmail"`
	}

	SearchInboxMsg struct {
		ReceiverEmail string `json:"receiverEmail"`
		SubjectFilter string `json:"subjectFilter"`
	}

	loadMessagesFromDBMsg struct{}
)

// ProfileDirectory resolves emails to profiles for display fields and
// receiver-side activity entries. Satisfied by database.PostgresDB.
type ProfileDirectory interface {
	GetProfileByEmail(ctx stdctx.Context, email string) (*models.Profile, error)
}

// EventPublisher is the fan-out channel contract. Publishing happens after a
// successful persist and is best-effort; failures never roll back the message.
type EventPublisher interface {
	PublishMessage(ev *models.MessageEvent)
}

// InboxActor owns all inbox state and serializes every mutation. In-memory
// maps are the runtime source of truth, hydrated from the store on start and
// written through on each mutation.
type InboxActor struct {
	messages map[uuid.UUID]*models.Message
	inbox    map[string][]uuid.UUID    // receiver email -> message ids, append order
	replies  map[uuid.UUID][]uuid.UUID // parent id -> reply ids, append order

	db        database.Store
	directory ProfileDirectory
	publisher EventPublisher
	metrics   *utils.MetricsCollector

	profileCache map[string]*models.Profile
}

func NewInboxActor(db database.Store, directory ProfileDirectory, publisher EventPublisher, metrics *utils.MetricsCollector) actor.Actor {
	return &InboxActor{
		messages:     make(map[uuid.UUID]*models.Message),
		inbox:        make(map[string][]uuid.UUID),
		replies:      make(map[uuid.UUID][]uuid.UUID),
		db:           db,
		directory:    directory,
		publisher:    publisher,
		metrics:      metrics,
		profileCache: make(map[string]*models.Profile),
	}
}

func (a *InboxActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		if a.db != nil {
			context.Send(context.Self(), &loadMessagesFromDBMsg{})
		}

	case *loadMessagesFromDBMsg:
		a.handleLoadMessages()

	case *SendMessageMsg:
		a.handleSend(context, msg)

	case *ReplyMessageMsg:
		a.handleReply(context, msg)

	case *ListInboxMsg:
		context.Respond(a.buildInbox(msg.ReceiverEmail, ""))

	case *SearchInboxMsg:
		context.Respond(a.buildInbox(msg.ReceiverEmail, msg.SubjectFilter))

	case *GetMessageMsg:
		a.handleGet(context, msg)

	case *MarkReadMsg:
		a.handleMarkRead(context, msg)

	case *DeleteMessageMsg:
		a.handleDelete(context, msg)
	}
}

func (a *InboxActor) handleLoadMessages() {
	ctx := stdctx.Background()
	msgs, err := a.db.GetAllMessages(ctx)
	if err != nil {
		slog.Error("failed to hydrate inbox from database", "error", err)
		return
	}
	for _, m := range msgs {
		a.index(m)
	}
	slog.Info("inbox hydrated from database", "messages", len(msgs))
}

// index inserts a message into the in-memory maps. Callers pass messages in
// creation order so per-receiver and per-parent slices stay time-ordered.
func (a *InboxActor) index(m *models.Message) {
	a.messages[m.ID] = m
	if m.ParentID != nil {
		a.replies[*m.ParentID] = append(a.replies[*m.ParentID], m.ID)
	} else {
		a.inbox[m.ReceiverEmail] = append(a.inbox[m.ReceiverEmail], m.ID)
	}
}

func (a *InboxActor) handleSend(context actor.Context, msg *SendMessageMsg) {
	startTime := time.Now()

	if msg.SenderEmail == "" {
		context.Respond(utils.NewUnauthorizedError("caller identity has no email"))
		return
	}

	newMessage := &models.Message{
		ID:            uuid.New(),
		Subject:       msg.Subject,
		Body:          msg.Body,
		SenderEmail:   msg.SenderEmail,
		ReceiverEmail: msg.ReceiverEmail,
		CreatedAt:     time.Now(),
		IsRead:        false,
	}

	if err := a.persist(newMessage); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to save message", err))
		return
	}
	a.index(newMessage)

	a.recordActivity(newMessage)
	a.publish(newMessage, msg.CorrelationID)

	a.metrics.AddOperationLatency("send_message", time.Since(startTime))

	response := *newMessage
	response.CorrelationID = msg.CorrelationID
	context.Respond(&response)
}

func (a *InboxActor) handleReply(context actor.Context, msg *ReplyMessageMsg) {
	startTime := time.Now()

	if msg.SenderEmail == "" {
		context.Respond(utils.NewUnauthorizedError("caller identity has no email"))
		return
	}

	parent, exists := a.messages[msg.ParentID]
	if !exists {
		context.Respond(utils.NewNotFoundError("parent message"))
		return
	}

	parentID := msg.ParentID
	newMessage := &models.Message{
		ID:          uuid.New(),
		Subject:     msg.Subject,
		Body:        msg.Body,
		SenderEmail: msg.SenderEmail,
		// A reply goes back to whoever sent the original message.
		ReceiverEmail: parent.SenderEmail,
		ParentID:      &parentID,
		CreatedAt:     time.Now(),
		IsRead:        false,
	}

	if err := a.persist(newMessage); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to save reply", err))
		return
	}
	a.index(newMessage)

	a.recordActivity(newMessage)
	a.publish(newMessage, msg.CorrelationID)

	a.metrics.AddOperationLatency("reply_message", time.Since(startTime))

	response := *newMessage
	response.CorrelationID = msg.CorrelationID
	context.Respond(&response)
}

func (a *InboxActor) persist(m *models.Message) error {
	if a.db == nil {
		return nil
	}
	return a.db.SaveMessage(stdctx.Background(), m)
}

// publish pushes the new-message event to the fan-out channel. Best-effort by
// contract: a missed push is recovered by the client re-listing.
func (a *InboxActor) publish(m *models.Message, correlationID string) {
	if a.publisher == nil {
		return
	}
	a.publisher.PublishMessage(&models.MessageEvent{
		ID:            m.ID,
		CorrelationID: correlationID,
		Subject:       m.Subject,
		Body:          m.Body,
		SenderEmail:   m.SenderEmail,
		ReceiverEmail: m.ReceiverEmail,
		CreatedAt:     m.CreatedAt,
	})
}

// recordActivity writes activity-log entries for the sender and, when the
// receiver email resolves to a profile, for the receiver. An unresolvable
// receiver is skipped without error.
func (a *InboxActor) recordActivity(m *models.Message) {
	if a.db == nil {
		return
	}
	ctx := stdctx.Background()

	if sender := a.resolveProfile(m.SenderEmail); sender != nil {
		entry := &models.ActivityEntry{
			ID:        uuid.New(),
			ProfileID: sender.ID,
			Kind:      models.ActivityMessageSent,
			Detail:    m.Subject,
			CreatedAt: time.Now(),
		}
		if err := a.db.SaveActivity(ctx, entry); err != nil {
			slog.Error("failed to record sender activity", "error", err)
		}
	}

	receiver := a.resolveProfile(m.ReceiverEmail)
	if receiver == nil {
		slog.Debug("receiver has no profile, skipping activity entry", "email", m.ReceiverEmail)
		return
	}
	entry := &models.ActivityEntry{
		ID:        uuid.New(),
		ProfileID: receiver.ID,
		Kind:      models.ActivityMessageReceived,
		Detail:    m.Subject,
		CreatedAt: time.Now(),
	}
	if err := a.db.SaveActivity(ctx, entry); err != nil {
		slog.Error("failed to record receiver activity", "error", err)
	}
}

// resolveProfile looks up a profile by email, using the cache first.
func (a *InboxActor) resolveProfile(email string) *models.Profile {
	if a.directory == nil {
		return nil
	}
	if p, ok := a.profileCache[email]; ok {
		return p
	}
	p, err := a.directory.GetProfileByEmail(stdctx.Background(), email)
	if err != nil || p == nil {
		return nil
	}
	a.profileCache[email] = p
	return p
}

// buildInbox assembles the receiver-scoped view: top-level messages newest
// first, each with sender display fields and its replies oldest first. An
// empty filter returns the full inbox.
func (a *InboxActor) buildInbox(receiverEmail, subjectFilter string) []*models.Message {
	startTime := time.Now()
	filter := strings.ToLower(subjectFilter)

	result := make([]*models.Message, 0)
	for _, id := range a.inbox[receiverEmail] {
		m, exists := a.messages[id]
		if !exists {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(m.Subject), filter) {
			continue
		}
		result = append(result, a.view(m, true))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	a.metrics.AddOperationLatency("list_inbox", time.Since(startTime))
	return result
}

// view copies a message for responding, attaching sender display fields and,
// when asked, its reply thread in ascending creation order.
func (a *InboxActor) view(m *models.Message, withReplies bool) *models.Message {
	out := *m
	if sender := a.resolveProfile(m.SenderEmail); sender != nil {
		out.SenderName = sender.Username
		out.SenderAvatar = sender.AvatarURL
	}
	if withReplies {
		for _, replyID := range a.replies[m.ID] {
			if reply, exists := a.messages[replyID]; exists {
				out.Replies = append(out.Replies, a.view(reply, false))
			}
		}
	}
	return &out
}

func (a *InboxActor) handleGet(context actor.Context, msg *GetMessageMsg) {
	m, exists := a.messages[msg.MessageID]
	if !exists {
		context.Respond(utils.NewNotFoundError("message"))
		return
	}

	out := a.view(m, true)
	if m.ParentID != nil {
		if parent, ok := a.messages[*m.ParentID]; ok {
			out.Parent = a.view(parent, false)
		}
	}
	context.Respond(out)
}

func (a *InboxActor) handleMarkRead(context actor.Context, msg *MarkReadMsg) {
	m, exists := a.messages[msg.MessageID]
	if !exists {
		context.Respond(utils.NewNotFoundError("message"))
		return
	}

	// Unconditional set; marking an already-read message again is a no-op.
	m.IsRead = true
	if a.db != nil {
		if err := a.db.MarkMessageRead(stdctx.Background(), m.ID); err != nil {
			slog.Error("failed to persist read flag", "id", m.ID, "error", err)
		}
	}
	context.Respond(a.view(m, false))
}

func (a *InboxActor) handleDelete(context actor.Context, msg *DeleteMessageMsg) {
	m, exists := a.messages[msg.MessageID]
	if !exists {
		context.Respond(utils.NewNotFoundError("message"))
		return
	}

	// Deletion is receiver-only, mirroring inbox scoping.
	if m.ReceiverEmail != msg.CallerEmail {
		context.Respond(utils.NewAppError(utils.ErrForbidden, "only the receiver can delete a message", nil))
		return
	}

	if a.db != nil {
		if err := a.db.DeleteMessage(stdctx.Background(), m.ID); err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to delete message", err))
			return
		}
	}

	a.remove(m)
	context.Respond(true)
}

// remove drops a message and its reply subtree from the in-memory maps.
func (a *InboxActor) remove(m *models.Message) {
	for _, replyID := range a.replies[m.ID] {
		if reply, exists := a.messages[replyID]; exists {
			a.remove(reply)
		}
	}
	delete(a.replies, m.ID)
	delete(a.messages, m.ID)

	if m.ParentID == nil {
		ids := a.inbox[m.ReceiverEmail]
		for i, id := range ids {
			if id == m.ID {
				a.inbox[m.ReceiverEmail] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
}
