// Package client implements the client-side inbox view: one de-duplicated,
// sorted collection merging list results, optimistic local sends and events
// pushed over the fan-out channel.
package client

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hivedesk/internal/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Lister is the list/search procedure surface the view refreshes from.
type Lister interface {
	ListInbox(ctx context.Context) ([]*models.Message, error)
}

// Sender issues the send procedure. The correlation token is echoed back in
// the response and the published event.
type Sender interface {
	SendMessage(ctx context.Context, receiverEmail, subject, body, correlationID string) (*models.Message, error)
}

// Entry is one row of the merged view. Pending entries are optimistic local
// sends awaiting server confirmation.
type Entry struct {
	models.Message
	Pending bool `json:"pending,omitempty"`
}

const (
	defaultDebounce     = 300 * time.Millisecond
	fetchMaxRetries     = 3
	fetchInitialBackoff = 100 * time.Millisecond
	fetchMaxBackoff     = 2 * time.Second
)

// InboxView holds the merged inbox for one signed-in email. The server remains
// authoritative; this is a cache that reconciles three sources by stable id
// and correlation token.
type InboxView struct {
	mu     sync.Mutex
	email  string
	lister Lister
	sender Sender

	confirmed  map[uuid.UUID]*Entry // keyed by server-issued id
	optimistic map[string]*Entry    // keyed by correlation token

	filter        string
	pendingFilter string
	debounce      time.Duration
	debounceTimer *time.Timer
}

// Option configures an InboxView.
type Option func(*InboxView)

// WithDebounce overrides the search debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(v *InboxView) { v.debounce = d }
}

func NewInboxView(email string, lister Lister, sender Sender, opts ...Option) *InboxView {
	v := &InboxView{
		email:      email,
		lister:     lister,
		sender:     sender,
		confirmed:  make(map[uuid.UUID]*Entry),
		optimistic: make(map[string]*Entry),
		debounce:   defaultDebounce,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Refresh repopulates the confirmed set from a list call, retrying transient
// failures with bounded exponential backoff. Optimistic entries survive a
// refresh; the stream alone is never trusted for completeness, so callers
// invoke Refresh on mount and after every reconnect.
func (v *InboxView) Refresh(ctx context.Context) error {
	op := func() error {
		msgs, err := v.lister.ListInbox(ctx)
		if err != nil {
			return err
		}

		v.mu.Lock()
		defer v.mu.Unlock()
		v.confirmed = make(map[uuid.UUID]*Entry, len(msgs))
		for _, m := range msgs {
			v.confirmed[m.ID] = &Entry{Message: *m}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = fetchInitialBackoff
	bo.MaxInterval = fetchMaxBackoff
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, fetchMaxRetries), ctx))
}

// SendOptimistic appends a temporary entry, then issues the send. The entry is
// replaced when the confirmed message (or its pushed event) echoes the
// correlation token. Sends are not retried; a failure removes the temporary
// entry and surfaces the error to the caller.
func (v *InboxView) SendOptimistic(ctx context.Context, receiverEmail, subject, body string) (*models.Message, error) {
	token := uuid.NewString()

	temp := &Entry{
		Message: models.Message{
			ID:            uuid.New(), // placeholder until the server issues one
			Subject:       subject,
			Body:          body,
			SenderEmail:   v.email,
			ReceiverEmail: receiverEmail,
			CreatedAt:     time.Now(),
			CorrelationID: token,
		},
		Pending: true,
	}

	v.mu.Lock()
	v.optimistic[token] = temp
	v.mu.Unlock()

	confirmed, err := v.sender.SendMessage(ctx, receiverEmail, subject, body, token)
	if err != nil {
		v.mu.Lock()
		delete(v.optimistic, token)
		v.mu.Unlock()
		return nil, err
	}

	v.mu.Lock()
	delete(v.optimistic, token)
	v.confirmed[confirmed.ID] = &Entry{Message: *confirmed}
	v.mu.Unlock()
	return confirmed, nil
}

// ApplyEvent merges a pushed new-message event. Events echoing a known
// correlation token replace the optimistic entry; events whose id is already
// present are no-ops; events for other identities are ignored.
func (v *InboxView) ApplyEvent(ev *models.MessageEvent) {
	if ev.ReceiverEmail != v.email && ev.SenderEmail != v.email {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if ev.CorrelationID != "" {
		delete(v.optimistic, ev.CorrelationID)
	}
	if _, exists := v.confirmed[ev.ID]; exists {
		return
	}
	v.confirmed[ev.ID] = &Entry{
		Message: models.Message{
			ID:            ev.ID,
			Subject:       ev.Subject,
			Body:          ev.Body,
			SenderEmail:   ev.SenderEmail,
			ReceiverEmail: ev.ReceiverEmail,
			CreatedAt:     ev.CreatedAt,
			CorrelationID: ev.CorrelationID,
		},
	}
}

// SetFilter records a subject filter, applying it only after the debounce
// interval has elapsed without another keystroke.
func (v *InboxView) SetFilter(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pendingFilter = query
	if v.debounceTimer != nil {
		v.debounceTimer.Stop()
	}
	v.debounceTimer = time.AfterFunc(v.debounce, func() {
		v.mu.Lock()
		v.filter = v.pendingFilter
		v.mu.Unlock()
	})
}

// Filter returns the currently applied (post-debounce) filter.
func (v *InboxView) Filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Snapshot returns the filtered view, newest first. Filtering is purely local
// over the already-merged collection.
func (v *InboxView) Snapshot() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()

	filter := strings.ToLower(v.filter)
	out := make([]Entry, 0, len(v.confirmed)+len(v.optimistic))
	for _, e := range v.confirmed {
		if filter == "" || strings.Contains(strings.ToLower(e.Subject), filter) {
			out = append(out, *e)
		}
	}
	for _, e := range v.optimistic {
		if filter == "" || strings.Contains(strings.ToLower(e.Subject), filter) {
			out = append(out, *e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Close releases the debounce timer. Call on view teardown, alongside closing
// the subscription connection.
func (v *InboxView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.debounceTimer != nil {
		v.debounceTimer.Stop()
		v.debounceTimer = nil
	}
}
