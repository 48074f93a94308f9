package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"hivedesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, email string, buffer int) *Client {
	return &Client{
		Hub:   hub,
		Email: email,
		Send:  make(chan []byte, buffer),
	}
}

func registerAndWait(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	hub.Register <- client
	require.Eventually(t, func() bool {
		return hub.ConnectionCount(client.Email) > 0
	}, time.Second, 5*time.Millisecond)
}

func testEvent(sender, receiver string) *models.MessageEvent {
	return &models.MessageEvent{
		ID:            uuid.New(),
		CorrelationID: "tok-1",
		Subject:       "Hi",
		Body:          "test",
		SenderEmail:   sender,
		ReceiverEmail: receiver,
		CreatedAt:     time.Now(),
	}
}

func receivePayload(t *testing.T, client *Client) *models.MessageEvent {
	t.Helper()
	select {
	case payload := <-client.Send:
		var ev models.MessageEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		return &ev
	case <-time.After(time.Second):
		t.Fatalf("no payload delivered to %s", client.Email)
		return nil
	}
}

func TestPublishReachesReceiverAndSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	receiver := newTestClient(hub, "b@x.com", 4)
	sender := newTestClient(hub, "a@x.com", 4)
	registerAndWait(t, hub, receiver)
	registerAndWait(t, hub, sender)

	ev := testEvent("a@x.com", "b@x.com")
	hub.PublishMessage(ev)

	got := receivePayload(t, receiver)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "tok-1", got.CorrelationID)

	got = receivePayload(t, sender)
	assert.Equal(t, ev.ID, got.ID)
}

func TestPublishSkipsUnrelatedClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	bystander := newTestClient(hub, "c@x.com", 4)
	registerAndWait(t, hub, bystander)

	hub.PublishMessage(testEvent("a@x.com", "b@x.com"))

	select {
	case <-bystander.Send:
		t.Fatal("bystander received an event not addressed to it")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAllConnectionsOfOneEmailReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newTestClient(hub, "b@x.com", 4)
	second := newTestClient(hub, "b@x.com", 4)
	registerAndWait(t, hub, first)
	hub.Register <- second
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("b@x.com") == 2
	}, time.Second, 5*time.Millisecond)

	hub.PublishMessage(testEvent("a@x.com", "b@x.com"))

	receivePayload(t, first)
	receivePayload(t, second)
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "b@x.com", 4)
	registerAndWait(t, hub, client)

	hub.Unregister <- client
	require.Eventually(t, func() bool {
		return hub.ConnectionCount("b@x.com") == 0
	}, time.Second, 5*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "b@x.com", 1)
	registerAndWait(t, hub, client)

	hub.PublishMessage(testEvent("a@x.com", "b@x.com"))
	hub.PublishMessage(testEvent("a@x.com", "b@x.com"))

	// First event fills the buffer; the second is dropped, not queued.
	receivePayload(t, client)
	select {
	case <-client.Send:
		t.Fatal("expected second event to be dropped")
	case <-time.After(50 * time.Millisecond):
	}
}
