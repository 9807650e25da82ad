package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubDeliversInOrderAndReconnects(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	storeID := uuid.New()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, StoreChannel(storeID))

	hub.Broadcast(StoreEvent(storeID, SSEEventSaleRecorded, map[string]any{"seq": 1}))
	hub.Broadcast(StoreEvent(storeID, SSEEventStockLow, map[string]any{"seq": 2}))
	hub.Broadcast(StoreEvent(uuid.New(), SSEEventProductSaved, nil))

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventSaleRecorded {
		t.Fatalf("first event: got %s", got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventStockLow {
		t.Fatalf("second event: got %s", got.Event)
	}
	select {
	case msg := <-clientA.Outbound:
		t.Fatalf("received event for another store: %+v", msg)
	default:
	}

	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(StoreChannel(storeID)); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, StoreChannel(storeID))
	hub.Broadcast(StoreEvent(storeID, SSEEventImportCompleted, nil))
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventImportCompleted {
		t.Fatalf("reconnect event: got %s", got.Event)
	}
}

func TestSSEHubServeHTTPStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewSSEHub(logger.Nop())
	storeID := uuid.New()
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, StoreChannel(storeID))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeHTTP(rec, req, client)
	}()

	hub.Broadcast(StoreEvent(storeID, SSEEventSaleRecorded, map[string]any{"total": 36}))
	deadline := time.Now().Add(time.Second)
	for len(client.Outbound) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ServeHTTP did not return after cancel")
	}
	hub.CloseClient(client)

	body := rec.Body.String()
	if !strings.Contains(body, "event: SaleRecorded") {
		t.Fatalf("expected SaleRecorded frame, got %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

type failingForwarder struct{ calls int }

func (f *failingForwarder) Publish(context.Context, SSEMessage) error {
	f.calls++
	return context.DeadlineExceeded
}

func TestPublisherFallsBackToHub(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	storeID := uuid.New()
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, StoreChannel(storeID))

	fwd := &failingForwarder{}
	pub := NewPublisher(hub, fwd, logger.Nop())
	pub.Publish(context.Background(), StoreEvent(storeID, SSEEventStoreUpdated, nil))

	if fwd.calls != 1 {
		t.Fatalf("expected forwarder attempt, got %d", fwd.calls)
	}
	if got := recvMessage(t, client.Outbound, time.Second); got.Event != SSEEventStoreUpdated {
		t.Fatalf("expected local delivery, got %s", got.Event)
	}
}
