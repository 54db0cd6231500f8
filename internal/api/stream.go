package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"brandai/backend/internal/evaluation"
)

const (
	streamWriteTimeout = 5 * time.Second
	// streamQueueSize bounds the events buffered for one viewer. A viewer
	// that falls further behind is disconnected.
	streamQueueSize = 32
)

// EvaluationEvent describes websocket payloads emitted while a pipeline runs.
type EvaluationEvent struct {
	Type      string    `json:"type"`
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	Brand     string    `json:"brand,omitempty"`
	Message   string    `json:"message,omitempty"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// wsClient owns one websocket connection. Events are queued on send and
// written by the client's own goroutine, so a stalled reader never blocks
// the pipeline.
type wsClient struct {
	conn      *websocket.Conn
	requestID string
	send      chan EvaluationEvent
	done      chan struct{}
	closeOnce sync.Once
}

// wants reports whether the client subscribed to events of requestID. An
// empty subscription receives every request.
func (c *wsClient) wants(requestID string) bool {
	return c.requestID == "" || c.requestID == requestID
}

// enqueue hands the event to the writer without blocking. It reports false
// when the queue is full.
func (c *wsClient) enqueue(event EvaluationEvent) bool {
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *wsClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case event := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := c.conn.WriteJSON(event); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// EvaluationNotifier keeps track of active websocket clients and broadcasts
// pipeline events. It implements evaluation.Observer.
type EvaluationNotifier struct {
	mu         sync.Mutex
	clients    map[*wsClient]struct{}
	lastStatus *EvaluationEvent
}

// NewEvaluationNotifier constructs a notifier instance.
func NewEvaluationNotifier() *EvaluationNotifier {
	return &EvaluationNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and replays the last event the
// client is subscribed to. requestID narrows the stream to one request; an
// empty requestID follows every request.
func (n *EvaluationNotifier) Register(conn *websocket.Conn, requestID string) *wsClient {
	client := &wsClient{
		conn:      conn,
		requestID: requestID,
		send:      make(chan EvaluationEvent, streamQueueSize),
		done:      make(chan struct{}),
	}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	if status := n.lastStatus; status != nil && client.wants(status.RequestID) {
		client.enqueue(*status)
	}
	n.mu.Unlock()

	go client.writeLoop()
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *EvaluationNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	client.close()
}

// Observe translates a pipeline transition into a websocket event.
func (n *EvaluationNotifier) Observe(e evaluation.Event) {
	n.Broadcast(EvaluationEvent{
		Type:      eventType(e.Stage),
		RequestID: e.RequestID,
		Stage:     string(e.Stage),
		Brand:     e.Brand,
		Message:   e.Message,
		ElapsedMs: e.ElapsedMs,
	})
}

func eventType(stage evaluation.Stage) string {
	switch stage {
	case evaluation.StageFailed:
		return "failed"
	case evaluation.StageAssembled, evaluation.StageRegenerated:
		return "completed"
	case evaluation.StageReceived, evaluation.StageRegenerating:
		return "started"
	default:
		return "progress"
	}
}

// Broadcast queues the event for every subscribed client. It never waits on
// the network; clients whose queue is full are dropped.
func (n *EvaluationNotifier) Broadcast(event EvaluationEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	defer n.mu.Unlock()
	snapshot := event
	n.lastStatus = &snapshot

	for client := range n.clients {
		if !client.wants(event.RequestID) {
			continue
		}
		if !client.enqueue(event) {
			delete(n.clients, client)
			client.close()
			logrus.WithField("remote", client.conn.RemoteAddr().String()).Warn("evaluation websocket too slow, disconnecting")
		}
	}
}

// LastStatus returns a copy of the most recent event.
func (n *EvaluationNotifier) LastStatus() *EvaluationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastStatus == nil {
		return nil
	}
	copy := *n.lastStatus
	return &copy
}

func (n *EvaluationNotifier) clientCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}
