package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nermi/website/internal/submissions"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedMessage is the outgoing WebSocket message format.
type FeedMessage struct {
	Type       string                 `json:"type"` // "submission"
	Submission submissions.Submission `json:"submission"`
}

// Feed pushes delivered submissions to connected WebSocket clients. It
// satisfies the contact handler's Notifier.
type Feed struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewFeed creates an empty feed.
func NewFeed(logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{logger: logger, clients: make(map[chan []byte]struct{})}
}

// Notify broadcasts sub. Clients whose buffer is full miss the message.
func (f *Feed) Notify(_ context.Context, sub submissions.Submission) error {
	msg, err := json.Marshal(FeedMessage{Type: "submission", Submission: sub})
	if err != nil {
		return fmt.Errorf("marshalling feed message: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.clients {
		select {
		case ch <- msg:
		default:
			f.logger.Warn("feed client too slow, dropping message", zap.String("submission_id", sub.ID))
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) add() chan []byte {
	ch := make(chan []byte, sendBuffer)
	f.mu.Lock()
	f.clients[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *Feed) remove(ch chan []byte) {
	f.mu.Lock()
	delete(f.clients, ch)
	f.mu.Unlock()
}

// ServeHTTP upgrades the request and streams messages until the client
// disconnects.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("feed websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ch := f.add()
	defer f.remove(ch)

	// The client never sends anything useful; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					f.logger.Debug("feed websocket read", zap.Error(err))
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				f.logger.Debug("feed websocket write", zap.Error(err))
				return
			}
		}
	}
}
