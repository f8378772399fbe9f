package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"contactbook/internal/model"
)

// subscriberBuffer bounds each subscriber channel; a subscriber that falls
// behind loses messages rather than blocking publishers.
const subscriberBuffer = 16

// Hub fans notifications out to stream subscribers. Every published
// notification carries its expiry deadline and is followed by a dismiss
// message once the deadline elapses, each on its own independent timer.
type Hub struct {
	scheduler *Scheduler
	logger    *zap.Logger

	mu          sync.RWMutex
	subscribers map[chan model.WebSocketMessage]struct{}
}

// NewHub creates a new Hub instance.
func NewHub(scheduler *Scheduler, logger *zap.Logger) *Hub {
	return &Hub{
		scheduler:   scheduler,
		logger:      logger,
		subscribers: make(map[chan model.WebSocketMessage]struct{}),
	}
}

// Subscribe registers a new stream consumer. The returned function removes
// the subscription and closes the channel.
func (h *Hub) Subscribe() (<-chan model.WebSocketMessage, func()) {
	ch := make(chan model.WebSocketMessage, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Publish broadcasts a notification that expires after ttl and arms an
// independent timer that broadcasts the matching dismiss message on expiry.
func (h *Hub) Publish(event, message string, ttl time.Duration) model.Notification {
	return h.PublishUntil(event, message, time.Now().UTC().Add(ttl))
}

// PublishUntil broadcasts a notification carrying an explicit expiry deadline.
// Used when the deadline is owned elsewhere, such as the undo window of a
// pending deletion, so the stream and the owner agree on the same instant.
func (h *Hub) PublishUntil(event, message string, expiresAt time.Time) model.Notification {
	n := model.Notification{
		Event:     event,
		Message:   message,
		ExpiresAt: expiresAt,
	}

	h.broadcast(model.NewNotificationMessage(n))

	h.scheduler.Schedule("notification:"+uuid.New().String(), time.Until(expiresAt), func() {
		h.broadcast(model.NewDismissMessage(n))
	})

	return n
}

// broadcast delivers a message to every subscriber without blocking.
func (h *Hub) broadcast(msg model.WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.logger.Debug("dropping message for slow subscriber",
				zap.String("type", msg.Type))
		}
	}
}
