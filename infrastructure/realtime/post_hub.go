package realtime

import (
	"net/http"
	"sync"
	"time"

	"socialflow/domain/model"

	"github.com/gin-gonic/gin"
)

const eventName = "post_status"

// keepAlive is the interval of comment frames on an idle stream.
var keepAlive = 25 * time.Second

// PostHub fans post status events out to per-user SSE subscribers.
type PostHub struct {
	mu    sync.RWMutex
	users map[string]map[chan model.PostEvent]struct{}
}

func NewPostHub() *PostHub {
	return &PostHub{users: make(map[string]map[chan model.PostEvent]struct{})}
}

// Serve streams events for the authenticated user (user_id set by middleware).
func (h *PostHub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := h.subscribe(userID)
	defer h.unsubscribe(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = c.Writer.Write([]byte(":ping\n\n"))
			c.Writer.Flush()
		case evt, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(eventName, evt)
			c.Writer.Flush()
		}
	}
}

func (h *PostHub) subscribe(userID string) chan model.PostEvent {
	ch := make(chan model.PostEvent, 8)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan model.PostEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
	return ch
}

func (h *PostHub) unsubscribe(userID string, ch chan model.PostEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// BroadcastPost notifies every subscriber of the post owner. Slow subscribers miss events.
func (h *PostHub) BroadcastPost(p *model.Post) {
	if p == nil {
		return
	}
	evt := model.NewPostEvent(p, p.UpdatedAt)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[p.UserID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
