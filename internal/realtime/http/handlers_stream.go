package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/molspace/molspace-backend/internal/realtime"
)

// Subscriber is the scope-watch surface of the realtime bridge.
type Subscriber interface {
	SubscribeComments(ctx context.Context, projectID string) *realtime.Subscription
	SubscribeAnnotations(ctx context.Context, projectID string) *realtime.Subscription
	SubscribeProjectFeed(ctx context.Context) *realtime.Subscription
}

// Handler exposes the change-hint streams over Server-Sent Events.
type Handler struct {
	bridge Subscriber
}

func New(bridge Subscriber) *Handler {
	return &Handler{bridge: bridge}
}

// Register attaches the per-project streams and the global feed stream.
func (h *Handler) Register(projects, feed *gin.RouterGroup) {
	projects.GET("/stream/comments", h.streamComments)
	projects.GET("/stream/annotations", h.streamAnnotations)
	feed.GET("/stream", h.streamProjectFeed)
}

// StreamComments pushes one project's comment change hints using Server-Sent Events (SSE)
func (h *Handler) streamComments(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project ID is required"})
		return
	}
	h.stream(c, h.bridge.SubscribeComments(c.Request.Context(), projectID))
}

// StreamAnnotations pushes one project's annotation change hints over SSE
func (h *Handler) streamAnnotations(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project ID is required"})
		return
	}
	h.stream(c, h.bridge.SubscribeAnnotations(c.Request.Context(), projectID))
}

// StreamProjectFeed pushes the global project-insert feed over SSE
func (h *Handler) streamProjectFeed(c *gin.Context) {
	h.stream(c, h.bridge.SubscribeProjectFeed(c.Request.Context()))
}

func (h *Handler) stream(c *gin.Context, sub *realtime.Subscription) {
	defer sub.Unsubscribe()

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	// Tell the client the watch is live; there is no replay of earlier
	// changes, it should do a full fetch on connect.
	fmt.Fprint(c.Writer, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	ctx := c.Request.Context()

	// Set up keep-alive pings
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, open := <-sub.Events():
			if !open {
				return
			}
			payload, _ := json.Marshal(ev)
			fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", string(payload))
			flusher.Flush()
		}
	}
}
