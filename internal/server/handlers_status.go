package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/azoai/botadmin/internal/status"
	"github.com/azoai/botadmin/internal/store"
	"github.com/azoai/botadmin/internal/viewmodel"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const streamHeartbeatInterval = 25 * time.Second

type statusResponsePayload struct {
	State           status.State      `json:"state"`
	Status          store.BotStatus   `json:"status"`
	Online          bool              `json:"online"`
	FormattedUptime string            `json:"formatted_uptime"`
	LastActiveAgo   string            `json:"last_active_ago"`
	ChangeLogs      []store.ChangeLog `json:"changelogs"`
	UpdateLogs      []store.UpdateLog `json:"updatelogs"`
}

func (h *httpHandler) handleStatus(c *gin.Context) {
	snapshot := h.monitor.Snapshot()
	lastActiveAgo := ""
	if !snapshot.Status.LastActive.IsZero() {
		lastActiveAgo = viewmodel.RelativeTime(snapshot.Status.LastActive, h.clock())
	}
	c.JSON(http.StatusOK, statusResponsePayload{
		State:           snapshot.State,
		Status:          snapshot.Status,
		Online:          snapshot.Online,
		FormattedUptime: viewmodel.FormatUptime(snapshot.Status.UptimeSeconds),
		LastActiveAgo:   lastActiveAgo,
		ChangeLogs:      snapshot.ChangeLogs,
		UpdateLogs:      snapshot.UpdateLogs,
	})
}

// handleStatusStream pushes bot status rows to the operator UI as
// server-sent events. The subscription is released when the client goes
// away; events the client cannot drain in time are dropped, not queued.
func (h *httpHandler) handleStatusStream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming_unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	ctx := c.Request.Context()
	stream, release := h.broker.Subscribe(ctx, store.BotStatusTable, store.BotStatusKeyColumn, h.sessionID)
	defer release()

	// Initial snapshot so a reconnecting client does not wait for the next
	// heartbeat to render.
	if payload, err := json.Marshal(h.monitor.Snapshot().Status); err == nil {
		writeSSE(c, "status", payload)
		flusher.Flush()
	}

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-stream:
			if !open {
				return
			}
			writeSSE(c, "status", event.Row)
			flusher.Flush()
		case <-heartbeat.C:
			writeSSE(c, "heartbeat", []byte("{}"))
			flusher.Flush()
		}
	}
}

func writeSSE(c *gin.Context, event string, data []byte) {
	_, _ = c.Writer.WriteString("event: " + event + "\n")
	_, _ = c.Writer.WriteString("data: " + string(data) + "\n\n")
}

type heartbeatPayload struct {
	AccessKey     string  `json:"access_key"`
	SessionID     string  `json:"session_id"`
	IsOnline      bool    `json:"is_online"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	LastActive    string  `json:"last_active"`
	MessagesToday int64   `json:"messages_today"`
	Version       string  `json:"version"`
	Platform      string  `json:"platform"`
	MemoryUsageMB float64 `json:"memory_usage_mb"`
	LatencyMS     int64   `json:"latency_ms"`
}

// handleHeartbeat ingests the bot process's status report, replacing the
// singleton row and fanning the new row out to stream subscribers.
func (h *httpHandler) handleHeartbeat(c *gin.Context) {
	var request heartbeatPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	accessKey := c.GetHeader("X-Access-Key")
	if accessKey == "" {
		accessKey = request.AccessKey
	}
	if err := h.tokens.VerifyAccessKey(accessKey); err != nil {
		h.logger.Warn("heartbeat rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = h.sessionID
	}
	lastActive := h.clock().UTC()
	if request.LastActive != "" {
		parsed, err := time.Parse(time.RFC3339, request.LastActive)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_last_active"})
			return
		}
		lastActive = parsed
	}

	updated, err := h.store.UpsertBotStatus(c.Request.Context(), store.BotStatus{
		SessionID:     sessionID,
		IsOnline:      request.IsOnline,
		UptimeSeconds: request.UptimeSeconds,
		LastActive:    lastActive,
		MessagesToday: request.MessagesToday,
		Version:       request.Version,
		Platform:      request.Platform,
		MemoryUsageMB: request.MemoryUsageMB,
		LatencyMS:     request.LatencyMS,
	})
	if err != nil {
		h.failMutation(c, "heartbeat", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
