package handler

import (
	"net/http"

	"dantechat/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the status, metrics, logs and cache endpoints
type AdminHandler struct {
	chatService *service.ChatService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(chatService *service.ChatService) *AdminHandler {
	return &AdminHandler{chatService: chatService}
}

// Status handles GET /status: probes the upstream API and reports counters.
func (h *AdminHandler) Status(c *gin.Context) {
	upstreamStatus := "OK"
	reply, err := h.chatService.PingUpstream(c.Request.Context())
	if err != nil || reply == service.ExhaustedMessage {
		upstreamStatus = "ERROR"
	}

	snapshot := h.chatService.MetricsSnapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":              "activo",
		"gemini_api":          upstreamStatus,
		"uptime_seconds":      snapshot.UptimeSeconds,
		"total_requests":      snapshot.Requests,
		"successful_requests": snapshot.Successes,
		"failed_requests":     snapshot.Failures,
		"gemini_calls":        snapshot.UpstreamCalls,
		"search_queries":      snapshot.Searches,
	})
}

// Metrics handles GET /metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	snapshot := h.chatService.MetricsSnapshot()

	uptime := snapshot.UptimeSeconds
	if uptime < 1 {
		uptime = 1
	}
	requests := snapshot.Requests
	if requests < 1 {
		requests = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds":      snapshot.UptimeSeconds,
		"requests_per_second": float64(snapshot.Requests) / uptime,
		"success_rate":        float64(snapshot.Successes) / float64(requests),
		"total_requests":      snapshot.Requests,
		"successful_requests": snapshot.Successes,
		"failed_requests":     snapshot.Failures,
		"gemini_calls":        snapshot.UpstreamCalls,
		"search_queries":      snapshot.Searches,
		"cache_size":          h.chatService.CacheSize(),
	})
}

// Logs handles GET /logs
func (h *AdminHandler) Logs(c *gin.Context) {
	limit := 10
	if parsed, ok := queryInt(c, "limit"); ok && parsed > 0 {
		limit = parsed
	}
	channel := c.Query("channel")

	entries, err := h.chatService.RecentLogs(c.Request.Context(), channel, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error obteniendo logs: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ClearCache handles DELETE /cache
func (h *AdminHandler) ClearCache(c *gin.Context) {
	h.chatService.ClearCache()
	c.JSON(http.StatusOK, gin.H{"message": "Cache limpiado correctamente"})
}
