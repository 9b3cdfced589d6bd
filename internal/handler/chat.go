package handler

import (
	"net/http"
	"strings"

	"dantechat/internal/model"
	"dantechat/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
	log         *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El mensaje no puede estar vacío"})
		return
	}

	// The conversational contract always yields a reply, even when the
	// pipeline blows up internally.
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("chat pipeline panic", zap.Any("panic", r))
			c.JSON(http.StatusOK, model.ChatResponse{
				Response:        service.GenericErrorMessage,
				SearchPerformed: false,
			})
		}
	}()

	response := h.chatService.Chat(c.Request.Context(), &req)
	c.JSON(http.StatusOK, response)
}
