package handler

import (
	"net/http"
	"strconv"

	"dantechat/internal/model"
	"dantechat/internal/service"

	"github.com/gin-gonic/gin"
)

// PropertiesHandler handles direct property lookups
type PropertiesHandler struct {
	chatService  *service.ChatService
	defaultLimit int
}

// NewPropertiesHandler creates a new properties handler
func NewPropertiesHandler(chatService *service.ChatService, defaultLimit int) *PropertiesHandler {
	return &PropertiesHandler{chatService: chatService, defaultLimit: defaultLimit}
}

// Search handles GET /properties
func (h *PropertiesHandler) Search(c *gin.Context) {
	filters := &model.Filters{}

	if v := c.Query("neighborhood"); v != "" {
		filters.Neighborhood = &v
	}
	if v, ok := queryFloat(c, "min_price"); ok {
		filters.MinPrice = &v
	}
	if v, ok := queryFloat(c, "max_price"); ok {
		filters.MaxPrice = &v
	}
	if v, ok := queryInt(c, "min_rooms"); ok {
		filters.MinRooms = &v
	}
	if v := c.Query("operacion"); v != "" {
		filters.Operacion = &v
	}
	if v := c.Query("tipo"); v != "" {
		filters.Tipo = &v
	}
	if v, ok := queryFloat(c, "min_sqm"); ok {
		filters.MinSqm = &v
	}
	if v, ok := queryFloat(c, "max_sqm"); ok {
		filters.MaxSqm = &v
	}

	limit := h.defaultLimit
	if v, ok := queryInt(c, "limit"); ok && v > 0 {
		limit = v
	}

	results := h.chatService.SearchProperties(c.Request.Context(), filters)
	if len(results) > limit {
		results = results[:limit]
	}

	c.JSON(http.StatusOK, model.PropertiesResponse{
		Count:      len(results),
		Filters:    filters,
		Properties: results,
	})
}

// Get handles GET /properties/:id
func (h *PropertiesHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property ID"})
		return
	}

	property, err := h.chatService.GetProperty(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property: " + err.Error()})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func queryFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
