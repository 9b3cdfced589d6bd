package model

import "time"

// ChatRequest represents an inbound chat message
type ChatRequest struct {
	Message string   `json:"message" binding:"required,min=1,max=1000"`
	Channel string   `json:"channel"`
	Filters *Filters `json:"filters,omitempty"`
}

// ChatResponse represents the assistant's reply
type ChatResponse struct {
	Response        string `json:"response"`
	ResultsCount    *int   `json:"results_count,omitempty"`
	SearchPerformed bool   `json:"search_performed"`
}

// PropertiesResponse represents a direct filtered property lookup
type PropertiesResponse struct {
	Count      int        `json:"count"`
	Filters    *Filters   `json:"filters"`
	Properties []Property `json:"properties"`
}

// LogEntry represents one logged exchange between a user and the assistant
type LogEntry struct {
	ID              string    `json:"id" db:"id"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
	Channel         string    `json:"channel" db:"channel"`
	UserMessage     string    `json:"user_message" db:"user_message"`
	BotResponse     string    `json:"bot_response" db:"bot_response"`
	ResponseTime    float64   `json:"response_time" db:"response_time"`
	SearchPerformed bool      `json:"search_performed" db:"search_performed"`
	ResultsCount    int       `json:"results_count" db:"results_count"`
}
