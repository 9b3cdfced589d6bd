package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dantechat/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ConversationLog is the append-only history of exchanges. Appends never
// surface storage errors to the caller; a failed write only loses that entry.
type ConversationLog struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewConversationLog opens the conversation database and prepares the schema.
func NewConversationLog(driver, dsn string, log *zap.Logger) (*ConversationLog, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to conversation log: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set journal mode: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS logs (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			channel TEXT NOT NULL,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			response_time REAL NOT NULL DEFAULT 0,
			search_performed BOOLEAN NOT NULL DEFAULT FALSE,
			results_count INTEGER NOT NULL DEFAULT 0
		)
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create logs table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_logs_channel ON logs(channel, timestamp)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create channel index: %w", err)
	}

	return &ConversationLog{db: db, log: log}, nil
}

// Close closes the database connection
func (c *ConversationLog) Close() error {
	return c.db.Close()
}

// Append durably stores one exchange. Storage failures are logged and
// swallowed so the conversational reply is never blocked by the log.
func (c *ConversationLog) Append(ctx context.Context, entry model.LogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := c.db.Rebind(`
		INSERT INTO logs (id, timestamp, channel, user_message, bot_response, response_time, search_performed, results_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := c.db.ExecContext(ctx, query,
		entry.ID, entry.Timestamp, entry.Channel, entry.UserMessage, entry.BotResponse,
		entry.ResponseTime, entry.SearchPerformed, entry.ResultsCount,
	)
	if err != nil {
		c.log.Error("failed to append conversation log entry",
			zap.String("channel", entry.Channel), zap.Error(err))
	}
}

// Recent returns up to limit most recent entries for a channel, oldest first.
func (c *ConversationLog) Recent(ctx context.Context, channel string, limit int) ([]model.LogEntry, error) {
	query := c.db.Rebind(`
		SELECT id, timestamp, channel, user_message, bot_response, response_time, search_performed, results_count
		FROM logs WHERE channel = ? ORDER BY timestamp DESC, id DESC LIMIT ?
	`)
	var entries []model.LogEntry
	if err := c.db.SelectContext(ctx, &entries, query, channel, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent entries: %w", err)
	}

	// Reverse into chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// RecentAll returns up to limit most recent entries across channels, newest first.
func (c *ConversationLog) RecentAll(ctx context.Context, limit int) ([]model.LogEntry, error) {
	query := c.db.Rebind(`
		SELECT id, timestamp, channel, user_message, bot_response, response_time, search_performed, results_count
		FROM logs ORDER BY timestamp DESC, id DESC LIMIT ?
	`)
	var entries []model.LogEntry
	if err := c.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent entries: %w", err)
	}
	return entries, nil
}

// LastBotResponse returns the most recent bot response for a channel, or
// false when the channel has no history.
func (c *ConversationLog) LastBotResponse(ctx context.Context, channel string) (string, bool, error) {
	query := c.db.Rebind(`
		SELECT bot_response FROM logs WHERE channel = ? ORDER BY timestamp DESC, id DESC LIMIT 1
	`)
	var response string
	err := c.db.GetContext(ctx, &response, query, channel)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to fetch last bot response: %w", err)
	}
	return response, true, nil
}
