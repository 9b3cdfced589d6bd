package service

import (
	"context"
	"strings"
	"time"

	"dantechat/internal/model"
	"dantechat/internal/repository"

	"go.uber.org/zap"
)

// GenericErrorMessage is the reply when the pipeline hits an unexpected
// internal failure. The conversational contract always produces text.
const GenericErrorMessage = "Lo siento, hubo un problema procesando tu consulta. Por favor, intentá de nuevo."

// searchKeywords trigger the filter-extraction and query path.
var searchKeywords = []string{
	"buscar", "mostrar", "propiedad", "departamento", "casa", "inmueble",
	"alquiler", "venta", "precio", "barrio", "necesito", "quiero",
}

// detailKeywords trigger the detail-lookup path against the last bot response.
var detailKeywords = []string{"más detalles", "mas detalles", "detalle"}

// ChatService runs the full pipeline: extraction, query, prompt composition,
// upstream rotation and logging. Each inbound message is processed
// synchronously end to end.
type ChatService struct {
	store        *repository.PropertyStore
	convlog      *repository.ConversationLog
	cache        *ResultCache
	rotation     *Rotation
	composer     PromptComposer
	metrics      *Metrics
	log          *zap.Logger
	historyLimit int
}

// NewChatService creates the chat pipeline
func NewChatService(
	store *repository.PropertyStore,
	convlog *repository.ConversationLog,
	cache *ResultCache,
	rotation *Rotation,
	metrics *Metrics,
	historyLimit int,
	log *zap.Logger,
) *ChatService {
	return &ChatService{
		store:        store,
		convlog:      convlog,
		cache:        cache,
		rotation:     rotation,
		metrics:      metrics,
		log:          log,
		historyLimit: historyLimit,
	}
}

// Chat processes one inbound message and always returns a textual reply.
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) *model.ChatResponse {
	startTime := time.Now()
	s.metrics.IncRequests()

	userText := strings.TrimSpace(req.Message)
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = "web"
	}
	textLower := strings.ToLower(userText)

	neighborhoods := s.distinctOrEmpty(ctx, s.store.DistinctNeighborhoods)
	tipos := s.distinctOrEmpty(ctx, s.store.DistinctTipos)
	operaciones := s.distinctOrEmpty(ctx, s.store.DistinctOperaciones)
	history := s.recentMessages(ctx, channel)

	promptContext := s.composer.BuildContext(channel, neighborhoods, tipos, operaciones, history)

	input := PromptInput{
		UserText: userText,
		Channel:  channel,
		Context:  promptContext,
	}

	var filters *model.Filters
	switch {
	case containsAny(textLower, detailKeywords):
		input.Detail = s.resolveDetail(ctx, channel)
		if input.Detail == nil {
			// No resolvable property; fall back to the generic template.
			break
		}

	case containsAny(textLower, searchKeywords):
		s.metrics.IncSearches()
		extractor := NewFilterExtractor(neighborhoods)
		detected := extractor.Extract(textLower)
		filters = req.Filters.Merge(detected)

		input.SearchPerformed = true
		input.Filters = filters
		input.Results = s.SearchProperties(ctx, filters)
	}

	prompt := s.composer.Compose(input)

	s.metrics.IncUpstreamCalls()
	answer, err := s.rotation.Generate(ctx, prompt)
	if err != nil {
		s.metrics.IncFailures()
		s.log.Error("pipeline aborted", zap.String("channel", channel), zap.Error(err))
		return &model.ChatResponse{
			Response:        GenericErrorMessage,
			SearchPerformed: false,
		}
	}

	elapsed := time.Since(startTime).Seconds()
	s.convlog.Append(ctx, model.LogEntry{
		Channel:         channel,
		UserMessage:     userText,
		BotResponse:     answer,
		ResponseTime:    elapsed,
		SearchPerformed: input.SearchPerformed,
		ResultsCount:    len(input.Results),
	})
	s.metrics.IncSuccesses()

	resp := &model.ChatResponse{
		Response:        answer,
		SearchPerformed: input.SearchPerformed,
	}
	if input.SearchPerformed && len(input.Results) > 0 {
		count := len(input.Results)
		resp.ResultsCount = &count
	}
	return resp
}

// SearchProperties runs a cached filtered query. Query failures are logged
// and surface as an empty result set.
func (s *ChatService) SearchProperties(ctx context.Context, filters *model.Filters) []model.Property {
	key := filters.CacheKey()
	if cached, ok := s.cache.Get(key); ok {
		return cached
	}

	results, err := s.store.Search(ctx, filters)
	if err != nil {
		s.log.Error("property query failed", zap.Error(err))
		return []model.Property{}
	}
	if results == nil {
		results = []model.Property{}
	}

	if !filters.IsEmpty() && len(results) > 0 {
		s.cache.Put(key, results)
	}
	return results
}

// PingUpstream sends a fixed probe prompt through the rotation policy.
func (s *ChatService) PingUpstream(ctx context.Context) (string, error) {
	s.metrics.IncUpstreamCalls()
	return s.rotation.Generate(ctx, "Respondé solo con OK")
}

// GetProperty retrieves a single listing by identifier.
func (s *ChatService) GetProperty(ctx context.Context, id int64) (*model.Property, error) {
	return s.store.GetByID(ctx, id)
}

// RecentLogs returns recent conversation entries, newest first, optionally
// restricted to one channel.
func (s *ChatService) RecentLogs(ctx context.Context, channel string, limit int) ([]model.LogEntry, error) {
	if channel == "" {
		return s.convlog.RecentAll(ctx, limit)
	}
	entries, err := s.convlog.Recent(ctx, channel, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ClearCache drops every cached result set.
func (s *ChatService) ClearCache() {
	s.cache.Clear()
}

// CacheSize returns the number of cached result sets.
func (s *ChatService) CacheSize() int {
	return s.cache.Len()
}

// MetricsSnapshot returns the current service counters.
func (s *ChatService) MetricsSnapshot() Snapshot {
	return s.metrics.Snapshot()
}

// resolveDetail finds the property named in the channel's last bot response.
func (s *ChatService) resolveDetail(ctx context.Context, channel string) *model.Property {
	lastResponse, ok, err := s.convlog.LastBotResponse(ctx, channel)
	if err != nil || !ok {
		if err != nil {
			s.log.Error("failed to read last bot response", zap.Error(err))
		}
		return nil
	}

	titles, err := s.store.Titles(ctx)
	if err != nil {
		s.log.Error("failed to list titles", zap.Error(err))
		return nil
	}

	responseLower := strings.ToLower(lastResponse)
	var matched string
	for _, title := range titles {
		if strings.Contains(responseLower, strings.ToLower(title)) && len(title) > len(matched) {
			matched = title
		}
	}
	if matched == "" {
		return nil
	}

	property, err := s.store.FindByTitle(ctx, matched)
	if err != nil {
		s.log.Error("failed to load property detail", zap.String("title", matched), zap.Error(err))
		return nil
	}
	return property
}

func (s *ChatService) distinctOrEmpty(ctx context.Context, fn func(context.Context) ([]string, error)) []string {
	values, err := fn(ctx)
	if err != nil {
		s.log.Error("failed to list distinct values", zap.Error(err))
		return []string{}
	}
	return values
}

func (s *ChatService) recentMessages(ctx context.Context, channel string) []string {
	entries, err := s.convlog.Recent(ctx, channel, s.historyLimit)
	if err != nil {
		s.log.Error("failed to fetch history", zap.Error(err))
		return nil
	}
	messages := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.UserMessage)
	}
	return messages
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
