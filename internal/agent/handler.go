package agent

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/portfolio-assistant/internal/api"
	"github.com/ashureev/portfolio-assistant/internal/config"
	"github.com/ashureev/portfolio-assistant/internal/identity"
)

// chatFunc is one of the ChatService entry points.
type chatFunc func(ctx context.Context, in ChatInput) (*ChatOutput, error)

// Handler serves the chat endpoints.
type Handler struct {
	chat        *ChatService
	rateLimiter *RateLimiter
	log         ConversationLogger
	debug       bool
}

// NewHandler creates a chat handler. A nil logger disables conversation logging.
func NewHandler(chat *ChatService, cfg *config.Config, conversationLogger ConversationLogger) *Handler {
	if conversationLogger == nil {
		conversationLogger = noopConversationLogger{}
	}

	rateLimitRequests := 20
	rateLimitWindow := time.Minute
	debug := false
	if cfg != nil {
		rateLimitRequests = cfg.RateLimit.RequestsPerWindow
		rateLimitWindow = cfg.RateLimit.WindowDuration
		debug = cfg.Debug
	}

	return &Handler{
		chat:        chat,
		rateLimiter: NewRateLimiter(rateLimitRequests, rateLimitWindow),
		log:         conversationLogger,
		debug:       debug,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/assistant", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Post("/chat/sync", h.HandleChatSync)
	})
	r.Post("/api/chat", h.HandleCompatChat)
}

// HandleChat handles POST /api/assistant/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "chat_http", h.chat.Chat, true)
}

// HandleChatSync handles POST /api/assistant/chat/sync.
func (h *Handler) HandleChatSync(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "chat_sync", h.chat.ChatSync, true)
}

// HandleCompatChat handles POST /api/chat. The reply omits session_id.
func (h *Handler) HandleCompatChat(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "chat_compat", h.chat.ChatCompat, false)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, channel string, fn chatFunc, withSession bool) {
	clientIP := identity.ClientIPFromContext(r.Context())
	if !h.rateLimiter.Allow(clientIP) {
		api.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	req, err := api.DecodeJSON[ChatRequest](w, r)
	if err != nil {
		api.WriteError(w, r, err, h.debug)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = identity.SessionIDFromContext(r.Context())
	}
	reqID := chiMiddleware.GetReqID(r.Context())

	out, err := fn(r.Context(), ChatInput{
		Message:   req.Message,
		SessionID: sessionID,
		History:   req.ConversationHistory,
	})
	if err != nil {
		api.WriteError(w, r, err, h.debug)
		return
	}

	h.logExchange(channel, out.SessionID, req.Message, out, reqID)

	resp := ChatResponse{
		Success:  true,
		Response: out.Response,
		Model:    out.Model,
	}
	if withSession {
		resp.SessionID = out.SessionID
	}
	api.JSON(w, http.StatusOK, resp)
}

func (h *Handler) logExchange(channel, sessionID, message string, out *ChatOutput, requestID string) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	h.log.Log(ConversationLogEvent{
		Timestamp:  now,
		SessionID:  sessionID,
		Channel:    channel,
		Direction:  "outbound",
		EventType:  "chat_user_message",
		ContentRaw: message,
		Content:    cleanForReadability(message),
		Meta: map[string]any{
			"request_id": requestID,
		},
	})
	h.log.Log(ConversationLogEvent{
		Timestamp:  now,
		SessionID:  sessionID,
		Channel:    channel,
		Direction:  "inbound",
		EventType:  "chat_assistant_message",
		ContentRaw: out.Response,
		Content:    cleanForReadability(out.Response),
		Meta: map[string]any{
			"request_id": requestID,
			"run_id":     out.RunID,
			"model":      out.Model,
		},
	})
}

// Close releases handler resources.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
	if h.log != nil {
		if err := h.log.Close(); err != nil {
			slog.Warn("failed to close conversation logger", "error", err)
		}
	}
}
