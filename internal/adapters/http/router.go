// Package httpadapter exposes the FAQ answering pipeline over HTTP.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/ports"
)

type Router struct {
	answerer ports.QuestionAnswerer
	options  Options
}

type Options struct {
	// APIKey, when set, gates /v1/ask behind a bearer token.
	APIKey string

	RateLimitRPS   float64
	RateLimitBurst int

	MaxInFlight  int
	QueueTimeout time.Duration

	// MetricsHandler serves GET /metrics; nil disables the endpoint.
	MetricsHandler http.Handler
	// Instrument wraps the mux with request metrics; nil skips it.
	Instrument func(http.Handler) http.Handler
}

func NewRouter(answerer ports.QuestionAnswerer, options Options) *Router {
	return &Router{answerer: answerer, options: options}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	if rt.options.MetricsHandler != nil {
		mux.Handle("/metrics", rt.options.MetricsHandler)
	}

	var handler http.Handler = mux
	if rt.options.Instrument != nil {
		handler = rt.options.Instrument(handler)
	}
	if rt.options.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.options.MaxInFlight, rt.options.QueueTimeout)
	}
	if rt.options.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.options.RateLimitRPS, rt.options.RateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.options.APIKey != "" && !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.options.APIKey) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req domain.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	switch req.Channel {
	case "", domain.ChannelWeb, domain.ChannelMobile, domain.ChannelBoth:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel must be web, mobile or both"})
		return
	}

	answer, err := rt.answerer.Ask(r.Context(), req)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= 500 {
			slog.Error("ask failed",
				"request_id", requestIDFromContext(r.Context()),
				"error", err,
			)
		}
		writeJSON(w, status, map[string]string{"error": publicErrorMessage(status, err)})
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func isAuthorizedBearerHeader(headerValue, expectedToken string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || expectedToken == "" {
		return false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return token == expectedToken
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
