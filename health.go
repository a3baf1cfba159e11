package mysticbot

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ──────────────────────────────────────────────
// Health endpoint and keep-alive pinger
// ──────────────────────────────────────────────

// HealthServer exposes liveness and usage stats over HTTP.
type HealthServer struct {
	usage *UsageTracker
	srv   *http.Server
}

// NewHealthServer builds the server on addr. usage may be nil.
func NewHealthServer(addr string, usage *UsageTracker) *HealthServer {
	h := &HealthServer{usage: usage}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/health", h.handleHealth)
	r.Get("/", h.handleHealth)

	h.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return h
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.usage != nil {
		payload["usage"] = h.usage.Stats()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[Health] encode failed: %v", err)
	}
}

// Start serves in a background goroutine.
func (h *HealthServer) Start() {
	go func() {
		log.Printf("[Health] Listening on %s", h.srv.Addr)
		if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Health] server error: %v", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (h *HealthServer) Stop(ctx context.Context) {
	if err := h.srv.Shutdown(ctx); err != nil {
		log.Printf("[Health] shutdown error: %v", err)
	}
}

// keepAliveInterval spaces the self-pings; free hosting tiers idle out
// after roughly fifteen minutes.
const keepAliveInterval = 10 * time.Minute

// KeepAlive pings url on an interval until ctx is cancelled. Used to stop
// free-tier hosts from putting the bot to sleep.
func KeepAlive(ctx context.Context, url string) {
	if url == "" {
		return
	}
	client := &http.Client{Timeout: 15 * time.Second}

	go func() {
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				if err != nil {
					log.Printf("[KeepAlive] build request failed: %v", err)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					log.Printf("[KeepAlive] ping failed: %v", err)
					continue
				}
				resp.Body.Close()
			}
		}
	}()
}
