package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgallion1/lessonplan/internal/generate"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil || s.gen.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model": s.gen.Model(),
		"stats": s.gen.Stats.Snapshot(),
	})
}

const pingTimeout = 15 * time.Second

// handleSettingsCheck verifies provider credentials submitted by the user
// without storing them.
func (s *Server) handleSettingsCheck(w http.ResponseWriter, r *http.Request) {
	var settings generate.Settings
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if settings.Provider == "" {
		settings.Provider = generate.ProviderGemini
	}
	// Only the configured endpoint may be reached from the server.
	settings.BaseURL = ""
	if settings.Provider == s.cfg.AIProvider {
		settings.BaseURL = s.cfg.AIBaseURL
	}
	settings.Timeout = pingTimeout

	client, err := generate.New(settings)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": generate.UserMessage(err)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		s.log.Info("settings check failed", "provider", settings.Provider, "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": generate.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "model": client.Model()})
}
