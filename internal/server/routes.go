package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/ThatsNoMoon/bookmarks/internal/bookmark"
	"github.com/ThatsNoMoon/bookmarks/internal/signature"
)

// Discord signs the timestamp header concatenated with the raw body.
const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// maxBodySize caps inbound interaction payloads.
const maxBodySize = 1 << 20

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /{$}", s.handleInteraction)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /register/{guildID}", s.handleRegister)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// handleInteraction is the webhook entry point. The raw body is captured
// before any parsing: the signature covers the literal bytes received, and
// re-encoding would invalidate it.
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	sig := r.Header.Get(headerSignature)
	timestamp := r.Header.Get(headerTimestamp)
	if sig == "" || timestamp == "" {
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}
	if err := signature.Verify(timestamp, body, sig, s.publicKey); err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("rejected interaction")
		http.Error(w, "signature verification failed", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		http.Error(w, "malformed interaction payload", http.StatusBadRequest)
		return
	}

	resp, err := s.handler.Handle(r.Context(), &interaction)
	if err != nil {
		var shapeErr *bookmark.ShapeError
		if errors.As(err, &shapeErr) {
			http.Error(w, shapeErr.Reason, http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Msg("interaction handling failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn().Err(err).Msg("failed to write interaction response")
	}
}

// handleRegister replaces the registered command set, globally or for the
// guild named in the path.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	guildID := r.PathValue("guildID")
	if guildID != "" {
		if _, err := strconv.ParseUint(guildID, 10, 64); err != nil {
			http.Error(w, "invalid guild id", http.StatusBadRequest)
			return
		}
	}

	commands := []*discordgo.ApplicationCommand{bookmark.Command()}
	if err := s.registrar.RegisterCommands(r.Context(), commands, guildID); err != nil {
		s.log.Error().Err(err).Str("guild", guildID).Msg("failed to register commands")
		http.Error(w, "failed to register commands", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}
