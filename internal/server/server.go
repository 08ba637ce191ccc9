// Package server is the HTTP shell around the bookmarks core: it owns the
// listener, the middleware chain, and the mapping from routes and error
// types to HTTP statuses.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ThatsNoMoon/bookmarks/internal/config"
	"github.com/ThatsNoMoon/bookmarks/internal/logging"
)

// InteractionHandler dispatches one verified, parsed interaction.
type InteractionHandler interface {
	Handle(ctx context.Context, interaction *discordgo.Interaction) (*discordgo.InteractionResponse, error)
}

// CommandRegistrar replaces the registered application commands for a scope.
type CommandRegistrar interface {
	RegisterCommands(ctx context.Context, commands []*discordgo.ApplicationCommand, guildID string) error
}

// Server is the bookmarks webhook HTTP server.
type Server struct {
	cfg       config.Config
	log       *logging.Logger
	handler   InteractionHandler
	registrar CommandRegistrar
	publicKey string

	httpServer *http.Server
}

// New creates a server. publicKey is the hex-encoded Ed25519 key Discord
// signs webhook requests with; it stays an opaque string until verification.
func New(cfg config.Config, handler InteractionHandler, registrar CommandRegistrar, log *logging.Logger) *Server {
	return &Server{
		cfg:       cfg,
		log:       log.Sub("server"),
		handler:   handler,
		registrar: registrar,
		publicKey: cfg.Discord.PublicKey,
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for webhook requests. It blocks until the context
// is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      withMiddleware(mux, s.log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.Server.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Server.TLS.CertPath, s.cfg.Server.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		s.log.Info().Msg("TLS enabled")
	}

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Msg("webhook server ready")

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down webhook server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
