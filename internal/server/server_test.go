package server

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatsNoMoon/bookmarks/internal/bookmark"
	"github.com/ThatsNoMoon/bookmarks/internal/config"
	"github.com/ThatsNoMoon/bookmarks/internal/logging"
)

type fakeHandler struct {
	resp  *discordgo.InteractionResponse
	err   error
	calls int
}

func (f *fakeHandler) Handle(ctx context.Context, interaction *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeRegistrar struct {
	err      error
	calls    int
	commands []*discordgo.ApplicationCommand
	guildID  string
}

func (f *fakeRegistrar) RegisterCommands(ctx context.Context, commands []*discordgo.ApplicationCommand, guildID string) error {
	f.calls++
	f.commands = commands
	f.guildID = guildID
	return f.err
}

type testServer struct {
	mux       *http.ServeMux
	handler   *fakeHandler
	registrar *fakeRegistrar
	priv      ed25519.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.Discord = config.DiscordConfig{
		ApplicationID: "app123",
		PublicKey:     hex.EncodeToString(pub),
		Token:         "token",
	}

	handler := &fakeHandler{resp: &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}}
	registrar := &fakeRegistrar{}

	s := New(cfg, handler, registrar, logging.New(nil, "silent"))
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	return &testServer{mux: mux, handler: handler, registrar: registrar, priv: priv}
}

// signedRequest builds a POST / request carrying a valid detached signature.
func (ts *testServer) signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()

	timestamp := "1700000000"
	sig := ed25519.Sign(ts.priv, append([]byte(timestamp), body...))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", timestamp)
	return req
}

func (ts *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.mux.ServeHTTP(rr, req)
	return rr
}

func TestInteractionSigned(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(ts.signedRequest(t, []byte(`{"type":1}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, ts.handler.calls)

	var resp discordgo.InteractionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, discordgo.InteractionResponsePong, resp.Type)
}

func TestInteractionBadSignature(t *testing.T) {
	ts := newTestServer(t)

	req := ts.signedRequest(t, []byte(`{"type":1}`))
	// Tamper with the body after signing.
	req.Body = http.NoBody
	req.ContentLength = 0

	rr := ts.serve(req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "signature verification failed")
	assert.Zero(t, ts.handler.calls, "handler must not run on auth failure")
}

func TestInteractionMissingHeaders(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"type":1}`)))
	rr := ts.serve(req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, ts.handler.calls)
}

func TestInteractionUnparseableBody(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(ts.signedRequest(t, []byte(`{"type":`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, ts.handler.calls, "parsing happens only after verification")
}

func TestInteractionShapeError(t *testing.T) {
	ts := newTestServer(t)
	ts.handler.resp = nil
	ts.handler.err = &bookmark.ShapeError{Reason: "unknown command"}

	rr := ts.serve(ts.signedRequest(t, []byte(`{"type":2,"data":{"name":"Bookmark message","type":3}}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown command")
}

func TestInteractionInternalError(t *testing.T) {
	ts := newTestServer(t)
	ts.handler.resp = nil
	ts.handler.err = errors.New("discord is down")

	rr := ts.serve(ts.signedRequest(t, []byte(`{"type":2,"data":{"name":"Bookmark message","type":3}}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "discord is down")
}

func TestRegisterGlobal(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(httptest.NewRequest(http.MethodPost, "/register", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, ts.registrar.calls)
	assert.Empty(t, ts.registrar.guildID)
	require.Len(t, ts.registrar.commands, 1)
	assert.Equal(t, bookmark.CommandName, ts.registrar.commands[0].Name)
}

func TestRegisterGuildScoped(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(httptest.NewRequest(http.MethodPost, "/register/123456789", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "123456789", ts.registrar.guildID)
}

func TestRegisterInvalidGuildID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(httptest.NewRequest(http.MethodPost, "/register/not-a-snowflake", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, ts.registrar.calls)
}

func TestRegisterFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.registrar.err = errors.New("rejected")

	rr := ts.serve(httptest.NewRequest(http.MethodPost, "/register", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.serve(httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestResolveBindAddr(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{"loopback", config.ServerConfig{Bind: "loopback", Port: 8787}, "127.0.0.1:8787"},
		{"lan", config.ServerConfig{Bind: "lan", Port: 8787}, "0.0.0.0:8787"},
		{"custom", config.ServerConfig{Bind: "custom", CustomBindHost: "10.0.0.5", Port: 80}, "10.0.0.5:80"},
		{"custom without host", config.ServerConfig{Bind: "custom", Port: 80}, "0.0.0.0:80"},
		{"default", config.ServerConfig{Port: 8787}, "127.0.0.1:8787"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveBindAddr(tt.cfg))
		})
	}
}
