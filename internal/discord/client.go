// Package discord is a minimal REST client for the handful of Discord API
// calls the bookmarks service makes. It deliberately bypasses a stateful
// session library: the service needs direct control over response-status
// classification, and no gateway connection ever exists.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ThatsNoMoon/bookmarks/internal/logging"
)

const defaultBaseURL = "https://discord.com/api/v10"

// codeCannotMessageUser is the Discord error code returned when the
// recipient has direct messages disabled.
const codeCannotMessageUser = 50007

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// Client talks to the Discord REST API with a bot token.
type Client struct {
	http          *http.Client
	baseURL       string
	authorization string
	applicationID string
	log           *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log.Sub("discord") }
}

// New creates a client for the given bot token and application id.
func New(token, applicationID string, opts ...Option) *Client {
	c := &Client{
		http:          &http.Client{Timeout: 30 * time.Second},
		baseURL:       defaultBaseURL,
		authorization: "Bot " + token,
		applicationID: applicationID,
		log:           logging.New(io.Discard, "silent"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterCommands replaces the full set of application commands, globally
// or for a single guild when guildID is non-empty. Discord treats the PUT as
// a declarative replace, so no diffing happens on this side.
func (c *Client) RegisterCommands(ctx context.Context, commands []*discordgo.ApplicationCommand, guildID string) error {
	path := fmt.Sprintf("/applications/%s/commands", c.applicationID)
	if guildID != "" {
		path = fmt.Sprintf("/applications/%s/guilds/%s/commands", c.applicationID, guildID)
	}

	resp, err := c.do(ctx, http.MethodPut, path, commands)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return c.classify(resp)
	}

	c.log.Info().Int("commands", len(commands)).Str("guild", guildID).Msg("registered commands")
	return nil
}

// SendDirectMessage opens (or fetches) the DM channel with the recipient and
// posts msg into it. The two calls are strictly sequential. A recipient who
// disallows DMs yields a Blocked outcome, not an error.
func (c *Client) SendDirectMessage(ctx context.Context, recipientID string, msg *CreateMessage) (DeliveryOutcome, error) {
	resp, err := c.do(ctx, http.MethodPost, "/users/@me/channels", map[string]string{
		"recipient_id": recipientID,
	})
	if err != nil {
		return DeliveryOutcome{}, err
	}

	channel, err := decodeOrClassify[discordgo.Channel](c, resp)
	if err != nil {
		if blocked(err) {
			return DeliveryOutcome{Blocked: true}, nil
		}
		return DeliveryOutcome{}, fmt.Errorf("opening DM channel: %w", err)
	}

	resp, err = c.do(ctx, http.MethodPost, fmt.Sprintf("/channels/%s/messages", channel.ID), msg)
	if err != nil {
		return DeliveryOutcome{}, err
	}

	message, err := decodeOrClassify[discordgo.Message](c, resp)
	if err != nil {
		if blocked(err) {
			return DeliveryOutcome{Blocked: true}, nil
		}
		return DeliveryOutcome{}, fmt.Errorf("sending DM: %w", err)
	}

	return DeliveryOutcome{Channel: channel, Message: message}, nil
}

// DeleteMessage deletes a single message. Any non-success status is a
// rejection; the standard error body is extracted when present.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		apiErr := c.classify(resp)
		apiErr.Kind = KindRejected
		return apiErr
	}
	return nil
}

// do performs one authenticated round-trip. A transport-level failure comes
// back as *APIError with KindTransport; HTTP status handling belongs to the
// caller.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindTransport, cause: err}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("api call")

	return resp, nil
}

// decodeOrClassify consumes the response: on success it decodes the entity,
// otherwise it turns the status into an *APIError.
func decodeOrClassify[T any](c *Client, resp *http.Response) (*T, error) {
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return nil, c.classify(resp)
	}

	var entity T
	if err := json.NewDecoder(resp.Body).Decode(&entity); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &entity, nil
}

// classify maps a non-success response to an *APIError. Server faults are
// never parsed; client errors carry the extracted Discord error code when
// the body is parseable.
func (c *Client) classify(resp *http.Response) *APIError {
	if resp.StatusCode >= 500 {
		return &APIError{Kind: KindServerFault, Status: resp.StatusCode}
	}

	apiErr := &APIError{Kind: KindRejected, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Code == 0 {
		return apiErr
	}

	apiErr.Code = body.Code
	apiErr.Message = body.Message
	return apiErr
}

// blocked reports whether err is the well-known "cannot send messages to
// this user" rejection.
func blocked(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == codeCannotMessageUser
}

func successful(status int) bool {
	return status >= 200 && status < 300
}
