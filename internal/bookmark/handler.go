// Package bookmark implements the interaction handlers behind the
// "Bookmark message" command: delivering a copy of a message to the invoking
// user's DMs, and deleting that copy again when its delete button is pressed.
package bookmark

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/ThatsNoMoon/bookmarks/internal/discord"
	"github.com/ThatsNoMoon/bookmarks/internal/logging"
)

// CommandName is the single message-context command this service registers.
const CommandName = "Bookmark message"

// deleteCustomID identifies the delete button on a delivered bookmark. The
// component interaction echoes the message the button sits on, so the ids
// needed to delete it travel inside the bookmark itself; no server-side
// state exists.
const deleteCustomID = "delete"

// ShapeError marks an interaction whose shape is wrong: unknown command,
// missing resolved data, unrecognized component, absent context fields. The
// HTTP shell maps it to a 400. No outbound call happens after one.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "malformed interaction: " + e.Reason
}

func shapeErrorf(format string, args ...any) *ShapeError {
	return &ShapeError{Reason: fmt.Sprintf(format, args...)}
}

// Sender is the slice of the Discord client the handlers need.
type Sender interface {
	SendDirectMessage(ctx context.Context, recipientID string, msg *discord.CreateMessage) (discord.DeliveryOutcome, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// Handler routes verified interactions to the bookmark and delete actions.
type Handler struct {
	sender Sender
	log    *logging.Logger
}

// NewHandler creates a Handler backed by the given sender.
func NewHandler(sender Sender, log *logging.Logger) *Handler {
	return &Handler{sender: sender, log: log.Sub("bookmark")}
}

// Handle dispatches one parsed interaction and produces its response. The
// caller must have verified the request signature already.
func (h *Handler) Handle(ctx context.Context, interaction *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	switch interaction.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}, nil
	case discordgo.InteractionApplicationCommand:
		return h.handleCommand(ctx, interaction)
	case discordgo.InteractionMessageComponent:
		return h.handleComponent(ctx, interaction)
	default:
		return nil, shapeErrorf("unsupported interaction type %d", interaction.Type)
	}
}

func (h *Handler) handleCommand(ctx context.Context, interaction *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	data, ok := interaction.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return nil, shapeErrorf("unexpected interaction data type")
	}

	// The command is registered guild-only, so the invoker arrives as a
	// member, not a bare user.
	if interaction.GuildID == "" {
		return nil, shapeErrorf("no guild id")
	}
	if interaction.Member == nil || interaction.Member.User == nil {
		return nil, shapeErrorf("no invoking member")
	}
	user := interaction.Member.User

	if data.Name != CommandName {
		return nil, shapeErrorf("unknown command %q", data.Name)
	}
	if data.CommandType != discordgo.MessageApplicationCommand {
		return nil, shapeErrorf("unexpected command type %d", data.CommandType)
	}
	if data.TargetID == "" {
		return nil, shapeErrorf("no target id")
	}
	if data.Resolved == nil {
		return nil, shapeErrorf("no resolved data")
	}
	message, ok := data.Resolved.Messages[data.TargetID]
	if !ok {
		return nil, shapeErrorf("target %s not in resolved messages", data.TargetID)
	}

	link := messageLink(interaction.GuildID, message.ChannelID, message.ID)
	dm := &discord.CreateMessage{
		Embeds: []*discordgo.MessageEmbed{bookmarkEmbed(message, link)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label: "Original message",
						Style: discordgo.LinkButton,
						URL:   link,
					},
					discordgo.Button{
						Label:    "Delete bookmark",
						Style:    discordgo.DangerButton,
						CustomID: deleteCustomID,
					},
				},
			},
		},
	}

	outcome, err := h.sender.SendDirectMessage(ctx, user.ID, dm)
	if err != nil {
		return nil, fmt.Errorf("delivering bookmark: %w", err)
	}

	if outcome.Blocked {
		h.log.Info().Str("user", user.ID).Msg("bookmark blocked, recipient disallows DMs")
		return ephemeralReply(
			"Couldn't bookmark that message: your direct messages are disabled, so there's nowhere to deliver it.",
			nil,
		), nil
	}

	h.log.Info().
		Str("user", user.ID).
		Str("message", message.ID).
		Str("bookmark", outcome.Message.ID).
		Msg("bookmark delivered")

	return ephemeralReply("Message bookmarked.", []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: "Go to bookmark",
					Style: discordgo.LinkButton,
					URL:   dmMessageLink(outcome.Channel.ID, outcome.Message.ID),
				},
			},
		},
	}), nil
}

func (h *Handler) handleComponent(ctx context.Context, interaction *discordgo.Interaction) (*discordgo.InteractionResponse, error) {
	data, ok := interaction.Data.(discordgo.MessageComponentInteractionData)
	if !ok {
		return nil, shapeErrorf("unexpected interaction data type")
	}
	if data.CustomID != deleteCustomID {
		return nil, shapeErrorf("unexpected action %q", data.CustomID)
	}
	if interaction.Message == nil || interaction.Message.ID == "" || interaction.Message.ChannelID == "" {
		return nil, shapeErrorf("no message on component interaction")
	}

	if err := h.sender.DeleteMessage(ctx, interaction.Message.ChannelID, interaction.Message.ID); err != nil {
		return nil, fmt.Errorf("deleting bookmark: %w", err)
	}

	h.log.Info().
		Str("channel", interaction.Message.ChannelID).
		Str("message", interaction.Message.ID).
		Msg("bookmark deleted")

	// The bookmark itself is gone; acknowledge without sending a new message.
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, nil
}

func ephemeralReply(content string, components []discordgo.MessageComponent) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}
}
