package discord

import "github.com/bwmarrin/discordgo"

// CreateMessage is the body of a message-create call. Absent fields are
// omitted from the serialized form, never sent as null.
type CreateMessage struct {
	Embeds     []*discordgo.MessageEmbed    `json:"embeds,omitempty"`
	Components []discordgo.MessageComponent `json:"components,omitempty"`
	Flags      discordgo.MessageFlags       `json:"flags,omitempty"`
}

// DeliveryOutcome is the tagged result of a DM delivery attempt. Blocked is
// the single business-meaningful negative outcome: the recipient disallows
// direct messages. It is not an error.
type DeliveryOutcome struct {
	Blocked bool
	Channel *discordgo.Channel
	Message *discordgo.Message
}
