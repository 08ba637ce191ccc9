package bookmark

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

const cdnBase = "https://cdn.discordapp.com"

// bookmarkEmbed renders the bookmarked message: author line with avatar,
// the message content, a jump link, and the original creation time decoded
// from the message id.
func bookmarkEmbed(message *discordgo.Message, link string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: message.Content,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Source", Value: fmt.Sprintf("[Jump to message](%s)", link)},
		},
	}

	if message.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    message.Author.Username,
			IconURL: avatarURL(message.Author),
		}
	}

	// A snowflake embeds its creation time; the resolved message is never
	// re-fetched, so this is the only timestamp available.
	if ts, err := discordgo.SnowflakeTimestamp(message.ID); err == nil {
		embed.Timestamp = ts.UTC().Format(time.RFC3339)
	}

	return embed
}

// avatarURL returns the author's avatar, falling back to the default avatar
// indexed by discriminator mod 5. Accounts migrated off discriminators
// report "0", which still lands on a valid default image.
func avatarURL(user *discordgo.User) string {
	if user.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBase, user.ID, user.Avatar)
	}
	disc, err := strconv.Atoi(user.Discriminator)
	if err != nil {
		disc = 0
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", cdnBase, disc%5)
}

// messageLink is the canonical jump URL for a guild message.
func messageLink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// dmMessageLink is the jump URL for a message in a DM channel.
func dmMessageLink(channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/@me/%s/%s", channelID, messageID)
}

// Command is the application command definition this service registers:
// a message-context command that cannot be invoked from DMs.
func Command() *discordgo.ApplicationCommand {
	dmPermission := false
	return &discordgo.ApplicationCommand{
		Name:         CommandName,
		Type:         discordgo.MessageApplicationCommand,
		DMPermission: &dmPermission,
	}
}
