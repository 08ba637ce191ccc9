package bookmark

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarURL(t *testing.T) {
	tests := []struct {
		name string
		user *discordgo.User
		want string
	}{
		{
			"explicit avatar hash",
			&discordgo.User{ID: "42", Avatar: "abc123"},
			"https://cdn.discordapp.com/avatars/42/abc123.png",
		},
		{
			"default avatar from discriminator",
			&discordgo.User{ID: "42", Discriminator: "1234"},
			"https://cdn.discordapp.com/embed/avatars/4.png",
		},
		{
			"discriminator zero",
			&discordgo.User{ID: "42", Discriminator: "0"},
			"https://cdn.discordapp.com/embed/avatars/0.png",
		},
		{
			"unparseable discriminator",
			&discordgo.User{ID: "42", Discriminator: ""},
			"https://cdn.discordapp.com/embed/avatars/0.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, avatarURL(tt.user))
		})
	}
}

func TestMessageLink(t *testing.T) {
	assert.Equal(t,
		"https://discord.com/channels/g1/c1/m1",
		messageLink("g1", "c1", "m1"))
	assert.Equal(t,
		"https://discord.com/channels/@me/c1/m1",
		dmMessageLink("c1", "m1"))
}

func TestBookmarkEmbed(t *testing.T) {
	message := &discordgo.Message{
		ID:        "175928847299117063",
		ChannelID: "c1",
		Content:   "some wisdom",
		Author:    &discordgo.User{ID: "a1", Username: "bob", Discriminator: "0007"},
	}

	embed := bookmarkEmbed(message, "https://discord.com/channels/g1/c1/175928847299117063")

	assert.Equal(t, "some wisdom", embed.Description)
	require.NotNil(t, embed.Author)
	assert.Equal(t, "bob", embed.Author.Name)
	assert.NotEmpty(t, embed.Author.IconURL)
	// Snowflake 175928847299117063 was minted on 2016-04-30.
	assert.Contains(t, embed.Timestamp, "2016-04-30")
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "175928847299117063")
}

func TestBookmarkEmbedNoAuthor(t *testing.T) {
	embed := bookmarkEmbed(&discordgo.Message{ID: "not-a-snowflake", Content: "x"}, "link")

	assert.Nil(t, embed.Author)
	assert.Empty(t, embed.Timestamp)
}

func TestCommandDefinition(t *testing.T) {
	cmd := Command()

	assert.Equal(t, "Bookmark message", cmd.Name)
	assert.Equal(t, discordgo.MessageApplicationCommand, cmd.Type)
	require.NotNil(t, cmd.DMPermission)
	assert.False(t, *cmd.DMPermission)
}
