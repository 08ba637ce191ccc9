package cli

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/ThatsNoMoon/bookmarks/internal/bookmark"
	"github.com/ThatsNoMoon/bookmarks/internal/discord"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [guild-id]",
		Short: "Register the Bookmark message command, globally or for one guild",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := validateConfig(&cfg); err != nil {
				return err
			}

			var guildID string
			if len(args) == 1 {
				guildID = args[0]
				if _, err := strconv.ParseUint(guildID, 10, 64); err != nil {
					return fmt.Errorf("invalid guild id %q", guildID)
				}
			}

			client := discord.New(cfg.Discord.Token, cfg.Discord.ApplicationID, discord.WithLogger(log))
			commands := []*discordgo.ApplicationCommand{bookmark.Command()}
			if err := client.RegisterCommands(cmd.Context(), commands, guildID); err != nil {
				return fmt.Errorf("registering commands: %w", err)
			}

			if guildID == "" {
				log.Info().Msg("registered global command")
			} else {
				log.Info().Str("guild", guildID).Msg("registered guild command")
			}
			return nil
		},
	}
}
