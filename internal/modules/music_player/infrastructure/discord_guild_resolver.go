package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
)

// DiscordGuildResolver implements ports.GuildResolver against the session's
// guild state cache.
type DiscordGuildResolver struct {
	session *discordgo.Session
}

// NewDiscordGuildResolver creates a resolver backed by a Discord session.
func NewDiscordGuildResolver(session *discordgo.Session) *DiscordGuildResolver {
	return &DiscordGuildResolver{session: session}
}

// Resolve reports whether the bot is currently a member of the guild.
func (r *DiscordGuildResolver) Resolve(guildID snowflake.ID) bool {
	if r.session == nil || r.session.State == nil {
		return false
	}

	guild, err := r.session.State.Guild(guildID.String())
	return err == nil && guild != nil
}

var _ ports.GuildResolver = (*DiscordGuildResolver)(nil)
