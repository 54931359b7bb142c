package ports

import "github.com/disgoorg/snowflake/v2"

// GuildResolver reports whether the bot can still see a guild. Snapshots of
// guilds that no longer resolve are skipped on restore, not failed.
type GuildResolver interface {
	Resolve(guildID snowflake.ID) bool
}
