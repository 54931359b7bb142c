package bot

import "github.com/bwmarrin/discordgo"

// Responder abstracts responding to a Discord interaction so handlers can be
// tested without a live session.
type Responder interface {
	Respond(response *discordgo.InteractionResponse) error
}

// DiscordResponder responds through a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a Responder bound to the given interaction.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{session: s, interaction: i}
}

// Respond sends the response to Discord.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Err          error
}

// Respond records the response for testing.
func (r *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	r.LastResponse = response
	return r.Err
}
